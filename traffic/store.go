/*
store.go - Persistence for the live sheet and the daily history

The traffic module owns two document keys:
  alienTrafficCounts   the live (unsaved) sheet rows
  alienTrafficHistory  date -> DailyEntry

Decoding fails closed, matching the rest of the persistence boundary.
*/
package traffic

import (
	"context"
	"encoding/json"

	"github.com/gravity/hrm-engine/hrm"
)

// LoadLiveRows returns the persisted live sheet, or nil when none is saved.
func LoadLiveRows(ctx context.Context, kv hrm.KV) ([]Row, error) {
	raw, found, err := kv.Get(ctx, hrm.KeyTrafficCounts)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &hrm.CorruptStateError{Key: hrm.KeyTrafficCounts, Cause: err}
	}
	return rows, nil
}

// SaveLiveRows persists the live sheet between inputs.
func SaveLiveRows(ctx context.Context, kv hrm.KV, rows []Row) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return kv.Put(ctx, hrm.KeyTrafficCounts, raw)
}

// ClearLiveRows removes the live sheet key (counter reset).
func ClearLiveRows(ctx context.Context, kv hrm.KV) error {
	return kv.Delete(ctx, hrm.KeyTrafficCounts)
}

// LoadHistory returns the saved daily entries. Missing key yields an empty
// history.
func LoadHistory(ctx context.Context, kv hrm.KV) (History, error) {
	raw, found, err := kv.Get(ctx, hrm.KeyTrafficHistory)
	if err != nil {
		return nil, err
	}
	h := make(History)
	if !found {
		return h, nil
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, &hrm.CorruptStateError{Key: hrm.KeyTrafficHistory, Cause: err}
	}
	return h, nil
}

// SaveHistory persists the daily entries.
func SaveHistory(ctx context.Context, kv hrm.KV, h History) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return kv.Put(ctx, hrm.KeyTrafficHistory, raw)
}
