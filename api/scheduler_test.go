package api_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravity/hrm-engine/api"
	"github.com/gravity/hrm-engine/hrm"
	memstore "github.com/gravity/hrm-engine/hrm/store"
	"github.com/gravity/hrm-engine/roster"
)

func TestExpirySweeper_RunNow(t *testing.T) {
	// GIVEN: One expired past employee and one active
	// WHEN: Running the sweeper once
	// THEN: Only the expired record is purged from the persisted state

	ctx := context.Background()
	store := hrm.NewStore(memstore.NewMemory())

	st := &hrm.State{Employees: []hrm.Employee{
		{ID: "E1", Name: "Evan"},
		{ID: "E2", Name: "Erin"},
	}}
	require.NoError(t, roster.MoveToPast(st, "E1", time.Now().Add(-200*24*time.Hour)))
	require.NoError(t, store.SaveState(ctx, st))

	sweeper := api.NewExpirySweeper(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	sweeper.RunNow()

	after, err := store.LoadState(ctx)
	require.NoError(t, err)
	assert.Nil(t, after.FindEmployee("E1"))
	assert.NotNil(t, after.FindEmployee("E2"))
}

func TestExpirySweeper_StartStop(t *testing.T) {
	store := hrm.NewStore(memstore.NewMemory())
	sweeper := api.NewExpirySweeper(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	sweeper.CheckInterval = time.Hour

	sweeper.Start()
	sweeper.Stop() // must not hang or panic
}
