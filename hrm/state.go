/*
state.go - Persisted state document and the KV persistence boundary

PURPOSE:
  Defines the interface between the domain logic and storage. The persisted
  layout is a small set of named JSON documents, preserving the key contract
  of the original deployment so existing data loads unchanged.

DOCUMENT KEYS:
  gravity_hrm_state    The State document (roster, packages, leaves, payroll)
  loginReports         Attendance sessions
  alienTrafficCounts   Live (unsaved) traffic counter rows
  alienTrafficHistory  Saved per-day traffic entries
  currentUser          Acting identity (+ three legacy identity keys)

FAIL-CLOSED DECODING:
  A document that exists but does not decode raises CorruptStateError and
  nothing is applied. A missing document decodes to its zero value; engines
  treat empty input as neutral, never as an error.

OWNERSHIP:
  Store is an explicit object passed to whoever needs persistence. There is
  no ambient global state; load/save boundaries are always visible at the
  call site.

IMPLEMENTATIONS:
  - store/sqlite: Production single-file SQLite store
  - hrm/store:    In-memory store for tests

SEE ALSO:
  - types.go: The record types held by State
  - roster/roster.go: The main State mutator
*/
package hrm

import (
	"context"
	"encoding/json"
)

// =============================================================================
// DOCUMENT KEYS
// =============================================================================

const (
	KeyState            = "gravity_hrm_state"
	KeyLoginReports     = "loginReports"
	KeyTrafficCounts    = "alienTrafficCounts"
	KeyTrafficHistory   = "alienTrafficHistory"
	KeyCurrentUser      = "currentUser"
	KeyLegacyEmployee   = "currentEmployee"
	KeyLegacyRole       = "currentRole"
	KeyLegacyID         = "currentID"
	KeyDashboardSection = "activeDashboardSection"
	KeyPayrollMonth     = "selectedPayrollMonth"
)

// =============================================================================
// KV - Raw document storage
// =============================================================================

// KV stores named JSON documents. Get returns found=false for a missing
// key rather than an error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// =============================================================================
// STATE DOCUMENT
// =============================================================================

// State is the main persisted document. Everything the roster, leave, and
// payroll modules operate on lives here and is written back wholesale.
type State struct {
	Employees      []Employee      `json:"employees"`
	Packages       []SalaryPackage `json:"packages"`
	Leaves         []LeaveRequest  `json:"leaves,omitempty"`
	PayrollHistory PayrollHistory  `json:"payrollHistory,omitempty"`
	CurrentTab     string          `json:"currentTab,omitempty"`
	Theme          string          `json:"theme,omitempty"`
	SortBy         string          `json:"sortBy,omitempty"`
	SortOrder      string          `json:"sortOrder,omitempty"`
}

// FindEmployee returns a pointer into Employees for in-place mutation,
// or nil if the id is unknown.
func (st *State) FindEmployee(id string) *Employee {
	for i := range st.Employees {
		if st.Employees[i].ID == id {
			return &st.Employees[i]
		}
	}
	return nil
}

// FindPackage looks a package up by id.
func (st *State) FindPackage(id string) *SalaryPackage {
	for i := range st.Packages {
		if st.Packages[i].ID == id {
			return &st.Packages[i]
		}
	}
	return nil
}

// ResolvePackage accepts a package name or id. CSV imports reference
// packages either way.
func (st *State) ResolvePackage(nameOrID string) *SalaryPackage {
	for i := range st.Packages {
		if st.Packages[i].ID == nameOrID || st.Packages[i].Name == nameOrID {
			return &st.Packages[i]
		}
	}
	return nil
}

// PackageFor returns the employee's assigned package, or nil when none is
// assigned or the reference dangles. Callers render "Not Assigned".
func (st *State) PackageFor(e Employee) *SalaryPackage {
	if e.SalaryPackage == "" {
		return nil
	}
	return st.FindPackage(e.SalaryPackage)
}

// =============================================================================
// STORE - Typed load/save over a KV
// =============================================================================

// Store is the explicit persistence object handed to controllers. It owns
// JSON encoding and the fail-closed decode policy; it holds no state itself.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store { return &Store{kv: kv} }

func (s *Store) getJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, &CorruptStateError{Key: key, Cause: err}
	}
	return true, nil
}

func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, key, raw)
}

// LoadState loads the main document. Missing key yields an empty State.
func (s *Store) LoadState(ctx context.Context) (*State, error) {
	st := &State{}
	if _, err := s.getJSON(ctx, KeyState, st); err != nil {
		return nil, err
	}
	if st.PayrollHistory == nil {
		st.PayrollHistory = make(PayrollHistory)
	}
	return st, nil
}

// SaveState writes the main document back wholesale.
func (s *Store) SaveState(ctx context.Context, st *State) error {
	return s.putJSON(ctx, KeyState, st)
}

// LoadSessions loads the attendance session log.
func (s *Store) LoadSessions(ctx context.Context) ([]LoginSession, error) {
	var sessions []LoginSession
	if _, err := s.getJSON(ctx, KeyLoginReports, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SaveSessions writes the attendance session log.
func (s *Store) SaveSessions(ctx context.Context, sessions []LoginSession) error {
	return s.putJSON(ctx, KeyLoginReports, sessions)
}

// LoadIdentity returns the acting user, migrating the three legacy keys
// forward to the currentUser document when only those are present.
func (s *Store) LoadIdentity(ctx context.Context) (*Identity, error) {
	var id Identity
	found, err := s.getJSON(ctx, KeyCurrentUser, &id)
	if err != nil {
		return nil, err
	}
	if found {
		return &id, nil
	}

	// Legacy sessions stored name/role/id as three raw strings.
	name, foundName, err := s.kv.Get(ctx, KeyLegacyEmployee)
	if err != nil {
		return nil, err
	}
	role, foundRole, err := s.kv.Get(ctx, KeyLegacyRole)
	if err != nil {
		return nil, err
	}
	rawID, foundID, err := s.kv.Get(ctx, KeyLegacyID)
	if err != nil {
		return nil, err
	}
	if !foundName || !foundRole || !foundID {
		return nil, nil
	}

	id = Identity{ID: string(rawID), Name: string(name), Role: string(role)}
	if err := s.SaveIdentity(ctx, id); err != nil {
		return nil, err
	}
	return &id, nil
}

// SaveIdentity persists the acting user, keeping the legacy keys in sync
// for older readers of the state layout.
func (s *Store) SaveIdentity(ctx context.Context, id Identity) error {
	if err := s.putJSON(ctx, KeyCurrentUser, id); err != nil {
		return err
	}
	if err := s.kv.Put(ctx, KeyLegacyEmployee, []byte(id.Name)); err != nil {
		return err
	}
	if err := s.kv.Put(ctx, KeyLegacyRole, []byte(id.Role)); err != nil {
		return err
	}
	return s.kv.Put(ctx, KeyLegacyID, []byte(id.ID))
}

// ClearIdentity removes the acting user and all legacy identity keys.
func (s *Store) ClearIdentity(ctx context.Context) error {
	for _, key := range []string{KeyCurrentUser, KeyLegacyEmployee, KeyLegacyRole, KeyLegacyID} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// UIPrefs are the per-deployment view preferences kept outside the main
// document, under their original keys.
type UIPrefs struct {
	DashboardSection string
	PayrollMonth     string
}

// LoadPrefs reads the view preferences. Missing keys read as empty strings.
func (s *Store) LoadPrefs(ctx context.Context) (UIPrefs, error) {
	var p UIPrefs
	if raw, found, err := s.kv.Get(ctx, KeyDashboardSection); err != nil {
		return p, err
	} else if found {
		p.DashboardSection = string(raw)
	}
	if raw, found, err := s.kv.Get(ctx, KeyPayrollMonth); err != nil {
		return p, err
	} else if found {
		p.PayrollMonth = string(raw)
	}
	return p, nil
}

// SavePrefs writes the view preferences. An empty value removes its key,
// matching how the original layout dropped unset preferences.
func (s *Store) SavePrefs(ctx context.Context, p UIPrefs) error {
	if err := s.putRawOrDelete(ctx, KeyDashboardSection, p.DashboardSection); err != nil {
		return err
	}
	return s.putRawOrDelete(ctx, KeyPayrollMonth, p.PayrollMonth)
}

func (s *Store) putRawOrDelete(ctx context.Context, key, value string) error {
	if value == "" {
		return s.kv.Delete(ctx, key)
	}
	return s.kv.Put(ctx, key, []byte(value))
}

// KV exposes the underlying document store for modules that own their own
// keys (traffic counter).
func (s *Store) KV() KV { return s.kv }
