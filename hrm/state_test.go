package hrm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravity/hrm-engine/hrm"
	memstore "github.com/gravity/hrm-engine/hrm/store"
)

func newStore() (*hrm.Store, *memstore.Memory) {
	kv := memstore.NewMemory()
	return hrm.NewStore(kv), kv
}

// =============================================================================
// STATE DOCUMENT
// =============================================================================

func TestLoadState_MissingIsEmpty(t *testing.T) {
	store, _ := newStore()

	st, err := store.LoadState(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.Employees)
	assert.NotNil(t, st.PayrollHistory, "history map is always usable")
}

func TestSaveLoadState_Roundtrip(t *testing.T) {
	store, _ := newStore()
	ctx := context.Background()

	st := &hrm.State{
		Employees: []hrm.Employee{{ID: "E1", Name: "Evan", Role: "Employee"}},
		Leaves:    []hrm.LeaveRequest{{ID: "LV-1", EmpID: "E1", Days: 2, Status: hrm.LeavePending}},
	}
	require.NoError(t, store.SaveState(ctx, st))

	loaded, err := store.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, st.Employees, loaded.Employees)
	assert.Equal(t, st.Leaves, loaded.Leaves)
}

func TestLoadState_CorruptFailsClosed(t *testing.T) {
	// GIVEN: A state document that is not valid JSON
	// WHEN: Loading
	// THEN: ErrCorruptState, and no partial state comes back

	store, kv := newStore()
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, hrm.KeyState, []byte("{not json")))

	st, err := store.LoadState(ctx)
	assert.ErrorIs(t, err, hrm.ErrCorruptState)
	assert.Nil(t, st)

	var corrupt *hrm.CorruptStateError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, hrm.KeyState, corrupt.Key)
}

// =============================================================================
// IDENTITY
// =============================================================================

func TestIdentity_SaveLoadClear(t *testing.T) {
	store, _ := newStore()
	ctx := context.Background()

	require.NoError(t, store.SaveIdentity(ctx, hrm.Identity{ID: "E1", Name: "Evan", Role: "Employee"}))

	user, err := store.LoadIdentity(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "E1", user.ID)

	require.NoError(t, store.ClearIdentity(ctx))
	user, err = store.LoadIdentity(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestIdentity_LegacyKeysMigrateForward(t *testing.T) {
	// GIVEN: Only the three legacy identity keys from an old deployment
	// WHEN: Loading the identity
	// THEN: The identity is recovered and the currentUser document written

	store, kv := newStore()
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, hrm.KeyLegacyEmployee, []byte("Evan")))
	require.NoError(t, kv.Put(ctx, hrm.KeyLegacyRole, []byte("Employee")))
	require.NoError(t, kv.Put(ctx, hrm.KeyLegacyID, []byte("E1")))

	user, err := store.LoadIdentity(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, hrm.Identity{ID: "E1", Name: "Evan", Role: "Employee"}, *user)

	_, found, err := kv.Get(ctx, hrm.KeyCurrentUser)
	require.NoError(t, err)
	assert.True(t, found, "migration writes the new document")
}

func TestIdentity_PartialLegacyKeysIgnored(t *testing.T) {
	store, kv := newStore()
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, hrm.KeyLegacyID, []byte("E1")))

	user, err := store.LoadIdentity(ctx)
	require.NoError(t, err)
	assert.Nil(t, user, "incomplete legacy state does not produce an identity")
}

// =============================================================================
// LOOKUPS
// =============================================================================

func TestResolvePackage_NameOrID(t *testing.T) {
	st := &hrm.State{Packages: []hrm.SalaryPackage{{ID: "PKG-001", Name: "Standard Executive"}}}

	assert.NotNil(t, st.ResolvePackage("PKG-001"))
	assert.NotNil(t, st.ResolvePackage("Standard Executive"))
	assert.Nil(t, st.ResolvePackage("Nope"))
}

func TestPackageFor_DanglingReference(t *testing.T) {
	st := &hrm.State{Packages: []hrm.SalaryPackage{{ID: "PKG-001"}}}

	assert.Nil(t, st.PackageFor(hrm.Employee{ID: "E1"}), "no assignment")
	assert.Nil(t, st.PackageFor(hrm.Employee{ID: "E2", SalaryPackage: "PKG-GONE"}), "dangling reference")
	assert.NotNil(t, st.PackageFor(hrm.Employee{ID: "E3", SalaryPackage: "PKG-001"}))
}

func TestRoleParsing(t *testing.T) {
	assert.Equal(t, hrm.RoleAdmin, hrm.ParseRole("Admin"))
	assert.Equal(t, hrm.RoleTeamLeader, hrm.ParseRole("Team Leader"))
	assert.Equal(t, hrm.RoleUnknown, hrm.ParseRole("IT Team"))
	assert.Equal(t, hrm.RoleUnknown, hrm.ParseRole(""))
}
