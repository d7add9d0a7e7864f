/*
auth.go - Login, logout, and the acting identity

PURPOSE:
  A local credential comparison, by design: the builtin admin account or a
  case-insensitive roster id lookup plus a plain secret-code equality check.
  There is no token issuance or password hashing here; this system's trust
  boundary is the machine it runs on.

  A successful login persists the identity (current + legacy keys) and
  records an attendance session; logout closes the open session and clears
  the identity.
*/
package roster

import (
	"context"
	"strings"
	"time"

	"github.com/gravity/hrm-engine/attendance"
	"github.com/gravity/hrm-engine/hrm"
)

const (
	builtinAdminID  = "admin"
	builtinAdminPin = "admin123"
)

var builtinAdmin = hrm.Identity{ID: "admin", Name: "System Admin", Role: "Admin"}

// Authenticate checks credentials against the builtin admin and the roster.
// Returns hrm.ErrInvalidCredentials on any failure; missing secret codes on
// legacy records fail closed.
func Authenticate(st *hrm.State, id, pin string) (hrm.Identity, error) {
	if id == "" || pin == "" {
		return hrm.Identity{}, hrm.ErrInvalidCredentials
	}

	if id == builtinAdminID && pin == builtinAdminPin {
		return builtinAdmin, nil
	}

	for _, e := range st.Employees {
		if !strings.EqualFold(e.ID, id) {
			continue
		}
		if e.SecretCode != "" && e.SecretCode == pin {
			return hrm.Identity{ID: e.ID, Name: e.Name, Role: e.Role}, nil
		}
		break
	}

	return hrm.Identity{}, hrm.ErrInvalidCredentials
}

// Login authenticates and, on success, persists the identity and records
// an attendance session (suppressed if one is already open for the id).
func Login(ctx context.Context, store *hrm.Store, st *hrm.State, id, pin string, now time.Time) (hrm.Identity, error) {
	user, err := Authenticate(st, id, pin)
	if err != nil {
		return hrm.Identity{}, err
	}

	if err := store.SaveIdentity(ctx, user); err != nil {
		return hrm.Identity{}, err
	}

	sessions, err := store.LoadSessions(ctx)
	if err != nil {
		return hrm.Identity{}, err
	}
	sessions, created := attendance.RecordLogin(sessions, user.Name, user.ID, user.Role, now)
	if created {
		if err := store.SaveSessions(ctx, sessions); err != nil {
			return hrm.Identity{}, err
		}
	}

	return user, nil
}

// Logout closes the current user's open attendance session (no-op when
// none is open) and clears the identity keys. Safe to call when nobody is
// logged in.
func Logout(ctx context.Context, store *hrm.Store, now time.Time) error {
	user, err := store.LoadIdentity(ctx)
	if err != nil {
		return err
	}

	if user != nil {
		sessions, err := store.LoadSessions(ctx)
		if err != nil {
			return err
		}
		if attendance.RecordLogout(sessions, user.Name, user.ID, now) {
			if err := store.SaveSessions(ctx, sessions); err != nil {
				return err
			}
		}
	}

	return store.ClearIdentity(ctx)
}
