/*
Package hierarchy resolves which roster records a user may view or act upon.

PURPOSE:
  Given the acting user and the employee roster, computes the accessible-ID
  set: self, direct reports, and transitive reports through one management
  level (Employee -> Team Leader -> Manager, at most two hops).

ACCESS RESULT:
  The result is a tagged Access value: either Unrestricted (Admin/HR see the
  full roster) or restricted to an explicit set. An empty restricted set and
  "no restriction" are distinct values: a restricted set always contains at
  least the user's own id.

RULES:
  Admin, HR     -> Unrestricted
  Manager       -> self + employees reporting to the manager (their team
                   leaders) + employees reporting to any of those leaders
  Team Leader   -> self + direct reports
  anything else -> self only (including unrecognized roles)

SEE ALSO:
  - hrm/types.go: Role parsing
  - leave, payroll, attendance: Filter views through Access
*/
package hierarchy

import (
	"github.com/gravity/hrm-engine/hrm"
)

// =============================================================================
// ACCESS - Tagged visibility result
// =============================================================================

// Access is either unrestricted or an explicit id set. The zero value is a
// restricted, empty set; use Resolve or Unrestricted to construct.
type Access struct {
	unrestricted bool
	ids          map[string]struct{}
}

// Unrestricted returns the full-visibility access value.
func Unrestricted() Access { return Access{unrestricted: true} }

// RestrictedTo returns access limited to the given ids.
func RestrictedTo(ids ...string) Access {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Access{ids: set}
}

// IsUnrestricted reports whether this access covers the whole roster.
func (a Access) IsUnrestricted() bool { return a.unrestricted }

// Contains reports whether the given employee id is visible.
func (a Access) Contains(id string) bool {
	if a.unrestricted {
		return true
	}
	_, ok := a.ids[id]
	return ok
}

// IDs returns the restricted id set. Nil when unrestricted.
func (a Access) IDs() []string {
	if a.unrestricted {
		return nil
	}
	out := make([]string, 0, len(a.ids))
	for id := range a.ids {
		out = append(out, id)
	}
	return out
}

// Filter returns the visible subset of employees, preserving order.
func (a Access) Filter(employees []hrm.Employee) []hrm.Employee {
	if a.unrestricted {
		return employees
	}
	var out []hrm.Employee
	for _, e := range employees {
		if a.Contains(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolve computes the accessible-ID set for a user against the roster.
// Pure: the same inputs always produce the same result.
func Resolve(user hrm.Identity, employees []hrm.Employee) Access {
	switch user.ParsedRole() {
	case hrm.RoleAdmin, hrm.RoleHR:
		return Unrestricted()
	case hrm.RoleManager:
		return resolveManager(user.ID, employees)
	case hrm.RoleTeamLeader:
		return resolveTeamLeader(user.ID, employees)
	default:
		return RestrictedTo(user.ID)
	}
}

func resolveManager(userID string, employees []hrm.Employee) Access {
	set := map[string]struct{}{userID: {}}

	// First hop: the manager's team leaders.
	leaders := make(map[string]struct{})
	for _, e := range employees {
		if e.ReportsTo == userID {
			set[e.ID] = struct{}{}
			leaders[e.ID] = struct{}{}
		}
	}

	// Second hop: everyone reporting to those leaders.
	for _, e := range employees {
		if _, ok := leaders[e.ReportsTo]; ok {
			set[e.ID] = struct{}{}
		}
	}

	return Access{ids: set}
}

func resolveTeamLeader(userID string, employees []hrm.Employee) Access {
	set := map[string]struct{}{userID: {}}
	for _, e := range employees {
		if e.ReportsTo == userID {
			set[e.ID] = struct{}{}
		}
	}
	return Access{ids: set}
}

// CanViewEmployee reports whether the user may see the given employee id.
func CanViewEmployee(user hrm.Identity, employees []hrm.Employee, employeeID string) bool {
	return Resolve(user, employees).Contains(employeeID)
}
