/*
Package roster manages the employee directory lifecycle.

PURPOSE:
  Create, update, soft-delete, and reactivate roster records, plus the
  periodic purge of expired past employees.

LIFECYCLE:
  active --MoveToPast--> past (expiry = now + 120 days)
  past --Rejoin--> active (expiry cleared)
  past --SweepExpired--> removed once the expiry elapses

  Moving to past is the soft delete: the record stays visible in the past
  list for 120 days so a mistaken removal can be undone with Rejoin.

SEE ALSO:
  - csv.go: Bulk import/export
  - auth.go: Credential check and session identity
  - seed.go: Sample package templates
*/
package roster

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/gravity/hrm-engine/hrm"
)

// PastRetention is how long a past employee stays recoverable.
const PastRetention = 120 * 24 * time.Hour

// =============================================================================
// CREATION
// =============================================================================

// GenerateID builds a fallback employee id when none is provided.
func GenerateID() string {
	return fmt.Sprintf("E-%d", 1000+rand.Intn(9000))
}

// GenerateSecretCode derives the default login pin from the first name.
func GenerateSecretCode(name string) string {
	first := strings.Fields(name)
	if len(first) == 0 || first[0] == "" {
		return "User@123"
	}
	return first[0] + "@123"
}

// Add validates and appends a new employee. A missing id gets a generated
// one; a missing secret code gets the name-derived default.
func Add(st *hrm.State, emp hrm.Employee) (hrm.Employee, error) {
	if emp.Name == "" {
		return hrm.Employee{}, &hrm.FieldError{Field: "name"}
	}
	if emp.ID == "" {
		emp.ID = GenerateID()
	}
	if emp.SecretCode == "" {
		emp.SecretCode = GenerateSecretCode(emp.Name)
	}
	if emp.Status == "" {
		emp.Status = hrm.StatusActive
	}

	st.Employees = append(st.Employees, emp)
	return emp, nil
}

// Update replaces the record with the given id.
func Update(st *hrm.State, emp hrm.Employee) error {
	existing := st.FindEmployee(emp.ID)
	if existing == nil {
		return fmt.Errorf("%w: %s", hrm.ErrEmployeeNotFound, emp.ID)
	}
	*existing = emp
	return nil
}

// =============================================================================
// SOFT DELETE & RECOVERY
// =============================================================================

// MoveToPast soft-deletes an employee: status past, purge deadline 120
// days out. Already-past employees keep their original deadline.
func MoveToPast(st *hrm.State, id string, now time.Time) error {
	emp := st.FindEmployee(id)
	if emp == nil {
		return fmt.Errorf("%w: %s", hrm.ErrEmployeeNotFound, id)
	}
	if emp.Status == hrm.StatusPast {
		return nil
	}
	emp.Status = hrm.StatusPast
	emp.Expiry = now.Add(PastRetention).UnixMilli()
	return nil
}

// Rejoin reactivates a past employee and clears the purge deadline.
func Rejoin(st *hrm.State, id string) error {
	emp := st.FindEmployee(id)
	if emp == nil {
		return fmt.Errorf("%w: %s", hrm.ErrEmployeeNotFound, id)
	}
	emp.Status = hrm.StatusActive
	emp.Expiry = 0
	return nil
}

// SweepExpired removes past employees whose purge deadline has elapsed.
// Returns how many records were removed.
func SweepExpired(st *hrm.State, now time.Time) int {
	nowMillis := now.UnixMilli()
	kept := st.Employees[:0]
	removed := 0
	for _, e := range st.Employees {
		if e.Status == hrm.StatusPast && e.Expiry != 0 && e.Expiry <= nowMillis {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	st.Employees = kept
	return removed
}

// ActiveEmployees returns the active subset of the roster.
func ActiveEmployees(st *hrm.State) []hrm.Employee {
	var out []hrm.Employee
	for _, e := range st.Employees {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out
}

// PastEmployees returns the soft-deleted subset.
func PastEmployees(st *hrm.State) []hrm.Employee {
	var out []hrm.Employee
	for _, e := range st.Employees {
		if e.Status == hrm.StatusPast {
			out = append(out, e)
		}
	}
	return out
}
