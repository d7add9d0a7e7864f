/*
Package hrm provides the core domain model for the Gravity HRM engine.

PURPOSE:
  This package contains the shared types and document model for an HR
  administration system: the employee roster, salary package templates,
  leave requests, login sessions, and per-month payroll overrides. The
  derived-state engines (hierarchy, leave, payroll, attendance, traffic)
  consume these records and produce view models; they never own state.

KEY CONCEPTS IN THIS FILE (types.go):
  - Role: Closed enum parsed from stored role strings
  - Employee: Roster record with lifecycle (active -> past -> purged)
  - SalaryPackage: Monthly compensation template (earnings + deductions)
  - LeaveRequest: A dated leave application with a terminal decision
  - LoginSession: One login/logout pair for attendance tracking
  - Identity: The acting user (persisted as the current session)

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every monetary amount, no floats
  2. Plain records: engines take snapshots in, return results out
  3. Closed roles: free-form role strings parse to a tagged variant
     with an explicit Unknown case instead of string comparison

SEE ALSO:
  - state.go: The persisted state document and KV boundary
  - errors.go: Sentinel and structured errors
  - time.go: Date and month-key helpers
*/
package hrm

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLES - Closed variant over the stored role strings
// =============================================================================

type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleHR
	RoleManager
	RoleTeamLeader
	RoleEmployee
)

const (
	roleAdminLabel      = "Admin"
	roleHRLabel         = "HR"
	roleManagerLabel    = "Manager"
	roleTeamLeaderLabel = "Team Leader"
	roleEmployeeLabel   = "Employee"
)

// ParseRole maps a stored role string to the closed enum.
// Anything unrecognized (including the legacy "IT Team" label) is RoleUnknown,
// which grants self-only visibility.
func ParseRole(s string) Role {
	switch s {
	case roleAdminLabel:
		return RoleAdmin
	case roleHRLabel:
		return RoleHR
	case roleManagerLabel:
		return RoleManager
	case roleTeamLeaderLabel:
		return RoleTeamLeader
	case roleEmployeeLabel:
		return RoleEmployee
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return roleAdminLabel
	case RoleHR:
		return roleHRLabel
	case RoleManager:
		return roleManagerLabel
	case RoleTeamLeader:
		return roleTeamLeaderLabel
	case RoleEmployee:
		return roleEmployeeLabel
	default:
		return "Unknown"
	}
}

// =============================================================================
// EMPLOYEE - Roster record
// =============================================================================

type EmployeeStatus string

const (
	StatusActive EmployeeStatus = "active"
	StatusPast   EmployeeStatus = "past"
)

// Employee is one roster entry. Field names follow the persisted JSON
// contract, so existing state documents load without migration.
type Employee struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Role          string         `json:"role"`
	Designation   string         `json:"designation,omitempty"`
	Status        EmployeeStatus `json:"status,omitempty"`
	DOJ           string         `json:"doj,omitempty"` // date of joining, YYYY-MM-DD
	Education     string         `json:"edu,omitempty"`
	Mobile        string         `json:"mobile,omitempty"`
	DOB           string         `json:"dob,omitempty"`
	Email         string         `json:"email,omitempty"`
	SecretCode    string         `json:"secretCode,omitempty"`
	SalaryPackage string         `json:"salaryPackage,omitempty"` // SalaryPackage.ID
	ManagerID     string         `json:"managerId,omitempty"`
	TeamLeaderID  string         `json:"teamLeaderId,omitempty"`
	ReportsTo     string         `json:"reportsTo,omitempty"`
	BloodGroup    string         `json:"blood,omitempty"`

	// Expiry is the purge deadline (unix milliseconds) set when the
	// employee is moved to past. Zero means no pending purge.
	Expiry int64 `json:"expiry,omitempty"`
}

// IsActive treats a missing status as active (legacy records).
func (e Employee) IsActive() bool { return e.Status != StatusPast }

// ParsedRole returns the closed role variant for this employee.
func (e Employee) ParsedRole() Role { return ParseRole(e.Role) }

// =============================================================================
// SALARY PACKAGE - Monthly compensation template
// =============================================================================

// SalaryPackage holds the fixed monthly components. All amounts are
// non-negative monthly values; gross/net are derived, never stored.
type SalaryPackage struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Earnings
	Basic      decimal.Decimal `json:"basic"`
	HRA        decimal.Decimal `json:"hra"`
	Conveyance decimal.Decimal `json:"conveyance"`
	Medical    decimal.Decimal `json:"medical"`
	Special    decimal.Decimal `json:"special"`
	Bonus      decimal.Decimal `json:"bonus"`
	DA         decimal.Decimal `json:"da"`
	Variable   decimal.Decimal `json:"variable"`

	// Deductions
	PF  decimal.Decimal `json:"pf"`
	Tax decimal.Decimal `json:"tax"`
}

// =============================================================================
// LEAVE REQUEST
// =============================================================================

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "Approved"
	LeaveRejected LeaveStatus = "Rejected"
)

// Decided reports whether the request has reached a terminal status.
func (s LeaveStatus) Decided() bool { return s == LeaveApproved || s == LeaveRejected }

type LeaveRequest struct {
	ID          string      `json:"id"`
	EmpID       string      `json:"empId"`
	Type        string      `json:"type"`
	Start       string      `json:"start"` // inclusive, YYYY-MM-DD
	End         string      `json:"end"`   // inclusive, YYYY-MM-DD
	Days        int         `json:"days"`
	Status      LeaveStatus `json:"status"`
	Reason      string      `json:"reason,omitempty"`
	RequestedAt string      `json:"requestedAt,omitempty"`
}

// =============================================================================
// LOGIN SESSION - One attendance record
// =============================================================================

// LoginSession is a single login/logout pair. Logout is empty while the
// session is open. Timestamps are RFC3339 strings, matching the stored form.
type LoginSession struct {
	Name   string `json:"name"`
	ID     string `json:"id"`
	Role   string `json:"role"`
	Login  string `json:"login"`
	Logout string `json:"logout,omitempty"`
}

// Open reports whether the session has no recorded logout.
func (s LoginSession) Open() bool { return s.Logout == "" }

// =============================================================================
// PAYROLL HISTORY - Per-month per-employee overrides
// =============================================================================

// PayrollOverride adjusts one employee's pay for one month. Absence of an
// override means defaults: zero bonus, the full 26-day divisor.
type PayrollOverride struct {
	SpecialBonus      decimal.Decimal `json:"specialBonus"`
	SpecialBonusCount decimal.Decimal `json:"specialBonusCount,omitempty"`
	DaysPayable       int             `json:"daysPayable"`

	// Frozen figures, present only under the freeze-at-generation policy.
	Frozen *FrozenPayroll `json:"frozen,omitempty"`
}

// FrozenPayroll pins the computed figures at payslip generation time so a
// later package edit cannot silently change an already-issued payslip.
type FrozenPayroll struct {
	ProRatedGross decimal.Decimal `json:"proRatedGross"`
	ProRatedNet   decimal.Decimal `json:"proRatedNet"`
	NetPayable    decimal.Decimal `json:"netPayable"`
	GeneratedAt   string          `json:"generatedAt"`
}

// PayrollHistory is keyed by month ("2006-01"), then employee ID.
type PayrollHistory map[string]map[string]PayrollOverride

// Override returns the entry for (monthKey, empID) or the defaults.
func (h PayrollHistory) Override(monthKey, empID string) PayrollOverride {
	if byEmp, ok := h[monthKey]; ok {
		if o, ok := byEmp[empID]; ok {
			if o.DaysPayable <= 0 {
				o.DaysPayable = StandardPayableDays
			}
			return o
		}
	}
	return PayrollOverride{DaysPayable: StandardPayableDays}
}

// Set stores an override, creating the month bucket as needed.
func (h PayrollHistory) Set(monthKey, empID string, o PayrollOverride) {
	if h[monthKey] == nil {
		h[monthKey] = make(map[string]PayrollOverride)
	}
	h[monthKey][empID] = o
}

// StandardPayableDays is the fixed pro-ration divisor. It is a working-days
// convention, not the calendar length of any particular month.
const StandardPayableDays = 26

// =============================================================================
// IDENTITY - The acting user
// =============================================================================

// Identity is the authenticated user for a session. Admin logins use the
// builtin identity; everyone else is backed by a roster record.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// ParsedRole returns the closed role variant for this identity.
func (u Identity) ParsedRole() Role { return ParseRole(u.Role) }
