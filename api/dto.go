/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Monetary amounts cross the wire as strings with 2 decimal places. The
  internal decimals never pass through float64.

VALIDATION:
  Validation is done in handlers and the domain packages, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - hrm/types.go: The internal records these project
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/gravity/hrm-engine/attendance"
	"github.com/gravity/hrm-engine/hrm"
	"github.com/gravity/hrm-engine/leave"
	"github.com/gravity/hrm-engine/payroll"
	"github.com/gravity/hrm-engine/traffic"
)

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest carries the roster id (or "admin") and the secret code.
type LoginRequest struct {
	ID  string `json:"id"`
	Pin string `json:"pin"`
}

// IdentityDTO is the acting user returned after login.
type IdentityDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO mirrors the roster record minus the secret code.
type EmployeeDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Designation   string `json:"designation,omitempty"`
	Status        string `json:"status"`
	DOJ           string `json:"doj,omitempty"`
	Education     string `json:"edu,omitempty"`
	Mobile        string `json:"mobile,omitempty"`
	DOB           string `json:"dob,omitempty"`
	Email         string `json:"email,omitempty"`
	SalaryPackage string `json:"salaryPackage,omitempty"`
	ManagerID     string `json:"managerId,omitempty"`
	TeamLeaderID  string `json:"teamLeaderId,omitempty"`
	ReportsTo     string `json:"reportsTo,omitempty"`
	BloodGroup    string `json:"blood,omitempty"`
	Expiry        int64  `json:"expiry,omitempty"`
}

// UpsertEmployeeRequest creates or updates a roster record.
type UpsertEmployeeRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Designation   string `json:"designation"`
	DOJ           string `json:"doj"`
	Education     string `json:"edu"`
	Mobile        string `json:"mobile"`
	DOB           string `json:"dob"`
	Email         string `json:"email"`
	SecretCode    string `json:"secretCode"`
	SalaryPackage string `json:"salaryPackage"`
	ManagerID     string `json:"managerId"`
	TeamLeaderID  string `json:"teamLeaderId"`
	ReportsTo     string `json:"reportsTo"`
	BloodGroup    string `json:"blood"`
}

// =============================================================================
// SALARY PACKAGES
// =============================================================================

// PackageDTO is a salary package with derived totals.
type PackageDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Basic      string `json:"basic"`
	HRA        string `json:"hra"`
	Conveyance string `json:"conveyance"`
	Medical    string `json:"medical"`
	Special    string `json:"special"`
	Bonus      string `json:"bonus"`
	DA         string `json:"da"`
	Variable   string `json:"variable"`
	PF         string `json:"pf"`
	Tax        string `json:"tax"`
	Gross      string `json:"gross"`
	Net        string `json:"net"`
}

// UpsertPackageRequest creates or replaces a package template. Amounts are
// decimal strings; empty means zero.
type UpsertPackageRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Basic      string `json:"basic"`
	HRA        string `json:"hra"`
	Conveyance string `json:"conveyance"`
	Medical    string `json:"medical"`
	Special    string `json:"special"`
	Bonus      string `json:"bonus"`
	DA         string `json:"da"`
	Variable   string `json:"variable"`
	PF         string `json:"pf"`
	Tax        string `json:"tax"`
}

// =============================================================================
// LEAVE
// =============================================================================

// ApplyLeaveRequest submits a new leave application.
type ApplyLeaveRequest struct {
	EmpID  string `json:"empId"`
	Type   string `json:"type"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}

// LeaveDTO is one leave request in API responses.
type LeaveDTO struct {
	ID          string `json:"id"`
	EmpID       string `json:"empId"`
	EmpName     string `json:"empName,omitempty"`
	Type        string `json:"type"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Days        int    `json:"days"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	RequestedAt string `json:"requestedAt,omitempty"`
}

// BalancesDTO is the derived leave position for one employee.
type BalancesDTO struct {
	EmpID          string `json:"empId"`
	TenureMonths   int    `json:"tenureMonths"`
	EarnedPaid     string `json:"earnedPaid"`
	EarnedSick     int    `json:"earnedSick"`
	Taken          string `json:"taken"`
	TotalRemaining string `json:"totalRemaining"`
}

// =============================================================================
// PAYROLL
// =============================================================================

// PayrollRowDTO is one employee's computed pay for the selected month.
type PayrollRowDTO struct {
	EmpID         string `json:"empId"`
	Name          string `json:"name"`
	Designation   string `json:"designation,omitempty"`
	PackageName   string `json:"packageName"`
	ProRatedNet   string `json:"baseNetSalary"`
	SpecialBonus  string `json:"specialBonus"`
	NetPayable    string `json:"totalNetPayable"`
	DaysPayable   int    `json:"daysPayable"`
	ProRatedGross string `json:"proRatedGross"`
}

// SetOverrideRequest adjusts one employee's pay for one month.
type SetOverrideRequest struct {
	SpecialBonus string `json:"specialBonus"`
	DaysPayable  int    `json:"daysPayable"`
}

// BonusImportResultDTO reports what a bonus CSV import applied.
type BonusImportResultDTO struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// AttendanceGroupDTO is one employee's aggregated sessions.
type AttendanceGroupDTO struct {
	EmployeeID string       `json:"employeeId"`
	Name       string       `json:"name"`
	Role       string       `json:"role,omitempty"`
	Sessions   []SessionDTO `json:"sessions"`
	TotalHours float64      `json:"totalHours"`
	Status     string       `json:"status"`
}

// SessionDTO is one login/logout pair.
type SessionDTO struct {
	Login    string `json:"login"`
	Logout   string `json:"logout,omitempty"`
	Duration string `json:"duration"`
}

// =============================================================================
// TRAFFIC
// =============================================================================

// TrafficStateDTO is the live counting sheet.
type TrafficStateDTO struct {
	Rows      []traffic.Row `json:"rows"`
	Total     int           `json:"total"`
	StartedAt string        `json:"startedAt"`
}

// IncrementRequest bumps one cell of the live sheet.
type IncrementRequest struct {
	Direction string `json:"direction"`
	Class     string `json:"class"`
}

// TrafficSaveResultDTO reports the day's entry after a save.
type TrafficSaveResultDTO struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
	Peak  string `json:"peak"`
}

// TrafficDayDTO is one day of the monthly summary.
type TrafficDayDTO struct {
	Date         string                  `json:"date"`
	Total        int                     `json:"total"`
	Peak         string                  `json:"peak"`
	Contributors []TrafficContributorDTO `json:"contributors"`
}

// TrafficContributorDTO summarizes one contributor's sessions on a day.
type TrafficContributorDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	MinHours float64 `json:"minHours"`
	AvgHours float64 `json:"avgHours"`
	MaxHours float64 `json:"maxHours"`
}

// TrafficMonthDTO is the monthly roll-up.
type TrafficMonthDTO struct {
	Month    string          `json:"month"`
	Days     []TrafficDayDTO `json:"days"`
	UserDays map[string]int  `json:"userDays"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func toIdentityDTO(id hrm.Identity) IdentityDTO {
	return IdentityDTO{ID: id.ID, Name: id.Name, Role: id.Role}
}

func toEmployeeDTO(e hrm.Employee) EmployeeDTO {
	status := string(e.Status)
	if status == "" {
		status = string(hrm.StatusActive)
	}
	return EmployeeDTO{
		ID:            e.ID,
		Name:          e.Name,
		Role:          e.Role,
		Designation:   e.Designation,
		Status:        status,
		DOJ:           e.DOJ,
		Education:     e.Education,
		Mobile:        e.Mobile,
		DOB:           e.DOB,
		Email:         e.Email,
		SalaryPackage: e.SalaryPackage,
		ManagerID:     e.ManagerID,
		TeamLeaderID:  e.TeamLeaderID,
		ReportsTo:     e.ReportsTo,
		BloodGroup:    e.BloodGroup,
		Expiry:        e.Expiry,
	}
}

func toEmployeeDTOs(employees []hrm.Employee) []EmployeeDTO {
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	return dtos
}

func toPackageDTO(p hrm.SalaryPackage) PackageDTO {
	totals := payroll.PackageTotals(&p)
	return PackageDTO{
		ID:         p.ID,
		Name:       p.Name,
		Basic:      money(p.Basic),
		HRA:        money(p.HRA),
		Conveyance: money(p.Conveyance),
		Medical:    money(p.Medical),
		Special:    money(p.Special),
		Bonus:      money(p.Bonus),
		DA:         money(p.DA),
		Variable:   money(p.Variable),
		PF:         money(p.PF),
		Tax:        money(p.Tax),
		Gross:      money(totals.Gross),
		Net:        money(totals.Net),
	}
}

func toLeaveDTO(r hrm.LeaveRequest, empName string) LeaveDTO {
	return LeaveDTO{
		ID:          r.ID,
		EmpID:       r.EmpID,
		EmpName:     empName,
		Type:        r.Type,
		Start:       r.Start,
		End:         r.End,
		Days:        r.Days,
		Status:      string(r.Status),
		Reason:      r.Reason,
		RequestedAt: r.RequestedAt,
	}
}

func toBalancesDTO(empID string, b leave.Balances) BalancesDTO {
	return BalancesDTO{
		EmpID:          empID,
		TenureMonths:   b.TenureMonths,
		EarnedPaid:     b.EarnedPaid.String(),
		EarnedSick:     b.EarnedSick,
		Taken:          b.Taken.String(),
		TotalRemaining: b.TotalRemaining.String(),
	}
}

// PresenceDTO is one employee's Present-day count for a month.
type PresenceDTO struct {
	EmpID string `json:"empId"`
	Name  string `json:"name"`
	Days  int    `json:"days"`
}

// PrefsDTO carries the persisted view preferences.
type PrefsDTO struct {
	DashboardSection string `json:"dashboardSection"`
	PayrollMonth     string `json:"payrollMonth"`
}

func toAttendanceGroupDTO(g attendance.Group) AttendanceGroupDTO {
	sessions := make([]SessionDTO, len(g.Sessions))
	for i, s := range g.Sessions {
		sessions[i] = SessionDTO{Login: s.Login, Logout: s.Logout}
	}
	return AttendanceGroupDTO{
		EmployeeID: g.EmployeeID,
		Name:       g.Name,
		Role:       g.Role,
		Sessions:   sessions,
		TotalHours: g.Total.Hours(),
		Status:     string(g.Status()),
	}
}

func toTrafficMonthDTO(monthKey string, summary traffic.MonthSummary) TrafficMonthDTO {
	out := TrafficMonthDTO{Month: monthKey, UserDays: summary.UserDays}
	for _, day := range summary.Days {
		dto := TrafficDayDTO{Date: day.Date, Total: day.Total, Peak: day.Peak}
		for id, stats := range day.Contributors {
			dto.Contributors = append(dto.Contributors, TrafficContributorDTO{
				ID:       id,
				Name:     stats.Name,
				Count:    stats.Count,
				MinHours: stats.MinHours,
				AvgHours: stats.AvgHours,
				MaxHours: stats.MaxHours,
			})
		}
		out.Days = append(out.Days, dto)
	}
	return out
}
