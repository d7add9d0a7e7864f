/*
Package leave implements tenure-based leave accrual and the request lifecycle.

PURPOSE:
  Computes an employee's earned leave entitlement from their date of joining
  and their approved leave history, and manages the Pending -> Approved /
  Rejected request lifecycle.

ACCRUAL RULES:
  tenureMonths   = whole calendar months since joining, floored at zero.
                   Month granularity only: no day-of-month adjustment, so
                   joining on the 30th counts a full month one day later.
                   This coarse accrual is a deliberate business rule and the
                   figures feed audited payroll views, so it is preserved
                   exactly.
  earnedPaid     = tenureMonths * 1.25 (fractional days allowed)
  earnedSick     = floor(tenureMonths / 3) (whole days)
  taken          = sum of days across Approved requests only
  totalRemaining = (earnedPaid + earnedSick) - taken, may go negative

REQUEST LIFECYCLE:
  Apply validates the inclusive day count (> 0) and appends a Pending
  request. Decide is an idempotent terminal set: re-applying the decided
  status is a no-op, flipping it is an error.

SEE ALSO:
  - hrm/types.go: LeaveRequest, LeaveStatus
  - payroll: Same decimal discipline for audited figures
*/
package leave

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gravity/hrm-engine/hrm"
)

// =============================================================================
// BALANCES
// =============================================================================

var (
	paidPerMonth = decimal.RequireFromString("1.25")
)

// Balances is the derived leave position for one employee.
type Balances struct {
	TenureMonths   int
	EarnedPaid     decimal.Decimal
	EarnedSick     int
	Taken          decimal.Decimal
	TotalRemaining decimal.Decimal
}

// ComputeBalances derives the leave position for an employee from the full
// request log. Pure: no hidden clock, the caller supplies "now". Requests
// belonging to other employees and non-Approved requests are ignored.
// A missing or unparseable date of joining counts as zero tenure.
func ComputeBalances(emp hrm.Employee, requests []hrm.LeaveRequest, now time.Time) Balances {
	tenure := 0
	if emp.DOJ != "" {
		if doj, err := hrm.ParseDate(emp.DOJ); err == nil {
			tenure = hrm.MonthsBetween(doj, now)
			if tenure < 0 {
				tenure = 0
			}
		}
	}

	earnedPaid := paidPerMonth.Mul(decimal.NewFromInt(int64(tenure)))
	earnedSick := tenure / 3

	taken := decimal.Zero
	for _, r := range requests {
		if r.EmpID == emp.ID && r.Status == hrm.LeaveApproved {
			taken = taken.Add(decimal.NewFromInt(int64(r.Days)))
		}
	}

	remaining := earnedPaid.Add(decimal.NewFromInt(int64(earnedSick))).Sub(taken)

	return Balances{
		TenureMonths:   tenure,
		EarnedPaid:     earnedPaid,
		EarnedSick:     earnedSick,
		Taken:          taken,
		TotalRemaining: remaining,
	}
}

// =============================================================================
// DAY COUNTING & VALIDATION
// =============================================================================

// InclusiveDays returns the inclusive day count of [start, end].
// Returns hrm.ErrInvalidDateRange when either date fails to parse or the
// count is not positive (end before start).
func InclusiveDays(start, end string) (int, error) {
	s, err := hrm.ParseDate(start)
	if err != nil {
		return 0, fmt.Errorf("%w: start %q", hrm.ErrInvalidDateRange, start)
	}
	e, err := hrm.ParseDate(end)
	if err != nil {
		return 0, fmt.Errorf("%w: end %q", hrm.ErrInvalidDateRange, end)
	}

	days := int(e.Sub(s).Hours()/24) + 1
	if days <= 0 {
		return 0, fmt.Errorf("%w: %s to %s", hrm.ErrInvalidDateRange, start, end)
	}
	return days, nil
}

// =============================================================================
// REQUEST LIFECYCLE
// =============================================================================

// Apply validates the date range and builds a new Pending request.
// Nothing is mutated on validation failure.
func Apply(empID, leaveType, start, end, reason string, now time.Time) (hrm.LeaveRequest, error) {
	if empID == "" {
		return hrm.LeaveRequest{}, &hrm.FieldError{Field: "empId"}
	}

	days, err := InclusiveDays(start, end)
	if err != nil {
		return hrm.LeaveRequest{}, err
	}

	return hrm.LeaveRequest{
		ID:          "LV-" + uuid.NewString(),
		EmpID:       empID,
		Type:        leaveType,
		Start:       start,
		End:         end,
		Days:        days,
		Status:      hrm.LeavePending,
		Reason:      reason,
		RequestedAt: now.UTC().Format(time.RFC3339),
	}, nil
}

// Decide applies a terminal status to the request with the given id.
// Decisions are one-way: re-applying the same status is a no-op, changing
// an already-decided request returns hrm.ErrRequestDecided.
func Decide(requests []hrm.LeaveRequest, id string, status hrm.LeaveStatus) error {
	for i := range requests {
		if requests[i].ID != id {
			continue
		}
		if requests[i].Status == status {
			return nil
		}
		if requests[i].Status.Decided() {
			return fmt.Errorf("%w: %s is %s", hrm.ErrRequestDecided, id, requests[i].Status)
		}
		requests[i].Status = status
		return nil
	}
	return fmt.Errorf("%w: %s", hrm.ErrLeaveRequestNotFound, id)
}
