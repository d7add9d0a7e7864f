/*
Package payroll computes pro-rated pay and payslip figures.

PURPOSE:
  Derives gross/net pay from a salary package template plus the month's
  per-employee overrides (special bonus, payable days), and produces the
  line items for a printable payslip.

PRO-RATION:
  The divisor is always 26 working days, regardless of the calendar length
  of the month:

      proRated = base * daysPayable / 26

  Multiplication happens before division so pro-ration stays exactly
  linear: daysPayable=26 reproduces the base amount bit-for-bit and
  daysPayable=13 is exactly half. All intermediate values stay in full
  decimal precision; rounding to 2 places happens only at display time.

SPECIAL BONUS:
  A flat monetary add-on, independent of pro-ration:

      netPayable = proRatedNet + specialBonus

FREEZE POLICY:
  Figures are recomputed live from the current package definition by
  default, which means editing a package silently changes historical
  payslips. PolicyFreezeAtGeneration pins the computed figures into the
  month's override when a payslip is generated and serves those afterwards.

SEE ALSO:
  - hrm/types.go: SalaryPackage, PayrollOverride
  - csv.go: Bonus import and payroll export contracts
  - pdf.go: Payslip rendering
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gravity/hrm-engine/hrm"
)

// NotAssigned is the placeholder for employees without a salary package.
const NotAssigned = "Not Assigned"

var standardDays = decimal.NewFromInt(hrm.StandardPayableDays)

// =============================================================================
// PACKAGE TOTALS
// =============================================================================

// Totals holds the base (un-pro-rated) monthly figures for a package.
type Totals struct {
	Gross decimal.Decimal
	Net   decimal.Decimal
}

// PackageTotals derives gross and net from the fixed components.
// A nil package yields zero totals, never an error.
func PackageTotals(pkg *hrm.SalaryPackage) Totals {
	if pkg == nil {
		return Totals{Gross: decimal.Zero, Net: decimal.Zero}
	}
	gross := pkg.Basic.
		Add(pkg.HRA).
		Add(pkg.Conveyance).
		Add(pkg.Medical).
		Add(pkg.Special).
		Add(pkg.Bonus).
		Add(pkg.DA).
		Add(pkg.Variable)
	deductions := pkg.PF.Add(pkg.Tax)
	return Totals{Gross: gross, Net: gross.Sub(deductions)}
}

// ProRate scales a monthly amount by daysPayable/26, multiplying first so
// the full-month case is exact.
func ProRate(amount decimal.Decimal, daysPayable int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(daysPayable))).Div(standardDays)
}

// =============================================================================
// MONTHLY COMPUTATION
// =============================================================================

// Result is one employee's computed pay for a month.
type Result struct {
	ProRatedGross decimal.Decimal
	ProRatedNet   decimal.Decimal
	SpecialBonus  decimal.Decimal
	NetPayable    decimal.Decimal
	DaysPayable   int
}

// Compute derives the month's figures from the package and override.
// Pure and idempotent over its inputs.
func Compute(pkg *hrm.SalaryPackage, override hrm.PayrollOverride) Result {
	days := override.DaysPayable
	if days <= 0 {
		days = hrm.StandardPayableDays
	}

	totals := PackageTotals(pkg)
	proGross := ProRate(totals.Gross, days)
	proNet := ProRate(totals.Net, days)

	return Result{
		ProRatedGross: proGross,
		ProRatedNet:   proNet,
		SpecialBonus:  override.SpecialBonus,
		NetPayable:    proNet.Add(override.SpecialBonus),
		DaysPayable:   days,
	}
}

// =============================================================================
// FREEZE POLICY
// =============================================================================

type Policy int

const (
	// PolicyAlwaysLive recomputes from the current package definition on
	// every read. Historical payslips shift if a package is edited later.
	PolicyAlwaysLive Policy = iota

	// PolicyFreezeAtGeneration pins figures into the override when a
	// payslip is generated; later reads serve the frozen snapshot.
	PolicyFreezeAtGeneration
)

// ParsePolicy maps a config string onto a Policy, defaulting to always-live.
func ParsePolicy(s string) Policy {
	if s == "freeze-at-generation" {
		return PolicyFreezeAtGeneration
	}
	return PolicyAlwaysLive
}

// ComputeWithPolicy resolves the month's figures honoring the freeze policy:
// a frozen snapshot wins when the policy says so and one exists.
func ComputeWithPolicy(pkg *hrm.SalaryPackage, override hrm.PayrollOverride, policy Policy) Result {
	if policy == PolicyFreezeAtGeneration && override.Frozen != nil {
		days := override.DaysPayable
		if days <= 0 {
			days = hrm.StandardPayableDays
		}
		return Result{
			ProRatedGross: override.Frozen.ProRatedGross,
			ProRatedNet:   override.Frozen.ProRatedNet,
			SpecialBonus:  override.SpecialBonus,
			NetPayable:    override.Frozen.NetPayable,
			DaysPayable:   days,
		}
	}
	return Compute(pkg, override)
}

// Freeze captures the live computation as a frozen snapshot for the override.
func Freeze(pkg *hrm.SalaryPackage, override hrm.PayrollOverride, now time.Time) hrm.FrozenPayroll {
	res := Compute(pkg, override)
	return hrm.FrozenPayroll{
		ProRatedGross: res.ProRatedGross,
		ProRatedNet:   res.ProRatedNet,
		NetPayable:    res.NetPayable,
		GeneratedAt:   now.UTC().Format(time.RFC3339),
	}
}

// =============================================================================
// PAYSLIP LINE ITEMS
// =============================================================================

// Payslip holds the printable line items for one employee-month. Every
// component carries the same daysPayable/26 factor individually; the bonus
// line shows the month's special bonus at full value, not the pro-rated
// package bonus component.
type Payslip struct {
	EmpID       string
	EmpName     string
	Designation string
	MonthKey    string
	DaysPayable int

	Basic      decimal.Decimal
	HRA        decimal.Decimal
	Conveyance decimal.Decimal
	Medical    decimal.Decimal
	Special    decimal.Decimal
	Bonus      decimal.Decimal // the special bonus, not pro-rated
	DA         decimal.Decimal
	Variable   decimal.Decimal

	PF         decimal.Decimal
	Tax        decimal.Decimal
	Deductions decimal.Decimal

	GrossTotal decimal.Decimal
	NetPay     decimal.Decimal
}

// BuildPayslip produces the line items for one employee-month, resolving
// the totals through the freeze policy so a pinned month renders the same
// figures the monthly table serves.
// Returns hrm.ErrPackageNotAssigned when the employee has no package:
// the payslip action is disabled rather than rendered with zeros.
func BuildPayslip(emp hrm.Employee, pkg *hrm.SalaryPackage, override hrm.PayrollOverride, monthKey string, policy Policy) (Payslip, error) {
	if pkg == nil {
		return Payslip{}, hrm.ErrPackageNotAssigned
	}

	days := override.DaysPayable
	if days <= 0 {
		days = hrm.StandardPayableDays
	}
	rate := func(v decimal.Decimal) decimal.Decimal { return ProRate(v, days) }

	res := ComputeWithPolicy(pkg, override, policy)

	return Payslip{
		EmpID:       emp.ID,
		EmpName:     emp.Name,
		Designation: emp.Designation,
		MonthKey:    monthKey,
		DaysPayable: days,

		Basic:      rate(pkg.Basic),
		HRA:        rate(pkg.HRA),
		Conveyance: rate(pkg.Conveyance),
		Medical:    rate(pkg.Medical),
		Special:    rate(pkg.Special),
		Bonus:      override.SpecialBonus,
		DA:         rate(pkg.DA),
		Variable:   rate(pkg.Variable),

		PF:         rate(pkg.PF),
		Tax:        rate(pkg.Tax),
		Deductions: rate(pkg.PF.Add(pkg.Tax)),

		GrossTotal: res.ProRatedGross.Add(override.SpecialBonus),
		NetPay:     res.NetPayable,
	}, nil
}
