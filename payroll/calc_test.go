package payroll_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravity/hrm-engine/hrm"
	"github.com/gravity/hrm-engine/payroll"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seniorLead() *hrm.SalaryPackage {
	return &hrm.SalaryPackage{
		ID: "PKG-002", Name: "Senior Lead",
		Basic: amt("45000"), HRA: amt("22500"), Conveyance: amt("8000"),
		Medical: amt("4000"), Special: amt("10000"), Bonus: amt("5000"),
		PF: amt("5400"), Tax: amt("500"),
	}
}

func testState() *hrm.State {
	return &hrm.State{
		Employees: []hrm.Employee{
			{ID: "E1", Name: "Evan", Designation: "Engineer", SalaryPackage: "PKG-002"},
			{ID: "E2", Name: "Erin", Designation: "Analyst"},
		},
		Packages:       []hrm.SalaryPackage{*seniorLead()},
		PayrollHistory: make(hrm.PayrollHistory),
	}
}

// =============================================================================
// TOTALS & PRO-RATION
// =============================================================================

func TestPackageTotals(t *testing.T) {
	totals := payroll.PackageTotals(seniorLead())
	assert.Equal(t, "94500", totals.Gross.String())
	assert.Equal(t, "88600", totals.Net.String())
}

func TestPackageTotals_NilPackage(t *testing.T) {
	totals := payroll.PackageTotals(nil)
	assert.True(t, totals.Gross.IsZero())
	assert.True(t, totals.Net.IsZero())
}

func TestProRate_FullMonthIsExact(t *testing.T) {
	// GIVEN: Any base amount
	// WHEN: Pro-rating over the full 26 days
	// THEN: The base comes back exactly, including awkward divisors

	for _, base := range []string{"88600", "33333", "1", "0.01"} {
		got := payroll.ProRate(amt(base), 26)
		assert.True(t, got.Equal(amt(base)), "26/26 of %s should be %s, got %s", base, base, got)
	}
}

func TestProRate_HalfMonthIsExactlyHalf(t *testing.T) {
	got := payroll.ProRate(amt("88600"), 13)
	assert.True(t, got.Equal(amt("44300")))
}

func TestCompute_DefaultsTo26Days(t *testing.T) {
	res := payroll.Compute(seniorLead(), hrm.PayrollOverride{})
	assert.Equal(t, 26, res.DaysPayable)
	assert.True(t, res.ProRatedNet.Equal(amt("88600")))
	assert.True(t, res.NetPayable.Equal(amt("88600")))
}

func TestCompute_SpecialBonusIsFlat(t *testing.T) {
	// The special bonus is added after pro-ration, never scaled by days.
	res := payroll.Compute(seniorLead(), hrm.PayrollOverride{
		SpecialBonus: amt("2000"),
		DaysPayable:  13,
	})
	assert.True(t, res.ProRatedNet.Equal(amt("44300")))
	assert.True(t, res.NetPayable.Equal(amt("46300")))
}

func TestCompute_NilPackageYieldsZeros(t *testing.T) {
	res := payroll.Compute(nil, hrm.PayrollOverride{SpecialBonus: amt("500")})
	assert.True(t, res.ProRatedNet.IsZero())
	assert.True(t, res.NetPayable.Equal(amt("500")), "bonus still applies without a package")
}

// =============================================================================
// FREEZE POLICY
// =============================================================================

func TestComputeWithPolicy_FrozenSnapshotWins(t *testing.T) {
	// GIVEN: A frozen override captured before a package edit
	// WHEN: Computing under freeze-at-generation with the edited package
	// THEN: The frozen figures are served, not the live ones

	pkg := seniorLead()
	override := hrm.PayrollOverride{DaysPayable: 26}
	frozen := payroll.Freeze(pkg, override, time.Now())
	override.Frozen = &frozen

	pkg.Basic = amt("99000") // the later edit

	res := payroll.ComputeWithPolicy(pkg, override, payroll.PolicyFreezeAtGeneration)
	assert.True(t, res.NetPayable.Equal(amt("88600")))

	live := payroll.ComputeWithPolicy(pkg, override, payroll.PolicyAlwaysLive)
	assert.False(t, live.NetPayable.Equal(amt("88600")), "live policy must follow the edit")
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, payroll.PolicyFreezeAtGeneration, payroll.ParsePolicy("freeze-at-generation"))
	assert.Equal(t, payroll.PolicyAlwaysLive, payroll.ParsePolicy(""))
	assert.Equal(t, payroll.PolicyAlwaysLive, payroll.ParsePolicy("whatever"))
}

// =============================================================================
// PAYSLIP
// =============================================================================

func TestBuildPayslip_ComponentsProRatedIndividually(t *testing.T) {
	emp := hrm.Employee{ID: "E1", Name: "Evan", Designation: "Engineer"}
	override := hrm.PayrollOverride{SpecialBonus: amt("1500"), DaysPayable: 13}

	slip, err := payroll.BuildPayslip(emp, seniorLead(), override, "2026-06", payroll.PolicyAlwaysLive)
	require.NoError(t, err)

	assert.True(t, slip.Basic.Equal(amt("22500")))
	assert.True(t, slip.HRA.Equal(amt("11250")))
	assert.True(t, slip.Bonus.Equal(amt("1500")), "bonus line is the special bonus at full value")
	assert.True(t, slip.Deductions.Equal(amt("2950")))

	// grossTotal = proRatedGross + specialBonus; netPay = proRatedNet + specialBonus
	assert.True(t, slip.GrossTotal.Equal(amt("48750")))
	assert.True(t, slip.NetPay.Equal(amt("45800")))
}

func TestBuildPayslip_FrozenMonthSurvivesPackageEdit(t *testing.T) {
	// GIVEN: A month frozen before a package edit
	// WHEN: Building the payslip again after doubling the basic component
	// THEN: The payslip totals match the frozen monthly table, not the new package

	emp := hrm.Employee{ID: "E1", Name: "Evan"}
	pkg := seniorLead()
	override := hrm.PayrollOverride{DaysPayable: 26}

	frozen := payroll.Freeze(pkg, override, time.Now())
	override.Frozen = &frozen

	edited := *pkg
	edited.Basic = pkg.Basic.Mul(amt("2"))

	slip, err := payroll.BuildPayslip(emp, &edited, override, "2026-06", payroll.PolicyFreezeAtGeneration)
	require.NoError(t, err)
	assert.True(t, slip.GrossTotal.Equal(frozen.ProRatedGross), "gross stays pinned")
	assert.True(t, slip.NetPay.Equal(frozen.NetPayable), "net stays pinned")

	table := payroll.ComputeWithPolicy(&edited, override, payroll.PolicyFreezeAtGeneration)
	assert.True(t, slip.NetPay.Equal(table.NetPayable), "payslip and monthly table agree")

	live, err := payroll.BuildPayslip(emp, &edited, override, "2026-06", payroll.PolicyAlwaysLive)
	require.NoError(t, err)
	assert.True(t, live.NetPay.GreaterThan(slip.NetPay), "always-live tracks the edited package")
}

func TestBuildPayslip_NoPackage(t *testing.T) {
	_, err := payroll.BuildPayslip(hrm.Employee{ID: "E2"}, nil, hrm.PayrollOverride{}, "2026-06", payroll.PolicyAlwaysLive)
	assert.ErrorIs(t, err, hrm.ErrPackageNotAssigned)
}

func TestRenderPDF_ProducesDocument(t *testing.T) {
	slip, err := payroll.BuildPayslip(
		hrm.Employee{ID: "E1", Name: "Evan"},
		seniorLead(), hrm.PayrollOverride{DaysPayable: 26}, "2026-06", payroll.PolicyAlwaysLive,
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, payroll.RenderPDF(slip, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output should be a PDF")
}

// =============================================================================
// CSV CONTRACTS
// =============================================================================

func TestImportBonuses_DualMode(t *testing.T) {
	// GIVEN: One employee with a package bonus unit, one without a package
	// WHEN: Importing counts for both
	// THEN: The count multiplies the unit where positive, else it is the amount

	st := testState()
	csv := strings.Join([]string{
		"Employee ID,Employee Name,Designation,Special Bonus Count,Days Payable",
		"E1,Evan,Engineer,3,20",
		"E2,Erin,Analyst,750,",
		"GHOST,Nobody,,5,26",
	}, "\n")

	result, err := payroll.ImportBonuses(st, "2026-06", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Applied)
	assert.Equal(t, 1, result.Skipped, "unknown employee rows are skipped")

	o1 := st.PayrollHistory.Override("2026-06", "E1")
	assert.True(t, o1.SpecialBonus.Equal(amt("15000")), "3 * 5000 unit")
	assert.True(t, o1.SpecialBonusCount.Equal(amt("3")))
	assert.Equal(t, 20, o1.DaysPayable)

	o2 := st.PayrollHistory.Override("2026-06", "E2")
	assert.True(t, o2.SpecialBonus.Equal(amt("750")), "raw count is the amount without a unit")
	assert.Equal(t, 26, o2.DaysPayable, "missing days column defaults to 26")
}

func TestExport_NotAssignedPlaceholder(t *testing.T) {
	st := testState()
	st.PayrollHistory.Set("2026-06", "E1", hrm.PayrollOverride{
		SpecialBonus: amt("2000"), DaysPayable: 13,
	})

	var buf bytes.Buffer
	require.NoError(t, payroll.Export(st, "2026-06", st.Employees, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(payroll.ExportHeader, ","), lines[0])
	assert.Equal(t, "E1,Evan,Engineer,Senior Lead,44300.00,2000.00,46300.00,13", lines[1])
	assert.Equal(t, "E2,Erin,Analyst,Not Assigned,0.00,0.00,0.00,26", lines[2])
}
