/*
csv.go - Payroll CSV contracts: bonus import and monthly export

PURPOSE:
  The header rows are the interchange contract with external spreadsheets
  and must not change.

BONUS IMPORT (dual-mode):
  Header: Employee ID,Employee Name,Designation,Special Bonus Count,Days Payable
  The raw count resolves against the employee's package bonus unit value:
  when the unit value is positive the count multiplies it, otherwise the
  count itself is taken as the monetary bonus. Rows for unknown employee
  ids are skipped, never partially applied.

MONTHLY EXPORT:
  Header: Employee ID,Name,Designation,Salary Package,Base Net Salary,
          Special Bonus,Total Net Payable,Days
  Amounts are formatted to 2 decimals here and nowhere earlier.
*/
package payroll

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gravity/hrm-engine/hrm"
)

// BonusImportHeader is the expected first row of a bonus import file.
var BonusImportHeader = []string{"Employee ID", "Employee Name", "Designation", "Special Bonus Count", "Days Payable"}

// ExportHeader is the first row of the monthly payroll export.
var ExportHeader = []string{"Employee ID", "Name", "Designation", "Salary Package", "Base Net Salary", "Special Bonus", "Total Net Payable", "Days"}

// BonusImportResult reports what an import actually applied.
type BonusImportResult struct {
	Applied int
	Skipped int
}

// ImportBonuses parses a bonus CSV and merges overrides into the state's
// payroll history under monthKey. Only rows whose employee id exists in the
// roster are applied.
func ImportBonuses(st *hrm.State, monthKey string, r io.Reader) (BonusImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return BonusImportResult{}, fmt.Errorf("failed to parse bonus csv: %w", err)
	}

	var result BonusImportResult
	for i, cols := range rows {
		if i == 0 && looksLikeHeader(cols) {
			continue
		}
		if len(cols) < 4 {
			result.Skipped++
			continue
		}

		empID := strings.TrimSpace(cols[0])
		emp := st.FindEmployee(empID)
		if emp == nil {
			result.Skipped++
			continue
		}

		bonusCount := parseDecimalOr(cols[3], decimal.Zero)
		days := hrm.StandardPayableDays
		if len(cols) > 4 && strings.TrimSpace(cols[4]) != "" {
			if v, err := strconv.Atoi(strings.TrimSpace(cols[4])); err == nil && v > 0 {
				days = v
			}
		}

		// Dual-mode resolution: count * package bonus unit when the unit is
		// positive, else the raw count is the monetary bonus.
		specialBonus := bonusCount
		if pkg := st.PackageFor(*emp); pkg != nil && pkg.Bonus.IsPositive() {
			specialBonus = bonusCount.Mul(pkg.Bonus)
		}

		st.PayrollHistory.Set(monthKey, empID, hrm.PayrollOverride{
			SpecialBonus:      specialBonus,
			SpecialBonusCount: bonusCount,
			DaysPayable:       days,
		})
		result.Applied++
	}

	return result, nil
}

// Export writes the monthly payroll table for the given employees.
// Employees without a package export with zero amounts and the
// "Not Assigned" placeholder.
func Export(st *hrm.State, monthKey string, employees []hrm.Employee, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return err
	}

	for _, emp := range employees {
		pkg := st.PackageFor(emp)
		override := st.PayrollHistory.Override(monthKey, emp.ID)
		res := Compute(pkg, override)

		pkgName := NotAssigned
		if pkg != nil {
			pkgName = pkg.Name
		}

		record := []string{
			emp.ID,
			emp.Name,
			emp.Designation,
			pkgName,
			res.ProRatedNet.StringFixed(2),
			res.SpecialBonus.StringFixed(2),
			res.NetPayable.StringFixed(2),
			strconv.Itoa(res.DaysPayable),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func looksLikeHeader(cols []string) bool {
	return len(cols) > 0 && strings.EqualFold(strings.TrimSpace(cols[0]), BonusImportHeader[0])
}

func parseDecimalOr(s string, fallback decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return d
}
