/*
csv.go - Employee roster CSV import/export

The 13-column header row is the interchange contract. The "Designation"
column carries the role string (a quirk of the original export format that
downstream spreadsheets depend on).

IMPORT RULES:
  - reportsTo is derived from the role: Team Leaders report to the Manager
    ID column, Employees to the Team Leader ID column, everyone else to
    nobody.
  - The Salary Package ID column accepts a package name (case-insensitive)
    or id; an unresolvable value is kept verbatim as a dangling reference.
  - A missing Secret Code gets the name-derived default.
  - Rows with fewer than 6 columns are skipped.
  - Overwrite mode clears the roster first; add mode appends.
*/
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gravity/hrm-engine/hrm"
)

// Header is the employee CSV contract.
var Header = []string{
	"ID", "Name", "Designation", "Date of Joining", "Education", "Mobile",
	"Date of Birth", "Email", "Secret Code", "Salary Package ID",
	"Manager ID", "Team Leader ID", "Blood Group",
}

const minImportColumns = 6

// ImportMode selects how an import treats the existing roster.
type ImportMode int

const (
	ImportAdd ImportMode = iota
	ImportOverwrite
)

// Import parses an employee CSV into the state. Returns the number of
// records imported.
func Import(st *hrm.State, r io.Reader, mode ImportMode) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to parse employee csv: %w", err)
	}

	if mode == ImportOverwrite {
		st.Employees = nil
	}

	count := 0
	for i, cols := range rows {
		if i == 0 && len(cols) > 0 && strings.EqualFold(strings.TrimSpace(cols[0]), "ID") {
			continue
		}
		if len(cols) < minImportColumns {
			continue
		}

		col := func(idx int) string {
			if idx < len(cols) {
				return strings.TrimSpace(cols[idx])
			}
			return ""
		}

		role := col(2)
		managerID := col(10)
		teamLeaderID := col(11)

		reportsTo := ""
		switch hrm.ParseRole(role) {
		case hrm.RoleTeamLeader:
			reportsTo = managerID
		case hrm.RoleEmployee:
			reportsTo = teamLeaderID
		}

		// Package references may be a name or an id.
		packageID := col(9)
		if pkg := st.ResolvePackage(packageID); pkg != nil {
			packageID = pkg.ID
		}

		name := col(1)
		secretCode := col(8)
		if secretCode == "" {
			secretCode = GenerateSecretCode(name)
		}

		st.Employees = append(st.Employees, hrm.Employee{
			ID:            col(0),
			Name:          name,
			Role:          role,
			DOJ:           col(3),
			Education:     col(4),
			Mobile:        col(5),
			DOB:           col(6),
			Email:         col(7),
			SecretCode:    secretCode,
			SalaryPackage: packageID,
			ManagerID:     managerID,
			TeamLeaderID:  teamLeaderID,
			ReportsTo:     reportsTo,
			BloodGroup:    col(12),
			Status:        hrm.StatusActive,
		})
		count++
	}

	return count, nil
}

// Export writes the active roster in the contract format.
func Export(employees []hrm.Employee, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}

	for _, e := range employees {
		if !e.IsActive() {
			continue
		}
		record := []string{
			e.ID,
			e.Name,
			e.Role,
			e.DOJ,
			e.Education,
			e.Mobile,
			e.DOB,
			e.Email,
			e.SecretCode,
			e.SalaryPackage,
			e.ManagerID,
			e.TeamLeaderID,
			e.BloodGroup,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
