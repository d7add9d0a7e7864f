/*
seed.go - Default salary package templates

First-run seeding only: packages are added when the state has none, so a
deployment that already carries data is never touched.
*/
package roster

import (
	"github.com/shopspring/decimal"

	"github.com/gravity/hrm-engine/hrm"
)

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// SeedPackages installs the three standard templates when none exist.
// Returns true if anything was added.
func SeedPackages(st *hrm.State) bool {
	if len(st.Packages) > 0 {
		return false
	}

	st.Packages = []hrm.SalaryPackage{
		{
			ID: "PKG-001", Name: "Standard Executive",
			Basic: amount(25000), HRA: amount(12500), Conveyance: amount(5000),
			Medical: amount(2500), Special: amount(5000), Bonus: amount(0),
			PF: amount(3000), Tax: amount(200),
		},
		{
			ID: "PKG-002", Name: "Senior Lead",
			Basic: amount(45000), HRA: amount(22500), Conveyance: amount(8000),
			Medical: amount(4000), Special: amount(10000), Bonus: amount(5000),
			PF: amount(5400), Tax: amount(500),
		},
		{
			ID: "PKG-003", Name: "Management",
			Basic: amount(85000), HRA: amount(42500), Conveyance: amount(15000),
			Medical: amount(7500), Special: amount(20000), Bonus: amount(10000),
			PF: amount(10200), Tax: amount(1000),
		},
	}
	return true
}
