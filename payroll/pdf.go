/*
pdf.go - Printable payslip rendering

PURPOSE:
  Renders a Payslip as a PDF. Amounts are formatted to 2 decimals here,
  at display time only; the line items arrive in full precision.
*/
package payroll

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/shopspring/decimal"
)

// RenderPDF writes the payslip as an A4 PDF document.
func RenderPDF(slip Payslip, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", slip.EmpName, slip.EmpID))
	pdf.Ln(7)
	if slip.Designation != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Designation: %s", slip.Designation))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Month: %s", slip.MonthKey))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Days Payable: %d", slip.DaysPayable))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Earnings")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	earnings := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Basic", slip.Basic},
		{"HRA", slip.HRA},
		{"Conveyance", slip.Conveyance},
		{"Medical", slip.Medical},
		{"Special Allowance", slip.Special},
		{"Bonus", slip.Bonus},
		{"DA", slip.DA},
		{"Variable", slip.Variable},
	}
	for _, line := range earnings {
		writeAmountLine(pdf, line.label, line.amount)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Deductions")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	writeAmountLine(pdf, "PF", slip.PF)
	writeAmountLine(pdf, "Tax", slip.Tax)
	writeAmountLine(pdf, "Total Deductions", slip.Deductions)
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	writeAmountLine(pdf, "Gross Total", slip.GrossTotal)
	writeAmountLine(pdf, "Net Pay", slip.NetPay)

	return pdf.Output(w)
}

func writeAmountLine(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.Cell(90, 7, label)
	pdf.CellFormat(40, 7, amount.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.Ln(7)
}
