// Package report renders a person's monthly ledger document to PDF.
package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"badgereader/internal/ledger"
	"badgereader/internal/shift"
)

// Monthly renders one monthly ledger as a PDF document.
func Monthly(doc *ledger.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Monthly Timesheet Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Person: %s", doc.Person))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s %d", doc.Month.String(), doc.Year))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Opening Balance: %s (%+d min)", shift.FormatHoursMinutes(abs(doc.OpeningBalance)), doc.OpeningBalance))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{25, 20, 20, 20, 25, 25, 30}
	headers := []string{"Day", "Start", "End", "Duration", "Target (min)", "Net (min)", "Balance (min)"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	total := 0
	for _, row := range doc.Rows {
		cells := []string{
			row.Day,
			row.Start,
			row.End,
			row.Duration,
			fmt.Sprintf("%d", row.Target),
			fmt.Sprintf("%+d", row.Net),
			fmt.Sprintf("%+d", row.Balance),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		total += row.Net + doc.Target
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Shifts: %d", len(doc.Rows)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total Hours Logged: %s", shift.FormatHoursMinutes(total)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Balance at End of Month: %+d min", doc.Balance))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render monthly report: %w", err)
	}
	return buf.Bytes(), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
