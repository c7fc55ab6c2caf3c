package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/weighbridge-billing/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders a provider billing statement for download.
func (g *Generator) Generate(bill model.Bill) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Provider Billing Statement", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Provider: %s", bill.ProviderName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s - %s", formatDateTime(bill.From), formatDateTime(bill.To)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Product", "Net Weight, kg", "Unit Price", "Amount"}
	colWidths := []float64{70, 35, 35, 40}
	drawTableRow(pdf, headers, colWidths, true)

	for _, line := range bill.Lines {
		row := []string{
			line.ProductID,
			fmt.Sprintf("%d", line.TotalWeight),
			formatMoney(line.UnitPrice),
			formatMoney(line.Amount),
		}
		drawTableRow(pdf, row, colWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Grand total: %s", formatMoney(bill.GrandTotal)), "", 1, "R", false, 0, "")

	if len(bill.OmittedProducts) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(200, 0, 0)
		for _, productID := range bill.OmittedProducts {
			pdf.MultiCell(0, 5, fmt.Sprintf("Product %q had weighings in the period but no applicable rate and is not billed.", productID), "", "L", false)
		}
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

// formatMoney renders minor units as a decimal amount.
func formatMoney(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}
