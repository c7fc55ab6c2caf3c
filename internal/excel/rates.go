package excel

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/weighbridge-billing/internal/model"
)

const ratesSheet = "Rates"

var ratesHeader = []string{"Product", "Scope", "Unit Price"}

// ParseRates reads an uploaded rate workbook. Expected layout: a header row
// "Product | Scope | Unit Price", then one rate per row. The scope cell is
// either "general" or a provider id (bare uuid or "provider:<uuid>"). The
// whole upload is rejected on the first bad row so a partial table never
// replaces a good one.
func ParseRates(data []byte) ([]model.Rate, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	rates := make([]model.Rate, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: expected 3 columns, got %d", rowNum, len(row))
		}

		productID := strings.TrimSpace(row[0])
		if productID == "" {
			return nil, fmt.Errorf("row %d: product is empty", rowNum)
		}

		scope, err := parseScopeCell(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		price, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: unit price %q is not an integer", rowNum, row[2])
		}
		if price <= 0 {
			return nil, fmt.Errorf("row %d: unit price must be positive", rowNum)
		}

		rates = append(rates, model.Rate{
			ProductID: productID,
			Scope:     scope,
			UnitPrice: price,
		})
	}
	return rates, nil
}

// ExportRates writes the current rate table in the same layout ParseRates
// accepts, so a downloaded table can be edited and re-uploaded.
func ExportRates(rates []model.Rate) ([]byte, error) {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", ratesSheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(ratesSheet, cell, value)
	}

	for i, header := range ratesHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, rate := range rates {
		row := i + 2
		set(fmt.Sprintf("A%d", row), rate.ProductID)
		set(fmt.Sprintf("B%d", row), scopeCell(rate.Scope))
		set(fmt.Sprintf("C%d", row), rate.UnitPrice)
	}

	_ = file.SetColWidth(ratesSheet, "A", "A", 32)
	_ = file.SetColWidth(ratesSheet, "B", "B", 44)
	_ = file.SetColWidth(ratesSheet, "C", "C", 14)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseScopeCell(raw string) (model.RateScope, error) {
	raw = strings.TrimSpace(raw)
	if id, err := uuid.Parse(raw); err == nil {
		return model.ProviderScope(id), nil
	}
	return model.ParseRateScope(raw)
}

func scopeCell(scope model.RateScope) string {
	if scope.Kind == model.ScopeProvider {
		return scope.ProviderID.String()
	}
	return scope.String()
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
