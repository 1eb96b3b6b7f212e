// Package extract parses uploaded T12 statements and rent rolls (XLSX or
// CSV) into the key figures the underwriting engine consumes. It never
// invents numbers: lines absent from the document stay nil.
package extract

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/proppulse/underwrite/internal/model"
)

// ReadT12 parses a trailing-twelve-month operating statement. Rows are
// expected as label/amount pairs; labels are matched loosely.
func ReadT12(path string) (*model.FinancialDocumentExtract, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	return parseT12(rows), nil
}

// ReadRentRoll parses a unit-level rent roll and aggregates total units,
// occupied units, and average in-place rent.
func ReadRentRoll(path string) (*model.FinancialDocumentExtract, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	return parseRentRoll(rows)
}

// Merge overlays b onto a, field by field, with a winning conflicts. Either
// argument may be nil.
func Merge(a, b *model.FinancialDocumentExtract) *model.FinancialDocumentExtract {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := *a
	if out.GrossRentalIncome == nil {
		out.GrossRentalIncome = b.GrossRentalIncome
	}
	if out.VacancyLoss == nil {
		out.VacancyLoss = b.VacancyLoss
	}
	if out.OperatingExpenses == nil {
		out.OperatingExpenses = b.OperatingExpenses
	}
	if out.NetOperatingIncome == nil {
		out.NetOperatingIncome = b.NetOperatingIncome
	}
	if out.PropertyValue == nil {
		out.PropertyValue = b.PropertyValue
	}
	if out.TotalUnits == nil {
		out.TotalUnits = b.TotalUnits
	}
	if out.OccupiedUnits == nil {
		out.OccupiedUnits = b.OccupiedUnits
	}
	if out.AverageRent == nil {
		out.AverageRent = b.AverageRent
	}
	if out.ExpenseBreakdown == (model.OperatingExpenseBreakdown{}) {
		out.ExpenseBreakdown = b.ExpenseBreakdown
	}
	return &out
}

// readRows loads a spreadsheet as string rows, dispatching on extension.
func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSXRows(path)
	case ".csv":
		return readCSVRows(path)
	default:
		return nil, eris.Errorf("extract: unsupported document type %q", filepath.Ext(path))
	}
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "extract: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("extract: xlsx has no sheets")
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, strings.TrimSpace(cell.String()))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "extract: open csv")
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse csv")
	}
	for _, row := range records {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}
	return records, nil
}

// t12Matchers maps loose label substrings to setter functions, checked in
// order so the more specific labels win.
func parseT12(rows [][]string) *model.FinancialDocumentExtract {
	out := &model.FinancialDocumentExtract{}

	for _, row := range rows {
		label, amount, ok := labelAmount(row)
		if !ok {
			continue
		}

		switch {
		case containsAny(label, "gross rental income", "gross scheduled rent", "gross rent", "rental income"):
			setIfNil(&out.GrossRentalIncome, amount)
		case containsAny(label, "vacancy"):
			setIfNil(&out.VacancyLoss, abs(amount))
		case containsAny(label, "total operating expenses", "total expenses", "operating expenses"):
			setIfNil(&out.OperatingExpenses, abs(amount))
		case containsAny(label, "net operating income", "noi"):
			setIfNil(&out.NetOperatingIncome, amount)
		case containsAny(label, "property value", "purchase price", "valuation"):
			setIfNil(&out.PropertyValue, amount)
		case containsAny(label, "management"):
			setBreakdown(&out.ExpenseBreakdown.ManagementFees, amount)
		case containsAny(label, "insurance"):
			setBreakdown(&out.ExpenseBreakdown.Insurance, amount)
		case containsAny(label, "property tax", "real estate tax", "taxes"):
			setBreakdown(&out.ExpenseBreakdown.PropertyTaxes, amount)
		case containsAny(label, "repair", "maintenance"):
			setBreakdown(&out.ExpenseBreakdown.MaintenanceRepairs, amount)
		case containsAny(label, "utilities", "utility"):
			setBreakdown(&out.ExpenseBreakdown.Utilities, amount)
		}
	}
	return out
}

// parseRentRoll expects a header row naming at least a unit column and a
// rent column; a status column is optional.
func parseRentRoll(rows [][]string) (*model.FinancialDocumentExtract, error) {
	if len(rows) < 2 {
		return nil, eris.New("extract: rent roll has no data rows")
	}

	unitCol, rentCol, statusCol := -1, -1, -1
	for i, h := range rows[0] {
		hl := strings.ToLower(h)
		switch {
		case strings.Contains(hl, "unit"):
			if unitCol == -1 {
				unitCol = i
			}
		case strings.Contains(hl, "rent"):
			if rentCol == -1 {
				rentCol = i
			}
		case strings.Contains(hl, "status") || strings.Contains(hl, "occupan"):
			statusCol = i
		}
	}
	if unitCol == -1 || rentCol == -1 {
		return nil, eris.New("extract: rent roll is missing unit or rent columns")
	}

	total, occupied := 0, 0
	rentSum, rentCount := 0.0, 0
	for _, row := range rows[1:] {
		if unitCol >= len(row) || row[unitCol] == "" {
			continue
		}
		total++

		isOccupied := true
		if statusCol >= 0 && statusCol < len(row) {
			s := strings.ToLower(row[statusCol])
			isOccupied = !strings.Contains(s, "vacant")
		}
		if isOccupied {
			occupied++
		}

		if rentCol < len(row) {
			if rent, ok := parseAmount(row[rentCol]); ok && rent > 0 {
				rentSum += rent
				rentCount++
			}
		}
	}
	if total == 0 {
		return nil, eris.New("extract: rent roll has no units")
	}

	out := &model.FinancialDocumentExtract{
		TotalUnits:    model.IntPtr(total),
		OccupiedUnits: model.IntPtr(occupied),
	}
	if rentCount > 0 {
		out.AverageRent = model.Float64Ptr(rentSum / float64(rentCount))
	}
	return out, nil
}

// labelAmount splits a row into its text label and the last numeric cell.
func labelAmount(row []string) (string, float64, bool) {
	if len(row) < 2 || row[0] == "" {
		return "", 0, false
	}
	for i := len(row) - 1; i >= 1; i-- {
		if amount, ok := parseAmount(row[i]); ok {
			return strings.ToLower(row[0]), amount, true
		}
	}
	return "", 0, false
}

// parseAmount reads accounting-formatted numbers: "$1,234.56", "(500)" for
// negatives, plain floats.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func setIfNil(dst **float64, v float64) {
	if *dst == nil {
		*dst = model.Float64Ptr(v)
	}
}

func setBreakdown(dst *float64, v float64) {
	if *dst == 0 {
		*dst = abs(v)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
