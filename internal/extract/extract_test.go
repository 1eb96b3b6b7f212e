package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proppulse/underwrite/internal/model"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const t12CSV = `Line Item,Annual
Gross Rental Income,"$500,000"
Vacancy Loss,"(25,000)"
Management Fees,"38,000"
Insurance,"21,500"
Property Taxes,"52,000"
Repairs & Maintenance,"31,000"
Utilities,"18,600"
Total Operating Expenses,"190,000"
Net Operating Income,"285,000"
`

func TestReadT12(t *testing.T) {
	path := writeCSV(t, "t12.csv", t12CSV)

	got, err := ReadT12(path)
	require.NoError(t, err)

	require.NotNil(t, got.GrossRentalIncome)
	assert.InDelta(t, 500000, *got.GrossRentalIncome, 0.001)
	require.NotNil(t, got.VacancyLoss)
	assert.InDelta(t, 25000, *got.VacancyLoss, 0.001)
	require.NotNil(t, got.OperatingExpenses)
	assert.InDelta(t, 190000, *got.OperatingExpenses, 0.001)
	require.NotNil(t, got.NetOperatingIncome)
	assert.InDelta(t, 285000, *got.NetOperatingIncome, 0.001)

	assert.InDelta(t, 38000, got.ExpenseBreakdown.ManagementFees, 0.001)
	assert.InDelta(t, 21500, got.ExpenseBreakdown.Insurance, 0.001)
	assert.InDelta(t, 52000, got.ExpenseBreakdown.PropertyTaxes, 0.001)
	assert.InDelta(t, 31000, got.ExpenseBreakdown.MaintenanceRepairs, 0.001)
	assert.InDelta(t, 18600, got.ExpenseBreakdown.Utilities, 0.001)

	// Not present in the statement.
	assert.Nil(t, got.PropertyValue)
	assert.Nil(t, got.TotalUnits)
}

const rentRollCSV = `Unit,Type,Status,Monthly Rent
101,2BR,Occupied,"1,650"
102,2BR,Occupied,"1,700"
103,1BR,Vacant,
104,2BR,Occupied,"1,600"
`

func TestReadRentRoll(t *testing.T) {
	path := writeCSV(t, "rentroll.csv", rentRollCSV)

	got, err := ReadRentRoll(path)
	require.NoError(t, err)

	require.NotNil(t, got.TotalUnits)
	assert.Equal(t, 4, *got.TotalUnits)
	require.NotNil(t, got.OccupiedUnits)
	assert.Equal(t, 3, *got.OccupiedUnits)
	require.NotNil(t, got.AverageRent)
	assert.InDelta(t, 1650, *got.AverageRent, 0.001)
}

func TestReadRentRollMissingColumns(t *testing.T) {
	path := writeCSV(t, "bad.csv", "Name,Phone\nAlice,555-0100\n")

	_, err := ReadRentRoll(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing unit or rent")
}

func TestReadUnsupportedExtension(t *testing.T) {
	_, err := ReadT12("statement.pdf")
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,234.56", 1234.56, true},
		{"(500)", -500, true},
		{"1650", 1650, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.InDelta(t, tt.want, got, 0.001, tt.in)
		}
	}
}

func TestMerge(t *testing.T) {
	t12 := &model.FinancialDocumentExtract{
		GrossRentalIncome: model.Float64Ptr(500000),
		OperatingExpenses: model.Float64Ptr(190000),
	}
	roll := &model.FinancialDocumentExtract{
		GrossRentalIncome: model.Float64Ptr(111111), // must lose to t12
		TotalUnits:        model.IntPtr(24),
		AverageRent:       model.Float64Ptr(1650),
	}

	merged := Merge(t12, roll)
	assert.InDelta(t, 500000, *merged.GrossRentalIncome, 0.001)
	assert.Equal(t, 24, *merged.TotalUnits)
	assert.InDelta(t, 1650, *merged.AverageRent, 0.001)

	assert.Same(t, roll, Merge(nil, roll))
	assert.Same(t, t12, Merge(t12, nil))
}
