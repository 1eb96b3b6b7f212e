package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proppulse/underwrite/internal/model"
)

func multifamilyRecord() *model.PropertyRecord {
	return &model.PropertyRecord{
		Address:        "450 Oakwood Apartments, Austin, TX",
		PropertyType:   model.PropertyTypeMultifamily,
		Units:          24,
		EstimatedValue: model.Float64Ptr(4075000),
		Market: &model.MarketStats{
			AvgRentPerUnit: 1650,
		},
	}
}

func TestNormalizeFromDocuments(t *testing.T) {
	extract := &model.FinancialDocumentExtract{
		GrossRentalIncome: model.Float64Ptr(500000),
		VacancyLoss:       model.Float64Ptr(25000),
		OperatingExpenses: model.Float64Ptr(190000),
		PropertyValue:     model.Float64Ptr(4000000),
	}

	fin, err := Normalize(extract, multifamilyRecord(), DefaultAssumptions())
	require.NoError(t, err)

	assert.InDelta(t, 500000, fin.GrossRentalIncome, 0.001)
	assert.InDelta(t, 475000, fin.EffectiveGrossIncome, 0.001)
	assert.InDelta(t, 285000, fin.NetOperatingIncome, 0.001)

	// Documents beat resolved estimates.
	assert.InDelta(t, 4000000, fin.PropertyValue, 0.001)

	// Invariants hold by construction.
	assert.InDelta(t, fin.GrossRentalIncome-fin.VacancyLoss, fin.EffectiveGrossIncome, 0.001)
	assert.InDelta(t, fin.PropertyValue, fin.LoanAmount+fin.DownPayment, 0.001)
	assert.InDelta(t, fin.NetOperatingIncome-fin.AnnualDebtService, fin.AnnualCashFlow, 0.001)
}

func TestNormalizeLTVSplit(t *testing.T) {
	fin, err := Normalize(nil, multifamilyRecord(), DefaultAssumptions())
	require.NoError(t, err)

	// 75% LTV on the resolved value.
	assert.InDelta(t, 3056250, fin.LoanAmount, 0.001)
	assert.InDelta(t, 1018750, fin.DownPayment, 0.001)
	assert.Greater(t, fin.AnnualDebtService, 0.0)
}

func TestNormalizeDerivesIncomeFromMarket(t *testing.T) {
	fin, err := Normalize(nil, multifamilyRecord(), DefaultAssumptions())
	require.NoError(t, err)

	// 24 units x 1650/mo x 12.
	assert.InDelta(t, 475200, fin.GrossRentalIncome, 0.001)
	// Vacancy assumption applied when no document figure exists.
	assert.InDelta(t, 23760, fin.VacancyLoss, 0.001)
}

func TestNormalizeRentRollBeatsMarket(t *testing.T) {
	extract := &model.FinancialDocumentExtract{
		TotalUnits:  model.IntPtr(20),
		AverageRent: model.Float64Ptr(1500),
	}

	fin, err := Normalize(extract, multifamilyRecord(), DefaultAssumptions())
	require.NoError(t, err)
	assert.InDelta(t, 360000, fin.GrossRentalIncome, 0.001)
}

func TestNormalizeBackDerivesExpensesFromNOI(t *testing.T) {
	extract := &model.FinancialDocumentExtract{
		GrossRentalIncome:  model.Float64Ptr(500000),
		VacancyLoss:        model.Float64Ptr(0),
		NetOperatingIncome: model.Float64Ptr(300000),
	}

	fin, err := Normalize(extract, multifamilyRecord(), DefaultAssumptions())
	require.NoError(t, err)

	assert.InDelta(t, 200000, fin.OperatingExpenses, 0.001)
	assert.InDelta(t, 300000, fin.NetOperatingIncome, 0.001)
}

func TestNormalizeMissingPropertyValueFails(t *testing.T) {
	rec := multifamilyRecord()
	rec.EstimatedValue = nil

	_, err := Normalize(nil, rec, DefaultAssumptions())
	require.ErrorIs(t, err, ErrPropertyValueMissing)
}

func TestNormalizeMissingIncomeFails(t *testing.T) {
	rec := multifamilyRecord()
	rec.Market = nil

	_, err := Normalize(nil, rec, DefaultAssumptions())
	require.ErrorIs(t, err, ErrIncomeMissing)
}

func TestNormalizeNilRecordNeedsDocuments(t *testing.T) {
	_, err := Normalize(nil, nil, DefaultAssumptions())
	require.ErrorIs(t, err, ErrPropertyValueMissing)

	extract := &model.FinancialDocumentExtract{
		GrossRentalIncome: model.Float64Ptr(500000),
		PropertyValue:     model.Float64Ptr(4000000),
	}
	fin, err := Normalize(extract, nil, DefaultAssumptions())
	require.NoError(t, err)
	assert.InDelta(t, 4000000, fin.PropertyValue, 0.001)
}
