package finance

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proppulse/underwrite/internal/model"
)

// ErrIncomeMissing means no rental income figure could be found in the
// documents, the rent roll, or the resolved market data.
var ErrIncomeMissing = eris.New("finance: no rental income figure available from documents or market data")

// defaultExpenseRatioPct estimates total operating expenses as a share of
// effective gross income when neither the T12 nor a document NOI gives us a
// real number.
const defaultExpenseRatioPct = 40.0

// Normalize merges uploaded document figures with the resolved property
// record into one consistent FinancialInput. Document figures always win
// over resolved estimates. Required figures are never defaulted: a missing
// property value or income stream fails the request.
//
// The output satisfies, by construction:
//
//	EffectiveGrossIncome = GrossRentalIncome - VacancyLoss
//	NetOperatingIncome   = EffectiveGrossIncome - OperatingExpenses
//	LoanAmount + DownPayment = PropertyValue
//	AnnualCashFlow       = NetOperatingIncome - AnnualDebtService
func Normalize(extract *model.FinancialDocumentExtract, rec *model.PropertyRecord, a Assumptions) (model.FinancialInput, error) {
	if extract == nil {
		extract = &model.FinancialDocumentExtract{}
	}

	value, err := propertyValue(extract, rec)
	if err != nil {
		return model.FinancialInput{}, err
	}

	gri, err := grossRentalIncome(extract, rec)
	if err != nil {
		return model.FinancialInput{}, err
	}

	vacancy := gri * a.VacancyRatePct / 100
	if extract.VacancyLoss != nil {
		vacancy = *extract.VacancyLoss
	}
	egi := gri - vacancy

	opex := operatingExpenses(extract, egi)
	noi := egi - opex

	loan := value * a.LTVPct / 100
	down := value - loan
	ads := AnnualDebtService(loan, a.InterestRatePct, a.LoanTermYears)

	fin := model.FinancialInput{
		GrossRentalIncome:    gri,
		VacancyLoss:          vacancy,
		EffectiveGrossIncome: egi,
		OperatingExpenses:    opex,
		ExpenseBreakdown:     extract.ExpenseBreakdown,
		NetOperatingIncome:   noi,
		PropertyValue:        value,
		LoanAmount:           loan,
		DownPayment:          down,
		InterestRate:         a.InterestRatePct,
		LoanTermYears:        a.LoanTermYears,
		AnnualDebtService:    ads,
		AnnualCashFlow:       noi - ads,
	}

	zap.L().Debug("normalized financial input",
		zap.Float64("property_value", value),
		zap.Float64("gross_rental_income", gri),
		zap.Float64("net_operating_income", noi),
		zap.Float64("annual_debt_service", ads),
	)
	return fin, nil
}

func propertyValue(extract *model.FinancialDocumentExtract, rec *model.PropertyRecord) (float64, error) {
	if extract.PropertyValue != nil && *extract.PropertyValue > 0 {
		return *extract.PropertyValue, nil
	}
	if rec != nil && rec.EstimatedValue != nil && *rec.EstimatedValue > 0 {
		return *rec.EstimatedValue, nil
	}
	return 0, ErrPropertyValueMissing
}

// grossRentalIncome resolves annual gross rental income in document order:
// the T12 figure, then the rent roll (units x average rent), then resolved
// market data.
func grossRentalIncome(extract *model.FinancialDocumentExtract, rec *model.PropertyRecord) (float64, error) {
	if extract.GrossRentalIncome != nil && *extract.GrossRentalIncome > 0 {
		return *extract.GrossRentalIncome, nil
	}
	if extract.TotalUnits != nil && extract.AverageRent != nil &&
		*extract.TotalUnits > 0 && *extract.AverageRent > 0 {
		return float64(*extract.TotalUnits) * *extract.AverageRent * 12, nil
	}
	if rec != nil && rec.Market != nil {
		if rec.Market.AnnualRentIncome > 0 {
			return rec.Market.AnnualRentIncome, nil
		}
		if rec.Market.AvgRentPerUnit > 0 && rec.Units > 0 {
			return rec.Market.AvgRentPerUnit * float64(rec.Units) * 12, nil
		}
	}
	return 0, ErrIncomeMissing
}

// operatingExpenses prefers the documented figure, then back-derives from a
// documented NOI, then falls back to the expense ratio rule of thumb.
func operatingExpenses(extract *model.FinancialDocumentExtract, egi float64) float64 {
	if extract.OperatingExpenses != nil && *extract.OperatingExpenses >= 0 {
		return *extract.OperatingExpenses
	}
	if extract.NetOperatingIncome != nil {
		return egi - *extract.NetOperatingIncome
	}
	return egi * defaultExpenseRatioPct / 100
}
