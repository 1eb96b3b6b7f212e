// Package finance implements the underwriting calculation engine: input
// normalization, deal metrics, and the pass/fail decision. All rate inputs
// are percentage points (6.5 means 6.5%) and are divided by 100 internally.
package finance

import (
	"math"

	"github.com/proppulse/underwrite/internal/model"
)

// Assumptions hold the underwriting model parameters. All percentage fields
// are in points, not fractions.
type Assumptions struct {
	VacancyRatePct    float64 `json:"vacancy_rate_pct"`
	ManagementFeePct  float64 `json:"management_fee_pct"`
	CapexReservePct   float64 `json:"capex_reserve_pct"`
	RentGrowthPct     float64 `json:"rent_growth_pct"`
	ExpenseGrowthPct  float64 `json:"expense_growth_pct"`
	DiscountRatePct   float64 `json:"discount_rate_pct"`
	HoldYears         int     `json:"hold_years"`
	LTVPct            float64 `json:"ltv_pct"`
	InterestRatePct   float64 `json:"interest_rate_pct"`
	LoanTermYears     int     `json:"loan_term_years"`
	ExitCapRatePct    float64 `json:"exit_cap_rate_pct"`
}

// DefaultAssumptions returns the documented model defaults.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		VacancyRatePct:   5,
		ManagementFeePct: 8,
		CapexReservePct:  5,
		RentGrowthPct:    3,
		ExpenseGrowthPct: 2.5,
		DiscountRatePct:  10,
		HoldYears:        5,
		LTVPct:           75,
		InterestRatePct:  6.5,
		LoanTermYears:    30,
		ExitCapRatePct:   6.5,
	}
}

// CapRate returns net operating income over property value, in percent.
func CapRate(noi, propertyValue float64) (float64, error) {
	if propertyValue <= 0 {
		return 0, &DivisionUndefinedError{Metric: "cap_rate"}
	}
	return noi / propertyValue * 100, nil
}

// CashOnCash returns annual cash flow over the cash invested, in percent.
// A down payment of zero or less is undefined, never infinity.
func CashOnCash(annualCashFlow, downPayment float64) (float64, error) {
	if downPayment <= 0 {
		return 0, &DivisionUndefinedError{Metric: "cash_on_cash"}
	}
	return annualCashFlow / downPayment * 100, nil
}

// MonthlyPayment computes the amortized monthly loan payment. A zero rate
// degenerates to straight-line principal repayment.
func MonthlyPayment(loanAmount, annualRatePct float64, termYears int) float64 {
	if loanAmount <= 0 || termYears <= 0 {
		return 0
	}
	n := float64(termYears * 12)
	monthlyRate := annualRatePct / 100 / 12
	if monthlyRate == 0 {
		return loanAmount / n
	}
	factor := math.Pow(1+monthlyRate, n)
	return loanAmount * monthlyRate * factor / (factor - 1)
}

// AnnualDebtService is twelve amortized monthly payments.
func AnnualDebtService(loanAmount, annualRatePct float64, termYears int) float64 {
	return MonthlyPayment(loanAmount, annualRatePct, termYears) * 12
}

// DebtServiceCoverage returns NOI over annual debt service.
func DebtServiceCoverage(noi, annualDebtService float64) (float64, error) {
	if annualDebtService <= 0 {
		return 0, &DivisionUndefinedError{Metric: "debt_service_coverage"}
	}
	return noi / annualDebtService, nil
}

// terminalSalePrice applies the exit cap rate to NOI grown over the holding
// period. IRR and NPV share this so the two stay consistent.
func terminalSalePrice(fin model.FinancialInput, a Assumptions) float64 {
	if a.ExitCapRatePct <= 0 || a.HoldYears <= 0 {
		return 0
	}
	growth := a.RentGrowthPct / 100
	terminalNOI := fin.NetOperatingIncome * math.Pow(1+growth, float64(a.HoldYears))
	return terminalNOI / (a.ExitCapRatePct / 100)
}

// IRR computes the holding-period internal rate of return, in percent:
// annual cash flow holds flat across the hold (rent growth enters only
// through the terminal sale), the property sells at the exit cap rate, and
// the total profit over the initial investment is annualized via the Nth
// root. Negative computed returns floor at 0.
func IRR(fin model.FinancialInput, a Assumptions) float64 {
	if fin.DownPayment <= 0 || a.HoldYears <= 0 {
		return 0
	}

	totalCashFlow := fin.AnnualCashFlow * float64(a.HoldYears)
	capitalGain := terminalSalePrice(fin, a) - fin.PropertyValue
	totalReturn := (totalCashFlow + capitalGain) / fin.DownPayment

	irr := (math.Pow(1+totalReturn, 1/float64(a.HoldYears)) - 1) * 100
	if math.IsNaN(irr) || irr < 0 {
		return 0
	}
	return irr
}

// NPV discounts the flat annual cash flow over the hold and the terminal
// sale value, then subtracts the initial investment. It shares the holding
// period and exit cap assumptions with IRR.
func NPV(fin model.FinancialInput, a Assumptions) float64 {
	if a.HoldYears <= 0 {
		return 0
	}

	discount := a.DiscountRatePct / 100

	npv := -fin.DownPayment
	for year := 1; year <= a.HoldYears; year++ {
		npv += fin.AnnualCashFlow / math.Pow(1+discount, float64(year))
	}
	npv += terminalSalePrice(fin, a) / math.Pow(1+discount, float64(a.HoldYears))
	return npv
}

// ComputeMetrics evaluates every deal metric from a normalized input.
// Division failures surface immediately with the offending metric named.
func ComputeMetrics(fin model.FinancialInput, a Assumptions) (model.DealMetrics, error) {
	capRate, err := CapRate(fin.NetOperatingIncome, fin.PropertyValue)
	if err != nil {
		return model.DealMetrics{}, err
	}
	coc, err := CashOnCash(fin.AnnualCashFlow, fin.DownPayment)
	if err != nil {
		return model.DealMetrics{}, err
	}
	dscr, err := DebtServiceCoverage(fin.NetOperatingIncome, fin.AnnualDebtService)
	if err != nil {
		return model.DealMetrics{}, err
	}

	return model.DealMetrics{
		CapRate:             capRate,
		CashOnCash:          coc,
		IRR:                 IRR(fin, a),
		NetPresentValue:     NPV(fin, a),
		DebtServiceCoverage: dscr,
	}, nil
}
