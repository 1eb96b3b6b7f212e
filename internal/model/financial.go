package model

// OperatingExpenseBreakdown itemizes the major operating expense lines from
// a T12 statement. Zero values simply mean the line was not itemized.
type OperatingExpenseBreakdown struct {
	ManagementFees     float64 `json:"management_fees,omitempty"`
	Insurance          float64 `json:"insurance,omitempty"`
	PropertyTaxes      float64 `json:"property_taxes,omitempty"`
	MaintenanceRepairs float64 `json:"maintenance_repairs,omitempty"`
	Utilities          float64 `json:"utilities,omitempty"`
}

// FinancialDocumentExtract holds already-parsed key figures from uploaded
// T12 and rent-roll documents. Fields are pointers so that "the document
// did not contain this line" is distinguishable from a literal zero; the
// normalizer never substitutes defaults for absent required figures.
type FinancialDocumentExtract struct {
	GrossRentalIncome  *float64                  `json:"gross_rental_income,omitempty"`
	VacancyLoss        *float64                  `json:"vacancy_loss,omitempty"`
	OperatingExpenses  *float64                  `json:"operating_expenses,omitempty"`
	ExpenseBreakdown   OperatingExpenseBreakdown `json:"expense_breakdown"`
	NetOperatingIncome *float64                  `json:"net_operating_income,omitempty"`
	PropertyValue      *float64                  `json:"property_value,omitempty"`

	TotalUnits    *int     `json:"total_units,omitempty"`
	OccupiedUnits *int     `json:"occupied_units,omitempty"`
	AverageRent   *float64 `json:"average_rent,omitempty"`
}

// FinancialInput is the normalized merge of document figures and resolved
// property data. It exists only for the duration of one analysis request.
// Invariants maintained by the normalizer:
//
//	EffectiveGrossIncome = GrossRentalIncome - VacancyLoss
//	AnnualCashFlow       = NetOperatingIncome - AnnualDebtService
//	LoanAmount + DownPayment = PropertyValue
type FinancialInput struct {
	GrossRentalIncome    float64                   `json:"gross_rental_income"`
	VacancyLoss          float64                   `json:"vacancy_loss"`
	EffectiveGrossIncome float64                   `json:"effective_gross_income"`
	OperatingExpenses    float64                   `json:"operating_expenses"`
	ExpenseBreakdown     OperatingExpenseBreakdown `json:"expense_breakdown"`
	NetOperatingIncome   float64                   `json:"net_operating_income"`

	PropertyValue     float64 `json:"property_value"`
	LoanAmount        float64 `json:"loan_amount"`
	DownPayment       float64 `json:"down_payment"`
	InterestRate      float64 `json:"interest_rate"`
	LoanTermYears     int     `json:"loan_term_years"`
	AnnualDebtService float64 `json:"annual_debt_service"`
	AnnualCashFlow    float64 `json:"annual_cash_flow"`
}

// FinancialSummary is the condensed income statement included in an
// AnalysisResult.
type FinancialSummary struct {
	GrossRentalIncome  float64 `json:"gross_rental_income"`
	OperatingExpenses  float64 `json:"operating_expenses"`
	NetOperatingIncome float64 `json:"net_operating_income"`
	CashFlow           float64 `json:"cash_flow"`
}

// Summary condenses a FinancialInput into the persisted summary form.
func (f FinancialInput) Summary() FinancialSummary {
	return FinancialSummary{
		GrossRentalIncome:  f.GrossRentalIncome,
		OperatingExpenses:  f.OperatingExpenses,
		NetOperatingIncome: f.NetOperatingIncome,
		CashFlow:           f.AnnualCashFlow,
	}
}
