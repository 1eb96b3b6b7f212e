package finance

import (
	"math"

	"github.com/proppulse/underwrite/internal/model"
)

// Bonus factors: points awarded per unit a metric exceeds its threshold,
// with a hard cap per metric. The score is a heuristic policy, not a model.
const (
	capRateBonusFactor = 25.0
	capRateBonusCap    = 20.0

	cashOnCashBonusFactor = 3.0
	cashOnCashBonusCap    = 15.0

	dscrBonusFactor = 30.0
	dscrBonusCap    = 15.0

	irrBonusFactor = 2.0
	irrBonusCap    = 10.0
)

// Evaluate compares metrics against the criteria. A deal passes only when
// cap rate, cash-on-cash, and DSCR all clear their minimums. The score
// starts at 50 and earns capped bonuses for exceeding each threshold,
// clamped to [0, 100].
func Evaluate(m model.DealMetrics, criteria model.InvestmentCriteria) model.Decision {
	criteria = criteria.WithDefaults()

	status := model.DealStatusFail
	if m.CapRate >= criteria.MinCapRate &&
		m.CashOnCash >= criteria.MinCashOnCash &&
		m.DebtServiceCoverage >= criteria.MinDSCR {
		status = model.DealStatusPass
	}

	score := 50.0
	score += bonus(m.CapRate, criteria.MinCapRate, capRateBonusFactor, capRateBonusCap)
	score += bonus(m.CashOnCash, criteria.MinCashOnCash, cashOnCashBonusFactor, cashOnCashBonusCap)
	score += bonus(m.DebtServiceCoverage, criteria.MinDSCR, dscrBonusFactor, dscrBonusCap)
	score += bonus(m.IRR, criteria.MinIRR, irrBonusFactor, irrBonusCap)

	return model.Decision{
		Status: status,
		Score:  math.Min(100, math.Max(0, score)),
	}
}

func bonus(metric, threshold, factor, cap float64) float64 {
	if metric <= threshold {
		return 0
	}
	return math.Min(cap, (metric-threshold)*factor)
}
