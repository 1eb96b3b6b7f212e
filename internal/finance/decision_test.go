package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/proppulse/underwrite/internal/model"
)

func TestEvaluatePassingDealScoresAboveEighty(t *testing.T) {
	m := model.DealMetrics{
		CapRate:             6.8,
		CashOnCash:          12.3,
		DebtServiceCoverage: 1.34,
	}

	d := Evaluate(m, model.DefaultCriteria())

	assert.Equal(t, model.DealStatusPass, d.Status)
	assert.Greater(t, d.Score, 80.0)
	assert.LessOrEqual(t, d.Score, 100.0)
}

func TestEvaluateFailsWhenAnyThresholdMisses(t *testing.T) {
	tests := []struct {
		name string
		m    model.DealMetrics
	}{
		{"cap rate short", model.DealMetrics{CapRate: 5.9, CashOnCash: 12.3, DebtServiceCoverage: 1.34}},
		{"cash on cash short", model.DealMetrics{CapRate: 6.8, CashOnCash: 7.9, DebtServiceCoverage: 1.34}},
		{"dscr short", model.DealMetrics{CapRate: 6.8, CashOnCash: 12.3, DebtServiceCoverage: 1.19}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.m, model.DefaultCriteria())
			assert.Equal(t, model.DealStatusFail, d.Status)
		})
	}
}

func TestEvaluateScoreBounds(t *testing.T) {
	// A deal at exactly the thresholds earns no bonuses.
	at := Evaluate(model.DealMetrics{
		CapRate:             6.0,
		CashOnCash:          8.0,
		DebtServiceCoverage: 1.2,
	}, model.DefaultCriteria())
	assert.Equal(t, model.DealStatusPass, at.Status)
	assert.InDelta(t, 50.0, at.Score, 0.001)

	// A blowout deal clamps at 100.
	blowout := Evaluate(model.DealMetrics{
		CapRate:             12,
		CashOnCash:          30,
		DebtServiceCoverage: 3,
		IRR:                 40,
	}, model.DefaultCriteria())
	assert.Equal(t, 100.0, blowout.Score)
}

func TestEvaluateBonusCaps(t *testing.T) {
	assert.InDelta(t, 20, bonus(12, 6, capRateBonusFactor, capRateBonusCap), 0.001)
	assert.InDelta(t, 0, bonus(6, 6, capRateBonusFactor, capRateBonusCap), 0.001)
	assert.InDelta(t, 3, bonus(1.3, 1.2, dscrBonusFactor, dscrBonusCap), 0.001)
	assert.InDelta(t, 10, bonus(30, 12, irrBonusFactor, irrBonusCap), 0.001)
}

func TestEvaluateCustomCriteria(t *testing.T) {
	strict := model.InvestmentCriteria{MinCapRate: 8, MinCashOnCash: 12, MinDSCR: 1.5, MinIRR: 15}

	d := Evaluate(model.DealMetrics{
		CapRate:             6.8,
		CashOnCash:          12.3,
		DebtServiceCoverage: 1.34,
	}, strict)
	assert.Equal(t, model.DealStatusFail, d.Status)
}
