// Package narrative turns computed deal metrics into a human-readable
// recommendation. A deterministic version is always built first; AI
// enrichment may replace the free-text market insight but never the
// recommendation itself.
package narrative

import (
	"fmt"

	"github.com/proppulse/underwrite/internal/model"
)

// Recommendation buckets. The strong band clears every strict threshold;
// the default band matches the pass criteria.
const (
	strongBuyCapRate = 7.0
	strongBuyCoC     = 10.0
	strongBuyDSCR    = 1.3

	buyCapRate = 6.0
	buyCoC     = 8.0
	buyDSCR    = 1.2

	holdCapRate = 5.0
	holdCoC     = 6.0
)

// Strength and concern thresholds. Deliberately offset from the pass
// criteria so a marginal pass still surfaces honest caveats.
const (
	strengthCapRate = 6.5
	strengthCoC     = 9.0
	strengthDSCR    = 1.25
	strengthIRR     = 12.0

	concernCapRate = 6.0
	concernCoC     = 8.0
	concernDSCR    = 1.2
	concernIRR     = 10.0
)

// Build produces the deterministic metrics-only narrative. It always sets a
// recommendation and at least one strength and one concern.
func Build(m model.DealMetrics, d model.Decision) model.Narrative {
	n := model.Narrative{
		Recommendation: recommend(m),
		Strengths:      strengths(m),
		Concerns:       concerns(m),
		RiskAssessment: riskAssessment(m, d),
		MarketInsights: marketInsights(m, d),
	}
	return n
}

func recommend(m model.DealMetrics) model.Recommendation {
	switch {
	case m.CapRate >= strongBuyCapRate && m.CashOnCash >= strongBuyCoC && m.DebtServiceCoverage >= strongBuyDSCR:
		return model.RecommendationBuy
	case m.CapRate >= buyCapRate && m.CashOnCash >= buyCoC && m.DebtServiceCoverage >= buyDSCR:
		return model.RecommendationBuy
	case m.CapRate >= holdCapRate && m.CashOnCash >= holdCoC:
		return model.RecommendationHold
	default:
		return model.RecommendationPass
	}
}

func strengths(m model.DealMetrics) []string {
	var out []string
	if m.CapRate > strengthCapRate {
		out = append(out, fmt.Sprintf("Strong cap rate of %.2f%% exceeds typical market returns", m.CapRate))
	}
	if m.CashOnCash > strengthCoC {
		out = append(out, fmt.Sprintf("Cash-on-cash return of %.2f%% provides healthy leveraged yield", m.CashOnCash))
	}
	if m.DebtServiceCoverage > strengthDSCR {
		out = append(out, fmt.Sprintf("DSCR of %.2f leaves comfortable headroom over debt service", m.DebtServiceCoverage))
	}
	if m.IRR > strengthIRR {
		out = append(out, fmt.Sprintf("Projected IRR of %.2f%% over the hold period", m.IRR))
	}
	if len(out) == 0 {
		out = append(out, fmt.Sprintf("Debt service coverage of %.2f is the deal's most resilient metric", m.DebtServiceCoverage))
	}
	return out
}

func concerns(m model.DealMetrics) []string {
	var out []string
	if m.CapRate < concernCapRate {
		out = append(out, fmt.Sprintf("Cap rate of %.2f%% is below the %.1f%% screening threshold", m.CapRate, concernCapRate))
	}
	if m.CashOnCash < concernCoC {
		out = append(out, fmt.Sprintf("Cash-on-cash return of %.2f%% trails the %.1f%% target", m.CashOnCash, concernCoC))
	}
	if m.DebtServiceCoverage < concernDSCR {
		out = append(out, fmt.Sprintf("DSCR of %.2f offers thin coverage against income disruption", m.DebtServiceCoverage))
	}
	if m.IRR < concernIRR {
		out = append(out, fmt.Sprintf("Projected IRR of %.2f%% lags the %.1f%% benchmark", m.IRR, concernIRR))
	}
	if len(out) == 0 {
		out = append(out, "Projections assume stable occupancy; verify against local comps before closing")
	}
	return out
}

func riskAssessment(m model.DealMetrics, d model.Decision) string {
	switch {
	case d.Status == model.DealStatusPass && d.Score >= 80:
		return "Low risk profile: all screening metrics clear their thresholds with margin."
	case d.Status == model.DealStatusPass:
		return "Moderate risk profile: the deal passes screening but with limited cushion on at least one metric."
	case m.DebtServiceCoverage < 1.0:
		return "High risk profile: projected income does not cover debt service."
	default:
		return "Elevated risk profile: one or more screening metrics fall short of threshold."
	}
}

func marketInsights(m model.DealMetrics, d model.Decision) string {
	return fmt.Sprintf(
		"Composite score %.0f/100: cap rate %.2f%%, cash-on-cash %.2f%%, DSCR %.2f, projected IRR %.2f%%.",
		d.Score, m.CapRate, m.CashOnCash, m.DebtServiceCoverage, m.IRR,
	)
}
