// Package analysis orchestrates one underwriting request end to end:
// resolve the property, normalize the financials, compute metrics, evaluate
// the deal, narrate it, and persist the result.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proppulse/underwrite/internal/finance"
	"github.com/proppulse/underwrite/internal/fusion"
	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/internal/narrative"
	"github.com/proppulse/underwrite/internal/store"
)

// Request is one analysis job.
type Request struct {
	Address         string
	Extract         *model.FinancialDocumentExtract
	Criteria        *model.InvestmentCriteria
	ForceEstimation bool
}

// Analyzer wires the pipeline components together. The store may be nil for
// callers that do not want persistence.
type Analyzer struct {
	resolver    *fusion.Resolver
	augmenter   *narrative.Augmenter
	store       store.Store
	assumptions finance.Assumptions
}

// New creates an Analyzer.
func New(resolver *fusion.Resolver, augmenter *narrative.Augmenter, st store.Store, assumptions finance.Assumptions) *Analyzer {
	return &Analyzer{
		resolver:    resolver,
		augmenter:   augmenter,
		store:       st,
		assumptions: assumptions,
	}
}

// Analyze runs the full pipeline for one address. Financial-input failures
// (no property value, no income) surface as errors; data-resolution and
// narrative failures never do.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*model.AnalysisResult, error) {
	if req.Address == "" {
		return nil, eris.New("analysis: address is required")
	}

	rec, err := a.resolver.Resolve(ctx, req.Address, fusion.Options{ForceEstimation: req.ForceEstimation})
	if err != nil {
		return nil, eris.Wrap(err, "analysis: resolve property")
	}

	fin, err := finance.Normalize(req.Extract, rec, a.assumptions)
	if err != nil {
		return nil, err
	}

	metrics, err := finance.ComputeMetrics(fin, a.assumptions)
	if err != nil {
		return nil, err
	}

	criteria := model.DefaultCriteria()
	if req.Criteria != nil {
		criteria = req.Criteria.WithDefaults()
	}
	decision := finance.Evaluate(metrics, criteria)

	n := a.augmenter.Augment(ctx, rec, metrics, decision)

	result := &model.AnalysisResult{
		ID:              uuid.New().String(),
		PropertyAddress: req.Address,
		Decision:        decision,
		Metrics:         metrics,
		Property:        *rec,
		MarketData:      rec.Market,
		Financial:       fin.Summary(),
		Narrative:       n,
		CreatedAt:       time.Now().UTC(),
	}

	if a.store != nil {
		if err := a.store.SaveAnalysis(ctx, result); err != nil {
			// The analysis itself succeeded; persistence trouble should
			// not cost the caller their result.
			zap.L().Error("failed to persist analysis",
				zap.String("id", result.ID),
				zap.Error(err),
			)
		}
	}

	zap.L().Info("analysis complete",
		zap.String("id", result.ID),
		zap.String("address", req.Address),
		zap.String("status", string(decision.Status)),
		zap.Float64("score", decision.Score),
		zap.Int("confidence", rec.Provenance.Confidence),
	)
	return result, nil
}

// QuickLookup resolves property data without running the financial engine.
func (a *Analyzer) QuickLookup(ctx context.Context, address string, forceEstimation bool) (*model.PropertyRecord, error) {
	if address == "" {
		return nil, eris.New("analysis: address is required")
	}
	rec, err := a.resolver.Resolve(ctx, address, fusion.Options{ForceEstimation: forceEstimation})
	if err != nil {
		return nil, eris.Wrap(err, "analysis: resolve property")
	}
	return rec, nil
}
