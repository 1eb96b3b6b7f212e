package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proppulse/underwrite/internal/analysis"
	"github.com/proppulse/underwrite/internal/config"
	"github.com/proppulse/underwrite/internal/finance"
	"github.com/proppulse/underwrite/internal/fusion"
	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/internal/narrative"
	"github.com/proppulse/underwrite/internal/source"
	"github.com/proppulse/underwrite/internal/store"
	anthropicpkg "github.com/proppulse/underwrite/pkg/anthropic"
	"github.com/proppulse/underwrite/pkg/attom"
	"github.com/proppulse/underwrite/pkg/censusgeo"
	"github.com/proppulse/underwrite/pkg/hud"
	"github.com/proppulse/underwrite/pkg/nominatim"
)

// analyzerEnv holds the initialized store and analyzer shared by the
// analyze/lookup/serve commands.
type analyzerEnv struct {
	Store    store.Store
	Analyzer *analysis.Analyzer
}

// Close releases resources held by the environment.
func (ae *analyzerEnv) Close() {
	if ae.Store != nil {
		_ = ae.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "proppulse.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initAnalyzer sets up the store, the data source adapters, and the analyzer.
// Callers should defer env.Close().
func initAnalyzer(ctx context.Context) (*analyzerEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	registry := source.NewRegistry()

	// Verified records tier (optional, needs an API key).
	if cfg.Attom.Key != "" {
		attomClient := attom.NewClient(cfg.Attom.Key, attom.WithBaseURL(cfg.Attom.BaseURL))
		registry.Register(source.NewAttomAdapter(attomClient, cfg.Attom.RatePerSec, secs(cfg.Attom.TimeoutSecs)))
	} else {
		zap.L().Debug("PROPPULSE_ATTOM_KEY not set, verified records tier disabled")
	}

	// Public estimate tier. Merge order follows this registration order.
	censusClient := censusgeo.NewClient(censusgeo.WithBaseURL(cfg.Census.BaseURL))
	osmClient := nominatim.NewClient(
		nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
		nominatim.WithUserAgent(cfg.Nominatim.UserAgent),
	)
	hudClient := hud.NewClient(hud.WithBaseURL(cfg.HUD.BaseURL))

	registry.Register(source.NewCensusAdapter(censusClient, cfg.Census.RatePerSec, secs(cfg.Census.TimeoutSecs)))
	registry.Register(source.NewOSMAdapter(osmClient, cfg.Nominatim.RatePerSec, secs(cfg.Nominatim.TimeoutSecs)))
	registry.Register(source.NewHUDAdapter(hudClient, cfg.HUD.RatePerSec, secs(cfg.HUD.TimeoutSecs)))

	var verified source.Adapter
	if vs := registry.ByTier(source.TierVerified); len(vs) > 0 {
		verified = vs[0]
	}
	public := registry.ByTier(source.TierPublicEstimate)

	// AI estimation and narrative enrichment share one Anthropic client.
	var ai *source.AIAdapter
	var augmenter *narrative.Augmenter
	if cfg.Anthropic.Key != "" {
		client := anthropicpkg.NewClient(cfg.Anthropic.Key)
		ai = source.NewAIAdapter(client, cfg.Anthropic.Model, secs(cfg.Anthropic.EstimateTimeoutSecs))
		augmenter = narrative.NewAugmenter(client, cfg.Anthropic.Model, secs(cfg.Anthropic.EnrichTimeoutSecs))
	} else {
		zap.L().Debug("PROPPULSE_ANTHROPIC_KEY not set, AI estimation and narrative enrichment disabled")
		augmenter = narrative.NewAugmenter(nil, "", 0)
	}

	resolver := fusion.NewResolver(verified, public, ai, source.NewHeuristicAdapter())
	analyzer := analysis.New(resolver, augmenter, st, assumptionsFromConfig(cfg.Analysis))

	return &analyzerEnv{Store: st, Analyzer: analyzer}, nil
}

func assumptionsFromConfig(c config.AnalysisConfig) finance.Assumptions {
	a := finance.DefaultAssumptions()
	if c.VacancyRate > 0 {
		a.VacancyRatePct = c.VacancyRate
	}
	if c.ManagementFeeRate > 0 {
		a.ManagementFeePct = c.ManagementFeeRate
	}
	if c.CapexReserveRate > 0 {
		a.CapexReservePct = c.CapexReserveRate
	}
	if c.AnnualRentGrowth > 0 {
		a.RentGrowthPct = c.AnnualRentGrowth
	}
	if c.AnnualExpenseGrowth > 0 {
		a.ExpenseGrowthPct = c.AnnualExpenseGrowth
	}
	if c.DiscountRate > 0 {
		a.DiscountRatePct = c.DiscountRate
	}
	if c.HoldingPeriodYears > 0 {
		a.HoldYears = c.HoldingPeriodYears
	}
	if c.ExitCapRate > 0 {
		a.ExitCapRatePct = c.ExitCapRate
	}
	if c.LoanToValue > 0 {
		a.LTVPct = c.LoanToValue
	}
	if c.InterestRate > 0 {
		a.InterestRatePct = c.InterestRate
	}
	if c.LoanTermYears > 0 {
		a.LoanTermYears = c.LoanTermYears
	}
	return a
}

func criteriaFromConfig(c config.CriteriaConfig) model.InvestmentCriteria {
	return model.InvestmentCriteria{
		MinCapRate:    c.MinCapRate,
		MinCashOnCash: c.MinCashOnCash,
		MinDSCR:       c.MinDSCR,
		MinIRR:        c.MinIRR,
	}.WithDefaults()
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}
