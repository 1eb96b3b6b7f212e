package source

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/internal/resilience"
	"github.com/proppulse/underwrite/pkg/censusgeo"
)

// CensusAdapter resolves location data through the Census Bureau geocoder.
// It is a public-estimate source: coordinates are authoritative but carry no
// assessor-grade property facts.
type CensusAdapter struct {
	client  censusgeo.Client
	lim     *limiter
	timeout time.Duration
	retry   resilience.RetryPolicy
}

// NewCensusAdapter creates a public-estimate-tier adapter over the Census
// geocoding client.
func NewCensusAdapter(client censusgeo.Client, ratePerSec float64, timeout time.Duration) *CensusAdapter {
	retry := resilience.SourceRetryPolicy()
	retry.OnRetry = resilience.RetryLogger("census", "geocode")
	return &CensusAdapter{
		client:  client,
		lim:     newLimiter(ratePerSec),
		timeout: timeout,
		retry:   retry,
	}
}

func (a *CensusAdapter) Name() string    { return "census" }
func (a *CensusAdapter) Tier() TrustTier { return TierPublicEstimate }

func (a *CensusAdapter) Fetch(ctx context.Context, address string) (*PartialRecord, error) {
	if err := a.lim.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "census: rate limit wait")
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	match, err := resilience.RetryVal(ctx, a.retry, func(ctx context.Context) (*censusgeo.Match, error) {
		return a.client.Geocode(ctx, address)
	})
	if err != nil {
		return nil, eris.Wrap(err, "census: geocode")
	}
	if match == nil || !match.Matched {
		zap.L().Debug("census geocoder found no match", zap.String("address", address))
		return nil, nil
	}

	partial := &PartialRecord{
		Source: a.Name(),
		Tier:   TierPublicEstimate,
		Location: &model.Location{
			Latitude:  match.Latitude,
			Longitude: match.Longitude,
		},
	}

	tract, err := a.client.TractForCoordinates(ctx, match.Latitude, match.Longitude)
	if err != nil {
		// Tract lookup is supplemental; the geocode result still stands.
		zap.L().Warn("census tract lookup failed", zap.String("address", address), zap.Error(err))
		return partial, nil
	}
	if tract != nil {
		partial.Notes = fmt.Sprintf("tract %s, %s, %s", tract.TractCode, tract.CountyName, tract.StateName)
	}
	return partial, nil
}
