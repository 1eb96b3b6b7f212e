package source

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/internal/resilience"
	"github.com/proppulse/underwrite/pkg/hud"
)

// HUDAdapter resolves market rent levels from HUD fair market rent surveys.
type HUDAdapter struct {
	client  hud.Client
	lim     *limiter
	timeout time.Duration
	retry   resilience.RetryPolicy
}

// NewHUDAdapter creates a public-estimate-tier adapter over a HUD client.
func NewHUDAdapter(client hud.Client, ratePerSec float64, timeout time.Duration) *HUDAdapter {
	retry := resilience.SourceRetryPolicy()
	retry.OnRetry = resilience.RetryLogger("hud_fmr", "fair_market_rents")
	return &HUDAdapter{
		client:  client,
		lim:     newLimiter(ratePerSec),
		timeout: timeout,
		retry:   retry,
	}
}

func (a *HUDAdapter) Name() string    { return "hud_fmr" }
func (a *HUDAdapter) Tier() TrustTier { return TierPublicEstimate }

func (a *HUDAdapter) Fetch(ctx context.Context, address string) (*PartialRecord, error) {
	city, state := ParseCityState(address)
	if city == "" || state == "" {
		zap.L().Debug("hud adapter could not parse city/state", zap.String("address", address))
		return nil, nil
	}

	if err := a.lim.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "hud: rate limit wait")
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	fmr, err := resilience.RetryVal(ctx, a.retry, func(ctx context.Context) (*hud.FairMarketRents, error) {
		return a.client.FairMarketRentsForCity(ctx, state, city)
	})
	if err != nil {
		return nil, eris.Wrap(err, "hud: fair market rents")
	}
	if fmr == nil {
		zap.L().Debug("hud has no metro for city",
			zap.String("city", city), zap.String("state", state))
		return nil, nil
	}

	return &PartialRecord{
		Source: a.Name(),
		Tier:   TierPublicEstimate,
		Market: &model.MarketStats{
			AvgRentPerUnit: fmr.TwoBedroom,
		},
		Notes: "fair market rent, two-bedroom, " + fmr.MetroName,
	}, nil
}

var cityStateRe = regexp.MustCompile(`(?i)^([A-Z]{2})\b`)

// ParseCityState pulls the city and two-letter state code from a one-line
// US address of the form "street, city, ST [zip]".
func ParseCityState(address string) (city, state string) {
	parts := strings.Split(address, ",")
	if len(parts) < 3 {
		return "", ""
	}
	city = strings.TrimSpace(parts[len(parts)-2])
	tail := strings.TrimSpace(parts[len(parts)-1])
	if m := cityStateRe.FindStringSubmatch(tail); m != nil {
		state = strings.ToUpper(m[1])
	}
	return city, state
}
