package source

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/internal/resilience"
	"github.com/proppulse/underwrite/pkg/attom"
)

// AttomAdapter resolves verified assessor records through the ATTOM API.
type AttomAdapter struct {
	client  attom.Client
	lim     *limiter
	timeout time.Duration
	retry   resilience.RetryPolicy
}

// NewAttomAdapter creates a verified-tier adapter over an ATTOM client.
func NewAttomAdapter(client attom.Client, ratePerSec float64, timeout time.Duration) *AttomAdapter {
	retry := resilience.SourceRetryPolicy()
	retry.OnRetry = resilience.RetryLogger("attom", "property_detail")
	return &AttomAdapter{
		client:  client,
		lim:     newLimiter(ratePerSec),
		timeout: timeout,
		retry:   retry,
	}
}

func (a *AttomAdapter) Name() string    { return "attom" }
func (a *AttomAdapter) Tier() TrustTier { return TierVerified }

// Fetch looks the address up in ATTOM's property detail endpoint. An address
// with no assessor record returns (nil, nil); only transport and parse
// failures surface as errors.
func (a *AttomAdapter) Fetch(ctx context.Context, address string) (*PartialRecord, error) {
	if err := a.lim.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "attom: rate limit wait")
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	detail, err := resilience.RetryVal(ctx, a.retry, func(ctx context.Context) (*attom.PropertyDetail, error) {
		return a.client.PropertyDetail(ctx, address)
	})
	if err != nil {
		return nil, eris.Wrap(err, "attom: property detail")
	}
	if detail == nil || detail.AttomID == 0 {
		zap.L().Debug("attom returned no record", zap.String("address", address))
		return nil, nil
	}

	partial := &PartialRecord{
		Source:       a.Name(),
		Tier:         TierVerified,
		PropertyType: classifyAttom(detail.PropertyClass, detail.PropertyType),
	}
	if detail.Units > 0 {
		partial.Units = model.IntPtr(detail.Units)
	}
	if detail.LivingSize > 0 {
		partial.SquareFootage = model.Float64Ptr(detail.LivingSize)
	}
	if detail.YearBuilt > 0 {
		partial.YearBuilt = model.IntPtr(detail.YearBuilt)
	}
	if detail.MarketValue > 0 {
		partial.EstimatedValue = model.Float64Ptr(detail.MarketValue)
	}
	if detail.LotSize > 0 {
		partial.LotSize = model.Float64Ptr(detail.LotSize)
	}
	if detail.Latitude != 0 || detail.Longitude != 0 || detail.City != "" {
		partial.Location = &model.Location{
			Latitude:  detail.Latitude,
			Longitude: detail.Longitude,
			City:      detail.City,
			State:     detail.State,
			ZipCode:   detail.ZipCode,
		}
	}
	return partial, nil
}

// classifyAttom maps ATTOM's property class and type strings onto our
// property type vocabulary.
func classifyAttom(class, ptype string) model.PropertyType {
	c := strings.ToLower(class + " " + ptype)
	switch {
	case strings.Contains(c, "apartment"), strings.Contains(c, "multi"),
		strings.Contains(c, "duplex"), strings.Contains(c, "triplex"),
		strings.Contains(c, "quadplex"):
		return model.PropertyTypeMultifamily
	case strings.Contains(c, "condo"):
		return model.PropertyTypeCondominium
	case strings.Contains(c, "commercial"), strings.Contains(c, "office"),
		strings.Contains(c, "retail"), strings.Contains(c, "industrial"),
		strings.Contains(c, "warehouse"):
		return model.PropertyTypeCommercial
	case strings.Contains(c, "sfr"), strings.Contains(c, "single"),
		strings.Contains(c, "residential"):
		return model.PropertyTypeSingleFamily
	default:
		return ""
	}
}
