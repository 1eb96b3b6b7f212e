package source

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/internal/resilience"
	"github.com/proppulse/underwrite/pkg/nominatim"
)

// OSMAdapter resolves location data through OpenStreetMap's Nominatim
// geocoder. It backs up the Census geocoder for addresses the federal
// benchmark cannot match.
type OSMAdapter struct {
	client  nominatim.Client
	lim     *limiter
	timeout time.Duration
	retry   resilience.RetryPolicy
}

// NewOSMAdapter creates a public-estimate-tier adapter over a Nominatim
// client. Nominatim's usage policy caps anonymous traffic at one request per
// second, so ratePerSec should not exceed 1 against the public instance.
func NewOSMAdapter(client nominatim.Client, ratePerSec float64, timeout time.Duration) *OSMAdapter {
	retry := resilience.SourceRetryPolicy()
	retry.OnRetry = resilience.RetryLogger("openstreetmap", "search")
	return &OSMAdapter{
		client:  client,
		lim:     newLimiter(ratePerSec),
		timeout: timeout,
		retry:   retry,
	}
}

func (a *OSMAdapter) Name() string    { return "openstreetmap" }
func (a *OSMAdapter) Tier() TrustTier { return TierPublicEstimate }

func (a *OSMAdapter) Fetch(ctx context.Context, address string) (*PartialRecord, error) {
	if err := a.lim.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "nominatim: rate limit wait")
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	place, err := resilience.RetryVal(ctx, a.retry, func(ctx context.Context) (*nominatim.Place, error) {
		return a.client.Search(ctx, address)
	})
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: search")
	}
	if place == nil {
		zap.L().Debug("nominatim found no place", zap.String("address", address))
		return nil, nil
	}

	return &PartialRecord{
		Source:       a.Name(),
		Tier:         TierPublicEstimate,
		PropertyType: classifyOSM(place.Class, place.Type),
		Location: &model.Location{
			Latitude:  place.Latitude,
			Longitude: place.Longitude,
			City:      place.City,
			State:     place.State,
			ZipCode:   place.Postcode,
		},
	}, nil
}

// classifyOSM maps OpenStreetMap class/type tags onto our property type
// vocabulary. Most address-level hits are plain "place/house" nodes with no
// building tag, which stay unclassified.
func classifyOSM(class, osmType string) model.PropertyType {
	if class != "building" && class != "place" {
		return ""
	}
	switch osmType {
	case "apartments", "residential_complex":
		return model.PropertyTypeMultifamily
	case "house", "detached", "semidetached_house", "bungalow":
		return model.PropertyTypeSingleFamily
	case "commercial", "office", "retail", "industrial", "warehouse", "supermarket":
		return model.PropertyTypeCommercial
	default:
		return ""
	}
}
