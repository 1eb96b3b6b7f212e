package fusion

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/internal/source"
	"github.com/proppulse/underwrite/pkg/anthropic"
)

// stubAdapter returns a fixed partial or error.
type stubAdapter struct {
	name    string
	tier    source.TrustTier
	partial *source.PartialRecord
	err     error
	calls   int
}

func (s *stubAdapter) Name() string           { return s.name }
func (s *stubAdapter) Tier() source.TrustTier { return s.tier }

func (s *stubAdapter) Fetch(_ context.Context, _ string) (*source.PartialRecord, error) {
	s.calls++
	return s.partial, s.err
}

// stubAIText builds an AIAdapter whose underlying client returns fixed text.
func stubAIText(text string, err error) *source.AIAdapter {
	return source.NewAIAdapter(&stubAIClient{text: text, err: err}, "claude-test", time.Second)
}

type stubAIClient struct {
	text string
	err  error
}

func (s *stubAIClient) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: s.text}},
	}, nil
}

func verifiedStub() *stubAdapter {
	return &stubAdapter{
		name: "attom",
		tier: source.TierVerified,
		partial: &source.PartialRecord{
			Source:         "attom",
			Tier:           source.TierVerified,
			PropertyType:   model.PropertyTypeMultifamily,
			Units:          model.IntPtr(24),
			EstimatedValue: model.Float64Ptr(4075000),
			Location:       &model.Location{Latitude: 30.27, Longitude: -97.74, City: "Austin", State: "TX"},
		},
	}
}

func publicGeoStub() *stubAdapter {
	return &stubAdapter{
		name: "openstreetmap",
		tier: source.TierPublicEstimate,
		partial: &source.PartialRecord{
			Source:       "openstreetmap",
			Tier:         source.TierPublicEstimate,
			PropertyType: model.PropertyTypeMultifamily,
			Location:     &model.Location{Latitude: 30.27, Longitude: -97.74, City: "Austin", State: "TX"},
		},
	}
}

const addr = "450 Oakwood Apartments, Austin, TX 78701"

func TestResolveVerifiedTier(t *testing.T) {
	v := verifiedStub()
	pub := publicGeoStub()
	r := NewResolver(v, []source.Adapter{pub}, nil, source.NewHeuristicAdapter())

	rec, err := r.Resolve(context.Background(), addr, Options{})
	require.NoError(t, err)

	assert.Equal(t, 95, rec.Provenance.Confidence)
	assert.False(t, rec.Provenance.IsEstimated)
	assert.Equal(t, []string{"attom"}, rec.Provenance.Sources)
	assert.Equal(t, model.PropertyTypeMultifamily, rec.PropertyType)
	assert.Equal(t, 24, rec.Units)
	// Lower tiers are never consulted once verified data lands.
	assert.Equal(t, 0, pub.calls)
}

func TestResolvePublicTier(t *testing.T) {
	v := &stubAdapter{name: "attom", tier: source.TierVerified} // no record
	r := NewResolver(v, []source.Adapter{publicGeoStub()}, nil, source.NewHeuristicAdapter())

	rec, err := r.Resolve(context.Background(), addr, Options{})
	require.NoError(t, err)

	assert.Equal(t, 60, rec.Provenance.Confidence)
	assert.True(t, rec.Provenance.IsEstimated)
	assert.Equal(t, []string{"openstreetmap"}, rec.Provenance.Sources)
}

func TestResolveAITier(t *testing.T) {
	// Public tier yields a geocode but no property type, so the cascade
	// falls through to AI, which is higher confidence than public by design.
	geoOnly := &stubAdapter{
		name: "census",
		tier: source.TierPublicEstimate,
		partial: &source.PartialRecord{
			Source:   "census",
			Tier:     source.TierPublicEstimate,
			Location: &model.Location{Latitude: 30.27, Longitude: -97.74},
		},
	}
	ai := stubAIText(`{"property_type": "Multifamily", "units": 24, "estimated_value": 3000000}`, nil)
	r := NewResolver(nil, []source.Adapter{geoOnly}, ai, source.NewHeuristicAdapter())

	rec, err := r.Resolve(context.Background(), addr, Options{})
	require.NoError(t, err)

	assert.Equal(t, 75, rec.Provenance.Confidence)
	assert.True(t, rec.Provenance.IsEstimated)
	assert.Equal(t, []string{"census", "ai_estimate"}, rec.Provenance.Sources)
	assert.Equal(t, 24, rec.Units)
	// The public geocode survives the merge.
	require.NotNil(t, rec.Location)
	assert.InDelta(t, 30.27, rec.Location.Latitude, 0.001)
}

func TestResolveAIParseFailureFallsThrough(t *testing.T) {
	ai := stubAIText("sorry, I can't help with that", nil)
	r := NewResolver(nil, nil, ai, source.NewHeuristicAdapter())

	rec, err := r.Resolve(context.Background(), addr, Options{})
	require.NoError(t, err)

	assert.Equal(t, 25, rec.Provenance.Confidence)
	assert.Equal(t, []string{"heuristic"}, rec.Provenance.Sources)
}

func TestResolveProviderErrorsNeverSurface(t *testing.T) {
	v := &stubAdapter{name: "attom", tier: source.TierVerified, err: eris.New("503")}
	pub := &stubAdapter{name: "census", tier: source.TierPublicEstimate, err: eris.New("timeout")}
	ai := stubAIText("", eris.New("api down"))
	r := NewResolver(v, []source.Adapter{pub}, ai, source.NewHeuristicAdapter())

	rec, err := r.Resolve(context.Background(), addr, Options{})
	require.NoError(t, err)

	assert.Equal(t, 25, rec.Provenance.Confidence)
	assert.True(t, rec.Provenance.IsEstimated)
}

func TestResolveTierConfidenceMapping(t *testing.T) {
	// The exact mapping is part of the contract: Verified 95, PublicEstimate
	// 60, AIEstimate 75, Heuristic 25, none 0.
	tests := []struct {
		name     string
		resolver *Resolver
		address  string
		want     int
	}{
		{"verified", NewResolver(verifiedStub(), nil, nil, source.NewHeuristicAdapter()), addr, 95},
		{"public", NewResolver(nil, []source.Adapter{publicGeoStub()}, nil, source.NewHeuristicAdapter()), addr, 60},
		{"ai", NewResolver(nil, nil, stubAIText(`{"property_type":"Commercial","units":1}`, nil), source.NewHeuristicAdapter()), "Parcel 47, Tulsa, OK", 75},
		{"heuristic", NewResolver(nil, nil, nil, source.NewHeuristicAdapter()), addr, 25},
		{"none", NewResolver(nil, nil, nil, source.NewHeuristicAdapter()), "Parcel 47, Tulsa, OK", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := tt.resolver.Resolve(context.Background(), tt.address, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Provenance.Confidence)
		})
	}
}

func TestResolveNoDataRecord(t *testing.T) {
	r := NewResolver(nil, nil, nil, source.NewHeuristicAdapter())

	rec, err := r.Resolve(context.Background(), "Parcel 47, Tulsa, OK", Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, rec.Provenance.Confidence)
	assert.Empty(t, rec.Provenance.Sources)
	assert.Equal(t, model.PropertyTypeUnknown, rec.PropertyType)
	assert.Nil(t, rec.EstimatedValue)
	assert.Nil(t, rec.SquareFootage)
}

func TestResolveForceEstimation(t *testing.T) {
	r := NewResolver(nil, nil, nil, source.NewHeuristicAdapter())

	rec, err := r.Resolve(context.Background(), "Parcel 47, Tulsa, OK", Options{ForceEstimation: true})
	require.NoError(t, err)

	assert.Equal(t, 25, rec.Provenance.Confidence)
	assert.Equal(t, model.PropertyTypeSingleFamily, rec.PropertyType)
	assert.Equal(t, []string{"heuristic"}, rec.Provenance.Sources)
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewResolver(verifiedStub(), []source.Adapter{publicGeoStub()}, nil, source.NewHeuristicAdapter())

	rec1, err := r.Resolve(context.Background(), addr, Options{})
	require.NoError(t, err)
	rec2, err := r.Resolve(context.Background(), addr, Options{})
	require.NoError(t, err)

	assert.Equal(t, rec1, rec2)
}

func TestResolvePublicMergeNeverOverwrites(t *testing.T) {
	first := publicGeoStub()
	second := &stubAdapter{
		name: "hud_fmr",
		tier: source.TierPublicEstimate,
		partial: &source.PartialRecord{
			Source:       "hud_fmr",
			Tier:         source.TierPublicEstimate,
			PropertyType: model.PropertyTypeCommercial, // must lose to the earlier adapter
			Market:       &model.MarketStats{AvgRentPerUnit: 1750},
		},
	}
	r := NewResolver(nil, []source.Adapter{first, second}, nil, source.NewHeuristicAdapter())

	rec, err := r.Resolve(context.Background(), addr, Options{})
	require.NoError(t, err)

	assert.Equal(t, model.PropertyTypeMultifamily, rec.PropertyType)
	require.NotNil(t, rec.Market)
	assert.InDelta(t, 1750, rec.Market.AvgRentPerUnit, 0.001)
	assert.Equal(t, []string{"openstreetmap", "hud_fmr"}, rec.Provenance.Sources)
}

func TestResolveContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewResolver(nil, nil, nil, source.NewHeuristicAdapter())
	_, err := r.Resolve(ctx, addr, Options{})
	require.Error(t, err)
}

func TestScoreNeighborhood(t *testing.T) {
	tests := []struct {
		name string
		n    model.Neighborhood
		want float64
	}{
		{"base", model.Neighborhood{}, 70},
		{"high income", model.Neighborhood{MedianIncome: 80000}, 80},
		{"everything strong", model.Neighborhood{
			MedianIncome:       80000,
			CollegeEducatedPct: 45,
			UnemploymentRate:   3.1,
			PopulationGrowth:   6,
		}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scoreNeighborhood(&tt.n), 0.001)
		})
	}
}
