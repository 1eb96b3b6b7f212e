package source

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/pkg/attom"
)

type fakeAttom struct {
	detail *attom.PropertyDetail
	err    error
	calls  int
}

func (f *fakeAttom) PropertyDetail(_ context.Context, _ string) (*attom.PropertyDetail, error) {
	f.calls++
	return f.detail, f.err
}

func TestAttomAdapterFetch(t *testing.T) {
	fake := &fakeAttom{detail: &attom.PropertyDetail{
		AttomID:       184713191,
		PropertyClass: "Apartment",
		YearBuilt:     1999,
		LivingSize:    20400,
		Units:         24,
		MarketValue:   4075000,
		Latitude:      30.2672,
		Longitude:     -97.7431,
		City:          "Austin",
		State:         "TX",
		ZipCode:       "78701",
	}}
	a := NewAttomAdapter(fake, 0, time.Second)

	p, err := a.Fetch(context.Background(), "450 Oakwood Ave, Austin, TX 78701")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, TierVerified, p.Tier)
	assert.Equal(t, "attom", p.Source)
	assert.Equal(t, model.PropertyTypeMultifamily, p.PropertyType)
	require.NotNil(t, p.Units)
	assert.Equal(t, 24, *p.Units)
	require.NotNil(t, p.EstimatedValue)
	assert.InDelta(t, 4075000, *p.EstimatedValue, 0.001)
	require.NotNil(t, p.Location)
	assert.Equal(t, "Austin", p.Location.City)
}

func TestAttomAdapterNoRecord(t *testing.T) {
	a := NewAttomAdapter(&fakeAttom{}, 0, time.Second)

	p, err := a.Fetch(context.Background(), "1 Nowhere Ln")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestAttomAdapterTransportError(t *testing.T) {
	a := NewAttomAdapter(&fakeAttom{err: eris.New("boom")}, 0, time.Second)

	_, err := a.Fetch(context.Background(), "1 Somewhere Ln")
	require.Error(t, err)
}

func TestAttomAdapterDoesNotRetry(t *testing.T) {
	// Provider failures fall through to the next tier on the first error,
	// even transient ones like a throttled upstream.
	fake := &fakeAttom{err: eris.New("attom: unexpected status 503")}
	a := NewAttomAdapter(fake, 0, time.Second)

	_, err := a.Fetch(context.Background(), "1 Somewhere Ln")
	require.Error(t, err)
	assert.Equal(t, 1, fake.calls)
}

func TestClassifyAttom(t *testing.T) {
	tests := []struct {
		class string
		ptype string
		want  model.PropertyType
	}{
		{"Apartment", "", model.PropertyTypeMultifamily},
		{"SFR", "", model.PropertyTypeSingleFamily},
		{"Commercial", "Office Building", model.PropertyTypeCommercial},
		{"Condominium", "condo", model.PropertyTypeCondominium},
		{"Agricultural", "", model.PropertyType("")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyAttom(tt.class, tt.ptype), tt.class)
	}
}
