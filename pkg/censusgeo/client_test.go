package censusgeo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocode_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocoder/locations/onelineaddress", r.URL.Path)
		assert.Equal(t, "450 Oakwood Ave, Austin, TX 78701", r.URL.Query().Get("address"))
		assert.Equal(t, "Public_AR_Current", r.URL.Query().Get("benchmark"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
		  "result": {
		    "addressMatches": [{
		      "coordinates": {"x": -97.7431, "y": 30.2672},
		      "matchedAddress": "450 OAKWOOD AVE, AUSTIN, TX, 78701"
		    }]
		  }
		}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	match, err := client.Geocode(context.Background(), "450 Oakwood Ave, Austin, TX 78701")

	require.NoError(t, err)
	assert.True(t, match.Matched)
	assert.InDelta(t, 30.2672, match.Latitude, 0.0001)
	assert.InDelta(t, -97.7431, match.Longitude, 0.0001)
	assert.Equal(t, "450 OAKWOOD AVE, AUSTIN, TX, 78701", match.MatchedAddress)
}

func TestGeocode_NoMatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": {"addressMatches": []}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	match, err := client.Geocode(context.Background(), "1 Nowhere Rd")

	require.NoError(t, err)
	assert.False(t, match.Matched)
	assert.Zero(t, match.Latitude)
}

func TestGeocode_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Geocode(context.Background(), "450 Oakwood Ave")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestTractForCoordinates_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocoder/geographies/coordinates", r.URL.Path)
		assert.Equal(t, "Current_Current", r.URL.Query().Get("vintage"))
		assert.NotEmpty(t, r.URL.Query().Get("x"))
		assert.NotEmpty(t, r.URL.Query().Get("y"))

		w.Write([]byte(`{
		  "result": {
		    "geographies": {
		      "Census Tracts": [{"TRACT": "001100", "COUNTY": "Travis", "STATE": "Texas"}]
		    }
		  }
		}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	tract, err := client.TractForCoordinates(context.Background(), 30.2672, -97.7431)

	require.NoError(t, err)
	require.NotNil(t, tract)
	assert.Equal(t, "001100", tract.TractCode)
	assert.Equal(t, "Travis", tract.CountyName)
	assert.Equal(t, "Texas", tract.StateName)
}

func TestTractForCoordinates_NoTract(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": {"geographies": {"Census Tracts": []}}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	tract, err := client.TractForCoordinates(context.Background(), 0, 0)

	require.NoError(t, err)
	assert.Nil(t, tract)
}

func TestGeocode_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Geocode(context.Background(), "450 Oakwood Ave")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}
