package attom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailJSON = `{
  "status": {"code": 0, "msg": "SuccessWithResult"},
  "property": [{
    "identifier": {"attomId": 184713191},
    "address": {
      "oneLine": "450 OAKWOOD AVE, AUSTIN, TX 78701",
      "locality": "Austin",
      "countrySubd": "TX",
      "postal1": "78701"
    },
    "location": {"latitude": "30.2672", "longitude": "-97.7431"},
    "summary": {"propclass": "Apartment", "proptype": "APARTMENT", "yearbuilt": 1998},
    "building": {
      "size": {"livingsize": 21500},
      "summary": {"unitsCount": "24"}
    },
    "lot": {"lotsize2": 32000},
    "assessment": {"market": {"mktttlvalue": 4075000}}
  }]
}`

func TestPropertyDetail_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/propertyapi/v1.0.0/property/detail", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "450 Oakwood Ave, Austin, TX 78701", r.URL.Query().Get("address1"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(detailJSON))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	detail, err := client.PropertyDetail(context.Background(), "450 Oakwood Ave, Austin, TX 78701")

	require.NoError(t, err)
	assert.Equal(t, int64(184713191), detail.AttomID)
	assert.Equal(t, "450 OAKWOOD AVE, AUSTIN, TX 78701", detail.MatchedAddress)
	assert.Equal(t, "Apartment", detail.PropertyClass)
	assert.Equal(t, 1998, detail.YearBuilt)
	assert.Equal(t, 24, detail.Units)
	assert.InDelta(t, 21500.0, detail.LivingSize, 0.001)
	assert.InDelta(t, 4075000.0, detail.MarketValue, 0.001)
	assert.InDelta(t, 30.2672, detail.Latitude, 0.0001)
	assert.InDelta(t, -97.7431, detail.Longitude, 0.0001)
	assert.Equal(t, "Austin", detail.City)
	assert.Equal(t, "TX", detail.State)
	assert.Equal(t, "78701", detail.ZipCode)
}

func TestPropertyDetail_NoRecord(t *testing.T) {
	t.Parallel()

	// ATTOM answers 400 SuccessWithoutResult for unknown addresses.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":{"code":1,"msg":"SuccessWithoutResult"},"property":[]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	detail, err := client.PropertyDetail(context.Background(), "1 Nowhere Rd")

	require.NoError(t, err)
	assert.Zero(t, detail.AttomID)
}

func TestPropertyDetail_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.PropertyDetail(context.Background(), "450 Oakwood Ave")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestPropertyDetail_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.PropertyDetail(context.Background(), "450 Oakwood Ave")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestPropertyDetail_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.PropertyDetail(ctx, "450 Oakwood Ave")

	require.Error(t, err)
}
