// Package censusgeo provides a client for the US Census geocoding API
// (one-line address match plus census tract lookup for demographics).
package censusgeo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://geocoding.geo.census.gov"
	benchmark      = "Public_AR_Current"
	vintage        = "Current_Current"
)

// Match is a geocoded address match.
type Match struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	MatchedAddress string  `json:"matched_address"`
	Matched        bool    `json:"matched"`
}

// Tract identifies the census tract containing a coordinate.
type Tract struct {
	TractCode  string `json:"tract_code"`
	CountyName string `json:"county_name"`
	StateName  string `json:"state_name"`
}

// Client geocodes addresses and resolves census tracts.
type Client interface {
	Geocode(ctx context.Context, address string) (*Match, error)
	TractForCoordinates(ctx context.Context, lat, lon float64) (*Tract, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Census geocoder client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// oneLineResponse is the JSON response from the one-line address API.
type oneLineResponse struct {
	Result struct {
		AddressMatches []struct {
			Coordinates struct {
				X float64 `json:"x"` // longitude
				Y float64 `json:"y"` // latitude
			} `json:"coordinates"`
			MatchedAddress string `json:"matchedAddress"`
		} `json:"addressMatches"`
	} `json:"result"`
}

func (c *httpClient) Geocode(ctx context.Context, address string) (*Match, error) {
	params := url.Values{
		"address":   {address},
		"benchmark": {benchmark},
		"format":    {"json"},
	}

	reqURL := c.baseURL + "/geocoder/locations/onelineaddress?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "censusgeo: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "censusgeo: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("censusgeo: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "censusgeo: read body")
	}

	var olr oneLineResponse
	if err := json.Unmarshal(body, &olr); err != nil {
		return nil, eris.Wrap(err, "censusgeo: parse response")
	}

	if len(olr.Result.AddressMatches) == 0 {
		return &Match{Matched: false}, nil
	}

	m := olr.Result.AddressMatches[0]
	return &Match{
		Latitude:       m.Coordinates.Y,
		Longitude:      m.Coordinates.X,
		MatchedAddress: m.MatchedAddress,
		Matched:        true,
	}, nil
}

// tractResponse is the JSON response from the coordinates geography API.
type tractResponse struct {
	Result struct {
		Geographies struct {
			CensusTracts []struct {
				Tract  string `json:"TRACT"`
				County string `json:"COUNTY"`
				State  string `json:"STATE"`
			} `json:"Census Tracts"`
		} `json:"geographies"`
	} `json:"result"`
}

func (c *httpClient) TractForCoordinates(ctx context.Context, lat, lon float64) (*Tract, error) {
	params := url.Values{
		"x":         {fmt.Sprintf("%f", lon)},
		"y":         {fmt.Sprintf("%f", lat)},
		"benchmark": {benchmark},
		"vintage":   {vintage},
		"format":    {"json"},
	}

	reqURL := c.baseURL + "/geocoder/geographies/coordinates?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "censusgeo: build tract request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "censusgeo: tract request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("censusgeo: tract unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "censusgeo: tract read body")
	}

	var tr tractResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, eris.Wrap(err, "censusgeo: tract parse response")
	}

	tracts := tr.Result.Geographies.CensusTracts
	if len(tracts) == 0 {
		return nil, nil
	}

	return &Tract{
		TractCode:  tracts[0].Tract,
		CountyName: tracts[0].County,
		StateName:  tracts[0].State,
	}, nil
}
