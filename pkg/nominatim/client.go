// Package nominatim provides a client for the OpenStreetMap Nominatim
// search API used for free-tier geocoding.
package nominatim

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Place is a single Nominatim search result.
type Place struct {
	PlaceID     int64   `json:"place_id"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
	Class       string  `json:"class,omitempty"`
	Type        string  `json:"type,omitempty"`
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	Postcode    string  `json:"postcode,omitempty"`
}

// Client searches Nominatim for an address.
type Client interface {
	Search(ctx context.Context, address string) (*Place, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithUserAgent sets the User-Agent header required by the Nominatim
// usage policy.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a Nominatim client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   defaultBaseURL,
		userAgent: "PropPulse/1.0 (real estate analysis)",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// searchResult mirrors the Nominatim JSON response entries.
type searchResult struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Class       string `json:"class"`
	Type        string `json:"type"`
	Address     struct {
		City     string `json:"city"`
		Town     string `json:"town"`
		State    string `json:"state"`
		Postcode string `json:"postcode"`
	} `json:"address"`
}

func (c *httpClient) Search(ctx context.Context, address string) (*Place, error) {
	params := url.Values{
		"q":              {address},
		"format":         {"json"},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}

	reqURL := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("nominatim: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: read body")
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, eris.Wrap(err, "nominatim: parse response")
	}
	if len(results) == 0 {
		return nil, nil
	}

	r := results[0]
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: parse lat")
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: parse lon")
	}

	city := r.Address.City
	if city == "" {
		city = r.Address.Town
	}

	return &Place{
		PlaceID:     r.PlaceID,
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: r.DisplayName,
		Class:       r.Class,
		Type:        r.Type,
		City:        city,
		State:       r.Address.State,
		Postcode:    r.Address.Postcode,
	}, nil
}
