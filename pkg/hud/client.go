// Package hud provides a client for the HUD Fair Market Rents API, the
// rent-benchmark source for market estimates.
package hud

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://www.huduser.gov/hudapi/public"

// FairMarketRents holds HUD fair market rents by bedroom count for one
// metro area, in dollars per month.
type FairMarketRents struct {
	MetroName    string  `json:"metro_name"`
	Year         int     `json:"year"`
	Efficiency   float64 `json:"efficiency"`
	OneBedroom   float64 `json:"one_bedroom"`
	TwoBedroom   float64 `json:"two_bedroom"`
	ThreeBedroom float64 `json:"three_bedroom"`
	FourBedroom  float64 `json:"four_bedroom"`
}

// Client fetches fair market rents by state.
type Client interface {
	// FairMarketRentsForCity returns FMR data for the metro area matching
	// the given city within a state, or nil if no metro matches.
	FairMarketRentsForCity(ctx context.Context, state, city string) (*FairMarketRents, error)
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

// NewClient creates a HUD FMR client.
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

// fmrResponse mirrors the HUD state FMR response.
type fmrResponse struct {
	Data struct {
		FMRs []struct {
			MetroName    string  `json:"metro_name"`
			Year         int     `json:"year"`
			Efficiency   float64 `json:"Efficiency"`
			OneBedroom   float64 `json:"One-Bedroom"`
			TwoBedroom   float64 `json:"Two-Bedroom"`
			ThreeBedroom float64 `json:"Three-Bedroom"`
			FourBedroom  float64 `json:"Four-Bedroom"`
		} `json:"fmrs"`
	} `json:"data"`
}

func (c *httpClient) FairMarketRentsForCity(ctx context.Context, state, city string) (*FairMarketRents, error) {
	reqURL := c.baseURL + "/fmr/data/" + strings.ToUpper(strings.TrimSpace(state))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "hud: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "hud: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("hud: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hud: read body")
	}

	var fr fmrResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, eris.Wrap(err, "hud: parse response")
	}

	cityLower := strings.ToLower(strings.TrimSpace(city))
	for _, item := range fr.Data.FMRs {
		if cityLower != "" && strings.Contains(strings.ToLower(item.MetroName), cityLower) {
			return &FairMarketRents{
				MetroName:    item.MetroName,
				Year:         item.Year,
				Efficiency:   item.Efficiency,
				OneBedroom:   item.OneBedroom,
				TwoBedroom:   item.TwoBedroom,
				ThreeBedroom: item.ThreeBedroom,
				FourBedroom:  item.FourBedroom,
			}, nil
		}
	}

	return nil, nil
}
