// Package attom provides a client for the ATTOM Data property API, the
// verified public-records source for property details.
package attom

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

const (
	defaultBaseURL = "https://api.gateway.attomdata.com"
	detailPath     = "/propertyapi/v1.0.0/property/detail"
)

// PropertyDetail is a normalized subset of the ATTOM property detail
// response. AttomID is the authoritative record identifier; a zero value
// means ATTOM had no verified record for the address.
type PropertyDetail struct {
	AttomID        int64   `json:"attom_id"`
	MatchedAddress string  `json:"matched_address"`
	PropertyClass  string  `json:"property_class"`
	PropertyType   string  `json:"property_type"`
	YearBuilt      int     `json:"year_built"`
	LivingSize     float64 `json:"living_size"`
	LotSize        float64 `json:"lot_size"`
	Units          int     `json:"units"`
	MarketValue    float64 `json:"market_value"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	ZipCode        string  `json:"zip_code"`
}

// Client fetches verified property records from ATTOM.
type Client interface {
	PropertyDetail(ctx context.Context, address string) (*PropertyDetail, error)
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
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an ATTOM API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
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

// detailResponse mirrors the portions of the ATTOM response we consume.
type detailResponse struct {
	Status struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"status"`
	Property []struct {
		Identifier struct {
			AttomID int64 `json:"attomId"`
		} `json:"identifier"`
		Address struct {
			OneLine  string `json:"oneLine"`
			Locality string `json:"locality"`
			State    string `json:"countrySubd"`
			Postal   string `json:"postal1"`
		} `json:"address"`
		Location struct {
			Latitude  string `json:"latitude"`
			Longitude string `json:"longitude"`
		} `json:"location"`
		Summary struct {
			PropClass string `json:"propclass"`
			PropType  string `json:"proptype"`
			YearBuilt int    `json:"yearbuilt"`
		} `json:"summary"`
		Building struct {
			Size struct {
				LivingSize float64 `json:"livingsize"`
			} `json:"size"`
			Summary struct {
				UnitsCount string `json:"unitsCount"`
			} `json:"summary"`
		} `json:"building"`
		Lot struct {
			LotSize float64 `json:"lotsize2"`
		} `json:"lot"`
		Assessment struct {
			Market struct {
				MktTtlValue float64 `json:"mktttlvalue"`
			} `json:"market"`
		} `json:"assessment"`
	} `json:"property"`
}

func (c *httpClient) PropertyDetail(ctx context.Context, address string) (*PropertyDetail, error) {
	params := url.Values{
		"address1": {address},
		"format":   {"json"},
	}

	reqURL := c.baseURL + detailPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "attom: build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "attom: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "attom: read body")
	}

	// ATTOM returns 400 with a SuccessWithoutResult status for unknown
	// addresses; treat that as no record rather than an error.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return nil, eris.Errorf("attom: unexpected status %d", resp.StatusCode)
	}

	var dr detailResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, eris.Wrap(err, "attom: parse response")
	}

	if len(dr.Property) == 0 {
		return &PropertyDetail{}, nil
	}

	p := dr.Property[0]
	detail := &PropertyDetail{
		AttomID:        p.Identifier.AttomID,
		MatchedAddress: p.Address.OneLine,
		PropertyClass:  p.Summary.PropClass,
		PropertyType:   p.Summary.PropType,
		YearBuilt:      p.Summary.YearBuilt,
		LivingSize:     p.Building.Size.LivingSize,
		LotSize:        p.Lot.LotSize,
		MarketValue:    p.Assessment.Market.MktTtlValue,
		City:           p.Address.Locality,
		State:          p.Address.State,
		ZipCode:        p.Address.Postal,
	}

	if n, err := strconv.Atoi(p.Building.Summary.UnitsCount); err == nil {
		detail.Units = n
	}
	if lat, err := strconv.ParseFloat(p.Location.Latitude, 64); err == nil {
		detail.Latitude = lat
	}
	if lon, err := strconv.ParseFloat(p.Location.Longitude, 64); err == nil {
		detail.Longitude = lon
	}

	return detail, nil
}
