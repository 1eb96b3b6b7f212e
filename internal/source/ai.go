package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/pkg/anthropic"
)

const estimateSystemPrompt = `You are a commercial real estate analyst. Given a US property address, estimate the property's key attributes from the address alone: street type, city, and locale conventions. Respond with a single valid JSON object and nothing else:
{"property_type": "Single Family"|"Multifamily"|"Commercial"|"Condominium", "units": <int>, "square_footage": <number>, "year_built": <int>, "estimated_value": <number>, "avg_rent_per_unit": <number>, "cap_rate_estimate": <number>, "median_income": <number>, "college_educated_pct": <number>, "unemployment_rate": <number>, "population_growth_5yr": <number>}
Omit any key you cannot estimate. Never invent precision you do not have.`

const estimateUserPrompt = `Address: %s

Known facts so far (JSON, may be empty):
%s`

// aiEstimate mirrors the JSON contract in estimateSystemPrompt.
type aiEstimate struct {
	PropertyType        string   `json:"property_type"`
	Units               *int     `json:"units"`
	SquareFootage       *float64 `json:"square_footage"`
	YearBuilt           *int     `json:"year_built"`
	EstimatedValue      *float64 `json:"estimated_value"`
	AvgRentPerUnit      *float64 `json:"avg_rent_per_unit"`
	CapRateEstimate     *float64 `json:"cap_rate_estimate"`
	MedianIncome        *float64 `json:"median_income"`
	CollegeEducatedPct  *float64 `json:"college_educated_pct"`
	UnemploymentRate    *float64 `json:"unemployment_rate"`
	PopulationGrowth5yr *float64 `json:"population_growth_5yr"`
}

// AIAdapter produces model-generated property estimates when verified and
// public sources come up short.
type AIAdapter struct {
	client  anthropic.Client
	model   string
	timeout time.Duration

	// Context carries facts already resolved by higher tiers so the model
	// estimates only the gaps. Set by the resolver before Fetch.
	Context *model.PropertyRecord
}

// NewAIAdapter creates an AI-estimate-tier adapter.
func NewAIAdapter(client anthropic.Client, aiModel string, timeout time.Duration) *AIAdapter {
	return &AIAdapter{client: client, model: aiModel, timeout: timeout}
}

func (a *AIAdapter) Name() string    { return "ai_estimate" }
func (a *AIAdapter) Tier() TrustTier { return TierAIEstimate }

// WithContext returns a copy of the adapter seeded with already-resolved
// facts for the prompt.
func (a *AIAdapter) WithContext(known *model.PropertyRecord) *AIAdapter {
	cp := *a
	cp.Context = known
	return &cp
}

func (a *AIAdapter) Fetch(ctx context.Context, address string) (*PartialRecord, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	known := "{}"
	if a.Context != nil {
		if b, err := json.Marshal(a.Context); err == nil {
			known = string(b)
		}
	}

	temp := 0.2
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   1024,
		System:      estimateSystemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(estimateUserPrompt, address, known)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "ai estimate: create message")
	}

	var est aiEstimate
	cleaned := cleanJSON(resp.Text())
	if err := json.Unmarshal([]byte(cleaned), &est); err != nil {
		zap.L().Warn("ai estimate returned unparseable JSON",
			zap.String("address", address),
			zap.Error(err),
		)
		return nil, nil
	}

	partial := &PartialRecord{
		Source:         a.Name(),
		Tier:           TierAIEstimate,
		PropertyType:   normalizePropertyType(est.PropertyType),
		Units:          est.Units,
		SquareFootage:  est.SquareFootage,
		YearBuilt:      est.YearBuilt,
		EstimatedValue: est.EstimatedValue,
	}
	if est.AvgRentPerUnit != nil || est.CapRateEstimate != nil {
		partial.Market = &model.MarketStats{}
		if est.AvgRentPerUnit != nil {
			partial.Market.AvgRentPerUnit = *est.AvgRentPerUnit
		}
		if est.CapRateEstimate != nil {
			partial.Market.CapRateEstimate = *est.CapRateEstimate
		}
	}
	if est.MedianIncome != nil || est.CollegeEducatedPct != nil ||
		est.UnemploymentRate != nil || est.PopulationGrowth5yr != nil {
		n := &model.Neighborhood{}
		if est.MedianIncome != nil {
			n.MedianIncome = *est.MedianIncome
		}
		if est.CollegeEducatedPct != nil {
			n.CollegeEducatedPct = *est.CollegeEducatedPct
		}
		if est.UnemploymentRate != nil {
			n.UnemploymentRate = *est.UnemploymentRate
		}
		if est.PopulationGrowth5yr != nil {
			n.PopulationGrowth = *est.PopulationGrowth5yr
		}
		partial.Neighborhood = n
	}
	if partial.Empty() {
		return nil, nil
	}
	return partial, nil
}

// normalizePropertyType maps free-form model output onto our vocabulary.
func normalizePropertyType(s string) model.PropertyType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single family", "single-family", "sfr", "house":
		return model.PropertyTypeSingleFamily
	case "multifamily", "multi-family", "apartment", "apartments", "duplex":
		return model.PropertyTypeMultifamily
	case "commercial", "office", "retail", "industrial":
		return model.PropertyTypeCommercial
	case "condominium", "condo":
		return model.PropertyTypeCondominium
	default:
		return ""
	}
}

// cleanJSON strips markdown code fences and surrounding prose so model
// output parses as a bare JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
