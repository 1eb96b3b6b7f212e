package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/pkg/anthropic"
)

const enrichSystemPrompt = `You are a commercial real estate analyst. Given a property and its underwriting metrics, write 2-4 sentences of market insight for an investor. Plain prose, no headers, no bullet points, no recommendation verdicts. Do not restate the raw numbers.`

const enrichUserPrompt = `Property: %s (%s)
Metrics: %s
Recommendation (fixed, do not contradict): %s`

// Augmenter enriches deterministic narratives with one AI call under a
// strict wall-clock timeout. A nil client disables enrichment entirely.
type Augmenter struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// NewAugmenter builds an Augmenter. timeout bounds the whole enrichment
// call; on expiry the deterministic narrative stands unchanged.
func NewAugmenter(client anthropic.Client, aiModel string, timeout time.Duration) *Augmenter {
	return &Augmenter{client: client, model: aiModel, timeout: timeout}
}

// Augment builds the deterministic narrative and then attempts enrichment.
// Every failure mode keeps the deterministic result: this function cannot
// return an empty narrative and never returns an error.
func (a *Augmenter) Augment(ctx context.Context, rec *model.PropertyRecord, m model.DealMetrics, d model.Decision) model.Narrative {
	n := Build(m, d)
	if a == nil || a.client == nil {
		return n
	}

	insight, err := a.enrich(ctx, rec, m, n.Recommendation)
	if err != nil {
		zap.L().Warn("narrative enrichment failed, keeping deterministic result",
			zap.String("address", recAddress(rec)),
			zap.Error(err),
		)
		return n
	}
	if insight != "" {
		// Enrichment replaces the free-text insight only; the
		// recommendation enum is never AI-controlled.
		n.MarketInsights = insight
		n.Enriched = true
	}
	return n
}

func (a *Augmenter) enrich(ctx context.Context, rec *model.PropertyRecord, m model.DealMetrics, recommendation model.Recommendation) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	metricsJSON, _ := json.Marshal(m) //nolint:errcheck

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: 512,
		System:    enrichSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(enrichUserPrompt,
				recAddress(rec), recType(rec), metricsJSON, recommendation)},
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

func recAddress(rec *model.PropertyRecord) string {
	if rec == nil {
		return "unknown address"
	}
	return rec.Address
}

func recType(rec *model.PropertyRecord) string {
	if rec == nil {
		return string(model.PropertyTypeUnknown)
	}
	return string(rec.PropertyType)
}
