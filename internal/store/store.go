// Package store persists analysis results. Results are opaque records keyed
// by id; listing is limited to lightweight summary columns.
package store

import (
	"context"
	"time"

	"github.com/proppulse/underwrite/internal/model"
)

// ListFilter narrows ListAnalyses output.
type ListFilter struct {
	Status model.DealStatus `json:"status,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

// AnalysisSummary is the listing row: enough to render a table without
// unmarshaling every stored result.
type AnalysisSummary struct {
	ID        string           `json:"id"`
	Address   string           `json:"address"`
	Status    model.DealStatus `json:"status"`
	Score     float64          `json:"score"`
	CreatedAt time.Time        `json:"created_at"`
}

// Store defines the persistence interface for analysis results.
type Store interface {
	SaveAnalysis(ctx context.Context, result *model.AnalysisResult) error
	GetAnalysis(ctx context.Context, id string) (*model.AnalysisResult, error)
	ListAnalyses(ctx context.Context, filter ListFilter) ([]AnalysisSummary, error)

	Migrate(ctx context.Context) error
	Close() error
}
