// Package source defines the interface and implementations for property data
// adapters. Each adapter wraps one external source and normalizes its output
// into a PartialRecord tagged with a trust tier.
package source

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/proppulse/underwrite/internal/model"
)

// TrustTier classifies how much an adapter's output can be relied on.
type TrustTier int

const (
	// TierVerified is authoritative record data (county assessor feeds).
	TierVerified TrustTier = iota
	// TierPublicEstimate is free public statistics (census, rent surveys, OSM).
	TierPublicEstimate
	// TierAIEstimate is model-generated estimation from partial context.
	TierAIEstimate
	// TierHeuristic is deterministic rule-of-thumb fallback.
	TierHeuristic
)

// Confidence returns the resolution confidence assigned to records whose
// primary facts came from this tier.
func (t TrustTier) Confidence() int {
	switch t {
	case TierVerified:
		return 95
	case TierPublicEstimate:
		return 60
	case TierAIEstimate:
		return 75
	case TierHeuristic:
		return 25
	default:
		return 0
	}
}

// Estimated reports whether data from this tier must be flagged as estimated.
func (t TrustTier) Estimated() bool {
	return t != TierVerified
}

func (t TrustTier) String() string {
	switch t {
	case TierVerified:
		return "verified"
	case TierPublicEstimate:
		return "public_estimate"
	case TierAIEstimate:
		return "ai_estimate"
	case TierHeuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// PartialRecord is the normalized output of a single adapter. Nil pointers
// mean the source had nothing to say about that field, so merging never
// confuses absence with zero.
type PartialRecord struct {
	Source string
	Tier   TrustTier

	PropertyType   model.PropertyType
	Units          *int
	SquareFootage  *float64
	YearBuilt      *int
	EstimatedValue *float64
	LotSize        *float64
	Location       *model.Location
	Market         *model.MarketStats
	Neighborhood   *model.Neighborhood

	Notes string
}

// Empty reports whether the partial carries no usable facts.
func (p *PartialRecord) Empty() bool {
	if p == nil {
		return true
	}
	return p.PropertyType == "" &&
		p.Units == nil &&
		p.SquareFootage == nil &&
		p.YearBuilt == nil &&
		p.EstimatedValue == nil &&
		p.LotSize == nil &&
		p.Location == nil &&
		p.Market == nil &&
		p.Neighborhood == nil
}

// Adapter fetches property facts for an address from one external source.
// A source that has no record for the address returns (nil, nil); errors are
// reserved for transport or parse failures.
type Adapter interface {
	// Name returns the source identifier used in provenance trails.
	Name() string
	// Tier returns the trust tier of this adapter's output.
	Tier() TrustTier
	// Fetch looks up the address and returns whatever facts the source has.
	Fetch(ctx context.Context, address string) (*PartialRecord, error)
}

// Registry manages available adapters grouped by tier. Registration order is
// preserved so that downstream merges stay deterministic.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Adapter
	ordered []Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Adapter)}
}

// Register adds an adapter to the registry. Registering a name twice
// replaces the earlier adapter in place.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[a.Name()]; ok {
		for i, existing := range r.ordered {
			if existing.Name() == a.Name() {
				r.ordered[i] = a
				break
			}
		}
	} else {
		r.ordered = append(r.ordered, a)
	}
	r.byName[a.Name()] = a
}

// Get returns an adapter by name, or nil if not found.
func (r *Registry) Get(name string) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// ByTier returns all registered adapters of the given tier, in registration
// order.
func (r *Registry) ByTier(tier TrustTier) []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Adapter
	for _, a := range r.ordered {
		if a.Tier() == tier {
			out = append(out, a)
		}
	}
	return out
}

// limiter wraps x/time rate limiting shared by the HTTP-backed adapters.
// A nil limiter never blocks.
type limiter struct {
	rl *rate.Limiter
}

func newLimiter(perSec float64) *limiter {
	if perSec <= 0 {
		return &limiter{}
	}
	return &limiter{rl: rate.NewLimiter(rate.Limit(perSec), 1)}
}

func (l *limiter) wait(ctx context.Context) error {
	if l == nil || l.rl == nil {
		return nil
	}
	return l.rl.Wait(ctx)
}
