// Package fusion merges adapter outputs into a single property record with
// explicit provenance. The resolver walks the trust tiers in order and stops
// at the first tier that yields a usable record.
package fusion

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/internal/source"
)

// Options controls a single resolution run.
type Options struct {
	// ForceEstimation guarantees a classified record: when the heuristic
	// finds no keyword it defaults to single family instead of giving up.
	ForceEstimation bool
}

// Resolver applies the tiered cascade over the configured adapters.
type Resolver struct {
	verified  source.Adapter
	public    []source.Adapter
	ai        *source.AIAdapter
	heuristic *source.HeuristicAdapter
}

// NewResolver builds a resolver. verified and ai may be nil when the
// corresponding provider is not configured; heuristic must not be nil since
// it is the cascade's floor.
func NewResolver(verified source.Adapter, public []source.Adapter, ai *source.AIAdapter, heuristic *source.HeuristicAdapter) *Resolver {
	return &Resolver{
		verified:  verified,
		public:    public,
		ai:        ai,
		heuristic: heuristic,
	}
}

// Resolve runs the cascade for one address. It never fails on provider
// errors; those collapse to "unavailable" and the cascade moves on. The only
// returned error is context cancellation.
func (r *Resolver) Resolve(ctx context.Context, address string, opts Options) (*model.PropertyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Tier 1: verified records are accepted as-is.
	if r.verified != nil {
		if p := r.fetch(ctx, r.verified, address); p != nil {
			rec := buildRecord(address, p)
			stamp(rec, source.TierVerified, []string{p.Source})
			return rec, nil
		}
	}

	// Tier 2: free public sources, fanned out concurrently. Each adapter
	// contributes only the fields it owns; merge order is fixed by adapter
	// registration order, never by completion order.
	merged, contributors := r.fetchPublic(ctx, address)

	if usablePublic(merged) {
		rec := buildRecord(address, merged)
		stamp(rec, source.TierPublicEstimate, contributors)
		return rec, nil
	}

	// Tier 3: AI estimation, seeded with whatever the public tier found.
	if r.ai != nil {
		known := buildRecord(address, merged)
		if p := r.fetch(ctx, r.ai.WithContext(known), address); p != nil {
			fillFrom(merged, p)
			rec := buildRecord(address, merged)
			stamp(rec, source.TierAIEstimate, append(contributors, p.Source))
			return rec, nil
		}
	}

	// Tier 4: deterministic heuristics.
	var hp *source.PartialRecord
	if opts.ForceEstimation {
		hp = r.heuristic.Forced(address)
	} else {
		hp, _ = r.heuristic.Fetch(ctx, address)
	}
	if hp != nil {
		fillFrom(merged, hp)
		rec := buildRecord(address, merged)
		stamp(rec, source.TierHeuristic, append(contributors, hp.Source))
		return rec, nil
	}

	// Nothing classified the property. Return a record the caller must
	// render as "no data", never as zeros.
	zap.L().Info("resolution produced no usable record", zap.String("address", address))
	return &model.PropertyRecord{
		Address:      address,
		PropertyType: model.PropertyTypeUnknown,
		Provenance: model.Provenance{
			Confidence: 0,
			Sources:    []string{},
			Notes:      "no source could classify this address",
		},
	}, nil
}

// fetch runs one adapter, collapsing failures to unavailable.
func (r *Resolver) fetch(ctx context.Context, a source.Adapter, address string) *source.PartialRecord {
	p, err := a.Fetch(ctx, address)
	if err != nil {
		zap.L().Warn("source unavailable",
			zap.String("source", a.Name()),
			zap.String("address", address),
			zap.Error(err),
		)
		return nil
	}
	if p.Empty() {
		return nil
	}
	return p
}

// fetchPublic fans out over the public adapters and merges their fields in
// registration order, first writer wins. Returns the merged partial and the
// names of adapters that contributed at least one field.
func (r *Resolver) fetchPublic(ctx context.Context, address string) (*source.PartialRecord, []string) {
	results := make([]*source.PartialRecord, len(r.public))

	g, gCtx := errgroup.WithContext(ctx)
	for i, a := range r.public {
		g.Go(func() error {
			results[i] = r.fetch(gCtx, a, address)
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	merged := &source.PartialRecord{Tier: source.TierPublicEstimate}
	var contributors []string
	for _, p := range results {
		if p == nil {
			continue
		}
		if fillFrom(merged, p) {
			contributors = append(contributors, p.Source)
		}
	}
	return merged, contributors
}

// usablePublic reports whether the merged public record clears the
// acceptance bar for its tier: a recognized type and a real geocode.
func usablePublic(p *source.PartialRecord) bool {
	return p.PropertyType.Recognized() &&
		p.Location != nil &&
		(p.Location.Latitude != 0 || p.Location.Longitude != 0)
}

// fillFrom copies fields from src into dst where dst has none, and reports
// whether src contributed anything. Existing fields are never overwritten.
func fillFrom(dst, src *source.PartialRecord) bool {
	contributed := false
	if dst.PropertyType == "" && src.PropertyType != "" {
		dst.PropertyType = src.PropertyType
		contributed = true
	}
	if dst.Units == nil && src.Units != nil {
		dst.Units = src.Units
		contributed = true
	}
	if dst.SquareFootage == nil && src.SquareFootage != nil {
		dst.SquareFootage = src.SquareFootage
		contributed = true
	}
	if dst.YearBuilt == nil && src.YearBuilt != nil {
		dst.YearBuilt = src.YearBuilt
		contributed = true
	}
	if dst.EstimatedValue == nil && src.EstimatedValue != nil {
		dst.EstimatedValue = src.EstimatedValue
		contributed = true
	}
	if dst.LotSize == nil && src.LotSize != nil {
		dst.LotSize = src.LotSize
		contributed = true
	}
	if src.Location != nil {
		if dst.Location == nil {
			dst.Location = src.Location
			contributed = true
		} else if (dst.Location.Latitude == 0 && dst.Location.Longitude == 0) &&
			(src.Location.Latitude != 0 || src.Location.Longitude != 0) {
			// Keep parsed city/state but adopt real coordinates.
			dst.Location.Latitude = src.Location.Latitude
			dst.Location.Longitude = src.Location.Longitude
			contributed = true
		} else if dst.Location.City == "" && src.Location.City != "" {
			dst.Location.City = src.Location.City
			dst.Location.State = src.Location.State
			contributed = true
		}
	}
	if dst.Market == nil && src.Market != nil {
		dst.Market = src.Market
		contributed = true
	}
	if dst.Neighborhood == nil && src.Neighborhood != nil {
		dst.Neighborhood = src.Neighborhood
		contributed = true
	}
	if dst.Notes == "" && src.Notes != "" {
		dst.Notes = src.Notes
	}
	return contributed
}

// buildRecord converts a merged partial into a property record. Provenance
// is stamped separately.
func buildRecord(address string, p *source.PartialRecord) *model.PropertyRecord {
	rec := &model.PropertyRecord{Address: address}
	if p == nil {
		rec.PropertyType = model.PropertyTypeUnknown
		return rec
	}
	rec.PropertyType = p.PropertyType
	if rec.PropertyType == "" {
		rec.PropertyType = model.PropertyTypeUnknown
	}
	if p.Units != nil {
		rec.Units = *p.Units
	}
	rec.SquareFootage = p.SquareFootage
	rec.YearBuilt = p.YearBuilt
	rec.EstimatedValue = p.EstimatedValue
	rec.LotSize = p.LotSize
	rec.Location = p.Location
	rec.Market = p.Market
	rec.Neighborhood = p.Neighborhood
	rec.Provenance.Notes = p.Notes

	if rec.Neighborhood != nil && rec.Neighborhood.Score == 0 {
		rec.Neighborhood.Score = scoreNeighborhood(rec.Neighborhood)
	}
	return rec
}

// stamp writes tier-derived provenance onto the record.
func stamp(rec *model.PropertyRecord, tier source.TrustTier, sources []string) {
	if sources == nil {
		sources = []string{}
	}
	rec.Provenance.Confidence = tier.Confidence()
	rec.Provenance.IsEstimated = tier.Estimated()
	rec.Provenance.Sources = sources
}

// scoreNeighborhood rates an area 0-100 from its demographics. The base is
// 70; strong income, education, employment, and growth each add a bump.
func scoreNeighborhood(n *model.Neighborhood) float64 {
	score := 70.0
	if n.MedianIncome > 60000 {
		score += 10
	}
	if n.CollegeEducatedPct > 40 {
		score += 10
	}
	if n.UnemploymentRate > 0 && n.UnemploymentRate < 4 {
		score += 5
	}
	if n.PopulationGrowth > 5 {
		score += 5
	}
	return score
}
