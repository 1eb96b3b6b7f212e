package source

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/proppulse/underwrite/internal/model"
)

// Square footage per unit assumed when the sources produced nothing better.
const (
	sqftPerUnitMultifamily  = 850.0
	sqftPerUnitCommercial   = 5000.0
	sqftPerUnitCondominium  = 1200.0
	sqftPerUnitSingleFamily = 2000.0
)

// Price per square foot by metro tier. Tiers are strictly ordered so a
// prime-metro estimate never undercuts a general-metro one.
const (
	pricePerSqftPrime     = 650.0
	pricePerSqftMajor     = 550.0
	pricePerSqftSecondary = 450.0
	pricePerSqftDefault   = 350.0
)

// Monthly rent per square foot by metro tier, in cents.
const (
	rentCentsPerSqftPrime   = 250
	rentCentsPerSqftMajor   = 200
	rentCentsPerSqftDefault = 150
)

// Cap rate bands by metro tier, in percent.
const (
	capRatePrime   = 4.5
	capRateMajor   = 5.2
	capRateDefault = 6.5
)

var primeMetros = map[string]bool{
	"new york":      true,
	"san francisco": true,
	"seattle":       true,
	"boston":        true,
	"los angeles":   true,
	"san jose":      true,
	"washington":    true,
}

var majorMetros = map[string]bool{
	"austin":    true,
	"denver":    true,
	"atlanta":   true,
	"dallas":    true,
	"phoenix":   true,
	"chicago":   true,
	"miami":     true,
	"nashville": true,
	"charlotte": true,
	"portland":  true,
	"san diego": true,
}

var secondaryMetros = map[string]bool{
	"fort worth":     true,
	"columbus":       true,
	"indianapolis":   true,
	"kansas city":    true,
	"tampa":          true,
	"raleigh":        true,
	"salt lake city": true,
	"sacramento":     true,
}

// HeuristicAdapter is the deterministic fallback when every networked source
// has failed or come back empty. It never returns an error and never returns
// nil: there is always a rule-of-thumb answer.
type HeuristicAdapter struct {
	titler cases.Caser
}

// NewHeuristicAdapter creates the fallback adapter.
func NewHeuristicAdapter() *HeuristicAdapter {
	return &HeuristicAdapter{titler: cases.Title(language.AmericanEnglish)}
}

func (a *HeuristicAdapter) Name() string    { return "heuristic" }
func (a *HeuristicAdapter) Tier() TrustTier { return TierHeuristic }

// Fetch estimates property facts from the address text alone. When no
// classification keyword matches it returns (nil, nil); use Forced to get a
// single-family default instead.
func (a *HeuristicAdapter) Fetch(_ context.Context, address string) (*PartialRecord, error) {
	return a.estimate(address, false), nil
}

// Forced behaves like Fetch but classifies unmatched addresses as single
// family rather than giving up.
func (a *HeuristicAdapter) Forced(address string) *PartialRecord {
	return a.estimate(address, true)
}

func (a *HeuristicAdapter) estimate(address string, force bool) *PartialRecord {
	lower := strings.ToLower(address)

	ptype := classifyByKeywords(lower)
	if ptype == "" {
		if !force {
			return nil
		}
		ptype = model.PropertyTypeSingleFamily
	}
	units := estimateUnits(ptype, lower)
	sqft := float64(units) * sqftPerUnit(ptype)
	year := estimateYearBuilt(lower)

	city, state := ParseCityState(address)
	city = a.titler.String(strings.ToLower(city))
	tierKey := strings.ToLower(city)

	value := sqft * pricePerSqft(tierKey)
	rentPerUnit := sqftPerUnit(ptype) * float64(rentCentsPerSqft(tierKey)) / 100.0

	partial := &PartialRecord{
		Source:         a.Name(),
		Tier:           TierHeuristic,
		PropertyType:   ptype,
		Units:          model.IntPtr(units),
		SquareFootage:  model.Float64Ptr(sqft),
		YearBuilt:      model.IntPtr(year),
		EstimatedValue: model.Float64Ptr(value),
		Market: &model.MarketStats{
			AvgRentPerUnit:   rentPerUnit,
			CapRateEstimate:  capRateBand(tierKey),
			PricePerSqft:     pricePerSqft(tierKey),
			AnnualRentIncome: rentPerUnit * float64(units) * 12,
		},
		Notes: "rule-of-thumb estimate",
	}
	if city != "" || state != "" {
		partial.Location = &model.Location{City: city, State: state}
	}
	return partial
}

var singleFamilyKeywords = []string{
	"house", "home", " st", " street", " ave", " avenue", " ln", " lane",
	" dr", " drive", " rd", " road", " ct", " court", " way", " pl", " ter",
}

// classifyByKeywords guesses the property type from address text. Returns
// the empty string when nothing matches.
func classifyByKeywords(lower string) model.PropertyType {
	switch {
	case strings.Contains(lower, "apartment"), strings.Contains(lower, "apt"),
		strings.Contains(lower, "units"), strings.Contains(lower, "complex"):
		return model.PropertyTypeMultifamily
	case strings.Contains(lower, "plaza"), strings.Contains(lower, "suite"),
		strings.Contains(lower, "ste "), strings.Contains(lower, "center"),
		strings.Contains(lower, "blvd"):
		return model.PropertyTypeCommercial
	case strings.Contains(lower, "condo"), strings.Contains(lower, "tower"):
		return model.PropertyTypeCondominium
	}
	for _, kw := range singleFamilyKeywords {
		if strings.Contains(lower, kw) {
			return model.PropertyTypeSingleFamily
		}
	}
	return ""
}

// defaultUnitCount is assumed for multifamily and commercial addresses that
// carry no unit marker.
const defaultUnitCount = 48

var unitMarkerRe = regexp.MustCompile(`(?:unit|apt|#)\s*(\d+)`)

// estimateUnits derives a unit count for non-single-family properties from
// an embedded unit number ("Unit 12", "Apt 4", "#90"), clamped into a
// plausible band. Addresses without a marker get the default count.
func estimateUnits(ptype model.PropertyType, lower string) int {
	switch ptype {
	case model.PropertyTypeSingleFamily, model.PropertyTypeCondominium:
		return 1
	}
	m := unitMarkerRe.FindStringSubmatch(lower)
	if m == nil {
		return defaultUnitCount
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultUnitCount
	}
	units := n + 10
	if units < 20 {
		units = 20
	}
	if units > 120 {
		units = 120
	}
	return units
}

func estimateYearBuilt(lower string) int {
	switch {
	case strings.Contains(lower, "new"):
		return 2015
	case strings.Contains(lower, "historic"), strings.Contains(lower, "old"):
		return 1960
	default:
		return 1985
	}
}

func sqftPerUnit(ptype model.PropertyType) float64 {
	switch ptype {
	case model.PropertyTypeMultifamily:
		return sqftPerUnitMultifamily
	case model.PropertyTypeCommercial:
		return sqftPerUnitCommercial
	case model.PropertyTypeCondominium:
		return sqftPerUnitCondominium
	default:
		return sqftPerUnitSingleFamily
	}
}

func pricePerSqft(city string) float64 {
	switch {
	case primeMetros[city]:
		return pricePerSqftPrime
	case majorMetros[city]:
		return pricePerSqftMajor
	case secondaryMetros[city]:
		return pricePerSqftSecondary
	default:
		return pricePerSqftDefault
	}
}

func rentCentsPerSqft(city string) int {
	switch {
	case primeMetros[city]:
		return rentCentsPerSqftPrime
	case majorMetros[city], secondaryMetros[city]:
		return rentCentsPerSqftMajor
	default:
		return rentCentsPerSqftDefault
	}
}

func capRateBand(city string) float64 {
	switch {
	case primeMetros[city]:
		return capRatePrime
	case majorMetros[city], secondaryMetros[city]:
		return capRateMajor
	default:
		return capRateDefault
	}
}
