package model

// PropertyType classifies a property for underwriting purposes.
type PropertyType string

const (
	PropertyTypeSingleFamily PropertyType = "Single Family"
	PropertyTypeMultifamily  PropertyType = "Multifamily"
	PropertyTypeCommercial   PropertyType = "Commercial"
	PropertyTypeCondominium  PropertyType = "Condominium"
	PropertyTypeUnknown      PropertyType = "Unknown"
)

// Recognized returns true if the type is a concrete classification.
func (t PropertyType) Recognized() bool {
	return t != "" && t != PropertyTypeUnknown
}

// Location holds geocoded coordinates and parsed address components.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	State     string  `json:"state,omitempty"`
	ZipCode   string  `json:"zip_code,omitempty"`
}

// MarketStats holds provider-dependent market-level figures.
type MarketStats struct {
	AvgRentPerUnit   float64 `json:"avg_rent_per_unit,omitempty"`
	CapRateEstimate  float64 `json:"cap_rate_estimate,omitempty"`
	PricePerSqft     float64 `json:"price_per_sqft,omitempty"`
	AnnualRentIncome float64 `json:"annual_rent_income,omitempty"`
}

// Neighborhood holds demographic and livability figures for the area.
type Neighborhood struct {
	Walkability        float64 `json:"walkability,omitempty"`
	CrimeIndex         float64 `json:"crime_index,omitempty"`
	MedianIncome       float64 `json:"median_income,omitempty"`
	CollegeEducatedPct float64 `json:"college_educated_pct,omitempty"`
	UnemploymentRate   float64 `json:"unemployment_rate,omitempty"`
	PopulationGrowth   float64 `json:"population_growth_5yr,omitempty"`
	Score              float64 `json:"score,omitempty"`
}

// Provenance describes how a PropertyRecord was derived and how much to
// trust it. Verified records carry confidence >= 90 and IsEstimated=false;
// any AI or heuristic contribution forces IsEstimated=true and confidence
// <= 75. An empty Sources list always means confidence 0.
type Provenance struct {
	Confidence  int      `json:"confidence"`
	Sources     []string `json:"sources"`
	IsEstimated bool     `json:"is_estimated"`
	Notes       string   `json:"notes,omitempty"`
}

// PropertyRecord is the fused output of the resolution pipeline. Optional
// fields are pointers: nil means the cascade produced no value, and callers
// must render that as "no data" rather than substitute a default.
type PropertyRecord struct {
	Address        string        `json:"address"`
	PropertyType   PropertyType  `json:"property_type"`
	Units          int           `json:"units"`
	SquareFootage  *float64      `json:"square_footage,omitempty"`
	YearBuilt      *int          `json:"year_built,omitempty"`
	EstimatedValue *float64      `json:"estimated_value,omitempty"`
	LotSize        *float64      `json:"lot_size,omitempty"`
	Location       *Location     `json:"location,omitempty"`
	Market         *MarketStats  `json:"market,omitempty"`
	Neighborhood   *Neighborhood `json:"neighborhood,omitempty"`
	Provenance     Provenance    `json:"provenance"`
}

// Float64Ptr returns a pointer to v. Convenience for optional fields.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
