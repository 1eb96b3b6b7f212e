package model

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// InvestmentCriteria are the thresholds a deal must clear to pass. Zero
// values are replaced with the documented defaults by WithDefaults.
type InvestmentCriteria struct {
	MinCapRate    float64 `json:"min_cap_rate" yaml:"min_cap_rate"`
	MinCashOnCash float64 `json:"min_cash_on_cash" yaml:"min_cash_on_cash"`
	MinDSCR       float64 `json:"min_dscr" yaml:"min_dscr"`
	MinIRR        float64 `json:"min_irr" yaml:"min_irr"`
}

// DefaultCriteria returns the documented default thresholds.
func DefaultCriteria() InvestmentCriteria {
	return InvestmentCriteria{
		MinCapRate:    6.0,
		MinCashOnCash: 8.0,
		MinDSCR:       1.2,
		MinIRR:        12.0,
	}
}

// WithDefaults fills unset thresholds from the defaults.
func (c InvestmentCriteria) WithDefaults() InvestmentCriteria {
	def := DefaultCriteria()
	if c.MinCapRate == 0 {
		c.MinCapRate = def.MinCapRate
	}
	if c.MinCashOnCash == 0 {
		c.MinCashOnCash = def.MinCashOnCash
	}
	if c.MinDSCR == 0 {
		c.MinDSCR = def.MinDSCR
	}
	if c.MinIRR == 0 {
		c.MinIRR = def.MinIRR
	}
	return c
}

// LoadCriteria reads an InvestmentCriteria YAML file and applies defaults.
func LoadCriteria(path string) (InvestmentCriteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return InvestmentCriteria{}, eris.Wrapf(err, "criteria: read %s", path)
	}
	var c InvestmentCriteria
	if err := yaml.Unmarshal(data, &c); err != nil {
		return InvestmentCriteria{}, eris.Wrapf(err, "criteria: parse %s", path)
	}
	return c.WithDefaults(), nil
}
