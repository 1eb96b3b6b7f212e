package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Attom     AttomConfig     `yaml:"attom" mapstructure:"attom"`
	Census    CensusConfig    `yaml:"census" mapstructure:"census"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	HUD       HUDConfig       `yaml:"hud" mapstructure:"hud"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Resolver  ResolverConfig  `yaml:"resolver" mapstructure:"resolver"`
	Analysis  AnalysisConfig  `yaml:"analysis" mapstructure:"analysis"`
	Criteria  CriteriaConfig  `yaml:"criteria" mapstructure:"criteria"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the analysis persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AttomConfig holds ATTOM Data API settings (verified public records).
type AttomConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// CensusConfig holds US Census geocoder settings.
type CensusConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// NominatimConfig holds OpenStreetMap Nominatim settings.
type NominatimConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// HUDConfig holds HUD Fair Market Rents API settings.
type HUDConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// AnthropicConfig holds Anthropic API settings for AI estimation and
// narrative enrichment.
type AnthropicConfig struct {
	Key                 string `yaml:"key" mapstructure:"key"`
	Model               string `yaml:"model" mapstructure:"model"`
	EstimateTimeoutSecs int    `yaml:"estimate_timeout_secs" mapstructure:"estimate_timeout_secs"`
	EnrichTimeoutSecs   int    `yaml:"enrich_timeout_secs" mapstructure:"enrich_timeout_secs"`
}

// ResolverConfig configures the data fusion cascade.
type ResolverConfig struct {
	ForceEstimation bool `yaml:"force_estimation" mapstructure:"force_estimation"`
}

// AnalysisConfig holds the default underwriting assumptions. All rates are
// percentage points (6.5 means 6.5%).
type AnalysisConfig struct {
	VacancyRate         float64 `yaml:"vacancy_rate" mapstructure:"vacancy_rate"`
	ManagementFeeRate   float64 `yaml:"management_fee_rate" mapstructure:"management_fee_rate"`
	CapexReserveRate    float64 `yaml:"capex_reserve_rate" mapstructure:"capex_reserve_rate"`
	AnnualRentGrowth    float64 `yaml:"annual_rent_growth" mapstructure:"annual_rent_growth"`
	AnnualExpenseGrowth float64 `yaml:"annual_expense_growth" mapstructure:"annual_expense_growth"`
	DiscountRate        float64 `yaml:"discount_rate" mapstructure:"discount_rate"`
	HoldingPeriodYears  int     `yaml:"holding_period_years" mapstructure:"holding_period_years"`
	ExitCapRate         float64 `yaml:"exit_cap_rate" mapstructure:"exit_cap_rate"`
	LoanToValue         float64 `yaml:"loan_to_value" mapstructure:"loan_to_value"`
	InterestRate        float64 `yaml:"interest_rate" mapstructure:"interest_rate"`
	LoanTermYears       int     `yaml:"loan_term_years" mapstructure:"loan_term_years"`
}

// CriteriaConfig holds default investment thresholds.
type CriteriaConfig struct {
	MinCapRate    float64 `yaml:"min_cap_rate" mapstructure:"min_cap_rate"`
	MinCashOnCash float64 `yaml:"min_cash_on_cash" mapstructure:"min_cash_on_cash"`
	MinDSCR       float64 `yaml:"min_dscr" mapstructure:"min_dscr"`
	MinIRR        float64 `yaml:"min_irr" mapstructure:"min_irr"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROPPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "proppulse.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("attom.key", "")
	v.SetDefault("attom.base_url", "https://api.gateway.attomdata.com")
	v.SetDefault("attom.timeout_secs", 10)
	v.SetDefault("attom.rate_per_sec", 2)
	v.SetDefault("census.base_url", "https://geocoding.geo.census.gov")
	v.SetDefault("census.timeout_secs", 10)
	v.SetDefault("census.rate_per_sec", 5)
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.user_agent", "PropPulse/1.0 (real estate analysis)")
	v.SetDefault("nominatim.timeout_secs", 10)
	v.SetDefault("nominatim.rate_per_sec", 1)
	v.SetDefault("hud.base_url", "https://www.huduser.gov/hudapi/public")
	v.SetDefault("hud.timeout_secs", 10)
	v.SetDefault("hud.rate_per_sec", 2)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.estimate_timeout_secs", 15)
	v.SetDefault("anthropic.enrich_timeout_secs", 2)
	v.SetDefault("analysis.vacancy_rate", 5.0)
	v.SetDefault("analysis.management_fee_rate", 8.0)
	v.SetDefault("analysis.capex_reserve_rate", 5.0)
	v.SetDefault("analysis.annual_rent_growth", 3.0)
	v.SetDefault("analysis.annual_expense_growth", 2.5)
	v.SetDefault("analysis.discount_rate", 10.0)
	v.SetDefault("analysis.holding_period_years", 5)
	v.SetDefault("analysis.exit_cap_rate", 6.5)
	v.SetDefault("analysis.loan_to_value", 75.0)
	v.SetDefault("analysis.interest_rate", 6.5)
	v.SetDefault("analysis.loan_term_years", 30)
	v.SetDefault("criteria.min_cap_rate", 6.0)
	v.SetDefault("criteria.min_cash_on_cash", 8.0)
	v.SetDefault("criteria.min_dscr", 1.2)
	v.SetDefault("criteria.min_irr", 12.0)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
