package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/swiftconvert/server/pkg/constants"
	"github.com/swiftconvert/server/pkg/types"
	"github.com/swiftconvert/server/pkg/utils"
)

// Config holds application configuration. Values come from, in increasing
// precedence: built-in defaults, an optional YAML file, environment
// variables (SWIFTCONVERT_*). A .env file is loaded first if present.
type Config struct {
	Port     int    `yaml:"port"`
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
	// "console" or "json"
	LogFormat string `yaml:"log_format"`

	MaxFileSize int64         `yaml:"max_file_size"`
	SweepMaxAge time.Duration `yaml:"sweep_max_age"`

	// OCR capability. When disabled, OCR endpoints report the feature off
	// instead of substituting a stub with different numeric semantics.
	OCREnabled   bool                `yaml:"ocr_enabled"`
	OCRLanguages []string            `yaml:"ocr_languages"`
	OCRDPI       int                 `yaml:"ocr_dpi"`
	OCREngine    types.OCREngineKind `yaml:"ocr_engine"`

	// Translation capability; empty endpoint disables it.
	TranslateEndpoint string `yaml:"translate_endpoint"`
	TranslateAPIKey   string `yaml:"translate_api_key"`

	// External document rendering tool used for doc/odt sources.
	SofficePath string `yaml:"soffice_path"`

	// Analytics sink; empty path selects the no-op sink.
	AnalyticsDBPath string `yaml:"analytics_db_path"`

	// Classification tunables.
	ClassifierThreshold float64 `yaml:"classifier_threshold"`

	// Billing (optional).
	BillingDBPath       string  `yaml:"billing_db_path"`
	StripeSecretKey     string  `yaml:"stripe_secret_key"`
	StripePublicKey     string  `yaml:"stripe_public_key"`
	StripeWebhookSecret string  `yaml:"stripe_webhook_secret"`
	ProPlanPriceINR     int64   `yaml:"pro_plan_price_inr"`
	ProPlanPriceUSD     float64 `yaml:"pro_plan_price_usd"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:                constants.DefaultPort,
		DataDir:             "data",
		LogLevel:            "info",
		LogFormat:           "console",
		MaxFileSize:         constants.MaxFileSize,
		SweepMaxAge:         constants.DefaultSweepMaxAge,
		OCREnabled:          true,
		OCRLanguages:        []string{"eng"},
		OCRDPI:              constants.DefaultOCRDPI,
		OCREngine:           types.OCREngineStandard,
		SofficePath:         "soffice",
		AnalyticsDBPath:     "analytics.db",
		ClassifierThreshold: constants.DefaultClassifierThreshold,
		BillingDBPath:       "billing.db",
		ProPlanPriceINR:     49,
		ProPlanPriceUSD:     9.99,
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, utils.NewIOError("failed to read config file", err).
				WithContext("path", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, utils.NewValidationError("failed to parse config file", err).
				WithContext("path", path)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SWIFTCONVERT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := os.Getenv("SWIFTCONVERT_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("SWIFTCONVERT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SWIFTCONVERT_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("SWIFTCONVERT_MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxFileSize = n
		}
	}
	if v := os.Getenv("SWIFTCONVERT_OCR_ENABLED"); v != "" {
		c.OCREnabled = v == "true" || v == "1" || v == "yes"
	}
	if v := os.Getenv("SWIFTCONVERT_OCR_DPI"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.OCRDPI = n
		}
	}
	if v := os.Getenv("SWIFTCONVERT_OCR_ENGINE"); v != "" {
		c.OCREngine = types.OCREngineKind(v)
	}
	if v := os.Getenv("SWIFTCONVERT_TRANSLATE_ENDPOINT"); v != "" {
		c.TranslateEndpoint = v
	}
	if v := os.Getenv("SWIFTCONVERT_TRANSLATE_API_KEY"); v != "" {
		c.TranslateAPIKey = v
	}
	if v := os.Getenv("SWIFTCONVERT_SOFFICE_PATH"); v != "" {
		c.SofficePath = v
	}
	if v := os.Getenv("SWIFTCONVERT_ANALYTICS_DB"); v != "" {
		c.AnalyticsDBPath = v
	}
	if v := os.Getenv("SWIFTCONVERT_BILLING_DB"); v != "" {
		c.BillingDBPath = v
	}
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		c.StripeSecretKey = v
	}
	if v := os.Getenv("STRIPE_PUBLIC_KEY"); v != "" {
		c.StripePublicKey = v
	}
	if v := os.Getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
		c.StripeWebhookSecret = v
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return utils.NewValidationError("port must be in 1-65535", nil).
			WithContext("port", c.Port)
	}
	if c.MaxFileSize <= 0 {
		return utils.NewValidationError("max_file_size must be positive", nil)
	}
	if c.OCRDPI < constants.MinOCRDPI || c.OCRDPI > constants.MaxOCRDPI {
		return utils.NewValidationError("ocr_dpi must be in 72-1200", nil).
			WithContext("ocr_dpi", c.OCRDPI)
	}
	switch c.OCREngine {
	case types.OCREngineStandard, types.OCREngineBinarized:
	default:
		return utils.NewValidationError("unknown ocr_engine", nil).
			WithContext("ocr_engine", string(c.OCREngine))
	}
	if c.ClassifierThreshold < 0 || c.ClassifierThreshold > 1 {
		return utils.NewValidationError("classifier_threshold must be in [0,1]", nil)
	}
	return nil
}

// TranslationEnabled reports whether a translation endpoint is configured.
func (c *Config) TranslationEnabled() bool {
	return c.TranslateEndpoint != ""
}

// BillingEnabled reports whether Stripe credentials are configured.
func (c *Config) BillingEnabled() bool {
	return c.StripeSecretKey != ""
}
