package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/places-geojson/internal/cost"
)

// Config holds the full application configuration.
type Config struct {
	Google   GoogleConfig   `yaml:"google" mapstructure:"google"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Input    InputConfig    `yaml:"input" mapstructure:"input"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Pricing  PricingConfig  `yaml:"pricing" mapstructure:"pricing"`
}

// GoogleConfig holds Google Places API settings.
type GoogleConfig struct {
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests/sec, 0 = unlimited
}

// PipelineConfig configures record processing.
type PipelineConfig struct {
	Concurrency    int  `yaml:"concurrency" mapstructure:"concurrency"`
	SkipUnresolved bool `yaml:"skip_unresolved" mapstructure:"skip_unresolved"`
}

// InputConfig configures CSV decoding.
type InputConfig struct {
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// PricingConfig holds API pricing rates used for cost estimates.
type PricingConfig struct {
	PlacesDetailsPer1K float64 `yaml:"places_details_per_1k" mapstructure:"places_details_per_1k"` // USD per 1000 requests
}

// ConfigurationError reports a missing or invalid setting. It is raised at
// startup, before any record is read.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLACES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("google.api_key", "PLACES_GOOGLE_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, eris.Wrap(err, "config: bind env")
	}

	// Defaults
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("google.timeout_secs", 10)
	v.SetDefault("google.rate_limit", 0)
	v.SetDefault("pipeline.concurrency", 1)
	v.SetDefault("pipeline.skip_unresolved", false)
	v.SetDefault("input.encoding", "utf-8")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("pricing.places_details_per_1k", cost.DefaultRates().Places.DetailsPer1K)

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

// Validate checks the settings needed to run lookups.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Google.APIKey) == "":
		return &ConfigurationError{Key: "google.api_key", Reason: "required (set GOOGLE_API_KEY or PLACES_GOOGLE_API_KEY)"}
	case c.Google.TimeoutSecs <= 0:
		return &ConfigurationError{Key: "google.timeout_secs", Reason: fmt.Sprintf("must be positive, got %d", c.Google.TimeoutSecs)}
	case c.Google.RateLimit < 0:
		return &ConfigurationError{Key: "google.rate_limit", Reason: fmt.Sprintf("must not be negative, got %v", c.Google.RateLimit)}
	case c.Pricing.PlacesDetailsPer1K < 0:
		return &ConfigurationError{Key: "pricing.places_details_per_1k", Reason: fmt.Sprintf("must not be negative, got %v", c.Pricing.PlacesDetailsPer1K)}
	case c.Pipeline.Concurrency < 1:
		return &ConfigurationError{Key: "pipeline.concurrency", Reason: fmt.Sprintf("must be at least 1, got %d", c.Pipeline.Concurrency)}
	}
	return nil
}

// Redacted returns a copy of c that is safe to print.
func (c *Config) Redacted() Config {
	out := *c
	if out.Google.APIKey != "" {
		out.Google.APIKey = "[redacted]"
	}
	out.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	return out
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
