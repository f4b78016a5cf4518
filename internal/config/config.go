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
	Gateway   GatewayConfig   `yaml:"gateway" mapstructure:"gateway"`
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Composer  ComposerConfig  `yaml:"composer" mapstructure:"composer"`
	Districts DistrictsConfig `yaml:"districts" mapstructure:"districts"`
	Geocode   GeocodeConfig   `yaml:"geocode" mapstructure:"geocode"`
	Chat      ChatConfig      `yaml:"chat" mapstructure:"chat"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the snapshot database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// GatewayConfig configures environmental data collection.
type GatewayConfig struct {
	ProviderTimeoutSecs int `yaml:"provider_timeout_secs" mapstructure:"provider_timeout_secs"`
}

// ProvidersConfig holds per-provider API base URLs, overridable for testing
// against local fixtures.
type ProvidersConfig struct {
	OpenMeteoBaseURL  string `yaml:"open_meteo_base_url" mapstructure:"open_meteo_base_url"`
	AirQualityBaseURL string `yaml:"air_quality_base_url" mapstructure:"air_quality_base_url"`
	NASAPowerBaseURL  string `yaml:"nasa_power_base_url" mapstructure:"nasa_power_base_url"`
}

// ComposerConfig configures index composition.
type ComposerConfig struct {
	ConfigPath string `yaml:"config_path" mapstructure:"config_path"`
}

// DistrictsConfig configures district boundary lookup.
type DistrictsConfig struct {
	ShapefilePath string `yaml:"shapefile_path" mapstructure:"shapefile_path"`
}

// GeocodeConfig configures the Nominatim geocoder.
type GeocodeConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ChatConfig configures the assistant backend. When AnthropicKey is set the
// direct API is used; otherwise prompts go to the webhook.
type ChatConfig struct {
	WebhookURL     string `yaml:"webhook_url" mapstructure:"webhook_url"`
	AnthropicKey   string `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	AnthropicModel string `yaml:"anthropic_model" mapstructure:"anthropic_model"`
}

// BatchConfig configures multi-location runs.
type BatchConfig struct {
	MaxConcurrentLocations int `yaml:"max_concurrent_locations" mapstructure:"max_concurrent_locations"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("CITYSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "cityscope.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("gateway.provider_timeout_secs", 8)
	v.SetDefault("batch.max_concurrent_locations", 4)
	v.SetDefault("providers.open_meteo_base_url", "https://api.open-meteo.com")
	v.SetDefault("providers.air_quality_base_url", "https://air-quality-api.open-meteo.com")
	v.SetDefault("providers.nasa_power_base_url", "https://power.larc.nasa.gov")
	v.SetDefault("composer.config_path", "indices.yaml")
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "cityscope-cli/1.0")
	v.SetDefault("chat.anthropic_model", "claude-sonnet-4-5-20250929")

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

// Validate checks that configuration required for the given mode is present.
// Mode is one of "compose", "serve", or "chat".
func (c *Config) Validate(mode string) error {
	var missing []string

	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		missing = append(missing, "store.driver must be sqlite or postgres")
	}
	if c.Batch.MaxConcurrentLocations < 1 || c.Batch.MaxConcurrentLocations > 32 {
		missing = append(missing, "batch.max_concurrent_locations must be between 1 and 32")
	}
	if c.Gateway.ProviderTimeoutSecs < 1 {
		missing = append(missing, "gateway.provider_timeout_secs must be >= 1")
	}

	switch mode {
	case "compose":
		// No extra requirements; synthetic fill covers missing providers.
	case "serve":
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	case "chat":
		if c.Chat.WebhookURL == "" && c.Chat.AnthropicKey == "" {
			missing = append(missing, "chat.webhook_url or chat.anthropic_key is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
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
