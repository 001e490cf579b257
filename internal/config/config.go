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
	Places  PlacesConfig  `yaml:"places" mapstructure:"places"`
	Collect CollectConfig `yaml:"collect" mapstructure:"collect"`
	Scorer  ScorerConfig  `yaml:"scorer" mapstructure:"scorer"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Notion  NotionConfig  `yaml:"notion" mapstructure:"notion"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// CollectConfig configures the listing collection phase.
type CollectConfig struct {
	MaxPages       int      `yaml:"max_pages" mapstructure:"max_pages"`
	PageSize       int      `yaml:"page_size" mapstructure:"page_size"`
	Concurrency    int      `yaml:"concurrency" mapstructure:"concurrency"`
	PhoneRegion    string   `yaml:"phone_region" mapstructure:"phone_region"`
	BrandKeywords  []string `yaml:"brand_keywords" mapstructure:"brand_keywords"`
	OfflineRating  float64  `yaml:"offline_rating" mapstructure:"offline_rating"`
	OfflineReviews int      `yaml:"offline_reviews" mapstructure:"offline_reviews"`
}

// RatingBand maps a minimum rating to the points it awards. Bands are kept
// in descending Min order; the first band at or below the observed rating
// wins.
type RatingBand struct {
	Min    float64 `yaml:"min" mapstructure:"min"`
	Points int     `yaml:"points" mapstructure:"points"`
}

// ReviewBand maps a minimum review count to the points it awards.
type ReviewBand struct {
	Min    int `yaml:"min" mapstructure:"min"`
	Points int `yaml:"points" mapstructure:"points"`
}

// ScorerConfig holds the scoring policy: subscore points, band tables, the
// website validation lists, and classification thresholds.
type ScorerConfig struct {
	WebsitePoints int `yaml:"website_points" mapstructure:"website_points"`
	PhonePoints   int `yaml:"phone_points" mapstructure:"phone_points"`
	AddressPoints int `yaml:"address_points" mapstructure:"address_points"`

	RatingBands []RatingBand `yaml:"rating_bands" mapstructure:"rating_bands"`
	ReviewBands []ReviewBand `yaml:"review_bands" mapstructure:"review_bands"`

	BlockedDomains  []string `yaml:"blocked_domains" mapstructure:"blocked_domains"`
	AssetExtensions []string `yaml:"asset_extensions" mapstructure:"asset_extensions"`

	HighThreshold      int `yaml:"high_threshold" mapstructure:"high_threshold"`
	PotentialThreshold int `yaml:"potential_threshold" mapstructure:"potential_threshold"`
}

// ExportConfig configures CSV export behavior.
type ExportConfig struct {
	MinQualifiedScore int    `yaml:"min_qualified_score" mapstructure:"min_qualified_score"`
	DataDir           string `yaml:"data_dir" mapstructure:"data_dir"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// NotionConfig holds Notion API credentials and the lead database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// ServerConfig configures the scoring HTTP server.
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
	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "prospect.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("places.key", "")
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("places.rate_limit", 10)
	v.SetDefault("collect.max_pages", 3)
	v.SetDefault("collect.page_size", 20)
	v.SetDefault("collect.concurrency", 3)
	v.SetDefault("collect.phone_region", "US")
	v.SetDefault("collect.offline_rating", 4.2)
	v.SetDefault("collect.offline_reviews", 50)
	v.SetDefault("export.min_qualified_score", 10)
	v.SetDefault("export.data_dir", "data")
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.lead_db", "")

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
