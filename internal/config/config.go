package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"GS_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"GS_DB_MAX_CONNS" default:"8"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	SteamAPIBaseURL    string `envconfig:"STEAM_API_BASE_URL" default:"https://api.steampowered.com"`
	SteamMaxNewsPerApp int    `envconfig:"STEAM_MAX_NEWS_PER_APP" default:"10"`
	SteamNewsDaysBack  int    `envconfig:"STEAM_NEWS_DAYS_BACK" default:"7"`

	// Emerging pipeline thresholds. Defaults match the shipped radar
	// configuration; override per environment, never at runtime.
	MinRecentReviews30D int     `envconfig:"GS_MIN_RECENT_REVIEWS_30D" default:"30"`
	MinPositiveRatio    float64 `envconfig:"GS_MIN_POSITIVE_RATIO" default:"0.70"`
	EvergreenYears      float64 `envconfig:"GS_EVERGREEN_YEARS" default:"3"`
	EvergreenReviews    int     `envconfig:"GS_EVERGREEN_REVIEWS" default:"50000"`
	EmergingScoreMin    float64 `envconfig:"GS_EMERGING_SCORE_THRESHOLD" default:"2.0"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("GS_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("GS_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("GS_DB_MIN_CONNS (%d) cannot exceed GS_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.SteamAPIBaseURL) == "" {
		return fmt.Errorf("STEAM_API_BASE_URL is required")
	}
	if c.SteamMaxNewsPerApp < 1 {
		return fmt.Errorf("STEAM_MAX_NEWS_PER_APP must be >= 1")
	}
	if c.SteamNewsDaysBack < 1 {
		return fmt.Errorf("STEAM_NEWS_DAYS_BACK must be >= 1")
	}
	if c.MinRecentReviews30D < 0 {
		return fmt.Errorf("GS_MIN_RECENT_REVIEWS_30D must be >= 0")
	}
	if c.MinPositiveRatio < 0 || c.MinPositiveRatio > 1 {
		return fmt.Errorf("GS_MIN_POSITIVE_RATIO must be in [0,1]")
	}
	if c.EvergreenYears <= 0 {
		return fmt.Errorf("GS_EVERGREEN_YEARS must be > 0")
	}
	if c.EvergreenReviews < 0 {
		return fmt.Errorf("GS_EVERGREEN_REVIEWS must be >= 0")
	}
	return nil
}
