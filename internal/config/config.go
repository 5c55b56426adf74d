package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"league-advisor/internal/apperr"
)

type Config struct {
	RiotAPIKey string
	Region     string
	CacheDir   string
	LogLevel   string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIKey: getEnv("RIOT_API_KEY", ""),
		Region:     getEnv("RIOT_REGION", "na1"),
		CacheDir:   getEnv("ADVISOR_CACHE_DIR", defaultCacheDir()),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}

	if cfg.RiotAPIKey == "" {
		return nil, fmt.Errorf("%w: RIOT_API_KEY is required", apperr.ErrConfigMissing)
	}

	logger.Info().
		Str("region", cfg.Region).
		Str("cache_dir", cfg.CacheDir).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".league-advisor"
	}
	return filepath.Join(home, ".league-advisor")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
