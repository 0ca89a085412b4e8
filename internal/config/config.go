package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// Steam
	SteamAPIKey string

	// IGDB (via Twitch credentials)
	IGDBClientID     string
	IGDBClientSecret string

	// Reconciliation
	MatchThreshold float64       // similarity threshold for the candidate matcher
	SyncInterval   time.Duration // background sync cadence for connected accounts

	// Server
	ServerPort  string
	MetricsPort string

	// Paths
	DatabaseFile string // $CONFIG_DIR/playlater.db
	DenylistFile string // $CONFIG_DIR/denylist.txt

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and a .env file.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env if present, ignore if not.
	_ = viper.ReadInConfig()

	viper.SetDefault("MATCH_THRESHOLD", 0.85)
	viper.SetDefault("SYNC_INTERVAL_HOURS", 12)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("METRICS_PORT", "9090")
	viper.SetDefault("LOG_LEVEL", "info")

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "playlater")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		SteamAPIKey: viper.GetString("STEAM_API_KEY"),

		IGDBClientID:     viper.GetString("IGDB_CLIENT_ID"),
		IGDBClientSecret: viper.GetString("IGDB_CLIENT_SECRET"),

		MatchThreshold: viper.GetFloat64("MATCH_THRESHOLD"),
		SyncInterval:   time.Duration(viper.GetInt("SYNC_INTERVAL_HOURS")) * time.Hour,

		ServerPort:  viper.GetString("SERVER_PORT"),
		MetricsPort: viper.GetString("METRICS_PORT"),

		DatabaseFile: filepath.Join(configDir, "playlater.db"),
		DenylistFile: filepath.Join(configDir, "denylist.txt"),

		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	if config.SteamAPIKey == "" {
		return nil, fmt.Errorf("STEAM_API_KEY is required")
	}
	if config.IGDBClientID == "" {
		return nil, fmt.Errorf("IGDB_CLIENT_ID is required")
	}
	if config.IGDBClientSecret == "" {
		return nil, fmt.Errorf("IGDB_CLIENT_SECRET is required")
	}

	return config, nil
}
