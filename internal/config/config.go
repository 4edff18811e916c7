// internal/config/config.go
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application. The credential fields
// are static fallbacks only: values saved through the settings API take
// precedence at resolution time.
type Config struct {
	LogLevel string `mapstructure:"LOG_LEVEL"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	DBURL    string `mapstructure:"DB_URL"`

	GithubToken  string `mapstructure:"GITHUB_TOKEN"`
	JiraBaseURL  string `mapstructure:"JIRA_BASE_URL"`
	JiraEmail    string `mapstructure:"JIRA_EMAIL"`
	JiraAPIToken string `mapstructure:"JIRA_API_TOKEN"`

	CommitFetchLimit int `mapstructure:"COMMIT_FETCH_LIMIT"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("COMMIT_FETCH_LIMIT", 100)

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields. Integration credentials are deliberately
	// optional: calls that need a missing credential are skipped at runtime.
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.CommitFetchLimit <= 0 {
		return nil, errors.New("COMMIT_FETCH_LIMIT must be a positive integer")
	}

	return &cfg, nil
}
