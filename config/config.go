// Package config loads client configuration from a YAML file and the
// environment. Environment variables override file values.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Cognito configures the identity provider connection.
type Cognito struct {
	Region     string `yaml:"region" env:"COGNITO_REGION" env-default:"us-east-1"`
	Endpoint   string `yaml:"endpoint" env:"COGNITO_ENDPOINT"`
	ClientID   string `yaml:"client_id" env:"COGNITO_CLIENT_ID"`
	UserPoolID string `yaml:"user_pool_id" env:"COGNITO_USER_POOL_ID"`

	// OwnersGroup members receive the owner role.
	OwnersGroup string `yaml:"owners_group" env:"COGNITO_OWNERS_GROUP" env-default:"OWNERS"`

	// AutoConfirm enables the test-environment signup confirmation flow,
	// attributing the admin calls to AdminAccessKey.
	AutoConfirm    bool   `yaml:"auto_confirm" env:"COGNITO_AUTO_CONFIRM" env-default:"false"`
	AdminAccessKey string `yaml:"admin_access_key" env:"COGNITO_ADMIN_ACCESS_KEY" env-default:"test"`
}

// Config is the full client configuration.
type Config struct {
	Cognito Cognito `yaml:"cognito"`

	// APIBaseURL is the backend REST API root.
	APIBaseURL string `yaml:"api_base_url" env:"API_BASE_URL" env-default:"http://localhost:8080"`

	// ExpiryThreshold is how close to expiry a token triggers a proactive
	// refresh.
	ExpiryThreshold time.Duration `yaml:"expiry_threshold" env:"EXPIRY_THRESHOLD" env-default:"60s"`

	// StateDir holds the persisted session records. Empty selects the
	// in-memory store.
	StateDir string `yaml:"state_dir" env:"STATE_DIR"`

	MetricsEnabled bool `yaml:"metrics_enabled" env:"METRICS_ENABLED" env-default:"false"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from the YAML file at path, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return &cfg, nil
}

// FromEnv builds configuration from environment variables and defaults only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read environment: %w", err)
	}
	return &cfg, nil
}
