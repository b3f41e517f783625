package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port            string `yaml:"port"`
	DatabaseURL     string `yaml:"databaseURL"`
	LogLevel        string `yaml:"logLevel"`
	PaymentsToken   string `yaml:"paymentsToken"`
	PaymentsBaseURL string `yaml:"paymentsBaseURL"`
	NotificationURL string `yaml:"notificationURL"`
	CheckoutBackURL string `yaml:"checkoutBackURL"`
	MailerAPIKey    string `yaml:"mailerAPIKey"`
	MailerFrom      string `yaml:"mailerFrom"`
	MailerBaseURL   string `yaml:"mailerBaseURL"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("PAYMENTS_ACCESS_TOKEN"); v != "" {
		cfg.PaymentsToken = v
	}
	if v := os.Getenv("MAILER_API_KEY"); v != "" {
		cfg.MailerAPIKey = v
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if cfg.PaymentsToken == "" {
		return errors.New("config: paymentsToken is required (set in config.yaml or PAYMENTS_ACCESS_TOKEN)")
	}
	return nil
}
