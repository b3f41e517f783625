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
	Port              string `yaml:"port"`
	DatabaseURL       string `yaml:"databaseURL"`
	LogLevel          string `yaml:"logLevel"`
	RedisAddr         string `yaml:"redisAddr"`
	RedisPassword     string `yaml:"redisPassword"`
	AssistantAPIKey   string `yaml:"assistantAPIKey"`
	AssistantBaseURL  string `yaml:"assistantBaseURL"`
	WidgetTokenSecret string `yaml:"widgetTokenSecret"`
	RateLimitPerMin   int    `yaml:"rateLimitPerMin"`
	HistoryLimit      int    `yaml:"historyLimit"`

	// TrustedProxies lists CIDR/IP entries whose forwarded headers are
	// honored when resolving the widget caller's IP.
	TrustedProxies []string `yaml:"trustedProxies"`
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
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("ASSISTANT_API_KEY"); v != "" {
		cfg.AssistantAPIKey = v
	}
	if v := os.Getenv("WIDGET_TOKEN_SECRET"); v != "" {
		cfg.WidgetTokenSecret = v
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
	if cfg.RedisAddr == "" {
		return errors.New("config: redisAddr is required (set in config.yaml or REDIS_ADDR)")
	}
	if cfg.AssistantAPIKey == "" {
		return errors.New("config: assistantAPIKey is required (set in config.yaml or ASSISTANT_API_KEY)")
	}
	if cfg.WidgetTokenSecret == "" {
		return errors.New("config: widgetTokenSecret is required (set in config.yaml or WIDGET_TOKEN_SECRET)")
	}
	return nil
}
