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
	Port             string `yaml:"port"`
	DatabaseURL      string `yaml:"databaseURL"`
	LogLevel         string `yaml:"logLevel"`
	RedisAddr        string `yaml:"redisAddr"`
	RedisPassword    string `yaml:"redisPassword"`
	RefreshStream    string `yaml:"refreshStream"`
	WorkerCount      int    `yaml:"workerCount"`
	AssistantAPIKey  string `yaml:"assistantAPIKey"`
	AssistantBaseURL string `yaml:"assistantBaseURL"`
	AssistantModel   string `yaml:"assistantModel"`
	PaymentsToken    string `yaml:"paymentsToken"`
	NotificationURL  string `yaml:"notificationURL"`
	CheckoutBackURL  string `yaml:"checkoutBackURL"`
	MailerAPIKey     string `yaml:"mailerAPIKey"`
	MailerFrom       string `yaml:"mailerFrom"`
	ContactEmail     string `yaml:"contactEmail"`
	MinioEndpoint    string `yaml:"minioEndpoint"`
	MinioAccessKey   string `yaml:"minioAccessKey"`
	MinioSecretKey   string `yaml:"minioSecretKey"`
	MinioBucket      string `yaml:"minioBucket"`
	MinioUseSSL      bool   `yaml:"minioUseSSL"`
	MaxSitePages     int    `yaml:"maxSitePages"`
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
	if v := os.Getenv("PAYMENTS_ACCESS_TOKEN"); v != "" {
		cfg.PaymentsToken = v
	}
	if v := os.Getenv("MAILER_API_KEY"); v != "" {
		cfg.MailerAPIKey = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
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
	if cfg.AssistantModel == "" {
		return errors.New("config: assistantModel is required (set in config.yaml)")
	}
	if cfg.PaymentsToken == "" {
		return errors.New("config: paymentsToken is required (set in config.yaml or PAYMENTS_ACCESS_TOKEN)")
	}
	if cfg.MailerAPIKey == "" {
		return errors.New("config: mailerAPIKey is required (set in config.yaml or MAILER_API_KEY)")
	}
	if cfg.MailerFrom == "" {
		return errors.New("config: mailerFrom is required (set in config.yaml)")
	}
	return nil
}
