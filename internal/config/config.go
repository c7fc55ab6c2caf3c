package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type WeightServiceConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	TotalTimeout   time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Weight      WeightServiceConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Weight: WeightServiceConfig{
			BaseURL:        v.GetString("WEIGHT_SERVICE_URL"),
			RequestTimeout: v.GetDuration("WEIGHT_REQUEST_TIMEOUT"),
			TotalTimeout:   v.GetDuration("WEIGHT_TOTAL_TIMEOUT"),
			MaxRetries:     v.GetInt("WEIGHT_MAX_RETRIES"),
			BackoffBase:    v.GetDuration("WEIGHT_BACKOFF_BASE"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Weight.RequestTimeout == 0 {
		cfg.Weight.RequestTimeout = 10 * time.Second
	}
	if cfg.Weight.TotalTimeout == 0 {
		cfg.Weight.TotalTimeout = 60 * time.Second
	}
	if cfg.Weight.MaxRetries == 0 {
		cfg.Weight.MaxRetries = 3
	}
	if cfg.Weight.BackoffBase == 0 {
		cfg.Weight.BackoffBase = time.Second
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Weight.BaseURL == "" {
		return fmt.Errorf("WEIGHT_SERVICE_URL is required")
	}
	return nil
}
