package config

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Payments struct {
		BaseURL  string `yaml:"base_url"`
		FeedURL  string `yaml:"feed_url"`
		DeviceID string `yaml:"device_id"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"payments"`
	Checkout struct {
		CountdownSeconds int    `yaml:"countdown_seconds"`
		LogLevel         string `yaml:"log_level"`
	} `yaml:"checkout"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if cfg.Server.Addr == "" {
		return nil, errors.New("server.addr is required")
	}
	if cfg.Payments.BaseURL == "" || cfg.Payments.FeedURL == "" {
		return nil, errors.New("payments config is incomplete")
	}
	if cfg.Checkout.CountdownSeconds <= 0 {
		return nil, errors.New("checkout.countdown_seconds must be positive")
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Checkout.CountdownSeconds == 0 {
		cfg.Checkout.CountdownSeconds = 900
	}
	if cfg.Checkout.LogLevel == "" {
		cfg.Checkout.LogLevel = "info"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		cfg.Redis.DB = atoiOr(cfg.Redis.DB, v)
	}
	if v := os.Getenv("PAYMENTS_BASE_URL"); v != "" {
		cfg.Payments.BaseURL = v
	}
	if v := os.Getenv("PAYMENTS_FEED_URL"); v != "" {
		cfg.Payments.FeedURL = v
	}
	if v := os.Getenv("PAYMENTS_DEVICE_ID"); v != "" {
		cfg.Payments.DeviceID = v
	}
	if v := os.Getenv("PAYMENTS_USERNAME"); v != "" {
		cfg.Payments.Username = v
	}
	if v := os.Getenv("PAYMENTS_PASSWORD"); v != "" {
		cfg.Payments.Password = v
	}
	if v := os.Getenv("COUNTDOWN_SECONDS"); v != "" {
		cfg.Checkout.CountdownSeconds = atoiOr(cfg.Checkout.CountdownSeconds, v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Checkout.LogLevel = v
	}
}

func atoiOr(fallback int, v string) int {
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
