// Package config loads server settings from defaults, an optional YAML file
// and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rl1809/car-inventory/internal/adapter/storage"
)

type Config struct {
	HTTPAddr    string        `yaml:"http_addr"`
	GRPCAddr    string        `yaml:"grpc_addr"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
	WorkerCount int           `yaml:"worker_count"`
	QueueSize   int           `yaml:"queue_size"`
	Journal     JournalConfig `yaml:"journal"`
	Redis       RedisConfig   `yaml:"redis"`
}

// JournalConfig selects the SQL change journal. An empty Driver disables it.
type JournalConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RedisConfig selects the change publisher. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

func Default() Config {
	return Config{
		HTTPAddr:    ":8080",
		GRPCAddr:    ":50051",
		LogLevel:    "info",
		LogFormat:   "text",
		WorkerCount: 4,
		QueueSize:   1024,
		Redis: RedisConfig{
			Channel: storage.DefaultChannel,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty) and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	// An explicitly empty GRPC_ADDR disables gRPC.
	if value, ok := os.LookupEnv("GRPC_ADDR"); ok {
		c.GRPCAddr = value
	}
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.Journal.Driver = getEnv("JOURNAL_DRIVER", c.Journal.Driver)
	c.Journal.DSN = getEnv("JOURNAL_DSN", c.Journal.DSN)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.Channel = getEnv("REDIS_CHANNEL", c.Redis.Channel)

	var err error
	if c.WorkerCount, err = getEnvInt("WORKER_COUNT", c.WorkerCount); err != nil {
		return err
	}
	if c.QueueSize, err = getEnvInt("QUEUE_SIZE", c.QueueSize); err != nil {
		return err
	}
	if c.Redis.DB, err = getEnvInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address is required"))
	}
	if c.WorkerCount <= 0 {
		errs = append(errs, fmt.Errorf("worker count must be positive, got %d", c.WorkerCount))
	}
	if c.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("queue size must be positive, got %d", c.QueueSize))
	}

	switch c.Journal.Driver {
	case "":
	case "mysql", "sqlite3":
		if c.Journal.DSN == "" {
			errs = append(errs, fmt.Errorf("journal dsn is required for driver %s", c.Journal.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported journal driver %q", c.Journal.Driver))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
