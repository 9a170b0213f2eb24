package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"auction-escrow/utils"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config is the resolved runtime configuration.
type Config struct {
	HTTPPort int
	LogLevel string

	StoreDriver   string
	DatabaseURL   string
	MaxDBConns    int
	LockTimeout   time.Duration
	RunMigrations bool
	SeedDemoData  bool

	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string

	FinalizerInterval   time.Duration
	FinalizerWorkers    int
	AutoReleaseInterval time.Duration
	AutoReleaseAfter    time.Duration
	CommissionRate      decimal.Decimal
}

// configFile mirrors configs/default.yaml.
type configFile struct {
	Server struct {
		HTTPPort int    `yaml:"http_port"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"server"`
	Store struct {
		Driver        string `yaml:"driver"`
		DatabaseURL   string `yaml:"database_url"`
		MaxConns      int    `yaml:"max_conns"`
		LockTimeout   string `yaml:"lock_timeout"`
		RunMigrations *bool  `yaml:"run_migrations"`
		SeedDemoData  *bool  `yaml:"seed_demo_data"`
	} `yaml:"store"`
	Dependencies struct {
		RedisURL     string   `yaml:"redis_url"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
		KafkaTopic   string   `yaml:"kafka_topic"`
	} `yaml:"dependencies"`
	Engine struct {
		FinalizerInterval   string `yaml:"finalizer_interval"`
		FinalizerWorkers    int    `yaml:"finalizer_workers"`
		AutoReleaseInterval string `yaml:"auto_release_interval"`
		AutoReleaseAfter    string `yaml:"auto_release_after"`
		CommissionRate      string `yaml:"commission_rate"`
	} `yaml:"engine"`
}

func defaults() Config {
	return Config{
		HTTPPort:            8080,
		LogLevel:            "info",
		StoreDriver:         StoreMemory,
		MaxDBConns:          20,
		LockTimeout:         5 * time.Second,
		RunMigrations:       true,
		KafkaTopic:          "auction-escrow.events",
		FinalizerInterval:   60 * time.Second,
		FinalizerWorkers:    4,
		AutoReleaseInterval: time.Hour,
		AutoReleaseAfter:    14 * 24 * time.Hour,
		CommissionRate:      decimal.NewFromInt(5),
	}
}

// LoadConfig resolves configuration in priority order: defaults, then the
// YAML file at path, then the environment. A .env file in the working
// directory is loaded into the environment first and never overrides
// variables that are already set.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		utils.Warn("Could not load .env file", map[string]any{"error": err.Error()})
	}

	cfg := defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := applyFile(&cfg, raw); err != nil {
				return Config{}, err
			}
		case errors.Is(err, fs.ErrNotExist):
			utils.Warn("Config file not found, using defaults", map[string]any{"path": path})
		default:
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if f.Server.HTTPPort > 0 {
		cfg.HTTPPort = f.Server.HTTPPort
	}
	if f.Server.LogLevel != "" {
		cfg.LogLevel = f.Server.LogLevel
	}
	if f.Store.Driver != "" {
		cfg.StoreDriver = f.Store.Driver
	}
	if f.Store.DatabaseURL != "" {
		cfg.DatabaseURL = f.Store.DatabaseURL
	}
	if f.Store.MaxConns > 0 {
		cfg.MaxDBConns = f.Store.MaxConns
	}
	if f.Store.RunMigrations != nil {
		cfg.RunMigrations = *f.Store.RunMigrations
	}
	if f.Store.SeedDemoData != nil {
		cfg.SeedDemoData = *f.Store.SeedDemoData
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
	}
	if f.Dependencies.KafkaTopic != "" {
		cfg.KafkaTopic = f.Dependencies.KafkaTopic
	}
	if f.Engine.FinalizerWorkers > 0 {
		cfg.FinalizerWorkers = f.Engine.FinalizerWorkers
	}

	durations := []struct {
		raw string
		dst *time.Duration
		key string
	}{
		{f.Store.LockTimeout, &cfg.LockTimeout, "store.lock_timeout"},
		{f.Engine.FinalizerInterval, &cfg.FinalizerInterval, "engine.finalizer_interval"},
		{f.Engine.AutoReleaseInterval, &cfg.AutoReleaseInterval, "engine.auto_release_interval"},
		{f.Engine.AutoReleaseAfter, &cfg.AutoReleaseAfter, "engine.auto_release_after"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if f.Engine.CommissionRate != "" {
		rate, err := decimal.NewFromString(f.Engine.CommissionRate)
		if err != nil {
			return fmt.Errorf("parse engine.commission_rate: %w", err)
		}
		cfg.CommissionRate = rate
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.HTTPPort = envInt("PORT", cfg.HTTPPort)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(envOrDefault("STORE_DRIVER", cfg.StoreDriver)))
	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.MaxDBConns = envInt("DB_MAX_CONNS", cfg.MaxDBConns)
	cfg.RunMigrations = envBool("RUN_MIGRATIONS", cfg.RunMigrations)
	cfg.SeedDemoData = envBool("SEED_DEMO_DATA", cfg.SeedDemoData)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopic = envOrDefault("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.FinalizerWorkers = envInt("FINALIZER_WORKERS", cfg.FinalizerWorkers)

	var err error
	if cfg.LockTimeout, err = envDuration("LOCK_TIMEOUT", cfg.LockTimeout); err != nil {
		return err
	}
	if cfg.FinalizerInterval, err = envDuration("FINALIZER_INTERVAL", cfg.FinalizerInterval); err != nil {
		return err
	}
	if cfg.AutoReleaseInterval, err = envDuration("AUTO_RELEASE_INTERVAL", cfg.AutoReleaseInterval); err != nil {
		return err
	}
	if cfg.AutoReleaseAfter, err = envDuration("AUTO_RELEASE_AFTER", cfg.AutoReleaseAfter); err != nil {
		return err
	}
	if raw := os.Getenv("COMMISSION_RATE"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("parse COMMISSION_RATE: %w", err)
		}
		cfg.CommissionRate = rate
	}
	return nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: postgres store requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.StoreDriver)
	}
	if c.CommissionRate.IsNegative() || c.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("config: commission rate %s outside 0-100", c.CommissionRate)
	}
	if c.FinalizerInterval <= 0 || c.AutoReleaseInterval <= 0 {
		return fmt.Errorf("config: scheduler intervals must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	var parts []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
