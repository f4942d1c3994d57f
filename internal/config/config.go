package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/corrlab/internal/market"
)

const (
	DefaultPath     = "corrlab.yaml"
	DefaultDataDir  = "data"
	DefaultAddr     = ":8000"
	DefaultAPIURL   = "http://localhost:8000"
	DefaultTimeout  = 10 * time.Second
	DefaultLogLevel = "info"
	DefaultAssetA   = "SPY"
	DefaultAssetB   = "QQQ"

	ThemeDark  = "dark"
	ThemeLight = "light"
)

type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Assets    []market.Asset  `yaml:"assets"`
	Server    ServerConfig    `yaml:"server"`
	Client    ClientConfig    `yaml:"client"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type ServerConfig struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`
}

type ClientConfig struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// RedisConfig enables the matrix cache when Addr is set.
type RedisConfig struct {
	Addr string        `yaml:"addr"`
	DB   int           `yaml:"db"`
	TTL  time.Duration `yaml:"ttl"`
}

// PostgresConfig switches the price source from CSV files to Postgres when
// DSN is set.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type DashboardConfig struct {
	Range  string `yaml:"range"`
	AssetA string `yaml:"asset_a"`
	AssetB string `yaml:"asset_b"`
	Theme  string `yaml:"theme"`
}

func DefaultConfig() *Config {
	assets := make([]market.Asset, len(market.DefaultAssets))
	copy(assets, market.DefaultAssets)
	return &Config{
		DataDir: DefaultDataDir,
		Assets:  assets,
		Server: ServerConfig{
			Addr:     DefaultAddr,
			LogLevel: DefaultLogLevel,
		},
		Client: ClientConfig{
			APIURL:  DefaultAPIURL,
			Timeout: DefaultTimeout,
		},
		Redis: RedisConfig{
			TTL: 5 * time.Minute,
		},
		Dashboard: DashboardConfig{
			Range:  string(market.DefaultRange),
			AssetA: DefaultAssetA,
			AssetB: DefaultAssetB,
			Theme:  ThemeDark,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields DefaultConfig.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if len(c.Assets) == 0 {
		return errors.New("config: at least one asset is required")
	}
	seen := make(map[string]bool, len(c.Assets))
	for _, a := range c.Assets {
		if a.ID == "" {
			return errors.New("config: asset id must not be empty")
		}
		if seen[a.ID] {
			return fmt.Errorf("config: duplicate asset %s", a.ID)
		}
		seen[a.ID] = true
	}
	if _, err := market.ParseRange(c.Dashboard.Range); err != nil {
		return fmt.Errorf("config: dashboard range: %w", err)
	}
	if c.Dashboard.Theme != ThemeDark && c.Dashboard.Theme != ThemeLight {
		return fmt.Errorf("config: unknown theme %q", c.Dashboard.Theme)
	}
	return nil
}

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overrides fields from CORRLAB_* environment variables.
func (c *Config) ApplyEnv() {
	c.DataDir = getEnv("CORRLAB_DATA", c.DataDir)
	c.Server.Addr = getEnv("CORRLAB_ADDR", c.Server.Addr)
	c.Server.LogLevel = getEnv("CORRLAB_LOG_LEVEL", c.Server.LogLevel)
	c.Client.APIURL = getEnv("CORRLAB_API", c.Client.APIURL)
	c.Redis.Addr = getEnv("CORRLAB_REDIS_ADDR", c.Redis.Addr)
	if db, err := strconv.Atoi(getEnv("CORRLAB_REDIS_DB", "")); err == nil {
		c.Redis.DB = db
	}
	c.Postgres.DSN = getEnv("CORRLAB_PG_DSN", c.Postgres.DSN)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
