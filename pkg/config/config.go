package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"StockDash/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when no -config flag is given.
// A missing file at this path is not an error: built-in defaults apply.
const DefaultPath = "config/config.yaml"

const (
	BackendSQLite     = "sqlite"
	BackendClickHouse = "clickhouse"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Port                 int           `yaml:"port" default:"8501" validate:"gte=1,lte=65535"`
		ReadTimeout          time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout         time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout      time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowRequestThreshold time.Duration `yaml:"slow_request_threshold" default:"2s"`
		CORS                 bool          `yaml:"cors"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout" validate:"required"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Database struct {
		Backend      string        `yaml:"backend" default:"sqlite" validate:"oneof=sqlite clickhouse"`
		Path         string        `yaml:"path" default:"stock_analysis.db"`
		ReadOnly     bool          `yaml:"read_only" default:"true"`
		BusyTimeout  time.Duration `yaml:"busy_timeout" default:"5s" validate:"gte=0"`
		QueryTimeout time.Duration `yaml:"query_timeout" default:"15s"`
		MaxOpenConns int           `yaml:"max_open_conns" default:"4" validate:"gte=1"`
	} `yaml:"database"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"default"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Cache struct {
		Enabled       bool          `yaml:"enabled"`
		Mode          string        `yaml:"mode" default:"memory" validate:"oneof=memory redis layered"`
		TTL           time.Duration `yaml:"ttl" default:"60s"`
		MemoryMaxSize int           `yaml:"memory_max_size" default:"256" validate:"gte=1"`
		MemoryCleanup time.Duration `yaml:"memory_cleanup_interval" default:"1m" validate:"gt=0"`
		Redis         struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"stockdash"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		ChartCapacity     float64 `yaml:"chart_capacity" default:"10" validate:"gte=0"`
		ChartRefillPerSec float64 `yaml:"chart_refill_per_sec" default:"5" validate:"gte=0"`
	} `yaml:"rate_limit"`
	Dashboard struct {
		Title          string `yaml:"title" default:"Stock Market Analytics Dashboard"`
		DefaultView    string `yaml:"default_view" default:"market-overview" validate:"required"`
		CumulativeTopN int    `yaml:"cumulative_top_n" default:"5" validate:"gte=1,lte=20"`
		ChartWidth     int    `yaml:"chart_width" default:"1400" validate:"gte=200,lte=4000"`
		ChartHeight    int    `yaml:"chart_height" default:"700" validate:"gte=200,lte=4000"`
	} `yaml:"dashboard"`
}

var validate = validator.New()

// Default returns a configuration populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
		// running without a config file is supported
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("STOCKDASH_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("STOCKDASH_BACKEND"); v != "" {
		c.Database.Backend = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = strings.ToLower(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, err := net.SplitHostPort(v)
		if err != nil {
			return nil, fmt.Errorf("REDIS_ADDR: %w", err)
		}
		c.Cache.Redis.Host = host
		c.Cache.Redis.Port = util.ParseIntDefault(port, c.Cache.Redis.Port)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	switch c.Database.Backend {
	case BackendSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite backend")
		}
	case BackendClickHouse:
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for the clickhouse backend")
		}
	}
	return nil
}
