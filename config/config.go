package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port              string        `yaml:"port"`
		BaseURL           string        `yaml:"base_url"`
		ReadTimeout       time.Duration `yaml:"read_timeout"`
		WriteTimeout      time.Duration `yaml:"write_timeout"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
		AllowedOrigins    []string      `yaml:"allowed_origins"`
		TrustProxyHeaders bool          `yaml:"trust_proxy_headers"`
	} `yaml:"server"`

	Store struct {
		Backend string `yaml:"backend"`
	} `yaml:"store"`

	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		KeyPrefix string `yaml:"key_prefix"`
		PoolSize  int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Postgres struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"postgres"`

	RateLimit struct {
		Enabled           bool `yaml:"enabled"`
		RequestsPerMinute int  `yaml:"requests_per_minute"`
		Burst             int  `yaml:"burst"`
	} `yaml:"rate_limit"`

	Scan struct {
		QueueSize int           `yaml:"queue_size"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"scan"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func GetDefaultConfig() *Config {
	config := &Config{}

	config.Server.Port = "8080"
	config.Server.ReadTimeout = 10 * time.Second
	config.Server.WriteTimeout = 10 * time.Second
	config.Server.ShutdownTimeout = 15 * time.Second
	config.Server.AllowedOrigins = []string{"*"}

	config.Store.Backend = BackendMemory

	config.Redis.Addr = "localhost:6379"
	config.Redis.KeyPrefix = "qrlink:"
	config.Redis.PoolSize = 10

	config.Postgres.Host = "localhost"
	config.Postgres.Port = "5432"
	config.Postgres.SSLMode = "require"

	config.RateLimit.Enabled = true
	config.RateLimit.RequestsPerMinute = 60
	config.RateLimit.Burst = 10

	config.Scan.QueueSize = 1024
	config.Scan.Timeout = 5 * time.Second

	config.Log.Level = "info"
	config.Log.Format = "json"

	return config
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE, and finally environment variables.
func Load() (*Config, error) {
	cfg := GetDefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto cfg.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.BaseURL, "BASE_URL")
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	setString(&c.Store.Backend, "STORE_BACKEND")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Redis.KeyPrefix, "REDIS_KEY_PREFIX")

	setString(&c.Postgres.Host, "DATABASE_HOST")
	setString(&c.Postgres.Port, "DATABASE_PORT")
	setString(&c.Postgres.User, "DATABASE_USER")
	setString(&c.Postgres.Password, "DATABASE_PASSWORD")
	setString(&c.Postgres.Name, "DATABASE_NAME")
	setString(&c.Postgres.SSLMode, "DATABASE_SSLMODE")

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if err := setInt(&c.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&c.RateLimit.RequestsPerMinute, "RATE_LIMIT_RPM"); err != nil {
		return err
	}
	if err := setInt(&c.Scan.QueueSize, "SCAN_QUEUE_SIZE"); err != nil {
		return err
	}
	if err := setBool(&c.RateLimit.Enabled, "RATE_LIMIT_ENABLED"); err != nil {
		return err
	}
	if err := setBool(&c.Server.TrustProxyHeaders, "TRUST_PROXY_HEADERS"); err != nil {
		return err
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		c.Server.ShutdownTimeout = d
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit requests per minute must be positive")
	}
	if c.Scan.QueueSize <= 0 {
		return fmt.Errorf("scan queue size must be positive")
	}
	return nil
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	p := c.Postgres
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Name, p.SSLMode)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = i
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
