package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds runtime settings for the Oskolki client.
type Config struct {
	Endpoint       string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	WriteTimeout   time.Duration

	CacheBackend  string
	CacheDSN      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// SessionSecret signs the stored session token. Empty means a random
	// key generated once and kept in the cache.
	SessionSecret string
	SessionTTL    time.Duration

	HolidayMerge       string
	ChangeDetection    string
	SyncVacancies      bool
	UniqueHolidayDates bool

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Prefix    string

	LogLevel string
}

func defaultCacheDSN() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".oskolki", "cache.db")
	}
	return filepath.Join(dir, "oskolki", "cache.db")
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.Endpoint = "http://127.0.0.1:8080/exec"
	c.RequestTimeout = 15 * time.Second
	c.PollInterval = 10 * time.Second
	c.WriteTimeout = 15 * time.Second
	c.CacheBackend = BackendSQLite
	c.CacheDSN = defaultCacheDSN()
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "oskolki:"
	c.SessionTTL = 10 * 365 * 24 * time.Hour
	c.HolidayMerge = "remote"
	c.ChangeDetection = "length"
	c.UniqueHolidayDates = true
	c.S3Region = "us-east-1"
	c.S3Prefix = "snapshots"
	c.LogLevel = "info"
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	switch c.CacheBackend {
	case BackendSQLite:
		if c.CacheDSN == "" {
			return fmt.Errorf("sqlite cache needs a dsn")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis cache needs an address")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	if c.PollInterval <= 0 || c.RequestTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("intervals and timeouts must be positive")
	}
	return nil
}

// Load builds a Config from defaults, environment, an optional file and
// args (without the program name). lookup reads environment variables.
func Load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads from the process environment and os.Args, reading a
// .env file first when one exists. It panics on invalid input.
func LoadConfig() *Config {
	loadDotEnv(".env")
	cfg, err := Load(os.Args[1:], os.LookupEnv)
	if err != nil {
		panic(err)
	}
	return cfg
}
