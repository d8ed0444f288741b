package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "SHEETD_"

func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}

	for name, dst := range map[string]*string{
		"HTTP_ADDR":    &cfg.HTTPAddr,
		"GRPC_ADDR":    &cfg.GRPCAddr,
		"DATABASE_DSN": &cfg.DatabaseDSN,
		"ALLOW_ORIGIN": &cfg.AllowOrigin,
		"LOG_LEVEL":    &cfg.LogLevel,
	} {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	// DATABASE_URL is the conventional name used by hosting platforms.
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		cfg.DatabaseDSN = v
	}

	var errs []error
	for name, dst := range map[string]*time.Duration{
		"REQUEST_TIMEOUT":  &cfg.RequestTimeout,
		"SHUTDOWN_TIMEOUT": &cfg.ShutdownTimeout,
		"HEALTH_INTERVAL":  &cfg.HealthInterval,
	} {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				continue
			}
			*dst = d
		}
	}
	return errors.Join(errs...)
}
