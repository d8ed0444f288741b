package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "OSKOLKI_"

// loadDotEnv exports variables from path unless they are already set. A
// missing file is not an error.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}

	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(envPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("ENDPOINT", &cfg.Endpoint)
	dur("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	dur("POLL_INTERVAL", &cfg.PollInterval)
	dur("WRITE_TIMEOUT", &cfg.WriteTimeout)
	str("CACHE_BACKEND", &cfg.CacheBackend)
	str("CACHE_DSN", &cfg.CacheDSN)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	str("REDIS_PREFIX", &cfg.RedisPrefix)
	if v, ok := lookup(envPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sREDIS_DB: %w", envPrefix, err))
		} else {
			cfg.RedisDB = n
		}
	}
	str("SESSION_SECRET", &cfg.SessionSecret)
	dur("SESSION_TTL", &cfg.SessionTTL)
	str("HOLIDAY_MERGE", &cfg.HolidayMerge)
	str("CHANGE_DETECTION", &cfg.ChangeDetection)
	boolean("SYNC_VACANCIES", &cfg.SyncVacancies)
	boolean("UNIQUE_HOLIDAY_DATES", &cfg.UniqueHolidayDates)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_REGION", &cfg.S3Region)
	str("S3_ENDPOINT", &cfg.S3Endpoint)
	str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.S3SecretKey)
	str("S3_PREFIX", &cfg.S3Prefix)
	str("LOG_LEVEL", &cfg.LogLevel)

	return errors.Join(errs...)
}
