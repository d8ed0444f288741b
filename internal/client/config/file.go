package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/flagx"
	"github.com/dmitrijs2005/oskolki/internal/timex"
	"sigs.k8s.io/yaml"
)

// FileConfig is the on-disk shape. Pointers mark which keys were present
// so absent keys keep earlier values. YAML is converted to JSON before
// decoding, so the json tags apply to both formats.
type FileConfig struct {
	Endpoint       *string         `json:"endpoint"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	PollInterval   *timex.Duration `json:"poll_interval"`
	WriteTimeout   *timex.Duration `json:"write_timeout"`

	CacheBackend  *string `json:"cache_backend"`
	CacheDSN      *string `json:"cache_dsn"`
	RedisAddr     *string `json:"redis_addr"`
	RedisPassword *string `json:"redis_password"`
	RedisDB       *int    `json:"redis_db"`
	RedisPrefix   *string `json:"redis_prefix"`

	SessionSecret *string         `json:"session_secret"`
	SessionTTL    *timex.Duration `json:"session_ttl"`

	HolidayMerge       *string `json:"holiday_merge"`
	ChangeDetection    *string `json:"change_detection"`
	SyncVacancies      *bool   `json:"sync_vacancies"`
	UniqueHolidayDates *bool   `json:"unique_holiday_dates"`

	S3Bucket    *string `json:"s3_bucket"`
	S3Region    *string `json:"s3_region"`
	S3Endpoint  *string `json:"s3_endpoint"`
	S3AccessKey *string `json:"s3_access_key"`
	S3SecretKey *string `json:"s3_secret_key"`
	S3Prefix    *string `json:"s3_prefix"`

	LogLevel *string `json:"log_level"`
}

func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	fc.apply(cfg)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}

func (fc *FileConfig) apply(cfg *Config) {
	set(&cfg.Endpoint, fc.Endpoint)
	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	setDuration(&cfg.PollInterval, fc.PollInterval)
	setDuration(&cfg.WriteTimeout, fc.WriteTimeout)
	set(&cfg.CacheBackend, fc.CacheBackend)
	set(&cfg.CacheDSN, fc.CacheDSN)
	set(&cfg.RedisAddr, fc.RedisAddr)
	set(&cfg.RedisPassword, fc.RedisPassword)
	set(&cfg.RedisDB, fc.RedisDB)
	set(&cfg.RedisPrefix, fc.RedisPrefix)
	set(&cfg.SessionSecret, fc.SessionSecret)
	setDuration(&cfg.SessionTTL, fc.SessionTTL)
	set(&cfg.HolidayMerge, fc.HolidayMerge)
	set(&cfg.ChangeDetection, fc.ChangeDetection)
	set(&cfg.SyncVacancies, fc.SyncVacancies)
	set(&cfg.UniqueHolidayDates, fc.UniqueHolidayDates)
	set(&cfg.S3Bucket, fc.S3Bucket)
	set(&cfg.S3Region, fc.S3Region)
	set(&cfg.S3Endpoint, fc.S3Endpoint)
	set(&cfg.S3AccessKey, fc.S3AccessKey)
	set(&cfg.S3SecretKey, fc.S3SecretKey)
	set(&cfg.S3Prefix, fc.S3Prefix)
	set(&cfg.LogLevel, fc.LogLevel)
}
