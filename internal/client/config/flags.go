package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/oskolki/internal/flagx"
)

var knownFlags = []string{
	"-a", "-t", "-i", "-cache", "-dsn", "-redis", "-merge", "-detect",
	"-sync-vacancies", "-unique-dates", "-s3-bucket", "-s3-endpoint", "-log-level",
}

// parseFlags overlays cfg with command-line flags. Arguments it does not
// know, such as -c, are filtered out first. Boolean flags must use the
// -name=value form to be set to false.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("oskolki", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Endpoint, "a", cfg.Endpoint, "sheet endpoint url")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "remote request timeout")
	fs.DurationVar(&cfg.PollInterval, "i", cfg.PollInterval, "admin polling interval")
	fs.StringVar(&cfg.CacheBackend, "cache", cfg.CacheBackend, "cache backend: sqlite or redis")
	fs.StringVar(&cfg.CacheDSN, "dsn", cfg.CacheDSN, "sqlite cache file")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.HolidayMerge, "merge", cfg.HolidayMerge, "holiday merge policy")
	fs.StringVar(&cfg.ChangeDetection, "detect", cfg.ChangeDetection, "change detection: length or hash")
	fs.BoolVar(&cfg.SyncVacancies, "sync-vacancies", cfg.SyncVacancies, "sync vacancies with the remote sheet")
	fs.BoolVar(&cfg.UniqueHolidayDates, "unique-dates", cfg.UniqueHolidayDates, "reject duplicate holiday dates")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "snapshot bucket")
	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "S3-compatible endpoint")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	return fs.Parse(args)
}
