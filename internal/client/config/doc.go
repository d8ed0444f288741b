// Package config loads runtime configuration for the Oskolki client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory and OSKOLKI_* environment
//     variables.
//  3. Optional JSON or YAML file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string         sheet endpoint url
//	-t duration       remote request timeout
//	-i duration       admin polling interval
//	-cache string     cache backend: sqlite or redis
//	-dsn string       sqlite file path
//	-redis string     redis address
//	-merge string     holiday merge policy
//	-detect string    change detection: length or hash
//	-sync-vacancies   write vacancies to the remote sheet (use -sync-vacancies=false to disable)
//	-unique-dates     reject duplicate holiday dates
//	-s3-bucket string snapshot bucket; empty disables backup
//	-s3-endpoint string
//	-log-level string
//
// # File schema
//
// Durations use timex.Duration, so they are written either as strings like
// "10s" or as integer nanoseconds:
//
//	endpoint: https://script.google.com/macros/s/XXX/exec
//	poll_interval: 10s
//	cache_backend: redis
//	redis_addr: 127.0.0.1:6379
//	holiday_merge: union-remote-wins
package config
