package config

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/oskolki/internal/flagx"
	"github.com/dmitrijs2005/oskolki/internal/timex"
	"sigs.k8s.io/yaml"
)

// FileConfig is the on-disk shape; absent keys keep earlier values.
type FileConfig struct {
	HTTPAddr        *string         `json:"http_addr"`
	GRPCAddr        *string         `json:"grpc_addr"`
	DatabaseDSN     *string         `json:"database_dsn"`
	AllowOrigin     *string         `json:"allow_origin"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
	HealthInterval  *timex.Duration `json:"health_interval"`
	LogLevel        *string         `json:"log_level"`
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

	for _, s := range []struct {
		dst *string
		v   *string
	}{
		{&cfg.HTTPAddr, fc.HTTPAddr},
		{&cfg.GRPCAddr, fc.GRPCAddr},
		{&cfg.DatabaseDSN, fc.DatabaseDSN},
		{&cfg.AllowOrigin, fc.AllowOrigin},
		{&cfg.LogLevel, fc.LogLevel},
	} {
		if s.v != nil {
			*s.dst = *s.v
		}
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.ShutdownTimeout != nil {
		cfg.ShutdownTimeout = fc.ShutdownTimeout.Duration
	}
	if fc.HealthInterval != nil {
		cfg.HealthInterval = fc.HealthInterval.Duration
	}
	return nil
}
