package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/oskolki/internal/flagx"
)

// parseFlags overlays cfg with command-line flags.
//
//	-a string   http address
//	-g string   grpc health address (empty disables)
//	-d string   database dsn
//	-o string   allowed CORS origin
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-o", "-l"})

	fs := flag.NewFlagSet("sheetd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "http address")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "grpc health address")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database dsn")
	fs.StringVar(&cfg.AllowOrigin, "o", cfg.AllowOrigin, "allowed CORS origin")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
