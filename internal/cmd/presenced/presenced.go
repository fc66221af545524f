// Package presenced parses presence server flags and composes transport
// entrypoints.
package presenced

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/presenced/internal/platform/cmd"
	"github.com/louisbranch/presenced/internal/server"
)

// Config holds presence server configuration.
type Config struct {
	HTTPAddr       string  `env:"PRESENCED_HTTP_ADDR"        envDefault:":8085"`
	FrameRateLimit float64 `env:"PRESENCED_FRAME_RATE_LIMIT" envDefault:"40"`
	FrameRateBurst int     `env:"PRESENCED_FRAME_RATE_BURST" envDefault:"40"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "presence HTTP listen address")
	fs.Float64Var(&cfg.FrameRateLimit, "frame-rate-limit", cfg.FrameRateLimit, "allowed inbound frames per second per session")
	fs.IntVar(&cfg.FrameRateBurst, "frame-rate-burst", cfg.FrameRateBurst, "inbound frame burst per session")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the presence app and serves the websocket transport.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePresence, func(context.Context) error {
		return server.Run(ctx, server.Config{
			HTTPAddr:       cfg.HTTPAddr,
			FrameRateLimit: cfg.FrameRateLimit,
			FrameRateBurst: cfg.FrameRateBurst,
		})
	})
}
