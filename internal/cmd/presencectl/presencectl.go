// Package presencectl implements the presence command line client: join a
// room and stream its events, or query server statistics.
package presencectl

import (
	"context"
	"flag"
	"io"
	"time"

	entrypoint "github.com/louisbranch/presenced/internal/platform/cmd"
)

// Config holds presencectl configuration.
type Config struct {
	Addr      string        `env:"PRESENCED_ADDR"      envDefault:"http://localhost:8085"`
	Room      string        `env:"PRESENCED_ROOM"`
	User      string        `env:"PRESENCED_USER"`
	Heartbeat time.Duration `env:"PRESENCED_HEARTBEAT" envDefault:"20s"`
	Watch     bool
	Stats     bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "presence server base URL")
	fs.StringVar(&cfg.Room, "room", cfg.Room, "room to join or watch")
	fs.StringVar(&cfg.User, "user", cfg.User, "username to join as")
	fs.DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "ping interval while connected")
	fs.BoolVar(&cfg.Watch, "watch", false, "observe room events using a generated username")
	fs.BoolVar(&cfg.Stats, "stats", false, "print server statistics and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the command selected by the configuration.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	if cfg.Stats {
		return runStats(ctx, cfg, out)
	}
	return runJoin(ctx, cfg, out, errOut)
}
