package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/presenced/internal/cmd/presencectl"
	"github.com/louisbranch/presenced/internal/platform/config"
)

func main() {
	cfg, err := presencectl.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := presencectl.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("presencectl: %v", err)
	}
}
