// Package main starts the presence service and handles termination.
//
// The process is a transport adapter around the in-memory presence registry;
// it owns no durable state and restarts empty.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	presencedcmd "github.com/louisbranch/presenced/internal/cmd/presenced"
)

func main() {
	cfg, err := presencedcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[PRESENCED] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := presencedcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
