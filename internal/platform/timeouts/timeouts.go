// Package timeouts defines shared timeout constants used across the process.
// Centralizing these values prevents drift between boundaries and makes the
// durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// StatsRequest caps a single statistics fetch from the CLI to the server.
const StatsRequest = 5 * time.Second
