package presenced

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("presenced", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":8085" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.FrameRateLimit != 40 {
		t.Fatalf("expected default frame rate limit, got %v", cfg.FrameRateLimit)
	}
	if cfg.FrameRateBurst != 40 {
		t.Fatalf("expected default frame rate burst, got %d", cfg.FrameRateBurst)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("PRESENCED_HTTP_ADDR", "env-addr")
	t.Setenv("PRESENCED_FRAME_RATE_LIMIT", "10")

	fs := flag.NewFlagSet("presenced", flag.ContinueOnError)
	args := []string{
		"-http-addr", "flag-addr",
		"-frame-rate-burst", "5",
	}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-addr" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.FrameRateLimit != 10 {
		t.Fatalf("expected env frame rate limit, got %v", cfg.FrameRateLimit)
	}
	if cfg.FrameRateBurst != 5 {
		t.Fatalf("expected flag frame rate burst, got %d", cfg.FrameRateBurst)
	}
}
