package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := Config{
		WSURL:            "ws://localhost:8000/ws",
		APIURL:           "http://localhost:8000",
		Symbol:           "BTC-USDT",
		LogFile:          "tradeterm.log",
		HandshakeTimeout: 15 * time.Second,
		DepthInterval:    2 * time.Second,
		MaxTrades:        50,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("TRADETERM_SYMBOL", "ETH-USDT")
	t.Setenv("TRADETERM_DEPTH_INTERVAL", "0")
	t.Setenv("TRADETERM_API_URL", "http://engine:9000")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Symbol != "ETH-USDT" {
		t.Fatalf("expected symbol ETH-USDT, got %q", cfg.Symbol)
	}
	if cfg.DepthInterval != 0 {
		t.Fatalf("expected depth polling disabled, got %v", cfg.DepthInterval)
	}
	if cfg.APIURL != "http://engine:9000" {
		t.Fatalf("unexpected api url %q", cfg.APIURL)
	}
}

func TestParseError(t *testing.T) {
	t.Setenv("TRADETERM_MAX_TRADES", "lots")

	_, err := Parse()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseRejectsNonPositiveMaxTrades(t *testing.T) {
	t.Setenv("TRADETERM_MAX_TRADES", "0")

	if _, err := Parse(); err == nil {
		t.Fatal("expected error for zero max trades")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TRADETERM_SYMBOL=SOL-USDT\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Cleanup(func() { os.Unsetenv("TRADETERM_SYMBOL") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Symbol != "SOL-USDT" {
		t.Fatalf("expected symbol from .env, got %q", cfg.Symbol)
	}
}

func TestLoadWithoutDotEnv(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := Load(); err != nil {
		t.Fatalf("load without .env: %v", err)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
