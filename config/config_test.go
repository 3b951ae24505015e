package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Refresh.Interval != 2*time.Second {
		t.Errorf("interval = %v, want 2s", cfg.Refresh.Interval)
	}
	if cfg.Refresh.FailureThreshold != 3 {
		t.Errorf("failure threshold = %d, want 3", cfg.Refresh.FailureThreshold)
	}
	if cfg.Refresh.ThrottleWindow != 10*time.Second {
		t.Errorf("throttle window = %v, want 10s", cfg.Refresh.ThrottleWindow)
	}
	if len(cfg.Relays) != 3 {
		t.Fatalf("expected 3 default relays, got %d", len(cfg.Relays))
	}
	if cfg.Relays[0].EnvelopeField != "contents" {
		t.Errorf("first relay envelope = %q, want contents", cfg.Relays[0].EnvelopeField)
	}
}

func TestLoadYAML(t *testing.T) {
	data := `
refresh:
  interval: 5s
  failure_threshold: 4
feeds:
  - exchange: binance
    symbol: BTC-USDT
  - exchange: kucoin
    symbol: SHIB-USDT
relays:
  - name: allorigins
    url: https://api.allorigins.win/get?url=
    envelope_field: contents
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Refresh.Interval != 5*time.Second {
		t.Errorf("interval = %v, want 5s", cfg.Refresh.Interval)
	}
	if cfg.Refresh.FailureThreshold != 4 {
		t.Errorf("failure threshold = %d, want 4", cfg.Refresh.FailureThreshold)
	}
	// unset fields fall back to defaults
	if cfg.Refresh.ThrottleWindow != 10*time.Second {
		t.Errorf("throttle window = %v, want default 10s", cfg.Refresh.ThrottleWindow)
	}
	if len(cfg.Feeds) != 2 || cfg.Feeds[1].Symbol != "SHIB-USDT" {
		t.Errorf("feeds parsed wrong: %+v", cfg.Feeds)
	}
	if len(cfg.Relays) != 1 {
		t.Errorf("explicit relay list must not be extended, got %d", len(cfg.Relays))
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
