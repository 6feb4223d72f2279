package config

import (
	"testing"

	"ledger-gateway/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("server port: got %s", cfg.Server.Port)
	}
	if cfg.DataSource.Kind != model.BackendRelational {
		t.Errorf("datasource kind: got %s", cfg.DataSource.Kind)
	}
	if cfg.Tally.Port != 9000 {
		t.Errorf("tally port: got %d", cfg.Tally.Port)
	}
	if cfg.Sink.AutoRefreshInterval != 60 {
		t.Errorf("sink refresh interval: got %d", cfg.Sink.AutoRefreshInterval)
	}
	if cfg.Fallback.Model != "llama3.2" {
		t.Errorf("fallback model: got %s", cfg.Fallback.Model)
	}
	if !cfg.Security.EnableRateLimit {
		t.Error("rate limiting should default on")
	}
}
