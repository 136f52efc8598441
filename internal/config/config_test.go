package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "truthchain.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Errorf("unexpected server address %q", cfg.Server.Address)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("unexpected log level %q", cfg.Logging.Level)
	}
	if cfg.Analysis.Delay() != 1500*time.Millisecond {
		t.Errorf("unexpected analysis delay %s", cfg.Analysis.Delay())
	}
	if cfg.Feed.Driver != "memory" || cfg.Feed.Capacity != 50 {
		t.Errorf("unexpected feed defaults %q cap %d", cfg.Feed.Driver, cfg.Feed.Capacity)
	}
	if !cfg.Feed.SeedEnabled() {
		t.Error("seed must default to enabled")
	}
	if cfg.Feed.Redis.Key != "truthchain:feed" {
		t.Errorf("unexpected redis key %q", cfg.Feed.Redis.Key)
	}
	if cfg.Attestation.Store.Driver != "memory" {
		t.Errorf("unexpected store driver %q", cfg.Attestation.Store.Driver)
	}
	if cfg.Attestation.ConfirmTimeout() != 0 {
		t.Error("confirm timeout must default to waiting indefinitely")
	}
	if cfg.Identity.PrivateKeyEnv != "TRUTHCHAIN_PRIVATE_KEY" {
		t.Errorf("unexpected key env %q", cfg.Identity.PrivateKeyEnv)
	}
	if cfg.Identity.ChainID != 11155111 {
		t.Errorf("unexpected chain id %d", cfg.Identity.ChainID)
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	path := writeConfig(t, `{
  "analysis": {"vocabulary_path": "vocab.json"},
  "ledger": {"chain_config": "chains.yaml"}
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	baseDir := filepath.Dir(path)
	if cfg.Analysis.VocabularyPath != filepath.Join(baseDir, "vocab.json") {
		t.Errorf("vocabulary path not resolved: %q", cfg.Analysis.VocabularyPath)
	}
	if cfg.Ledger.ChainConfig != filepath.Join(baseDir, "chains.yaml") {
		t.Errorf("chain config not resolved: %q", cfg.Ledger.ChainConfig)
	}
}

func TestLoadHonorsExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{
  "server": {"address": ":9999"},
  "analysis": {"delay_ms": 10},
  "feed": {"driver": "redis", "capacity": 5, "seed": false},
  "attestation": {"confirm_timeout_seconds": 30}
}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Address != ":9999" {
		t.Errorf("unexpected address %q", cfg.Server.Address)
	}
	if cfg.Analysis.Delay() != 10*time.Millisecond {
		t.Errorf("unexpected delay %s", cfg.Analysis.Delay())
	}
	if cfg.Feed.Driver != "redis" || cfg.Feed.Capacity != 5 {
		t.Errorf("unexpected feed config %q cap %d", cfg.Feed.Driver, cfg.Feed.Capacity)
	}
	if cfg.Feed.SeedEnabled() {
		t.Error("seed=false must disable seeding")
	}
	if cfg.Attestation.ConfirmTimeout() != 30*time.Second {
		t.Errorf("unexpected confirm timeout %s", cfg.Attestation.ConfirmTimeout())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	if _, err := Load(writeConfig(t, `{not json`)); err == nil {
		t.Fatal("expected an error for malformed json")
	}
}
