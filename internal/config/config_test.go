package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Settings.MixWeight != DefaultMixWeight {
		t.Errorf("expected mix weight %v, got %v", DefaultMixWeight, cfg.Settings.MixWeight)
	}
	if cfg.Settings.TopK != DefaultTopK {
		t.Errorf("expected topK %d, got %d", DefaultTopK, cfg.Settings.TopK)
	}
	if cfg.Settings.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("expected timeout %d, got %d", DefaultTimeoutSeconds, cfg.Settings.TimeoutSeconds)
	}
	if cfg.Settings.ModelRetentionDays != DefaultModelRetentionDays {
		t.Errorf("expected retention %d, got %d", DefaultModelRetentionDays, cfg.Settings.ModelRetentionDays)
	}
}

func TestLoadFrom_AppliesDefaultsToPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"settings":{"topK":25}}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if cfg.Settings.TopK != 25 {
		t.Errorf("explicit topK lost: %d", cfg.Settings.TopK)
	}
	if cfg.Settings.MixWeight != DefaultMixWeight {
		t.Errorf("missing mix weight should default, got %v", cfg.Settings.MixWeight)
	}
}

func TestLoadFrom_NegativeTopKPreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"settings":{"topK":-1}}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	// Negative means "return all"; it must not be replaced by the default.
	if cfg.Settings.TopK != -1 {
		t.Errorf("expected topK -1 preserved, got %d", cfg.Settings.TopK)
	}
}

func TestLoadFrom_Missing(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{broken`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := NewConfig()
	cfg.DataDir = "/tmp/recommender-data"
	cfg.Settings.TopK = 3

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if loaded.DataDir != cfg.DataDir {
		t.Errorf("data dir mismatch: %q", loaded.DataDir)
	}
	if loaded.Settings.TopK != 3 {
		t.Errorf("topK mismatch: %d", loaded.Settings.TopK)
	}
}

func TestLoadOrCreate_CreatesDefaultFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("LoadOrCreate returned error: %v", err)
	}
	if cfg.Settings.TopK != DefaultTopK {
		t.Errorf("expected default config, got %+v", cfg.Settings)
	}

	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Fatalf("GetDefaultConfigPath returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}
}

func TestLoadOrCreate_DoesNotOverwriteBrokenConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, ".luxestream-recommender.json")
	if err := os.WriteFile(path, []byte(`{broken`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadOrCreate(); err == nil {
		t.Fatal("expected error for broken existing config")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to re-read config: %v", err)
	}
	if string(data) != `{broken` {
		t.Error("broken config file was overwritten")
	}
}

func TestResolveDataDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := NewConfig()
	dir, err := cfg.ResolveDataDir()
	if err != nil {
		t.Fatalf("ResolveDataDir returned error: %v", err)
	}
	if dir != filepath.Join(home, ".luxestream-recommender") {
		t.Errorf("unexpected default data dir: %q", dir)
	}

	cfg.DataDir = "/explicit/path"
	dir, err = cfg.ResolveDataDir()
	if err != nil {
		t.Fatalf("ResolveDataDir returned error: %v", err)
	}
	if dir != "/explicit/path" {
		t.Errorf("explicit data dir ignored: %q", dir)
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := NewConfig()
	cfg.DataDir = "/data"

	path, err := cfg.DatabasePath()
	if err != nil {
		t.Fatalf("DatabasePath returned error: %v", err)
	}
	if path != filepath.Join("/data", "models.db") {
		t.Errorf("unexpected database path: %q", path)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := NewConfig()

	if cfg.WorkerTimeout() != time.Duration(DefaultTimeoutSeconds)*time.Second {
		t.Errorf("unexpected worker timeout: %v", cfg.WorkerTimeout())
	}
	if cfg.ModelRetention() != time.Duration(DefaultModelRetentionDays)*24*time.Hour {
		t.Errorf("unexpected model retention: %v", cfg.ModelRetention())
	}
}
