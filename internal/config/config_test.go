package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Integrator != "rk4" {
		t.Errorf("expected integrator rk4, got %s", cfg.Integrator)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.T1 <= cfg.T0 {
		t.Error("default span should be non-empty")
	}
	if cfg.Bound <= 0 {
		t.Error("default bound should be positive")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := []byte("model: examples/halfar.json\nintegrator: rk45\ndt: 0.001\nt1: 2.5\nruns: 8\nsample: true\n")
	if err := os.WriteFile(path, doc, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Model != "examples/halfar.json" {
		t.Errorf("model = %s", cfg.Model)
	}
	if cfg.Integrator != "rk45" || cfg.Dt != 0.001 || cfg.T1 != 2.5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.Sample || cfg.Runs != 8 {
		t.Errorf("sampling fields not applied: %+v", cfg)
	}
	if cfg.Bound != DefaultBound {
		t.Errorf("unset field should keep its default, got %f", cfg.Bound)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Model = "m.json"
	cfg.Seed = 1234

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Model != "m.json" || loaded.Seed != 1234 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
