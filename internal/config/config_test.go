package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}
	if cfg.Sampler.Chains != 4 {
		t.Errorf("Expected 4 default chains, got %d", cfg.Sampler.Chains)
	}
	if cfg.Sampler.Iterations != 1000 || cfg.Sampler.Warmup != 1000 {
		t.Errorf("Unexpected default iterations/warmup: %d/%d", cfg.Sampler.Iterations, cfg.Sampler.Warmup)
	}
	if cfg.Sampler.Parallelism < 1 {
		t.Errorf("Parallelism should default to at least 1, got %d", cfg.Sampler.Parallelism)
	}
	if cfg.Data.Name != "roaches" {
		t.Errorf("Expected default dataset 'roaches', got %q", cfg.Data.Name)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SAMPLER_CHAINS", "2")
	t.Setenv("SAMPLER_ITERATIONS", "250")
	t.Setenv("SAMPLER_SEED", "99")
	t.Setenv("DATASET_FILE", "obs.xlsx")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Sampler.Chains != 2 || cfg.Sampler.Iterations != 250 {
		t.Errorf("Env overrides not applied: %+v", cfg.Sampler)
	}
	if cfg.Sampler.Seed != 99 {
		t.Errorf("Expected seed 99, got %d", cfg.Sampler.Seed)
	}
	if cfg.Data.File != "obs.xlsx" {
		t.Errorf("Expected file override, got %q", cfg.Data.File)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("SAMPLER_CHAINS", "0")
	if _, err := Load(); err == nil {
		t.Error("Expected error for zero chains")
	}
}

func TestLoadRejectsBlankDatasetName(t *testing.T) {
	t.Setenv("DATASET_NAME", "   ")
	if _, err := Load(); err == nil {
		t.Error("Expected error for blank dataset name")
	}
}
