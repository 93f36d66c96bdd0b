package config

import (
	"os"
	"runtime"
	"strconv"

	"gopsis/domain/core"
	"gopsis/internal/errors"
)

// Config represents the complete workbench configuration
type Config struct {
	Sampler SamplerConfig
	Data    DataConfig
}

// SamplerConfig holds MCMC settings. Parallelism is carried here and passed
// explicitly to each fit call; there is no process-wide sampler state.
type SamplerConfig struct {
	Chains      int
	Iterations  int // kept iterations per chain, after warmup
	Warmup      int
	Seed        uint64
	Parallelism int
}

// DataConfig selects the observation source: a built-in dataset name, or a
// file path (xlsx/csv) which takes precedence when set.
type DataConfig struct {
	Name string
	File string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Sampler: SamplerConfig{
			Chains:      getEnvInt("SAMPLER_CHAINS", 4),
			Iterations:  getEnvInt("SAMPLER_ITERATIONS", 1000),
			Warmup:      getEnvInt("SAMPLER_WARMUP", 1000),
			Seed:        uint64(getEnvInt("SAMPLER_SEED", 1776)),
			Parallelism: getEnvInt("SAMPLER_PARALLELISM", runtime.NumCPU()),
		},
		Data: DataConfig{
			Name: getEnv("DATASET_NAME", "roaches"),
			File: getEnv("DATASET_FILE", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Sampler.Chains < 1 {
		return errors.ConfigInvalid("SAMPLER_CHAINS must be at least 1")
	}
	if c.Sampler.Iterations < 1 {
		return errors.ConfigInvalid("SAMPLER_ITERATIONS must be at least 1")
	}
	if c.Sampler.Warmup < 0 {
		return errors.ConfigInvalid("SAMPLER_WARMUP must not be negative")
	}
	if c.Sampler.Parallelism < 1 {
		return errors.ConfigInvalid("SAMPLER_PARALLELISM must be at least 1")
	}
	if c.Data.Name == "" && c.Data.File == "" {
		return errors.ConfigInvalid("either DATASET_NAME or DATASET_FILE is required")
	}
	if c.Data.Name != "" {
		if _, err := core.ParseDatasetKey(c.Data.Name); err != nil {
			return errors.ConfigInvalid("DATASET_NAME must not be blank")
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
