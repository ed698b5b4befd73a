package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 0.01
	DefaultT1         = 10.0
	DefaultIntegrator = "rk4"
	DefaultBound      = 1e9
	DefaultRuns       = 1
)

type Config struct {
	Model            string  `yaml:"model"` // path to the exchange document
	Integrator       string  `yaml:"integrator"`
	T0               float64 `yaml:"t0"`
	T1               float64 `yaml:"t1"`
	Dt               float64 `yaml:"dt"`
	Seed             int64   `yaml:"seed"`
	Runs             int     `yaml:"runs"`
	Sample           bool    `yaml:"sample"`
	FallbackDefaults bool    `yaml:"fallback_defaults"`
	Adaptive         bool    `yaml:"adaptive"`
	Tolerance        float64 `yaml:"tolerance"`
	Bound            float64 `yaml:"bound"`
	DataDir          string  `yaml:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: DefaultIntegrator,
		T0:         0.0,
		T1:         DefaultT1,
		Dt:         DefaultDt,
		Runs:       DefaultRuns,
		Tolerance:  1e-6,
		Bound:      DefaultBound,
		DataDir:    ".ratenet",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
