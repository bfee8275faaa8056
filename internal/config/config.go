// Package config loads the runtime knobs for training and generation
// runs from YAML, with CLI overrides layered on top.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for a run.
type Config struct {
	Seed      int64   `yaml:"seed"`
	Threads   int     `yaml:"threads"` // 0 means all CPUs
	DataDir   string  `yaml:"data_dir"`
	Epochs    int     `yaml:"epochs"`
	BatchSize int     `yaml:"batch_size"`
	LR        float64 `yaml:"learning_rate"`
	LogEvery  int     `yaml:"log_every"`

	Model ModelConfig `yaml:"model"`
}

// ModelConfig selects and sizes the recurrent model.
type ModelConfig struct {
	Cell     string `yaml:"cell"` // simple, gru, lstm
	Units    int    `yaml:"units"`
	SeqLen   int    `yaml:"seq_len"`
	Stateful bool   `yaml:"stateful"`
	Kernel   string `yaml:"kernel"` // auto, generic, fused
}

// Overrides captures CLI-supplied values. Zero values leave the file
// setting untouched.
type Overrides struct {
	Seed      int64
	Threads   int
	DataDir   string
	Epochs    int
	BatchSize int
	LR        float64
}

// Default returns a runnable configuration without any file.
func Default() *Config {
	return &Config{
		Seed:      1,
		Epochs:    3,
		BatchSize: 32,
		LR:        0.001,
		LogEvery:  100,
		Model: ModelConfig{
			Cell:   "lstm",
			Units:  64,
			SeqLen: 32,
			Kernel: "auto",
		},
	}
}

// Load reads and validates a Config from YAML. Missing keys keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.Threads > 0 {
		c.Threads = o.Threads
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LR > 0 {
		c.LR = o.LR
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LR <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %g)", c.LR)
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 100
	}
	switch c.Model.Cell {
	case "simple", "gru", "lstm":
	default:
		return fmt.Errorf("unknown cell %q (want simple, gru, or lstm)", c.Model.Cell)
	}
	switch c.Model.Kernel {
	case "", "auto", "generic", "fused":
	default:
		return fmt.Errorf("unknown kernel %q (want auto, generic, or fused)", c.Model.Kernel)
	}
	if c.Model.Units <= 0 {
		return fmt.Errorf("model units must be > 0 (got %d)", c.Model.Units)
	}
	if c.Model.SeqLen <= 0 {
		return fmt.Errorf("seq_len must be > 0 (got %d)", c.Model.SeqLen)
	}
	return nil
}
