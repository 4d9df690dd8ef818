package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pqagent/internal/env"
	"pqagent/internal/memmap"
)

// DefaultPath is where the agent looks for its configuration
const DefaultPath = "configs/powerquest.yaml"

// Config is the root configuration structure
type Config struct {
	Seed      int64          `yaml:"seed"`
	ROM       string         `yaml:"rom"`
	MemoryMap memmap.Map     `yaml:"memory_map"`
	Agent     AgentConfig    `yaml:"agent"`
	Timing    TimingConfig   `yaml:"timing"`
	Recovery  RecoveryConfig `yaml:"recovery"`
	Loop      LoopConfig     `yaml:"loop"`
	Sim       env.Settings   `yaml:"sim"`
	Logging   LogConfig      `yaml:"logging"`
	Storage   StorageConfig  `yaml:"storage"`
}

// AgentConfig defines the Q-learning parameters
type AgentConfig struct {
	LearningRate   float64 `yaml:"learning_rate"`
	DiscountFactor float64 `yaml:"discount_factor"`
	Epsilon        float64 `yaml:"epsilon"`
	EpsilonDecay   float64 `yaml:"epsilon_decay"`
	MinEpsilon     float64 `yaml:"min_epsilon"`
}

// TimingConfig defines how many frames inputs are held and menus waited on
type TimingConfig struct {
	ActionHold   int  `yaml:"action_hold"`
	MenuTiny     int  `yaml:"menu_tiny"`
	MenuShort    int  `yaml:"menu_short"`
	MenuMedium   int  `yaml:"menu_medium"`
	MenuLong     int  `yaml:"menu_long"`
	SkipNavigate bool `yaml:"skip_navigate"`
}

// RecoveryConfig defines dialogue recovery limits
type RecoveryConfig struct {
	StallThreshold int `yaml:"stall_threshold"`
	Timeout        int `yaml:"timeout"`
	ProbeCost      int `yaml:"probe_cost"`
}

// LoopConfig defines the control loop's failure handling
type LoopConfig struct {
	MaxConsecutiveErrors int `yaml:"max_consecutive_errors"`
	ResetPresses         int `yaml:"reset_presses"`
	ResetHold            int `yaml:"reset_hold"`
	LogEvery             int `yaml:"log_every"` // log the game state every n iterations
}

// LogConfig defines logging parameters
type LogConfig struct {
	Echo       bool   `yaml:"echo"`
	CSVPath    string `yaml:"csv_path"`
	JSONPath   string `yaml:"json_path"`
	ReplayPath string `yaml:"replay_path"`
}

// StorageConfig selects where run history is kept
type StorageConfig struct {
	Driver string `yaml:"driver"` // memory|sqlite
	Path   string `yaml:"path"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{Sim: env.DefaultSettings()}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML config file and returns a Config
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// the simulation has fields where zero is meaningful, so start from its
	// defaults and let the file override them
	cfg := &Config{Sim: env.DefaultSettings()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Apply defaults
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists and returns the defaults if it
// doesn't. Any other error is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	if cfg.Seed == 0 {
		cfg.Seed = 1337
	}
	if cfg.ROM == "" {
		cfg.ROM = "PowerQuest.gb"
	}
	if cfg.Agent.LearningRate == 0 {
		cfg.Agent.LearningRate = 0.1
	}
	if cfg.Agent.DiscountFactor == 0 {
		cfg.Agent.DiscountFactor = 0.9
	}
	if cfg.Agent.Epsilon == 0 {
		cfg.Agent.Epsilon = 1.0
	}
	if cfg.Agent.EpsilonDecay == 0 {
		cfg.Agent.EpsilonDecay = 0.9999
	}
	if cfg.Agent.MinEpsilon == 0 {
		cfg.Agent.MinEpsilon = 0.01
	}
	if cfg.Timing.ActionHold == 0 {
		cfg.Timing.ActionHold = 10
	}
	if cfg.Timing.MenuTiny == 0 {
		cfg.Timing.MenuTiny = 5
	}
	if cfg.Timing.MenuShort == 0 {
		cfg.Timing.MenuShort = 20
	}
	if cfg.Timing.MenuMedium == 0 {
		cfg.Timing.MenuMedium = 180
	}
	if cfg.Timing.MenuLong == 0 {
		cfg.Timing.MenuLong = 600
	}
	if cfg.Recovery.StallThreshold == 0 {
		cfg.Recovery.StallThreshold = 5
	}
	if cfg.Recovery.Timeout == 0 {
		cfg.Recovery.Timeout = 50
	}
	if cfg.Recovery.ProbeCost == 0 {
		cfg.Recovery.ProbeCost = 10
	}
	if cfg.Loop.MaxConsecutiveErrors == 0 {
		cfg.Loop.MaxConsecutiveErrors = 10
	}
	if cfg.Loop.ResetPresses == 0 {
		cfg.Loop.ResetPresses = 3
	}
	if cfg.Loop.ResetHold == 0 {
		cfg.Loop.ResetHold = 10
	}
	if cfg.Loop.LogEvery == 0 {
		cfg.Loop.LogEvery = 1
	}

	if cfg.Sim.StartHealth <= 0 {
		cfg.Sim.StartHealth = env.DefaultSettings().StartHealth
	}

	if cfg.Logging.CSVPath == "" {
		cfg.Logging.CSVPath = "runs/rounds.csv"
	}
	if cfg.Logging.JSONPath == "" {
		cfg.Logging.JSONPath = "runs/rounds.jsonl"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "memory"
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.Path == "" {
		cfg.Storage.Path = "runs/history.db"
	}
}

// Validate checks values that have no sensible default
func (c *Config) Validate() error {
	if c.Agent.LearningRate <= 0 || c.Agent.LearningRate > 1 {
		return fmt.Errorf("agent.learning_rate must be in (0, 1], got %v", c.Agent.LearningRate)
	}
	if c.Agent.DiscountFactor < 0 || c.Agent.DiscountFactor > 1 {
		return fmt.Errorf("agent.discount_factor must be in [0, 1], got %v", c.Agent.DiscountFactor)
	}
	if c.Agent.EpsilonDecay <= 0 || c.Agent.EpsilonDecay > 1 {
		return fmt.Errorf("agent.epsilon_decay must be in (0, 1], got %v", c.Agent.EpsilonDecay)
	}
	if c.Agent.MinEpsilon > c.Agent.Epsilon {
		return fmt.Errorf("agent.min_epsilon (%v) is above agent.epsilon (%v)", c.Agent.MinEpsilon, c.Agent.Epsilon)
	}
	for _, v := range []struct {
		name  string
		value int
	}{
		{"timing.action_hold", c.Timing.ActionHold},
		{"recovery.stall_threshold", c.Recovery.StallThreshold},
		{"recovery.timeout", c.Recovery.Timeout},
		{"recovery.probe_cost", c.Recovery.ProbeCost},
		{"loop.max_consecutive_errors", c.Loop.MaxConsecutiveErrors},
		{"loop.reset_presses", c.Loop.ResetPresses},
		{"loop.reset_hold", c.Loop.ResetHold},
	} {
		if v.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", v.name, v.value)
		}
	}
	for _, v := range []struct {
		name  string
		value int
	}{
		{"timing.menu_tiny", c.Timing.MenuTiny},
		{"timing.menu_short", c.Timing.MenuShort},
		{"timing.menu_medium", c.Timing.MenuMedium},
		{"timing.menu_long", c.Timing.MenuLong},
		{"loop.log_every", c.Loop.LogEvery},
	} {
		if v.value < 0 {
			return fmt.Errorf("%s must not be negative, got %d", v.name, v.value)
		}
	}
	if err := c.Sim.Validate(); err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	switch c.Storage.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("storage.driver must be memory or sqlite, got %q", c.Storage.Driver)
	}
	return c.Addresses().Validate()
}

// Addresses returns the default memory map with any configured overrides
func (c *Config) Addresses() memmap.Map {
	return memmap.Default().Merge(c.MemoryMap)
}
