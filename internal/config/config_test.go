package config

import (
	"os"
	"path/filepath"
	"testing"

	"pqagent/internal/env"
	"pqagent/internal/memmap"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Agent.LearningRate != 0.1 || cfg.Agent.DiscountFactor != 0.9 {
		t.Fatalf("unexpected agent defaults: %+v", cfg.Agent)
	}
	if cfg.Agent.Epsilon != 1.0 || cfg.Agent.EpsilonDecay != 0.9999 || cfg.Agent.MinEpsilon != 0.01 {
		t.Fatalf("unexpected exploration defaults: %+v", cfg.Agent)
	}
	if cfg.Timing.ActionHold != 10 || cfg.Timing.MenuLong != 600 || cfg.Timing.MenuMedium != 180 {
		t.Fatalf("unexpected timing defaults: %+v", cfg.Timing)
	}
	if cfg.Recovery != (RecoveryConfig{StallThreshold: 5, Timeout: 50, ProbeCost: 10}) {
		t.Fatalf("unexpected recovery defaults: %+v", cfg.Recovery)
	}
	if cfg.Loop.MaxConsecutiveErrors != 10 || cfg.Loop.ResetPresses != 3 || cfg.Loop.ResetHold != 10 {
		t.Fatalf("unexpected loop defaults: %+v", cfg.Loop)
	}
	if cfg.Sim != env.DefaultSettings() {
		t.Fatalf("unexpected sim defaults: %+v", cfg.Sim)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("storage driver = %q", cfg.Storage.Driver)
	}
	if cfg.Addresses() != memmap.Default() {
		t.Fatalf("memory map differs from default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
seed: 7
memory_map:
  game_state_flag: 0xD000
agent:
  learning_rate: 0.5
sim:
  sticky_chance: 0
  tick_cap: 100
storage:
  driver: sqlite
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 7 || cfg.Agent.LearningRate != 0.5 || cfg.Agent.DiscountFactor != 0.9 {
		t.Fatalf("unexpected values: seed=%d agent=%+v", cfg.Seed, cfg.Agent)
	}
	m := cfg.Addresses()
	if m.GameStateFlag != 0xD000 || m.PlayerHealthHi != memmap.Default().PlayerHealthHi {
		t.Fatalf("unexpected memory map: %+v", m)
	}
	if cfg.Sim.StickyChance != 0 || cfg.Sim.TickCap != 100 || cfg.Sim.StartHealth != env.DefaultSettings().StartHealth {
		t.Fatalf("unexpected sim settings: %+v", cfg.Sim)
	}
	if cfg.Storage.Path == "" {
		t.Fatalf("sqlite storage has no default path")
	}
}

func TestMemoryMapOverride(t *testing.T) {
	cfg, err := Load(writeConfig(t, "memory_map:\n  player_x: 0xC300\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := memmap.Default()
	want.PlayerX = 0xC300
	if got := cfg.Addresses(); got != want {
		t.Fatalf("addresses = %+v, want %+v", got, want)
	}
	if cfg.MemoryMap.PlayerX != 0xC300 || cfg.MemoryMap.EnemyX != 0 {
		t.Fatalf("configured overrides = %+v", cfg.MemoryMap)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"learning rate", "agent:\n  learning_rate: 2\n"},
		{"discount", "agent:\n  discount_factor: -1\n"},
		{"floor above start", "agent:\n  epsilon: 0.005\n"},
		{"storage driver", "storage:\n  driver: postgres\n"},
		{"shared address", "memory_map:\n  enemy_wins: 0xC242\n"},
		{"negative probe cost", "recovery:\n  probe_cost: -10\n"},
		{"negative timeout", "recovery:\n  timeout: -1\n"},
		{"negative stall threshold", "recovery:\n  stall_threshold: -5\n"},
		{"negative error limit", "loop:\n  max_consecutive_errors: -1\n"},
		{"negative action hold", "timing:\n  action_hold: -10\n"},
		{"negative menu wait", "timing:\n  menu_long: -600\n"},
		{"negative enemy cooldown", "sim:\n  enemy_cooldown: -1\n"},
		{"sticky chance", "sim:\n  sticky_chance: 1.5\n"},
		{"bad yaml", "agent: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cfg.Seed != 1337 {
		t.Fatalf("expected defaults, got seed %d", cfg.Seed)
	}

	if _, err := LoadOrDefault(writeConfig(t, "storage:\n  driver: nope\n")); err == nil {
		t.Fatalf("expected invalid file to fail")
	}
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", DefaultPath))
	if err != nil {
		t.Fatalf("load shipped config: %v", err)
	}
	if cfg.Addresses() != memmap.Default() {
		t.Fatalf("shipped memory map differs from default: %+v", cfg.Addresses())
	}
}
