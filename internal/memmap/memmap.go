// Package memmap names the PowerQuest work RAM locations the agent reads.
// Addresses were found by memory analysis with mGBA.
package memmap

import "fmt"

// Map holds the address of every game fact the agent reads. It is a value
// type: once handed to a reader it cannot be changed from outside.
type Map struct {
	PlayerHealthHi uint16 `yaml:"player_health_hi"`
	PlayerHealthLo uint16 `yaml:"player_health_lo"`
	EnemyHealthHi  uint16 `yaml:"enemy_health_hi"`
	EnemyHealthLo  uint16 `yaml:"enemy_health_lo"`
	PlayerWins     uint16 `yaml:"player_wins"`
	EnemyWins      uint16 `yaml:"enemy_wins"`
	PlayerX        uint16 `yaml:"player_x"`
	PlayerY        uint16 `yaml:"player_y"`
	EnemyX         uint16 `yaml:"enemy_x"`
	EnemyY         uint16 `yaml:"enemy_y"`
	GameStateFlag  uint16 `yaml:"game_state_flag"`
}

// Default returns the PowerQuest (DMG, English) memory map
func Default() Map {
	return Map{
		PlayerHealthHi: 0xC292,
		PlayerHealthLo: 0xC293,
		EnemyHealthHi:  0xC2FB,
		EnemyHealthLo:  0xC2FC,
		PlayerWins:     0xC242,
		EnemyWins:      0xC243,
		PlayerX:        0xC28A,
		PlayerY:        0xC28B,
		EnemyX:         0xC2F3,
		EnemyY:         0xC2F4,
		GameStateFlag:  0xC0A3,
	}
}

// Named returns every address keyed by its field name
func (m Map) Named() map[string]uint16 {
	return map[string]uint16{
		"player_health_hi": m.PlayerHealthHi,
		"player_health_lo": m.PlayerHealthLo,
		"enemy_health_hi":  m.EnemyHealthHi,
		"enemy_health_lo":  m.EnemyHealthLo,
		"player_wins":      m.PlayerWins,
		"enemy_wins":       m.EnemyWins,
		"player_x":         m.PlayerX,
		"player_y":         m.PlayerY,
		"enemy_x":          m.EnemyX,
		"enemy_y":          m.EnemyY,
		"game_state_flag":  m.GameStateFlag,
	}
}

// Validate checks that no two fields share an address and that none is zero
func (m Map) Validate() error {
	seen := make(map[uint16]string)
	for name, addr := range m.Named() {
		if addr == 0 {
			return fmt.Errorf("memory map: %s has no address", name)
		}
		if other, ok := seen[addr]; ok {
			return fmt.Errorf("memory map: %s and %s share address 0x%04X", name, other, addr)
		}
		seen[addr] = name
	}
	return nil
}

// Merge returns m with every non-zero field of o applied on top
func (m Map) Merge(o Map) Map {
	set := func(dst *uint16, v uint16) {
		if v != 0 {
			*dst = v
		}
	}
	set(&m.PlayerHealthHi, o.PlayerHealthHi)
	set(&m.PlayerHealthLo, o.PlayerHealthLo)
	set(&m.EnemyHealthHi, o.EnemyHealthHi)
	set(&m.EnemyHealthLo, o.EnemyHealthLo)
	set(&m.PlayerWins, o.PlayerWins)
	set(&m.EnemyWins, o.EnemyWins)
	set(&m.PlayerX, o.PlayerX)
	set(&m.PlayerY, o.PlayerY)
	set(&m.EnemyX, o.EnemyX)
	set(&m.EnemyY, o.EnemyY)
	set(&m.GameStateFlag, o.GameStateFlag)
	return m
}
