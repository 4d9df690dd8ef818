// Package env is a simulated PowerQuest arena. It implements
// emulator.Driver so that the agent can be run and tested without a Game Boy
// core: the simulation keeps a 64KiB memory image in which it publishes the
// same facts, at the same addresses, that the real cartridge does.
package env

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"pqagent/internal/emulator"
	"pqagent/internal/gamestate"
	"pqagent/internal/memmap"
)

// Arena geometry
const (
	ArenaMinX   = 8
	ArenaMaxX   = 152
	GroundY     = 96
	JumpHeight  = 16
	StartPlayer = 40
	StartEnemy  = 120
)

// Settings configures the simulation
type Settings struct {
	Seed          int64   `yaml:"seed"`
	TickCap       int     `yaml:"tick_cap"` // 0 runs until Quit()
	StartHealth   int     `yaml:"start_health"`
	StrongDamage  int     `yaml:"strong_damage"`
	StrongReach   int     `yaml:"strong_reach"`
	LightDamage   int     `yaml:"light_damage"`
	LightReach    int     `yaml:"light_reach"`
	EnemyDamage   int     `yaml:"enemy_damage"`
	EnemyReach    int     `yaml:"enemy_reach"`
	EnemyCooldown int     `yaml:"enemy_cooldown"`
	WinsPerMatch  int     `yaml:"wins_per_match"`
	MenuPresses   int     `yaml:"menu_presses"`
	DialogueLines int     `yaml:"dialogue_lines"`
	StickyChance  float64 `yaml:"sticky_chance"` // chance a dialogue line ignores A
}

// DefaultSettings returns settings that produce rounds of a few hundred
// decisions
func DefaultSettings() Settings {
	return Settings{
		Seed:          1337,
		StartHealth:   24000,
		StrongDamage:  1500,
		StrongReach:   32,
		LightDamage:   700,
		LightReach:    48,
		EnemyDamage:   1000,
		EnemyReach:    32,
		EnemyCooldown: 30,
		WinsPerMatch:  2,
		MenuPresses:   3,
		DialogueLines: 3,
		StickyChance:  0.1,
	}
}

// Validate rejects settings the simulation cannot run with
func (s Settings) Validate() error {
	for _, v := range []struct {
		name  string
		value int
	}{
		{"tick_cap", s.TickCap},
		{"start_health", s.StartHealth},
		{"strong_damage", s.StrongDamage},
		{"strong_reach", s.StrongReach},
		{"light_damage", s.LightDamage},
		{"light_reach", s.LightReach},
		{"enemy_damage", s.EnemyDamage},
		{"enemy_reach", s.EnemyReach},
		{"enemy_cooldown", s.EnemyCooldown},
		{"menu_presses", s.MenuPresses},
		{"dialogue_lines", s.DialogueLines},
	} {
		if v.value < 0 {
			return fmt.Errorf("%s must not be negative, got %d", v.name, v.value)
		}
	}
	if s.WinsPerMatch <= 0 {
		return fmt.Errorf("wins_per_match must be positive, got %d", s.WinsPerMatch)
	}
	if s.StickyChance < 0 || s.StickyChance > 1 {
		return fmt.Errorf("sticky_chance must be in [0, 1], got %v", s.StickyChance)
	}
	return nil
}

// Fighter is one of the two combatants
type Fighter struct {
	Health    int
	Wins      int
	X         int
	Y         int
	Crouching bool
	cooldown  int
}

// Game is the simulated arena
type Game struct {
	Settings Settings
	Addr     memmap.Map

	Phase  gamestate.Flag
	Player Fighter
	Enemy  Fighter
	Frame  int

	// dialogue progress
	linesLeft int
	sticky    bool

	// presses of A seen on the title menu
	menuPresses int

	held    [emulator.NumButtons]bool
	pending []emulator.Event

	memory [0x10000]uint8
	faults map[uint16]bool

	recorder *Replay
	quit     atomic.Bool
	stopped  bool

	rng *rand.Rand
}

// NewGame creates a new arena on the title menu
func NewGame(settings Settings, addr memmap.Map) *Game {
	g := &Game{
		Settings: settings,
		Addr:     addr,
		faults:   make(map[uint16]bool),
		rng:      rand.New(rand.NewSource(settings.Seed)),
	}
	g.Reset()
	return g
}

// Reset returns the arena to the title menu
func (g *Game) Reset() {
	g.Phase = gamestate.FlagMenu
	g.Frame = 0
	g.menuPresses = 0
	g.linesLeft = 0
	g.sticky = false
	g.pending = g.pending[:0]
	g.held = [emulator.NumButtons]bool{}
	g.Player = Fighter{}
	g.Enemy = Fighter{}
	g.resetRound()
	g.sync()
}

// Record sets the replay that every input event is recorded to
func (g *Game) Record(r *Replay) {
	g.recorder = r
}

// Fault makes addr unreadable
func (g *Game) Fault(addr uint16) {
	g.faults[addr] = true
}

// Quit makes every subsequent Tick return emulator.SignalQuit. It is safe to
// call from another goroutine.
func (g *Game) Quit() {
	g.quit.Store(true)
}

// Stop implements emulator.Stopper
func (g *Game) Stop() error {
	if g.stopped {
		return fmt.Errorf("env: game already stopped")
	}
	g.stopped = true
	g.quit.Store(true)
	return nil
}

// ReadMemory implements emulator.Memory
func (g *Game) ReadMemory(addr uint16) (uint8, error) {
	if g.faults[addr] {
		return 0, fmt.Errorf("env: address 0x%04X is not readable", addr)
	}
	return g.memory[addr], nil
}

// SendInput implements emulator.Driver. The event takes effect on the next
// tick.
func (g *Game) SendInput(ev emulator.Event) {
	if g.recorder != nil {
		g.recorder.Record(g.Frame, ev)
	}
	g.pending = append(g.pending, ev)
}

// Tick implements emulator.Driver
func (g *Game) Tick() emulator.Signal {
	if g.quit.Load() {
		return emulator.SignalQuit
	}

	// apply queued input. presses are edge triggered for menus, dialogue and
	// attacks; holds drive movement
	var edges [emulator.NumButtons]bool
	for _, ev := range g.pending {
		if ev.Pressed && !g.held[ev.Button] {
			edges[ev.Button] = true
		}
		g.held[ev.Button] = ev.Pressed
	}
	g.pending = g.pending[:0]

	g.Frame++

	switch g.Phase {
	case gamestate.FlagMenu:
		g.stepMenu(edges)
	case gamestate.FlagDialogue:
		g.stepDialogue(edges)
	case gamestate.FlagHome:
		g.stepHome(edges)
	case gamestate.FlagCombat:
		g.stepCombat(edges)
	}

	g.sync()

	if g.Settings.TickCap > 0 && g.Frame >= g.Settings.TickCap {
		g.quit.Store(true)
		return emulator.SignalQuit
	}
	return emulator.SignalNone
}

func (g *Game) stepMenu(edges [emulator.NumButtons]bool) {
	if edges[emulator.ButtonA] || edges[emulator.ButtonStart] {
		g.menuPresses++
		if g.menuPresses >= g.Settings.MenuPresses {
			g.startDialogue(g.Settings.DialogueLines)
		}
	}
}

func (g *Game) startDialogue(lines int) {
	if lines < 1 {
		lines = 1
	}
	g.Phase = gamestate.FlagDialogue
	g.linesLeft = lines
	g.nextLine()
}

func (g *Game) nextLine() {
	g.sticky = g.rng.Float64() < g.Settings.StickyChance
}

func (g *Game) stepDialogue(edges [emulator.NumButtons]bool) {
	var advance bool
	if g.sticky {
		advance = edges[emulator.ButtonB] || edges[emulator.ButtonStart]
	} else {
		advance = edges[emulator.ButtonA] || edges[emulator.ButtonB] || edges[emulator.ButtonStart]
	}
	if !advance {
		return
	}

	g.linesLeft--
	if g.linesLeft > 0 {
		g.nextLine()
		return
	}

	g.sticky = false
	g.Phase = gamestate.FlagCombat
	g.resetRound()
}

func (g *Game) stepHome(edges [emulator.NumButtons]bool) {
	if edges[emulator.ButtonA] || edges[emulator.ButtonStart] {
		g.Player.Wins = 0
		g.Enemy.Wins = 0
		g.startDialogue(g.Settings.DialogueLines)
	}
}

func (g *Game) resetRound() {
	g.Player.Health = g.Settings.StartHealth
	g.Player.X = StartPlayer
	g.Player.Y = GroundY
	g.Player.Crouching = false
	g.Player.cooldown = 0
	g.Enemy.Health = g.Settings.StartHealth
	g.Enemy.X = StartEnemy
	g.Enemy.Y = GroundY
	g.Enemy.Crouching = false
	g.Enemy.cooldown = g.Settings.EnemyCooldown
}

func (g *Game) stepCombat(edges [emulator.NumButtons]bool) {
	p := &g.Player
	e := &g.Enemy

	// 1. player movement
	if g.held[emulator.ButtonLeft] {
		p.X--
	}
	if g.held[emulator.ButtonRight] {
		p.X++
	}
	p.X = clamp(p.X, ArenaMinX, ArenaMaxX)

	p.Crouching = g.held[emulator.ButtonDown]
	if g.held[emulator.ButtonUp] {
		p.Y = GroundY - JumpHeight
	} else {
		p.Y = GroundY
	}

	// 2. player attacks
	dist := g.Distance()
	if edges[emulator.ButtonA] && dist < g.Settings.StrongReach {
		e.Health -= g.Settings.StrongDamage
	}
	if edges[emulator.ButtonB] && dist < g.Settings.LightReach {
		e.Health -= g.Settings.LightDamage
	}

	// 3. enemy approaches every other frame and attacks when off cooldown
	if dist > g.Settings.EnemyReach/2 && g.Frame%2 == 0 {
		if e.X > p.X {
			e.X--
		} else if e.X < p.X {
			e.X++
		}
	}
	e.X = clamp(e.X, ArenaMinX, ArenaMaxX)

	if e.cooldown > 0 {
		e.cooldown--
	} else if g.Distance() < g.Settings.EnemyReach {
		damage := g.Settings.EnemyDamage
		switch {
		case p.Y != GroundY:
			damage = 0
		case p.Crouching:
			damage /= 2
		}
		p.Health -= damage
		e.cooldown = g.Settings.EnemyCooldown + g.rng.Intn(g.Settings.EnemyCooldown+1)
	}

	// 4. round end
	if e.Health <= 0 {
		e.Health = 0
		p.Wins++
		g.endRound()
	} else if p.Health <= 0 {
		p.Health = 0
		e.Wins++
		g.endRound()
	}
}

func (g *Game) endRound() {
	if g.Player.Wins >= g.Settings.WinsPerMatch || g.Enemy.Wins >= g.Settings.WinsPerMatch {
		g.Phase = gamestate.FlagHome
		return
	}
	g.startDialogue(1)
}

// Distance is the horizontal distance between the fighters
func (g *Game) Distance() int {
	d := g.Player.X - g.Enemy.X
	if d < 0 {
		d = -d
	}
	return d
}

// Sticky returns true if the current dialogue line ignores the A button
func (g *Game) Sticky() bool {
	return g.Phase == gamestate.FlagDialogue && g.sticky
}

// sync publishes the game state to the memory image
func (g *Game) sync() {
	put16 := func(hi, lo uint16, v int) {
		v = clamp(v, 0, 0xffff)
		g.memory[hi] = uint8(v >> 8)
		g.memory[lo] = uint8(v & 0xff)
	}
	put16(g.Addr.PlayerHealthHi, g.Addr.PlayerHealthLo, g.Player.Health)
	put16(g.Addr.EnemyHealthHi, g.Addr.EnemyHealthLo, g.Enemy.Health)
	g.memory[g.Addr.PlayerWins] = uint8(g.Player.Wins)
	g.memory[g.Addr.EnemyWins] = uint8(g.Enemy.Wins)
	g.memory[g.Addr.PlayerX] = uint8(g.Player.X)
	g.memory[g.Addr.PlayerY] = uint8(g.Player.Y)
	g.memory[g.Addr.EnemyX] = uint8(g.Enemy.X)
	g.memory[g.Addr.EnemyY] = uint8(g.Enemy.Y)
	g.memory[g.Addr.GameStateFlag] = uint8(g.Phase)
}

// Poke writes directly to the memory image. The value is overwritten by the
// next tick.
func (g *Game) Poke(addr uint16, v uint8) {
	g.memory[addr] = v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
