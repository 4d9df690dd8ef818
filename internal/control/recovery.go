package control

import (
	"pqagent/internal/emulator"
	"pqagent/internal/gamestate"
	"pqagent/internal/logger"
)

// Strategy is a single button press used to get out of a stalled menu or
// dialogue
type Strategy struct {
	Name   string
	Button emulator.Button
	Hold   int
}

// DefaultStrategies are tried in order, one per stall
var DefaultStrategies = []Strategy{
	{Name: "press A short", Button: emulator.ButtonA, Hold: 3},
	{Name: "press A long", Button: emulator.ButtonA, Hold: 10},
	{Name: "press B", Button: emulator.ButtonB, Hold: 5},
	{Name: "press Start", Button: emulator.ButtonStart, Hold: 5},
}

// Nudge is the press made on every probe that doesn't escalate
var Nudge = Strategy{Name: "nudge", Button: emulator.ButtonA, Hold: 5}

// RecoverySettings limits how long recovery keeps trying
type RecoverySettings struct {
	StallThreshold int // probes on the same flag before escalating
	Timeout        int // budget in ticks
	ProbeCost      int // budget charged per probe
}

// DefaultRecoverySettings returns the standard limits
func DefaultRecoverySettings() RecoverySettings {
	return RecoverySettings{
		StallThreshold: 5,
		Timeout:        50,
		ProbeCost:      10,
	}
}

// Recovery presses through menus, the home screen and dialogue until the game
// leaves them
type Recovery struct {
	driver     emulator.Driver
	reader     *gamestate.Reader
	settings   RecoverySettings
	strategies []Strategy

	// number of strategies run over the lifetime of the Recovery
	Escalations int

	quit bool
}

// NewRecovery creates a Recovery using DefaultStrategies. Non-positive limits
// are replaced with their defaults so Run always ends.
func NewRecovery(d emulator.Driver, r *gamestate.Reader, settings RecoverySettings) *Recovery {
	def := DefaultRecoverySettings()
	if settings.StallThreshold <= 0 {
		settings.StallThreshold = def.StallThreshold
	}
	if settings.Timeout <= 0 {
		settings.Timeout = def.Timeout
	}
	if settings.ProbeCost <= 0 {
		settings.ProbeCost = def.ProbeCost
	}
	return &Recovery{
		driver:     d,
		reader:     r,
		settings:   settings,
		strategies: DefaultStrategies,
	}
}

// Quit returns true if the driver signalled quit during the last call to Run
func (rc *Recovery) Quit() bool {
	return rc.quit
}

// Run probes the game state flag until it is outside Menu, Home and Dialogue,
// which counts as success, or until the tick budget is spent. Each call starts
// with a fresh stall count and strategy list.
func (rc *Recovery) Run() bool {
	logger.Log("recovery", "handling dialogue encounter")
	rc.quit = false

	var (
		spent    int
		next     int
		stalled  int
		previous gamestate.Flag
		seen     bool
	)

	for spent < rc.settings.Timeout {
		flag := rc.reader.Flag()
		if !flag.NonCombat() {
			logger.Logf("recovery", "dialogue resolved, new state: %v", flag)
			return true
		}

		if seen && flag == previous {
			stalled++
		} else {
			stalled = 0
			logger.Logf("recovery", "dialogue state changed to: %v", flag)
		}

		if stalled > rc.settings.StallThreshold && next < len(rc.strategies) {
			rc.escalate(next, flag)
			next++
			stalled = 0
		} else if emulator.Hold(rc.driver, Nudge.Button, Nudge.Hold) == emulator.SignalQuit {
			rc.quit = true
		}

		previous = flag
		seen = true
		spent += rc.settings.ProbeCost

		if rc.quit {
			return false
		}
	}

	logger.Logf("recovery", "dialogue timeout reached after %d ticks", rc.settings.Timeout)
	return false
}

// escalate runs strategy i. a panic in the driver is logged and the strategy
// counts as tried
func (rc *Recovery) escalate(i int, flag gamestate.Flag) {
	defer func() {
		if p := recover(); p != nil {
			logger.Logf("recovery", "error with dialogue strategy %d: %v", i+1, p)
		}
	}()

	rc.Escalations++
	s := rc.strategies[i]
	if emulator.Hold(rc.driver, s.Button, s.Hold) == emulator.SignalQuit {
		rc.quit = true
	}
	logger.Logf("recovery", "tried dialogue strategy %d (%s), stuck in %v", i+1, s.Name, flag)
}
