// Package control runs the agent: it dispatches on the game state flag,
// fights with the Q-learning agent during combat and presses through
// everything else.
package control

import (
	"context"
	"fmt"

	"pqagent/internal/action"
	"pqagent/internal/emulator"
	"pqagent/internal/gamestate"
	"pqagent/internal/logger"
	"pqagent/internal/qlearning"
	"pqagent/internal/reward"
	"pqagent/internal/stats"
)

// RoundSink receives every finished round
type RoundSink interface {
	Round(rs stats.RoundStats) error
}

// RoundSinks sends a round to several sinks. Every sink is called even if an
// earlier one fails; the first error is returned.
type RoundSinks []RoundSink

// Round implements RoundSink
func (s RoundSinks) Round(rs stats.RoundStats) error {
	var first error
	for _, sink := range s {
		if err := sink.Round(rs); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Settings configures a Loop
type Settings struct {
	ActionHold           int
	MaxConsecutiveErrors int
	ResetPresses         int
	ResetHold            int
	LogEvery             int
	Recovery             RecoverySettings
}

// DefaultSettings returns the standard loop settings
func DefaultSettings() Settings {
	return Settings{
		ActionHold:           action.HoldTicks,
		MaxConsecutiveErrors: 10,
		ResetPresses:         3,
		ResetHold:            10,
		LogEvery:             1,
		Recovery:             DefaultRecoverySettings(),
	}
}

// Summary counts what happened over a run
type Summary struct {
	Iterations       int
	Decisions        int
	FightErrors      int
	Recoveries       int
	RecoveryFailures int
	Resets           int
	LoopErrors       int
	UnknownFlags     int // iterations that read a flag outside the four known values
	Rounds           []stats.RoundStats
}

// Loop is the control loop. It owns the agent for the duration of Run and is
// not safe for concurrent use.
type Loop struct {
	driver   emulator.Driver
	reader   *gamestate.Reader
	agent    *qlearning.Agent
	actions  action.Table
	reward   *reward.Calculator
	recovery *Recovery
	settings Settings

	// Sink is told about every finished round. may be nil
	Sink RoundSink

	last      gamestate.Snapshot
	lastState gamestate.DiscretizedState
	lastFlag  gamestate.Flag
	flagSeen  bool

	errors  int
	quit    bool
	tracker *stats.Tracker
	summary Summary
}

// NewLoop creates a control loop
func NewLoop(d emulator.Driver, r *gamestate.Reader, agent *qlearning.Agent, settings Settings) *Loop {
	return &Loop{
		driver:   d,
		reader:   r,
		agent:    agent,
		actions:  action.DefaultTable(settings.ActionHold),
		reward:   reward.NewCalculator(),
		recovery: NewRecovery(d, r, settings.Recovery),
		settings: settings,
		tracker:  stats.NewTracker(),
	}
}

// Summary returns the counts collected so far
func (l *Loop) Summary() Summary {
	s := l.summary
	s.Rounds = append([]stats.RoundStats(nil), l.summary.Rounds...)
	return s
}

// Run ticks the driver until it signals quit, the context is cancelled or too
// many consecutive iterations fail. Run returns ctx.Err() if the context was
// cancelled and nil otherwise.
func (l *Loop) Run(ctx context.Context) error {
	l.last, l.lastState = l.reader.Sample()
	l.agent.Table.Ensure(l.lastState)
	logger.Logf("control", "starting from %v", l.lastState)

	for !l.quit {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.driver.Tick() == emulator.SignalQuit {
			break
		}
		if !l.iterate() {
			break
		}
	}

	logger.Logf("control", "stopped after %d iterations, %d decisions", l.summary.Iterations, l.summary.Decisions)
	return nil
}

// iterate runs one pass of the loop. a panic counts as a loop error and
// iterate returns false once there have been too many in a row
func (l *Loop) iterate() (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			l.errors++
			l.summary.LoopErrors++
			logger.Logf("control", "error in main loop: %v", p)
			ok = l.errors < l.settings.MaxConsecutiveErrors
			if !ok {
				logger.Log("control", "error: too many errors, stopping execution")
			}
		}
	}()

	l.summary.Iterations++
	flag := l.reader.Flag()
	if !l.flagSeen || flag != l.lastFlag || l.settings.LogEvery <= 1 || l.summary.Iterations%l.settings.LogEvery == 0 {
		logger.Logf("control", "current game state: %v (0x%02X)", flag, uint8(flag))
	}
	l.lastFlag = flag
	l.flagSeen = true
	if !flag.Known() {
		l.summary.UnknownFlags++
	}

	if flag == gamestate.FlagCombat {
		if err := l.fight(); err != nil {
			l.summary.FightErrors++
			logger.Logf("control", "error in fight cycle: %v", err)
		}
		l.errors = 0
		return true
	}

	l.summary.Recoveries++
	if l.recovery.Run() {
		current, state := l.reader.Sample()
		if rs, done := l.tracker.Settle(l.last, current, l.agent.Epsilon(), l.agent.Table.Len()); done {
			l.roundFinished(rs)
		}
		l.last, l.lastState = current, state
		l.errors = 0
		return true
	}
	if l.recovery.Quit() {
		l.quit = true
		return true
	}

	l.summary.RecoveryFailures++
	l.errors++
	logger.Logf("control", "dialogue handling failed (error #%d)", l.errors)
	if l.errors >= l.settings.MaxConsecutiveErrors {
		l.reset()
	}
	return true
}

// fight selects and performs one action and learns from its outcome. On
// failure the last observed state is kept.
func (l *Loop) fight() (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()

	act := l.agent.Select(l.lastState)
	sig, err := l.actions.Execute(l.driver, act)
	if err != nil {
		return err
	}
	if sig == emulator.SignalQuit {
		l.quit = true
	}

	current := l.reader.Snapshot()
	r := l.reward.Calculate(current, l.last)
	next := l.reader.Discretized()

	l.agent.Update(l.lastState, act, r, next)
	l.agent.Decay()
	l.summary.Decisions++

	rs, done := l.tracker.Observe(l.last, current, r, l.actions[act].Hold, l.agent.Epsilon(), l.agent.Table.Len())
	l.last = current
	l.lastState = next

	if done {
		l.roundFinished(rs)
	}
	return nil
}

func (l *Loop) roundFinished(rs stats.RoundStats) {
	l.summary.Rounds = append(l.summary.Rounds, rs)
	logger.Logf("control", "round %d won by %v after %d decisions", rs.Round, rs.Winner, rs.Decisions)
	if l.Sink == nil {
		return
	}
	if err := l.Sink.Round(rs); err != nil {
		logger.Logf("control", "warning: cannot record round %d: %v", rs.Round, err)
	}
}

// reset presses Start a few times in the hope of getting the game back to a
// known screen
func (l *Loop) reset() {
	logger.Log("control", "too many consecutive errors, attempting game reset")
	for i := 0; i < l.settings.ResetPresses; i++ {
		if emulator.Hold(l.driver, emulator.ButtonStart, l.settings.ResetHold) == emulator.SignalQuit {
			l.quit = true
		}
	}
	l.summary.Resets++
	l.errors = 0
}
