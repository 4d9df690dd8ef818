// Package reward scores the change between two consecutive game snapshots.
package reward

import (
	"pqagent/internal/gamestate"
	"pqagent/internal/logger"
)

// Base is added every decision to put the agent under time pressure
const Base = -0.01

// Weight is the reward per unit of change of one snapshot field. Positive is
// applied when the value increases and Negative, against the size of the
// change, when it decreases.
type Weight struct {
	Field    string
	Positive float64
	Negative float64
}

// DefaultWeights reward damaging the enemy and winning rounds, and punish
// taking damage and losing rounds. A rise in either fighter's health earns
// nothing.
var DefaultWeights = []Weight{
	{Field: gamestate.FieldEnemyHealth, Positive: 0, Negative: 1},
	{Field: gamestate.FieldPlayerHealth, Positive: 0, Negative: -1},
	{Field: gamestate.FieldPlayerWins, Positive: 500, Negative: 0},
	{Field: gamestate.FieldEnemyWins, Positive: 0, Negative: -500},
}

// Calculator computes rewards from a weights table
type Calculator struct {
	Base    float64
	Weights []Weight
}

// NewCalculator returns a calculator with the default base and weights
func NewCalculator() *Calculator {
	return &Calculator{Base: Base, Weights: DefaultWeights}
}

// Delta is the reward for the change in a single field. A field missing from
// either snapshot is logged and earns nothing.
func Delta(w Weight, current, previous gamestate.Snapshot) float64 {
	cur, ok := current.Field(w.Field)
	if !ok {
		logger.Logf("reward", "warning: state key '%s' not found in game state", w.Field)
		return 0
	}
	prev, ok := previous.Field(w.Field)
	if !ok {
		logger.Logf("reward", "warning: state key '%s' not found in game state", w.Field)
		return 0
	}

	delta := cur - prev
	switch {
	case delta > 0:
		return w.Positive * float64(delta)
	case delta < 0:
		return w.Negative * float64(-delta)
	}
	return 0
}

// Calculate returns the reward for moving from previous to current
func (c *Calculator) Calculate(current, previous gamestate.Snapshot) float64 {
	total := c.Base
	for _, w := range c.Weights {
		total += Delta(w, current, previous)
	}
	if total != c.Base {
		logger.Logf("reward", "reward this tick: %g", total)
	}
	return total
}
