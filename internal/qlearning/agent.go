package qlearning

import (
	"math/rand"

	"pqagent/internal/action"
	"pqagent/internal/gamestate"
)

// Default learning parameters
const (
	DefaultAlpha      = 0.1
	DefaultGamma      = 0.9
	DefaultEpsilon    = 1.0
	DefaultDecay      = 0.9999
	DefaultMinEpsilon = 0.01
)

// Params configures an Agent
type Params struct {
	Alpha      float64 // learning rate
	Gamma      float64 // discount factor
	Epsilon    float64 // starting exploration rate
	Decay      float64 // multiplicative epsilon decay per decision
	MinEpsilon float64 // epsilon never decays below this
}

// DefaultParams returns the standard learning parameters
func DefaultParams() Params {
	return Params{
		Alpha:      DefaultAlpha,
		Gamma:      DefaultGamma,
		Epsilon:    DefaultEpsilon,
		Decay:      DefaultDecay,
		MinEpsilon: DefaultMinEpsilon,
	}
}

// Agent is the learning context: the Q-table, the current exploration rate and
// the random source used for exploration. It is owned by a single control
// loop and is not safe for concurrent use.
type Agent struct {
	Table   *Table
	Params  Params
	epsilon float64
	rng     *rand.Rand
}

// NewAgent creates an agent with an empty table
func NewAgent(params Params, rng *rand.Rand) *Agent {
	return &Agent{
		Table:   NewTable(),
		Params:  params,
		epsilon: params.Epsilon,
		rng:     rng,
	}
}

// Epsilon is the current exploration rate
func (a *Agent) Epsilon() float64 {
	return a.epsilon
}

// Select chooses an action for state. With probability epsilon the choice is
// random, otherwise it is the action with the highest value.
func (a *Agent) Select(state gamestate.DiscretizedState) action.Action {
	if a.rng.Float64() < a.epsilon {
		return action.Space[a.rng.Intn(action.Count)]
	}
	return a.Table.Ensure(state).Argmax()
}

// Update applies the Q-learning rule for taking act in prev, receiving reward
// and arriving in next. It returns the new value.
func (a *Agent) Update(prev gamestate.DiscretizedState, act action.Action, reward float64, next gamestate.DiscretizedState) float64 {
	prevRow := a.Table.Ensure(prev)
	nextRow := a.Table.Ensure(next)

	old := prevRow[act]
	nextMax := nextRow.Max()
	v := old + a.Params.Alpha*(reward+a.Params.Gamma*nextMax-old)
	prevRow[act] = v
	return v
}

// Decay reduces epsilon by the decay factor without going below the minimum
func (a *Agent) Decay() {
	if a.epsilon > a.Params.MinEpsilon {
		a.epsilon *= a.Params.Decay
		if a.epsilon < a.Params.MinEpsilon {
			a.epsilon = a.Params.MinEpsilon
		}
	}
}
