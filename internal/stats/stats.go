// Package stats keeps per-round results of the agent's fights.
package stats

import (
	"math"

	"pqagent/internal/gamestate"
)

// Winner indicates who won a round
type Winner int

const (
	WinnerNone   Winner = iota
	WinnerPlayer        // the agent won the round
	WinnerEnemy         // the computer won the round
)

func (w Winner) String() string {
	switch w {
	case WinnerNone:
		return "none"
	case WinnerPlayer:
		return "player"
	case WinnerEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// RoundStats captures the metrics of a single round
type RoundStats struct {
	Round       int     `json:"round"`
	Winner      Winner  `json:"winner"`
	Decisions   int     `json:"decisions"`    // combat decisions made
	Ticks       int     `json:"ticks"`        // frames spent deciding
	TotalReward float64 `json:"total_reward"` // sum of rewards
	Epsilon     float64 `json:"epsilon"`      // exploration rate at the end of the round
	States      int     `json:"states"`       // size of the Q-table at the end of the round
}

// MeanReward is the average reward per decision
func (r RoundStats) MeanReward() float64 {
	if r.Decisions == 0 {
		return 0
	}
	return r.TotalReward / float64(r.Decisions)
}

// Tracker accumulates decisions until a change in either win counter ends the
// round
type Tracker struct {
	round     int
	decisions int
	ticks     int
	reward    float64
}

// NewTracker creates a tracker. Rounds are numbered from 1
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe records one decision. It returns the finished round and true when
// the transition from previous to current ended a round.
func (t *Tracker) Observe(previous, current gamestate.Snapshot, reward float64, ticks int, epsilon float64, states int) (RoundStats, bool) {
	t.decisions++
	t.ticks += ticks
	t.reward += reward
	return t.Settle(previous, current, epsilon, states)
}

// Settle ends the round if either win counter went up between previous and
// current without counting a decision. It covers rounds that end while the
// agent isn't fighting.
func (t *Tracker) Settle(previous, current gamestate.Snapshot, epsilon float64, states int) (RoundStats, bool) {
	winner := WinnerNone
	switch {
	case current.PlayerWins > previous.PlayerWins:
		winner = WinnerPlayer
	case current.EnemyWins > previous.EnemyWins:
		winner = WinnerEnemy
	default:
		return RoundStats{}, false
	}

	t.round++
	rs := RoundStats{
		Round:       t.round,
		Winner:      winner,
		Decisions:   t.decisions,
		Ticks:       t.ticks,
		TotalReward: t.reward,
		Epsilon:     epsilon,
		States:      states,
	}
	t.decisions = 0
	t.ticks = 0
	t.reward = 0
	return rs, true
}

// Rounds is the number of rounds completed
func (t *Tracker) Rounds() int {
	return t.round
}

// AggregatedStats holds statistics across multiple rounds
type AggregatedStats struct {
	NumRounds     int
	PlayerWins    int
	EnemyWins     int
	WinRate       float64
	RewardMean    float64
	RewardStd     float64
	DecisionsMean float64
}

// Aggregate computes statistics from multiple rounds
func Aggregate(rounds []RoundStats) AggregatedStats {
	n := len(rounds)
	if n == 0 {
		return AggregatedStats{}
	}

	agg := AggregatedStats{NumRounds: n}

	var rewardSum, decisionsSum float64
	for _, r := range rounds {
		rewardSum += r.TotalReward
		decisionsSum += float64(r.Decisions)
		switch r.Winner {
		case WinnerPlayer:
			agg.PlayerWins++
		case WinnerEnemy:
			agg.EnemyWins++
		}
	}

	nf := float64(n)
	agg.RewardMean = rewardSum / nf
	agg.DecisionsMean = decisionsSum / nf
	agg.WinRate = float64(agg.PlayerWins) / nf

	var variance float64
	for _, r := range rounds {
		diff := r.TotalReward - agg.RewardMean
		variance += diff * diff
	}
	agg.RewardStd = math.Sqrt(variance / nf)

	return agg
}
