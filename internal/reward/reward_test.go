package reward

import (
	"math"
	"testing"

	"pqagent/internal/gamestate"
)

const epsilon = 1e-9

func TestIdenticalSnapshotsEarnBase(t *testing.T) {
	s := gamestate.Snapshot{PlayerHealth: 20000, EnemyHealth: 15000, PlayerWins: 1, EnemyWins: 1, PlayerX: 20, EnemyX: 90}
	if got := NewCalculator().Calculate(s, s); got != -0.01 {
		t.Fatalf("reward = %v, want -0.01", got)
	}
}

func TestDeltaContributions(t *testing.T) {
	tests := []struct {
		name     string
		previous gamestate.Snapshot
		current  gamestate.Snapshot
		weight   Weight
		want     float64
	}{
		{
			name:     "enemy loses health",
			previous: gamestate.Snapshot{EnemyHealth: 100},
			current:  gamestate.Snapshot{EnemyHealth: 90},
			weight:   DefaultWeights[0],
			want:     10,
		},
		{
			name:     "enemy gains health",
			previous: gamestate.Snapshot{EnemyHealth: 90},
			current:  gamestate.Snapshot{EnemyHealth: 100},
			weight:   DefaultWeights[0],
			want:     0,
		},
		{
			name:     "player loses health",
			previous: gamestate.Snapshot{PlayerHealth: 500},
			current:  gamestate.Snapshot{PlayerHealth: 300},
			weight:   DefaultWeights[1],
			want:     -200,
		},
		{
			name:     "player gains health",
			previous: gamestate.Snapshot{PlayerHealth: 300},
			current:  gamestate.Snapshot{PlayerHealth: 500},
			weight:   DefaultWeights[1],
			want:     0,
		},
		{
			name:     "player wins a round",
			previous: gamestate.Snapshot{PlayerWins: 2},
			current:  gamestate.Snapshot{PlayerWins: 3},
			weight:   DefaultWeights[2],
			want:     500,
		},
		{
			name:     "player win counter reset",
			previous: gamestate.Snapshot{PlayerWins: 2},
			current:  gamestate.Snapshot{PlayerWins: 0},
			weight:   DefaultWeights[2],
			want:     0,
		},
		{
			name:     "enemy wins a round",
			previous: gamestate.Snapshot{EnemyWins: 0},
			current:  gamestate.Snapshot{EnemyWins: 1},
			weight:   DefaultWeights[3],
			want:     0,
		},
		{
			name:     "enemy win counter reset",
			previous: gamestate.Snapshot{EnemyWins: 1},
			current:  gamestate.Snapshot{EnemyWins: 0},
			weight:   DefaultWeights[3],
			want:     -500,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Delta(tc.weight, tc.current, tc.previous); got != tc.want {
				t.Fatalf("delta = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCalculateSumsFields(t *testing.T) {
	previous := gamestate.Snapshot{EnemyHealth: 100, PlayerHealth: 100, PlayerWins: 2}
	current := gamestate.Snapshot{EnemyHealth: 90, PlayerHealth: 95, PlayerWins: 3}

	got := NewCalculator().Calculate(current, previous)
	want := -0.01 + 10 - 5 + 500
	if math.Abs(got-want) > epsilon {
		t.Fatalf("reward = %v, want %v", got, want)
	}
}

func TestUnknownFieldContributesNothing(t *testing.T) {
	c := &Calculator{Base: Base, Weights: []Weight{{Field: "mana", Positive: 1, Negative: 1}}}
	previous := gamestate.Snapshot{EnemyHealth: 100}
	current := gamestate.Snapshot{EnemyHealth: 0}
	if got := c.Calculate(current, previous); got != Base {
		t.Fatalf("reward = %v, want %v", got, Base)
	}
}
