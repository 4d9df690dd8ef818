package qlearning

import (
	"math"
	"math/rand"
	"testing"

	"pqagent/internal/action"
	"pqagent/internal/gamestate"
)

var (
	stateA = gamestate.DiscretizedState{PlayerHealth: gamestate.High, EnemyHealth: gamestate.High, Distance: gamestate.Far}
	stateB = gamestate.DiscretizedState{PlayerHealth: gamestate.High, EnemyHealth: gamestate.Medium, Distance: gamestate.Close}
)

func newTestAgent(epsilon float64) *Agent {
	p := DefaultParams()
	p.Epsilon = epsilon
	return NewAgent(p, rand.New(rand.NewSource(1)))
}

func TestEnsureCreatesZeroRow(t *testing.T) {
	tbl := NewTable()
	if _, ok := tbl.Lookup(stateA); ok {
		t.Fatalf("state present before Ensure")
	}
	r := tbl.Ensure(stateA)
	if *r != (Row{}) {
		t.Fatalf("expected zero row, got %v", *r)
	}
	r[action.Jump] = 3
	if again := tbl.Ensure(stateA); again[action.Jump] != 3 {
		t.Fatalf("Ensure replaced an existing row")
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 state, got %d", tbl.Len())
	}
}

func TestArgmaxTiesGoToFirstIndex(t *testing.T) {
	r := Row{}
	if got := r.Argmax(); got != action.DoNothing {
		t.Fatalf("argmax of zero row = %s", got)
	}
	r[action.Crouch] = 2
	r[action.Light] = 2
	if got := r.Argmax(); got != action.Crouch {
		t.Fatalf("argmax = %s, want Crouch", got)
	}
	r = Row{-3, -1, -2, -1, -5, -4, -6}
	if got := r.Argmax(); got != action.MoveLeft {
		t.Fatalf("argmax = %s, want MoveLeft", got)
	}
	if got := r.Max(); got != -1 {
		t.Fatalf("max = %v, want -1", got)
	}
}

func TestUpdateRule(t *testing.T) {
	a := newTestAgent(0)
	next := a.Table.Ensure(stateB)
	next[action.Strong] = 10

	got := a.Update(stateA, action.Light, 5, stateB)
	want := 0 + 0.1*(5+0.9*10-0)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("updated value = %v, want %v", got, want)
	}
	row, ok := a.Table.Lookup(stateA)
	if !ok || row[action.Light] != got {
		t.Fatalf("value not stored")
	}
}

func TestUpdateEnsuresBothStates(t *testing.T) {
	a := newTestAgent(0)
	a.Update(stateA, action.DoNothing, 0, stateB)
	if _, ok := a.Table.Lookup(stateA); !ok {
		t.Fatalf("previous state not created")
	}
	if _, ok := a.Table.Lookup(stateB); !ok {
		t.Fatalf("next state not created")
	}
}

func TestUpdateIsStableAtFixedPoint(t *testing.T) {
	// zero reward in an all zero table
	a := newTestAgent(0)
	for i := 0; i < 10; i++ {
		if v := a.Update(stateA, action.Jump, 0, stateB); v != 0 {
			t.Fatalf("value drifted to %v", v)
		}
	}

	// the target equals the existing value
	a = newTestAgent(0)
	a.Table.Ensure(stateA)[action.Jump] = 5
	for i := 0; i < 10; i++ {
		if v := a.Update(stateA, action.Jump, 5, stateB); v != 5 {
			t.Fatalf("value drifted to %v", v)
		}
	}
}

func TestSelectExploitsWithZeroEpsilon(t *testing.T) {
	a := newTestAgent(0)
	a.Table.Ensure(stateA)[action.Strong] = 1
	for i := 0; i < 20; i++ {
		if got := a.Select(stateA); got != action.Strong {
			t.Fatalf("select = %s, want Strong", got)
		}
	}
	// an unseen state is created and its first action chosen
	if got := a.Select(stateB); got != action.DoNothing {
		t.Fatalf("select on new state = %s", got)
	}
	if _, ok := a.Table.Lookup(stateB); !ok {
		t.Fatalf("select did not ensure the state")
	}
}

func TestSelectExploresWithFullEpsilon(t *testing.T) {
	a := newTestAgent(1)
	a.Table.Ensure(stateA)[action.Strong] = 100

	seen := make(map[action.Action]int)
	for i := 0; i < 2000; i++ {
		seen[a.Select(stateA)]++
	}
	for _, act := range action.Space {
		if seen[act] == 0 {
			t.Fatalf("action %s never explored", act)
		}
	}
}

func TestEpsilonDecay(t *testing.T) {
	for _, n := range []int{0, 1, 100, 5000, 46000, 50000} {
		a := newTestAgent(1)
		for i := 0; i < n; i++ {
			a.Decay()
		}
		want := math.Max(DefaultMinEpsilon, math.Pow(DefaultDecay, float64(n)))
		if math.Abs(a.Epsilon()-want) > 1e-9 {
			t.Fatalf("epsilon after %d decays = %v, want %v", n, a.Epsilon(), want)
		}
	}
}

func TestEpsilonNeverBelowFloor(t *testing.T) {
	a := newTestAgent(0.010001)
	for i := 0; i < 10; i++ {
		a.Decay()
		if a.Epsilon() < DefaultMinEpsilon {
			t.Fatalf("epsilon fell below floor: %v", a.Epsilon())
		}
	}
	if a.Epsilon() != DefaultMinEpsilon {
		t.Fatalf("epsilon = %v, want floor", a.Epsilon())
	}
}

func TestStatesOrderIsStable(t *testing.T) {
	tbl := NewTable()
	tbl.Ensure(stateB)
	tbl.Ensure(stateA)
	states := tbl.States()
	if len(states) != 2 || states[0] != stateA {
		t.Fatalf("unexpected order: %v", states)
	}
}
