// Package qlearning holds the agent's learned action values and the rules for
// choosing and updating them.
package qlearning

import (
	"sort"

	"pqagent/internal/action"
	"pqagent/internal/gamestate"
)

// Row holds one value per action, in action index order
type Row [action.Count]float64

// Max returns the largest value in the row
func (r *Row) Max() float64 {
	m := r[0]
	for _, v := range r[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Argmax returns the action with the largest value. Ties go to the lowest
// index.
func (r *Row) Argmax() action.Action {
	best := 0
	for i := 1; i < len(r); i++ {
		if r[i] > r[best] {
			best = i
		}
	}
	return action.Action(best)
}

// Table maps discretized states to action values. Rows are created, zeroed,
// the first time a state is ensured and are never removed.
type Table struct {
	rows map[gamestate.DiscretizedState]*Row
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{rows: make(map[gamestate.DiscretizedState]*Row)}
}

// Ensure returns the row for state, creating a zero row if the state has not
// been seen before
func (t *Table) Ensure(state gamestate.DiscretizedState) *Row {
	r, ok := t.rows[state]
	if !ok {
		r = &Row{}
		t.rows[state] = r
	}
	return r
}

// Lookup returns the row for state without creating it
func (t *Table) Lookup(state gamestate.DiscretizedState) (*Row, bool) {
	r, ok := t.rows[state]
	return r, ok
}

// Len is the number of states seen
func (t *Table) Len() int {
	return len(t.rows)
}

// States returns every state in the table in a stable order
func (t *Table) States() []gamestate.DiscretizedState {
	states := make([]gamestate.DiscretizedState, 0, len(t.rows))
	for s := range t.rows {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].String() < states[j].String()
	})
	return states
}
