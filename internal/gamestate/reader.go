// Package gamestate reads PowerQuest's state out of emulator memory and turns
// it into the values the agent learns from.
package gamestate

import (
	"errors"
	"fmt"

	"pqagent/internal/emulator"
	"pqagent/internal/logger"
	"pqagent/internal/memmap"
)

// ErrMemoryAccess is returned by NewReader when a required address cannot be
// read
var ErrMemoryAccess = errors.New("cannot access required memory addresses")

// Reader is a live view of the game's memory. Reads never fail: an unreadable
// address logs a warning and yields a default value.
type Reader struct {
	mem  emulator.Memory
	addr memmap.Map
}

// NewReader checks that the game state flag and both health values can be
// read before returning a Reader
func NewReader(mem emulator.Memory, addr memmap.Map) (*Reader, error) {
	r := &Reader{mem: mem, addr: addr}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) validate() error {
	for _, a := range []uint16{r.addr.GameStateFlag, r.addr.PlayerHealthHi, r.addr.EnemyHealthHi} {
		if _, err := r.mem.ReadMemory(a); err != nil {
			return fmt.Errorf("%w: 0x%04X: %v", ErrMemoryAccess, a, err)
		}
	}
	return nil
}

// Read returns the byte at addr, or def if it cannot be read
func (r *Reader) Read(addr uint16, def uint8) uint8 {
	v, err := r.mem.ReadMemory(addr)
	if err != nil {
		logger.Logf("memory", "warning: cannot read memory address 0x%04X: %v", addr, err)
		return def
	}
	return v
}

// PlayerHealth combines the two player health bytes
func (r *Reader) PlayerHealth() int {
	return combine(r.Read(r.addr.PlayerHealthHi, 0), r.Read(r.addr.PlayerHealthLo, 0))
}

// EnemyHealth combines the two enemy health bytes
func (r *Reader) EnemyHealth() int {
	return combine(r.Read(r.addr.EnemyHealthHi, 0), r.Read(r.addr.EnemyHealthLo, 0))
}

// Flag reads the game state flag
func (r *Reader) Flag() Flag {
	return Flag(r.Read(r.addr.GameStateFlag, 0))
}

// Snapshot samples every field. If sampling fails the zero snapshot is
// returned; a snapshot is never partially filled.
func (r *Reader) Snapshot() Snapshot {
	s, err := r.sample()
	if err != nil {
		logger.Logf("gamestate", "error getting state snapshot: %v", err)
		return Snapshot{}
	}
	return s
}

// Discretized samples the game and discretizes it. If sampling fails the
// Fallback state is returned.
func (r *Reader) Discretized() DiscretizedState {
	s, err := r.sample()
	if err != nil {
		logger.Logf("gamestate", "error discretizing state: %v", err)
		return Fallback
	}
	return Discretize(s)
}

// Sample returns a snapshot and its discretized form from the same reading of
// memory. On failure it returns the zero snapshot and the Fallback state.
func (r *Reader) Sample() (Snapshot, DiscretizedState) {
	s, err := r.sample()
	if err != nil {
		logger.Logf("gamestate", "error sampling state: %v", err)
		return Snapshot{}, Fallback
	}
	return s, Discretize(s)
}

// sample reads every field. a panic from the memory implementation is turned
// into an error
func (r *Reader) sample() (s Snapshot, err error) {
	defer func() {
		if p := recover(); p != nil {
			s = Snapshot{}
			err = fmt.Errorf("memory read panicked: %v", p)
		}
	}()

	s = Snapshot{
		PlayerHealth:  r.PlayerHealth(),
		EnemyHealth:   r.EnemyHealth(),
		PlayerWins:    int(r.Read(r.addr.PlayerWins, 0)),
		EnemyWins:     int(r.Read(r.addr.EnemyWins, 0)),
		PlayerX:       int(r.Read(r.addr.PlayerX, 0)),
		PlayerY:       int(r.Read(r.addr.PlayerY, 0)),
		EnemyX:        int(r.Read(r.addr.EnemyX, 0)),
		EnemyY:        int(r.Read(r.addr.EnemyY, 0)),
		GameStateFlag: int(r.Read(r.addr.GameStateFlag, 0)),
	}
	return s, nil
}
