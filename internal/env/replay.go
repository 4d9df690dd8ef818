package env

import (
	"encoding/json"
	"os"

	"pqagent/internal/emulator"
	"pqagent/internal/memmap"
)

// RecordedEvent is an input event and the frame on which it was sent
type RecordedEvent struct {
	Frame int            `json:"frame"`
	Event emulator.Event `json:"event"`
}

// Replay stores every input sent to the arena so that a session can be played
// back deterministically
type Replay struct {
	RunID    string          `json:"run_id,omitempty"`
	Settings Settings        `json:"settings"`
	Addr     memmap.Map      `json:"memory_map"`
	Events   []RecordedEvent `json:"events"`
	Frames   int             `json:"frames"`
}

// NewReplay creates a new replay recorder
func NewReplay(settings Settings, addr memmap.Map) *Replay {
	return &Replay{
		Settings: settings,
		Addr:     addr,
		Events:   make([]RecordedEvent, 0, 1024),
	}
}

// Record adds an event to the replay
func (r *Replay) Record(frame int, ev emulator.Event) {
	r.Events = append(r.Events, RecordedEvent{Frame: frame, Event: ev})
}

// Finish records the number of frames the session ran for
func (r *Replay) Finish(frames int) {
	r.Frames = frames
}

// Save writes the replay to a file
func (r *Replay) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadReplay loads a replay from a file
func LoadReplay(path string) (*Replay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Replay
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Playback recreates the arena the replay was recorded on. The tick cap is
// removed so that playback is not cut short.
func (r *Replay) Playback() *Game {
	s := r.Settings
	s.TickCap = 0
	return NewGame(s, r.Addr)
}

// Player steps a Game through a replay one frame at a time
type Player struct {
	replay *Replay
	game   *Game
	next   int
}

// NewPlayer prepares the replay for playback
func NewPlayer(r *Replay) *Player {
	return &Player{replay: r, game: r.Playback()}
}

// Game returns the arena being played back
func (p *Player) Game() *Game {
	return p.game
}

// Done returns true once every recorded frame has been played
func (p *Player) Done() bool {
	return p.game.Frame >= p.replay.Frames
}

// Step sends the events recorded for the current frame and advances one frame
func (p *Player) Step() {
	for p.next < len(p.replay.Events) && p.replay.Events[p.next].Frame <= p.game.Frame {
		p.game.SendInput(p.replay.Events[p.next].Event)
		p.next++
	}
	p.game.Tick()
}

// StepTo plays the replay up to frame n
func (p *Player) StepTo(n int) {
	if n > p.replay.Frames {
		n = p.replay.Frames
	}
	for p.game.Frame < n {
		p.Step()
	}
}
