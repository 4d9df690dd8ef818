// Package emulator defines the boundary between the agent and whatever is
// emulating the game. The agent only ever ticks the emulation, injects button
// events and reads bytes of memory.
package emulator

import "fmt"

// Signal is returned by Tick to report driver-level events
type Signal int

const (
	SignalNone Signal = iota
	SignalQuit        // the driver wants the agent to stop
)

func (s Signal) String() string {
	switch s {
	case SignalNone:
		return "none"
	case SignalQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Button is one of the Game Boy's eight inputs
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonStart
	ButtonSelect
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// NumButtons is the number of distinct buttons
const NumButtons = 8

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	case ButtonStart:
		return "Start"
	case ButtonSelect:
		return "Select"
	case ButtonUp:
		return "Up"
	case ButtonDown:
		return "Down"
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}

// Event is a single press or release of a button
type Event struct {
	Button  Button `json:"button"`
	Pressed bool   `json:"pressed"`
}

// Press returns the press event for a button
func Press(b Button) Event {
	return Event{Button: b, Pressed: true}
}

// Release returns the release event for a button
func Release(b Button) Event {
	return Event{Button: b, Pressed: false}
}

func (e Event) String() string {
	if e.Pressed {
		return "press " + e.Button.String()
	}
	return "release " + e.Button.String()
}

// Memory is the byte-addressable view of the emulated machine
type Memory interface {
	ReadMemory(addr uint16) (uint8, error)
}

// Driver is everything the agent needs from an emulator
type Driver interface {
	Memory

	// Tick advances the emulation by one frame
	Tick() Signal

	// SendInput queues a button event for the next frame
	SendInput(Event)
}

// Stopper is implemented by drivers that hold resources which must be released
// when the agent finishes
type Stopper interface {
	Stop() error
}

// Wait advances the driver n frames. It returns SignalQuit if any of those
// frames reported a quit, but always runs all n frames.
func Wait(d Driver, n int) Signal {
	sig := SignalNone
	for i := 0; i < n; i++ {
		if d.Tick() == SignalQuit {
			sig = SignalQuit
		}
	}
	return sig
}

// Hold presses a button, advances n frames and then releases the button
func Hold(d Driver, b Button, n int) Signal {
	d.SendInput(Press(b))
	sig := Wait(d, n)
	d.SendInput(Release(b))
	return sig
}
