// Package action defines the agent's fixed set of fighting moves and how each
// one is performed on the emulator.
package action

import (
	"fmt"

	"pqagent/internal/emulator"
)

// Action is a discrete fighting move. The order of the constants is the index
// into a Q-table row and must not change.
type Action int

const (
	DoNothing Action = iota
	MoveLeft
	MoveRight
	Jump
	Crouch
	Strong
	Light
)

// Count is the number of actions
const Count = 7

// Space lists every action in index order
var Space = [Count]Action{DoNothing, MoveLeft, MoveRight, Jump, Crouch, Strong, Light}

func (a Action) String() string {
	switch a {
	case DoNothing:
		return "DoNothing"
	case MoveLeft:
		return "MoveLeft"
	case MoveRight:
		return "MoveRight"
	case Jump:
		return "Jump"
	case Crouch:
		return "Crouch"
	case Strong:
		return "Strong"
	case Light:
		return "Light"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Valid returns true if a is one of the actions in Space
func (a Action) Valid() bool {
	return a >= DoNothing && a < Count
}

// HoldTicks is how long every action's button is held
const HoldTicks = 10

// Execution describes how an action is performed. A move without a button
// just lets the frames pass.
type Execution struct {
	Button    emulator.Button
	HasButton bool
	Hold      int
}

// Table maps each action to its execution
type Table [Count]Execution

// DefaultTable is the PowerQuest control layout
func DefaultTable(hold int) Table {
	return Table{
		DoNothing: {Hold: hold},
		MoveLeft:  {Button: emulator.ButtonLeft, HasButton: true, Hold: hold},
		MoveRight: {Button: emulator.ButtonRight, HasButton: true, Hold: hold},
		Jump:      {Button: emulator.ButtonUp, HasButton: true, Hold: hold},
		Crouch:    {Button: emulator.ButtonDown, HasButton: true, Hold: hold},
		Strong:    {Button: emulator.ButtonA, HasButton: true, Hold: hold},
		Light:     {Button: emulator.ButtonB, HasButton: true, Hold: hold},
	}
}

// Execute performs the action on the driver
func (t Table) Execute(d emulator.Driver, a Action) (emulator.Signal, error) {
	if !a.Valid() {
		return emulator.SignalNone, fmt.Errorf("action: unknown action %d", int(a))
	}
	ex := t[a]
	if !ex.HasButton {
		return emulator.Wait(d, ex.Hold), nil
	}
	return emulator.Hold(d, ex.Button, ex.Hold), nil
}
