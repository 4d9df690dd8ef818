package control

import (
	"pqagent/internal/emulator"
	"pqagent/internal/logger"
)

// MenuTiming is the number of frames waited between menu inputs
type MenuTiming struct {
	Long   int
	Medium int
	Short  int
	Tiny   int // also how long each button is held
}

// DefaultMenuTiming returns the waits that work from power on
func DefaultMenuTiming() MenuTiming {
	return MenuTiming{
		Long:   600,
		Medium: 180,
		Short:  20,
		Tiny:   5,
	}
}

// frames between confirming the game mode and the final press
const settleWait = 120

type menuStep struct {
	wait   int
	button emulator.Button
	press  bool
}

func waitStep(n int) menuStep {
	return menuStep{wait: n}
}

func pressStep(b emulator.Button) menuStep {
	return menuStep{button: b, press: true}
}

// navigationScript selects English on the language screen and starts a single
// player game
func navigationScript(t MenuTiming) []menuStep {
	return []menuStep{
		waitStep(t.Long),
		pressStep(emulator.ButtonRight),
		waitStep(t.Short),
		pressStep(emulator.ButtonDown),
		waitStep(t.Short),
		pressStep(emulator.ButtonA),
		waitStep(t.Medium),
		pressStep(emulator.ButtonDown),
		waitStep(t.Short),
		pressStep(emulator.ButtonDown),
		waitStep(t.Short),
		pressStep(emulator.ButtonA),
		waitStep(t.Short),
		pressStep(emulator.ButtonA),
		waitStep(settleWait),
		pressStep(emulator.ButtonA),
	}
}

// NavigateToGameplay drives the title menus from power on to the first
// fight. The script always runs to the end; SignalQuit is returned if the
// driver reported it at any point.
func NavigateToGameplay(d emulator.Driver, t MenuTiming) emulator.Signal {
	logger.Log("control", "making menu selections")

	sig := emulator.SignalNone
	for _, s := range navigationScript(t) {
		var r emulator.Signal
		if s.press {
			r = emulator.Hold(d, s.button, t.Tiny)
		} else {
			r = emulator.Wait(d, s.wait)
		}
		if r == emulator.SignalQuit {
			sig = r
		}
	}
	return sig
}
