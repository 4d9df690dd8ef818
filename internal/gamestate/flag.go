package gamestate

import "fmt"

// Flag is the value of the game state byte
type Flag uint8

// Game state flags observed in PowerQuest
const (
	FlagMenu     Flag = 0xC0
	FlagHome     Flag = 0xC1
	FlagDialogue Flag = 0xC2
	FlagCombat   Flag = 0xC3
)

func (f Flag) String() string {
	switch f {
	case FlagMenu:
		return "Menu"
	case FlagHome:
		return "Home"
	case FlagDialogue:
		return "Dialogue"
	case FlagCombat:
		return "Combat"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(f))
	}
}

// Known returns true if the flag is one of the four observed values
func (f Flag) Known() bool {
	switch f {
	case FlagMenu, FlagHome, FlagDialogue, FlagCombat:
		return true
	}
	return false
}

// NonCombat returns true for the flags that dialogue recovery has to push
// through: menus, the home screen and dialogue
func (f Flag) NonCombat() bool {
	return f == FlagMenu || f == FlagHome || f == FlagDialogue
}
