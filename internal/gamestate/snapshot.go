package gamestate

// Field names used to address snapshot values
const (
	FieldPlayerHealth  = "player_health"
	FieldEnemyHealth   = "enemy_health"
	FieldPlayerWins    = "player_wins"
	FieldEnemyWins     = "enemy_wins"
	FieldPlayerX       = "player_x_position"
	FieldPlayerY       = "player_y_position"
	FieldEnemyX        = "enemy_x_position"
	FieldEnemyY        = "enemy_y_position"
	FieldGameStateFlag = "game_state_flag"
)

// Snapshot is the state of the game at one frame. A snapshot is a value and
// is never updated after it has been taken.
type Snapshot struct {
	PlayerHealth  int `json:"player_health"`
	EnemyHealth   int `json:"enemy_health"`
	PlayerWins    int `json:"player_wins"`
	EnemyWins     int `json:"enemy_wins"`
	PlayerX       int `json:"player_x_position"`
	PlayerY       int `json:"player_y_position"`
	EnemyX        int `json:"enemy_x_position"`
	EnemyY        int `json:"enemy_y_position"`
	GameStateFlag int `json:"game_state_flag"`
}

// Field returns the named value. The bool is false if no such field exists
func (s Snapshot) Field(name string) (int, bool) {
	switch name {
	case FieldPlayerHealth:
		return s.PlayerHealth, true
	case FieldEnemyHealth:
		return s.EnemyHealth, true
	case FieldPlayerWins:
		return s.PlayerWins, true
	case FieldEnemyWins:
		return s.EnemyWins, true
	case FieldPlayerX:
		return s.PlayerX, true
	case FieldPlayerY:
		return s.PlayerY, true
	case FieldEnemyX:
		return s.EnemyX, true
	case FieldEnemyY:
		return s.EnemyY, true
	case FieldGameStateFlag:
		return s.GameStateFlag, true
	}
	return 0, false
}

// Flag returns the game state flag as a Flag
func (s Snapshot) Flag() Flag {
	return Flag(s.GameStateFlag)
}

// Distance is the horizontal distance between the fighters
func (s Snapshot) Distance() int {
	d := s.PlayerX - s.EnemyX
	if d < 0 {
		d = -d
	}
	return d
}

// combine a high and low byte into a sixteen bit value
func combine(hi, lo uint8) int {
	return (int(hi) << 8) + int(lo)
}
