package gamestate

// Label is one coarse category of a discretized value
type Label string

// Health labels
const (
	High   Label = "High"
	Medium Label = "Medium"
	Low    Label = "Low"
)

// Distance labels
const (
	Close Label = "Close"
	Mid   Label = "Mid"
	Far   Label = "Far"
)

// Bucket thresholds
const (
	HealthHigh   = 18000
	HealthMedium = 6000
	DistClose    = 40
	DistMid      = 80
)

// DiscretizedState is the key of the Q-table
type DiscretizedState struct {
	PlayerHealth Label `json:"player_health"`
	EnemyHealth  Label `json:"enemy_health"`
	Distance     Label `json:"distance"`
}

func (d DiscretizedState) String() string {
	return "(" + string(d.PlayerHealth) + ", " + string(d.EnemyHealth) + ", " + string(d.Distance) + ")"
}

// Fallback is used when the game state cannot be sampled
var Fallback = DiscretizedState{PlayerHealth: Low, EnemyHealth: Low, Distance: Far}

// HealthBucket puts a health value into High, Medium or Low
func HealthBucket(h int) Label {
	switch {
	case h > HealthHigh:
		return High
	case h > HealthMedium:
		return Medium
	default:
		return Low
	}
}

// DistanceBucket puts a distance into Close, Mid or Far
func DistanceBucket(d int) Label {
	switch {
	case d < DistClose:
		return Close
	case d < DistMid:
		return Mid
	default:
		return Far
	}
}

// Discretize maps a snapshot onto the small state space used for learning
func Discretize(s Snapshot) DiscretizedState {
	return DiscretizedState{
		PlayerHealth: HealthBucket(s.PlayerHealth),
		EnemyHealth:  HealthBucket(s.EnemyHealth),
		Distance:     DistanceBucket(s.Distance()),
	}
}
