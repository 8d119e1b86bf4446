package entities

// RollMode records which rule picked the chosen roll
type RollMode string

const (
	RollModeNormal       RollMode = "normal"
	RollModeAdvantage    RollMode = "advantage"
	RollModeDisadvantage RollMode = "disadvantage"
)

// DiceRollResult is the outcome of a single roll request.
//
// For a single die RawRolls holds one draw, or two under advantage or
// disadvantage, and ChosenRoll is the kept draw. For several dice RawRolls
// holds every die and ChosenRoll is their sum.
type DiceRollResult struct {
	Notation      string   `json:"notation"`
	Count         int      `json:"count"`
	Faces         int      `json:"faces"`
	RawRolls      []int    `json:"raw_rolls"`
	ChosenRoll    int      `json:"chosen_roll"`
	Modifier      int      `json:"modifier"`
	Total         int      `json:"total"`
	IsCriticalMax bool     `json:"is_critical_max"`
	IsCriticalMin bool     `json:"is_critical_min"`
	Mode          RollMode `json:"mode"`
}
