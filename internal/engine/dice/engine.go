// Package dice resolves dice notation into roll results.
//
// Randomness comes from an rpg-toolkit dice.Roller, so tests can inject a
// scripted roller and production uses the toolkit's crypto-backed default.
package dice

import (
	"sort"

	toolkitdice "github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
)

// RollOptions selects advantage or disadvantage for a single-die roll
type RollOptions struct {
	Advantage    bool
	Disadvantage bool
}

// mode resolves the options against a notation. Both flags cancel, and
// neither applies to more than one die.
func (o RollOptions) mode(n Notation) entities.RollMode {
	if n.Count != 1 || o.Advantage == o.Disadvantage {
		return entities.RollModeNormal
	}
	if o.Advantage {
		return entities.RollModeAdvantage
	}
	return entities.RollModeDisadvantage
}

// AbilityScore is one 4d6-drop-lowest result
type AbilityScore struct {
	Rolls   []int `json:"rolls"`
	Dropped int   `json:"dropped"`
	Total   int   `json:"total"`
}

// CheckResult is a d20 roll compared against a difficulty class
type CheckResult struct {
	Roll    *entities.DiceRollResult `json:"roll"`
	DC      int                      `json:"dc"`
	Success bool                     `json:"success"`
}

// Engine rolls dice
type Engine interface {
	// Roll parses notation and rolls it. Malformed notation fails with
	// InvalidNotation before any die is drawn.
	Roll(notation string, opts RollOptions) (*entities.DiceRollResult, error)

	// RollNotation rolls an already parsed notation
	RollNotation(n Notation, opts RollOptions) (*entities.DiceRollResult, error)

	// AbilityScores rolls six scores with 4d6, dropping the lowest die
	AbilityScores() ([]AbilityScore, error)

	// Damage rolls damage dice, doubling the dice (not the modifier) on a critical hit
	Damage(notation string, critical bool) (*entities.DiceRollResult, error)

	// Initiative rolls 1d20 plus the dexterity modifier
	Initiative(dexModifier int) (*entities.DiceRollResult, error)

	// Check rolls 1d20 plus modifier against a difficulty class
	Check(modifier, dc int, opts RollOptions) (*CheckResult, error)

	// HitPoints rolls hit points for a level. First level takes the die maximum.
	HitPoints(hitDie string, conModifier, level int) (int, error)
}

// Config holds the dependencies for the dice engine
type Config struct {
	// Roller defaults to the toolkit's DefaultRoller
	Roller toolkitdice.Roller
}

type engine struct {
	roller toolkitdice.Roller
}

// NewEngine creates a dice engine. A nil config uses the default roller.
func NewEngine(cfg *Config) Engine {
	roller := toolkitdice.DefaultRoller
	if cfg != nil && cfg.Roller != nil {
		roller = cfg.Roller
	}
	return &engine{roller: roller}
}

// Roll parses and rolls notation
func (e *engine) Roll(notation string, opts RollOptions) (*entities.DiceRollResult, error) {
	n, err := ParseNotation(notation)
	if err != nil {
		return nil, err
	}

	result, err := e.RollNotation(n, opts)
	if err != nil {
		return nil, err
	}
	result.Notation = notation
	return result, nil
}

// RollNotation rolls a parsed notation
func (e *engine) RollNotation(n Notation, opts RollOptions) (*entities.DiceRollResult, error) {
	if err := n.validate(); err != nil {
		return nil, err
	}

	mode := opts.mode(n)
	result := &entities.DiceRollResult{
		Notation: n.String(),
		Count:    n.Count,
		Faces:    n.Faces,
		Modifier: n.Modifier,
		Mode:     mode,
	}

	switch {
	case n.Count > 1:
		rolls, err := e.roller.RollN(n.Count, n.Faces)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll %s", n)
		}
		result.RawRolls = rolls
		for _, r := range rolls {
			result.ChosenRoll += r
		}
	case mode == entities.RollModeNormal:
		r, err := e.roller.Roll(n.Faces)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll %s", n)
		}
		result.RawRolls = []int{r}
		result.ChosenRoll = r
	default:
		first, err := e.roller.Roll(n.Faces)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll %s", n)
		}
		second, err := e.roller.Roll(n.Faces)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll %s", n)
		}
		result.RawRolls = []int{first, second}
		if mode == entities.RollModeAdvantage {
			result.ChosenRoll = max(first, second)
		} else {
			result.ChosenRoll = min(first, second)
		}
	}

	result.Total = result.ChosenRoll + n.Modifier
	if n.Count == 1 {
		result.IsCriticalMax = result.ChosenRoll == n.Faces
		result.IsCriticalMin = result.ChosenRoll == 1
	}

	return result, nil
}

// AbilityScores rolls six 4d6-drop-lowest scores
func (e *engine) AbilityScores() ([]AbilityScore, error) {
	scores := make([]AbilityScore, 0, 6)
	for i := 0; i < 6; i++ {
		rolls, err := e.roller.RollN(4, 6)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll ability score %d", i+1)
		}

		sorted := append([]int(nil), rolls...)
		sort.Ints(sorted)

		total := 0
		for _, r := range sorted[1:] {
			total += r
		}

		scores = append(scores, AbilityScore{
			Rolls:   rolls,
			Dropped: sorted[0],
			Total:   total,
		})
	}
	return scores, nil
}

// Damage rolls damage dice
func (e *engine) Damage(notation string, critical bool) (*entities.DiceRollResult, error) {
	n, err := ParseNotation(notation)
	if err != nil {
		return nil, err
	}
	if critical {
		n.Count *= 2
		if n.Count > MaxCount {
			return nil, errors.InvalidNotationf("critical damage %s doubles to more than %d dice", notation, MaxCount)
		}
	}

	result, err := e.RollNotation(n, RollOptions{})
	if err != nil {
		return nil, err
	}
	result.Notation = notation
	return result, nil
}

// Initiative rolls 1d20 plus dexterity
func (e *engine) Initiative(dexModifier int) (*entities.DiceRollResult, error) {
	return e.RollNotation(Notation{Count: 1, Faces: 20, Modifier: dexModifier}, RollOptions{})
}

// Check rolls against a difficulty class
func (e *engine) Check(modifier, dc int, opts RollOptions) (*CheckResult, error) {
	roll, err := e.RollNotation(Notation{Count: 1, Faces: 20, Modifier: modifier}, opts)
	if err != nil {
		return nil, err
	}
	return &CheckResult{
		Roll:    roll,
		DC:      dc,
		Success: roll.Total >= dc,
	}, nil
}

// HitPoints rolls hit points for one level, never less than 1
func (e *engine) HitPoints(hitDie string, conModifier, level int) (int, error) {
	n, err := ParseNotation(hitDie)
	if err != nil {
		return 0, err
	}
	if level < 1 {
		return 0, errors.InvalidArgumentf("level must be at least 1, got %d", level)
	}
	if level == 1 {
		return max(1, n.Count*n.Faces+conModifier), nil
	}

	roll, err := e.RollNotation(n, RollOptions{})
	if err != nil {
		return 0, err
	}
	return max(1, roll.Total+conModifier), nil
}
