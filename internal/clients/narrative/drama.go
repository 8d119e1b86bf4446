package narrative

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-party/internal/entities"
)

// DramaLevel grades how a check went, for narration
type DramaLevel string

const (
	DramaLegendary       DramaLevel = "LEGENDARY"
	DramaHeroic          DramaLevel = "HEROIC"
	DramaSuccess         DramaLevel = "SUCCESS"
	DramaClose           DramaLevel = "CLOSE"
	DramaStruggle        DramaLevel = "STRUGGLE"
	DramaDramaticFailure DramaLevel = "DRAMATIC_FAILURE"
)

// Drama grades a roll. A natural maximum is always legendary and a
// natural one always a dramatic failure; otherwise the total decides.
func Drama(roll *entities.DiceRollResult) DramaLevel {
	switch {
	case roll.IsCriticalMax:
		return DramaLegendary
	case roll.IsCriticalMin:
		return DramaDramaticFailure
	case roll.Total >= 20:
		return DramaHeroic
	case roll.Total >= 15:
		return DramaSuccess
	case roll.Total >= 10:
		return DramaClose
	case roll.Total >= 5:
		return DramaStruggle
	default:
		return DramaDramaticFailure
	}
}

var dramaLines = map[DramaLevel]string{
	DramaLegendary:       "A natural %d! The dice shine with destiny for a total of %d!",
	DramaHeroic:          "Heroic! A magnificent %[2]d.",
	DramaSuccess:         "A solid %[2]d gets it done.",
	DramaClose:           "%[2]d... right on the edge of success.",
	DramaStruggle:        "%[2]d. This won't be easy.",
	DramaDramaticFailure: "%[2]d. The dice betray you!",
}

// DescribeRoll narrates a roll's outcome in one line
func DescribeRoll(roll *entities.DiceRollResult) string {
	line := fmt.Sprintf(dramaLines[Drama(roll)], roll.ChosenRoll, roll.Total)

	switch roll.Mode {
	case entities.RollModeAdvantage, entities.RollModeDisadvantage:
		line += " (" + string(roll.Mode) + ")"
	}

	if len(roll.RawRolls) > 1 {
		rolled := make([]string, len(roll.RawRolls))
		for i, r := range roll.RawRolls {
			rolled[i] = strconv.Itoa(r)
		}
		line += " [Rolled: " + strings.Join(rolled, ", ") + "]"
	}
	return line
}
