// Package narrative produces dialogue for the dungeon master and the
// autonomous companions. Two generators ship: a scripted one driven by
// personality tables and one backed by an OpenAI chat model.
package narrative

//go:generate mockgen -destination=mock/mock_generator.go -package=narrativemock github.com/KirkDiggler/rpg-party/internal/clients/narrative Generator

import (
	"context"
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-party/internal/engine/dice"
	"github.com/KirkDiggler/rpg-party/internal/entities"
)

// Role says who is speaking
type Role string

const (
	RoleDM        Role = "dm"
	RoleCompanion Role = "companion"
)

// Situation is the broad kind of scene an action creates
type Situation string

const (
	SituationCombat      Situation = "combat"
	SituationExploration Situation = "exploration"
	SituationSocial      Situation = "social"
)

// Action types a companion can take
const (
	ActionMeleeAttack  = "melee_attack"
	ActionCastSpell    = "cast_spell"
	ActionSneakAttack  = "sneak_attack"
	ActionSupportParty = "support_party"
	ActionHealParty    = "heal_party"
	ActionSearchArea   = "search_area"
	ActionRoleplay     = "roleplay"

	// ActionNarrate labels every DM record
	ActionNarrate = "narrate"
)

// Request is one call for dialogue
type Request struct {
	Role      Role
	SessionID string

	// Speaker is the companion about to speak. Unset for the DM.
	Speaker entities.PartyMember

	Scene string

	// Prompt is the record being responded to: the human's action for the
	// DM and companions, or the companion's own action for DM narration.
	Prompt entities.TurnRecord

	// History is the recent table talk, oldest first
	History []entities.TurnRecord
}

// Response is the generated contribution
type Response struct {
	ActionLabel string
	Dialogue    string

	// RollNotation is set when the DM calls for a check. Advantage and
	// Disadvantage apply to that check.
	RollNotation string
	Advantage    bool
	Disadvantage bool
}

// Generator produces dialogue. Implementations must honour ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

var (
	combatWords      = []string{"fight", "combat", "attack", "enemy", "battle"}
	socialWords      = []string{"talk", "speak", "negotiate", "conversation", "meet"}
	healWords        = []string{"heal", "hurt", "injured", "damage"}
	investigateWords = []string{"investigate", "search", "explore"}
	checkWords       = []string{"check", "roll", "attempt"}
)

func promptText(rec entities.TurnRecord) string {
	return strings.ToLower(rec.ActionLabel + " " + rec.Dialogue)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Classify reads the situation out of an action's text
func Classify(rec entities.TurnRecord) Situation {
	text := promptText(rec)
	switch {
	case containsAny(text, combatWords):
		return SituationCombat
	case containsAny(text, socialWords):
		return SituationSocial
	default:
		return SituationExploration
	}
}

// ActionType picks what a companion does in response to rec, by class
func ActionType(member entities.PartyMember, rec entities.TurnRecord) string {
	text := promptText(rec)

	switch {
	case containsAny(text, combatWords):
		switch member.Class {
		case "warrior":
			return ActionMeleeAttack
		case "mage":
			return ActionCastSpell
		case "rogue":
			return ActionSneakAttack
		case "cleric":
			return ActionSupportParty
		}
	case containsAny(text, healWords):
		if member.Class == "cleric" {
			return ActionHealParty
		}
	case containsAny(text, investigateWords):
		if member.Class == "rogue" {
			return ActionSearchArea
		}
	}

	return ActionRoleplay
}

// CallsForCheck reports whether the action asks the DM for a roll
func CallsForCheck(rec entities.TurnRecord) bool {
	return containsAny(promptText(rec), checkWords)
}

var notationPattern = regexp.MustCompile(`\b(\d*)d(\d+)([+-]\d+)?\b`)

// ExtractNotation returns the first usable dice notation written in the
// action, such as "2d6+3", or "" when there is none
func ExtractNotation(rec entities.TurnRecord) string {
	for _, m := range notationPattern.FindAllStringSubmatch(promptText(rec), -1) {
		count := m[1]
		if count == "" {
			count = "1"
		}
		notation := count + "d" + m[2] + m[3]
		if _, err := dice.ParseNotation(notation); err == nil {
			return notation
		}
	}
	return ""
}

// RollModifiers reads advantage and disadvantage out of the action
func RollModifiers(rec entities.TurnRecord) (advantage, disadvantage bool) {
	text := promptText(rec)
	disadvantage = strings.Contains(text, "disadvantage")
	advantage = strings.Contains(strings.ReplaceAll(text, "disadvantage", ""), "advantage")
	return advantage, disadvantage
}
