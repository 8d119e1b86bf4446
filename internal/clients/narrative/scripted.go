package narrative

import (
	"context"
	"fmt"
	"strings"

	toolkitdice "github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-party/internal/errors"
)

var personalityLines = map[string]map[Situation][]string{
	"brave": {
		SituationCombat: {
			"Let's charge in and show them what we're made of!",
			"I'll lead the charge! Follow me, companions!",
			"No enemy can stand against our united strength!",
		},
		SituationExploration: {
			"I say we press forward! Adventure awaits!",
			"Whatever lies ahead, we'll face it together!",
			"Bold action is the path to glory!",
		},
		SituationSocial: {
			"Let me speak for the party - we mean business!",
			"We stand united in our cause!",
			"Honor and courage guide our path!",
		},
	},
	"wise": {
		SituationCombat: {
			"Let us think strategically about this encounter.",
			"Knowledge of our foe will serve us better than rash action.",
			"Ancient wisdom teaches patience in battle.",
		},
		SituationExploration: {
			"These ancient markings suggest we should proceed carefully.",
			"The arcane energies here are... unusual. We must be cautious.",
			"My studies have prepared me for such mysteries.",
		},
		SituationSocial: {
			"Perhaps diplomacy would serve us better than force.",
			"Let us hear all perspectives before deciding.",
			"Wisdom often lies in understanding others.",
		},
	},
	"witty": {
		SituationCombat: {
			"Well, this looks like fun! Anyone else excited about potential death?",
			"I vote we try the 'not dying' strategy. Anyone else on board?",
			"Great, another chance to test my running speed!",
		},
		SituationExploration: {
			"Nothing says 'adventure' like a suspiciously convenient entrance!",
			"I love when ancient places look this welcoming and safe.",
			"What could possibly go wrong? Famous last words, party!",
		},
		SituationSocial: {
			"I'm sure this conversation will go perfectly smoothly.",
			"Let me handle this with my legendary charm and tact.",
			"Time to deploy my secret weapon: sarcasm!",
		},
	},
	"protective": {
		SituationCombat: {
			"Stay close, my friends. I'll keep you safe.",
			"May the divine light protect us in this battle.",
			"I call upon sacred power to shield our party!",
		},
		SituationExploration: {
			"Let me check for dangers before we proceed.",
			"The gods watch over righteous travelers.",
			"I sense we are not alone here. Stay vigilant.",
		},
		SituationSocial: {
			"Let us approach with open hearts and peaceful intent.",
			"All souls deserve compassion and understanding.",
			"May we find common ground in this exchange.",
		},
	},
}

// dmLines are keyed by the first keyword found in the action
var dmLines = []struct {
	keyword string
	lines   []string
}{
	{"investigate", []string{
		"As you examine the area more closely, you notice...",
		"Your keen observation reveals something interesting...",
		"Looking carefully, you discover...",
	}},
	{"attack", []string{
		"Roll for initiative! Combat begins!",
		"Your weapon strikes true!",
		"The battle is fierce and chaotic!",
	}},
	{"talk", []string{
		"Your words carry weight in this moment...",
		"The conversation takes an interesting turn...",
		"Your diplomatic approach yields results...",
	}},
	{"explore", []string{
		"As you venture forward, the path reveals...",
		"Your exploration uncovers new mysteries...",
		"The journey continues with unexpected discoveries...",
	}},
}

// ScriptedConfig holds the dependencies for the scripted generator
type ScriptedConfig struct {
	// Roller picks lines and check modifiers. Defaults to the toolkit's DefaultRoller.
	Roller toolkitdice.Roller
}

type scripted struct {
	roller toolkitdice.Roller
}

// NewScripted creates a generator that answers from fixed tables. It needs
// no network and never times out.
func NewScripted(cfg *ScriptedConfig) Generator {
	roller := toolkitdice.DefaultRoller
	if cfg != nil && cfg.Roller != nil {
		roller = cfg.Roller
	}
	return &scripted{roller: roller}
}

func (g *scripted) Generate(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.InvalidArgument("request is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "generate canceled")
	}

	switch req.Role {
	case RoleDM:
		return g.dm(req)
	case RoleCompanion:
		return g.companion(req)
	default:
		return nil, errors.InvalidArgumentf("unknown role %q", req.Role)
	}
}

func (g *scripted) dm(req *Request) (*Response, error) {
	text := promptText(req.Prompt)

	lines := dmLines[len(dmLines)-1].lines
	for _, entry := range dmLines {
		if strings.Contains(text, entry.keyword) {
			lines = entry.lines
			break
		}
	}

	line, err := g.pick(lines)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		ActionLabel: ActionNarrate,
		Dialogue:    line,
	}

	// Dice the player names are rolled as written
	resp.RollNotation = ExtractNotation(req.Prompt)
	if resp.RollNotation == "" && CallsForCheck(req.Prompt) {
		bonus, err := g.roller.Roll(6)
		if err != nil {
			return nil, errors.Wrap(err, "failed to pick check modifier")
		}
		resp.RollNotation = fmt.Sprintf("1d20+%d", bonus-1)
	}
	if resp.RollNotation != "" {
		resp.Advantage, resp.Disadvantage = RollModifiers(req.Prompt)
	}

	return resp, nil
}

func (g *scripted) companion(req *Request) (*Response, error) {
	member := req.Speaker
	if member.ID == "" {
		return nil, errors.InvalidArgument("companion speaker is required")
	}

	situation := Classify(req.Prompt)
	lines := personalityLines[member.Personality][situation]
	if len(lines) == 0 {
		return &Response{
			ActionLabel: ActionType(member, req.Prompt),
			Dialogue:    fmt.Sprintf("%s considers the situation carefully.", member.DisplayName),
		}, nil
	}

	line, err := g.pick(lines)
	if err != nil {
		return nil, err
	}

	if member.Class == "warrior" && !strings.Contains(line, "ye") {
		flip, err := g.roller.Roll(2)
		if err != nil {
			return nil, errors.Wrap(err, "failed to roll accent")
		}
		if flip == 1 {
			line = dwarvenAccent(line)
		}
	}

	return &Response{
		ActionLabel: ActionType(member, req.Prompt),
		Dialogue:    line,
	}, nil
}

func (g *scripted) pick(lines []string) (string, error) {
	n, err := g.roller.Roll(len(lines))
	if err != nil {
		return "", errors.Wrap(err, "failed to pick line")
	}
	return lines[n-1], nil
}

var accent = strings.NewReplacer("your", "yer", "you", "ye")

func dwarvenAccent(line string) string {
	return accent.Replace(line)
}
