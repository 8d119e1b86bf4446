package narrative_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-party/internal/clients/narrative"
	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
)

// firstRoller always rolls a one
type firstRoller struct{}

func (firstRoller) Roll(_ int) (int, error) { return 1, nil }

func (firstRoller) RollN(count, _ int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i] = 1
	}
	return out, nil
}

type ScriptedTestSuite struct {
	suite.Suite
	ctx       context.Context
	generator narrative.Generator
}

func TestScriptedSuite(t *testing.T) {
	suite.Run(t, new(ScriptedTestSuite))
}

func (s *ScriptedTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.generator = narrative.NewScripted(&narrative.ScriptedConfig{Roller: firstRoller{}})
}

func action(label, dialogue string) entities.TurnRecord {
	return entities.TurnRecord{
		SpeakerID:   "human_1",
		SpeakerName: "Aria",
		ActionLabel: label,
		Dialogue:    dialogue,
	}
}

func (s *ScriptedTestSuite) TestCompanionLineFollowsPersonality() {
	resp, err := s.generator.Generate(s.ctx, &narrative.Request{
		Role: narrative.RoleCompanion,
		Speaker: entities.PartyMember{
			ID:          "elara",
			DisplayName: "Elara Moonwhisper",
			Class:       "mage",
			Personality: "wise",
		},
		Prompt: action("attack", "I attack the goblin"),
	})
	s.Require().NoError(err)
	s.Equal("Let us think strategically about this encounter.", resp.Dialogue)
	s.Equal(narrative.ActionCastSpell, resp.ActionLabel)
	s.Empty(resp.RollNotation)
}

func (s *ScriptedTestSuite) TestWarriorSpeaksWithAccent() {
	resp, err := s.generator.Generate(s.ctx, &narrative.Request{
		Role: narrative.RoleCompanion,
		Speaker: entities.PartyMember{
			ID:          "thorgar",
			DisplayName: "Thorgar Ironbeard",
			Class:       "warrior",
			Personality: "protective",
		},
		Prompt: action("fight", "Into battle!"),
	})
	s.Require().NoError(err)
	s.Equal("Stay close, my friends. I'll keep ye safe.", resp.Dialogue)
	s.Equal(narrative.ActionMeleeAttack, resp.ActionLabel)
}

func (s *ScriptedTestSuite) TestUnknownPersonalityFallsBack() {
	resp, err := s.generator.Generate(s.ctx, &narrative.Request{
		Role: narrative.RoleCompanion,
		Speaker: entities.PartyMember{
			ID:          "grum",
			DisplayName: "Grum",
			Personality: "grumpy",
		},
		Prompt: action("wait", ""),
	})
	s.Require().NoError(err)
	s.Equal("Grum considers the situation carefully.", resp.Dialogue)
	s.Equal(narrative.ActionRoleplay, resp.ActionLabel)
}

func (s *ScriptedTestSuite) TestDMCallsForCheck() {
	resp, err := s.generator.Generate(s.ctx, &narrative.Request{
		Role:   narrative.RoleDM,
		Prompt: action("investigate", "I attempt to read the runes"),
	})
	s.Require().NoError(err)
	s.Equal("As you examine the area more closely, you notice...", resp.Dialogue)
	s.Equal(narrative.ActionNarrate, resp.ActionLabel)
	s.Equal("1d20+0", resp.RollNotation)
}

func (s *ScriptedTestSuite) TestDMRollsDiceNamedByPlayer() {
	testCases := []struct {
		name         string
		dialogue     string
		notation     string
		advantage    bool
		disadvantage bool
	}{
		{name: "explicit notation", dialogue: "I swing my axe for 2d6+3", notation: "2d6+3"},
		{name: "count defaults to one", dialogue: "Let me roll d8-1 for luck", notation: "1d8-1"},
		{name: "advantage", dialogue: "I attempt the climb with advantage", notation: "1d20+0", advantage: true},
		{name: "disadvantage", dialogue: "I roll 1d20+2 at disadvantage", notation: "1d20+2", disadvantage: true},
		{name: "both cancel out", dialogue: "Advantage from the rope, disadvantage from the rain, I roll", notation: "1d20+0", advantage: true, disadvantage: true},
		{name: "unusable notation falls back", dialogue: "I roll 1d1", notation: "1d20+0"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp, err := s.generator.Generate(s.ctx, &narrative.Request{
				Role:   narrative.RoleDM,
				Prompt: action("explore", tc.dialogue),
			})
			s.Require().NoError(err)
			s.Equal(tc.notation, resp.RollNotation)
			s.Equal(tc.advantage, resp.Advantage)
			s.Equal(tc.disadvantage, resp.Disadvantage)
		})
	}
}

func (s *ScriptedTestSuite) TestDMDefaultsToExploration() {
	resp, err := s.generator.Generate(s.ctx, &narrative.Request{
		Role:   narrative.RoleDM,
		Prompt: action("sing", "A song for the road"),
	})
	s.Require().NoError(err)
	s.Equal("As you venture forward, the path reveals...", resp.Dialogue)
	s.Empty(resp.RollNotation)
}

func (s *ScriptedTestSuite) TestRejectsBadRequests() {
	_, err := s.generator.Generate(s.ctx, &narrative.Request{Role: "bard"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.generator.Generate(s.ctx, &narrative.Request{Role: narrative.RoleCompanion})
	s.True(errors.IsInvalidArgument(err))

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err = s.generator.Generate(ctx, &narrative.Request{Role: narrative.RoleDM})
	s.True(errors.IsCanceled(err))
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		dialogue string
		expected narrative.Situation
	}{
		{"We must fight them", narrative.SituationCombat},
		{"Let me talk to the guard", narrative.SituationSocial},
		{"Onward into the dark", narrative.SituationExploration},
	}

	for _, tc := range testCases {
		t.Run(tc.dialogue, func(t *testing.T) {
			if got := narrative.Classify(action("", tc.dialogue)); got != tc.expected {
				t.Errorf("Classify(%q) = %s, want %s", tc.dialogue, got, tc.expected)
			}
		})
	}
}
