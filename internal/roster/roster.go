// Package roster loads the table setup: the default companions, the
// opening scenes and the voice profiles they speak with.
package roster

import (
	_ "embed"
	"os"

	toolkitdice "github.com/KirkDiggler/rpg-toolkit/dice"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-party/internal/clients/voice"
	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
)

//go:embed default.yaml
var defaultRoster []byte

// Companion is an autonomous party member as written in the roster file
type Companion struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Class       string `yaml:"class" json:"class"`
	Personality string `yaml:"personality" json:"personality"`
	Voice       string `yaml:"voice" json:"voice"`
}

// Member converts the companion to a seat at the table
func (c Companion) Member() entities.PartyMember {
	return entities.PartyMember{
		ID:           c.ID,
		DisplayName:  c.Name,
		Kind:         entities.KindAutonomous,
		VoiceProfile: c.Voice,
		Class:        c.Class,
		Personality:  c.Personality,
	}
}

// Scene is an opening scene
type Scene struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Setting     string `yaml:"setting,omitempty" json:"setting,omitempty"`
	Mood        string `yaml:"mood,omitempty" json:"mood,omitempty"`
}

// Roster is the table setup
type Roster struct {
	Party  []Companion     `yaml:"party"`
	Scenes []Scene         `yaml:"scenes"`
	Voices []voice.Profile `yaml:"voices"`
}

// Default returns the built-in roster
func Default() *Roster {
	r, err := FromYAML(defaultRoster)
	if err != nil {
		panic("roster: built-in roster is invalid: " + err.Error())
	}
	return r
}

// FromYAML parses and validates a roster
func FromYAML(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid roster yaml")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Load reads a roster file. An empty path returns the built-in roster.
func Load(path string) (*Roster, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read roster %s", path)
	}
	return FromYAML(data)
}

// Validate checks that the roster can seat a party and open a scene
func (r *Roster) Validate() error {
	vb := errors.NewValidationBuilder()

	if len(r.Party) == 0 {
		vb.Field("party", "at least one companion is required")
	}
	seen := make(map[string]bool, len(r.Party))
	for i, c := range r.Party {
		if c.ID == "" {
			vb.Fieldf("party", "companion %d has no id", i)
			continue
		}
		if c.ID == entities.DMSpeakerID {
			vb.Fieldf("party", "companion id %q is reserved", c.ID)
		}
		if seen[c.ID] {
			vb.Fieldf("party", "duplicate companion id %q", c.ID)
		}
		seen[c.ID] = true
		if c.Name == "" {
			vb.Fieldf("party", "companion %q has no name", c.ID)
		}
	}

	if len(r.Scenes) == 0 {
		vb.Field("scenes", "at least one scene is required")
	}
	for i, s := range r.Scenes {
		if s.Title == "" {
			vb.Fieldf("scenes", "scene %d has no title", i)
		}
	}

	for i, v := range r.Voices {
		if v.Name == "" || v.ProviderVoice == "" {
			vb.Fieldf("voices", "voice %d needs a name and a provider voice", i)
		}
		if v.Speed < 0 {
			vb.Fieldf("voices", "voice %q has a negative speed", v.Name)
		}
	}

	return vb.Build()
}

// Members returns the companions as party members, in roster order
func (r *Roster) Members() []entities.PartyMember {
	members := make([]entities.PartyMember, 0, len(r.Party))
	for _, c := range r.Party {
		members = append(members, c.Member())
	}
	return members
}

// Profiles returns the voice profiles keyed by name
func (r *Roster) Profiles() voice.Profiles {
	profiles := make(voice.Profiles, len(r.Voices))
	for _, v := range r.Voices {
		if v.Speed == 0 {
			v.Speed = 1.0
		}
		profiles[v.Name] = v
	}
	return profiles
}

// Scene finds a scene by title
func (r *Roster) Scene(title string) (Scene, bool) {
	for _, s := range r.Scenes {
		if s.Title == title {
			return s, true
		}
	}
	return Scene{}, false
}

// PickScene chooses an opening scene at random
func (r *Roster) PickScene(roller toolkitdice.Roller) (Scene, error) {
	if len(r.Scenes) == 0 {
		return Scene{}, errors.FailedPrecondition("roster has no scenes")
	}
	if roller == nil {
		roller = toolkitdice.DefaultRoller
	}
	if len(r.Scenes) == 1 {
		return r.Scenes[0], nil
	}

	n, err := roller.Roll(len(r.Scenes))
	if err != nil {
		return Scene{}, errors.Wrap(err, "failed to pick scene")
	}
	return r.Scenes[n-1], nil
}
