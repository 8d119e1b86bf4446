// Package voice turns dialogue into audio clips
package voice

//go:generate mockgen -destination=mock/mock_synthesizer.go -package=voicemock github.com/KirkDiggler/rpg-party/internal/clients/voice Synthesizer

import (
	"context"
)

// Profile maps a character voice to a provider voice
type Profile struct {
	Name          string  `yaml:"name" json:"name"`
	ProviderVoice string  `yaml:"provider_voice" json:"provider_voice"`
	Speed         float64 `yaml:"speed" json:"speed"`
	Description   string  `yaml:"description,omitempty" json:"description,omitempty"`
}

// DefaultProfile is used for members whose profile is unknown
var DefaultProfile = Profile{
	Name:          "default",
	ProviderVoice: "alloy",
	Speed:         1.0,
}

// SynthesizeInput is one line to speak
type SynthesizeInput struct {
	SessionID    string
	SpeakerID    string
	VoiceProfile string
	Text         string
}

// SynthesizeOutput is the rendered clip
type SynthesizeOutput struct {
	Audio       []byte
	ContentType string
}

// Synthesizer renders speech
type Synthesizer interface {
	Synthesize(ctx context.Context, input *SynthesizeInput) (*SynthesizeOutput, error)
}

// Profiles is a lookup with a fallback
type Profiles map[string]Profile

// Lookup returns the named profile or DefaultProfile
func (p Profiles) Lookup(name string) Profile {
	if profile, ok := p[name]; ok {
		return profile
	}
	return DefaultProfile
}
