package voice

import (
	"context"
	"io"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/KirkDiggler/rpg-party/internal/errors"
)

const contentTypeMP3 = "audio/mpeg"

// OpenAIConfig configures the text-to-speech synthesizer
type OpenAIConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Profiles Profiles

	// MaxInputLength truncates very long dialogue before synthesis
	MaxInputLength int
}

// Validate ensures all required settings are provided
func (c *OpenAIConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("APIKey", c.APIKey, vb)
	errors.ValidateNonNegative("MaxInputLength", c.MaxInputLength, vb)

	return vb.Build()
}

type openAISynthesizer struct {
	client   openai.Client
	model    openai.SpeechModel
	profiles Profiles
	maxInput int
}

// NewOpenAI creates a synthesizer backed by the audio speech API
func NewOpenAI(cfg *OpenAIConfig) (Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	s := &openAISynthesizer{
		client:   openai.NewClient(opts...),
		model:    openai.SpeechModelTTS1,
		profiles: cfg.Profiles,
		maxInput: 4096,
	}
	if cfg.Model != "" {
		s.model = openai.SpeechModel(cfg.Model)
	}
	if cfg.MaxInputLength > 0 {
		s.maxInput = cfg.MaxInputLength
	}

	return s, nil
}

func (s *openAISynthesizer) Synthesize(ctx context.Context, input *SynthesizeInput) (*SynthesizeOutput, error) {
	if input == nil || input.Text == "" {
		return nil, errors.InvalidArgument("text is required")
	}

	text := input.Text
	if len(text) > s.maxInput {
		text = text[:s.maxInput]
	}

	profile := s.profiles.Lookup(input.VoiceProfile)
	params := openai.AudioSpeechNewParams{
		Input:          text,
		Model:          s.model,
		Voice:          openai.AudioSpeechNewParamsVoice(profile.ProviderVoice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	}
	if profile.Speed > 0 {
		params.Speed = openai.Float(profile.Speed)
	}

	resp, err := s.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "speech request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read speech audio")
	}
	if len(audio) == 0 {
		return nil, errors.Unavailable("speech response was empty")
	}

	slog.Debug("Speech synthesized",
		"session_id", input.SessionID,
		"speaker_id", input.SpeakerID,
		"voice", profile.ProviderVoice,
		"bytes", len(audio),
	)

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeMP3
	}

	return &SynthesizeOutput{
		Audio:       audio,
		ContentType: contentType,
	}, nil
}
