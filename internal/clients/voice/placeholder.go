package voice

import (
	"bytes"
	"context"
	"encoding/binary"
	"time"

	"github.com/KirkDiggler/rpg-party/internal/errors"
)

const (
	placeholderSampleRate = 8000
	contentTypeWAV        = "audio/wav"
)

// PlaceholderConfig configures the offline synthesizer
type PlaceholderConfig struct {
	// WordDuration is how long each word of dialogue lasts. Defaults to 250ms.
	WordDuration time.Duration
}

type placeholder struct {
	wordDuration time.Duration
}

// NewPlaceholder returns a synthesizer that renders silence sized to the
// dialogue, so the playback pipeline can run without a speech provider
func NewPlaceholder(cfg *PlaceholderConfig) Synthesizer {
	p := &placeholder{wordDuration: 250 * time.Millisecond}
	if cfg != nil && cfg.WordDuration > 0 {
		p.wordDuration = cfg.WordDuration
	}
	return p
}

func (p *placeholder) Synthesize(ctx context.Context, input *SynthesizeInput) (*SynthesizeOutput, error) {
	if input == nil || input.Text == "" {
		return nil, errors.InvalidArgument("text is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "synthesize canceled")
	}

	words := len(bytes.Fields([]byte(input.Text)))
	duration := time.Duration(words) * p.wordDuration

	return &SynthesizeOutput{
		Audio:       silentWAV(duration),
		ContentType: contentTypeWAV,
	}, nil
}

// silentWAV builds a mono 8-bit PCM file of the given length
func silentWAV(d time.Duration) []byte {
	samples := int(int64(d) * placeholderSampleRate / int64(time.Second))

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+samples))
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))                    // fmt chunk size
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))                     // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))                     // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(placeholderSampleRate)) // sample rate
	_ = binary.Write(&buf, binary.LittleEndian, uint32(placeholderSampleRate)) // byte rate
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))                     // block align
	_ = binary.Write(&buf, binary.LittleEndian, uint16(8))                     // bits per sample
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(samples))
	buf.Write(bytes.Repeat([]byte{0x80}, samples))

	return buf.Bytes()
}
