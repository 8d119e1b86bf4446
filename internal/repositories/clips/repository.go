// Package clips stores synthesized audio so transports can fetch it by reference
package clips

//go:generate mockgen -destination=mock/mock_repository.go -package=clipsmock github.com/KirkDiggler/rpg-party/internal/repositories/clips Repository

import (
	"context"
	"time"
)

// DefaultTTL keeps a clip long enough to be played and replayed
const DefaultTTL = 30 * time.Minute

// Clip is one stored audio file
type Clip struct {
	Ref         string
	SessionID   string
	SpeakerID   string
	ContentType string
	Audio       []byte
	CreatedAt   time.Time
}

// SaveInput contains the audio to store
type SaveInput struct {
	SessionID   string
	SpeakerID   string
	ContentType string
	Audio       []byte
	TTL         time.Duration
}

// SaveOutput contains the reference of the stored clip
type SaveOutput struct {
	ClipRef string
}

// GetInput identifies a clip
type GetInput struct {
	ClipRef string
}

// GetOutput contains the stored clip
type GetOutput struct {
	Clip *Clip
}

// Repository defines clip storage
type Repository interface {
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)
	Delete(ctx context.Context, clipRef string) error
}
