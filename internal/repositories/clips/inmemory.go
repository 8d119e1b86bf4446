package clips

import (
	"context"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-party/internal/pkg/idgen"
)

type storedClip struct {
	clip      Clip
	expiresAt time.Time
}

// InMemoryRepository keeps clips in process memory
type InMemoryRepository struct {
	mu    sync.RWMutex
	clock clock.Clock
	idGen idgen.Generator
	store map[string]storedClip
}

// NewInMemory creates an in-memory clip store
func NewInMemory(clk clock.Clock, idGen idgen.Generator) *InMemoryRepository {
	if clk == nil {
		clk = clock.New()
	}
	if idGen == nil {
		idGen = idgen.NewUUID("clip")
	}
	return &InMemoryRepository{
		clock: clk,
		idGen: idGen,
		store: make(map[string]storedClip),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Save stores a copy of the audio
func (r *InMemoryRepository) Save(_ context.Context, input *SaveInput) (*SaveOutput, error) {
	if err := validateSave(input); err != nil {
		return nil, err
	}

	ttl := input.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	now := r.clock.Now()
	ref := r.idGen.Generate()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[ref] = storedClip{
		clip: Clip{
			Ref:         ref,
			SessionID:   input.SessionID,
			SpeakerID:   input.SpeakerID,
			ContentType: input.ContentType,
			Audio:       append([]byte(nil), input.Audio...),
			CreatedAt:   now,
		},
		expiresAt: now.Add(ttl),
	}

	return &SaveOutput{ClipRef: ref}, nil
}

// Get returns a clip unless it expired
func (r *InMemoryRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.ClipRef == "" {
		return nil, errors.InvalidArgument("clip ref is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.store[input.ClipRef]
	if !ok || r.clock.Now().After(stored.expiresAt) {
		return nil, errors.NotFoundf("clip %s not found", input.ClipRef)
	}

	clip := stored.clip
	clip.Audio = append([]byte(nil), stored.clip.Audio...)
	return &GetOutput{Clip: &clip}, nil
}

// Delete removes a clip
func (r *InMemoryRepository) Delete(_ context.Context, clipRef string) error {
	if clipRef == "" {
		return errors.InvalidArgument("clip ref is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, clipRef)
	return nil
}
