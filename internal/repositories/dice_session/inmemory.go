package dicesession

import (
	"context"
	"sync"

	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/pkg/clock"
)

type memoryKey struct {
	entityID string
	context  string
}

// InMemoryRepository implements Repository without Redis, for local play
// and tests. Expired sessions are dropped on read.
type InMemoryRepository struct {
	mu    sync.RWMutex
	clock clock.Clock
	store map[memoryKey]*DiceSession
}

// NewInMemory creates a new in-memory repository. A nil clock uses wall time.
func NewInMemory(clk clock.Clock) *InMemoryRepository {
	if clk == nil {
		clk = clock.New()
	}
	return &InMemoryRepository{
		clock: clk,
		store: make(map[memoryKey]*DiceSession),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Create stores a new dice session
func (r *InMemoryRepository) Create(_ context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	ttl := input.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	now := r.clock.Now()
	session := &DiceSession{
		EntityID:  input.EntityID,
		Context:   input.Context,
		Rolls:     append([]DiceRoll(nil), input.Rolls...),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[memoryKey{input.EntityID, input.Context}] = session

	return &CreateOutput{Session: copySession(session)}, nil
}

// Get retrieves a dice session
func (r *InMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	key := memoryKey{input.EntityID, input.Context}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.store[key]
	if !ok {
		return nil, errors.NotFound("dice session not found")
	}
	if r.clock.Now().After(session.ExpiresAt) {
		delete(r.store, key)
		return nil, errors.NotFound("dice session has expired")
	}

	// Return a copy to prevent external modification
	return &GetOutput{Session: copySession(session)}, nil
}

// Delete removes a dice session. Deleting a missing session is not an error.
func (r *InMemoryRepository) Delete(_ context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	key := memoryKey{input.EntityID, input.Context}

	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int32
	if session, ok := r.store[key]; ok {
		// nolint:gosec // roll count is always small
		deleted = int32(len(session.Rolls))
		delete(r.store, key)
	}

	return &DeleteOutput{RollsDeleted: deleted}, nil
}

// Update replaces an existing dice session
func (r *InMemoryRepository) Update(_ context.Context, session *DiceSession) error {
	if session == nil {
		return errSessionNil
	}
	if err := validateKey(session.EntityID, session.Context); err != nil {
		return err
	}
	if r.clock.Now().After(session.ExpiresAt) {
		return errSessionExpired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[memoryKey{session.EntityID, session.Context}] = copySession(session)

	return nil
}

func copySession(s *DiceSession) *DiceSession {
	out := *s
	out.Rolls = append([]DiceRoll(nil), s.Rolls...)
	return &out
}
