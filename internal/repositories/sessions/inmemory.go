package sessions

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
)

var (
	errSessionRequired   = errors.InvalidArgument("session is required")
	errSessionIDRequired = errors.InvalidArgument("session ID is required")
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*entities.Session
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{
		store: make(map[string]*entities.Session),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Save stores a copy of the session
func (r *InMemoryRepository) Save(_ context.Context, input *SaveInput) (*SaveOutput, error) {
	if err := validateSave(input); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[input.Session.ID] = input.Session.Clone()

	return &SaveOutput{}, nil
}

// Get retrieves a session by ID
func (r *InMemoryRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errSessionIDRequired
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.store[input.SessionID]
	if !exists {
		return nil, errors.NotFoundf("session %s not found", input.SessionID)
	}

	// Return a copy to prevent external modification
	return &GetOutput{Session: session.Clone()}, nil
}

// List returns sessions newest first
func (r *InMemoryRepository) List(_ context.Context, input *ListInput) (*ListOutput, error) {
	if input == nil {
		input = &ListInput{}
	}

	r.mu.RLock()
	out := make([]*entities.Session, 0, len(r.store))
	for _, session := range r.store {
		if input.State != "" && session.State != input.State {
			continue
		}
		out = append(out, session.Clone())
	}
	r.mu.RUnlock()

	sortNewestFirst(out)
	if input.Limit > 0 && len(out) > input.Limit {
		out = out[:input.Limit]
	}

	return &ListOutput{Sessions: out}, nil
}

// Delete removes a session
func (r *InMemoryRepository) Delete(_ context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errSessionIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.store[input.SessionID]
	delete(r.store, input.SessionID)

	return &DeleteOutput{Deleted: exists}, nil
}

func sortNewestFirst(list []*entities.Session) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
