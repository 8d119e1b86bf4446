// Package sessions stores session snapshots so they can be listed and
// inspected outside the live session lock
package sessions

//go:generate mockgen -destination=mock/mock_repository.go -package=sessionsmock github.com/KirkDiggler/rpg-party/internal/repositories/sessions Repository

import (
	"context"

	"github.com/KirkDiggler/rpg-party/internal/entities"
)

// Repository defines the storage interface for session snapshots
type Repository interface {
	// Save stores or replaces a snapshot
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)

	// Get retrieves a snapshot by session ID
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// List returns snapshots, newest first
	List(ctx context.Context, input *ListInput) (*ListOutput, error)

	// Delete removes a snapshot
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

// SaveInput defines the request for saving a snapshot
type SaveInput struct {
	Session *entities.Session
}

// SaveOutput defines the response for saving a snapshot
type SaveOutput struct{}

// GetInput defines the request for retrieving a snapshot
type GetInput struct {
	SessionID string
}

// GetOutput defines the response for retrieving a snapshot
type GetOutput struct {
	Session *entities.Session
}

// ListInput defines the request for listing snapshots
type ListInput struct {
	// State filters by lifecycle state when set
	State entities.SessionState
	Limit int
}

// ListOutput defines the response for listing snapshots
type ListOutput struct {
	Sessions []*entities.Session
}

// DeleteInput defines the request for deleting a snapshot
type DeleteInput struct {
	SessionID string
}

// DeleteOutput defines the response for deleting a snapshot
type DeleteOutput struct {
	Deleted bool
}

func validateSave(input *SaveInput) error {
	if input == nil || input.Session == nil {
		return errSessionRequired
	}
	if input.Session.ID == "" {
		return errSessionIDRequired
	}
	return nil
}
