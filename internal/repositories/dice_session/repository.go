// Package dicesession stores dice roll logs grouped by session and context
package dicesession

import (
	"context"
	"time"

	"github.com/KirkDiggler/rpg-party/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=dicesessionmock github.com/KirkDiggler/rpg-party/internal/repositories/dice_session Repository

// DiceSession is a log of rolls grouped by entity and context
type DiceSession struct {
	// Entity that owns these rolls (e.g., "sess_123")
	EntityID string `json:"entity_id"`

	// Context for grouping related rolls (e.g., "table", "ability_scores")
	Context string `json:"context"`

	// The rolls in the order they were made
	Rolls []DiceRoll `json:"rolls"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DiceRoll is one logged roll
type DiceRoll struct {
	RollID string `json:"roll_id"`

	// Member who rolled, empty for rolls made outside a turn
	RolledBy string `json:"rolled_by,omitempty"`

	// Human-readable description of the roll
	Description string `json:"description,omitempty"`

	Result entities.DiceRollResult `json:"result"`

	// Dice dropped by a keep-highest method such as 4d6 drop lowest
	Dropped []int `json:"dropped,omitempty"`

	RolledAt time.Time `json:"rolled_at"`
}

// CreateInput contains parameters for creating a dice session
type CreateInput struct {
	EntityID string
	Context  string
	Rolls    []DiceRoll
	TTL      time.Duration // How long the session should live
}

// CreateOutput contains the result of creating a dice session
type CreateOutput struct {
	Session *DiceSession
}

// GetInput contains parameters for retrieving a dice session
type GetInput struct {
	EntityID string
	Context  string
}

// GetOutput contains the result of retrieving a dice session
type GetOutput struct {
	Session *DiceSession
}

// DeleteInput contains parameters for deleting a dice session
type DeleteInput struct {
	EntityID string
	Context  string
}

// DeleteOutput contains the result of deleting a dice session
type DeleteOutput struct {
	RollsDeleted int32
}

// Repository defines the interface for dice session storage operations
type Repository interface {
	// Create stores a new dice session with the specified TTL
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a dice session by entity ID and context
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Delete removes a dice session
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// Update replaces an existing dice session (used for adding rolls)
	Update(ctx context.Context, session *DiceSession) error
}

func validateKey(entityID, context string) error {
	if entityID == "" {
		return errEntityIDEmpty
	}
	if context == "" {
		return errContextEmpty
	}
	return nil
}
