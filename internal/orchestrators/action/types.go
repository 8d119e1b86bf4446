package action

import (
	"context"

	"github.com/KirkDiggler/rpg-party/internal/engine/turn"
	"github.com/KirkDiggler/rpg-party/internal/entities"
)

// AudioSink receives the clip of every voiced record, in sequence order
type AudioSink interface {
	Enqueue(ctx context.Context, item entities.AudioQueueItem) error
}

// RollRequest asks for dice to be rolled with an action
type RollRequest struct {
	Notation     string
	Advantage    bool
	Disadvantage bool
}

// ResolveInput defines the request for resolving the human's action.
// Session and Scheduler belong to the caller, who must hold the session
// lock for the duration of the call.
type ResolveInput struct {
	Session   *entities.Session
	Scheduler *turn.Scheduler

	ActionLabel string
	Dialogue    string
	Roll        *RollRequest

	// Audio receives clips when the session has voice enabled
	Audio AudioSink
}

// ResolveCompanionInput defines the request for an autonomous member's turn
type ResolveCompanionInput struct {
	Session   *entities.Session
	Scheduler *turn.Scheduler
	MemberID  string
	Audio     AudioSink
}

// ResolveOutput holds the records appended by one resolution, in sequence order
type ResolveOutput struct {
	Records []entities.TurnRecord

	// Next is the member who holds the turn after the advance
	Next  entities.PartyMember
	Round int
}
