package session

import (
	"github.com/KirkDiggler/rpg-party/internal/audio"
	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/action"
)

// CreateSessionInput defines the request for opening a table
type CreateSessionInput struct {
	HumanName string

	// Companions are seated after the human in the given order. Empty
	// seats the default party from the roster.
	Companions []entities.PartyMember

	// Scene names a roster scene or describes a custom one. Empty picks
	// a roster scene at random.
	Scene string

	VoiceEnabled bool
}

// CreateSessionOutput defines the response for opening a table
type CreateSessionOutput struct {
	Session *entities.Session
}

// GetSessionInput defines the request for reading a session
type GetSessionInput struct {
	SessionID string
}

// GetSessionOutput defines the response for reading a session
type GetSessionOutput struct {
	Session *entities.Session

	// Playback is only set while the session is live
	Playback *audio.Snapshot
}

// ListSessionsInput defines the request for listing sessions
type ListSessionsInput struct {
	State entities.SessionState
	Limit int
}

// ListSessionsOutput defines the response for listing sessions
type ListSessionsOutput struct {
	Sessions []*entities.Session
}

// SubmitActionInput defines the request for the human's action
type SubmitActionInput struct {
	SessionID   string
	ActionLabel string
	Dialogue    string
	Roll        *action.RollRequest
}

// SubmitActionOutput defines the response for the human's action
type SubmitActionOutput struct {
	Records []entities.TurnRecord
	Next    entities.PartyMember
	Round   int
}

// TakeCompanionTurnInput defines the request for an autonomous member's turn
type TakeCompanionTurnInput struct {
	SessionID string
	MemberID  string
}

// TakeCompanionTurnOutput defines the response for an autonomous member's turn
type TakeCompanionTurnOutput struct {
	Records []entities.TurnRecord
	Next    entities.PartyMember
	Round   int
}

// RollDiceInput defines the request for a standalone roll
type RollDiceInput struct {
	// SessionID files the roll in the session's roll log when set
	SessionID    string
	Notation     string
	Advantage    bool
	Disadvantage bool
	RolledBy     string
	Description  string
}

// RollDiceOutput defines the response for a standalone roll
type RollDiceOutput struct {
	Result *entities.DiceRollResult

	// RollID is set when the roll was logged
	RollID string
}

// EnqueueVoiceInput defines the request for queueing an externally produced clip
type EnqueueVoiceInput struct {
	SessionID string
	SpeakerID string
	ClipRef   string

	// Sequence defaults to the speaker's latest record
	Sequence int64
}

// EnqueueVoiceOutput defines the response for queueing a clip
type EnqueueVoiceOutput struct {
	Item entities.AudioQueueItem
}

// PlaybackCompleteInput defines the player's report that a clip finished
type PlaybackCompleteInput struct {
	SessionID string
	Sequence  int64
}

// PlaybackCompleteOutput defines the response for a completion report
type PlaybackCompleteOutput struct{}

// PlaybackErrorInput defines the player's report that a clip failed
type PlaybackErrorInput struct {
	SessionID string
	Sequence  int64
	Message   string
}

// PlaybackErrorOutput defines the response for a failure report
type PlaybackErrorOutput struct{}

// SetPlaybackInput defines the request for changing playback. Nil fields
// are left as they are.
type SetPlaybackInput struct {
	SessionID string
	Volume    *float64
	Muted     *bool
	Paused    *bool

	// Clear drops the active clip and everything pending
	Clear bool
}

// SetPlaybackOutput defines the response for changing playback
type SetPlaybackOutput struct {
	Playback *audio.Snapshot
}

// SetVoiceModeInput defines the request for toggling voice
type SetVoiceModeInput struct {
	SessionID string
	Enabled   bool
}

// SetVoiceModeOutput defines the response for toggling voice
type SetVoiceModeOutput struct {
	Session *entities.Session
}

// EndSessionInput defines the request for closing a table
type EndSessionInput struct {
	SessionID string
}

// EndSessionOutput defines the response for closing a table
type EndSessionOutput struct {
	// AlreadyEnded is true when the session had been ended before
	AlreadyEnded bool
}
