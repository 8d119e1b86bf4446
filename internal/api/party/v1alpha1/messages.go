package partyv1alpha1

import (
	"github.com/KirkDiggler/rpg-party/internal/entities"
)

// PlaybackState is the audio queue as seen by clients
type PlaybackState struct {
	Active   *entities.AudioQueueItem  `json:"active,omitempty"`
	Pending  []entities.AudioQueueItem `json:"pending,omitempty"`
	Settings entities.PlaybackSettings `json:"settings"`
	Paused   bool                      `json:"paused"`
}

type CreateSessionRequest struct {
	HumanName    string                 `json:"human_name"`
	Companions   []entities.PartyMember `json:"companions,omitempty"`
	Scene        string                 `json:"scene,omitempty"`
	VoiceEnabled bool                   `json:"voice_enabled"`
}

type CreateSessionResponse struct {
	Session *entities.Session `json:"session"`
}

type GetSessionRequest struct {
	SessionID string `json:"session_id"`
}

type GetSessionResponse struct {
	Session  *entities.Session `json:"session"`
	Playback *PlaybackState    `json:"playback,omitempty"`
}

type ListSessionsRequest struct {
	State string `json:"state,omitempty"`
	Limit int32  `json:"limit,omitempty"`
}

type ListSessionsResponse struct {
	Sessions []*entities.Session `json:"sessions"`
}

// RollRequest asks for dice to be rolled with an action
type RollRequest struct {
	Notation     string `json:"notation"`
	Advantage    bool   `json:"advantage,omitempty"`
	Disadvantage bool   `json:"disadvantage,omitempty"`
}

type SubmitActionRequest struct {
	SessionID   string       `json:"session_id"`
	ActionLabel string       `json:"action_label,omitempty"`
	Dialogue    string       `json:"dialogue,omitempty"`
	Roll        *RollRequest `json:"roll,omitempty"`
}

type TakeCompanionTurnRequest struct {
	SessionID string `json:"session_id"`
	MemberID  string `json:"member_id"`
}

// TurnResponse is returned by every call that resolves a turn
type TurnResponse struct {
	Records []entities.TurnRecord `json:"records"`
	Next    entities.PartyMember  `json:"next"`
	Round   int32                 `json:"round"`
}

type RollDiceRequest struct {
	SessionID    string `json:"session_id,omitempty"`
	Notation     string `json:"notation"`
	Advantage    bool   `json:"advantage,omitempty"`
	Disadvantage bool   `json:"disadvantage,omitempty"`
	RolledBy     string `json:"rolled_by,omitempty"`
	Description  string `json:"description,omitempty"`
}

type RollDiceResponse struct {
	Result *entities.DiceRollResult `json:"result"`
	RollID string                   `json:"roll_id,omitempty"`
}

type EnqueueVoiceRequest struct {
	SessionID string `json:"session_id"`
	SpeakerID string `json:"speaker_id"`
	ClipRef   string `json:"clip_ref"`
	Sequence  int64  `json:"sequence,omitempty"`
}

type EnqueueVoiceResponse struct {
	Item entities.AudioQueueItem `json:"item"`
}

// Playback report outcomes
const (
	PlaybackCompleted = "completed"
	PlaybackFailed    = "failed"
)

type ReportPlaybackRequest struct {
	SessionID string `json:"session_id"`
	Sequence  int64  `json:"sequence"`
	Outcome   string `json:"outcome"`
	Message   string `json:"message,omitempty"`
}

type ReportPlaybackResponse struct{}

type SetPlaybackRequest struct {
	SessionID string   `json:"session_id"`
	Volume    *float64 `json:"volume,omitempty"`
	Muted     *bool    `json:"muted,omitempty"`
	Paused    *bool    `json:"paused,omitempty"`
	Clear     bool     `json:"clear,omitempty"`
}

type SetPlaybackResponse struct {
	Playback *PlaybackState `json:"playback"`
}

type SetVoiceModeRequest struct {
	SessionID string `json:"session_id"`
	Enabled   bool   `json:"enabled"`
}

type SetVoiceModeResponse struct {
	Session *entities.Session `json:"session"`
}

type EndSessionRequest struct {
	SessionID string `json:"session_id"`
}

type EndSessionResponse struct {
	AlreadyEnded bool `json:"already_ended"`
}

// DiceRoll is one entry of a roll log
type DiceRoll struct {
	RollID      string                   `json:"roll_id"`
	RolledBy    string                   `json:"rolled_by,omitempty"`
	Description string                   `json:"description,omitempty"`
	Result      *entities.DiceRollResult `json:"result"`
	Dropped     []int32                  `json:"dropped,omitempty"`
	RolledAt    int64                    `json:"rolled_at"`
}

type LogRollRequest struct {
	EntityID     string `json:"entity_id"`
	Context      string `json:"context"`
	Notation     string `json:"notation"`
	Advantage    bool   `json:"advantage,omitempty"`
	Disadvantage bool   `json:"disadvantage,omitempty"`
	Description  string `json:"description,omitempty"`
}

type LogRollResponse struct {
	Rolls     []*DiceRoll `json:"rolls"`
	ExpiresAt int64       `json:"expires_at"`
}

type GetRollSessionRequest struct {
	EntityID string `json:"entity_id"`
	Context  string `json:"context"`
}

type GetRollSessionResponse struct {
	Rolls     []*DiceRoll `json:"rolls"`
	ExpiresAt int64       `json:"expires_at"`
	CreatedAt int64       `json:"created_at"`
}

type ClearRollSessionRequest struct {
	EntityID string `json:"entity_id"`
	Context  string `json:"context"`
}

type ClearRollSessionResponse struct {
	Message      string `json:"message"`
	RollsCleared int32  `json:"rolls_cleared"`
}

type RollAbilityScoresRequest struct {
	EntityID string `json:"entity_id"`
	Method   string `json:"method,omitempty"`
}

type RollAbilityScoresResponse struct {
	Rolls     []*DiceRoll `json:"rolls"`
	ExpiresAt int64       `json:"expires_at"`
}
