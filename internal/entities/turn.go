package entities

import "time"

// FailureKind says which collaborator failed while producing a record
type FailureKind string

const (
	// FailureNarrative means no dialogue was produced; the record is an error marker
	FailureNarrative FailureKind = "narrative"
	// FailureVoice means the dialogue is present but the clip is missing
	FailureVoice FailureKind = "voice"
)

// Failure is the error marker carried by a turn record
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// TurnRecord is one speaker's contribution to one resolved action.
// Records are append-only and never modified after Session.Append.
type TurnRecord struct {
	Sequence    int64           `json:"sequence"`
	SpeakerID   string          `json:"speaker_id"`
	SpeakerName string          `json:"speaker_name"`
	ActionLabel string          `json:"action_label,omitempty"`
	Dialogue    string          `json:"dialogue,omitempty"`
	Dice        *DiceRollResult `json:"dice,omitempty"`
	AudioRef    string          `json:"audio_ref,omitempty"`
	Failure     *Failure        `json:"failure,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsErrorMarker reports whether the speaker failed to respond at all
func (r *TurnRecord) IsErrorMarker() bool {
	return r.Failure != nil && r.Failure.Kind == FailureNarrative
}

// HasAudio reports whether the record carries a playable clip
func (r *TurnRecord) HasAudio() bool {
	return r.AudioRef != ""
}
