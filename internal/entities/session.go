package entities

import "time"

// SessionState is the lifecycle state of a session
type SessionState string

const (
	SessionStateActive SessionState = "active"
	SessionStateEnded  SessionState = "ended"
)

// Session is the aggregate root for one table.
//
// Members is the turn order: the human first, then the roster in the order
// it was given. It is never reordered. History is append-only and only
// grows through Append.
type Session struct {
	ID               string        `json:"id"`
	Members          []PartyMember `json:"members"`
	CurrentTurnIndex int           `json:"current_turn_index"`
	Round            int           `json:"round"`
	SceneTitle       string        `json:"scene_title"`
	Scene            string        `json:"scene"`
	History          []TurnRecord  `json:"history"`
	LastSequence     int64         `json:"last_sequence"`
	VoiceEnabled     bool          `json:"voice_enabled"`
	State            SessionState  `json:"state"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Append assigns the next sequence number to rec, stores it and returns the
// stored copy.
func (s *Session) Append(rec TurnRecord) TurnRecord {
	s.LastSequence++
	rec.Sequence = s.LastSequence
	s.History = append(s.History, rec)
	return rec
}

// Member finds a party member by ID
func (s *Session) Member(id string) (PartyMember, bool) {
	for _, m := range s.Members {
		if m.ID == id {
			return m, true
		}
	}
	return PartyMember{}, false
}

// Human returns the human seat
func (s *Session) Human() (PartyMember, bool) {
	for _, m := range s.Members {
		if m.IsHuman() {
			return m, true
		}
	}
	return PartyMember{}, false
}

// Companions returns the autonomous members in turn order
func (s *Session) Companions() []PartyMember {
	companions := make([]PartyMember, 0, len(s.Members))
	for _, m := range s.Members {
		if !m.IsHuman() {
			companions = append(companions, m)
		}
	}
	return companions
}

// LatestRecordBy returns the most recent record spoken by speakerID
func (s *Session) LatestRecordBy(speakerID string) (TurnRecord, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].SpeakerID == speakerID {
			return s.History[i], true
		}
	}
	return TurnRecord{}, false
}

// RecentHistory returns up to n of the latest records, oldest first
func (s *Session) RecentHistory(n int) []TurnRecord {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	start := len(s.History) - n
	if start < 0 {
		start = 0
	}
	out := make([]TurnRecord, len(s.History)-start)
	copy(out, s.History[start:])
	return out
}

// Clone returns a copy safe to hand to readers outside the session lock
func (s *Session) Clone() *Session {
	c := *s
	c.Members = append([]PartyMember(nil), s.Members...)
	c.History = append([]TurnRecord(nil), s.History...)
	return &c
}
