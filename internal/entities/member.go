// Package entities provides core data structures for rpg-party.
package entities

import "github.com/KirkDiggler/rpg-toolkit/core"

// MemberKind separates the human seat from autonomous companions
type MemberKind string

const (
	// KindHuman is the single human seat, always first in turn order
	KindHuman MemberKind = "human"
	// KindAutonomous is a companion driven by the narrative collaborator
	KindAutonomous MemberKind = "autonomous"
)

// Dungeon master speaker identity. The DM speaks in turn records but never
// holds a seat in turn order.
const (
	DMSpeakerID    = "dm"
	DMDisplayName  = "Dungeon Master"
	DMVoiceProfile = "dm_narrator"
)

// PartyMember is one seat at the table. Members are fixed for the session.
type PartyMember struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"display_name"`
	Kind         MemberKind `json:"kind"`
	VoiceProfile string     `json:"voice_profile,omitempty"`
	Class        string     `json:"class,omitempty"`
	Personality  string     `json:"personality,omitempty"`
}

// GetID returns the member ID for rpg-toolkit
func (m *PartyMember) GetID() string {
	return m.ID
}

// GetType returns the entity type for rpg-toolkit
func (m *PartyMember) GetType() string {
	return "party_member"
}

// IsHuman reports whether this is the human seat
func (m *PartyMember) IsHuman() bool {
	return m.Kind == KindHuman
}

// Compile-time check that members satisfy rpg-toolkit core.Entity
var _ core.Entity = (*PartyMember)(nil)
