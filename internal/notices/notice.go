// Package notices carries session state changes over the rpg-toolkit event
// bus. Transports subscribe to notices instead of holding session state.
package notices

import (
	"context"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-party/internal/entities"
)

// Notice kinds double as event bus types
const (
	KindSessionCreated   = "party.session.created"
	KindSessionEnded     = "party.session.ended"
	KindTurnRecorded     = "party.turn.recorded"
	KindTurnAdvanced     = "party.turn.advanced"
	KindVoiceModeChanged = "party.voice_mode.changed"

	KindPlaybackStarted  = "party.audio.started"
	KindPlaybackFinished = "party.audio.finished"
	KindPlaybackFailed   = "party.audio.failed"
	KindPlaybackCleared  = "party.audio.cleared"
	KindPlaybackSettings = "party.audio.settings"
)

// AllKinds lists every notice kind, for subscribers that relay everything
var AllKinds = []string{
	KindSessionCreated,
	KindSessionEnded,
	KindTurnRecorded,
	KindTurnAdvanced,
	KindVoiceModeChanged,
	KindPlaybackStarted,
	KindPlaybackFinished,
	KindPlaybackFailed,
	KindPlaybackCleared,
	KindPlaybackSettings,
}

// Notice is the payload of every party event. Only the fields relevant to
// Kind are set.
type Notice struct {
	Kind      string                     `json:"kind"`
	SessionID string                     `json:"session_id"`
	SpeakerID string                     `json:"speaker_id,omitempty"`
	Sequence  int64                      `json:"sequence,omitempty"`
	Round     int                        `json:"round,omitempty"`
	Member    *entities.PartyMember      `json:"member,omitempty"`
	Record    *entities.TurnRecord       `json:"record,omitempty"`
	Item      *entities.AudioQueueItem   `json:"item,omitempty"`
	Settings  *entities.PlaybackSettings `json:"settings,omitempty"`
	Message   string                     `json:"message,omitempty"`
	At        time.Time                  `json:"at"`
}

// GetID returns the session the notice belongs to
func (n *Notice) GetID() string {
	return n.SessionID
}

// GetType returns the entity type for rpg-toolkit
func (n *Notice) GetType() string {
	return "party_notice"
}

var _ core.Entity = (*Notice)(nil)

// Publish sends n on the bus as an event of type n.Kind
func Publish(ctx context.Context, bus events.EventBus, n *Notice) error {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	return bus.Publish(ctx, events.NewGameEvent(n.Kind, n, nil))
}

// FromEvent extracts the notice from a bus event
func FromEvent(e events.Event) (*Notice, bool) {
	if e == nil {
		return nil, false
	}
	n, ok := e.Source().(*Notice)
	return n, ok
}

// Subscribe registers fn for one notice kind and returns the subscription ID.
// Handlers run on the publisher's goroutine and must not block.
func Subscribe(bus events.EventBus, kind string, fn func(ctx context.Context, n *Notice) error) string {
	return bus.SubscribeFunc(kind, 0, func(ctx context.Context, e events.Event) error {
		n, ok := FromEvent(e)
		if !ok {
			return nil
		}
		return fn(ctx, n)
	})
}

// SubscribeAll registers fn for every notice kind
func SubscribeAll(bus events.EventBus, fn func(ctx context.Context, n *Notice) error) []string {
	ids := make([]string, 0, len(AllKinds))
	for _, kind := range AllKinds {
		ids = append(ids, Subscribe(bus, kind, fn))
	}
	return ids
}

// Unsubscribe removes subscriptions returned by Subscribe or SubscribeAll
func Unsubscribe(bus events.EventBus, ids ...string) {
	for _, id := range ids {
		_ = bus.Unsubscribe(id)
	}
}
