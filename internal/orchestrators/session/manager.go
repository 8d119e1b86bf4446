// Package session is the only entry point transports use. It owns the live
// tables: one mutex per session serializes submissions, and every state
// change is announced on the event bus after the lock is released.
package session

//go:generate mockgen -destination=mock/mock_service.go -package=sessionmock github.com/KirkDiggler/rpg-party/internal/orchestrators/session Service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	toolkitdice "github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-party/internal/audio"
	"github.com/KirkDiggler/rpg-party/internal/clients/narrative"
	"github.com/KirkDiggler/rpg-party/internal/engine/dice"
	"github.com/KirkDiggler/rpg-party/internal/engine/turn"
	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/notices"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/action"
	diceorch "github.com/KirkDiggler/rpg-party/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-party/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-party/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-party/internal/repositories/sessions"
	"github.com/KirkDiggler/rpg-party/internal/roster"
)

// HumanMemberID is the member ID of the human seat in every session
const HumanMemberID = "player"

// DefaultVolume is the starting volume of a new table
const DefaultVolume = 0.8

// Service defines the session operations exposed to transports
type Service interface {
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)
	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)
	ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error)

	// SubmitAction resolves the human's action. It fails with NotYourTurn
	// when a companion holds the turn.
	SubmitAction(ctx context.Context, input *SubmitActionInput) (*SubmitActionOutput, error)

	// TakeCompanionTurn plays the turn of the autonomous member holding it
	TakeCompanionTurn(ctx context.Context, input *TakeCompanionTurnInput) (*TakeCompanionTurnOutput, error)

	// RollDice rolls outside of any turn
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)

	EnqueueVoice(ctx context.Context, input *EnqueueVoiceInput) (*EnqueueVoiceOutput, error)
	PlaybackComplete(ctx context.Context, input *PlaybackCompleteInput) (*PlaybackCompleteOutput, error)
	PlaybackError(ctx context.Context, input *PlaybackErrorInput) (*PlaybackErrorOutput, error)
	SetPlayback(ctx context.Context, input *SetPlaybackInput) (*SetPlaybackOutput, error)
	SetVoiceMode(ctx context.Context, input *SetVoiceModeInput) (*SetVoiceModeOutput, error)

	// EndSession clears playback and releases the player. Ending an
	// ended session succeeds.
	EndSession(ctx context.Context, input *EndSessionInput) (*EndSessionOutput, error)
}

// Config holds the dependencies for the session manager
type Config struct {
	Resolver   action.Resolver
	Engine     dice.Engine
	Repository sessions.Repository
	Player     audio.Player
	EventBus   events.EventBus

	// Dice keeps the per-session roll log. Without it standalone rolls
	// are not logged.
	Dice diceorch.Service

	Roster      *roster.Roster
	IDGenerator idgen.Generator
	Clock       clock.Clock

	// Roller picks opening scenes
	Roller toolkitdice.Roller

	// MaxClipDuration fails clips the player never reports on
	MaxClipDuration time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Resolver == nil {
		vb.RequiredField("Resolver")
	}
	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.Player == nil {
		vb.RequiredField("Player")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	errors.ValidateNonNegative("MaxClipDuration", c.MaxClipDuration, vb)

	return vb.Build()
}

// table is the live state of one session
type table struct {
	mu        sync.Mutex
	session   *entities.Session
	scheduler *turn.Scheduler
	queue     *audio.Queue
	ended     bool
}

type manager struct {
	resolver action.Resolver
	engine   dice.Engine
	dice     diceorch.Service
	repo     sessions.Repository
	player   audio.Player
	bus      events.EventBus
	roster   *roster.Roster
	idGen    idgen.Generator
	clock    clock.Clock
	roller   toolkitdice.Roller
	maxClip  time.Duration

	mu     sync.RWMutex
	tables map[string]*table
}

// NewManager creates a session manager with the provided dependencies
func NewManager(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	m := &manager{
		resolver: cfg.Resolver,
		engine:   cfg.Engine,
		dice:     cfg.Dice,
		repo:     cfg.Repository,
		player:   cfg.Player,
		bus:      cfg.EventBus,
		roster:   cfg.Roster,
		idGen:    cfg.IDGenerator,
		clock:    cfg.Clock,
		roller:   cfg.Roller,
		maxClip:  cfg.MaxClipDuration,
		tables:   make(map[string]*table),
	}
	if m.roster == nil {
		m.roster = roster.Default()
	}
	if m.clock == nil {
		m.clock = clock.New()
	}
	if m.roller == nil {
		m.roller = toolkitdice.DefaultRoller
	}

	return m, nil
}

// CreateSession seats the human first, then the companions, and opens the scene
func (m *manager) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("human_name", input.HumanName, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	companions := input.Companions
	if len(companions) == 0 {
		companions = m.roster.Members()
	}

	members := make([]entities.PartyMember, 0, len(companions)+1)
	members = append(members, entities.PartyMember{
		ID:          HumanMemberID,
		DisplayName: input.HumanName,
		Kind:        entities.KindHuman,
	})
	for _, c := range companions {
		c.Kind = entities.KindAutonomous
		if c.ID == entities.DMSpeakerID {
			return nil, errors.InvalidArgumentf("member ID %q is reserved", c.ID)
		}
		members = append(members, c)
	}

	scene, err := m.scene(input.Scene)
	if err != nil {
		return nil, err
	}

	scheduler := turn.NewScheduler()
	if err := scheduler.Start(members); err != nil {
		return nil, err
	}

	now := m.clock.Now()
	session := &entities.Session{
		ID:               m.idGen.Generate(),
		Members:          members,
		CurrentTurnIndex: scheduler.Index(),
		Round:            scheduler.Round(),
		SceneTitle:       scene.Title,
		Scene:            scene.Description,
		VoiceEnabled:     input.VoiceEnabled,
		State:            entities.SessionStateActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// The DM opens the table by reading the scene
	opening := session.Append(entities.TurnRecord{
		SpeakerID:   entities.DMSpeakerID,
		SpeakerName: entities.DMDisplayName,
		ActionLabel: narrative.ActionNarrate,
		Dialogue:    scene.Description,
		CreatedAt:   now,
	})

	queue, err := audio.NewQueue(&audio.QueueConfig{
		SessionID:       session.ID,
		Player:          m.player,
		EventBus:        m.bus,
		Settings:        entities.PlaybackSettings{Volume: DefaultVolume},
		MaxClipDuration: m.maxClip,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create playback queue")
	}

	if _, err := m.repo.Save(ctx, &sessions.SaveInput{Session: session.Clone()}); err != nil {
		queue.Close()
		return nil, errors.Wrap(err, "failed to save session")
	}

	m.mu.Lock()
	m.tables[session.ID] = &table{
		session:   session,
		scheduler: scheduler,
		queue:     queue,
	}
	m.mu.Unlock()

	slog.Info("Session created",
		"session_id", session.ID,
		"members", len(members),
		"scene", scene.Title,
		"voice_enabled", session.VoiceEnabled,
	)

	human := members[0]
	m.publish(ctx,
		&notices.Notice{Kind: notices.KindSessionCreated, SessionID: session.ID, Round: session.Round},
		&notices.Notice{Kind: notices.KindTurnRecorded, SessionID: session.ID, SpeakerID: opening.SpeakerID, Sequence: opening.Sequence, Record: &opening},
		&notices.Notice{Kind: notices.KindTurnAdvanced, SessionID: session.ID, Round: session.Round, Member: &human},
	)

	return &CreateSessionOutput{Session: session.Clone()}, nil
}

// scene resolves the requested opening scene
func (m *manager) scene(requested string) (roster.Scene, error) {
	if requested == "" {
		return m.roster.PickScene(m.roller)
	}
	if scene, ok := m.roster.Scene(requested); ok {
		return scene, nil
	}
	return roster.Scene{Title: requested, Description: requested}, nil
}

// GetSession returns the live session, or the stored snapshot once it has ended
func (m *manager) GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	if t, ok := m.table(input.SessionID); ok {
		t.mu.Lock()
		snapshot := t.session.Clone()
		t.mu.Unlock()

		out := &GetSessionOutput{Session: snapshot}
		if playback, err := t.queue.Snapshot(ctx); err == nil {
			out.Playback = playback
		}
		return out, nil
	}

	stored, err := m.repo.Get(ctx, &sessions.GetInput{SessionID: input.SessionID})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NoActiveSessionf("session %s not found", input.SessionID)
		}
		return nil, errors.Wrap(err, "failed to get session")
	}
	return &GetSessionOutput{Session: stored.Session}, nil
}

// ListSessions returns stored snapshots, newest first
func (m *manager) ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	if input == nil {
		input = &ListSessionsInput{}
	}

	out, err := m.repo.List(ctx, &sessions.ListInput{State: input.State, Limit: input.Limit})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}
	return &ListSessionsOutput{Sessions: out.Sessions}, nil
}

// SubmitAction resolves the human's action under the session lock
func (m *manager) SubmitAction(ctx context.Context, input *SubmitActionInput) (*SubmitActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var out *action.ResolveOutput
	err := m.withTable(ctx, input.SessionID, func(t *table) error {
		var err error
		out, err = m.resolver.Resolve(ctx, &action.ResolveInput{
			Session:     t.session,
			Scheduler:   t.scheduler,
			ActionLabel: input.ActionLabel,
			Dialogue:    input.Dialogue,
			Roll:        input.Roll,
			Audio:       t.queue,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	m.publishTurn(ctx, input.SessionID, out)

	return &SubmitActionOutput{
		Records: out.Records,
		Next:    out.Next,
		Round:   out.Round,
	}, nil
}

// TakeCompanionTurn resolves an autonomous member's turn under the session lock
func (m *manager) TakeCompanionTurn(ctx context.Context, input *TakeCompanionTurnInput) (*TakeCompanionTurnOutput, error) {
	if input == nil || input.MemberID == "" {
		return nil, errors.InvalidArgument("member ID is required")
	}

	var out *action.ResolveOutput
	err := m.withTable(ctx, input.SessionID, func(t *table) error {
		var err error
		out, err = m.resolver.ResolveCompanion(ctx, &action.ResolveCompanionInput{
			Session:   t.session,
			Scheduler: t.scheduler,
			MemberID:  input.MemberID,
			Audio:     t.queue,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	m.publishTurn(ctx, input.SessionID, out)

	return &TakeCompanionTurnOutput{
		Records: out.Records,
		Next:    out.Next,
		Round:   out.Round,
	}, nil
}

// RollDice rolls without consuming a turn
func (m *manager) RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	if input.SessionID == "" || m.dice == nil {
		result, err := m.engine.Roll(input.Notation, dice.RollOptions{
			Advantage:    input.Advantage,
			Disadvantage: input.Disadvantage,
		})
		if err != nil {
			return nil, err
		}
		return &RollDiceOutput{Result: result}, nil
	}

	if _, ok := m.table(input.SessionID); !ok {
		return nil, errors.NoActiveSessionf("session %s is not active", input.SessionID)
	}

	logged, err := m.dice.RollDice(ctx, &diceorch.RollDiceInput{
		EntityID:     input.SessionID,
		Context:      diceorch.ContextTable,
		Notation:     input.Notation,
		Advantage:    input.Advantage,
		Disadvantage: input.Disadvantage,
		RolledBy:     input.RolledBy,
		Description:  input.Description,
	})
	if err != nil {
		return nil, err
	}

	result := logged.Roll.Result
	return &RollDiceOutput{Result: &result, RollID: logged.Roll.RollID}, nil
}

// EnqueueVoice queues a clip produced outside the resolver
func (m *manager) EnqueueVoice(ctx context.Context, input *EnqueueVoiceInput) (*EnqueueVoiceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("speaker_id", input.SpeakerID, vb)
	errors.ValidateRequired("clip_ref", input.ClipRef, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	var item entities.AudioQueueItem
	err := m.withTable(ctx, input.SessionID, func(t *table) error {
		seq := input.Sequence
		if seq == 0 {
			rec, ok := t.session.LatestRecordBy(input.SpeakerID)
			if !ok {
				return errors.InvalidArgumentf("speaker %s has no records to voice", input.SpeakerID)
			}
			seq = rec.Sequence
		}
		if seq > t.session.LastSequence {
			return errors.InvalidArgumentf("sequence %d has not been recorded", seq)
		}

		item = entities.AudioQueueItem{
			SessionID: input.SessionID,
			SpeakerID: input.SpeakerID,
			ClipRef:   input.ClipRef,
			Sequence:  seq,
		}
		return t.queue.Enqueue(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	return &EnqueueVoiceOutput{Item: item}, nil
}

// PlaybackComplete forwards the player's completion report
func (m *manager) PlaybackComplete(ctx context.Context, input *PlaybackCompleteInput) (*PlaybackCompleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	t, err := m.liveTable(input.SessionID)
	if err != nil {
		return nil, err
	}
	if err := t.queue.PlaybackComplete(ctx, input.Sequence); err != nil {
		return nil, err
	}
	return &PlaybackCompleteOutput{}, nil
}

// PlaybackError forwards the player's failure report
func (m *manager) PlaybackError(ctx context.Context, input *PlaybackErrorInput) (*PlaybackErrorOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	t, err := m.liveTable(input.SessionID)
	if err != nil {
		return nil, err
	}

	message := input.Message
	if message == "" {
		message = "player reported an error"
	}
	if err := t.queue.PlaybackError(ctx, input.Sequence, errors.Internal(message)); err != nil {
		return nil, err
	}
	return &PlaybackErrorOutput{}, nil
}

// SetPlayback changes volume, mute and pause, or clears the queue
func (m *manager) SetPlayback(ctx context.Context, input *SetPlaybackInput) (*SetPlaybackOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	t, err := m.liveTable(input.SessionID)
	if err != nil {
		return nil, err
	}

	if input.Volume != nil {
		if err := t.queue.SetVolume(ctx, *input.Volume); err != nil {
			return nil, err
		}
	}
	if input.Muted != nil {
		if err := t.queue.SetMuted(ctx, *input.Muted); err != nil {
			return nil, err
		}
	}
	if input.Clear {
		if err := t.queue.Clear(ctx); err != nil {
			return nil, err
		}
	}
	if input.Paused != nil {
		if *input.Paused {
			err = t.queue.Pause(ctx)
		} else {
			err = t.queue.Resume(ctx)
		}
		if err != nil {
			return nil, err
		}
	}

	playback, err := t.queue.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &SetPlaybackOutput{Playback: playback}, nil
}

// SetVoiceMode toggles voicing for later records. Turning voice off drops
// any queued clips.
func (m *manager) SetVoiceMode(ctx context.Context, input *SetVoiceModeInput) (*SetVoiceModeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var snapshot *entities.Session
	var changed bool
	err := m.withTable(ctx, input.SessionID, func(t *table) error {
		changed = t.session.VoiceEnabled != input.Enabled
		t.session.VoiceEnabled = input.Enabled
		t.session.UpdatedAt = m.clock.Now()
		snapshot = t.session.Clone()

		if !input.Enabled {
			return t.queue.Clear(ctx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		m.publish(ctx, &notices.Notice{
			Kind:      notices.KindVoiceModeChanged,
			SessionID: input.SessionID,
			Message:   voiceModeMessage(input.Enabled),
		})
	}

	return &SetVoiceModeOutput{Session: snapshot}, nil
}

// EndSession marks the session ended, clears its queue and releases the player
func (m *manager) EndSession(ctx context.Context, input *EndSessionInput) (*EndSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	t, ok := m.table(input.SessionID)
	if !ok {
		return m.endStored(ctx, input.SessionID)
	}

	t.mu.Lock()
	if t.ended {
		t.mu.Unlock()
		return &EndSessionOutput{AlreadyEnded: true}, nil
	}
	t.ended = true
	t.scheduler.Stop()
	t.session.State = entities.SessionStateEnded
	t.session.UpdatedAt = m.clock.Now()
	m.save(ctx, t.session)
	t.mu.Unlock()

	t.queue.Close()
	if err := m.player.Stop(ctx, input.SessionID); err != nil {
		slog.Warn("Failed to release audio player",
			"session_id", input.SessionID,
			"error", err,
		)
	}

	m.mu.Lock()
	delete(m.tables, input.SessionID)
	m.mu.Unlock()

	slog.Info("Session ended", "session_id", input.SessionID)

	m.publish(ctx, &notices.Notice{Kind: notices.KindSessionEnded, SessionID: input.SessionID})

	return &EndSessionOutput{}, nil
}

// endStored handles EndSession for a session that is no longer live
func (m *manager) endStored(ctx context.Context, sessionID string) (*EndSessionOutput, error) {
	stored, err := m.repo.Get(ctx, &sessions.GetInput{SessionID: sessionID})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NoActiveSessionf("session %s not found", sessionID)
		}
		return nil, errors.Wrap(err, "failed to get session")
	}
	if stored.Session.State == entities.SessionStateEnded {
		return &EndSessionOutput{AlreadyEnded: true}, nil
	}

	// A live table that is gone from memory cannot be resumed
	stored.Session.State = entities.SessionStateEnded
	stored.Session.UpdatedAt = m.clock.Now()
	m.save(ctx, stored.Session)
	return &EndSessionOutput{}, nil
}

func (m *manager) table(sessionID string) (*table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[sessionID]
	return t, ok
}

func (m *manager) liveTable(sessionID string) (*table, error) {
	if sessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	t, ok := m.table(sessionID)
	if !ok {
		return nil, errors.NoActiveSessionf("session %s is not active", sessionID)
	}
	return t, nil
}

// withTable runs fn holding the session lock and saves a snapshot if fn
// succeeds
func (m *manager) withTable(ctx context.Context, sessionID string, fn func(t *table) error) error {
	t, err := m.liveTable(sessionID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ended {
		return errors.NoActiveSessionf("session %s has ended", sessionID)
	}
	if err := fn(t); err != nil {
		return err
	}

	m.save(ctx, t.session)
	return nil
}

// save stores a snapshot. A failed save is logged and never undoes the
// change it follows.
func (m *manager) save(ctx context.Context, session *entities.Session) {
	if _, err := m.repo.Save(ctx, &sessions.SaveInput{Session: session.Clone()}); err != nil {
		slog.Error("Failed to save session snapshot",
			"session_id", session.ID,
			"error", err,
		)
	}
}

func (m *manager) publishTurn(ctx context.Context, sessionID string, out *action.ResolveOutput) {
	batch := make([]*notices.Notice, 0, len(out.Records)+1)
	for i := range out.Records {
		rec := out.Records[i]
		batch = append(batch, &notices.Notice{
			Kind:      notices.KindTurnRecorded,
			SessionID: sessionID,
			SpeakerID: rec.SpeakerID,
			Sequence:  rec.Sequence,
			Record:    &rec,
		})
	}

	next := out.Next
	batch = append(batch, &notices.Notice{
		Kind:      notices.KindTurnAdvanced,
		SessionID: sessionID,
		Round:     out.Round,
		Member:    &next,
	})

	m.publish(ctx, batch...)
}

// publish must never be called while holding a session lock
func (m *manager) publish(ctx context.Context, batch ...*notices.Notice) {
	now := m.clock.Now()
	for _, n := range batch {
		n.At = now
		if err := notices.Publish(ctx, m.bus, n); err != nil {
			slog.Warn("Failed to publish session notice",
				"session_id", n.SessionID,
				"kind", n.Kind,
				"error", err,
			)
		}
	}
}

func voiceModeMessage(enabled bool) string {
	if enabled {
		return "voice enabled"
	}
	return "voice disabled"
}
