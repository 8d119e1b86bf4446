// Package action resolves one turn at the table: the actor's record, the
// dungeon master's narration and the companions' reactions, appended in
// order, followed by exactly one advance of the turn.
package action

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rpg-party/internal/clients/narrative"
	"github.com/KirkDiggler/rpg-party/internal/clients/voice"
	"github.com/KirkDiggler/rpg-party/internal/engine/dice"
	"github.com/KirkDiggler/rpg-party/internal/engine/turn"
	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-party/internal/repositories/clips"
)

const (
	// DefaultCallTimeout bounds each narrative or voice call
	DefaultCallTimeout = 20 * time.Second

	// DefaultHistoryWindow is how many records are sent as context
	DefaultHistoryWindow = 12

	tracerName = "github.com/KirkDiggler/rpg-party/internal/orchestrators/action"

	// opening prompt for a companion when nothing has been said yet
	openingDialogue = "The adventure begins and the party must decide their first move."
)

// Resolver resolves turns
type Resolver interface {
	// Resolve handles the human's action. It fails with NotYourTurn and
	// changes nothing unless the human holds the turn.
	Resolve(ctx context.Context, input *ResolveInput) (*ResolveOutput, error)

	// ResolveCompanion plays an autonomous member's turn
	ResolveCompanion(ctx context.Context, input *ResolveCompanionInput) (*ResolveOutput, error)
}

// Config holds the dependencies for the resolver
type Config struct {
	Engine   dice.Engine
	Narrator narrative.Generator
	Clock    clock.Clock
	Tracer   trace.Tracer

	// Voice and Clips are both required to voice records. With either
	// missing, records are never voiced.
	Voice voice.Synthesizer
	Clips clips.Repository

	CallTimeout   time.Duration
	HistoryWindow int

	// Parallel runs the DM and companion calls for a human action
	// concurrently. Records are appended in the same order either way.
	Parallel bool
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.Narrator == nil {
		vb.RequiredField("Narrator")
	}
	errors.ValidateNonNegative("CallTimeout", c.CallTimeout, vb)
	errors.ValidateNonNegative("HistoryWindow", c.HistoryWindow, vb)

	return vb.Build()
}

type resolver struct {
	engine        dice.Engine
	narrator      narrative.Generator
	voice         voice.Synthesizer
	clips         clips.Repository
	clock         clock.Clock
	tracer        trace.Tracer
	callTimeout   time.Duration
	historyWindow int
	parallel      bool
}

// NewResolver creates a resolver with the provided dependencies
func NewResolver(cfg *Config) (Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	r := &resolver{
		engine:        cfg.Engine,
		narrator:      cfg.Narrator,
		clock:         cfg.Clock,
		tracer:        cfg.Tracer,
		callTimeout:   cfg.CallTimeout,
		historyWindow: cfg.HistoryWindow,
		parallel:      cfg.Parallel,
	}
	if cfg.Voice != nil && cfg.Clips != nil {
		r.voice = cfg.Voice
		r.clips = cfg.Clips
	}
	if r.clock == nil {
		r.clock = clock.New()
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	if r.callTimeout == 0 {
		r.callTimeout = DefaultCallTimeout
	}
	if r.historyWindow == 0 {
		r.historyWindow = DefaultHistoryWindow
	}

	return r, nil
}

// Resolve handles the human's action
func (r *resolver) Resolve(ctx context.Context, input *ResolveInput) (*ResolveOutput, error) {
	if input == nil || input.Session == nil || input.Scheduler == nil {
		return nil, errors.InvalidArgument("session and scheduler are required")
	}
	session := input.Session

	current, err := input.Scheduler.CurrentMember()
	if err != nil {
		return nil, err
	}
	if !current.IsHuman() {
		return nil, errors.NotYourTurnf("it is %s's turn", current.DisplayName).
			WithMeta("current_member_id", current.ID)
	}
	if input.ActionLabel == "" && input.Dialogue == "" {
		return nil, errors.InvalidArgument("an action label or dialogue is required")
	}

	// The human's own roll is made before anything is appended so bad
	// notation leaves the session untouched
	var humanRoll *entities.DiceRollResult
	if input.Roll != nil && input.Roll.Notation != "" {
		humanRoll, err = r.engine.Roll(input.Roll.Notation, dice.RollOptions{
			Advantage:    input.Roll.Advantage,
			Disadvantage: input.Roll.Disadvantage,
		})
		if err != nil {
			return nil, err
		}
	}

	ctx, span := r.tracer.Start(ctx, "action.Resolve", trace.WithAttributes(
		attribute.String("session.id", session.ID),
		attribute.String("member.id", current.ID),
		attribute.Bool("parallel", r.parallel),
	))
	defer span.End()

	humanRecord := session.Append(entities.TurnRecord{
		SpeakerID:   current.ID,
		SpeakerName: current.DisplayName,
		ActionLabel: input.ActionLabel,
		Dialogue:    input.Dialogue,
		Dice:        humanRoll,
		CreatedAt:   r.clock.Now(),
	})
	records := []entities.TurnRecord{humanRecord}

	// One DM call, then one call per companion in turn order
	speakers := append([]entities.PartyMember{dmMember()}, session.Companions()...)

	var drafts []draft
	if r.parallel {
		drafts = r.draftParallel(ctx, session, humanRecord, speakers)
	} else {
		drafts = r.draftSequential(ctx, session, humanRecord, speakers)
	}

	for _, d := range drafts {
		records = append(records, r.commit(ctx, input.Session, input.Audio, d))
	}

	return r.advance(ctx, input.Scheduler, session, records)
}

// ResolveCompanion plays an autonomous member's turn: its own line, then
// the DM's narration of it
func (r *resolver) ResolveCompanion(ctx context.Context, input *ResolveCompanionInput) (*ResolveOutput, error) {
	if input == nil || input.Session == nil || input.Scheduler == nil {
		return nil, errors.InvalidArgument("session and scheduler are required")
	}
	session := input.Session

	current, err := input.Scheduler.CurrentMember()
	if err != nil {
		return nil, err
	}
	if current.ID != input.MemberID || current.IsHuman() {
		return nil, errors.NotYourTurnf("it is %s's turn", current.DisplayName).
			WithMeta("current_member_id", current.ID)
	}

	ctx, span := r.tracer.Start(ctx, "action.ResolveCompanion", trace.WithAttributes(
		attribute.String("session.id", session.ID),
		attribute.String("member.id", current.ID),
	))
	defer span.End()

	prompt, ok := latestSpoken(session)
	if !ok {
		prompt = entities.TurnRecord{
			SpeakerID:   entities.DMSpeakerID,
			SpeakerName: entities.DMDisplayName,
			ActionLabel: narrative.ActionNarrate,
			Dialogue:    openingDialogue,
		}
	}

	companion := r.draft(ctx, session, prompt, session.RecentHistory(r.historyWindow), current)
	companionRecord := r.commit(ctx, session, input.Audio, companion)
	records := []entities.TurnRecord{companionRecord}

	// A companion that failed to speak still gets narrated so the table moves on
	narration := r.draft(ctx, session, companionRecord, session.RecentHistory(r.historyWindow), dmMember())
	records = append(records, r.commit(ctx, session, input.Audio, narration))

	return r.advance(ctx, input.Scheduler, session, records)
}

// draftSequential lets each speaker hear the ones before it
func (r *resolver) draftSequential(ctx context.Context, session *entities.Session, prompt entities.TurnRecord, speakers []entities.PartyMember) []draft {
	history := session.RecentHistory(r.historyWindow)
	drafts := make([]draft, 0, len(speakers))

	for _, speaker := range speakers {
		d := r.draft(ctx, session, prompt, history, speaker)
		drafts = append(drafts, d)
		if d.record.Failure == nil || d.record.Failure.Kind != entities.FailureNarrative {
			history = append(history, d.record)
		}
	}
	return drafts
}

// draftParallel runs every speaker at once against the same history and
// returns the drafts in speaker order
func (r *resolver) draftParallel(ctx context.Context, session *entities.Session, prompt entities.TurnRecord, speakers []entities.PartyMember) []draft {
	history := session.RecentHistory(r.historyWindow)
	drafts := make([]draft, len(speakers))

	g, gctx := errgroup.WithContext(ctx)
	for i, speaker := range speakers {
		g.Go(func() error {
			// failures become error markers, never group errors
			drafts[i] = r.draft(gctx, session, prompt, history, speaker)
			return nil
		})
	}
	_ = g.Wait()

	return drafts
}

func (r *resolver) advance(ctx context.Context, scheduler *turn.Scheduler, session *entities.Session, records []entities.TurnRecord) (*ResolveOutput, error) {
	next, err := scheduler.Advance()
	if err != nil {
		return nil, errors.Wrap(err, "failed to advance turn")
	}

	session.CurrentTurnIndex = scheduler.Index()
	session.Round = scheduler.Round()
	session.UpdatedAt = r.clock.Now()

	slog.InfoContext(ctx, "Turn resolved",
		"session_id", session.ID,
		"records", len(records),
		"next_member_id", next.ID,
		"round", session.Round,
	)

	return &ResolveOutput{
		Records: records,
		Next:    next,
		Round:   session.Round,
	}, nil
}

func dmMember() entities.PartyMember {
	return entities.PartyMember{
		ID:           entities.DMSpeakerID,
		DisplayName:  entities.DMDisplayName,
		VoiceProfile: entities.DMVoiceProfile,
	}
}

// latestSpoken returns the newest record that carries dialogue
func latestSpoken(session *entities.Session) (entities.TurnRecord, bool) {
	for i := len(session.History) - 1; i >= 0; i-- {
		if session.History[i].Dialogue != "" {
			return session.History[i], true
		}
	}
	return entities.TurnRecord{}, false
}
