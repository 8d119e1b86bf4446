package action_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-party/internal/clients/narrative"
	narrativemock "github.com/KirkDiggler/rpg-party/internal/clients/narrative/mock"
	"github.com/KirkDiggler/rpg-party/internal/clients/voice"
	voicemock "github.com/KirkDiggler/rpg-party/internal/clients/voice/mock"
	"github.com/KirkDiggler/rpg-party/internal/engine/dice"
	"github.com/KirkDiggler/rpg-party/internal/engine/turn"
	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/action"
	"github.com/KirkDiggler/rpg-party/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-party/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-party/internal/repositories/clips"
	clipsmock "github.com/KirkDiggler/rpg-party/internal/repositories/clips/mock"
)

type fixedRoller struct {
	value int
}

func (r *fixedRoller) Roll(_ int) (int, error) {
	return r.value, nil
}

func (r *fixedRoller) RollN(count, _ int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i] = r.value
	}
	return out, nil
}

// recordingSink collects queued clips in arrival order
type recordingSink struct {
	mu    sync.Mutex
	items []entities.AudioQueueItem
}

func (s *recordingSink) Enqueue(_ context.Context, item entities.AudioQueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	return nil
}

type reply struct {
	resp  *narrative.Response
	err   error
	delay time.Duration
	block bool
}

type ResolverTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	narrator  *narrativemock.MockGenerator
	voice     *voicemock.MockSynthesizer
	clips     *clips.InMemoryRepository
	spans     *tracetest.SpanRecorder
	tracer    *sdktrace.TracerProvider
	clock     *clock.Manual
	sink      *recordingSink
	ctx       context.Context
	session   *entities.Session
	scheduler *turn.Scheduler

	mu       sync.Mutex
	requests map[string]*narrative.Request
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}

func (s *ResolverTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.narrator = narrativemock.NewMockGenerator(s.ctrl)
	s.voice = voicemock.NewMockSynthesizer(s.ctrl)
	s.clock = clock.NewManual(time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC))
	s.clips = clips.NewInMemory(s.clock, idgen.NewSequential("clip"))
	s.spans = tracetest.NewSpanRecorder()
	s.tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(s.spans))
	s.sink = &recordingSink{}
	s.ctx = context.Background()
	s.requests = make(map[string]*narrative.Request)

	s.session = &entities.Session{
		ID: "sess_1",
		Members: []entities.PartyMember{
			{ID: "player", DisplayName: "Player", Kind: entities.KindHuman},
			{ID: "thorgar", DisplayName: "Thorgar", Kind: entities.KindAutonomous, Class: "warrior", Personality: "brave", VoiceProfile: "dwarf_warrior"},
			{ID: "elara", DisplayName: "Elara", Kind: entities.KindAutonomous, Class: "mage", Personality: "wise", VoiceProfile: "elf_mage"},
		},
		Round:     1,
		Scene:     "Enchanted Caverns",
		State:     entities.SessionStateActive,
		CreatedAt: s.clock.Now(),
	}
	s.scheduler = turn.NewScheduler()
	s.Require().NoError(s.scheduler.Start(s.session.Members))
}

func (s *ResolverTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ResolverTestSuite) newResolver(mod func(*action.Config)) action.Resolver {
	cfg := &action.Config{
		Engine:   dice.NewEngine(&dice.Config{Roller: &fixedRoller{value: 12}}),
		Narrator: s.narrator,
		Clock:    s.clock,
		Tracer:   s.tracer.Tracer("test"),
		Voice:    s.voice,
		Clips:    s.clips,
	}
	if mod != nil {
		mod(cfg)
	}
	r, err := action.NewResolver(cfg)
	s.Require().NoError(err)
	return r
}

// script answers narrative calls by speaker. The DM is keyed by its speaker ID.
func (s *ResolverTestSuite) script(replies map[string]reply) {
	s.narrator.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, req *narrative.Request) (*narrative.Response, error) {
			key := req.Speaker.ID
			if req.Role == narrative.RoleDM {
				key = entities.DMSpeakerID
			}

			s.mu.Lock()
			s.requests[key] = req
			s.mu.Unlock()

			r, ok := replies[key]
			if !ok {
				return &narrative.Response{ActionLabel: "roleplay", Dialogue: key + " speaks"}, nil
			}
			if r.block {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			if r.delay > 0 {
				time.Sleep(r.delay)
			}
			return r.resp, r.err
		}).AnyTimes()
}

func (s *ResolverTestSuite) request(key string) *narrative.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[key]
}

func (s *ResolverTestSuite) speakers(records []entities.TurnRecord) []string {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.SpeakerID)
	}
	return ids
}

func (s *ResolverTestSuite) span(name string) sdktrace.ReadOnlySpan {
	for _, sp := range s.spans.Ended() {
		if sp.Name() == name && sp.Status().Code == codes.Error {
			return sp
		}
	}
	return nil
}

func (s *ResolverTestSuite) resolve(r action.Resolver, label, dialogue string) *action.ResolveOutput {
	out, err := r.Resolve(s.ctx, &action.ResolveInput{
		Session:     s.session,
		Scheduler:   s.scheduler,
		ActionLabel: label,
		Dialogue:    dialogue,
		Audio:       s.sink,
	})
	s.Require().NoError(err)
	return out
}

func (s *ResolverTestSuite) TestConfigValidation() {
	_, err := action.NewResolver(&action.Config{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *ResolverTestSuite) TestResolveRejectedOutsideHumanTurn() {
	_, err := s.scheduler.Advance()
	s.Require().NoError(err)
	r := s.newResolver(nil)

	_, err = r.Resolve(s.ctx, &action.ResolveInput{
		Session:     s.session,
		Scheduler:   s.scheduler,
		ActionLabel: "explore",
		Dialogue:    "I look around",
	})
	s.True(errors.IsNotYourTurn(err))
	s.Equal("thorgar", errors.GetMeta(err)["current_member_id"])

	s.Empty(s.session.History)
	s.Zero(s.session.LastSequence)
	s.Equal(1, s.scheduler.Index())
}

func (s *ResolverTestSuite) TestResolveRequiresAction() {
	r := s.newResolver(nil)

	_, err := r.Resolve(s.ctx, &action.ResolveInput{Session: s.session, Scheduler: s.scheduler})
	s.True(errors.IsInvalidArgument(err))
	s.Empty(s.session.History)
}

func (s *ResolverTestSuite) TestResolveAppendsActorThenDMThenCompanions() {
	s.script(nil)
	r := s.newResolver(nil)

	out := s.resolve(r, "investigate", "I search the cave walls")

	s.Equal([]string{"player", entities.DMSpeakerID, "thorgar", "elara"}, s.speakers(out.Records))
	for i, rec := range out.Records {
		s.Equal(int64(i+1), rec.Sequence)
	}
	s.Len(s.session.History, 4)
	s.Equal(int64(4), s.session.LastSequence)

	// exactly one advance
	s.Equal("thorgar", out.Next.ID)
	s.Equal(1, s.session.CurrentTurnIndex)
	s.Equal(1, s.session.Round)
	s.Equal(1, s.scheduler.Index())

	// each later speaker hears the ones before it
	s.Len(s.request(entities.DMSpeakerID).History, 1)
	s.Len(s.request("elara").History, 3)
	s.Equal("I search the cave walls", s.request("elara").Prompt.Dialogue)
}

func (s *ResolverTestSuite) TestParallelKeepsAppendOrder() {
	s.script(map[string]reply{
		entities.DMSpeakerID: {
			resp:  &narrative.Response{ActionLabel: narrative.ActionNarrate, Dialogue: "The walls shimmer."},
			delay: 40 * time.Millisecond,
		},
	})
	r := s.newResolver(func(cfg *action.Config) { cfg.Parallel = true })

	out := s.resolve(r, "explore", "I head deeper")

	s.Equal([]string{"player", entities.DMSpeakerID, "thorgar", "elara"}, s.speakers(out.Records))
	s.Equal("The walls shimmer.", out.Records[1].Dialogue)
	for i, rec := range s.session.History {
		s.Equal(int64(i+1), rec.Sequence)
	}

	// every call sees the same history
	s.Len(s.request("thorgar").History, 1)
	s.Len(s.request("elara").History, 1)
}

func (s *ResolverTestSuite) TestNarrativeFailureBecomesMarker() {
	s.script(map[string]reply{
		"thorgar": {err: fmt.Errorf("model overloaded")},
	})
	r := s.newResolver(nil)

	out := s.resolve(r, "attack", "I charge the goblin")

	s.Require().Len(out.Records, 4)
	marker := out.Records[2]
	s.Equal("thorgar", marker.SpeakerID)
	s.True(marker.IsErrorMarker())
	s.Empty(marker.Dialogue)
	s.Contains(marker.Failure.Message, "model overloaded")

	// the failed speaker is not passed on as context
	s.Len(s.request("elara").History, 2)
	s.Equal("thorgar", out.Next.ID)

	s.NotNil(s.span("narrative.Generate"))
}

func (s *ResolverTestSuite) TestTimedOutCallBecomesMarker() {
	s.script(map[string]reply{
		"elara": {block: true},
	})
	r := s.newResolver(func(cfg *action.Config) { cfg.CallTimeout = 20 * time.Millisecond })

	out := s.resolve(r, "talk", "Hello there")

	s.Require().Len(out.Records, 4)
	s.True(out.Records[3].IsErrorMarker())
	s.Contains(out.Records[3].Failure.Message, "deadline exceeded")
	s.Equal("thorgar", out.Next.ID)
}

func (s *ResolverTestSuite) TestInvalidRollLeavesSessionUntouched() {
	r := s.newResolver(nil)

	_, err := r.Resolve(s.ctx, &action.ResolveInput{
		Session:     s.session,
		Scheduler:   s.scheduler,
		ActionLabel: "attack",
		Roll:        &action.RollRequest{Notation: "1d1"},
	})
	s.True(errors.IsInvalidNotation(err))
	s.Empty(s.session.History)
	s.Equal(0, s.scheduler.Index())
}

func (s *ResolverTestSuite) TestActorRollAndDMCheck() {
	s.script(map[string]reply{
		entities.DMSpeakerID: {resp: &narrative.Response{
			ActionLabel:  narrative.ActionNarrate,
			Dialogue:     "Roll to climb.",
			RollNotation: "1d20+3",
		}},
	})
	r := s.newResolver(nil)

	out, err := r.Resolve(s.ctx, &action.ResolveInput{
		Session:     s.session,
		Scheduler:   s.scheduler,
		ActionLabel: "explore",
		Dialogue:    "I climb the ledge",
		Roll:        &action.RollRequest{Notation: "1d20+1", Advantage: true},
	})
	s.Require().NoError(err)

	s.Require().NotNil(out.Records[0].Dice)
	s.Equal(13, out.Records[0].Dice.Total)
	s.Equal(entities.RollModeAdvantage, out.Records[0].Dice.Mode)

	s.Require().NotNil(out.Records[1].Dice)
	s.Equal(15, out.Records[1].Dice.Total)
	s.Equal("Roll to climb. A solid 15 gets it done.", out.Records[1].Dialogue)
}

func (s *ResolverTestSuite) TestDMCheckHonoursAdvantageAndNarratesOutcome() {
	s.script(map[string]reply{
		entities.DMSpeakerID: {resp: &narrative.Response{
			ActionLabel:  narrative.ActionNarrate,
			Dialogue:     "Roll for it.",
			RollNotation: "1d20",
			Advantage:    true,
		}},
	})
	r := s.newResolver(nil)

	out := s.resolve(r, "explore", "I leap the chasm with advantage")

	dm := out.Records[1]
	s.Require().NotNil(dm.Dice)
	s.Equal(entities.RollModeAdvantage, dm.Dice.Mode)
	s.Equal([]int{12, 12}, dm.Dice.RawRolls)
	s.Equal("Roll for it. 12... right on the edge of success. (advantage) [Rolled: 12, 12]", dm.Dialogue)
}

func (s *ResolverTestSuite) TestDMCheckCriticalIsLegendary() {
	s.script(map[string]reply{
		entities.DMSpeakerID: {resp: &narrative.Response{
			ActionLabel:  narrative.ActionNarrate,
			Dialogue:     "Roll the d12.",
			RollNotation: "1d12",
		}},
	})
	r := s.newResolver(nil)

	out := s.resolve(r, "explore", "I roll 1d12")

	dm := out.Records[1]
	s.Require().NotNil(dm.Dice)
	s.True(dm.Dice.IsCriticalMax)
	s.Equal("Roll the d12. A natural 12! The dice shine with destiny for a total of 12!", dm.Dialogue)
}

func (s *ResolverTestSuite) TestVoicedRecordsQueueInSequence() {
	s.session.VoiceEnabled = true
	s.script(nil)
	s.voice.EXPECT().Synthesize(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *voice.SynthesizeInput) (*voice.SynthesizeOutput, error) {
			if input.SpeakerID == "elara" {
				return nil, fmt.Errorf("voice quota exhausted")
			}
			return &voice.SynthesizeOutput{Audio: []byte(input.Text), ContentType: "audio/mpeg"}, nil
		}).Times(3)
	r := s.newResolver(nil)

	out := s.resolve(r, "explore", "Onward")

	s.Empty(out.Records[0].AudioRef, "the human is never voiced")
	s.NotEmpty(out.Records[1].AudioRef)
	s.NotEmpty(out.Records[2].AudioRef)

	elara := out.Records[3]
	s.Empty(elara.AudioRef)
	s.Equal("elara speaks", elara.Dialogue)
	s.Require().NotNil(elara.Failure)
	s.Equal(entities.FailureVoice, elara.Failure.Kind)
	s.False(elara.IsErrorMarker())

	s.Require().Len(s.sink.items, 2)
	s.Equal(int64(2), s.sink.items[0].Sequence)
	s.Equal(int64(3), s.sink.items[1].Sequence)
	s.Equal("sess_1", s.sink.items[0].SessionID)

	clip, err := s.clips.Get(s.ctx, &clips.GetInput{ClipRef: out.Records[1].AudioRef})
	s.Require().NoError(err)
	s.Equal("dm speaks", string(clip.Clip.Audio))

	s.NotNil(s.span("voice.Synthesize"))
}

func (s *ResolverTestSuite) TestClipStoreFailureIsAVoiceFailure() {
	s.session.VoiceEnabled = true
	s.script(nil)
	s.voice.EXPECT().Synthesize(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *voice.SynthesizeInput) (*voice.SynthesizeOutput, error) {
			return &voice.SynthesizeOutput{Audio: []byte(input.Text), ContentType: "audio/mpeg"}, nil
		}).Times(3)

	store := clipsmock.NewMockRepository(s.ctrl)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *clips.SaveInput) (*clips.SaveOutput, error) {
			if input.SpeakerID == "thorgar" {
				return nil, errors.Unavailable("redis down")
			}
			return &clips.SaveOutput{ClipRef: "clip_" + input.SpeakerID}, nil
		}).Times(3)
	r := s.newResolver(func(cfg *action.Config) {
		cfg.Clips = store
	})

	out := s.resolve(r, "explore", "Onward")

	s.Equal("clip_dm", out.Records[1].AudioRef)
	thorgar := out.Records[2]
	s.Empty(thorgar.AudioRef)
	s.Equal("thorgar speaks", thorgar.Dialogue)
	s.Require().NotNil(thorgar.Failure)
	s.Equal(entities.FailureVoice, thorgar.Failure.Kind)
	s.Contains(thorgar.Failure.Message, "redis down")
	s.Equal("clip_elara", out.Records[3].AudioRef)

	s.Require().Len(s.sink.items, 2)
	s.Equal(int64(2), s.sink.items[0].Sequence)
	s.Equal(int64(4), s.sink.items[1].Sequence)
}

func (s *ResolverTestSuite) TestVoiceDisabledSkipsSynthesis() {
	s.script(nil)
	r := s.newResolver(nil)

	out := s.resolve(r, "explore", "Onward")

	for _, rec := range out.Records {
		s.Empty(rec.AudioRef)
		s.Nil(rec.Failure)
	}
	s.Empty(s.sink.items)
}

func (s *ResolverTestSuite) TestResolveCompanion() {
	s.script(nil)
	r := s.newResolver(nil)
	s.resolve(r, "explore", "Onward")

	_, err := r.ResolveCompanion(s.ctx, &action.ResolveCompanionInput{
		Session:   s.session,
		Scheduler: s.scheduler,
		MemberID:  "elara",
	})
	s.True(errors.IsNotYourTurn(err))
	s.Len(s.session.History, 4)

	out, err := r.ResolveCompanion(s.ctx, &action.ResolveCompanionInput{
		Session:   s.session,
		Scheduler: s.scheduler,
		MemberID:  "thorgar",
	})
	s.Require().NoError(err)

	s.Equal([]string{"thorgar", entities.DMSpeakerID}, s.speakers(out.Records))
	s.Equal(int64(5), out.Records[0].Sequence)
	s.Equal(int64(6), out.Records[1].Sequence)
	s.Equal("elara speaks", s.request("thorgar").Prompt.Dialogue)
	s.Equal("thorgar", s.request(entities.DMSpeakerID).Prompt.SpeakerID)
	s.Equal("elara", out.Next.ID)
}

func (s *ResolverTestSuite) TestCompanionOpensWithoutHistory() {
	s.script(nil)
	_, err := s.scheduler.Advance()
	s.Require().NoError(err)
	r := s.newResolver(nil)

	_, err = r.ResolveCompanion(s.ctx, &action.ResolveCompanionInput{
		Session:   s.session,
		Scheduler: s.scheduler,
		MemberID:  "thorgar",
	})
	s.Require().NoError(err)
	s.Equal(entities.DMSpeakerID, s.request("thorgar").Prompt.SpeakerID)
}

func (s *ResolverTestSuite) TestFullRoundReturnsToHuman() {
	s.script(nil)
	r := s.newResolver(nil)

	s.resolve(r, "explore", "Onward")
	for _, id := range []string{"thorgar", "elara"} {
		_, err := r.ResolveCompanion(s.ctx, &action.ResolveCompanionInput{
			Session:   s.session,
			Scheduler: s.scheduler,
			MemberID:  id,
		})
		s.Require().NoError(err)
	}

	s.True(s.scheduler.IsHumanTurn())
	s.Equal(2, s.session.Round)
	s.Equal(0, s.session.CurrentTurnIndex)
	s.Len(s.session.History, 8)
}
