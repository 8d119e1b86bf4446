package audio_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-party/internal/audio"
	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/notices"
)

const waitFor = 2 * time.Second

type playCall struct {
	item     entities.AudioQueueItem
	settings entities.PlaybackSettings
}

// fakePlayer records every Play attempt and fails the sequences it is told to
type fakePlayer struct {
	mu      sync.Mutex
	plays   chan playCall
	failing map[int64]error
	stops   int
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{
		plays:   make(chan playCall, 32),
		failing: make(map[int64]error),
	}
}

func (p *fakePlayer) Play(_ context.Context, item entities.AudioQueueItem, settings entities.PlaybackSettings) error {
	p.plays <- playCall{item: item, settings: settings}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failing[item.Sequence]
}

func (p *fakePlayer) Stop(_ context.Context, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	return nil
}

func (p *fakePlayer) failOn(seq int64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing[seq] = err
}

func (p *fakePlayer) stopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}

type QueueTestSuite struct {
	suite.Suite
	ctx     context.Context
	player  *fakePlayer
	bus     events.EventBus
	notices chan *notices.Notice
	queue   *audio.Queue
}

func TestQueueSuite(t *testing.T) {
	suite.Run(t, new(QueueTestSuite))
}

func (s *QueueTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.player = newFakePlayer()
	s.bus = events.NewBus()
	s.notices = make(chan *notices.Notice, 64)
	notices.SubscribeAll(s.bus, func(_ context.Context, n *notices.Notice) error {
		s.notices <- n
		return nil
	})
	s.queue = s.newQueue(0)
}

func (s *QueueTestSuite) TearDownTest() {
	s.queue.Close()
}

func (s *QueueTestSuite) newQueue(maxClip time.Duration) *audio.Queue {
	q, err := audio.NewQueue(&audio.QueueConfig{
		SessionID:       "sess_1",
		Player:          s.player,
		EventBus:        s.bus,
		Settings:        entities.PlaybackSettings{Volume: 0.8},
		MaxClipDuration: maxClip,
	})
	s.Require().NoError(err)
	return q
}

func (s *QueueTestSuite) enqueue(seq int64, speaker string) {
	s.Require().NoError(s.queue.Enqueue(s.ctx, entities.AudioQueueItem{
		SpeakerID: speaker,
		ClipRef:   fmt.Sprintf("clip_%d", seq),
		Sequence:  seq,
	}))
}

func (s *QueueTestSuite) expectPlay(seq int64) playCall {
	select {
	case call := <-s.player.plays:
		s.Require().Equal(seq, call.item.Sequence, "unexpected clip started")
		return call
	case <-time.After(waitFor):
		s.FailNow(fmt.Sprintf("clip %d never started", seq))
		return playCall{}
	}
}

func (s *QueueTestSuite) expectNoPlay() {
	select {
	case call := <-s.player.plays:
		s.Failf("unexpected play", "clip %d started", call.item.Sequence)
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *QueueTestSuite) expectNotice(kind string) *notices.Notice {
	deadline := time.After(waitFor)
	for {
		select {
		case n := <-s.notices:
			if n.Kind == kind {
				return n
			}
		case <-deadline:
			s.FailNow("notice never published", kind)
			return nil
		}
	}
}

func (s *QueueTestSuite) complete(seq int64) {
	s.Require().NoError(s.queue.PlaybackComplete(s.ctx, seq))
}

func (s *QueueTestSuite) TestConfigValidation() {
	_, err := audio.NewQueue(&audio.QueueConfig{})
	s.Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = audio.NewQueue(&audio.QueueConfig{
		SessionID: "sess_1",
		Player:    s.player,
		EventBus:  s.bus,
		Settings:  entities.PlaybackSettings{Volume: 2},
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *QueueTestSuite) TestEnqueueValidation() {
	err := s.queue.Enqueue(s.ctx, entities.AudioQueueItem{SpeakerID: "dm", Sequence: 1})
	s.True(errors.IsInvalidArgument(err))

	err = s.queue.Enqueue(s.ctx, entities.AudioQueueItem{SpeakerID: "dm", ClipRef: "c", Sequence: 0})
	s.True(errors.IsInvalidArgument(err))
}

func (s *QueueTestSuite) TestEnqueueDoesNotInterruptActiveClip() {
	s.enqueue(1, "dm")
	s.expectPlay(1)
	s.expectNotice(notices.KindPlaybackStarted)

	s.enqueue(2, "npc_1")
	s.expectNoPlay()

	snap, err := s.queue.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(snap.Active)
	s.Equal(int64(1), snap.Active.Sequence)
	s.Require().Len(snap.Pending, 1)
	s.Equal(int64(2), snap.Pending[0].Sequence)
	s.Zero(s.player.stopCount())

	s.complete(1)
	s.expectNotice(notices.KindPlaybackFinished)
	s.expectPlay(2)
}

func (s *QueueTestSuite) TestOutOfOrderArrivalsDrainBySequence() {
	s.Require().NoError(s.queue.Pause(s.ctx))
	s.enqueue(5, "npc_2")
	s.enqueue(3, "dm")
	s.enqueue(4, "npc_1")
	s.expectNoPlay()

	snap, err := s.queue.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.True(snap.Paused)
	s.Require().Len(snap.Pending, 3)
	s.Equal(int64(3), snap.Pending[0].Sequence)
	s.Equal(int64(5), snap.Pending[2].Sequence)

	s.Require().NoError(s.queue.Resume(s.ctx))
	for _, seq := range []int64{3, 4, 5} {
		s.expectPlay(seq)
		s.complete(seq)
	}
}

func (s *QueueTestSuite) TestArrivalsBehindActiveClipDrainBySequence() {
	s.enqueue(1, "dm")
	s.expectPlay(1)

	s.enqueue(5, "npc_2")
	s.enqueue(3, "dm")
	s.enqueue(4, "npc_1")
	s.complete(1)

	for _, seq := range []int64{3, 4, 5} {
		s.expectPlay(seq)
		s.complete(seq)
	}
}

func (s *QueueTestSuite) TestPlaybackErrorStartsNextClip() {
	s.enqueue(1, "npc_1")
	s.expectPlay(1)
	s.enqueue(2, "dm")

	s.Require().NoError(s.queue.PlaybackError(s.ctx, 1, fmt.Errorf("decoder crashed")))

	failed := s.expectNotice(notices.KindPlaybackFailed)
	s.Equal("npc_1", failed.SpeakerID)
	s.Equal(int64(1), failed.Sequence)
	s.Contains(failed.Message, "decoder crashed")

	s.expectPlay(2)
}

func (s *QueueTestSuite) TestPlayerRejectsClip() {
	s.player.failOn(1, fmt.Errorf("device busy"))
	s.Require().NoError(s.queue.Pause(s.ctx))
	s.enqueue(1, "npc_1")
	s.enqueue(2, "dm")

	s.Require().NoError(s.queue.Resume(s.ctx))
	s.expectPlay(1)
	s.expectPlay(2)

	failed := s.expectNotice(notices.KindPlaybackFailed)
	s.Equal("npc_1", failed.SpeakerID)

	snap, err := s.queue.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(snap.Active)
	s.Equal(int64(2), snap.Active.Sequence)
}

func (s *QueueTestSuite) TestClearStopsAndDropsBacklog() {
	s.enqueue(1, "dm")
	s.expectPlay(1)
	s.enqueue(2, "npc_1")
	s.enqueue(3, "npc_2")

	s.Require().NoError(s.queue.Clear(s.ctx))
	s.expectNotice(notices.KindPlaybackCleared)
	s.Equal(1, s.player.stopCount())

	snap, err := s.queue.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Nil(snap.Active)
	s.Empty(snap.Pending)

	// a late completion for the cleared clip changes nothing
	s.complete(1)
	s.expectNoPlay()

	s.enqueue(4, "dm")
	s.expectPlay(4)
}

func (s *QueueTestSuite) TestSettingsApplyToNextClip() {
	s.Require().NoError(s.queue.SetVolume(s.ctx, 0.3))
	s.Require().NoError(s.queue.SetMuted(s.ctx, true))

	settings := s.expectNotice(notices.KindPlaybackSettings)
	s.Require().NotNil(settings.Settings)

	s.enqueue(1, "dm")
	call := s.expectPlay(1)
	s.Equal(entities.PlaybackSettings{Volume: 0.3, Muted: true}, call.settings)

	err := s.queue.SetVolume(s.ctx, 1.5)
	s.True(errors.IsInvalidArgument(err))

	snap, err := s.queue.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(0.3, snap.Settings.Volume)
}

func (s *QueueTestSuite) TestIdleQueueOrdersOutOfOrderBurst() {
	s.enqueue(5, "npc_2")
	s.enqueue(3, "dm")
	s.enqueue(4, "npc_1")

	for _, seq := range []int64{3, 4, 5} {
		s.expectPlay(seq)
		s.complete(seq)
	}
	s.expectNoPlay()
}

func (s *QueueTestSuite) TestNextSequenceSkipsSettleDelay() {
	s.queue.Close()
	q, err := audio.NewQueue(&audio.QueueConfig{
		SessionID:   "sess_1",
		Player:      s.player,
		EventBus:    s.bus,
		Settings:    entities.PlaybackSettings{Volume: 0.8},
		SettleDelay: time.Hour,
	})
	s.Require().NoError(err)
	s.queue = q

	s.enqueue(2, "npc_1")
	s.expectNoPlay()

	// 1 follows the last started sequence, so the held burst drains now
	s.enqueue(1, "dm")
	s.expectPlay(1)
	s.complete(1)
	s.expectPlay(2)
}

func (s *QueueTestSuite) TestLateClipStillPlays() {
	s.enqueue(5, "npc_2")
	s.expectPlay(5)

	s.enqueue(3, "dm")
	snap, err := s.queue.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(snap.Pending, 1)
	s.Equal(int64(3), snap.Pending[0].Sequence)

	s.complete(5)
	s.expectPlay(3)
}

func (s *QueueTestSuite) TestSignalForInactiveClipIsIgnored() {
	s.enqueue(1, "dm")
	s.expectPlay(1)
	s.enqueue(2, "npc_1")

	s.complete(7)
	s.expectNoPlay()

	snap, err := s.queue.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(snap.Active)
	s.Equal(int64(1), snap.Active.Sequence)
}

func (s *QueueTestSuite) TestWatchdogFailsSilentClip() {
	s.queue.Close()
	s.queue = s.newQueue(30 * time.Millisecond)

	s.enqueue(1, "npc_1")
	s.expectPlay(1)
	s.enqueue(2, "dm")

	s.expectPlay(2)
	failed := s.expectNotice(notices.KindPlaybackFailed)
	s.Equal("npc_1", failed.SpeakerID)
	s.GreaterOrEqual(s.player.stopCount(), 1)
}

func (s *QueueTestSuite) TestClosedQueueRejectsCalls() {
	s.queue.Close()
	s.queue.Close()

	err := s.queue.Enqueue(s.ctx, entities.AudioQueueItem{SpeakerID: "dm", ClipRef: "c", Sequence: 1})
	s.True(errors.IsNoActiveSession(err))

	_, err = s.queue.Snapshot(s.ctx)
	s.True(errors.IsNoActiveSession(err))
}
