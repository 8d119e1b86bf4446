// Package audio plays voice clips one at a time in sequence order.
//
// A Queue is an actor: one goroutine owns the backlog, the active item and
// the player. Every public method hands a message to that goroutine, so
// enqueue and dequeue can never race.
package audio

//go:generate mockgen -destination=mock/mock_player.go -package=audiomock github.com/KirkDiggler/rpg-party/internal/audio Player

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/notices"
)

const (
	// DefaultStartTimeout bounds a single Player.Play or Player.Stop call
	DefaultStartTimeout = 5 * time.Second

	// DefaultSettleDelay is how long an idle queue holds a clip that does not
	// directly follow the last one started, so a burst of clips finishing
	// synthesis out of order still plays in sequence
	DefaultSettleDelay = 150 * time.Millisecond

	commandBuffer = 16
	signalBuffer  = 32
)

// Player renders clips. Play returns once playback has started; the outcome
// arrives later through Queue.PlaybackComplete or Queue.PlaybackError.
// Only a Queue may call a Player.
type Player interface {
	Play(ctx context.Context, item entities.AudioQueueItem, settings entities.PlaybackSettings) error
	Stop(ctx context.Context, sessionID string) error
}

// QueueConfig holds the dependencies for a playback queue
type QueueConfig struct {
	SessionID string
	Player    Player
	EventBus  events.EventBus

	// Settings are the initial volume and mute state
	Settings entities.PlaybackSettings

	// MaxClipDuration turns a clip that never reports back into a playback
	// error. Zero disables the watchdog.
	MaxClipDuration time.Duration

	// StartTimeout bounds each call into the player. Defaults to DefaultStartTimeout.
	StartTimeout time.Duration

	// SettleDelay defaults to DefaultSettleDelay
	SettleDelay time.Duration
}

// Validate ensures all required dependencies are provided
func (c *QueueConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("SessionID", c.SessionID, vb)
	if c.Player == nil {
		vb.RequiredField("Player")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	errors.ValidateUnitInterval("Settings.Volume", c.Settings.Volume, vb)
	errors.ValidateNonNegative("MaxClipDuration", c.MaxClipDuration, vb)
	errors.ValidateNonNegative("StartTimeout", c.StartTimeout, vb)
	errors.ValidateNonNegative("SettleDelay", c.SettleDelay, vb)

	return vb.Build()
}

// Snapshot is a point-in-time view of the queue
type Snapshot struct {
	Active   *entities.AudioQueueItem  `json:"active,omitempty"`
	Pending  []entities.AudioQueueItem `json:"pending"`
	Settings entities.PlaybackSettings `json:"settings"`
	Paused   bool                      `json:"paused"`
}

type command struct {
	apply func() error
	reply chan error
}

type signalKind int

const (
	signalComplete signalKind = iota
	signalError
	signalTimeout
	signalSettled
)

type signal struct {
	kind  signalKind
	seq   int64
	cause error
}

// Queue is the sequential playback queue for one session
type Queue struct {
	sessionID    string
	player       Player
	bus          events.EventBus
	maxClip      time.Duration
	startTimeout time.Duration
	settleDelay  time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	commands  chan command
	signals   chan signal
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// owned by the run goroutine
	backlog     backlog
	arrivals    uint64
	active      *entities.AudioQueueItem
	lastStarted int64
	settings    entities.PlaybackSettings
	paused      bool
	watchdog    *time.Timer
	settle      *time.Timer
	settleGen   int64
}

// NewQueue creates a queue and starts its goroutine. Close releases it.
func NewQueue(cfg *QueueConfig) (*Queue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	startTimeout := cfg.StartTimeout
	if startTimeout == 0 {
		startTimeout = DefaultStartTimeout
	}
	settleDelay := cfg.SettleDelay
	if settleDelay == 0 {
		settleDelay = DefaultSettleDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		sessionID:    cfg.SessionID,
		player:       cfg.Player,
		bus:          cfg.EventBus,
		maxClip:      cfg.MaxClipDuration,
		startTimeout: startTimeout,
		settleDelay:  settleDelay,
		ctx:          ctx,
		cancel:       cancel,
		commands:     make(chan command, commandBuffer),
		signals:      make(chan signal, signalBuffer),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		settings:     cfg.Settings,
	}

	go q.run()
	return q, nil
}

// Enqueue adds an item to the backlog. It never interrupts the active clip
// and waits behind lower sequences. On an idle queue it starts at once when
// it follows the last clip started, and after a short settle delay
// otherwise so lower sequences still in flight can overtake it. A clip
// arriving after higher sequences already played is still played, next.
func (q *Queue) Enqueue(ctx context.Context, item entities.AudioQueueItem) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("SpeakerID", item.SpeakerID, vb)
	errors.ValidateRequired("ClipRef", item.ClipRef, vb)
	if item.Sequence <= 0 {
		vb.Field("Sequence", "must be positive")
	}
	if err := vb.Build(); err != nil {
		return err
	}
	item.SessionID = q.sessionID

	return q.do(ctx, func() error {
		q.enqueue(item)
		return nil
	})
}

// PlaybackComplete reports that the clip with sequence seq finished.
// Reports for anything but the active clip are ignored.
func (q *Queue) PlaybackComplete(ctx context.Context, seq int64) error {
	return q.signal(ctx, signal{kind: signalComplete, seq: seq})
}

// PlaybackError reports that the clip with sequence seq failed. The clip is
// dropped and the next one starts.
func (q *Queue) PlaybackError(ctx context.Context, seq int64, cause error) error {
	return q.signal(ctx, signal{kind: signalError, seq: seq, cause: cause})
}

// Clear discards the backlog and stops the active clip
func (q *Queue) Clear(ctx context.Context) error {
	return q.do(ctx, func() error {
		q.clear("cleared")
		return nil
	})
}

// SetVolume changes the volume used for clips started after this call
func (q *Queue) SetVolume(ctx context.Context, volume float64) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateUnitInterval("Volume", volume, vb)
	if err := vb.Build(); err != nil {
		return err
	}
	return q.do(ctx, func() error {
		q.settings.Volume = volume
		q.publishSettings()
		return nil
	})
}

// SetMuted changes the mute state used for clips started after this call
func (q *Queue) SetMuted(ctx context.Context, muted bool) error {
	return q.do(ctx, func() error {
		q.settings.Muted = muted
		q.publishSettings()
		return nil
	})
}

// Pause holds the backlog. The active clip keeps playing.
func (q *Queue) Pause(ctx context.Context) error {
	return q.do(ctx, func() error {
		q.paused = true
		return nil
	})
}

// Resume releases the backlog and starts the next clip if none is playing
func (q *Queue) Resume(ctx context.Context) error {
	return q.do(ctx, func() error {
		q.paused = false
		q.dispatch()
		return nil
	})
}

// Snapshot returns the active clip, the pending clips in drain order and
// the current settings
func (q *Queue) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	err := q.do(ctx, func() error {
		snap = &Snapshot{
			Pending:  q.backlog.items(),
			Settings: q.settings,
			Paused:   q.paused,
		}
		if q.active != nil {
			active := *q.active
			snap.Active = &active
		}
		return nil
	})
	return snap, err
}

// Close clears the queue, releases the player and stops the goroutine.
// It is safe to call more than once.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.quit)
	})
	<-q.done
}

func (q *Queue) closedErr() error {
	return errors.NoActiveSessionf("playback queue for session %s is closed", q.sessionID)
}

// do runs fn on the queue goroutine and waits for its result
func (q *Queue) do(ctx context.Context, fn func() error) error {
	cmd := command{apply: fn, reply: make(chan error, 1)}

	select {
	case q.commands <- cmd:
	case <-q.done:
		return q.closedErr()
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "playback queue busy")
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-q.done:
		return q.closedErr()
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "playback queue did not respond")
	}
}

func (q *Queue) signal(ctx context.Context, sig signal) error {
	select {
	case q.signals <- sig:
		return nil
	case <-q.done:
		return q.closedErr()
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "playback signal dropped")
	}
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		select {
		case <-q.quit:
			q.clear("closed")
			q.cancel()
			return
		case cmd := <-q.commands:
			cmd.reply <- cmd.apply()
		case sig := <-q.signals:
			q.handleSignal(sig)
		}
	}
}

func (q *Queue) enqueue(item entities.AudioQueueItem) {
	if item.Sequence < q.lastStarted {
		slog.Debug("Audio item arrived behind playback position",
			"session_id", q.sessionID,
			"sequence", item.Sequence,
			"last_started", q.lastStarted,
			"speaker_id", item.SpeakerID,
		)
	}

	q.arrivals++
	q.backlog.push(item, q.arrivals)

	switch {
	case q.active != nil || q.paused:
	case q.backlog.next().Sequence == q.lastStarted+1:
		q.stopSettling()
		q.dispatch()
	case q.settle == nil:
		q.startSettling()
	}
}

// startSettling holds dispatch for the settle delay
func (q *Queue) startSettling() {
	q.settleGen++
	gen := q.settleGen
	q.settle = time.AfterFunc(q.settleDelay, func() {
		select {
		case q.signals <- signal{kind: signalSettled, seq: gen}:
		case <-q.done:
		}
	})
}

func (q *Queue) stopSettling() {
	if q.settle != nil {
		q.settle.Stop()
		q.settle = nil
	}
}

// dispatch starts backlog items until one is playing or none are left.
// Items whose Play call fails are dropped on the spot.
func (q *Queue) dispatch() {
	if q.settle != nil {
		return
	}
	for q.active == nil && !q.paused && q.backlog.Len() > 0 {
		item := q.backlog.pop()
		if item.Sequence > q.lastStarted {
			q.lastStarted = item.Sequence
		}

		ctx, cancel := context.WithTimeout(q.ctx, q.startTimeout)
		err := q.player.Play(ctx, item, q.settings)
		cancel()
		if err != nil {
			q.fail(item, err)
			continue
		}

		q.active = &item
		q.armWatchdog(item.Sequence)
		settings := q.settings

		slog.Debug("Audio clip started",
			"session_id", q.sessionID,
			"sequence", item.Sequence,
			"speaker_id", item.SpeakerID,
		)
		q.publish(&notices.Notice{
			Kind:      notices.KindPlaybackStarted,
			SpeakerID: item.SpeakerID,
			Sequence:  item.Sequence,
			Item:      &item,
			Settings:  &settings,
		})
	}
}

func (q *Queue) handleSignal(sig signal) {
	if sig.kind == signalSettled {
		// A timer stopped too late delivers a stale generation
		if q.settle != nil && sig.seq == q.settleGen {
			q.settle = nil
			q.dispatch()
		}
		return
	}

	if q.active == nil || q.active.Sequence != sig.seq {
		slog.Debug("Ignoring playback signal for inactive clip",
			"session_id", q.sessionID,
			"sequence", sig.seq,
		)
		return
	}

	item := *q.active
	q.active = nil
	q.disarmWatchdog()

	switch sig.kind {
	case signalComplete:
		q.publish(&notices.Notice{
			Kind:      notices.KindPlaybackFinished,
			SpeakerID: item.SpeakerID,
			Sequence:  item.Sequence,
			Item:      &item,
		})
	case signalTimeout:
		q.stopPlayer()
		q.fail(item, sig.cause)
	default:
		q.fail(item, sig.cause)
	}

	q.dispatch()
}

// fail drops item and tells listeners which speaker was lost
func (q *Queue) fail(item entities.AudioQueueItem, cause error) {
	err := errors.PlaybackFailed(item.SpeakerID, cause)
	slog.Warn("Audio clip failed",
		"session_id", q.sessionID,
		"sequence", item.Sequence,
		"speaker_id", item.SpeakerID,
		"error", err,
	)
	q.publish(&notices.Notice{
		Kind:      notices.KindPlaybackFailed,
		SpeakerID: item.SpeakerID,
		Sequence:  item.Sequence,
		Item:      &item,
		Message:   err.Error(),
	})
}

func (q *Queue) clear(reason string) {
	dropped := q.backlog.Len()
	q.backlog = nil
	q.disarmWatchdog()
	q.stopSettling()

	if q.active != nil {
		dropped++
		q.active = nil
		q.stopPlayer()
	}

	if dropped > 0 {
		q.publish(&notices.Notice{
			Kind:    notices.KindPlaybackCleared,
			Message: reason,
		})
	}
}

func (q *Queue) stopPlayer() {
	ctx, cancel := context.WithTimeout(q.ctx, q.startTimeout)
	defer cancel()

	if err := q.player.Stop(ctx, q.sessionID); err != nil {
		slog.Warn("Failed to stop audio player",
			"session_id", q.sessionID,
			"error", err,
		)
	}
}

func (q *Queue) armWatchdog(seq int64) {
	if q.maxClip <= 0 {
		return
	}
	q.watchdog = time.AfterFunc(q.maxClip, func() {
		select {
		case q.signals <- signal{
			kind:  signalTimeout,
			seq:   seq,
			cause: errors.DeadlineExceeded("clip did not finish in time"),
		}:
		case <-q.done:
		}
	})
}

func (q *Queue) disarmWatchdog() {
	if q.watchdog != nil {
		q.watchdog.Stop()
		q.watchdog = nil
	}
}

func (q *Queue) publishSettings() {
	settings := q.settings
	q.publish(&notices.Notice{
		Kind:     notices.KindPlaybackSettings,
		Settings: &settings,
	})
}

func (q *Queue) publish(n *notices.Notice) {
	n.SessionID = q.sessionID
	if err := notices.Publish(q.ctx, q.bus, n); err != nil {
		slog.Warn("Failed to publish audio notice",
			"session_id", q.sessionID,
			"kind", n.Kind,
			"error", err,
		)
	}
}
