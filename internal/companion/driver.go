// Package companion plays the autonomous members' turns. It watches the
// event bus for turn changes and submits each companion's turn through the
// session manager, off the publisher's goroutine.
package companion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/notices"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/session"
)

// DefaultWorkers bounds how many companion turns run at once across sessions
const DefaultWorkers = 4

// Config holds the dependencies for the driver
type Config struct {
	Sessions session.Service
	EventBus events.EventBus

	// Delay is a pause before each companion speaks
	Delay   time.Duration
	Workers int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Sessions == nil {
		vb.RequiredField("Sessions")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	errors.ValidateNonNegative("Delay", c.Delay, vb)
	errors.ValidateNonNegative("Workers", c.Workers, vb)

	return vb.Build()
}

type job struct {
	sessionID string
	memberID  string
	round     int
}

// Driver submits companion turns as they come up. Each session holds at
// most one due turn; a newer turn for the same session replaces the older
// one, which the manager would reject anyway. No turn is ever dropped for
// lack of room.
type Driver struct {
	sessions session.Service
	bus      events.EventBus
	delay    time.Duration
	workers  int

	pendingMu sync.Mutex
	pending   map[string]job
	order     []string
	wake      chan struct{}

	mu     sync.Mutex
	subID  string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDriver creates a driver. Start begins watching the bus.
func NewDriver(cfg *Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = DefaultWorkers
	}

	return &Driver{
		sessions: cfg.Sessions,
		bus:      cfg.EventBus,
		delay:    cfg.Delay,
		workers:  workers,
		pending:  make(map[string]job),
		wake:     make(chan struct{}, 1),
	}, nil
}

// Start subscribes to turn changes and runs until ctx is done or Stop is called
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		return errors.FailedPrecondition("companion driver already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.subID = notices.Subscribe(d.bus, notices.KindTurnAdvanced, d.onTurnAdvanced)

	go d.run(ctx)

	slog.Info("Companion driver started", "workers", d.workers, "delay", d.delay)
	return nil
}

// Stop unsubscribes and waits for in-flight turns to finish
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel, done, subID := d.cancel, d.done, d.subID
	d.cancel = nil
	d.mu.Unlock()

	if cancel == nil {
		return
	}

	notices.Unsubscribe(d.bus, subID)
	cancel()
	<-done
}

// onTurnAdvanced runs on the publisher's goroutine and must not block
func (d *Driver) onTurnAdvanced(_ context.Context, n *notices.Notice) error {
	if n.Member == nil || n.Member.IsHuman() {
		return nil
	}

	d.pendingMu.Lock()
	if _, ok := d.pending[n.SessionID]; !ok {
		d.order = append(d.order, n.SessionID)
	}
	d.pending[n.SessionID] = job{sessionID: n.SessionID, memberID: n.Member.ID, round: n.Round}
	d.pendingMu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return nil
}

// next pops the oldest due session's turn
func (d *Driver) next() (job, bool) {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()

	if len(d.order) == 0 {
		return job{}, false
	}
	sessionID := d.order[0]
	d.order = d.order[1:]
	j := d.pending[sessionID]
	delete(d.pending, sessionID)
	return j, true
}

// Pending returns how many sessions have a companion turn waiting for a worker
func (d *Driver) Pending() int {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	return len(d.order)
}

func (d *Driver) run(ctx context.Context) {
	defer close(d.done)

	// A turn stays pending until a worker is free to take it, so a newer
	// turn for the same session can still replace it
	slots := make(chan struct{}, d.workers)
	g := new(errgroup.Group)
	defer func() { _ = g.Wait() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.wake:
		}

		for {
			select {
			case <-ctx.Done():
				return
			case slots <- struct{}{}:
			}

			j, ok := d.next()
			if !ok {
				<-slots
				break
			}
			g.Go(func() error {
				defer func() { <-slots }()
				d.take(ctx, j)
				return nil
			})
		}
	}
}

func (d *Driver) take(ctx context.Context, j job) {
	if d.delay > 0 {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}

	out, err := d.sessions.TakeCompanionTurn(ctx, &session.TakeCompanionTurnInput{
		SessionID: j.sessionID,
		MemberID:  j.memberID,
	})
	if err != nil {
		// The session may have ended or moved on while the turn waited
		if errors.IsNotYourTurn(err) || errors.IsNoActiveSession(err) {
			slog.Debug("Companion turn no longer due",
				"session_id", j.sessionID,
				"member_id", j.memberID,
				"error", err,
			)
			return
		}
		slog.Error("Companion turn failed",
			"session_id", j.sessionID,
			"member_id", j.memberID,
			"round", j.round,
			"error", err,
		)
		return
	}

	slog.Info("Companion turn taken",
		"session_id", j.sessionID,
		"member_id", j.memberID,
		"records", len(out.Records),
		"next_member_id", out.Next.ID,
	)
}
