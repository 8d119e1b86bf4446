// Package ws fans session notices out to browser clients over websockets and
// plays queued clips on whichever clients are listening to a session.
package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/notices"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/session"
)

// Message types on the wire
const (
	TypeNotice = "notice"
	TypePlay   = "play"
	TypeStop   = "stop"

	// Sent by clients
	TypePlaybackComplete = "playback_complete"
	TypePlaybackError    = "playback_error"
)

const (
	DefaultWriteTimeout = 3 * time.Second
	DefaultSendBuffer   = 32
	DefaultCloseTimeout = time.Second
)

// Message is every frame in both directions. Only the fields relevant to
// Type are set.
type Message struct {
	Type     string                     `json:"type"`
	Notice   *notices.Notice            `json:"notice,omitempty"`
	Item     *entities.AudioQueueItem   `json:"item,omitempty"`
	Settings *entities.PlaybackSettings `json:"settings,omitempty"`
	ClipURL  string                     `json:"clip_url,omitempty"`
	Sequence int64                      `json:"sequence,omitempty"`
	Message  string                     `json:"message,omitempty"`
}

// Reporter receives playback reports read from clients
type Reporter interface {
	PlaybackComplete(ctx context.Context, input *session.PlaybackCompleteInput) (*session.PlaybackCompleteOutput, error)
	PlaybackError(ctx context.Context, input *session.PlaybackErrorInput) (*session.PlaybackErrorOutput, error)
}

// HubConfig configures a Hub
type HubConfig struct {
	// ClipURLPrefix is joined with a clip ref to build the URL clients fetch
	ClipURLPrefix string
	WriteTimeout  time.Duration
	SendBuffer    int
	// CloseTimeout bounds how long Close waits for clients to answer the
	// close frame before dropping their connections
	CloseTimeout time.Duration
}

// Validate ensures the configuration is usable
func (c *HubConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateNonNegative("WriteTimeout", c.WriteTimeout, vb)
	errors.ValidateNonNegative("SendBuffer", c.SendBuffer, vb)
	errors.ValidateNonNegative("CloseTimeout", c.CloseTimeout, vb)
	return vb.Build()
}

type client struct {
	conn *websocket.Conn
	send chan Message
	// cancel ends the client's Serve loop, which drops the connection
	cancel context.CancelFunc
}

// Hub tracks the websocket clients of every session
type Hub struct {
	clipURLPrefix string
	writeTimeout  time.Duration
	sendBuffer    int
	closeTimeout  time.Duration

	mu      sync.Mutex
	clients map[string]map[*client]struct{}

	bus    events.EventBus
	subIDs []string
}

// NewHub creates a hub with no clients
func NewHub(cfg *HubConfig) (*Hub, error) {
	if cfg == nil {
		cfg = &HubConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	h := &Hub{
		clipURLPrefix: cfg.ClipURLPrefix,
		writeTimeout:  cfg.WriteTimeout,
		sendBuffer:    cfg.SendBuffer,
		closeTimeout:  cfg.CloseTimeout,
		clients:       make(map[string]map[*client]struct{}),
	}
	if h.writeTimeout == 0 {
		h.writeTimeout = DefaultWriteTimeout
	}
	if h.sendBuffer == 0 {
		h.sendBuffer = DefaultSendBuffer
	}
	if h.closeTimeout == 0 {
		h.closeTimeout = DefaultCloseTimeout
	}
	return h, nil
}

// Relay forwards every notice on bus to the clients of its session until
// Close is called
func (h *Hub) Relay(bus events.EventBus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bus != nil {
		return
	}
	h.bus = bus
	h.subIDs = notices.SubscribeAll(bus, func(_ context.Context, n *notices.Notice) error {
		h.broadcast(n.SessionID, Message{Type: TypeNotice, Notice: n})
		return nil
	})
}

// Serve registers conn as a client of sessionID and reads playback reports
// from it until the connection closes or ctx is done
func (h *Hub) Serve(ctx context.Context, sessionID string, conn *websocket.Conn, reporter Reporter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := &client{
		conn:   conn,
		send:   make(chan Message, h.sendBuffer),
		cancel: cancel,
	}
	h.add(sessionID, c)
	defer h.remove(sessionID, c)

	go h.writeLoop(ctx, c)

	for {
		var in Message
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "failed to read from client")
		}
		h.handle(ctx, sessionID, in, reporter)
	}
}

func (h *Hub) handle(ctx context.Context, sessionID string, in Message, reporter Reporter) {
	var err error
	switch in.Type {
	case TypePlaybackComplete:
		_, err = reporter.PlaybackComplete(ctx, &session.PlaybackCompleteInput{
			SessionID: sessionID,
			Sequence:  in.Sequence,
		})
	case TypePlaybackError:
		_, err = reporter.PlaybackError(ctx, &session.PlaybackErrorInput{
			SessionID: sessionID,
			Sequence:  in.Sequence,
			Message:   in.Message,
		})
	default:
		slog.Debug("Ignoring client message", "session_id", sessionID, "type", in.Type)
		return
	}
	if err != nil {
		slog.Warn("Playback report rejected",
			"session_id", sessionID,
			"type", in.Type,
			"sequence", in.Sequence,
			"error", err,
		)
	}
}

func (h *Hub) writeLoop(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
			err := wsjson.Write(wctx, c.conn, msg)
			cancel()
			if err != nil {
				_ = c.conn.CloseNow()
				return
			}
		}
	}
}

// Play sends a clip to every client of the item's session. It fails when no
// client is listening so the queue can move on.
func (h *Hub) Play(_ context.Context, item entities.AudioQueueItem, settings entities.PlaybackSettings) error {
	delivered := h.broadcast(item.SessionID, Message{
		Type:     TypePlay,
		Item:     &item,
		Settings: &settings,
		ClipURL:  h.clipURLPrefix + item.ClipRef,
	})
	if delivered == 0 {
		return errors.Unavailable("no player connected").
			WithMeta("session_id", item.SessionID).
			WithMeta("sequence", item.Sequence)
	}
	return nil
}

// Stop tells every client of the session to stop the clip it is playing
func (h *Hub) Stop(_ context.Context, sessionID string) error {
	h.broadcast(sessionID, Message{Type: TypeStop})
	return nil
}

// Listeners returns how many clients are connected to a session
func (h *Hub) Listeners(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[sessionID])
}

// Close stops relaying notices and disconnects every client. Every client
// is sent a going-away close frame at once; connections that have not
// finished the close handshake within the close timeout are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	bus, ids := h.bus, h.subIDs
	h.bus, h.subIDs = nil, nil
	var all []*client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.Unlock()

	if bus != nil {
		notices.Unsubscribe(bus, ids...)
	}
	if len(all) == 0 {
		return
	}

	g := new(errgroup.Group)
	for _, c := range all {
		g.Go(func() error {
			return c.conn.Close(websocket.StatusGoingAway, "server shutting down")
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	timer := time.NewTimer(h.closeTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return
	case <-timer.C:
	}

	// Cancelling a client's read drops its socket, which releases the
	// pending handshakes. The close frames are already on the wire.
	slog.Debug("Close handshake timed out, dropping clients", "clients", len(all))
	for _, c := range all {
		c.cancel()
	}
	<-done
}

func (h *Hub) add(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[sessionID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[sessionID] = set
	}
	set[c] = struct{}{}
	slog.Debug("Client joined session", "session_id", sessionID, "clients", len(set))
}

func (h *Hub) remove(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[sessionID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, sessionID)
	}
}

// broadcast queues msg for every client of a session without blocking and
// returns how many clients accepted it. A client whose buffer is full is
// disconnected.
func (h *Hub) broadcast(sessionID string, msg Message) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for c := range h.clients[sessionID] {
		select {
		case c.send <- msg:
			delivered++
		default:
			slog.Warn("Dropping slow client", "session_id", sessionID)
			_ = c.conn.CloseNow()
			delete(h.clients[sessionID], c)
		}
	}
	return delivered
}
