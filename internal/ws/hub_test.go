package ws_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/notices"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/session"
	sessionmock "github.com/KirkDiggler/rpg-party/internal/orchestrators/session/mock"
	"github.com/KirkDiggler/rpg-party/internal/ws"
)

type HubTestSuite struct {
	suite.Suite
	ctx      context.Context
	cancel   context.CancelFunc
	ctrl     *gomock.Controller
	reporter *sessionmock.MockService
	bus      events.EventBus
	hub      *ws.Hub
	server   *httptest.Server
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubTestSuite))
}

func (s *HubTestSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Second)
	s.ctrl = gomock.NewController(s.T())
	s.reporter = sessionmock.NewMockService(s.ctrl)
	s.bus = events.NewBus()

	hub, err := ws.NewHub(&ws.HubConfig{
		ClipURLPrefix: "/clips/",
		CloseTimeout:  200 * time.Millisecond,
	})
	s.Require().NoError(err)
	s.hub = hub
	s.hub.Relay(s.bus)

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		_ = s.hub.Serve(r.Context(), r.URL.Query().Get("session"), conn, s.reporter)
	}))
}

func (s *HubTestSuite) TearDownTest() {
	s.hub.Close()
	s.server.Close()
	s.cancel()
}

func (s *HubTestSuite) dial(sessionID string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.Dial(s.ctx, url, nil)
	s.Require().NoError(err)
	s.Eventually(func() bool {
		return s.hub.Listeners(sessionID) > 0
	}, time.Second, 5*time.Millisecond)
	return conn
}

func (s *HubTestSuite) read(conn *websocket.Conn) ws.Message {
	var msg ws.Message
	s.Require().NoError(wsjson.Read(s.ctx, conn, &msg))
	return msg
}

func (s *HubTestSuite) TestPlayWithoutListenersFails() {
	err := s.hub.Play(s.ctx, entities.AudioQueueItem{SessionID: "sess_1", ClipRef: "clip_1", Sequence: 1}, entities.PlaybackSettings{Volume: 1})
	s.Error(err)
	s.True(errors.IsUnavailable(err))
}

func (s *HubTestSuite) TestPlayReachesListener() {
	conn := s.dial("sess_1")
	defer conn.CloseNow()

	item := entities.AudioQueueItem{SessionID: "sess_1", SpeakerID: "dm", ClipRef: "clip_7", Sequence: 2}
	s.Require().NoError(s.hub.Play(s.ctx, item, entities.PlaybackSettings{Volume: 0.5}))

	msg := s.read(conn)
	s.Equal(ws.TypePlay, msg.Type)
	s.Equal("/clips/clip_7", msg.ClipURL)
	s.Require().NotNil(msg.Item)
	s.Equal(int64(2), msg.Item.Sequence)
	s.Equal(0.5, msg.Settings.Volume)

	s.Require().NoError(s.hub.Stop(s.ctx, "sess_1"))
	s.Equal(ws.TypeStop, s.read(conn).Type)
}

func (s *HubTestSuite) TestNoticesAreRelayedToTheirSession() {
	conn := s.dial("sess_1")
	defer conn.CloseNow()

	other := s.dial("sess_2")
	defer other.CloseNow()

	s.Require().NoError(notices.Publish(s.ctx, s.bus, &notices.Notice{
		Kind:      notices.KindTurnAdvanced,
		SessionID: "sess_1",
		Round:     2,
	}))

	msg := s.read(conn)
	s.Equal(ws.TypeNotice, msg.Type)
	s.Require().NotNil(msg.Notice)
	s.Equal(notices.KindTurnAdvanced, msg.Notice.Kind)
	s.Equal(2, msg.Notice.Round)

	readCtx, cancel := context.WithTimeout(s.ctx, 50*time.Millisecond)
	defer cancel()
	var stray ws.Message
	s.Error(wsjson.Read(readCtx, other, &stray))
}

func (s *HubTestSuite) TestPlaybackReportsReachReporter() {
	completed := make(chan int64, 1)
	failed := make(chan string, 1)

	s.reporter.EXPECT().
		PlaybackComplete(gomock.Any(), &session.PlaybackCompleteInput{SessionID: "sess_1", Sequence: 3}).
		DoAndReturn(func(_ context.Context, in *session.PlaybackCompleteInput) (*session.PlaybackCompleteOutput, error) {
			completed <- in.Sequence
			return &session.PlaybackCompleteOutput{}, nil
		})
	s.reporter.EXPECT().
		PlaybackError(gomock.Any(), &session.PlaybackErrorInput{SessionID: "sess_1", Sequence: 4, Message: "codec"}).
		DoAndReturn(func(_ context.Context, in *session.PlaybackErrorInput) (*session.PlaybackErrorOutput, error) {
			failed <- in.Message
			return nil, errors.NoActiveSession("session ended")
		})

	conn := s.dial("sess_1")
	defer conn.CloseNow()

	s.Require().NoError(wsjson.Write(s.ctx, conn, ws.Message{Type: ws.TypePlaybackComplete, Sequence: 3}))
	s.Require().NoError(wsjson.Write(s.ctx, conn, ws.Message{Type: "chat", Message: "hello"}))
	s.Require().NoError(wsjson.Write(s.ctx, conn, ws.Message{Type: ws.TypePlaybackError, Sequence: 4, Message: "codec"}))

	select {
	case seq := <-completed:
		s.Equal(int64(3), seq)
	case <-s.ctx.Done():
		s.FailNow("completion never reported")
	}
	select {
	case msg := <-failed:
		s.Equal("codec", msg)
	case <-s.ctx.Done():
		s.FailNow("failure never reported")
	}
}

func (s *HubTestSuite) TestCloseDisconnectsClients() {
	conn := s.dial("sess_1")
	defer conn.CloseNow()

	s.hub.Close()

	var msg ws.Message
	err := wsjson.Read(s.ctx, conn, &msg)
	s.Error(err)
	s.Equal(websocket.StatusGoingAway, websocket.CloseStatus(err))
	s.Eventually(func() bool {
		return s.hub.Listeners("sess_1") == 0
	}, time.Second, 5*time.Millisecond)
}

func (s *HubTestSuite) TestCloseDoesNotWaitOnEachClientInTurn() {
	first := s.dial("sess_1")
	defer first.CloseNow()
	second := s.dial("sess_2")
	defer second.CloseNow()

	// Neither client reads until Close returns, so no handshake completes
	start := time.Now()
	s.hub.Close()
	s.Less(time.Since(start), time.Second)

	for _, conn := range []*websocket.Conn{first, second} {
		var msg ws.Message
		err := wsjson.Read(s.ctx, conn, &msg)
		s.Error(err)
		s.Equal(websocket.StatusGoingAway, websocket.CloseStatus(err))
	}
	s.Eventually(func() bool {
		return s.hub.Listeners("sess_1") == 0 && s.hub.Listeners("sess_2") == 0
	}, time.Second, 5*time.Millisecond)
}

func (s *HubTestSuite) TestNegativeCloseTimeoutRejected() {
	_, err := ws.NewHub(&ws.HubConfig{CloseTimeout: -time.Second})
	s.Error(err)
}
