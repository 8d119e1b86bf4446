package companion_test

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-party/internal/companion"
	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/notices"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/session"
	sessionmock "github.com/KirkDiggler/rpg-party/internal/orchestrators/session/mock"
)

type DriverTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	sessions *sessionmock.MockService
	bus      events.EventBus
	driver   *companion.Driver
	ctx      context.Context
}

func TestDriverSuite(t *testing.T) {
	suite.Run(t, new(DriverTestSuite))
}

func (s *DriverTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sessions = sessionmock.NewMockService(s.ctrl)
	s.bus = events.NewBus()
	s.ctx = context.Background()

	var err error
	s.driver, err = companion.NewDriver(&companion.Config{
		Sessions: s.sessions,
		EventBus: s.bus,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.driver.Start(s.ctx))
}

func (s *DriverTestSuite) TearDownTest() {
	s.driver.Stop()
	s.ctrl.Finish()
}

func (s *DriverTestSuite) advance(sessionID string, member entities.PartyMember) {
	s.Require().NoError(notices.Publish(s.ctx, s.bus, &notices.Notice{
		Kind:      notices.KindTurnAdvanced,
		SessionID: sessionID,
		Round:     1,
		Member:    &member,
	}))
}

func (s *DriverTestSuite) wait(done <-chan struct{}) {
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.FailNow("companion turn was never taken")
	}
}

func (s *DriverTestSuite) TestConfigValidation() {
	_, err := companion.NewDriver(&companion.Config{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *DriverTestSuite) TestStartTwiceFails() {
	err := s.driver.Start(s.ctx)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *DriverTestSuite) TestTakesCompanionTurn() {
	done := make(chan struct{})
	s.sessions.EXPECT().
		TakeCompanionTurn(gomock.Any(), &session.TakeCompanionTurnInput{SessionID: "sess_1", MemberID: "thorgar"}).
		DoAndReturn(func(_ context.Context, _ *session.TakeCompanionTurnInput) (*session.TakeCompanionTurnOutput, error) {
			close(done)
			return &session.TakeCompanionTurnOutput{Next: entities.PartyMember{ID: "elara"}}, nil
		})

	s.advance("sess_1", entities.PartyMember{ID: "thorgar", Kind: entities.KindAutonomous})
	s.wait(done)
}

func (s *DriverTestSuite) TestIgnoresHumanTurn() {
	s.advance("sess_1", entities.PartyMember{ID: "player", Kind: entities.KindHuman})

	// gomock fails the test on any unexpected call
	time.Sleep(50 * time.Millisecond)
}

func (s *DriverTestSuite) TestStaleTurnIsTolerated() {
	done := make(chan struct{})
	s.sessions.EXPECT().
		TakeCompanionTurn(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *session.TakeCompanionTurnInput) (*session.TakeCompanionTurnOutput, error) {
			close(done)
			return nil, errors.NoActiveSession("session ended")
		})

	s.advance("sess_2", entities.PartyMember{ID: "zara", Kind: entities.KindAutonomous})
	s.wait(done)
}

func (s *DriverTestSuite) TestBusyWorkersNeverDropTurns() {
	bus := events.NewBus()
	driver, err := companion.NewDriver(&companion.Config{
		Sessions: s.sessions,
		EventBus: bus,
		Workers:  1,
	})
	s.Require().NoError(err)
	s.Require().NoError(driver.Start(s.ctx))
	defer driver.Stop()

	release := make(chan struct{})
	taken := make(chan string, 8)
	s.sessions.EXPECT().
		TakeCompanionTurn(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input *session.TakeCompanionTurnInput) (*session.TakeCompanionTurnOutput, error) {
			if input.SessionID == "sess_1" {
				select {
				case <-release:
				case <-ctx.Done():
				}
			}
			taken <- input.SessionID
			return &session.TakeCompanionTurnOutput{Next: entities.PartyMember{ID: "player", Kind: entities.KindHuman}}, nil
		}).
		Times(4)

	for _, id := range []string{"sess_1", "sess_2", "sess_3", "sess_4"} {
		member := entities.PartyMember{ID: "thorgar", Kind: entities.KindAutonomous}
		s.Require().NoError(notices.Publish(s.ctx, bus, &notices.Notice{
			Kind:      notices.KindTurnAdvanced,
			SessionID: id,
			Round:     1,
			Member:    &member,
		}))
	}
	s.Eventually(func() bool {
		return driver.Pending() == 3
	}, time.Second, 5*time.Millisecond)

	close(release)

	got := make(map[string]bool)
	for range 4 {
		select {
		case id := <-taken:
			got[id] = true
		case <-time.After(2 * time.Second):
			s.FailNow("companion turn was dropped", "taken %v", got)
		}
	}
	s.Len(got, 4)
}

func (s *DriverTestSuite) TestNewerTurnReplacesPendingOne() {
	bus := events.NewBus()
	driver, err := companion.NewDriver(&companion.Config{
		Sessions: s.sessions,
		EventBus: bus,
		Workers:  1,
	})
	s.Require().NoError(err)
	s.Require().NoError(driver.Start(s.ctx))
	defer driver.Stop()

	release := make(chan struct{})
	taken := make(chan string, 8)
	s.sessions.EXPECT().
		TakeCompanionTurn(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input *session.TakeCompanionTurnInput) (*session.TakeCompanionTurnOutput, error) {
			if input.SessionID == "sess_busy" {
				select {
				case <-release:
				case <-ctx.Done():
				}
			}
			taken <- input.MemberID
			return &session.TakeCompanionTurnOutput{}, nil
		}).
		Times(2)

	publish := func(sessionID, memberID string) {
		member := entities.PartyMember{ID: memberID, Kind: entities.KindAutonomous}
		s.Require().NoError(notices.Publish(s.ctx, bus, &notices.Notice{
			Kind:      notices.KindTurnAdvanced,
			SessionID: sessionID,
			Member:    &member,
		}))
	}
	publish("sess_busy", "zara")
	s.Eventually(func() bool {
		return driver.Pending() == 0
	}, time.Second, 5*time.Millisecond)

	publish("sess_1", "thorgar")
	publish("sess_1", "elara")
	s.Equal(1, driver.Pending())
	close(release)

	s.Equal("zara", <-taken)
	select {
	case member := <-taken:
		s.Equal("elara", member)
	case <-time.After(2 * time.Second):
		s.FailNow("companion turn was never taken")
	}
}
