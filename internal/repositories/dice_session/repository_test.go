package dicesession_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/pkg/clock"
	dicesession "github.com/KirkDiggler/rpg-party/internal/repositories/dice_session"
	"github.com/KirkDiggler/rpg-party/internal/testutils"
)

// RepositoryTestSuite runs the same behaviour against every implementation
type RepositoryTestSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clock.Manual
	newRepo func(s *RepositoryTestSuite) dicesession.Repository
	repo    dicesession.Repository
}

func TestInMemoryRepositorySuite(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(s *RepositoryTestSuite) dicesession.Repository {
			return dicesession.NewInMemory(s.clock)
		},
	})
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(s *RepositoryTestSuite) dicesession.Repository {
			client, _ := testutils.CreateTestRedisClient(s.T())
			repo, err := dicesession.NewRedisRepository(&dicesession.Config{
				Client: client,
				Clock:  s.clock,
			})
			s.Require().NoError(err)
			return repo
		},
	})
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewManual(time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC))
	s.repo = s.newRepo(s)
}

func (s *RepositoryTestSuite) roll(id string, total int) dicesession.DiceRoll {
	return dicesession.DiceRoll{
		RollID:   id,
		RolledBy: "human_1",
		Result: entities.DiceRollResult{
			Notation:   "1d20",
			Count:      1,
			Faces:      20,
			RawRolls:   []int{total},
			ChosenRoll: total,
			Total:      total,
			Mode:       entities.RollModeNormal,
		},
		RolledAt: s.clock.Now(),
	}
}

func (s *RepositoryTestSuite) TestCreateAndGet() {
	created, err := s.repo.Create(s.ctx, dicesession.CreateInput{
		EntityID: "sess_1",
		Context:  "table",
		Rolls:    []dicesession.DiceRoll{s.roll("roll_1", 12)},
		TTL:      time.Minute,
	})
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(time.Minute), created.Session.ExpiresAt)

	got, err := s.repo.Get(s.ctx, dicesession.GetInput{EntityID: "sess_1", Context: "table"})
	s.Require().NoError(err)
	s.Require().Len(got.Session.Rolls, 1)
	s.Equal(12, got.Session.Rolls[0].Result.Total)
	s.Equal("human_1", got.Session.Rolls[0].RolledBy)
}

func (s *RepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, dicesession.GetInput{EntityID: "sess_1", Context: "table"})
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestKeysRequired() {
	_, err := s.repo.Create(s.ctx, dicesession.CreateInput{Context: "table"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Get(s.ctx, dicesession.GetInput{EntityID: "sess_1"})
	s.True(errors.IsInvalidArgument(err))

	s.True(errors.IsInvalidArgument(s.repo.Update(s.ctx, nil)))
}

func (s *RepositoryTestSuite) TestUpdateAppendsRolls() {
	created, err := s.repo.Create(s.ctx, dicesession.CreateInput{
		EntityID: "sess_1",
		Context:  "table",
		Rolls:    []dicesession.DiceRoll{s.roll("roll_1", 4)},
	})
	s.Require().NoError(err)

	session := created.Session
	session.Rolls = append(session.Rolls, s.roll("roll_2", 18))
	s.Require().NoError(s.repo.Update(s.ctx, session))

	got, err := s.repo.Get(s.ctx, dicesession.GetInput{EntityID: "sess_1", Context: "table"})
	s.Require().NoError(err)
	s.Len(got.Session.Rolls, 2)
}

func (s *RepositoryTestSuite) TestExpiredSessionIsGone() {
	_, err := s.repo.Create(s.ctx, dicesession.CreateInput{
		EntityID: "sess_1",
		Context:  "table",
		TTL:      time.Minute,
	})
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Minute)

	_, err = s.repo.Get(s.ctx, dicesession.GetInput{EntityID: "sess_1", Context: "table"})
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestDeleteCountsRolls() {
	_, err := s.repo.Create(s.ctx, dicesession.CreateInput{
		EntityID: "sess_1",
		Context:  "table",
		Rolls:    []dicesession.DiceRoll{s.roll("roll_1", 3), s.roll("roll_2", 9)},
	})
	s.Require().NoError(err)

	out, err := s.repo.Delete(s.ctx, dicesession.DeleteInput{EntityID: "sess_1", Context: "table"})
	s.Require().NoError(err)
	s.Equal(int32(2), out.RollsDeleted)

	_, err = s.repo.Get(s.ctx, dicesession.GetInput{EntityID: "sess_1", Context: "table"})
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestUpdateReplacesRolls() {
	created, err := s.repo.Create(s.ctx, dicesession.CreateInput{
		EntityID: "sess_1",
		Context:  "table",
		Rolls:    []dicesession.DiceRoll{s.roll("roll_1", 4), s.roll("roll_2", 7)},
	})
	s.Require().NoError(err)

	session := created.Session
	session.Rolls = []dicesession.DiceRoll{s.roll("roll_3", 19)}
	s.Require().NoError(s.repo.Update(s.ctx, session))

	got, err := s.repo.Get(s.ctx, dicesession.GetInput{EntityID: "sess_1", Context: "table"})
	s.Require().NoError(err)
	s.Require().Len(got.Session.Rolls, 1)
	s.Equal("roll_3", got.Session.Rolls[0].RollID)
	s.Equal(created.Session.ExpiresAt, got.Session.ExpiresAt)
}

func (s *RepositoryTestSuite) TestUpdateAfterExpiryFails() {
	created, err := s.repo.Create(s.ctx, dicesession.CreateInput{
		EntityID: "sess_1",
		Context:  "table",
		TTL:      time.Minute,
	})
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Minute)

	err = s.repo.Update(s.ctx, created.Session)
	s.True(errors.IsFailedPrecondition(err))
}
