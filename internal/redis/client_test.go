package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-party/internal/redis"
)

type ClientTestSuite struct {
	suite.Suite
	mr *miniredis.Miniredis
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	var err error
	s.mr, err = miniredis.Run()
	s.Require().NoError(err)
}

func (s *ClientTestSuite) TearDownTest() {
	s.mr.Close()
}

func (s *ClientTestSuite) TestNewClient() {
	client, err := redis.NewClient(s.mr.Addr(), nil)
	s.Require().NoError(err)

	s.NoError(client.Ping(context.Background()).Err())
	s.ErrorIs(client.Get(context.Background(), "missing").Err(), redis.Nil)
}

func (s *ClientTestSuite) TestNewClientRequiresEndpoint() {
	_, err := redis.NewClient("", nil)
	s.Error(err)
}

func (s *ClientTestSuite) TestNewFailoverClientValidation() {
	_, err := redis.NewFailoverClient("", []string{"localhost:26379"}, nil)
	s.Error(err)

	_, err = redis.NewFailoverClient("mymaster", nil, nil)
	s.Error(err)
}
