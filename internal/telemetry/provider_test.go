package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/telemetry"
)

type ProviderTestSuite struct {
	suite.Suite
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderTestSuite))
}

func (s *ProviderTestSuite) TestNoopWithoutEndpoint() {
	shutdown, err := telemetry.Setup(context.Background(), &telemetry.Config{})
	s.Require().NoError(err)
	s.NoError(shutdown(context.Background()))

	shutdown, err = telemetry.Setup(context.Background(), nil)
	s.Require().NoError(err)
	s.NoError(shutdown(context.Background()))
}

func (s *ProviderTestSuite) TestRejectsBadRatio() {
	_, err := telemetry.Setup(context.Background(), &telemetry.Config{
		Endpoint:    "http://192.0.2.1:4318",
		ServiceName: "rpg-party",
		SampleRatio: 3,
	})
	s.Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *ProviderTestSuite) TestCreatesProviderWhenEndpointSet() {
	// non-routable address so nothing is exported
	shutdown, err := telemetry.Setup(context.Background(), &telemetry.Config{
		Endpoint:    "http://192.0.2.1:4318",
		ServiceName: "rpg-party",
	})
	s.Require().NoError(err)
	s.NoError(shutdown(context.Background()))
}
