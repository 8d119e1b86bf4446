package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-party/internal/config"
	"github.com/KirkDiggler/rpg-party/internal/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := config.Load(config.New(), "")
	s.Require().NoError(err)

	s.Equal(50051, cfg.Server.Port)
	s.Equal(":8080", cfg.Server.HTTPAddr)
	s.Equal(config.ProviderScripted, cfg.Narrative.Provider)
	s.Equal(config.ProviderNone, cfg.Voice.Provider)
	s.Equal(20*time.Second, cfg.Resolver.CallTimeout)
	s.Equal(4, cfg.Companion.Workers)
	s.False(cfg.Redis.Enabled())
}

func (s *ConfigTestSuite) TestEnvironmentOverrides() {
	s.T().Setenv("RPG_PARTY_REDIS_ADDR", "localhost:6379")
	s.T().Setenv("RPG_PARTY_RESOLVER_CALL_TIMEOUT", "5s")
	s.T().Setenv("RPG_PARTY_LOG_FORMAT", "json")

	cfg, err := config.Load(config.New(), "")
	s.Require().NoError(err)
	s.Equal("localhost:6379", cfg.Redis.Addr)
	s.True(cfg.Redis.Enabled())
	s.Equal(5*time.Second, cfg.Resolver.CallTimeout)
	s.Equal("json", cfg.Log.Format)
}

func (s *ConfigTestSuite) TestConfigFile() {
	path := filepath.Join(s.T().TempDir(), "party.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(`
server:
  port: 9090
voice:
  provider: placeholder
resolver:
  parallel: true
  history_window: 4
companion:
  delay: 0s
`), 0o600))

	cfg, err := config.Load(config.New(), path)
	s.Require().NoError(err)
	s.Equal(9090, cfg.Server.Port)
	s.Equal(config.ProviderPlaceholder, cfg.Voice.Provider)
	s.True(cfg.Resolver.Parallel)
	s.Equal(4, cfg.Resolver.HistoryWindow)
	s.Zero(cfg.Companion.Delay)
}

func (s *ConfigTestSuite) TestMissingFile() {
	_, err := config.Load(config.New(), filepath.Join(s.T().TempDir(), "absent.yaml"))
	s.Error(err)
}

func (s *ConfigTestSuite) TestValidation() {
	v := config.New()
	v.Set("narrative.provider", "oracle")
	v.Set("voice.provider", config.ProviderOpenAI)
	v.Set("server.port", 0)

	_, err := config.Load(v, "")
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "narrative.provider")
	s.Contains(err.Error(), "voice.api_key")
	s.Contains(err.Error(), "server.port")
}

func (s *ConfigTestSuite) TestNewLogger() {
	var buf bytes.Buffer
	logger := config.NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "session_id", "sess_1")

	s.NotContains(buf.String(), "hidden")
	s.Contains(buf.String(), `"session_id":"sess_1"`)
}
