package main

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"go.opentelemetry.io/otel"

	"github.com/KirkDiggler/rpg-party/internal/clients/narrative"
	"github.com/KirkDiggler/rpg-party/internal/clients/voice"
	"github.com/KirkDiggler/rpg-party/internal/companion"
	"github.com/KirkDiggler/rpg-party/internal/config"
	enginedice "github.com/KirkDiggler/rpg-party/internal/engine/dice"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/handlers/web"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/action"
	diceorch "github.com/KirkDiggler/rpg-party/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/session"
	"github.com/KirkDiggler/rpg-party/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-party/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-party/internal/redis"
	"github.com/KirkDiggler/rpg-party/internal/repositories/clips"
	dicesession "github.com/KirkDiggler/rpg-party/internal/repositories/dice_session"
	"github.com/KirkDiggler/rpg-party/internal/repositories/sessions"
	"github.com/KirkDiggler/rpg-party/internal/roster"
	"github.com/KirkDiggler/rpg-party/internal/ws"
)

const tracerName = "github.com/KirkDiggler/rpg-party"

// dependencies is everything the transports need
type dependencies struct {
	bus      events.EventBus
	clips    clips.Repository
	dice     diceorch.Service
	sessions session.Service
	hub      *ws.Hub
	driver   *companion.Driver
	redis    redisclient.Client
}

type repositories struct {
	clips    clips.Repository
	rolls    dicesession.Repository
	sessions sessions.Repository
	client   redisclient.Client
}

func buildDependencies(cfg *config.Config) (*dependencies, error) {
	clk := clock.New()
	bus := events.NewBus()

	party, err := roster.Load(cfg.Roster.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load roster")
	}

	repos, err := buildRepositories(cfg.Redis, clk)
	if err != nil {
		return nil, err
	}

	engine := enginedice.NewEngine(nil)

	diceService, err := diceorch.NewOrchestrator(&diceorch.Config{
		Engine:          engine,
		DiceSessionRepo: repos.rolls,
		IDGenerator:     idgen.NewUUID("roll"),
		Clock:           clk,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create dice orchestrator")
	}

	narrator, err := buildNarrator(cfg.Narrative, cfg.Resolver.HistoryWindow)
	if err != nil {
		return nil, err
	}
	synthesizer, err := buildSynthesizer(cfg.Voice, party.Profiles())
	if err != nil {
		return nil, err
	}

	resolver, err := action.NewResolver(&action.Config{
		Engine:        engine,
		Narrator:      narrator,
		Clock:         clk,
		Tracer:        otel.Tracer(tracerName),
		Voice:         synthesizer,
		Clips:         repos.clips,
		CallTimeout:   cfg.Resolver.CallTimeout,
		HistoryWindow: cfg.Resolver.HistoryWindow,
		Parallel:      cfg.Resolver.Parallel,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create action resolver")
	}

	hub, err := ws.NewHub(&ws.HubConfig{ClipURLPrefix: web.ClipsPath})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create websocket hub")
	}
	hub.Relay(bus)

	manager, err := session.NewManager(&session.Config{
		Resolver:        resolver,
		Engine:          engine,
		Repository:      repos.sessions,
		Player:          hub,
		EventBus:        bus,
		Dice:            diceService,
		Roster:          party,
		IDGenerator:     idgen.NewUUID("sess"),
		Clock:           clk,
		MaxClipDuration: cfg.Audio.MaxClipDuration,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session manager")
	}

	deps := &dependencies{
		bus:      bus,
		clips:    repos.clips,
		dice:     diceService,
		sessions: manager,
		hub:      hub,
		redis:    repos.client,
	}

	if cfg.Companion.Enabled {
		deps.driver, err = companion.NewDriver(&companion.Config{
			Sessions: manager,
			EventBus: bus,
			Delay:    cfg.Companion.Delay,
			Workers:  cfg.Companion.Workers,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create companion driver")
		}
	}

	return deps, nil
}

func buildRepositories(cfg config.RedisConfig, clk clock.Clock) (*repositories, error) {
	if !cfg.Enabled() {
		slog.Warn("No redis configured, sessions and clips are kept in memory")
		return &repositories{
			clips:    clips.NewInMemory(clk, idgen.NewUUID("clip")),
			rolls:    dicesession.NewInMemory(clk),
			sessions: sessions.NewInMemory(),
		}, nil
	}

	opts := &redisclient.Options{
		DB:       cfg.DB,
		Password: cfg.Password,
		UseTLS:   cfg.UseTLS,
	}

	var client redisclient.Client
	var err error
	if cfg.MasterName != "" {
		client, err = redisclient.NewFailoverClient(cfg.MasterName, cfg.SentinelAddrs, opts)
	} else {
		client, err = redisclient.NewClient(cfg.Addr, opts)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create redis client")
	}

	clipRepo, err := clips.NewRedisRepository(&clips.Config{
		Client:      client,
		Clock:       clk,
		IDGenerator: idgen.NewUUID("clip"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create clip repository")
	}
	rollRepo, err := dicesession.NewRedisRepository(&dicesession.Config{
		Client: client,
		Clock:  clk,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create roll repository")
	}
	sessionRepo, err := sessions.NewRedisRepository(&sessions.RedisConfig{
		Client: client,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session repository")
	}

	return &repositories{
		clips:    clipRepo,
		rolls:    rollRepo,
		sessions: sessionRepo,
		client:   client,
	}, nil
}

func buildNarrator(cfg config.NarrativeConfig, historyLimit int) (narrative.Generator, error) {
	if cfg.Provider != config.ProviderOpenAI {
		return narrative.NewScripted(nil), nil
	}

	generator, err := narrative.NewOpenAI(&narrative.OpenAIConfig{
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.BaseURL,
		Model:        cfg.Model,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		HistoryLimit: historyLimit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create narrative generator")
	}
	return generator, nil
}

func buildSynthesizer(cfg config.VoiceConfig, profiles voice.Profiles) (voice.Synthesizer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		synthesizer, err := voice.NewOpenAI(&voice.OpenAIConfig{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Profiles: profiles,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create voice synthesizer")
		}
		return synthesizer, nil
	case config.ProviderPlaceholder:
		return voice.NewPlaceholder(nil), nil
	default:
		return nil, nil
	}
}

// close releases everything buildDependencies started
func (d *dependencies) close(ctx context.Context) {
	if d.driver != nil {
		d.driver.Stop()
	}
	d.hub.Close()
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			slog.WarnContext(ctx, "Failed to close redis client", "error", err)
		}
	}
}
