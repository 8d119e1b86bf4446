package dicesession

import (
	"context"
	"encoding/json"
	"time"

	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-party/internal/redis"
)

// A roll log lives under two keys that share one TTL:
//
//	rolls:{entity}:{context}      hash of created_at and expires_at
//	rolls:{entity}:{context}:log  list of JSON rolls, oldest first
const (
	rollLogKeyPrefix = "rolls:"
	rollListSuffix   = ":log"

	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"

	// DefaultTTL applies when CreateInput.TTL is zero
	DefaultTTL = 15 * time.Minute
)

var (
	errSessionNil     = errors.InvalidArgument("session cannot be nil")
	errEntityIDEmpty  = errors.InvalidArgument("entity ID cannot be empty")
	errContextEmpty   = errors.InvalidArgument("context cannot be empty")
	errSessionExpired = errors.FailedPrecondition("roll log has already expired")
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedisRepository stores roll logs as a metadata hash plus a roll list
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

type rollLogKeys struct {
	meta string
	list string
}

func keysFor(entityID, context string) rollLogKeys {
	meta := rollLogKeyPrefix + entityID + ":" + context
	return rollLogKeys{meta: meta, list: meta + rollListSuffix}
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	ttl := input.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	now := r.clock.Now()
	log := &DiceSession{
		EntityID:  input.EntityID,
		Context:   input.Context,
		Rolls:     input.Rolls,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := r.write(ctx, log, ttl); err != nil {
		return nil, errors.Wrap(err, "failed to store roll log in Redis")
	}
	return &CreateOutput{Session: log}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}
	keys := keysFor(input.EntityID, input.Context)

	var meta *redisclient.MapStringStringCmd
	var rolls *redisclient.StringSliceCmd
	_, err := r.client.Pipelined(ctx, func(pipe redisclient.Pipeliner) error {
		meta = pipe.HGetAll(ctx, keys.meta)
		rolls = pipe.LRange(ctx, keys.list, 0, -1)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read roll log from Redis")
	}
	if len(meta.Val()) == 0 {
		return nil, errors.NotFoundf("no %s rolls for %s", input.Context, input.EntityID)
	}

	log := &DiceSession{EntityID: input.EntityID, Context: input.Context}
	if log.CreatedAt, err = time.Parse(time.RFC3339Nano, meta.Val()[fieldCreatedAt]); err != nil {
		return nil, errors.Wrap(err, "corrupt roll log created_at")
	}
	if log.ExpiresAt, err = time.Parse(time.RFC3339Nano, meta.Val()[fieldExpiresAt]); err != nil {
		return nil, errors.Wrap(err, "corrupt roll log expires_at")
	}

	// The stored expiry follows the injected clock, which can run ahead of Redis
	if r.clock.Now().After(log.ExpiresAt) {
		_ = r.client.Del(ctx, keys.meta, keys.list).Err()
		return nil, errors.NotFoundf("%s rolls for %s have expired", input.Context, input.EntityID)
	}

	log.Rolls = make([]DiceRoll, 0, len(rolls.Val()))
	for _, raw := range rolls.Val() {
		var roll DiceRoll
		if err := json.Unmarshal([]byte(raw), &roll); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal roll")
		}
		log.Rolls = append(log.Rolls, roll)
	}

	return &GetOutput{Session: log}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}
	keys := keysFor(input.EntityID, input.Context)

	var count *redisclient.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redisclient.Pipeliner) error {
		count = pipe.LLen(ctx, keys.list)
		pipe.Del(ctx, keys.meta, keys.list)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete roll log from Redis")
	}

	// nolint:gosec // a roll log never holds more than a few hundred rolls
	return &DeleteOutput{RollsDeleted: int32(count.Val())}, nil
}

// Update rewrites the roll list and keeps the original expiry
func (r *redisRepository) Update(ctx context.Context, session *DiceSession) error {
	if session == nil {
		return errSessionNil
	}
	if err := validateKey(session.EntityID, session.Context); err != nil {
		return err
	}

	now := r.clock.Now()
	if now.After(session.ExpiresAt) {
		return errSessionExpired
	}
	remaining := max(session.ExpiresAt.Sub(now), time.Millisecond)

	if err := r.write(ctx, session, remaining); err != nil {
		return errors.Wrap(err, "failed to update roll log in Redis")
	}
	return nil
}

// write replaces both keys of a log in one transaction
func (r *redisRepository) write(ctx context.Context, log *DiceSession, ttl time.Duration) error {
	rolls := make([]any, 0, len(log.Rolls))
	for _, roll := range log.Rolls {
		data, err := json.Marshal(roll)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal roll %s", roll.RollID)
		}
		rolls = append(rolls, data)
	}

	keys := keysFor(log.EntityID, log.Context)
	_, err := r.client.TxPipelined(ctx, func(pipe redisclient.Pipeliner) error {
		pipe.Del(ctx, keys.list)
		pipe.HSet(ctx, keys.meta,
			fieldCreatedAt, log.CreatedAt.Format(time.RFC3339Nano),
			fieldExpiresAt, log.ExpiresAt.Format(time.RFC3339Nano),
		)
		if len(rolls) > 0 {
			pipe.RPush(ctx, keys.list, rolls...)
		}
		pipe.PExpire(ctx, keys.meta, ttl)
		pipe.PExpire(ctx, keys.list, ttl)
		return nil
	})
	return err
}
