package sessions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-party/internal/redis"
)

const (
	// Key patterns: session:{id} holds the JSON snapshot, sessions:index
	// is a sorted set of IDs scored by creation time
	sessionKeyPrefix = "session:"
	indexKey         = "sessions:index"

	// DefaultTTL drops abandoned snapshots
	DefaultTTL = 24 * time.Hour
)

// RedisConfig holds the configuration for the Redis repository
type RedisConfig struct {
	Client redisclient.Client
	TTL    time.Duration
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Client == nil {
		vb.RequiredField("Client")
	}
	errors.ValidateNonNegative("TTL", c.TTL, vb)

	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	ttl    time.Duration
}

// NewRedisRepository creates a snapshot store on Redis
func NewRedisRepository(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	return &redisRepository{
		client: cfg.Client,
		ttl:    ttl,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if err := validateSave(input); err != nil {
		return nil, err
	}

	data, err := json.Marshal(input.Session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal session")
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redisclient.Pipeliner) error {
		pipe.Set(ctx, sessionKeyPrefix+input.Session.ID, data, r.ttl)
		pipe.ZAdd(ctx, indexKey, redisclient.Z{
			Score:  float64(input.Session.CreatedAt.UnixMilli()),
			Member: input.Session.ID,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to store session in Redis")
	}

	return &SaveOutput{}, nil
}

func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errSessionIDRequired
	}

	data, err := r.client.Get(ctx, sessionKeyPrefix+input.SessionID).Bytes()
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, errors.NotFoundf("session %s not found", input.SessionID)
		}
		return nil, errors.Wrap(err, "failed to get session from Redis")
	}

	var session entities.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal session")
	}

	return &GetOutput{Session: &session}, nil
}

// List walks the index newest first. IDs whose snapshot expired are pruned
// from the index as they are found.
func (r *redisRepository) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input == nil {
		input = &ListInput{}
	}

	ids, err := r.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read session index")
	}

	out := make([]*entities.Session, 0, len(ids))
	for _, id := range ids {
		got, err := r.Get(ctx, &GetInput{SessionID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				_ = r.client.ZRem(ctx, indexKey, id).Err()
				continue
			}
			return nil, err
		}
		if input.State != "" && got.Session.State != input.State {
			continue
		}
		out = append(out, got.Session)
		if input.Limit > 0 && len(out) == input.Limit {
			break
		}
	}

	return &ListOutput{Sessions: out}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errSessionIDRequired
	}

	var del *redisclient.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redisclient.Pipeliner) error {
		del = pipe.Del(ctx, sessionKeyPrefix+input.SessionID)
		pipe.ZRem(ctx, indexKey, input.SessionID)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete session from Redis")
	}

	return &DeleteOutput{Deleted: del.Val() > 0}, nil
}
