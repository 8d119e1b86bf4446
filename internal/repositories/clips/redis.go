package clips

import (
	"context"
	"strconv"
	"time"

	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-party/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-party/internal/redis"
)

// Key pattern: clip:{clip_ref}
const clipKeyPrefix = "clip:"

const (
	fieldSession     = "session_id"
	fieldSpeaker     = "speaker_id"
	fieldContentType = "content_type"
	fieldAudio       = "audio"
	fieldCreatedAt   = "created_at"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client      redisclient.Client
	Clock       clock.Clock
	IDGenerator idgen.Generator
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
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	idGen  idgen.Generator
}

// NewRedisRepository creates a clip store on Redis hashes
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
		idGen:  cfg.IDGenerator,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if err := validateSave(input); err != nil {
		return nil, err
	}

	ttl := input.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	ref := r.idGen.Generate()
	key := clipKeyPrefix + ref

	_, err := r.client.TxPipelined(ctx, func(pipe redisclient.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldSession, input.SessionID,
			fieldSpeaker, input.SpeakerID,
			fieldContentType, input.ContentType,
			fieldAudio, input.Audio,
			fieldCreatedAt, r.clock.Now().UnixMilli(),
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to store clip in Redis")
	}

	return &SaveOutput{ClipRef: ref}, nil
}

func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.ClipRef == "" {
		return nil, errors.InvalidArgument("clip ref is required")
	}

	fields, err := r.client.HGetAll(ctx, clipKeyPrefix+input.ClipRef).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get clip from Redis")
	}
	if len(fields) == 0 {
		return nil, errors.NotFoundf("clip %s not found", input.ClipRef)
	}

	clip := &Clip{
		Ref:         input.ClipRef,
		SessionID:   fields[fieldSession],
		SpeakerID:   fields[fieldSpeaker],
		ContentType: fields[fieldContentType],
		Audio:       []byte(fields[fieldAudio]),
	}
	if ms, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64); err == nil {
		clip.CreatedAt = time.UnixMilli(ms).UTC()
	}

	return &GetOutput{Clip: clip}, nil
}

func (r *redisRepository) Delete(ctx context.Context, clipRef string) error {
	if clipRef == "" {
		return errors.InvalidArgument("clip ref is required")
	}
	if err := r.client.Del(ctx, clipKeyPrefix+clipRef).Err(); err != nil {
		return errors.Wrap(err, "failed to delete clip from Redis")
	}
	return nil
}

func validateSave(input *SaveInput) error {
	if input == nil {
		return errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("SessionID", input.SessionID, vb)
	errors.ValidateRequired("SpeakerID", input.SpeakerID, vb)
	errors.ValidateRequired("ContentType", input.ContentType, vb)
	if len(input.Audio) == 0 {
		vb.RequiredField("Audio")
	}
	return vb.Build()
}
