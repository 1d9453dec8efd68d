package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// staleRetention is how long entries outlive their freshness window so
// stale fallbacks keep working across refresh failures.
const staleRetention = 24 * time.Hour

type redisEnvelope struct {
	StoredAt time.Time       `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

// Redis is the shared gate used when several dashboard replicas should
// refresh upstream data once instead of once per replica. Any Redis error
// falls through to an embedded in-process Memory gate.
type Redis struct {
	client   *redis.Client
	fallback *Memory
	logger   zerolog.Logger
	now      func() time.Time
}

func NewRedis(ctx context.Context, addr string, logger zerolog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &Redis{
		client:   client,
		fallback: NewMemory(),
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var env redisEnvelope
		if jerr := json.Unmarshal(raw, &env); jerr == nil {
			if r.now().Sub(env.StoredAt) < ttl {
				return env.Data, nil
			}
			return r.refresh(ctx, key, env.Data, fetch)
		}
		// Corrupt envelope, treat as miss.
		return r.refresh(ctx, key, nil, fetch)
	case errors.Is(err, redis.Nil):
		return r.refresh(ctx, key, nil, fetch)
	default:
		r.logger.Warn().Err(err).Str("key", key).Msg("redis unavailable, using memory gate")
		return r.fallback.GetOrFetch(ctx, key, ttl, fetch)
	}
}

func (r *Redis) refresh(ctx context.Context, key string, stale []byte, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	data, err := fetch(ctx)
	if err != nil {
		if stale != nil {
			return stale, err
		}
		return nil, err
	}

	env, merr := json.Marshal(redisEnvelope{StoredAt: r.now(), Data: data})
	if merr == nil {
		if serr := r.client.Set(ctx, key, env, staleRetention).Err(); serr != nil {
			r.logger.Warn().Err(serr).Str("key", key).Msg("redis store failed")
		}
	}
	return data, nil
}

func (r *Redis) Peek(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Str("key", key).Msg("redis peek failed")
		}
		return r.fallback.Peek(ctx, key)
	}
	var env redisEnvelope
	if jerr := json.Unmarshal(raw, &env); jerr != nil {
		return nil, false
	}
	return env.Data, true
}
