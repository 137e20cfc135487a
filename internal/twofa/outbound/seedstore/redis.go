package seedstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/seed"
	"github.com/shandysiswandi/seedauth/internal/twofa/entity"
)

const defaultRedisKey = "seedauth:seed"

// Redis shares one seed between replicas through a single key without expiry.
type Redis struct {
	client redis.UniversalClient
	key    string
	cache  snapshot
	ins    instrument.Instrumentation
}

func NewRedis(client redis.UniversalClient, key string, cache bool, ins instrument.Instrumentation) *Redis {
	if key == "" {
		key = defaultRedisKey
	}
	return &Redis{client: client, key: key, cache: newSnapshot(cache), ins: ins}
}

func (r *Redis) Load(ctx context.Context) (_ seed.Seed, err error) {
	if sd, ok := r.cache.get(); ok {
		return sd, nil
	}

	ctx, span := startSpan(ctx, r.ins, "Redis.Load")
	defer func() { endSpan(span, err) }()

	gen := r.cache.generation()
	raw, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return seed.Seed{}, entity.ErrSeedNotProvisioned
	}
	if err != nil {
		return seed.Seed{}, fmt.Errorf("seedstore: redis get: %w", err)
	}

	sd, err := parseStored(raw)
	if err != nil {
		return seed.Seed{}, err
	}

	r.cache.fill(gen, sd)
	return sd, nil
}

func (r *Redis) Save(ctx context.Context, sd seed.Seed) (err error) {
	ctx, span := startSpan(ctx, r.ins, "Redis.Save")
	defer func() { endSpan(span, err) }()

	if err := r.client.Set(ctx, r.key, sd.String(), 0).Err(); err != nil {
		return fmt.Errorf("seedstore: redis set: %w", err)
	}

	r.cache.set(sd)
	return nil
}

func (r *Redis) Invalidate(context.Context) {
	r.cache.clear()
}
