package persisted

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/streamcat/lolomo/internal/config"
)

const defaultKeyPrefix = "lolomo:apq:"

// opTimeout bounds every Redis round trip so a slow server cannot stall a
// GraphQL request.
const opTimeout = 2 * time.Second

// redisStore shares registered documents between every replica of a
// subgraph. Each document is a plain string key with the store TTL; Redis
// expires documents on its own.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger zerolog.Logger
}

func newRedisStore(cfg StoreConfig) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisStore{
		client: client,
		ttl:    cfg.TTL,
		prefix: prefix,
		logger: config.GetLogger(),
	}, nil
}

func (r *redisStore) key(hash string) string {
	return r.prefix + hash
}

func (r *redisStore) Get(ctx context.Context, hash string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query, err := r.client.Get(ctx, r.key(hash)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Error().Err(err).Str("hash", hash).Msg("Persisted query lookup failed")
		}
		return "", false
	}
	return query, true
}

func (r *redisStore) Put(ctx context.Context, hash, query string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := r.client.Set(ctx, r.key(hash), query, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to register persisted query %s: %w", hash, err)
	}
	return nil
}

// Len counts the documents under the key prefix with SCAN.
func (r *redisStore) Len(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		r.logger.Error().Err(err).Msg("Persisted query count failed")
		return 0
	}
	return n
}

func (r *redisStore) Close() error {
	return r.client.Close()
}
