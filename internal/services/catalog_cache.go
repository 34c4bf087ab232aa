package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tabletop/backend/internal/models"
)

const (
	catalogCacheKey      = "tabletop:catalog:games"
	catalogGenerationKey = "tabletop:catalog:generation"
)

// CatalogCache holds the full game list between writes. Every Invalidate
// starts a new generation, and Set only stores a list loaded during the
// current one.
type CatalogCache interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context) (games []models.Game, ok bool, err error)
	// Generation must be read before loading the list that is later passed to Set.
	Generation(ctx context.Context) (int64, error)
	// Set is a no-op when the generation moved past gen.
	Set(ctx context.Context, gen int64, games []models.Game) error
	Invalidate(ctx context.Context) error
}

type RedisCatalogCache struct {
	client *redis.Client
	key    string
	genKey string
	ttl    time.Duration
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	return &RedisCatalogCache{
		client: client,
		key:    catalogCacheKey,
		genKey: catalogGenerationKey,
		ttl:    ttl,
	}
}

func (c *RedisCatalogCache) Get(ctx context.Context) ([]models.Game, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var games []models.Game
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, false, err
	}
	return games, true, nil
}

func (c *RedisCatalogCache) Generation(ctx context.Context) (int64, error) {
	return generation(ctx, c.client, c.genKey)
}

// Set watches the generation key so an Invalidate racing with it aborts the write.
func (c *RedisCatalogCache) Set(ctx context.Context, gen int64, games []models.Game) error {
	raw, err := json.Marshal(games)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(ctx, tx, c.genKey)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, raw, c.ttl)
			return nil
		})
		return err
	}, c.genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	return err
}

// redisGetter is satisfied by both *redis.Client and *redis.Tx.
type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// generation reads a missing counter as 0.
func generation(ctx context.Context, r redisGetter, key string) (int64, error) {
	gen, err := r.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}
