package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/synaptiq/synapse-backend/internal/logger"
)

// ProgressionCache caches the aggregate progression read (the fold
// result), never individual activity rows. Writes invalidate it.
type ProgressionCache interface {
	Get(ctx context.Context, userID uuid.UUID, dest any) (bool, error)
	Set(ctx context.Context, userID uuid.UUID, value any) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
	Close() error
}

type progressionCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewProgressionCache(log *logger.Logger) (ProgressionCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttl := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("PROGRESSION_CACHE_TTL_SECONDS")); raw != "" {
		if parsed, err := time.ParseDuration(raw + "s"); err == nil && parsed > 0 {
			ttl = parsed
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Failed to ping redis at %s: %w", addr, err)
	}

	return &progressionCache{
		log: log.With("client", "ProgressionCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func progressionKey(userID uuid.UUID) string {
	return "progression:" + userID.String()
}

func (c *progressionCache) Get(ctx context.Context, userID uuid.UUID, dest any) (bool, error) {
	raw, err := c.rdb.Get(ctx, progressionKey(userID)).Bytes()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *progressionCache) Set(ctx context.Context, userID uuid.UUID, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, progressionKey(userID), raw, c.ttl).Err()
}

func (c *progressionCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, progressionKey(userID)).Err()
}

func (c *progressionCache) Close() error {
	return c.rdb.Close()
}
