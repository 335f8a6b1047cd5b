package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const REDIS_TIMEOUT = 5 * time.Second

// OpenRedis returns nil, nil when uri is empty.
func OpenRedis(ctx context.Context, uri string) (*redis.Client, error) {
	if uri == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("[Redis] parse url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, REDIS_TIMEOUT)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("[Redis] ping: %w", err)
	}
	return rdb, nil
}
