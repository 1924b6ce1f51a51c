// Package redis stores profiles as JSON strings under "<namespace>::<key>".
package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/dtroode/profilekeeper/internal/config"
)

// NewConnection creates a single-node client and verifies it with PING.
func NewConnection(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
		// Retries belong to callers.
		MaxRetries: -1,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	return client, nil
}
