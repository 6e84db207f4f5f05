package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ppiankov/ontoguard/internal/model"
)

// RedisSink stores the latest snapshot under a key and announces each
// update on a pub/sub channel.
type RedisSink struct {
	cfg    SinkConfig
	client *redis.Client
}

// NewRedisSink connects to the redis URL in cfg.
func NewRedisSink(cfg SinkConfig) (*RedisSink, error) {
	if cfg.URL == "" {
		cfg.URL = "redis://localhost:6379"
	}
	if cfg.Key == "" {
		cfg.Key = DefaultRedisKey
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultRedisChannel
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.WriteTimeout = 5 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSink{cfg: cfg, client: client}, nil
}

// Name implements Sink.
func (r *RedisSink) Name() string {
	return r.cfg.Name()
}

// Send writes the snapshot and publishes it.
func (r *RedisSink) Send(ctx context.Context, snap model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.cfg.Key, data, 0)
	pipe.Publish(ctx, r.cfg.Channel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mirror to Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisSink) Close() error {
	return r.client.Close()
}
