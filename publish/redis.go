package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisOptions configures the Redis publisher.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Channel  string
}

// Redis stores the latest publication under a key and announces it on a
// pub/sub channel.
type Redis struct {
	client  *redis.Client
	key     string
	channel string
	logger  zerolog.Logger
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, opts RedisOptions, logger zerolog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	logger.Info().Str("addr", opts.Addr).Msg("Redis publisher initialized")
	return NewRedisWithClient(client, opts.Key, opts.Channel, logger), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, key, channel string, logger zerolog.Logger) *Redis {
	return &Redis{
		client:  client,
		key:     key,
		channel: channel,
		logger:  logger.With().Str("component", "redis").Logger(),
	}
}

func (r *Redis) Publish(ctx context.Context, p *Publication) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal publication: %w", err)
	}
	pipe := r.client.TxPipeline()
	if r.key != "" {
		pipe.Set(ctx, r.key, data, 0)
	}
	if r.channel != "" {
		pipe.Publish(ctx, r.channel, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
