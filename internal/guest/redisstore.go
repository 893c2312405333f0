package guest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrilink-hq/agrilink-client/pkg/config"
	"github.com/agrilink-hq/agrilink-client/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyNamespace = "agrilink:guest"
	redisOpTimeout    = 5 * time.Second
	// Guest state on a shared terminal should not linger forever.
	redisEntryTTL = 14 * 24 * time.Hour
)

// RedisStore keeps guest state in Redis, for kiosk or shared-terminal
// deployments where several client processes serve the same walk-up
// terminal.
type RedisStore struct {
	broadcaster
	client *redis.Client
	log    *logger.Logger
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisStore, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, log: log}, nil
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Get degrades every failure, including connectivity loss, to absence.
func (s *RedisStore) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	value, err := s.client.Get(ctx, s.buildKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && s.log != nil {
			s.log.Warn(ctx, fmt.Sprintf("redis read for %s failed, treating as absent", key))
		}
		return nil, false
	}
	return value, true
}

func (s *RedisStore) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Set(ctx, s.buildKey(key), value, redisEntryTTL).Err(); err != nil {
		return fmt.Errorf("redis write %s: %w", key, err)
	}
	s.publish(Event{Key: key, Value: value})
	return nil
}

func (s *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Del(ctx, s.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	s.publish(Event{Key: key, Value: nil})
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) buildKey(key string) string {
	return redisKeyNamespace + ":" + key
}
