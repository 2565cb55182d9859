package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrUnavailable = errors.New("redis unavailable")

// releaseLock deletes the key only while it still holds our token, so a lock
// that expired and was taken by another instance is left alone.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis wraps a client that may be absent. Every method degrades to a no-op
// when Redis is not configured or unreachable at startup.
type Redis struct {
	client *redis.Client
	logger *zap.Logger

	warnedUnavailable atomic.Bool
}

func NewRedis(ctx context.Context, url string, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("redis")

	url = strings.TrimSpace(url)
	if url == "" {
		logger.Info("redis not configured, running without it")
		return &Redis{logger: logger}
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("invalid REDIS_URL, running without redis", zap.Error(err))
		return &Redis{logger: logger}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, running without it", zap.Error(err))
		_ = client.Close()
		return &Redis{logger: logger}
	}

	logger.Info("redis connected", zap.String("addr", opts.Addr))
	return &Redis{client: client, logger: logger}
}

func (r *Redis) Available() bool {
	return !r.isUnavailable()
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("redis command failed", zap.Error(err))
	}
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return false, err
	}
	return ok, nil
}

// TryLock takes a best-effort cross-instance lock. Without Redis every caller
// gets the lock, leaving coordination to the in-process dispatcher.
func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if r.isUnavailable() {
		return func() {}, true, nil
	}

	token := uuid.NewString()
	ok, err := r.SetIfNotExists(ctx, key, token, ttl)
	if err != nil || !ok {
		return nil, false, err
	}

	release := func() {
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseLock.Run(relCtx, r.client, []string{key}, token).Err(); err != nil {
			r.warnUnavailableOnce(err)
		}
	}
	return release, true, nil
}

func (r *Redis) Publish(ctx context.Context, channel string, payload any) error {
	if r.isUnavailable() {
		return nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, channel, b).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// Subscribe delivers raw message payloads from channel until ctx ends. It
// returns ErrUnavailable when there is no Redis to subscribe to.
func (r *Redis) Subscribe(ctx context.Context, channel string, handle func(payload []byte)) error {
	if r.isUnavailable() {
		return ErrUnavailable
	}

	sub := r.client.Subscribe(ctx, channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			handle([]byte(msg.Payload))
		}
	}
}

// DeleteByPattern removes every key matching pattern, logging per-key errors
// and returning the scan error if any.
func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	if r.isUnavailable() {
		return 0, nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return 0, nil
	}

	var n int
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil {
			r.logger.Warn("redis delete failed", zap.String("key", k), zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		n++
	}
	return n, iter.Err()
}
