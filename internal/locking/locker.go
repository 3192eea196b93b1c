package locking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLocked is returned when another request holds the entity lock past the retry budget.
var ErrLocked = errors.New("resource is locked by another request")

// Release frees a previously acquired lock. It is safe to call once.
type Release func()

// Locker serializes read-modify-write cycles on a single entity.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// RedisLocker holds entity locks in Redis so several API instances agree on ownership.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
	logger *zap.Logger
}

// NewRedisLocker wraps a connected Redis client.
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{
		client: redislock.New(client),
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 20),
		logger: logger,
	}
}

// Acquire obtains the lock for key, retrying briefly while another holder owns it.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	lock, err := l.client.Obtain(ctx, "lock:"+key, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrLocked, key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	return func() {
		// The request context may already be cancelled; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// LocalLocker is an in-process Locker for single-instance deployments and tests.
// A key's slot lives only while it is held or awaited.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*localSlot
}

type localSlot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates an empty in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*localSlot)}
}

// Acquire blocks until the key is free or ctx is done.
func (l *LocalLocker) Acquire(ctx context.Context, key string) (Release, error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &localSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.unref(key, slot)
			})
		}, nil
	case <-ctx.Done():
		l.unref(key, slot)
		return nil, fmt.Errorf("%w: %s: %w", ErrLocked, key, ctx.Err())
	}
}

func (l *LocalLocker) unref(key string, slot *localSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}
