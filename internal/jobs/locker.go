// Package jobs guards cron-triggered batch jobs against overlapping runs.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
)

const keyPrefix = "jobs:lock:"

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// Locker hands out named locks with a TTL. Without Redis it falls back to
// locks local to this process.
type Locker struct {
	rdb      *redis.Client
	ttl      time.Duration
	logger   *logger.Logger
	newToken func() string

	mu    sync.Mutex
	local map[string]struct{}
}

func NewLocker(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *Locker {
	return &Locker{
		rdb:      rdb,
		ttl:      ttl,
		logger:   log,
		newToken: uuid.NewString,
		local:    map[string]struct{}{},
	}
}

// WithLock runs fn while holding key. It reports ran=false without calling
// fn when another run holds the lock.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) (bool, error) {
	release, ok, err := l.acquire(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		l.logger.Infow("[CRON] lock held elsewhere, skipping", "lock", key)
		return false, nil
	}
	defer release()

	return true, fn(ctx)
}

func (l *Locker) acquire(ctx context.Context, key string) (func(), bool, error) {
	if l.rdb == nil {
		return l.acquireLocal(key)
	}

	token := l.newToken()
	ok, err := l.rdb.SetNX(ctx, keyPrefix+key, token, l.ttl).Result()
	if err != nil {
		return nil, false, ierr.WithError(err).
			WithMessage("acquire job lock").
			WithHint("Job lock store unavailable").
			Mark(ierr.ErrTransientProvider)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// The job context may already be cancelled; release must still run.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.rdb.Eval(ctx, releaseScript, []string{keyPrefix + key}, token).Err(); err != nil {
			l.logger.Warnw("[CRON] failed to release lock, it will expire", "lock", key, "error", err)
		}
	}
	return release, true, nil
}

func (l *Locker) acquireLocal(key string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.local[key]; held {
		return nil, false, nil
	}
	l.local[key] = struct{}{}

	return func() {
		l.mu.Lock()
		delete(l.local, key)
		l.mu.Unlock()
	}, true, nil
}
