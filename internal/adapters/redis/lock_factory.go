package redis

import (
	"context"
	"sync"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
)

// LockFactory creates locks for analysis windows
type LockFactory interface {
	CreateWindowLock(window string) WindowLock
}

// RedisLockFactory creates Redis-based distributed locks
type RedisLockFactory struct {
	lockManager *redlock.RedLock
	ttl         time.Duration
}

// NewRedisLockFactory creates new Redis lock factory
func NewRedisLockFactory(lockManager *redlock.RedLock, ttl time.Duration) *RedisLockFactory {
	return &RedisLockFactory{
		lockManager: lockManager,
		ttl:         ttl,
	}
}

// CreateWindowLock creates a distributed lock for a specific window
func (f *RedisLockFactory) CreateWindowLock(window string) WindowLock {
	return NewDistributedLock(f.lockManager, window, f.ttl)
}

// LocalLockFactory serialises windows within one process, used when redis is disabled
type LocalLockFactory struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLockFactory creates an in-process lock factory
func NewLocalLockFactory() *LocalLockFactory {
	return &LocalLockFactory{held: make(map[string]bool)}
}

// CreateWindowLock creates an in-process lock for a specific window
func (f *LocalLockFactory) CreateWindowLock(window string) WindowLock {
	return &LocalLock{factory: f, key: windowLockKey(window)}
}

// LocalLock is an in-process WindowLock
type LocalLock struct {
	factory *LocalLockFactory
	key     string
	owned   bool
}

func (l *LocalLock) TryAcquire(ctx context.Context) (bool, error) {
	l.factory.mu.Lock()
	defer l.factory.mu.Unlock()

	if l.owned {
		return true, nil
	}
	if l.factory.held[l.key] {
		return false, nil
	}
	l.factory.held[l.key] = true
	l.owned = true
	return true, nil
}

func (l *LocalLock) Release(ctx context.Context) error {
	l.factory.mu.Lock()
	defer l.factory.mu.Unlock()

	if l.owned {
		delete(l.factory.held, l.key)
		l.owned = false
	}
	return nil
}

func (l *LocalLock) Key() string {
	return l.key
}
