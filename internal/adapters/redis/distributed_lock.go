package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/pkg/logger"
)

// DistributedLock wraps redlock-go so only one process analyses a window at a time
type DistributedLock struct {
	lockManager *redlock.RedLock
	lockName    string
	ttl         time.Duration

	mu          sync.Mutex
	locked      bool
	stopRenewal context.CancelFunc
}

// NewDistributedLock creates a lock for the given window
func NewDistributedLock(lockManager *redlock.RedLock, window string, ttl time.Duration) *DistributedLock {
	return &DistributedLock{
		lockManager: lockManager,
		lockName:    windowLockKey(window),
		ttl:         ttl,
	}
}

func windowLockKey(window string) string {
	return fmt.Sprintf("analysis:window:%s", window)
}

// Key returns the redis resource name
func (dl *DistributedLock) Key() string {
	return dl.lockName
}

// TryAcquire attempts to acquire the lock using the Redlock algorithm
func (dl *DistributedLock) TryAcquire(ctx context.Context) (bool, error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if dl.locked {
		return true, nil
	}

	expiry, err := dl.lockManager.Lock(ctx, dl.lockName, dl.ttl)
	if err != nil {
		logger.Debug("window lock already held by another process",
			zap.String("lock_name", dl.lockName),
			zap.Error(err),
		)
		return false, nil
	}

	if expiry <= 0 {
		return false, fmt.Errorf("failed to acquire lock %s: invalid expiry %v", dl.lockName, expiry)
	}

	dl.locked = true

	logger.Info("window lock acquired",
		zap.String("lock_name", dl.lockName),
		zap.Duration("ttl", dl.ttl),
		zap.Duration("expiry", expiry),
	)

	renewCtx, cancel := context.WithCancel(context.Background())
	dl.stopRenewal = cancel
	go dl.renewLock(renewCtx)

	return true, nil
}

// Release releases the lock and stops renewal
func (dl *DistributedLock) Release(ctx context.Context) error {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if !dl.locked {
		return nil
	}

	if dl.stopRenewal != nil {
		dl.stopRenewal()
		dl.stopRenewal = nil
	}

	if err := dl.lockManager.UnLock(ctx, dl.lockName); err != nil {
		// lock may have already expired
		logger.Warn("failed to release window lock",
			zap.String("lock_name", dl.lockName),
			zap.Error(err),
		)
	} else {
		logger.Info("window lock released", zap.String("lock_name", dl.lockName))
	}

	dl.locked = false
	return nil
}

// renewLock re-acquires the lock at 2/3 of its TTL until stopped
func (dl *DistributedLock) renewLock(ctx context.Context) {
	ticker := time.NewTicker((dl.ttl * 2) / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			dl.mu.Lock()
			if !dl.locked {
				dl.mu.Unlock()
				return
			}

			// redlock-go has no extend, so release and re-acquire
			if err := dl.lockManager.UnLock(ctx, dl.lockName); err != nil {
				logger.Error("window lock renewal failed (unlock)",
					zap.String("lock_name", dl.lockName),
					zap.Error(err),
				)
				dl.locked = false
				dl.mu.Unlock()
				return
			}

			expiry, err := dl.lockManager.Lock(ctx, dl.lockName, dl.ttl)
			if err != nil || expiry <= 0 {
				logger.Error("window lock lost",
					zap.String("lock_name", dl.lockName),
					zap.Error(err),
				)
				dl.locked = false
				dl.mu.Unlock()
				return
			}
			dl.mu.Unlock()

			logger.Debug("window lock renewed",
				zap.String("lock_name", dl.lockName),
				zap.Duration("expiry", expiry),
			)
		}
	}
}
