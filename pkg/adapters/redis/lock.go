package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
)

// MinLockTTL is the shortest lock ttl accepted. The lock is extended every
// ttl/2, which must stay a positive ticker period.
const MinLockTTL = 2 * time.Millisecond

var (
	unlockScript = backend.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
	extendScript = backend.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)
)

// Locker implements ports.DistributedLocker using Redis.
type Locker struct {
	client *backend.Client
	prefix string
	retry  time.Duration
	logger *slog.Logger
	onLost func(key string)
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithLockerLogger sets the logger for keepalive failures.
func WithLockerLogger(logger *slog.Logger) LockerOption {
	return func(l *Locker) {
		l.logger = logger
	}
}

// WithOnLost registers a callback run when a held lock is found taken by
// someone else or expired. Keepalive stops after it runs.
func WithOnLost(fn func(key string)) LockerOption {
	return func(l *Locker) {
		l.onLost = fn
	}
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{
		client: client,
		prefix: prefix,
		retry:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.NewNop()
	}
	return l
}

// Lock acquires a lock on key using SET NX PX with a random token. While
// held, the lock is extended every ttl/2 so a long-running controller keeps
// it; a crashed one loses it after ttl.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if ttl < MinLockTTL {
		return nil, fmt.Errorf("%w: ttl %s is below %s", ErrLockAcquire, ttl, MinLockTTL)
	}
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return l.hold(lockKey, token, ttl), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Locker) hold(lockKey, token string, ttl time.Duration) ports.UnlockFunc {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		t := time.NewTicker(ttl / 2)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if !l.extend(lockKey, token, ttl) {
					return
				}
			}
		}
	}()

	return func(ctx context.Context) error {
		select {
		case <-stop:
		default:
			close(stop)
		}
		<-done
		return unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err()
	}
}

// extend pushes the lock expiry forward. It reports false once the lock is
// no longer ours; a transient redis error is logged and retried next period.
func (l *Locker) extend(lockKey, token string, ttl time.Duration) bool {
	n, err := extendScript.Run(context.Background(), l.client, []string{lockKey}, token, ttl.Milliseconds()).Int64()
	if err != nil {
		l.logger.Warn("Failed to extend distributed lock", "key", lockKey, "err", err)
		return true
	}
	if n == 0 {
		l.logger.Error("Distributed lock lost", "key", lockKey)
		if l.onLost != nil {
			l.onLost(lockKey)
		}
		return false
	}
	return true
}
