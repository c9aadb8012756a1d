package redlock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker is a minimal single-instance Redis lock. The expiry sweep uses it so
// only one worker walks the due responses at a time. The holder token is
// generated per Locker; only the holder can release or extend.
type Locker struct {
	client redis.UniversalClient
	key    string
	holder string
}

func NewLocker(client redis.UniversalClient, key string) *Locker {
	return &Locker{
		client: client,
		key:    key,
		holder: uuid.NewString(),
	}
}

// Lock attempts to take the lock for ttl. A false return means another holder
// has it, which callers treat as "skip this round", not as a failure.
func (l *Locker) Lock(ctx context.Context, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.holder, ttl).Result()
}

func (l *Locker) Unlock(ctx context.Context) error {
	script := "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"
	result, err := l.client.Eval(ctx, script, []string{l.key}, l.holder).Result()
	if err != nil {
		return err
	}
	if result == int64(0) {
		return fmt.Errorf("unlock failed, lock %s expired or held elsewhere", l.key)
	}
	return nil
}

// Extend pushes the expiry out for a holder that needs more time than the
// initial ttl.
func (l *Locker) Extend(ctx context.Context, ttl time.Duration) error {
	script := "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('pexpire', KEYS[1], ARGV[2]) else return 0 end"
	result, err := l.client.Eval(ctx, script, []string{l.key}, l.holder, fmt.Sprintf("%d", ttl.Milliseconds())).Result()
	if err != nil {
		return err
	}
	if result == int64(0) {
		return fmt.Errorf("extend failed, lock %s expired or held elsewhere", l.key)
	}
	return nil
}
