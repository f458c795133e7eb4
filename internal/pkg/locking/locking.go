package locking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
)

// ErrContended is returned when a lock cannot be acquired within its bounded
// retries; callers surface it as a transient, retryable failure.
var ErrContended = errors.New("lock contended")

// RedsyncLocker guards critical sections across processes via Redis.
type RedsyncLocker struct {
	rs *redsync.Redsync
}

func NewRedsyncLocker(rs *redsync.Redsync) *RedsyncLocker {
	return &RedsyncLocker{rs}
}

func (l *RedsyncLocker) Acquire(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(8*time.Second),
		redsync.WithTries(16),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.Join(ErrContended, err)
	}

	return func() {
		//nolint:errcheck
		mutex.Unlock()
	}, nil
}

// LocalLocker is a keyed in-process mutex. Enough for a single node and for
// the test suite; the key space is never large (one mutex per hot entity).
type LocalLocker struct {
	mu      sync.Mutex
	mutexes map[string]*sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{mutexes: map[string]*sync.Mutex{}}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.mutexes[key]
	if !ok {
		m = &sync.Mutex{}
		l.mutexes[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
