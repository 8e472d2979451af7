// Package lock serializes writes to the player ledger.
//
// Live match recording holds a shared gate plus one lock per involved player,
// so unrelated matches run side by side while two matches touching the same
// player do not interleave. A replay rewrites every row and holds the gate
// exclusively.
package lock

import (
	"context"
	"slices"
	"sync"
	"time"
)

// keyMutex wraps a mutex with reference counting for cleanup.
type keyMutex struct {
	mu       sync.Mutex
	refCount int
}

// KeyLock provides per-key locking, keyed by player name.
type KeyLock struct {
	locks sync.Map // map[string]*keyMutex
	pool  sync.Pool
}

// NewKeyLock creates a new KeyLock instance.
func NewKeyLock() *KeyLock {
	return &KeyLock{
		pool: sync.Pool{
			New: func() any {
				return &keyMutex{}
			},
		},
	}
}

// getLock retrieves or creates a mutex for the given key.
func (kl *KeyLock) getLock(key string) *keyMutex {
	if v, ok := kl.locks.Load(key); ok {
		return v.(*keyMutex)
	}

	newLock := kl.pool.Get().(*keyMutex)
	newLock.refCount = 0

	// Another goroutine may have stored one first.
	actual, loaded := kl.locks.LoadOrStore(key, newLock)
	if loaded {
		kl.pool.Put(newLock)
	}
	return actual.(*keyMutex)
}

// Lock acquires the lock for a key.
func (kl *KeyLock) Lock(key string) {
	lock := kl.getLock(key)
	lock.mu.Lock()
	lock.refCount++
}

// Unlock releases the lock for a key.
func (kl *KeyLock) Unlock(key string) {
	if v, ok := kl.locks.Load(key); ok {
		lock := v.(*keyMutex)
		lock.refCount--
		lock.mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (kl *KeyLock) TryLock(key string) bool {
	lock := kl.getLock(key)
	if lock.mu.TryLock() {
		lock.refCount++
		return true
	}
	return false
}

// LockWithTimeout attempts to acquire the lock with a timeout.
// Returns true if the lock was acquired, false if the timeout or ctx expired first.
func (kl *KeyLock) LockWithTimeout(ctx context.Context, key string, timeout time.Duration) bool {
	lock := kl.getLock(key)

	done := make(chan struct{})
	go func() {
		lock.mu.Lock()
		close(done)
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-done:
		lock.refCount++
		return true
	case <-timeoutCtx.Done():
		// The waiter still acquires eventually; release it as soon as it does.
		go func() {
			<-done
			lock.mu.Unlock()
		}()
		return false
	}
}

// IsLocked reports whether a key is currently held. The answer may be stale
// as soon as it returns.
func (kl *KeyLock) IsLocked(key string) bool {
	if v, ok := kl.locks.Load(key); ok {
		lock := v.(*keyMutex)
		if lock.mu.TryLock() {
			lock.mu.Unlock()
			return false
		}
		return true
	}
	return false
}

// Ledger guards the players and matches tables.
type Ledger struct {
	gate    sync.RWMutex
	players *KeyLock
	timeout time.Duration
}

// NewLedger returns a ledger whose player locks give up after timeout.
func NewLedger(timeout time.Duration) *Ledger {
	return &Ledger{players: NewKeyLock(), timeout: timeout}
}

// WithPlayers runs fn while holding the shared gate and every named player's
// lock. Names are locked in sorted order so concurrent callers cannot deadlock.
func (l *Ledger) WithPlayers(ctx context.Context, names []string, fn func() error) error {
	l.gate.RLock()
	defer l.gate.RUnlock()

	keys := slices.Clone(names)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]string, 0, len(keys))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.players.Unlock(held[i])
		}
	}()
	for _, k := range keys {
		if !l.players.LockWithTimeout(ctx, k, l.timeout) {
			return ErrLockTimeout
		}
		held = append(held, k)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fn()
	}
}

// Exclusive runs fn with the gate held exclusively. It does not wait: when
// another exclusive section or any live write is in progress it returns ErrBusy.
func (l *Ledger) Exclusive(fn func() error) error {
	if !l.gate.TryLock() {
		return ErrBusy
	}
	defer l.gate.Unlock()
	return fn()
}

// IsPlayerLocked reports whether a live write currently holds the player.
func (l *Ledger) IsPlayerLocked(name string) bool {
	return l.players.IsLocked(name)
}
