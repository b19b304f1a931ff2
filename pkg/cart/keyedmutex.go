package cart

import (
	"context"
	"sync"
	"time"
)

// KeyedMutex provides per-key mutual exclusion with a bounded wait. The
// cart service uses it to serialize all mutations for one user while
// letting different users proceed fully in parallel.
//
// Each key is backed by a one-slot channel semaphore. Entries are
// reference-counted and removed when the last waiter leaves, so the map
// stays proportional to the number of users with in-flight operations.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*keyLock),
	}
}

// Acquire takes the lock for key, waiting at most maxWait. On success it
// returns a release function that the caller must invoke exactly once.
//
// Returns ErrBusy if the wait exceeds maxWait, or the context error if ctx
// is cancelled first. Either way the lock is not held.
func (km *KeyedMutex) Acquire(ctx context.Context, key string, maxWait time.Duration) (func(), error) {
	kl := km.ref(key)

	timer := time.NewTimer(maxWait)
	defer timer.Stop()

	select {
	case kl.ch <- struct{}{}:
		return func() {
			<-kl.ch
			km.unref(key, kl)
		}, nil
	case <-timer.C:
		km.unref(key, kl)
		return nil, ErrBusy
	case <-ctx.Done():
		km.unref(key, kl)
		return nil, ctx.Err()
	}
}

// ref returns the lock entry for key, creating it if needed, with its
// reference count incremented.
func (km *KeyedMutex) ref(key string) *keyLock {
	km.mu.Lock()
	defer km.mu.Unlock()

	kl := km.locks[key]
	if kl == nil {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		km.locks[key] = kl
	}
	kl.refs++
	return kl
}

// unref drops one reference and deletes the entry once unused.
func (km *KeyedMutex) unref(key string, kl *keyLock) {
	km.mu.Lock()
	defer km.mu.Unlock()

	kl.refs--
	if kl.refs == 0 {
		delete(km.locks, key)
	}
}
