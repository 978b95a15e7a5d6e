// Package lock provides per-channel locking so that game guesses and the
// board edits they trigger are serialized within a channel.
package lock

import "sync"

// channelMutex wraps a mutex stored in the lock map.
type channelMutex struct {
	mu sync.Mutex
}

// ChannelLock provides per-channel mutual exclusion. Different channels
// never block each other.
type ChannelLock struct {
	locks sync.Map // map[int64]*channelMutex
	pool  sync.Pool
}

// NewChannelLock creates a new ChannelLock instance.
func NewChannelLock() *ChannelLock {
	return &ChannelLock{
		pool: sync.Pool{
			New: func() any {
				return &channelMutex{}
			},
		},
	}
}

// getLock retrieves or creates the mutex for a channel.
func (cl *ChannelLock) getLock(channelID int64) *channelMutex {
	if v, ok := cl.locks.Load(channelID); ok {
		return v.(*channelMutex)
	}

	newLock := cl.pool.Get().(*channelMutex)
	actual, loaded := cl.locks.LoadOrStore(channelID, newLock)
	if loaded {
		// Another goroutine created the lock first, return ours to pool.
		cl.pool.Put(newLock)
	}
	return actual.(*channelMutex)
}

// Lock acquires the lock for a channel.
func (cl *ChannelLock) Lock(channelID int64) {
	cl.getLock(channelID).mu.Lock()
}

// Unlock releases the lock for a channel.
func (cl *ChannelLock) Unlock(channelID int64) {
	if v, ok := cl.locks.Load(channelID); ok {
		v.(*channelMutex).mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired.
func (cl *ChannelLock) TryLock(channelID int64) bool {
	return cl.getLock(channelID).mu.TryLock()
}

// WithLock executes fn while holding the channel's lock.
func (cl *ChannelLock) WithLock(channelID int64, fn func() error) error {
	cl.Lock(channelID)
	defer cl.Unlock(channelID)
	return fn()
}
