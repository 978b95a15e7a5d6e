package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestChannelLock_MutualExclusion(t *testing.T) {
	cl := NewChannelLock()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cl.Lock(42)
			defer cl.Unlock(42)
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestChannelLock_DifferentChannelsDoNotBlock(t *testing.T) {
	cl := NewChannelLock()

	cl.Lock(1)
	defer cl.Unlock(1)

	// A different channel's lock is still free.
	assert.True(t, cl.TryLock(2))
	cl.Unlock(2)
}

func TestChannelLock_TryLock(t *testing.T) {
	cl := NewChannelLock()

	require.True(t, cl.TryLock(42))
	assert.False(t, cl.TryLock(42), "second TryLock on a held lock fails")
	cl.Unlock(42)
	assert.True(t, cl.TryLock(42))
	cl.Unlock(42)
}

func TestChannelLock_WithLock(t *testing.T) {
	cl := NewChannelLock()

	ran := false
	err := cl.WithLock(42, func() error {
		ran = true
		assert.False(t, cl.TryLock(42), "lock held inside WithLock")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	// Released afterwards.
	assert.True(t, cl.TryLock(42))
	cl.Unlock(42)
}

// TestChannelLockSerializationProperty checks that concurrent increments
// under the same channel's lock never lose updates, for any channel set.
func TestChannelLockSerializationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cl := NewChannelLock()
		channels := rapid.SliceOfN(rapid.Int64Range(1, 5), 1, 50).Draw(t, "channels")

		counters := make(map[int64]*int)
		for _, id := range channels {
			if counters[id] == nil {
				v := 0
				counters[id] = &v
			}
		}

		var wg sync.WaitGroup
		for _, id := range channels {
			id := id
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = cl.WithLock(id, func() error {
					*counters[id]++
					return nil
				})
			}()
		}
		wg.Wait()

		want := make(map[int64]int)
		for _, id := range channels {
			want[id]++
		}
		for id, counter := range counters {
			if *counter != want[id] {
				t.Fatalf("channel %d: %d increments recorded, want %d", id, *counter, want[id])
			}
		}
	})
}
