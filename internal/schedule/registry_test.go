package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRegistry_UpsertAndGet(t *testing.T) {
	now := time.Unix(1000, 0)
	r := NewRegistry()
	r.now = fixedClock(now)

	require.NoError(t, r.Upsert(42, ModeManual, "hello", 60))

	s, ok := r.Get(42)
	require.True(t, ok)
	assert.Equal(t, int64(42), s.ChannelID)
	assert.Equal(t, ModeManual, s.Mode)
	assert.Equal(t, "hello", s.Content)
	assert.Equal(t, 60, s.IntervalSeconds)
	assert.Equal(t, now, s.LastActivity)
	assert.Equal(t, now, s.LastSend)
}

func TestRegistry_UpsertRejectsShortInterval(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name     string
		interval int
		wantErr  bool
	}{
		{"minimum interval accepted", 10, false},
		{"large interval accepted", 86400, false},
		{"nine seconds rejected", 9, true},
		{"zero rejected", 0, true},
		{"negative rejected", -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Upsert(1, ModeManual, "m", tt.interval)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIntervalTooShort)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistry_UpsertOverwritesWholesale(t *testing.T) {
	r := NewRegistry()
	r.now = fixedClock(time.Unix(1000, 0))

	require.NoError(t, r.Upsert(42, ModeManual, "old message", 60))

	r.now = fixedClock(time.Unix(2000, 0))
	require.NoError(t, r.Upsert(42, ModeAutomatic, "a prompt", 120))

	s, ok := r.Get(42)
	require.True(t, ok)
	assert.Equal(t, ModeAutomatic, s.Mode)
	assert.Equal(t, "a prompt", s.Content)
	assert.Equal(t, 120, s.IntervalSeconds)
	assert.Equal(t, time.Unix(2000, 0), s.LastSend, "timestamps reset on overwrite")
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Upsert(42, ModeManual, "m", 60))

	assert.True(t, r.Remove(42))
	assert.False(t, r.Remove(42))
	_, ok := r.Get(42)
	assert.False(t, ok)
}

func TestRegistry_RemoveAll(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Upsert(1, ModeManual, "a", 60))
	require.NoError(t, r.Upsert(2, ModeManual, "b", 60))

	r.RemoveAll()
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_RecordActivity(t *testing.T) {
	base := time.Unix(1000, 0)
	r := NewRegistry()
	r.now = fixedClock(base)
	require.NoError(t, r.Upsert(42, ModeManual, "m", 60))

	later := base.Add(30 * time.Second)
	r.RecordActivity(42, later)

	s, _ := r.Get(42)
	assert.Equal(t, later, s.LastActivity)

	// No-op for channels without a schedule.
	r.RecordActivity(99, later)
	_, ok := r.Get(99)
	assert.False(t, ok)
}

func TestRegistry_Status(t *testing.T) {
	base := time.Unix(1000, 0)
	r := NewRegistry()
	r.now = fixedClock(base)
	require.NoError(t, r.Upsert(42, ModeAutomatic, "p", 60))

	// Fresh schedule: paused (no activity since the initial send mark).
	st, ok := r.Status(42, base.Add(15*time.Second))
	require.True(t, ok)
	assert.Equal(t, ModeAutomatic, st.Mode)
	assert.Equal(t, 60, st.IntervalSeconds)
	assert.InDelta(t, 45.0, st.SecondsUntilNext, 0.001)
	assert.True(t, st.IdlePaused)

	// Activity after the last send un-pauses it.
	r.RecordActivity(42, base.Add(20*time.Second))
	st, _ = r.Status(42, base.Add(30*time.Second))
	assert.False(t, st.IdlePaused)

	// Past-due schedules report zero, not negative.
	st, _ = r.Status(42, base.Add(5*time.Minute))
	assert.Equal(t, 0.0, st.SecondsUntilNext)

	_, ok = r.Status(99, base)
	assert.False(t, ok)
}

// TestRegistryIntervalRoundTripProperty checks that any valid interval
// survives an upsert/get round trip unchanged.
func TestRegistryIntervalRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewRegistry()
		channelID := rapid.Int64().Draw(t, "channelID")
		interval := rapid.IntRange(MinIntervalSeconds, 1<<30).Draw(t, "interval")

		if err := r.Upsert(channelID, ModeManual, "m", interval); err != nil {
			t.Fatalf("valid interval %d rejected: %v", interval, err)
		}

		s, ok := r.Get(channelID)
		if !ok {
			t.Fatalf("schedule missing after upsert")
		}
		if s.IntervalSeconds != interval {
			t.Fatalf("interval changed: put %d, got %d", interval, s.IntervalSeconds)
		}
	})
}

// TestRegistryCopyOutProperty checks that mutating a returned schedule
// never affects the stored one.
func TestRegistryCopyOutProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewRegistry()
		channelID := rapid.Int64().Draw(t, "channelID")
		interval := rapid.IntRange(MinIntervalSeconds, 3600).Draw(t, "interval")

		if err := r.Upsert(channelID, ModeManual, "original", interval); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}

		s, _ := r.Get(channelID)
		s.Content = "mutated"
		s.IntervalSeconds = 1

		stored, _ := r.Get(channelID)
		if stored.Content != "original" || stored.IntervalSeconds != interval {
			t.Fatalf("stored schedule mutated through copy: %+v", stored)
		}
	})
}
