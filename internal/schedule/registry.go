// Package schedule holds per-channel announcement schedules and the tick
// loop that decides when and what to send.
package schedule

import (
	"errors"
	"sync"
	"time"
)

// ErrIntervalTooShort rejects schedule intervals below MinIntervalSeconds.
var ErrIntervalTooShort = errors.New("interval must be at least 10 seconds")

// MinIntervalSeconds is the smallest interval an active schedule may use.
const MinIntervalSeconds = 10

// Mode selects the content source of a schedule.
type Mode int

const (
	// ModeManual repeats a fixed literal message.
	ModeManual Mode = iota
	// ModeAutomatic generates content per send from a stored prompt.
	ModeAutomatic
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	if m == ModeAutomatic {
		return "Automatic (AI)"
	}
	return "Manual (Fixed)"
}

// Schedule is the announcement state for a single channel.
// Content holds the literal message in manual mode and the generation
// prompt in automatic mode.
type Schedule struct {
	ChannelID       int64
	Mode            Mode
	Content         string
	IntervalSeconds int
	LastActivity    time.Time
	LastSend        time.Time
}

// Status is a point-in-time view of one channel's schedule.
type Status struct {
	Mode             Mode
	IntervalSeconds  int
	SecondsUntilNext float64
	IdlePaused       bool
}

// Registry stores one schedule per channel behind a mutex. The map is
// never exposed; all access goes through the operations below.
type Registry struct {
	mu        sync.RWMutex
	schedules map[int64]*Schedule
	now       func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		schedules: make(map[int64]*Schedule),
		now:       time.Now,
	}
}

// Upsert creates or wholesale-overwrites the schedule for a channel and
// resets both timestamps to now. Intervals below MinIntervalSeconds are
// rejected; callers validate before reaching the registry, this is the
// backstop.
func (r *Registry) Upsert(channelID int64, mode Mode, content string, intervalSeconds int) error {
	if intervalSeconds < MinIntervalSeconds {
		return ErrIntervalTooShort
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.schedules[channelID] = &Schedule{
		ChannelID:       channelID,
		Mode:            mode,
		Content:         content,
		IntervalSeconds: intervalSeconds,
		LastActivity:    now,
		LastSend:        now,
	}
	return nil
}

// Remove deletes the schedule for a channel. Idempotent.
// Returns true when a schedule existed.
func (r *Registry) Remove(channelID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.schedules[channelID]
	delete(r.schedules, channelID)
	return ok
}

// RemoveAll clears every schedule.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules = make(map[int64]*Schedule)
}

// Get returns a copy of the channel's schedule.
func (r *Registry) Get(channelID int64) (Schedule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schedules[channelID]
	if !ok {
		return Schedule{}, false
	}
	return *s, true
}

// RecordActivity updates the channel's last-activity time. No-op when the
// channel has no schedule. Called for every observed inbound message not
// authored by the bot.
func (r *Registry) RecordActivity(channelID int64, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.schedules[channelID]; ok {
		s.LastActivity = now
	}
}

// Status reports the channel's schedule state at the given time.
func (r *Registry) Status(channelID int64, now time.Time) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schedules[channelID]
	if !ok {
		return Status{}, false
	}

	untilNext := float64(s.IntervalSeconds) - now.Sub(s.LastSend).Seconds()
	if untilNext < 0 {
		untilNext = 0
	}

	return Status{
		Mode:             s.Mode,
		IntervalSeconds:  s.IntervalSeconds,
		SecondsUntilNext: untilNext,
		IdlePaused:       !s.LastActivity.After(s.LastSend),
	}, true
}

// Count returns the number of active schedules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schedules)
}
