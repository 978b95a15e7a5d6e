package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"announcer-bot/internal/delivery"
)

// ErrNoSchedule is returned by FireNow when the channel has no schedule.
var ErrNoSchedule = errors.New("no schedule for channel")

// Message prefixes distinguishing scheduled sends from manual test fires.
const (
	ScheduledPrefix = "[Scheduled Announcement] "
	TestPrefix      = "[Test Announcement] "
)

// DefaultTick is the scheduler evaluation cadence.
const DefaultTick = time.Second

// ContentSource generates announcement text for automatic-mode schedules.
type ContentSource interface {
	Announcement(ctx context.Context, prompt string) (string, error)
}

// Config holds scheduler configuration.
type Config struct {
	// Tick is the evaluation cadence. Zero means DefaultTick.
	Tick time.Duration
	// GenTimeout bounds one content-generation call. Zero means 30s.
	GenTimeout time.Duration
}

// Scheduler evaluates every registered schedule on a fixed cadence,
// applies the idle-suppression policy and triggers delivery. One slow
// generation call never stalls delivery to other channels: due channels
// are processed concurrently with a bounded per-call timeout.
type Scheduler struct {
	registry   *Registry
	surface    delivery.Surface
	content    ContentSource
	tick       time.Duration
	genTimeout time.Duration
	now        func() time.Time

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// New creates a Scheduler over the given registry, delivery surface and
// content source.
func New(registry *Registry, surface delivery.Surface, content ContentSource, cfg Config) *Scheduler {
	s := &Scheduler{
		registry:   registry,
		surface:    surface,
		content:    content,
		tick:       cfg.Tick,
		genTimeout: cfg.GenTimeout,
		now:        time.Now,
		inFlight:   make(map[int64]struct{}),
	}
	if s.tick <= 0 {
		s.tick = DefaultTick
	}
	if s.genTimeout <= 0 {
		s.genTimeout = 30 * time.Second
	}
	return s
}

// Run executes the tick loop until the context is cancelled. Start it
// exactly once, after the delivery surface is ready.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().Dur("tick", s.tick).Msg("Scheduler started")

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Scheduler stopped")
			return
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// job is a snapshot of one due schedule, taken under the registry lock.
type job struct {
	channelID int64
	mode      Mode
	content   string
}

// runTick evaluates all schedules once and delivers to the due ones.
func (s *Scheduler) runTick(ctx context.Context) {
	now := s.now()
	jobs := s.collectDue(now)
	if len(jobs) == 0 {
		return
	}

	var g errgroup.Group
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			s.process(ctx, j, now)
			return nil
		})
	}
	_ = g.Wait()
}

// collectDue snapshots the due schedules, applying idle suppression in
// place: a suppressed channel's send timer restarts at now so the
// schedule does not re-fire every subsequent tick. The effect is that a
// schedule only fires after at least one observed activity event since
// its previous send. A channel whose previous delivery is still in
// flight is never collected again: LastSend only advances on success, so
// without the guard every tick would dispatch another generate+send for
// the same channel while the first one runs.
func (s *Scheduler) collectDue(now time.Time) []job {
	r := s.registry
	r.mu.Lock()
	defer r.mu.Unlock()

	var jobs []job
	for id, sch := range r.schedules {
		if now.Sub(sch.LastSend) < time.Duration(sch.IntervalSeconds)*time.Second {
			continue
		}
		if !sch.LastActivity.After(sch.LastSend) {
			log.Debug().Int64("channel_id", id).Msg("Channel idle, skipping scheduled message")
			sch.LastSend = now
			continue
		}
		if !s.tryAcquire(id) {
			continue
		}
		jobs = append(jobs, job{channelID: id, mode: sch.Mode, content: sch.Content})
	}
	return jobs
}

// tryAcquire marks a channel as having a delivery in flight. Returns
// false when one is already running.
func (s *Scheduler) tryAcquire(channelID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[channelID]; busy {
		return false
	}
	s.inFlight[channelID] = struct{}{}
	return true
}

// release clears the channel's in-flight marker.
func (s *Scheduler) release(channelID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, channelID)
}

// process resolves, generates and delivers one due announcement.
func (s *Scheduler) process(ctx context.Context, j job, now time.Time) {
	defer s.release(j.channelID)

	if err := s.surface.Resolve(ctx, j.channelID); err != nil {
		if errors.Is(err, delivery.ErrChannelNotFound) {
			log.Error().Int64("channel_id", j.channelID).Msg("Channel not found, removing schedule")
			s.registry.Remove(j.channelID)
			return
		}
		log.Warn().Err(err).Int64("channel_id", j.channelID).Msg("Channel resolution failed, will retry next tick")
		return
	}

	text, err := s.render(ctx, j)
	if err != nil {
		// Restart the interval timer: a broken upstream is retried after
		// a full interval, not on every tick.
		log.Error().Err(err).Int64("channel_id", j.channelID).Msg("Content generation failed, will retry after a full interval")
		s.markSent(j.channelID, now)
		return
	}

	if _, err := s.surface.Send(ctx, j.channelID, ScheduledPrefix+text); err != nil {
		if errors.Is(err, delivery.ErrUnauthorized) {
			log.Error().Int64("channel_id", j.channelID).Msg("Missing permission to send, removing schedule")
			s.registry.Remove(j.channelID)
			return
		}
		log.Error().Err(err).Int64("channel_id", j.channelID).Msg("Scheduled send failed")
		return
	}

	s.markSent(j.channelID, now)
	log.Info().Int64("channel_id", j.channelID).Msg("Scheduled message sent")
}

// render resolves the message content for one schedule.
func (s *Scheduler) render(ctx context.Context, j job) (string, error) {
	if j.mode != ModeAutomatic {
		return j.content, nil
	}
	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()
	return s.content.Announcement(genCtx, j.content)
}

// markSent restarts the channel's interval timer after a successful send.
func (s *Scheduler) markSent(channelID int64, now time.Time) {
	r := s.registry
	r.mu.Lock()
	defer r.mu.Unlock()
	if sch, ok := r.schedules[channelID]; ok {
		sch.LastSend = now
	}
}

// FireNow sends the channel's next announcement immediately with the test
// prefix. It never touches LastSend, so the regular cadence is unaffected.
func (s *Scheduler) FireNow(ctx context.Context, channelID int64) error {
	sch, ok := s.registry.Get(channelID)
	if !ok {
		return ErrNoSchedule
	}

	text, err := s.render(ctx, job{channelID: channelID, mode: sch.Mode, content: sch.Content})
	if err != nil {
		return err
	}

	_, err = s.surface.Send(ctx, channelID, TestPrefix+text)
	return err
}
