// Package handler provides the bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"announcer-bot/internal/delivery"
	"announcer-bot/internal/gen"
	"announcer-bot/internal/schedule"
)

// ScheduleHandler handles announcement-schedule commands.
type ScheduleHandler struct {
	registry   *schedule.Registry
	scheduler  *schedule.Scheduler
	generator  *gen.Generator
	genTimeout time.Duration
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(registry *schedule.Registry, scheduler *schedule.Scheduler, generator *gen.Generator, genTimeout time.Duration) *ScheduleHandler {
	return &ScheduleHandler{
		registry:   registry,
		scheduler:  scheduler,
		generator:  generator,
		genTimeout: genTimeout,
	}
}

// HandleManual handles /manual <interval_hours> <message...>.
// Schedules a fixed message for this channel.
func (h *ScheduleHandler) HandleManual(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 2 {
		return c.Reply("Usage: /manual <interval_hours> <message>\nExample: /manual 2 Remember to hydrate!")
	}

	hours, err := strconv.ParseFloat(args[0], 64)
	if err != nil || hours <= 0 {
		return c.Reply("The interval must be a number > 0 (in hours, e.g. 2 or 0.5).")
	}

	intervalSeconds := int(hours * 3600)
	if intervalSeconds < schedule.MinIntervalSeconds {
		return c.Reply("The interval is too short (minimum 10 seconds).")
	}

	message := strings.Join(args[1:], " ")
	if err := h.registry.Upsert(chat.ID, schedule.ModeManual, message, intervalSeconds); err != nil {
		return c.Reply("The interval is too short (minimum 10 seconds).")
	}

	log.Info().
		Int64("channel_id", chat.ID).
		Int("interval", intervalSeconds).
		Msg("Manual schedule set")

	return c.Reply(fmt.Sprintf("✅ *Manual Scheduled!* Interval: *%s*.", displayInterval(intervalSeconds)))
}

// HandleAutomatic handles /auto <full prompt>.
// The prompt carries both the message and the interval; the generation
// service extracts them via structured output.
func (h *ScheduleHandler) HandleAutomatic(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	fullPrompt := strings.TrimSpace(c.Message().Payload)
	if fullPrompt == "" {
		return c.Reply("Usage: /auto <prompt with interval>\nExample: /auto Say a fun fact every 2 hours")
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.genTimeout)
	defer cancel()

	prompt, intervalSeconds, err := h.generator.ParseScheduleRequest(ctx, fullPrompt)
	if err != nil {
		if errors.Is(err, gen.ErrMissingAPIKey) {
			return c.Reply("❌ *Error:* `GEMINI_API_KEY` is missing.")
		}
		log.Error().Err(err).Int64("channel_id", chat.ID).Msg("Schedule prompt parsing failed")
		return c.Reply(fmt.Sprintf("❌ *Error parsing prompt:* %v", err))
	}

	if prompt == "" {
		return c.Reply("❌ *Error:* Could not determine a clear message. Try: /auto Say something fun every 30 minutes")
	}

	if err := h.registry.Upsert(chat.ID, schedule.ModeAutomatic, prompt, intervalSeconds); err != nil {
		return c.Reply("The interval is too short (minimum 10 seconds).")
	}

	log.Info().
		Int64("channel_id", chat.ID).
		Int("interval", intervalSeconds).
		Msg("Automatic schedule set")

	return c.Reply(fmt.Sprintf(
		"🤖 *Automatic Scheduled!*\n*Task:* Generate a message based on the prompt: '%s'\n*Interval:* *%s*",
		prompt, displayInterval(intervalSeconds),
	))
}

// HandleStop handles /stop: clears the schedule for this channel only.
func (h *ScheduleHandler) HandleStop(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	if h.registry.Remove(chat.ID) {
		log.Info().Int64("channel_id", chat.ID).Msg("Schedule stopped")
		return c.Reply("🛑 *Announcements for this channel have been stopped and cleared.*")
	}
	return c.Reply("No schedule running for this channel.")
}

// HandleStopAll handles /stopall: clears every channel's schedule.
func (h *ScheduleHandler) HandleStopAll(c tele.Context) error {
	h.registry.RemoveAll()
	log.Info().Msg("All schedules stopped")
	return c.Reply("🛑 *All announcements have been stopped and cleared.*")
}

// HandleStatus handles /status: reports mode, interval, time until the
// next send and whether the schedule is paused waiting for activity.
func (h *ScheduleHandler) HandleStatus(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	st, ok := h.registry.Status(chat.ID, time.Now())
	if !ok {
		return c.Reply("Status: *Idle* (No schedule for this channel).")
	}

	paused := "No"
	if st.IdlePaused {
		paused = "Yes (Awaiting chat activity)"
	}

	return c.Reply(fmt.Sprintf(
		"*Status:* Running\n*Mode:* %s\n*Interval:* %s\n*Time until next send:* %.1f seconds\n*Paused (Idle Channel):* %s",
		st.Mode, displayInterval(st.IntervalSeconds), st.SecondsUntilNext, paused,
	))
}

// HandleTest handles /test: fires the channel's announcement immediately
// without perturbing the regular cadence.
func (h *ScheduleHandler) HandleTest(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	err := h.scheduler.FireNow(context.Background(), chat.ID)
	switch {
	case err == nil:
		return c.Reply("✅ Test message sent!")
	case errors.Is(err, schedule.ErrNoSchedule):
		return c.Reply("No schedule running for this channel to test.")
	case errors.Is(err, delivery.ErrUnauthorized):
		return c.Reply("❌ Error: Missing permissions to send message to this channel.")
	default:
		log.Error().Err(err).Int64("channel_id", chat.ID).Msg("Test fire failed")
		return c.Reply(fmt.Sprintf("❌ An error occurred: %v", err))
	}
}

// displayInterval converts seconds to a readable hours/minutes/seconds string.
func displayInterval(intervalSeconds int) string {
	switch {
	case intervalSeconds >= 3600 && intervalSeconds%3600 == 0:
		return fmt.Sprintf("%d hours", intervalSeconds/3600)
	case intervalSeconds >= 60 && intervalSeconds%60 == 0:
		return fmt.Sprintf("%d minutes", intervalSeconds/60)
	default:
		return fmt.Sprintf("%d seconds", intervalSeconds)
	}
}
