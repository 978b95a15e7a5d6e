// Package bot middleware: whitelist enforcement, admin gating, logging
// and the channel-activity signal the scheduler's idle suppression needs.
package bot

import (
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"announcer-bot/internal/config"
	"announcer-bot/internal/schedule"
)

// WhitelistMiddleware creates a middleware that checks if the chat is
// whitelisted. An empty whitelist allows every chat.
func WhitelistMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil {
				return nil
			}

			if !cfg.IsChatAllowed(chat.ID) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Msg("Ignoring message from non-whitelisted chat")
				return nil
			}

			return next(c)
		}
	}
}

// AdminMiddleware creates a middleware that checks if the user is an admin.
func AdminMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			if !cfg.IsAdmin(sender.ID) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Reply("❌ This command requires admin permissions.")
			}

			return next(c)
		}
	}
}

// LoggingMiddleware creates a middleware that logs all incoming messages.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			chat := c.Chat()

			logEvent := log.Debug()
			if sender != nil {
				logEvent = logEvent.
					Int64("user_id", sender.ID).
					Str("username", sender.Username)
			}
			if chat != nil {
				logEvent = logEvent.
					Int64("chat_id", chat.ID).
					Str("chat_type", string(chat.Type))
			}
			logEvent.
				Str("text", c.Text()).
				Msg("Received message")

			return next(c)
		}
	}
}

// RecoveryMiddleware creates a middleware that recovers from panics.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Msg("Recovered from panic in handler")
					_ = c.Reply("❌ An internal error occurred, please try again later.")
				}
			}()
			return next(c)
		}
	}
}

// ActivityMiddleware records every observed inbound message as channel
// activity. The bot's own sends never pass through here, so only user
// activity can un-pause an idle-suppressed schedule.
func ActivityMiddleware(registry *schedule.Registry) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if chat := c.Chat(); chat != nil && c.Message() != nil {
				registry.RecordActivity(chat.ID, time.Now())
			}
			return next(c)
		}
	}
}
