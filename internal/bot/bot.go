// Package bot provides the Telegram bot initialization and handler
// registration, and adapts telebot to the delivery surface the core uses.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"announcer-bot/internal/config"
	"announcer-bot/internal/delivery"
	"announcer-bot/internal/game/hangman"
	"announcer-bot/internal/gen"
	"announcer-bot/internal/handler"
	"announcer-bot/internal/pkg/lock"
	"announcer-bot/internal/schedule"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	// Handlers
	scheduleHandler *handler.ScheduleHandler
	personaHandler  *handler.PersonaHandler
	hangmanHandler  *handler.HangmanHandler
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Registry   *schedule.Registry
	Scheduler  *schedule.Scheduler
	Generator  *gen.Generator
	Engine     *hangman.Engine
	Locks      *lock.ChannelLock
	GenTimeout time.Duration
}

// New creates a Bot instance. Handler registration happens in Setup so
// the scheduler can be built around this bot's delivery surface first.
func New(cfg *config.Config) (*Bot, error) {
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  cfg.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{bot: teleBot, cfg: cfg}, nil
}

// Surface returns the delivery surface backed by this bot.
func (b *Bot) Surface() delivery.Surface {
	return &Surface{bot: b.bot}
}

// Setup registers middleware and command handlers.
func (b *Bot) Setup(deps *Dependencies) {
	b.scheduleHandler = handler.NewScheduleHandler(deps.Registry, deps.Scheduler, deps.Generator, deps.GenTimeout)
	b.personaHandler = handler.NewPersonaHandler(deps.Generator, deps.GenTimeout)
	b.hangmanHandler = handler.NewHangmanHandler(deps.Engine, deps.Generator, b.Surface(), deps.Locks, deps.GenTimeout)

	b.registerMiddleware(deps.Registry)
	b.registerHandlers()
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware(registry *schedule.Registry) {
	// Recovery middleware - must be first
	b.bot.Use(RecoveryMiddleware())

	// Whitelist middleware - check if chat is allowed
	b.bot.Use(WhitelistMiddleware(b.cfg))

	// Logging middleware
	b.bot.Use(LoggingMiddleware())

	// Every inbound non-bot message counts as channel activity
	b.bot.Use(ActivityMiddleware(registry))
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	// Schedule handlers
	b.bot.Handle("/manual", b.scheduleHandler.HandleManual)
	b.bot.Handle("/auto", b.scheduleHandler.HandleAutomatic)
	b.bot.Handle("/stop", b.scheduleHandler.HandleStop)
	b.bot.Handle("/status", b.scheduleHandler.HandleStatus)
	b.bot.Handle("/test", b.scheduleHandler.HandleTest)

	// Stopping every channel at once is admin-only
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/stopall", b.scheduleHandler.HandleStopAll)

	// Persona handlers
	b.bot.Handle("/shea", b.personaHandler.Handle(gen.SheaCompliment, handler.SheaComplimentFrame))
	b.bot.Handle("/sheainsult", b.personaHandler.Handle(gen.SheaInsult, handler.SheaInsultFrame))
	b.bot.Handle("/lyra", b.personaHandler.Handle(gen.LyraCompliment, handler.LyraComplimentFrame))
	b.bot.Handle("/miwa", b.personaHandler.Handle(gen.MiwaCompliment, handler.MiwaComplimentFrame))

	// Hangman handler
	b.bot.Handle("/hangman", b.hangmanHandler.HandleHangman)

	// Plain messages only matter as activity, recorded by middleware
	b.bot.Handle(tele.OnText, func(c tele.Context) error { return nil })
}

// Start starts the bot polling. Blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Bot is starting...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
