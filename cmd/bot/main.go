// Package main is the entry point for the announcer bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"announcer-bot/internal/bot"
	"announcer-bot/internal/config"
	"announcer-bot/internal/game/hangman"
	"announcer-bot/internal/gen"
	"announcer-bot/internal/health"
	"announcer-bot/internal/pkg/lock"
	"announcer-bot/internal/schedule"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set; generation commands will report a configuration error")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Generation service client and content generator
	client := gen.NewClient(gen.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		BaseURL:     cfg.Gemini.BaseURL,
		MaxAttempts: cfg.Gemini.MaxAttempts,
	})
	generator := gen.NewGenerator(client)

	// Core state: schedule registry, game engine, per-channel locks
	registry := schedule.NewRegistry()
	engine := hangman.NewEngine()
	locks := lock.NewChannelLock()

	// Telegram bot; creating it validates the token against the API,
	// which is the delivery surface's readiness signal
	telegramBot, err := bot.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Scheduler over the bot's delivery surface
	scheduler := schedule.New(registry, telegramBot.Surface(), generator, schedule.Config{
		Tick:       cfg.Scheduler.Tick,
		GenTimeout: cfg.Gemini.Timeout,
	})

	telegramBot.Setup(&bot.Dependencies{
		Registry:   registry,
		Scheduler:  scheduler,
		Generator:  generator,
		Engine:     engine,
		Locks:      locks,
		GenTimeout: cfg.Gemini.Timeout,
	})

	// Keep-alive web server for external uptime monitoring
	healthServer := health.New(cfg.Health.Port)
	go healthServer.Run(ctx)

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start bot and scheduler
	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()
	go scheduler.Run(ctx)

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown
	cancel()
	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}
