package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"announcer-bot/internal/delivery"
	"announcer-bot/internal/game/hangman"
	"announcer-bot/internal/gen"
	"announcer-bot/internal/pkg/lock"
)

// HangmanHandler handles /hangman: no argument starts a game, one
// argument guesses a letter or the whole word.
type HangmanHandler struct {
	engine     *hangman.Engine
	generator  *gen.Generator
	surface    delivery.Surface
	locks      *lock.ChannelLock
	genTimeout time.Duration
}

// NewHangmanHandler creates a new HangmanHandler.
func NewHangmanHandler(engine *hangman.Engine, generator *gen.Generator, surface delivery.Surface, locks *lock.ChannelLock, genTimeout time.Duration) *HangmanHandler {
	return &HangmanHandler{
		engine:     engine,
		generator:  generator,
		surface:    surface,
		locks:      locks,
		genTimeout: genTimeout,
	}
}

// HandleHangman handles the /hangman command. Guess processing is
// serialized per channel so concurrent guesses cannot interleave their
// board edits.
func (h *HangmanHandler) HandleHangman(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	guess := strings.TrimSpace(c.Message().Payload)

	return h.locks.WithLock(chat.ID, func() error {
		game, exists := h.engine.Get(chat.ID)

		switch {
		case !exists && guess == "":
			return h.startGame(c, chat.ID)
		case !exists:
			return c.Reply("No game is running! Start one with /hangman.")
		case guess == "":
			return c.Reply("A game is already in progress in this channel!")
		default:
			return h.applyGuess(c, chat.ID, game, guess)
		}
	})
}

// startGame generates a word, creates the game and posts the board.
func (h *HangmanHandler) startGame(c tele.Context, channelID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.genTimeout)
	defer cancel()

	word, err := h.generator.PuzzleWord(ctx)
	if err != nil {
		if errors.Is(err, gen.ErrMissingAPIKey) {
			return c.Reply("❌ *Error:* `GEMINI_API_KEY` is missing, cannot get a word.")
		}
		log.Error().Err(err).Int64("channel_id", channelID).Msg("Puzzle word generation failed")
		return c.Reply("❌ Could not start the game, please try again.")
	}

	game, err := h.engine.Start(channelID, word)
	if err != nil {
		return c.Reply("A game is already in progress in this channel!")
	}

	ref, err := h.surface.Send(ctx, channelID, game.Render())
	if err != nil {
		h.engine.Remove(channelID)
		log.Error().Err(err).Int64("channel_id", channelID).Msg("Failed to post hangman board")
		return c.Reply("❌ Could not start the game, please try again.")
	}
	h.engine.SetMessage(channelID, ref)

	log.Info().Int64("channel_id", channelID).Msg("Hangman game started")
	return nil
}

// applyGuess advances the game and edits the posted board in place.
func (h *HangmanHandler) applyGuess(c tele.Context, channelID int64, game *hangman.Game, guess string) error {
	if game.Message.MessageID == 0 {
		h.engine.Remove(channelID)
		return c.Reply("Game state is broken, please start a new game with /hangman.")
	}

	game, err := h.engine.Guess(channelID, guess)
	if err != nil {
		return c.Reply("No game is running! Start one with /hangman.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.genTimeout)
	defer cancel()

	if err := h.surface.Edit(ctx, game.Message, game.Render()); err != nil {
		if errors.Is(err, delivery.ErrMessageNotFound) {
			h.engine.Remove(channelID)
			return c.Reply("The game message was deleted! Game over.")
		}
		log.Error().Err(err).Int64("channel_id", channelID).Msg("Failed to update hangman board")
		return c.Reply(fmt.Sprintf("Error updating game: %v", err))
	}

	if game.Outcome != hangman.InProgress {
		h.engine.Remove(channelID)
		log.Info().
			Int64("channel_id", channelID).
			Bool("won", game.Outcome == hangman.Won).
			Msg("Hangman game finished")
	}

	return c.Reply(fmt.Sprintf("You guessed: `%s`", guess))
}
