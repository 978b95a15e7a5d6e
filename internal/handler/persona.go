package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"announcer-bot/internal/gen"
)

// PersonaHandler handles the no-argument persona compliment/insult
// commands. Each command binds one persona preset to a reply frame.
type PersonaHandler struct {
	generator  *gen.Generator
	genTimeout time.Duration
}

// NewPersonaHandler creates a new PersonaHandler.
func NewPersonaHandler(generator *gen.Generator, genTimeout time.Duration) *PersonaHandler {
	return &PersonaHandler{generator: generator, genTimeout: genTimeout}
}

// Handle returns a handler that generates one line for the persona and
// replies with it framed by the given format (one %s verb).
func (h *PersonaHandler) Handle(p gen.Persona, frame string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), h.genTimeout)
		defer cancel()

		line, err := h.generator.PersonaLine(ctx, p)
		if err != nil {
			if errors.Is(err, gen.ErrMissingAPIKey) {
				return c.Reply("❌ *Error:* `GEMINI_API_KEY` is missing.")
			}
			log.Error().Err(err).Str("persona", p.Name).Msg("Persona line generation failed")
			return c.Reply(fmt.Sprintf("❌ *AI request failed!* Reason: %v", err))
		}

		return c.Reply(fmt.Sprintf(frame, line))
	}
}

// Reply frames for the four persona commands.
const (
	SheaComplimentFrame = "✨ A message for Shea: %s"
	SheaInsultFrame     = "☕ A kind message for Shea: %s"
	LyraComplimentFrame = "💖 A truly sincere, yet slightly confusing, message for Lyra: %s"
	MiwaComplimentFrame = "🍎 An oddly specific message for Miwa: %s"
)
