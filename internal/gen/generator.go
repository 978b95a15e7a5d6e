package gen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const announcerInstruction = "You are a fun, engaging, and concise community announcer bot. " +
	"Generate a short, relevant message based on the user's prompt. " +
	"Do not use markdown titles or headers, just plain text."

const scheduleParserInstruction = "Analyze the user's full request. " +
	"Extract the core announcement message/prompt and the time interval. " +
	"Convert the interval into total seconds. If no interval is found, default to 3600 seconds (1 hour)."

const puzzleWordInstruction = "Generate a single, random, SFW (School/Work-Safe) word for a game of Hangman. " +
	"The word should be between 6 and 12 letters long and must not be a proper noun. " +
	"Only output the JSON object."

// MinIntervalSeconds is the smallest interval a schedule may use.
const MinIntervalSeconds = 10

// Fallback puzzle words used when the upstream word fails validation or
// parsing. Both satisfy the 6-12 letter constraint, so a puzzle start
// never fails on a malformed word.
const (
	fallbackWordInvalid = "default"
	fallbackWordParse   = "fallback"
)

// announcementFallback is posted when the upstream reply carries no text.
const announcementFallback = "AI failed to generate a response."

// Generator builds requests for the four generation use cases and
// validates each response shape.
type Generator struct {
	client *Client
}

// NewGenerator creates a Generator backed by the given client.
func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

// Announcement generates free-text announcement content from a prompt.
// An empty upstream reply yields a fixed failure line rather than an
// empty announcement.
func (g *Generator) Announcement(ctx context.Context, prompt string) (string, error) {
	req := &Request{
		Contents:          []Content{{Parts: []Part{{Text: prompt}}}},
		SystemInstruction: &Content{Parts: []Part{{Text: announcerInstruction}}},
	}
	text, err := g.client.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return announcementFallback, nil
	}
	return text, nil
}

// ParseScheduleRequest extracts an announcement prompt and an interval in
// seconds from a free-form request using structured output. Intervals
// below MinIntervalSeconds are clamped up, never rejected. A malformed
// structured reply is a hard error.
func (g *Generator) ParseScheduleRequest(ctx context.Context, fullPrompt string) (string, int, error) {
	schema := &Schema{
		Type: "OBJECT",
		Properties: map[string]*Schema{
			"announcement_prompt": {
				Type:        "STRING",
				Description: "The concise message or prompt to be used for the periodic announcement.",
			},
			"interval_seconds": {
				Type:        "INTEGER",
				Description: "The time interval extracted from the prompt, converted into total seconds. Must be at least 10 seconds.",
			},
		},
		Required: []string{"announcement_prompt", "interval_seconds"},
	}

	req := &Request{
		Contents:          []Content{{Parts: []Part{{Text: fullPrompt}}}},
		SystemInstruction: &Content{Parts: []Part{{Text: scheduleParserInstruction}}},
		GenerationConfig: &GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	}

	text, err := g.client.Generate(ctx, req)
	if err != nil {
		return "", 0, err
	}

	var parsed struct {
		AnnouncementPrompt string `json:"announcement_prompt"`
		IntervalSeconds    int    `json:"interval_seconds"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	if parsed.IntervalSeconds < MinIntervalSeconds {
		parsed.IntervalSeconds = MinIntervalSeconds
	}
	return parsed.AnnouncementPrompt, parsed.IntervalSeconds, nil
}

// PersonaLine generates one line for the given persona. An empty upstream
// reply yields the persona's canned fallback instead of an error.
func (g *Generator) PersonaLine(ctx context.Context, p Persona) (string, error) {
	req := &Request{
		Contents:          []Content{{Parts: []Part{{Text: p.UserTurn}}}},
		SystemInstruction: &Content{Parts: []Part{{Text: p.SystemInstruction}}},
	}
	text, err := g.client.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return p.Fallback, nil
	}
	return text, nil
}

// PuzzleWord requests a 6-12 letter alphabetic word for a new hangman
// game. A missing API key is surfaced to the caller; any other failure
// returns a fixed fallback word so game start never fails on a malformed
// word.
func (g *Generator) PuzzleWord(ctx context.Context) (string, error) {
	schema := &Schema{
		Type: "OBJECT",
		Properties: map[string]*Schema{
			"word": {
				Type:        "STRING",
				Description: "A single SFW hangman word, 6-12 chars, no proper nouns.",
			},
		},
		Required: []string{"word"},
	}

	req := &Request{
		Contents:          []Content{{Parts: []Part{{Text: "Give me one hangman word."}}}},
		SystemInstruction: &Content{Parts: []Part{{Text: puzzleWordInstruction}}},
		GenerationConfig: &GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	}

	text, err := g.client.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, ErrMissingAPIKey) {
			return "", err
		}
		log.Warn().Err(err).Msg("Puzzle word generation failed, using fallback")
		return fallbackWordParse, nil
	}

	var parsed struct {
		Word string `json:"word"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		log.Warn().Err(err).Msg("Puzzle word reply unparseable, using fallback")
		return fallbackWordParse, nil
	}

	word := strings.ToLower(parsed.Word)
	if !validPuzzleWord(word) {
		log.Warn().Str("word", parsed.Word).Msg("Puzzle word failed validation, using fallback")
		return fallbackWordInvalid, nil
	}
	return word, nil
}

// validPuzzleWord reports whether w is 6-12 lowercase ASCII letters.
func validPuzzleWord(w string) bool {
	if len(w) < 6 || len(w) > 12 {
		return false
	}
	for _, r := range w {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
