package hangman

import (
	"errors"
	"sync"

	"announcer-bot/internal/delivery"
)

// Errors for the game engine.
var (
	// ErrGameInProgress rejects a start while a game is already running.
	ErrGameInProgress = errors.New("a game is already in progress in this channel")

	// ErrNoGame is returned when a channel has no active game.
	ErrNoGame = errors.New("no game is running in this channel")
)

// Engine holds one game per channel behind a mutex. The map is never
// exposed; all mutation goes through the operations below.
type Engine struct {
	mu    sync.Mutex
	games map[int64]*Game
}

// NewEngine creates an empty Engine.
func NewEngine() *Engine {
	return &Engine{games: make(map[int64]*Game)}
}

// Start creates a game for the channel. A start while a game is running
// is rejected without mutating state.
func (e *Engine) Start(channelID int64, word string) (*Game, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.games[channelID]; exists {
		return nil, ErrGameInProgress
	}
	g := NewGame(word)
	e.games[channelID] = g
	return g, nil
}

// Get returns the channel's game, if any.
func (e *Engine) Get(channelID int64) (*Game, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.games[channelID]
	return g, ok
}

// SetMessage stores the rendered message reference after the first render.
func (e *Engine) SetMessage(channelID int64, ref delivery.MessageRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if g, ok := e.games[channelID]; ok {
		g.Message = ref
	}
}

// Guess applies a guess to the channel's game and reports the updated
// game. ErrNoGame when the channel has no active game.
func (e *Engine) Guess(channelID int64, raw string) (*Game, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.games[channelID]
	if !ok {
		return nil, ErrNoGame
	}
	g.Guess(raw)
	return g, nil
}

// Remove deletes the channel's game. Called on a terminal outcome or when
// the rendered message is confirmed missing. Idempotent.
func (e *Engine) Remove(channelID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.games, channelID)
}

// Count returns the number of active games.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.games)
}
