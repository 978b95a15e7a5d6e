// Package hangman implements the per-channel word-guessing game: a
// single-player state machine advanced on each guess, plus the rendered
// game board.
package hangman

import (
	"fmt"
	"sort"
	"strings"

	"announcer-bot/internal/delivery"
)

// StartingTries is the number of wrong guesses a player may make.
const StartingTries = 6

// gallows holds the seven board illustrations, indexed by wrong-guess
// count (0 through 6).
var gallows = [7]string{
	`
 +---+
 |   |
     |
     |
     |
     |
=========
`,
	`
 +---+
 |   |
 O   |
     |
     |
     |
=========
`,
	`
 +---+
 |   |
 O   |
 |   |
     |
     |
=========
`,
	`
 +---+
 |   |
 O   |
/|   |
     |
     |
=========
`,
	`
 +---+
 |   |
 O   |
/|\  |
     |
     |
=========
`,
	`
 +---+
 |   |
 O   |
/|\  |
/    |
     |
=========
`,
	`
 +---+
 |   |
 O   |
/|\  |
/ \  |
     |
=========
`,
}

// Outcome is the game's lifecycle state. Won and Lost are terminal.
type Outcome int

const (
	InProgress Outcome = iota
	Won
	Lost
)

// Game is the state of a single hangman game.
type Game struct {
	Word      string
	Guesses   map[string]struct{}
	TriesLeft int
	Message   delivery.MessageRef
	Outcome   Outcome
}

// NewGame creates a game around the given secret word. The word is
// lowercased; length validation happens at word generation.
func NewGame(word string) *Game {
	return &Game{
		Word:      strings.ToLower(word),
		Guesses:   make(map[string]struct{}),
		TriesLeft: StartingTries,
	}
}

// Guess applies one guess to the game. Case is normalized; repeat guesses
// and guesses after a terminal outcome are no-ops and never cost an
// attempt. Multi-character input is a whole-word guess; a wrong word
// costs one attempt, the same as a wrong letter. The win condition is
// checked before the loss condition, so a guess that completes the word
// on the last attempt still wins.
func (g *Game) Guess(raw string) {
	guess := strings.ToLower(raw)
	if g.Outcome != InProgress {
		return
	}
	if _, repeated := g.Guesses[guess]; repeated {
		return
	}

	if len(guess) > 1 {
		if guess == g.Word {
			for _, letter := range g.Word {
				g.Guesses[string(letter)] = struct{}{}
			}
			g.Outcome = Won
			return
		}
		g.Guesses[guess] = struct{}{}
		g.TriesLeft--
	} else if len(guess) == 1 {
		g.Guesses[guess] = struct{}{}
		if !strings.Contains(g.Word, guess) {
			g.TriesLeft--
		}
	}

	if g.revealed() {
		g.Outcome = Won
		return
	}
	if g.TriesLeft <= 0 {
		g.TriesLeft = 0
		g.Outcome = Lost
	}
}

// revealed reports whether every letter of the word has been guessed.
func (g *Game) revealed() bool {
	for _, letter := range g.Word {
		if _, ok := g.Guesses[string(letter)]; !ok {
			return false
		}
	}
	return true
}

// Render returns the display text for the current game state.
func (g *Game) Render() string {
	if g.Outcome == Won {
		return fmt.Sprintf("🎉 *You win!* 🎉\nThe word was: *%s*", g.Word)
	}
	if g.Outcome == Lost {
		return fmt.Sprintf("💀 *You lose!* 💀\nThe word was: *%s*\n```%s```", g.Word, gallows[len(gallows)-1])
	}

	masked := make([]string, 0, len(g.Word))
	for _, letter := range g.Word {
		if _, ok := g.Guesses[string(letter)]; ok {
			masked = append(masked, string(letter))
		} else {
			masked = append(masked, "＿")
		}
	}

	var wrong []string
	for guess := range g.Guesses {
		if len(guess) == 1 && !strings.Contains(g.Word, guess) {
			wrong = append(wrong, guess)
		}
	}
	sort.Strings(wrong)

	guessed := "Guessed: (None yet)"
	if len(wrong) > 0 {
		guessed = fmt.Sprintf("Guessed: `%s`", strings.Join(wrong, " "))
	}

	return fmt.Sprintf(
		"*Let's play Hangman!*\n```%s```\n*Word:* `%s`\n\nTries left: %d\n%s\n\nUse /hangman <guess> to guess a letter or the whole word.",
		gallows[StartingTries-g.TriesLeft],
		strings.Join(masked, " "),
		g.TriesLeft,
		guessed,
	)
}
