package wordle

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// GuessSchema describes the shape of a valid guess.
type GuessSchema struct {
	WordLength int
	MaxGuesses int
}

// Catalog is the immutable pool of target words plus the guess schema.
// It is injected rather than global so tests can pin the word list and
// the random source.
type Catalog struct {
	words  []string
	schema GuessSchema
	rng    *rand.Rand
}

var ErrEmptyCatalog = errors.New("word catalog is empty")

// NewCatalog builds a catalog from a word pool. Words that do not match the
// schema length are rejected up front so RandomAnswer can never hand out an
// invalid target.
func NewCatalog(words []string, schema GuessSchema, rng *rand.Rand) (*Catalog, error) {
	if schema.WordLength <= 0 {
		schema.WordLength = 5
	}
	if schema.MaxGuesses <= 0 {
		schema.MaxGuesses = 6
	}

	pool := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if len(w) != schema.WordLength {
			return nil, fmt.Errorf("word %q does not match schema length %d", w, schema.WordLength)
		}
		if !isLetters(w) {
			return nil, fmt.Errorf("word %q contains non-letter characters", w)
		}
		pool = append(pool, w)
	}
	if len(pool) == 0 {
		return nil, ErrEmptyCatalog
	}

	return &Catalog{words: pool, schema: schema, rng: rng}, nil
}

// RandomAnswer picks a uniformly random target word.
func (c *Catalog) RandomAnswer() string {
	return c.words[c.rng.Intn(len(c.words))]
}

// Schema returns the guess validation rules.
func (c *Catalog) Schema() GuessSchema {
	return c.schema
}

// ValidGuess reports whether a normalized guess satisfies the schema:
// exact word length, letters only.
func (c *Catalog) ValidGuess(guess string) bool {
	return len(guess) == c.schema.WordLength && isLetters(guess)
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
