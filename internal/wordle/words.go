package wordle

import (
	_ "embed"
	"os"
	"strings"
)

//go:embed words.txt
var embeddedWords string

// DefaultWords returns the built-in five-letter target pool.
func DefaultWords() []string {
	return splitWords(embeddedWords)
}

// LoadWords reads a newline-separated word list from disk, falling back to
// the embedded pool when path is empty.
func LoadWords(path string) ([]string, error) {
	if path == "" {
		return DefaultWords(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return splitWords(string(data)), nil
}

func splitWords(raw string) []string {
	var words []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			words = append(words, line)
		}
	}
	return words
}
