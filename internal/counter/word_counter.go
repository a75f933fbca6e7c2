package counter

import "strings"

// WordCounter counts whitespace-separated words. Markdown punctuation and
// math/code bodies count like any other text.
type WordCounter struct{}

// NewWordCounter creates a new WordCounter instance.
func NewWordCounter() Counter {
	return &WordCounter{}
}

// Count returns the number of words in the given text using strings.Fields,
// which splits on any Unicode whitespace.
func (wc *WordCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}

// Name returns the name of this counting method.
func (wc *WordCounter) Name() string {
	return "words"
}
