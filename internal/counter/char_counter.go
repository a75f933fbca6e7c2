package counter

import "unicode/utf8"

// CharCounter counts UTF-8 runes, not bytes, so CJK text and math symbols
// count as one character each.
type CharCounter struct{}

// NewCharCounter creates a new CharCounter instance.
func NewCharCounter() Counter {
	return &CharCounter{}
}

// Count returns the number of runes in the given text.
func (cc *CharCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return utf8.RuneCountInString(text)
}

// Name returns the name of this counting method.
func (cc *CharCounter) Name() string {
	return "characters"
}
