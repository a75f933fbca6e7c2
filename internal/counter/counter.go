// Package counter measures converted Markdown before it is copied to the
// clipboard, so the status line can report what a paste will cost.
//
// Three strategies are available through the Counter interface: token counting
// (tiktoken with the cl100k_base encoding, the default, matching what LLM
// chat interfaces charge for pasted text), word counting, and character
// counting.
package counter

import "fmt"

// Counter defines the interface for the text counting strategies.
type Counter interface {
	// Count returns the number of units (tokens, words, or characters) in
	// the given text.
	Count(text string) int

	// Name returns a human-readable name for this counting method (for
	// logging and the status line).
	Name() string
}

// CountingMethod represents the available counting strategies.
type CountingMethod int

const (
	// Tokens uses tiktoken with cl100k_base encoding (default)
	Tokens CountingMethod = iota
	// Words counts words using whitespace splitting
	Words
	// Characters counts individual characters including whitespace
	Characters
)

// String returns the string representation of the counting method.
func (cm CountingMethod) String() string {
	switch cm {
	case Tokens:
		return "tokens"
	case Words:
		return "words"
	case Characters:
		return "characters"
	default:
		return "unknown"
	}
}

// ParseMethod maps a flag value to a counting method.
func ParseMethod(s string) (CountingMethod, error) {
	switch s {
	case "tokens", "token":
		return Tokens, nil
	case "words", "word":
		return Words, nil
	case "chars", "characters", "char":
		return Characters, nil
	default:
		return Tokens, fmt.Errorf("unknown counting method: %q (want tokens, words, or chars)", s)
	}
}

// NewCounter creates a Counter for the specified method. Returns an error if
// the counter cannot be initialized (e.g., the tiktoken encoding fails to
// load).
func NewCounter(method CountingMethod) (Counter, error) {
	switch method {
	case Tokens:
		return NewTokenCounter()
	case Words:
		return NewWordCounter(), nil
	case Characters:
		return NewCharCounter(), nil
	default:
		return NewTokenCounter()
	}
}

// Summary is one formatted status-line fragment, e.g. "412 tokens".
func Summary(text string, method CountingMethod, c Counter) string {
	return fmt.Sprintf("%d %s", c.Count(text), method)
}
