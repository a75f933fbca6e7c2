package counter

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter implements token counting using tiktoken with the cl100k_base
// encoding. In watch mode the same instance is reused across conversions, so
// encoding access is guarded for concurrent callers.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

// NewTokenCounter creates a new TokenCounter with cl100k_base encoding.
// Initialization downloads or loads the encoding tables, so construct once
// and reuse.
func NewTokenCounter() (Counter, error) {
	slog.Debug("initializing token counter", "encoding", "cl100k_base")

	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cl100k_base encoding: %w", err)
	}

	return &TokenCounter{encoding: encoding}, nil
}

// Count returns the number of tokens in the given text. Safe for concurrent
// use.
func (tc *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	tc.mu.RLock()
	defer tc.mu.RUnlock()

	// nil params mean no special tokens allowed or disallowed
	return len(tc.encoding.Encode(text, nil, nil))
}

// Name returns the name of this counting method.
func (tc *TokenCounter) Name() string {
	return "tokens (cl100k_base)"
}
