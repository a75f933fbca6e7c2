// Package clip wraps system clipboard access. Initialization talks to the
// windowing system and can fail on headless machines, so it happens once and
// every caller sees the same result.
package clip

import (
	"context"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

func ensureInit() error {
	initOnce.Do(func() {
		defer func() {
			// clipboard.Init panics on some platforms instead of returning
			// an error when no display is available
			if r := recover(); r != nil {
				initErr = fmt.Errorf("clipboard unavailable: %v", r)
			}
		}()
		if err := clipboard.Init(); err != nil {
			initErr = fmt.Errorf("clipboard unavailable: %w", err)
		}
	})
	return initErr
}

// ReadText returns the current text clipboard contents.
func ReadText() ([]byte, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	return clipboard.Read(clipboard.FmtText), nil
}

// WriteText places text on the clipboard. The returned channel closes when
// another application overwrites the written content; most callers ignore it.
func WriteText(text []byte) (<-chan struct{}, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	return clipboard.Write(clipboard.FmtText, text), nil
}

// WatchText streams clipboard changes until ctx is canceled.
func WatchText(ctx context.Context) (<-chan []byte, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	return clipboard.Watch(ctx, clipboard.FmtText), nil
}
