// Package toast provides the transient status line shown after a conversion:
// a short acknowledgment that clears itself after roughly half a second, so
// watch mode can run without scrolling the terminal.
package toast

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// DefaultDuration is how long a toast stays visible before clearing.
const DefaultDuration = 500 * time.Millisecond

// Toast writes transient status messages. On a terminal the message is
// cleared in place after the display duration; on redirected output each
// message is a plain line and nothing is cleared.
type Toast struct {
	writer   io.Writer
	duration time.Duration
	enabled  bool
	mu       sync.Mutex
	wg       sync.WaitGroup
	seq      int
}

// New creates a Toast writing to w, usually os.Stderr. A disabled toast
// (quiet mode) accepts messages and discards them.
func New(w io.Writer, enabled bool) *Toast {
	return &Toast{
		writer:   w,
		duration: DefaultDuration,
		enabled:  enabled,
	}
}

// Success shows a positive acknowledgment, e.g. "copied · 412 tokens".
func (t *Toast) Success(message string) {
	t.show("✓ " + message)
}

// Failure shows an error acknowledgment. The message is transient like any
// other toast; durable errors belong in the log, not here.
func (t *Toast) Failure(message string) {
	t.show("✗ " + message)
}

func (t *Toast) show(message string) {
	if t == nil || !t.enabled {
		return
	}

	t.mu.Lock()
	t.seq++
	seq := t.seq

	if !t.terminal() {
		fmt.Fprintln(t.writer, message)
		t.mu.Unlock()
		return
	}

	fmt.Fprintf(t.writer, "\r\033[2K%s", message)
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		time.Sleep(t.duration)

		t.mu.Lock()
		defer t.mu.Unlock()
		// a newer toast took over the line; let its timer do the clearing
		if t.seq != seq {
			return
		}
		fmt.Fprint(t.writer, "\r\033[2K")
	}()
}

// Flush blocks until every pending clear has run. Call before exit so the
// last toast does not leave a partial line behind.
func (t *Toast) Flush() {
	if t == nil {
		return
	}
	t.wg.Wait()
}

// terminal reports whether the writer is an interactive terminal. Callers
// hold t.mu.
func (t *Toast) terminal() bool {
	f, ok := t.writer.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
