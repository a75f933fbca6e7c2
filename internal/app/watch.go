package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/texclip/texclip/internal/clip"
	"github.com/texclip/texclip/internal/convert"
	"github.com/texclip/texclip/internal/fetch"
)

// Watch-mode timing defaults.
const (
	DefaultWatchInterval = 500 * time.Millisecond
	DefaultCooldown      = time.Second
)

// digestSum fingerprints clipboard content. Comparing digests instead of the
// bytes keeps the loop cheap for large payloads.
type digestSum [sha256.Size]byte

func digest(data []byte) digestSum {
	return sha256.Sum256(data)
}

// gate serializes conversions: at most one runs at a time, and triggers that
// arrive while one is in flight are coalesced down to the newest one.
type gate struct {
	mu      sync.Mutex
	busy    bool
	pending []byte
}

// TryStart claims the gate for input. If a conversion is already running the
// input is stashed as pending (replacing any older pending input) and false
// is returned.
func (g *gate) TryStart(input []byte) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		g.pending = input
		return false
	}
	g.busy = true
	return true
}

// Finish releases the gate and hands back the pending input, if any.
func (g *gate) Finish() ([]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
	pending := g.pending
	g.pending = nil
	return pending, pending != nil
}

// changeTracker decides when an observed clipboard value should convert. A
// value fires only after it is seen on two consecutive polls (trailing-edge
// debounce, so mid-copy partial content settles first), and values matching
// our own last output or the last converted input never fire: writing the
// result back to the clipboard must not trigger another conversion.
type changeTracker struct {
	lastSeen   digestSum
	repeats    int
	lastInput  digestSum
	lastOutput digestSum
}

// observe records one polled fingerprint and reports whether to convert now.
func (t *changeTracker) observe(fp digestSum) bool {
	if fp == t.lastInput || fp == t.lastOutput {
		return false
	}
	if fp != t.lastSeen {
		t.lastSeen = fp
		t.repeats = 0
		return false
	}
	t.repeats++
	return t.repeats == 1
}

// markConverted records a completed attempt so neither the input nor the
// written output re-triggers.
func (t *changeTracker) markConverted(input, output digestSum) {
	t.lastInput = input
	t.lastOutput = output
}

// looksLikeHTML reports whether clipboard content plausibly contains markup
// worth converting. Plain prose and our own Markdown output do not.
var htmlTagRe = regexp.MustCompile(`<[a-zA-Z][a-zA-Z0-9-]*(\s|>|/)`)

func looksLikeHTML(data []byte) bool {
	return htmlTagRe.Match(data)
}

// watchResult carries one finished conversion back to the watch loop.
type watchResult struct {
	input    digestSum
	output   digestSum
	markdown string
	err      error
}

// runWatch polls the clipboard until ctx is canceled, converting HTML
// content as it appears and writing the Markdown back.
func runWatch(ctx context.Context, cfg Config) error {
	if cfg.WatchInterval <= 0 {
		cfg.WatchInterval = DefaultWatchInterval
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}

	// fail fast when no clipboard is available instead of ticking forever
	if _, err := clip.ReadText(); err != nil {
		return err
	}

	status := statusLine(cfg)
	defer status.Flush()
	slog.Info("watching clipboard", "interval", cfg.WatchInterval)

	var (
		tracker changeTracker
		g       gate
	)
	results := make(chan watchResult, 1)

	ticker := time.NewTicker(cfg.WatchInterval)
	defer ticker.Stop()

	var cooldownUntil time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case res := <-results:
			tracker.markConverted(res.input, res.output)
			if res.err != nil {
				slog.Error("conversion failed", "error", res.err)
				status.Failure("conversion failed")
			} else {
				status.Success("copied" + statsSuffix(res.markdown, cfg))
			}
			cooldownUntil = time.Now().Add(cfg.Cooldown)

			if pending, ok := g.Finish(); ok && g.TryStart(pending) {
				go convertAsync(pending, cfg, results)
			}

		case <-ticker.C:
			if time.Now().Before(cooldownUntil) {
				continue
			}
			data, err := clip.ReadText()
			if err != nil {
				return err
			}
			if len(data) == 0 || !looksLikeHTML(data) {
				continue
			}
			fp := digest(data)
			if !tracker.observe(fp) {
				continue
			}
			if !g.TryStart(data) {
				continue
			}
			go convertAsync(data, cfg, results)
		}
	}
}

// convertAsync runs one conversion off the poll loop and writes the result
// to the clipboard.
func convertAsync(data []byte, cfg Config, results chan<- watchResult) {
	res := watchResult{input: digest(data)}

	opts := cfg.convertOptions(fetch.ClipboardSource)
	markdown, err := convert.FragmentToMarkdown(string(data), opts)
	if err == nil && strings.TrimSpace(markdown) == "" {
		err = fmt.Errorf("no content converted")
	}
	if err != nil {
		res.err = err
		results <- res
		return
	}

	if _, err := clip.WriteText([]byte(markdown)); err != nil {
		res.err = fmt.Errorf("failed to copy to clipboard: %w", err)
		results <- res
		return
	}

	res.markdown = markdown
	res.output = digest([]byte(markdown))
	results <- res
}
