// Package app contains the core application logic for the texclip CLI tool.
// It handles the conversion workflow separated from CLI concerns.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/texclip/texclip/internal/clip"
	"github.com/texclip/texclip/internal/convert"
	"github.com/texclip/texclip/internal/counter"
	"github.com/texclip/texclip/internal/fetch"
	"github.com/texclip/texclip/internal/toast"
)

// Config holds all configuration options for the texclip application.
type Config struct {
	Sources          []string // URLs, file paths, "clipboard", or "-" for stdin
	Selector         string   // CSS selector scoping the conversion
	IncludeAll       bool     // skip readability main-content extraction
	Sanitize         bool     // harden untrusted input before conversion
	Copy             bool     // write the result to the system clipboard
	Watch            bool     // keep converting clipboard changes until canceled
	WatchInterval    time.Duration
	Cooldown         time.Duration // minimum delay between watch conversions
	CountingMethod   counter.CountingMethod
	ShowStats        bool // report size of the copied text
	MergeDisplayMath bool
	KeepWikiStyling  bool // leave \displaystyle and brace wrappers in wiki math
	MaxBlankLines    int  // 0 means the postprocessor default
	Quiet            bool // suppress the status line
	Debug            bool
}

// Run executes the texclip application logic with the given configuration.
// In watch mode it blocks until ctx is canceled; otherwise it performs one
// conversion pass and returns the Markdown.
func Run(ctx context.Context, cfg Config) (string, error) {
	if cfg.Watch {
		return "", runWatch(ctx, cfg)
	}

	if len(cfg.Sources) == 0 {
		return "", fmt.Errorf("no sources provided")
	}

	markdown, err := convertSources(ctx, cfg)
	if err != nil {
		return "", err
	}

	if cfg.Copy {
		if err := copyWithStatus(markdown, cfg, statusLine(cfg)); err != nil {
			return "", err
		}
	}
	return markdown, nil
}

// convertSources converts every source and joins the results.
func convertSources(ctx context.Context, cfg Config) (string, error) {
	var combined strings.Builder

	for _, source := range cfg.Sources {
		markdown, err := processSource(ctx, source, cfg)
		if err != nil {
			if !cfg.Quiet {
				fmt.Fprintf(os.Stderr, "Warning: failed to process source %q: %v\n", source, err)
			}
			continue
		}

		if combined.Len() > 0 {
			combined.WriteString("\n\n")
		}
		combined.WriteString(markdown)
	}

	if combined.Len() == 0 {
		return "", fmt.Errorf("no content converted from any source")
	}
	return combined.String(), nil
}

// processSource fetches one source and converts it to Markdown. Clipboard
// and stdin sources are treated as fragments; URLs and files go through the
// full-document path.
func processSource(ctx context.Context, source string, cfg Config) (string, error) {
	reader, err := fetch.GetContent(ctx, source)
	if err != nil {
		return "", fmt.Errorf("failed to fetch content: %w", err)
	}
	defer reader.Close()

	opts := cfg.convertOptions(source)

	var markdown string
	if source == fetch.ClipboardSource || source == "-" {
		raw, err := io.ReadAll(reader)
		if err != nil {
			return "", fmt.Errorf("failed to read content: %w", err)
		}
		markdown, err = convert.FragmentToMarkdown(string(raw), opts)
		if err != nil {
			return "", err
		}
	} else {
		markdown, err = convert.ToMarkdown(reader, opts)
		if err != nil {
			return "", err
		}
	}

	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("no content converted")
	}
	return markdown, nil
}

// convertOptions maps the application config onto one conversion pass.
func (cfg Config) convertOptions(source string) convert.Options {
	opts := convert.DefaultOptions()
	opts.Selector = cfg.Selector
	opts.IncludeAll = cfg.IncludeAll
	opts.Sanitize = cfg.Sanitize
	opts.BaseURL = fetch.BaseURL(source)
	opts.Wiki.StripRedundantStyling = !cfg.KeepWikiStyling
	opts.Post.MergeDisplayMath = cfg.MergeDisplayMath
	if cfg.MaxBlankLines > 0 {
		opts.Post.MaxBlankLines = cfg.MaxBlankLines
	}
	return opts
}

// statusLine builds the transient status reporter for this run.
func statusLine(cfg Config) *toast.Toast {
	return toast.New(os.Stderr, !cfg.Quiet)
}

// copyWithStatus writes markdown to the clipboard and acknowledges on the
// status line, with size stats when configured.
func copyWithStatus(markdown string, cfg Config, status *toast.Toast) error {
	if _, err := clip.WriteText([]byte(markdown)); err != nil {
		status.Failure("copy failed: clipboard unavailable")
		status.Flush()
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}

	status.Success("copied" + statsSuffix(markdown, cfg))
	status.Flush()
	return nil
}

// statsSuffix formats the optional size report, e.g. " · 412 tokens".
func statsSuffix(markdown string, cfg Config) string {
	if !cfg.ShowStats {
		return ""
	}
	c, err := counter.NewCounter(cfg.CountingMethod)
	if err != nil {
		return ""
	}
	return " · " + counter.Summary(markdown, cfg.CountingMethod, c)
}
