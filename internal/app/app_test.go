package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempHTML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.html")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestRunConvertsFileSource(t *testing.T) {
	path := writeTempHTML(t, `<h1>Title</h1><p>Some <em>body</em> text.</p>`)

	got, err := Run(context.Background(), Config{
		Sources:    []string{path},
		IncludeAll: true,
		Quiet:      true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.Contains(got, "# Title") {
		t.Errorf("output missing heading: %q", got)
	}
	if !strings.Contains(got, "*body*") && !strings.Contains(got, "_body_") {
		t.Errorf("output missing emphasis: %q", got)
	}
}

func TestRunConvertsMathFromFile(t *testing.T) {
	path := writeTempHTML(t, `<p>Energy: <span class="katex"><span class="katex-mathml"><math><semantics><mrow><mi>E</mi></mrow><annotation encoding="application/x-tex">E=mc^2</annotation></semantics></math></span></span></p>`)

	got, err := Run(context.Background(), Config{
		Sources:    []string{path},
		IncludeAll: true,
		Quiet:      true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(got, "$E=mc^2$") {
		t.Errorf("output missing inline math: %q", got)
	}
}

func TestRunJoinsMultipleSources(t *testing.T) {
	first := writeTempHTML(t, `<p>first part</p>`)
	second := writeTempHTML(t, `<p>second part</p>`)

	got, err := Run(context.Background(), Config{
		Sources:    []string{first, second},
		IncludeAll: true,
		Quiet:      true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(got, "first part") || !strings.Contains(got, "second part") {
		t.Errorf("combined output missing a source: %q", got)
	}
}

func TestRunSkipsFailingSource(t *testing.T) {
	good := writeTempHTML(t, `<p>good content</p>`)

	got, err := Run(context.Background(), Config{
		Sources:    []string{"/does/not/exist.html", good},
		IncludeAll: true,
		Quiet:      true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(got, "good content") {
		t.Errorf("surviving source missing: %q", got)
	}
}

func TestRunNoSources(t *testing.T) {
	if _, err := Run(context.Background(), Config{Quiet: true}); err == nil {
		t.Fatal("expected error with no sources")
	}
}

func TestConvertOptions(t *testing.T) {
	cfg := Config{
		Selector:         "article",
		IncludeAll:       true,
		Sanitize:         true,
		MergeDisplayMath: true,
	}

	opts := cfg.convertOptions("https://en.wikipedia.org/wiki/Energy")
	if opts.Selector != "article" || !opts.IncludeAll || !opts.Sanitize {
		t.Errorf("options not carried over: %+v", opts)
	}
	if opts.BaseURL == nil || opts.BaseURL.Hostname() != "en.wikipedia.org" {
		t.Errorf("BaseURL = %v, want en.wikipedia.org", opts.BaseURL)
	}
	if !opts.Wiki.StripRedundantStyling {
		t.Error("wiki styling stripping should default on")
	}
	if !opts.Post.MergeDisplayMath {
		t.Error("MergeDisplayMath not carried over")
	}
	if opts.Post.MaxBlankLines != 1 {
		t.Errorf("MaxBlankLines = %d, want postprocessor default 1", opts.Post.MaxBlankLines)
	}

	cfg.KeepWikiStyling = true
	cfg.MaxBlankLines = 2
	opts = cfg.convertOptions("local.html")
	if opts.BaseURL != nil {
		t.Errorf("BaseURL for file source = %v, want nil", opts.BaseURL)
	}
	if opts.Wiki.StripRedundantStyling {
		t.Error("KeepWikiStyling must disable stripping")
	}
	if opts.Post.MaxBlankLines != 2 {
		t.Errorf("MaxBlankLines = %d, want 2", opts.Post.MaxBlankLines)
	}
}
