// Package convert orchestrates the HTML-fragment-to-Markdown pipeline: it
// extracts and protects math and code behind placeholder tokens, runs the
// generic HTML-to-Markdown transpiler over the sanitized remainder, restores
// the protected content, and postprocesses the result into stable,
// minimal-diff Markdown.
package convert

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/texclip/texclip/internal/code"
	"github.com/texclip/texclip/internal/mathml"
	"github.com/texclip/texclip/internal/mdpost"
	"github.com/texclip/texclip/internal/placeholder"
	"github.com/texclip/texclip/internal/sanitize"
	"github.com/texclip/texclip/internal/selection"
	"github.com/texclip/texclip/internal/tex"
)

// Options configures one conversion pass.
type Options struct {
	// Selector scopes conversion to matching elements, analogous to an
	// on-page selection. Empty means the whole input.
	Selector string
	// IncludeAll skips readability main-content extraction for full
	// documents.
	IncludeAll bool
	// BaseURL provides link resolution context and the host used for
	// MediaWiki detection. May be nil.
	BaseURL *url.URL
	// Sanitize enables the hardening pass before extraction.
	Sanitize bool
	// Wiki configures the MediaWiki math normalizer.
	Wiki tex.WikiPolicy
	// Post configures Markdown postprocessing.
	Post mdpost.Options
	// MathML is the pluggable MathML-to-LaTeX converter. Nil falls back to
	// the built-in converter; extraction degrades to raw text content only
	// when conversion fails.
	MathML mathml.ConvertFunc
}

// DefaultOptions returns the options the CLI uses absent flags.
func DefaultOptions() Options {
	return Options{
		Wiki: tex.WikiPolicy{StripRedundantStyling: true},
		Post: mdpost.Defaults(),
	}
}

func (o Options) mathmlConverter() mathml.ConvertFunc {
	if o.MathML != nil {
		return o.MathML
	}
	return mathml.Convert
}

func (o Options) host() string {
	if o.BaseURL == nil {
		return ""
	}
	return o.BaseURL.Hostname()
}

// ToMarkdown converts HTML read from r. Full documents without a selector go
// through readability main-content extraction first (unless IncludeAll);
// everything else is converted as-is.
func ToMarkdown(r io.Reader, opts Options) (string, error) {
	if opts.Selector != "" {
		return selectorToMarkdown(r, opts)
	}
	if !opts.IncludeAll {
		return mainContentToMarkdown(r, opts)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read HTML content: %w", err)
	}
	return FragmentToMarkdown(string(raw), opts)
}

// mainContentToMarkdown extracts the main article content with readability
// before running the pipeline.
func mainContentToMarkdown(r io.Reader, opts Options) (string, error) {
	baseURL := opts.BaseURL
	if baseURL == nil {
		baseURL = &url.URL{}
	}

	article, err := readability.FromReader(r, baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract main content: %w", err)
	}
	return FragmentToMarkdown(article.Content, opts)
}

// selectorToMarkdown converts only the elements matching opts.Selector,
// wrapped to preserve their structure.
func selectorToMarkdown(r io.Reader, opts Options) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	sel := doc.Find(opts.Selector)
	if sel.Length() == 0 {
		return "", fmt.Errorf("no elements found matching selector: %s", opts.Selector)
	}

	var parts []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if part, err := goquery.OuterHtml(s); err == nil {
			parts = append(parts, part)
		}
	})
	if len(parts) == 0 {
		return "", fmt.Errorf("failed to extract HTML from selection")
	}

	return FragmentToMarkdown(strings.Join(parts, "\n"), opts)
}

// FromRange converts the region described by rng, expanding its boundaries
// first so partially-selected math constructs are captured whole, then
// cloning the region so the source tree is never mutated.
func FromRange(rng selection.Range, opts Options) (string, error) {
	selection.Expand(&rng)

	fragment := selection.CloneContents(rng)
	fragHTML, err := selection.Render(fragment)
	if err != nil {
		return "", fmt.Errorf("failed to serialize selection: %w", err)
	}
	return FragmentToMarkdown(fragHTML, opts)
}

// FragmentToMarkdown runs the core pipeline over an HTML fragment.
//
// Order matters: legacy TeX scripts are pulled out before sanitization (which
// drops script content), code before math (so a pre block containing TeX-like
// text is treated as code), and the MediaWiki normalizer before the generic
// math extractor (so the same construct is never resolved twice). Math
// placeholders are restored before code placeholders, keeping the two token
// namespaces from ever being confused.
func FragmentToMarkdown(fragment string, opts Options) (string, error) {
	mathReg := placeholder.NewMath()
	codeReg := placeholder.NewCode()
	conv := opts.mathmlConverter()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML fragment: %w", err)
	}

	tex.ExtractTexScripts(doc, mathReg)

	if opts.Sanitize {
		doc, err = resanitize(doc)
		if err != nil {
			return "", err
		}
	}

	code.Extract(doc, codeReg)
	if tex.IsWikiContext(opts.host(), doc) {
		tex.NormalizeWikiMath(doc, mathReg, conv, opts.Wiki)
	}
	tex.ExtractMath(doc, mathReg, conv)
	tex.ProtectRawTeX(doc, mathReg)

	prepared, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize prepared fragment: %w", err)
	}

	markdown, err := transpile(prepared, opts)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	// math first, then code; see the placeholder package for why the order
	// is load-bearing
	markdown = mathReg.Restore(markdown)
	markdown = codeReg.Restore(markdown)

	slog.Debug("conversion pass complete",
		"mathUnits", mathReg.Len(), "codeUnits", codeReg.Len(), "bytes", len(markdown))

	return mdpost.Process(markdown, opts.Post), nil
}

// resanitize reserializes the document through the hardening policy and
// parses the cleaned result.
func resanitize(doc *goquery.Document) (*goquery.Document, error) {
	raw, err := doc.Find("body").Html()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document for sanitizing: %w", err)
	}
	clean := sanitize.Clean(raw)
	cleaned, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return nil, fmt.Errorf("failed to reparse sanitized HTML: %w", err)
	}
	return cleaned, nil
}

// transpile runs the external HTML-to-Markdown converter with fenced code
// blocks, ATX headings, and the GitHub-flavored extensions (tables,
// strikethrough, task lists).
func transpile(htmlStr string, opts Options) (string, error) {
	domain := ""
	if opts.BaseURL != nil {
		domain = opts.BaseURL.String()
	}

	converter := md.NewConverter(domain, true, &md.Options{
		CodeBlockStyle: "fenced",
		HeadingStyle:   "atx",
	})
	converter.Use(plugin.GitHubFlavored())

	// leftover rendered-math chrome (an unconvertible construct that every
	// resolution strategy skipped) renders as its text content rather than
	// nested markup noise
	converter.AddRules(md.Rule{
		Filter: []string{"mjx-container"},
		Replacement: func(_ string, selec *goquery.Selection, _ *md.Options) *string {
			text := strings.TrimSpace(selec.Text())
			return &text
		},
	})

	return converter.ConvertString(htmlStr)
}

// ParseDocument parses a full HTML document for range-based conversion.
func ParseDocument(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML document: %w", err)
	}
	return doc, nil
}
