// Package code extracts preformatted source-code constructs from a DOM
// fragment and replaces them with placeholder tokens that restore to fenced
// Markdown code blocks. This keeps the generic HTML-to-Markdown conversion
// from re-indenting or escaping code bodies.
package code

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/texclip/texclip/internal/placeholder"
)

// language tag conventions: class="language-python", class="lang-js"
var langClassRe = regexp.MustCompile(`(?i)(?:^|\s)(?:language|lang)-([a-zA-Z0-9_#+.-]+)(?:\s|$)`)

// copyButtonLabels are UI-injected strings that code-hosting sites prepend to
// a block's text content (a "copy" button rendered inside the <pre>). A label
// is stripped only when it appears at the very start of the body.
var copyButtonLabels = []string{
	"Copy to clipboard",
	"Copy code",
	"Copy",
	"复制代码",
	"复制",
}

// Extract visits every <pre> construct in doc, resolves a language tag and a
// sanitized body, and replaces the construct with a token registered in reg.
// Constructs with empty or whitespace-only bodies are left unconverted for
// the transpiler's default handling.
func Extract(doc *goquery.Document, reg *placeholder.Registry) {
	doc.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		lang, body := Resolve(pre)
		if strings.TrimSpace(body) == "" {
			slog.Debug("skipping empty code block")
			return
		}

		fence := fenceFor(body)
		rendered := "\n\n" + fence + lang + "\n" + body + "\n" + fence + "\n\n"
		token := reg.Register(rendered)
		pre.ReplaceWithHtml(token)
	})
}

// Resolve determines the language tag and sanitized body text of a
// preformatted construct without mutating it.
func Resolve(pre *goquery.Selection) (lang, body string) {
	lang = detectLanguage(pre)

	// drop buttons and other UI chrome before reading the text
	clone := pre.Clone()
	clone.Find("button, .copy-btn, .copybutton, .clipboard, .line-numbers-rows").Remove()

	// prefer a single <code> child so pre-level headers/footers are excluded
	var text string
	codeChildren := clone.Children().Filter("code")
	if codeChildren.Length() == 1 {
		text = codeChildren.Text()
	} else {
		text = clone.Text()
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = stripCopyLabel(text)
	text = strings.TrimPrefix(text, "\n")
	// trailing blank lines only; interior whitespace is significant
	text = strings.TrimRight(text, " \t\n")

	return lang, text
}

// detectLanguage scans for a language-/lang- class or data attribute on the
// inner code element, an ancestor code element, or the pre itself, in that
// precedence order.
func detectLanguage(pre *goquery.Selection) string {
	if lang := languageOf(pre.Find("code").First()); lang != "" {
		return lang
	}
	if lang := languageOf(pre.Closest("code")); lang != "" {
		return lang
	}
	return languageOf(pre)
}

func languageOf(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	if m := langClassRe.FindStringSubmatch(sel.AttrOr("class", "")); len(m) == 2 {
		return normalizeLang(m[1])
	}
	if v := sel.AttrOr("data-lang", sel.AttrOr("data-language", "")); v != "" {
		return normalizeLang(v)
	}
	return ""
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "golang" {
		lang = "go"
	}
	return lang
}

// stripCopyLabel removes one recognized copy-button label from the leading
// edge of the body, including the line break the label occupied.
func stripCopyLabel(text string) string {
	trimmed := strings.TrimLeft(text, " \t\n")
	for _, label := range copyButtonLabels {
		if !strings.HasPrefix(trimmed, label) {
			continue
		}
		rest := trimmed[len(label):]
		// the label must occupy its own line; "Copyright ..." is code, not chrome
		if rest == "" || rest[0] == '\n' || rest[0] == '\r' {
			return strings.TrimPrefix(strings.TrimPrefix(rest, "\r"), "\n")
		}
	}
	return text
}

// fenceFor widens the fence when the body itself contains a triple backtick.
func fenceFor(body string) string {
	fence := "```"
	for strings.Contains(body, fence) {
		fence += "`"
	}
	return fence
}
