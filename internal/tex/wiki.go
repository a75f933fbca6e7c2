package tex

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/texclip/texclip/internal/mathml"
	"github.com/texclip/texclip/internal/placeholder"
)

// WikiPolicy configures the MediaWiki math normalizer.
type WikiPolicy struct {
	// StripRedundantStyling removes one redundant outer brace group and a
	// leading \displaystyle/\textstyle macro from resolved LaTeX. The
	// heuristic follows MediaWiki's TeX output convention rather than a
	// formal specification, so it is policy-gated.
	StripRedundantStyling bool
}

// wikiHostSuffixes are the canonical MediaWiki-family domains. Mirror and
// proxy sites are caught by the DOM signature check instead.
var wikiHostSuffixes = []string{
	"wikipedia.org",
	"wikimedia.org",
	"wiktionary.org",
	"wikibooks.org",
	"wikiversity.org",
	"wikisource.org",
	"wikiquote.org",
	"wikinews.org",
	"wikivoyage.org",
	"mediawiki.org",
}

const mathRenderURLPart = "/media/math/render/"

// IsWikiContext reports whether MediaWiki math handling applies: either the
// document host has a known MediaWiki-family suffix, or the DOM carries
// MediaWiki math signature markup (required for mirror/proxy sites).
func IsWikiContext(host string, doc *goquery.Document) bool {
	host = strings.ToLower(host)
	for _, suffix := range wikiHostSuffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	if doc.Find(".mwe-math-element").Length() > 0 {
		return true
	}
	found := false
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if strings.Contains(img.AttrOr("src", ""), mathRenderURLPart) {
			found = true
			return false
		}
		return true
	})
	return found
}

// NormalizeWikiMath processes MediaWiki math wrappers ahead of the generic
// extractor so the same construct is never resolved through two different
// paths. Resolution order: fallback-image alt/aria-label text (already-clean
// TeX), then MathML conversion of the nested <math> node. Raw MathML text
// content is explicitly never used: on this source it yields unreadable
// {\displaystyle ...} fragments with escaped braces.
func NormalizeWikiMath(doc *goquery.Document, reg *placeholder.Registry, conv mathml.ConvertFunc, policy WikiPolicy) {
	doc.Find(".mwe-math-element").Each(func(_ int, wrapper *goquery.Selection) {
		latex, display, inlineForced := resolveWikiUnit(wrapper, conv)
		if latex == "" {
			slog.Debug("unresolvable MediaWiki math wrapper, leaving in place")
			return
		}

		if policy.StripRedundantStyling {
			var macroDisplay bool
			latex, macroDisplay = StripWikiStyling(latex)
			// an explicit inline fallback-image class is authoritative even
			// over a stripped \displaystyle macro
			if macroDisplay && !inlineForced {
				display = true
			}
		}

		replaceWithToken(wrapper, reg, Unit{LaTeX: latex, Display: display, Kind: KindMediaWiki})
	})

	// any math-render image left outside a handled wrapper must go: the
	// transpiler would otherwise emit it as a broken Markdown image
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		if strings.Contains(img.AttrOr("src", ""), mathRenderURLPart) {
			img.Remove()
		}
	})
}

// resolveWikiUnit returns the LaTeX, display mode, and whether an explicit
// inline signal was present for one wrapper.
//
// Display mode combines three independent signals: the nested MathML node's
// display=block attribute or a block-marking fallback-image class force
// display; an inline-marking fallback-image class forces inline and is
// authoritative over the MathML signal when they disagree.
func resolveWikiUnit(wrapper *goquery.Selection, conv mathml.ConvertFunc) (latex string, display, inlineForced bool) {
	img := wrapper.Find("img.mwe-math-fallback-image-inline, img.mwe-math-fallback-image-display").First()
	if img.Length() == 0 {
		img = wrapper.Find("img").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.AttrOr("src", ""), mathRenderURLPart)
		}).First()
	}

	display = wrapper.Find(`math[display="block"]`).Length() > 0
	if img.Length() > 0 {
		if img.HasClass("mwe-math-fallback-image-display") {
			display = true
		}
		if img.HasClass("mwe-math-fallback-image-inline") {
			display = false
			inlineForced = true
		}
	}

	// strategy 1: fallback-image alt/aria-label text
	if img.Length() > 0 {
		if alt := strings.TrimSpace(img.AttrOr("alt", img.AttrOr("aria-label", ""))); alt != "" {
			return alt, display, inlineForced
		}
	}

	// strategy 2: MathML conversion of the nested math node
	if latex := convertFirstMathML(wrapper, conv); latex != "" {
		return latex, display, inlineForced
	}

	return "", display, inlineForced
}

// StripWikiStyling normalizes MediaWiki-flavored LaTeX: it removes a single
// truly-outer brace group and a leading \displaystyle or \textstyle macro.
// forceDisplay is true when a \displaystyle macro was present; \textstyle is
// stripped without forcing inline since inline is already the default absent
// other signals.
func StripWikiStyling(latex string) (result string, forceDisplay bool) {
	result = strings.TrimSpace(latex)

	if inner, ok := outerBraceGroup(result); ok {
		result = strings.TrimSpace(inner)
	}

	switch {
	case strings.HasPrefix(result, `\displaystyle`):
		result = strings.TrimSpace(strings.TrimPrefix(result, `\displaystyle`))
		forceDisplay = true
	case strings.HasPrefix(result, `\textstyle`):
		result = strings.TrimSpace(strings.TrimPrefix(result, `\textstyle`))
	}

	return result, forceDisplay
}

// outerBraceGroup reports whether s is one brace group spanning the whole
// string, verified by balanced-depth scanning, and returns its content.
// "{a}{b}" is not a single group; "{a+b}" is.
func outerBraceGroup(s string) (string, bool) {
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return "", false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++ // skip escaped character
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 && i != len(s)-1 {
				// first group closes before the string ends
				return "", false
			}
		}
	}
	if depth != 0 {
		return "", false
	}
	return s[1 : len(s)-1], true
}
