// Package tex locates math-bearing DOM constructs across the rendering
// engines found in the wild (KaTeX, MathJax v3, bare MathML, legacy TeX
// script tags, MediaWiki) and resolves each to a LaTeX string plus a
// display-mode flag. Resolved constructs are replaced with placeholder tokens
// so the generic HTML-to-Markdown conversion cannot mangle them.
//
// Resolution is best-effort: a construct whose strategies all fail is left in
// the DOM for the transpiler's default (generally poor) rendering. That is an
// accepted degradation, not an error.
package tex

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/texclip/texclip/internal/mathml"
	"github.com/texclip/texclip/internal/placeholder"
)

// SourceKind identifies which rendering engine a math unit was recovered from.
type SourceKind int

const (
	KindKaTeX SourceKind = iota
	KindMathJaxV3
	KindBareMathML
	KindTexScript
	KindMediaWiki
)

// String returns the engine name for logging.
func (k SourceKind) String() string {
	switch k {
	case KindKaTeX:
		return "katex"
	case KindMathJaxV3:
		return "mathjax"
	case KindBareMathML:
		return "mathml"
	case KindTexScript:
		return "tex-script"
	case KindMediaWiki:
		return "mediawiki"
	default:
		return "unknown"
	}
}

// Unit is a resolved math construct.
type Unit struct {
	LaTeX   string
	Display bool
	Kind    SourceKind
}

// ExtractMath visits every math-bearing construct in doc in a fixed order
// (KaTeX, MathJax v3, bare MathML, legacy TeX scripts) and replaces each
// resolvable construct with a token registered in reg. conv is the pluggable
// MathML-to-LaTeX converter; nil disables MathML conversion and falls back to
// raw text content where applicable.
//
// Processing order doubles as de-duplication: replacing a KaTeX span removes
// the MathML embedded inside it, so the later bare-MathML pass only ever sees
// constructs no earlier engine claimed.
func ExtractMath(doc *goquery.Document, reg *placeholder.Registry, conv mathml.ConvertFunc) {
	extractKaTeX(doc, reg)
	extractMathJax(doc, reg, conv)
	extractBareMathML(doc, reg, conv)
	ExtractTexScripts(doc, reg)
}

// replaceWithToken registers the wrapped unit and swaps the construct for its
// token. Display-vs-inline newline wrapping happens here, at string-assembly
// time, never as DOM-level newline nodes.
func replaceWithToken(sel *goquery.Selection, reg *placeholder.Registry, u Unit) {
	latex := strings.TrimSpace(u.LaTeX)
	if latex == "" {
		// invariant: units without a non-empty LaTeX string never become
		// placeholders; leave the node for default handling
		return
	}
	slog.Debug("resolved math unit", "kind", u.Kind.String(), "display", u.Display)
	token := reg.Register(Wrap(latex, u.Display))
	sel.ReplaceWithHtml(token)
}

// Wrap produces the final Markdown form of a LaTeX string: $...$ inline, or a
// $$ block on its own lines for display math. The surrounding blank lines are
// collapsed later by the postprocessor.
func Wrap(latex string, display bool) string {
	if display {
		return "\n\n$$\n" + latex + "\n$$\n\n"
	}
	return "$" + latex + "$"
}

// extractKaTeX handles span.katex constructs by reading the TeX annotation
// KaTeX embeds for accessibility.
func extractKaTeX(doc *goquery.Document, reg *placeholder.Registry) {
	doc.Find("span.katex").Each(func(_ int, sel *goquery.Selection) {
		latex := texAnnotationOf(sel)
		if latex == "" {
			return
		}

		display := sel.Closest(".katex-display").Length() > 0 ||
			sel.Find(`math[display="block"]`).Length() > 0

		// replace the display wrapper itself when present, so no empty
		// block-level span survives around the token
		target := sel
		if wrapper := sel.Closest(".katex-display"); wrapper.Length() > 0 {
			target = wrapper
		}
		replaceWithToken(target, reg, Unit{LaTeX: latex, Display: display, Kind: KindKaTeX})
	})
}

// extractMathJax handles MathJax v3 mjx-container elements: TeX annotation
// first, then assistive MathML through the converter, then raw text content.
func extractMathJax(doc *goquery.Document, reg *placeholder.Registry, conv mathml.ConvertFunc) {
	doc.Find("mjx-container").Each(func(_ int, sel *goquery.Selection) {
		latex := texAnnotationOf(sel)

		if latex == "" {
			latex = convertFirstMathML(sel, conv)
		}
		if latex == "" {
			latex = strings.TrimSpace(sel.Text())
		}
		if latex == "" {
			return
		}

		display := isTruthyDisplay(sel.AttrOr("display", "")) ||
			sel.Closest(".MathJax_Display, .mathjax-display").Length() > 0

		replaceWithToken(sel, reg, Unit{LaTeX: latex, Display: display, Kind: KindMathJaxV3})
	})
}

// extractBareMathML handles <math> elements that no earlier pass consumed.
func extractBareMathML(doc *goquery.Document, reg *placeholder.Registry, conv mathml.ConvertFunc) {
	doc.Find("math").Each(func(_ int, sel *goquery.Selection) {
		latex := convertMathMLNode(sel, conv)
		if latex == "" {
			latex = strings.TrimSpace(sel.Text())
		}
		if latex == "" {
			return
		}

		display := isTruthyDisplay(sel.AttrOr("display", ""))

		replaceWithToken(sel, reg, Unit{LaTeX: latex, Display: display, Kind: KindBareMathML})
	})
}

// ExtractTexScripts handles legacy script[type^="math/tex"] tags, whose text
// content is the LaTeX itself. Exported separately because the driver runs it
// ahead of sanitization, which would otherwise drop script content.
func ExtractTexScripts(doc *goquery.Document, reg *placeholder.Registry) {
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		typ := sel.AttrOr("type", "")
		if !strings.HasPrefix(typ, "math/tex") {
			return
		}

		latex := strings.TrimSpace(sel.Text())
		if latex == "" {
			return
		}

		display := strings.Contains(typ, "mode=display")

		replaceWithToken(sel, reg, Unit{LaTeX: latex, Display: display, Kind: KindTexScript})
	})
}

// texAnnotationOf reads the application/x-tex annotation KaTeX and MathJax
// embed inside their MathML for accessibility.
func texAnnotationOf(sel *goquery.Selection) string {
	var latex string
	sel.Find("annotation").EachWithBreak(func(_ int, ann *goquery.Selection) bool {
		if strings.Contains(ann.AttrOr("encoding", ""), "tex") {
			latex = strings.TrimSpace(ann.Text())
			return false
		}
		return true
	})
	return latex
}

// convertFirstMathML finds the assistive MathML node under sel and runs it
// through the converter. Returns "" when conversion is unavailable or fails.
func convertFirstMathML(sel *goquery.Selection, conv mathml.ConvertFunc) string {
	return convertMathMLNode(sel.Find("math").First(), conv)
}

func convertMathMLNode(sel *goquery.Selection, conv mathml.ConvertFunc) string {
	if conv == nil || sel.Length() == 0 {
		return ""
	}
	markup, err := goquery.OuterHtml(sel)
	if err != nil {
		slog.Debug("failed to serialize MathML node", "err", err)
		return ""
	}
	latex, err := conv(markup)
	if err != nil {
		slog.Debug("MathML conversion failed", "err", err)
		return ""
	}
	return strings.TrimSpace(latex)
}

func isTruthyDisplay(v string) bool {
	return v == "true" || v == "block"
}
