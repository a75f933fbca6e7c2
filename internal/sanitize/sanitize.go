// Package sanitize provides the optional hardening step of the conversion
// pipeline: a bluemonday policy that strips scripts and event-handler
// attributes while preserving the MathML/SVG structure and the attributes the
// math-extraction logic depends on (class, alt, aria-label, display, src).
// Omitting any of those from the allow-list silently breaks math extraction,
// so they are part of this package's contract, not configuration.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// mathml presentation elements, kept wholesale so extraction can still find
// annotations and display attributes after cleaning
var mathmlElements = []string{
	"math", "semantics", "annotation", "annotation-xml",
	"mrow", "mi", "mo", "mn", "mtext", "mspace", "mstyle", "mpadded",
	"mphantom", "merror", "menclose", "mfenced",
	"msup", "msub", "msubsup", "mfrac", "msqrt", "mroot",
	"mover", "munder", "munderover", "mmultiscripts", "mprescripts",
	"mtable", "mtr", "mtd", "mlabeledtr",
}

var svgElements = []string{
	"svg", "g", "path", "use", "defs", "rect", "line", "text", "title",
}

// rendered-math wrapper elements from the engines we extract
var mathWrapperElements = []string{
	"mjx-container", "mjx-math", "mjx-assistive-mml",
}

// Policy returns the sanitization policy applied ahead of extraction when
// hardening is enabled.
func Policy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"div", "span", "p", "br", "hr",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "dl", "dt", "dd",
		"table", "thead", "tbody", "tfoot", "tr", "td", "th",
		"blockquote", "pre", "code",
		"strong", "b", "em", "i", "del", "s", "sub", "sup",
		"a", "img", "figure", "figcaption",
		"article", "section", "main", "aside", "header", "footer",
	)
	p.AllowElements(mathmlElements...)
	p.AllowElements(svgElements...)
	p.AllowElements(mathWrapperElements...)

	// attributes the extractors read; class carries every engine signature
	p.AllowAttrs("class", "aria-label").Globally()
	p.AllowAttrs("display", "jax").OnElements("math", "mjx-container")
	p.AllowAttrs("encoding").OnElements("annotation", "annotation-xml")
	p.AllowAttrs("mathvariant").OnElements("mi", "mn", "mo", "mtext", "mstyle")
	p.AllowAttrs("open", "close").OnElements("mfenced")
	p.AllowAttrs("xmlns").OnElements("math", "svg")

	p.AllowAttrs("alt", "src", "width", "height").OnElements("img")
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowAttrs("data-lang", "data-language").OnElements("pre", "code")
	p.AllowAttrs("start").OnElements("ol")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	p.AllowElements("input") // GFM task-list checkboxes

	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https")

	return p
}

// Clean runs the policy over serialized HTML. Legacy TeX script tags must be
// extracted before calling Clean: bluemonday always drops script content.
func Clean(html string) string {
	return Policy().Sanitize(html)
}
