package tex

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/texclip/texclip/internal/placeholder"
)

// raw TeX already present in text nodes: $$...$$ first (longest match), then
// single-$ inline spans that don't cross a line break
var (
	rawDisplayRe = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)
	rawInlineRe  = regexp.MustCompile(`\$([^$\n]+?)\$`)
)

// ProtectRawTeX scans text nodes for literal $...$ and $$...$$ spans and
// replaces them with math placeholder tokens, so the transpiler's character
// escaping cannot corrupt TeX that was already plain text in the source.
// Text inside pre/code/script is left alone.
func ProtectRawTeX(doc *goquery.Document, reg *placeholder.Registry) {
	for _, node := range doc.Selection.Nodes {
		protectTextNodes(node, reg)
	}
}

func protectTextNodes(n *html.Node, reg *placeholder.Registry) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "pre", "code", "script", "style", "textarea":
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			c.Data = protectText(c.Data, reg)
			continue
		}
		protectTextNodes(c, reg)
	}
}

func protectText(text string, reg *placeholder.Registry) string {
	if !strings.Contains(text, "$") {
		return text
	}

	text = rawDisplayRe.ReplaceAllStringFunc(text, func(m string) string {
		body := strings.TrimSpace(m[2 : len(m)-2])
		if body == "" {
			return m
		}
		return reg.Register(Wrap(body, true))
	})

	text = rawInlineRe.ReplaceAllStringFunc(text, func(m string) string {
		body := m[1 : len(m)-1]
		if !plausibleInlineTeX(body) {
			return m
		}
		return reg.Register(Wrap(body, false))
	})

	return text
}

// currency amounts like "$5" or "$1,200.50"
var currencyRe = regexp.MustCompile(`^\d+(?:[.,]\d+)*$`)

// plausibleInlineTeX rejects spans that are more likely prose with dollar
// signs ("$5 and $10") than math: TeX delimiters hug their content, so a
// body with leading/trailing whitespace, or a bare number, does not qualify.
func plausibleInlineTeX(body string) bool {
	if body == "" || strings.TrimSpace(body) != body {
		return false
	}
	return !currencyRe.MatchString(body)
}
