// Package selection models a user text selection over a parsed HTML tree and
// widens it so that partially-selected math constructs are captured whole.
//
// A Range mirrors the browser's start/end container+offset pair: offsets
// index runes within text nodes and child positions within element nodes.
// Expand mutates the range's logical boundaries only; the document itself is
// never modified. CloneContents then copies the selected region into a
// detached fragment, so later pipeline stages cannot corrupt the live tree.
package selection

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Range describes a selected region of a document. Start must not come after
// End in document order; callers own that invariant.
type Range struct {
	StartNode   *html.Node
	StartOffset int
	EndNode     *html.Node
	EndOffset   int
}

// mathSelectors is the ordered list of math-construct selectors checked when
// snapping a boundary. Display wrappers come before inline spans so that a
// partially-selected display block is captured as a whole rather than split.
var mathSelectors = []cascadia.Matcher{
	mustSelector(".katex-display"),
	mustSelector("mjx-container"),
	mustSelector(".mwe-math-element"),
	mustSelector(".katex"),
	mustSelector("math"),
	mustSelector(`script[type^="math/tex"]`),
}

func mustSelector(s string) cascadia.Matcher {
	return cascadia.MustCompile(s)
}

// Expand snaps each boundary of r that lies inside a math construct to just
// outside the whole construct. The document is not mutated.
func Expand(r *Range) {
	if construct := enclosingMathConstruct(r.StartNode); construct != nil && construct.Parent != nil {
		r.StartNode = construct.Parent
		r.StartOffset = childIndex(construct)
	}
	if construct := enclosingMathConstruct(r.EndNode); construct != nil && construct.Parent != nil {
		r.EndNode = construct.Parent
		r.EndOffset = childIndex(construct) + 1
	}
}

// enclosingMathConstruct returns the nearest ancestor-or-self matching a math
// selector, trying display wrappers before inline constructs.
func enclosingMathConstruct(n *html.Node) *html.Node {
	for _, sel := range mathSelectors {
		for cur := n; cur != nil; cur = cur.Parent {
			if cur.Type == html.ElementNode && sel.Match(cur) {
				return cur
			}
		}
	}
	return nil
}

func childIndex(n *html.Node) int {
	idx := 0
	for sib := n.Parent.FirstChild; sib != nil && sib != n; sib = sib.NextSibling {
		idx++
	}
	return idx
}

// CloneContents copies the region described by r into a detached container
// element, leaving the source tree untouched. Partially-selected text nodes
// are sliced; partially-selected elements are cloned shallowly with only the
// in-range portion of their children.
func CloneContents(r Range) *html.Node {
	container := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}

	if r.StartNode == nil || r.EndNode == nil {
		return container
	}

	// single text node: slice between the offsets
	if r.StartNode == r.EndNode && r.StartNode.Type == html.TextNode {
		container.AppendChild(&html.Node{
			Type: html.TextNode,
			Data: sliceText(r.StartNode.Data, r.StartOffset, r.EndOffset),
		})
		return container
	}

	ancestor := commonAncestor(r.StartNode, r.EndNode)
	if ancestor == nil {
		return container
	}

	startTop := topmostUnder(r.StartNode, ancestor)
	endTop := topmostUnder(r.EndNode, ancestor)

	first := ancestor.FirstChild
	if r.StartNode == ancestor {
		first = childAt(ancestor, r.StartOffset)
		startTop = nil
	}

	for c := first; c != nil; c = c.NextSibling {
		if r.EndNode == ancestor && c == childAt(ancestor, r.EndOffset) {
			break
		}
		switch c {
		case startTop:
			if clone := cloneFrom(c, r.StartNode, r.StartOffset); clone != nil {
				container.AppendChild(clone)
			}
		case endTop:
			if clone := cloneUntil(c, r.EndNode, r.EndOffset); clone != nil {
				container.AppendChild(clone)
			}
			return container
		default:
			if startTop == nil || passed(startTop, c) {
				container.AppendChild(deepClone(c))
			}
		}
	}
	return container
}

// passed reports whether c comes at or after mark among siblings.
func passed(mark, c *html.Node) bool {
	for cur := mark; cur != nil; cur = cur.NextSibling {
		if cur == c {
			return true
		}
	}
	// c precedes mark
	return false
}

// topmostUnder walks up from n to the child of ancestor that contains it.
func topmostUnder(n, ancestor *html.Node) *html.Node {
	if n == ancestor {
		return nil
	}
	cur := n
	for cur.Parent != nil && cur.Parent != ancestor {
		cur = cur.Parent
	}
	if cur.Parent != ancestor {
		return nil
	}
	return cur
}

func commonAncestor(a, b *html.Node) *html.Node {
	seen := map[*html.Node]bool{}
	for cur := a; cur != nil; cur = cur.Parent {
		seen[cur] = true
	}
	for cur := b; cur != nil; cur = cur.Parent {
		if seen[cur] {
			return cur
		}
	}
	return nil
}

func childAt(n *html.Node, idx int) *html.Node {
	c := n.FirstChild
	for i := 0; c != nil && i < idx; i++ {
		c = c.NextSibling
	}
	return c
}

// cloneFrom clones the suffix of top's subtree beginning at (boundary,
// offset). top is on the start edge of the range.
func cloneFrom(top, boundary *html.Node, offset int) *html.Node {
	if top == boundary {
		if top.Type == html.TextNode {
			data := sliceText(top.Data, offset, -1)
			if data == "" {
				return nil
			}
			return &html.Node{Type: html.TextNode, Data: data}
		}
		clone := shallowClone(top)
		for c := childAt(top, offset); c != nil; c = c.NextSibling {
			clone.AppendChild(deepClone(c))
		}
		return clone
	}

	onPath := topmostUnder(boundary, top)
	if onPath == nil && boundary != top {
		return deepClone(top)
	}

	clone := shallowClone(top)
	started := false
	for c := top.FirstChild; c != nil; c = c.NextSibling {
		if c == onPath {
			if sub := cloneFrom(c, boundary, offset); sub != nil {
				clone.AppendChild(sub)
			}
			started = true
			continue
		}
		if started {
			clone.AppendChild(deepClone(c))
		}
	}
	return clone
}

// cloneUntil clones the prefix of top's subtree ending at (boundary, offset).
func cloneUntil(top, boundary *html.Node, offset int) *html.Node {
	if top == boundary {
		if top.Type == html.TextNode {
			data := sliceText(top.Data, 0, offset)
			if data == "" {
				return nil
			}
			return &html.Node{Type: html.TextNode, Data: data}
		}
		clone := shallowClone(top)
		stop := childAt(top, offset)
		for c := top.FirstChild; c != nil && c != stop; c = c.NextSibling {
			clone.AppendChild(deepClone(c))
		}
		return clone
	}

	onPath := topmostUnder(boundary, top)
	clone := shallowClone(top)
	for c := top.FirstChild; c != nil; c = c.NextSibling {
		if c == onPath {
			if sub := cloneUntil(c, boundary, offset); sub != nil {
				clone.AppendChild(sub)
			}
			break
		}
		clone.AppendChild(deepClone(c))
	}
	return clone
}

func shallowClone(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:     n.Type,
		Data:     n.Data,
		DataAtom: n.DataAtom,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	return clone
}

func deepClone(n *html.Node) *html.Node {
	clone := shallowClone(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(deepClone(c))
	}
	return clone
}

// sliceText slices s by rune offsets; end < 0 means end of string.
func sliceText(s string, start, end int) string {
	runes := []rune(s)
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		start = len(runes)
	}
	if end < 0 || end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

// Render serializes a detached fragment produced by CloneContents.
func Render(fragment *html.Node) (string, error) {
	var b strings.Builder
	for c := fragment.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
