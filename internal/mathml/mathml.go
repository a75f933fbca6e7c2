// Package mathml converts serialized Presentation MathML into a LaTeX string.
//
// The math extractor prefers the TeX annotation embedded in rendered math for
// accessibility; this converter is the fallback for constructs that carry only
// MathML (assistive MathJax markup, bare <math> elements, MediaWiki output).
// It is exposed as a ConvertFunc so callers can swap in a different converter.
//
// The conversion is best-effort: unknown elements degrade to their text
// content rather than failing, and an error is returned only when the markup
// cannot be parsed or yields no output at all.
package mathml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// ConvertFunc is the pluggable MathML-to-LaTeX conversion contract consumed
// by the math extractor. It may return an error on malformed input.
type ConvertFunc func(markup string) (string, error)

// Convert parses a serialized <math> element (or fragment containing one) and
// returns the equivalent LaTeX. It satisfies ConvertFunc.
func Convert(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", errors.New("empty MathML markup")
	}

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse MathML: %w", err)
	}

	mathNode := findElement(root, "math")
	if mathNode == nil {
		return "", errors.New("no <math> element in markup")
	}

	// a TeX annotation inside <semantics> is the exact source; use it directly
	if tex := texAnnotation(mathNode); tex != "" {
		return tex, nil
	}

	latex := strings.TrimSpace(renderChildren(mathNode))
	if latex == "" {
		return "", errors.New("MathML resolved to empty LaTeX")
	}
	return latex, nil
}

// findElement returns the first element with the given tag in document order.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// texAnnotation returns the content of an application/x-tex annotation, if any.
func texAnnotation(mathNode *html.Node) string {
	for _, ann := range dom.GetElementsByTagName(mathNode, "annotation") {
		enc := dom.GetAttribute(ann, "encoding")
		if strings.Contains(enc, "tex") {
			return strings.TrimSpace(dom.TextContent(ann))
		}
	}
	return ""
}

func renderChildren(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(render(c))
	}
	return b.String()
}

// render converts one MathML node to LaTeX.
func render(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return translateText(n.Data)
	case html.ElementNode:
		// handled below
	default:
		return ""
	}

	switch n.Data {
	case "mrow", "mstyle", "mpadded", "merror", "math":
		return renderChildren(n)
	case "semantics":
		// presentation child only; annotations are handled by the caller
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				return render(c)
			}
		}
		return ""
	case "mi", "mn":
		return renderIdentifier(n)
	case "mo":
		return translateText(strings.TrimSpace(dom.TextContent(n)))
	case "mtext":
		txt := dom.TextContent(n)
		if strings.TrimSpace(txt) == "" {
			return " "
		}
		return `\text{` + txt + `}`
	case "mspace":
		return `\,`
	case "msup":
		base, args := childArgs(n, 2)
		if len(args) < 2 {
			return base
		}
		return group(args[0]) + "^" + brace(args[1])
	case "msub":
		base, args := childArgs(n, 2)
		if len(args) < 2 {
			return base
		}
		return group(args[0]) + "_" + brace(args[1])
	case "msubsup":
		base, args := childArgs(n, 3)
		if len(args) < 3 {
			return base
		}
		return group(args[0]) + "_" + brace(args[1]) + "^" + brace(args[2])
	case "mfrac":
		base, args := childArgs(n, 2)
		if len(args) < 2 {
			return base
		}
		return `\frac` + brace(args[0]) + brace(args[1])
	case "msqrt":
		return `\sqrt{` + renderChildren(n) + `}`
	case "mroot":
		base, args := childArgs(n, 2)
		if len(args) < 2 {
			return base
		}
		return `\sqrt[` + args[1] + `]{` + args[0] + `}`
	case "mover":
		base, args := childArgs(n, 2)
		if len(args) < 2 {
			return base
		}
		return `\overset` + brace(args[1]) + brace(args[0])
	case "munder":
		base, args := childArgs(n, 2)
		if len(args) < 2 {
			return base
		}
		return `\underset` + brace(args[1]) + brace(args[0])
	case "munderover":
		base, args := childArgs(n, 3)
		if len(args) < 3 {
			return base
		}
		return group(args[0]) + "_" + brace(args[1]) + "^" + brace(args[2])
	case "mfenced":
		open := dom.GetAttribute(n, "open")
		close := dom.GetAttribute(n, "close")
		if open == "" {
			open = "("
		}
		if close == "" {
			close = ")"
		}
		return `\left` + delim(open) + renderChildren(n) + `\right` + delim(close)
	case "mtable":
		return renderTable(n)
	case "mtr", "mtd":
		return renderChildren(n)
	case "annotation", "annotation-xml":
		return ""
	default:
		// unknown element: degrade to its children rather than failing
		return renderChildren(n)
	}
}

func renderIdentifier(n *html.Node) string {
	txt := translateText(strings.TrimSpace(dom.TextContent(n)))
	if dom.GetAttribute(n, "mathvariant") == "normal" && len(txt) > 1 && !strings.HasPrefix(txt, `\`) {
		return `\mathrm{` + txt + `}`
	}
	return txt
}

// childArgs collects the LaTeX of up to want element children. base is the
// rendering of whatever children exist, used when the arity is wrong.
func childArgs(n *html.Node, want int) (base string, args []string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		args = append(args, render(c))
		if len(args) == want {
			break
		}
	}
	return renderChildren(n), args
}

func renderTable(n *html.Node) string {
	var rows []string
	for _, tr := range dom.GetElementsByTagName(n, "mtr") {
		var cells []string
		for _, td := range dom.GetElementsByTagName(tr, "mtd") {
			cells = append(cells, renderChildren(td))
		}
		rows = append(rows, strings.Join(cells, " & "))
	}
	return `\begin{matrix}` + strings.Join(rows, ` \\ `) + `\end{matrix}`
}

// group wraps s in braces only when needed as a script base.
func group(s string) string {
	if len([]rune(s)) == 1 || isSingleCommand(s) {
		return s
	}
	return "{" + s + "}"
}

func brace(s string) string { return "{" + s + "}" }

func isSingleCommand(s string) bool {
	if !strings.HasPrefix(s, `\`) {
		return false
	}
	rest := strings.TrimRight(s[1:], " ")
	return rest != "" && !strings.ContainsAny(rest, ` \{}^_`)
}

func delim(s string) string {
	switch s {
	case "{":
		return `\{`
	case "}":
		return `\}`
	case "‖", "∥":
		return `\|`
	case "⟨":
		return `\langle `
	case "⟩":
		return `\rangle `
	case "":
		return "."
	default:
		return s
	}
}

// translateText maps Unicode characters the HTML parser produced from MathML
// entities back to LaTeX commands. Unmapped runes pass through unchanged.
func translateText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if cmd, ok := unicodeToLatex[r]; ok {
			b.WriteString(cmd)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var unicodeToLatex = map[rune]string{
	// invisible operators
	'⁡': "", // function application
	'⁢': "", // invisible times
	'⁣': "", // invisible separator
	'⁤': "", // invisible plus
	' ': " ",

	// greek
	'α': `\alpha `, 'β': `\beta `, 'γ': `\gamma `, 'δ': `\delta `,
	'ε': `\varepsilon `, 'ϵ': `\epsilon `, 'ζ': `\zeta `, 'η': `\eta `,
	'θ': `\theta `, 'ι': `\iota `, 'κ': `\kappa `, 'λ': `\lambda `,
	'μ': `\mu `, 'ν': `\nu `, 'ξ': `\xi `, 'π': `\pi `, 'ρ': `\rho `,
	'σ': `\sigma `, 'τ': `\tau `, 'υ': `\upsilon `, 'φ': `\varphi `,
	'ϕ': `\phi `, 'χ': `\chi `, 'ψ': `\psi `, 'ω': `\omega `,
	'Γ': `\Gamma `, 'Δ': `\Delta `, 'Θ': `\Theta `, 'Λ': `\Lambda `,
	'Ξ': `\Xi `, 'Π': `\Pi `, 'Σ': `\Sigma `, 'Υ': `\Upsilon `,
	'Φ': `\Phi `, 'Ψ': `\Psi `, 'Ω': `\Omega `,

	// operators and relations
	'×': `\times `, '÷': `\div `, '·': `\cdot `, '∘': `\circ `,
	'±': `\pm `, '∓': `\mp `, '≤': `\leq `, '≥': `\geq `, '≠': `\neq `,
	'≈': `\approx `, '≡': `\equiv `, '∼': `\sim `, '≃': `\simeq `,
	'∝': `\propto `, '∞': `\infty `, '∂': `\partial `, '∇': `\nabla `,
	'∑': `\sum `, '∏': `\prod `, '∫': `\int `, '∬': `\iint `,
	'∮': `\oint `, '√': `\sqrt `, '∈': `\in `, '∉': `\notin `,
	'∋': `\ni `, '⊂': `\subset `, '⊃': `\supset `, '⊆': `\subseteq `,
	'⊇': `\supseteq `, '∪': `\cup `, '∩': `\cap `, '∅': `\emptyset `,
	'∧': `\wedge `, '∨': `\vee `, '¬': `\neg `, '∀': `\forall `,
	'∃': `\exists `, '⊕': `\oplus `, '⊗': `\otimes `, '⊥': `\perp `,
	'∠': `\angle `, '∴': `\therefore `, '…': `\ldots `, '⋯': `\cdots `,
	'⋮': `\vdots `, 'ℏ': `\hbar `, 'ℓ': `\ell `, 'ℜ': `\Re `, 'ℑ': `\Im `,
	'ℵ': `\aleph `, '′': `'`, '″': `''`, '−': `-`,

	// arrows
	'→': `\to `, '←': `\leftarrow `, '↔': `\leftrightarrow `,
	'⇒': `\Rightarrow `, '⇐': `\Leftarrow `, '⇔': `\Leftrightarrow `,
	'↦': `\mapsto `, '↑': `\uparrow `, '↓': `\downarrow `,

	// blackboard and script letters common in rendered math
	'ℝ': `\mathbb{R}`, 'ℤ': `\mathbb{Z}`, 'ℕ': `\mathbb{N}`,
	'ℚ': `\mathbb{Q}`, 'ℂ': `\mathbb{C}`,
}
