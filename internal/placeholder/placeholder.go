// Package placeholder provides opaque-token substitution for content that must
// bypass the generic HTML-to-Markdown conversion (math expressions, code blocks).
//
// A Registry hands out tokens like %%MATH3%% that are substituted into the DOM
// in place of the original construct. After conversion, Restore swaps each
// token for the rendered text it stands for. Math and code use disjoint token
// namespaces so that a restored code body containing math-like text can never
// be mistaken for a live math placeholder (restoration order: math first, then
// code).
//
// Registries carry no cross-run state: the conversion driver creates fresh
// instances for every pass.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind selects the token namespace of a Registry.
type Kind string

const (
	// Math tokens look like %%MATH0%%, %%MATH1%%, ...
	Math Kind = "MATH"
	// Code tokens look like %%CODE0%%, %%CODE1%%, ...
	Code Kind = "CODE"
)

// token syntax: sentinel prefix/suffix around KIND + dense index.
// The marker characters are chosen so the Markdown transpiler passes them
// through unescaped, and the syntax is unlikely to collide with document text.
const (
	tokenPrefix = "%%"
	tokenSuffix = "%%"
)

// Registry is an ordered store of rendered-text entries, one per emitted
// token. Indices are dense (0..N-1) in emission order. A Registry is intended
// for a single conversion run and is not safe for concurrent use.
type Registry struct {
	kind    Kind
	entries []string
	pattern *regexp.Regexp
}

// NewMath creates an empty registry in the math token namespace.
func NewMath() *Registry { return newRegistry(Math) }

// NewCode creates an empty registry in the code token namespace.
func NewCode() *Registry { return newRegistry(Code) }

func newRegistry(kind Kind) *Registry {
	return &Registry{
		kind:    kind,
		pattern: regexp.MustCompile(regexp.QuoteMeta(tokenPrefix) + string(kind) + `(\d+)` + regexp.QuoteMeta(tokenSuffix)),
	}
}

// Register appends rendered text to the registry and returns the token that
// stands in for it. Tokens are unique within the run.
func (r *Registry) Register(rendered string) string {
	idx := len(r.entries)
	r.entries = append(r.entries, rendered)
	return fmt.Sprintf("%s%s%d%s", tokenPrefix, r.kind, idx, tokenSuffix)
}

// Len returns the number of registered entries.
func (r *Registry) Len() int { return len(r.entries) }

// Restore replaces every token of this registry's namespace in text with its
// registered rendered text, in a single pass. Tokens with no matching entry
// resolve to the empty string; that is defensive only and cannot occur when
// tokens are emitted through Register.
func (r *Registry) Restore(text string) string {
	if len(r.entries) == 0 && !r.pattern.MatchString(text) {
		return text
	}
	return r.pattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := r.pattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return ""
		}
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx < 0 || idx >= len(r.entries) {
			return ""
		}
		return r.entries[idx]
	})
}

// HasToken reports whether text contains any token of this registry's
// namespace. Useful for asserting restoration totality.
func (r *Registry) HasToken(text string) bool {
	return r.pattern.MatchString(text)
}
