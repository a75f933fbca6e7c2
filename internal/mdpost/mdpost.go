// Package mdpost normalizes converted Markdown: it collapses blank-line runs,
// tightens list spacing, optionally merges adjacent display-math blocks, and
// removes fence padding.
//
// Every transform scans line-by-line with an explicit "inside protected
// region" state machine (code fence, display-math block, table rows) instead
// of blind regular-expression substitution, so fence-protected content is
// never corrupted. All transforms are idempotent: applying Process to its own
// output yields byte-identical text.
package mdpost

import (
	"regexp"
	"strings"
)

// Options configures postprocessing.
type Options struct {
	// MaxBlankLines caps consecutive blank lines outside protected regions.
	// Values below 1 are treated as 1.
	MaxBlankLines int
	// TightenLists removes the blank line between two list items that share
	// the same indent and marker signature.
	TightenLists bool
	// MergeDisplayMath joins two $$ blocks separated only by blank lines
	// into one block. Off by default.
	MergeDisplayMath bool
}

// Defaults returns the options used by the conversion driver.
func Defaults() Options {
	return Options{MaxBlankLines: 1, TightenLists: true}
}

// Process applies every configured transform in order.
func Process(text string, opts Options) string {
	if opts.MaxBlankLines < 1 {
		opts.MaxBlankLines = 1
	}

	lines := strings.Split(text, "\n")
	lines = trimTrailingSpace(lines)
	lines = collapseBlankLines(lines, opts.MaxBlankLines)
	if opts.TightenLists {
		lines = tightenLists(lines)
	}
	if opts.MergeDisplayMath {
		lines = mergeDisplayMath(lines)
	}
	lines = trimFencePadding(lines, opts.MaxBlankLines)

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var (
	bulletItemRe = regexp.MustCompile(`^(\s*)[-*+]\s+`)
	numberItemRe = regexp.MustCompile(`^(\s*)\d+[.)]\s+`)
	tableRowRe   = regexp.MustCompile(`^\s*\|.*\|\s*$`)
	tableSepRe   = regexp.MustCompile(`^\s*\|?[\s:|-]*-[\s:|-]*\|?\s*$`)
)

func isBlank(line string) bool { return strings.TrimSpace(line) == "" }

// isFenceLine reports whether line opens or closes a code fence.
func isFenceLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

// isMathDelim reports whether line is a display-math delimiter: a line that
// is exactly $$.
func isMathDelim(line string) bool {
	return strings.TrimSpace(line) == "$$"
}

func isTableLine(line string) bool {
	return tableRowRe.MatchString(line) || (strings.Contains(line, "|") && tableSepRe.MatchString(line))
}

// listSignature returns the marker-and-indent signature of a list-item line.
func listSignature(line string) (string, bool) {
	if m := bulletItemRe.FindStringSubmatch(line); m != nil {
		return m[1] + "•", true
	}
	if m := numberItemRe.FindStringSubmatch(line); m != nil {
		return m[1] + "#", true
	}
	return "", false
}

// protection tracks whether the scan position is inside a fence-protected
// region. Delimiter lines toggle the state as they are seen in order.
type protection struct {
	inFence bool
	inMath  bool
}

func (p *protection) active() bool { return p.inFence || p.inMath }

// observe updates state for line and reports whether the line (including a
// closing delimiter) belongs to a protected region.
func (p *protection) observe(line string) bool {
	switch {
	case p.inFence:
		if isFenceLine(line) {
			p.inFence = false
		}
		return true
	case p.inMath:
		if isMathDelim(line) {
			p.inMath = false
		}
		return true
	case isFenceLine(line):
		p.inFence = true
		return true
	case isMathDelim(line):
		p.inMath = true
		return true
	}
	return false
}

// trimTrailingSpace strips trailing spaces and tabs outside protected
// regions; code bodies keep their whitespace byte-for-byte.
func trimTrailingSpace(lines []string) []string {
	out := make([]string, 0, len(lines))
	var state protection

	for _, line := range lines {
		if !state.observe(line) {
			line = strings.TrimRight(line, " \t")
		}
		out = append(out, line)
	}
	return out
}

// collapseBlankLines caps blank-line runs at max outside protected regions.
// Runs between two table lines are left untouched.
func collapseBlankLines(lines []string, max int) []string {
	out := make([]string, 0, len(lines))
	var state protection
	pending := 0

	flush := func(n int) {
		for ; n > 0; n-- {
			out = append(out, "")
		}
	}

	for _, line := range lines {
		if state.active() {
			state.observe(line)
			out = append(out, line)
			continue
		}
		if isBlank(line) {
			pending++
			continue
		}
		if pending > 0 {
			keep := pending
			if keep > max {
				keep = max
			}
			if len(out) > 0 && isTableLine(out[len(out)-1]) && isTableLine(line) {
				keep = pending
			}
			flush(keep)
			pending = 0
		}
		state.observe(line)
		out = append(out, line)
	}
	if pending > max {
		pending = max
	}
	flush(pending)
	return out
}

// tightenLists drops a single blank line separating two list items at the
// same indentation with the same marker kind.
func tightenLists(lines []string) []string {
	out := make([]string, 0, len(lines))
	var state protection

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !state.active() && isBlank(line) && len(out) > 0 && i+1 < len(lines) {
			prevSig, prevOK := listSignature(out[len(out)-1])
			nextSig, nextOK := listSignature(lines[i+1])
			if prevOK && nextOK && prevSig == nextSig {
				continue
			}
		}
		state.observe(line)
		out = append(out, line)
	}
	return out
}

// mergeDisplayMath removes a closing/opening $$ pair separated only by blank
// lines, joining the two blocks.
func mergeDisplayMath(lines []string) []string {
	out := make([]string, 0, len(lines))
	var state protection

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if state.inMath && isMathDelim(line) {
			j := i + 1
			for j < len(lines) && isBlank(lines[j]) {
				j++
			}
			if j < len(lines) && isMathDelim(lines[j]) {
				// skip the closing delimiter, the blanks, and the reopening
				// delimiter; the block simply continues
				i = j
				continue
			}
		}

		state.observe(line)
		out = append(out, line)
	}
	return out
}

// trimFencePadding reduces a blank-line run adjacent to a fence or display
// delimiter to a single blank line, then acts as the final safety net by
// capping any remaining run at max.
func trimFencePadding(lines []string, max int) []string {
	out := make([]string, 0, len(lines))
	var state protection
	prevClosedProtector := false

	i := 0
	for i < len(lines) {
		line := lines[i]
		if state.active() {
			state.observe(line)
			prevClosedProtector = !state.active()
			out = append(out, line)
			i++
			continue
		}
		if isBlank(line) {
			j := i
			for j < len(lines) && isBlank(lines[j]) {
				j++
			}
			run := j - i
			keep := run
			if keep > max {
				keep = max
			}
			nextOpens := j < len(lines) && (isFenceLine(lines[j]) || isMathDelim(lines[j]))
			if (nextOpens || prevClosedProtector) && keep > 1 {
				keep = 1
			}
			if j == len(lines) {
				keep = 0 // trailing blanks are trimmed anyway
			}
			for ; keep > 0; keep-- {
				out = append(out, "")
			}
			i = j
			prevClosedProtector = false
			continue
		}
		state.observe(line)
		prevClosedProtector = false
		out = append(out, line)
		i++
	}
	return out
}
