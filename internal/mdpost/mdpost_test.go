package mdpost_test

import (
	"testing"

	"github.com/texclip/texclip/internal/mdpost"
)

func TestCollapseBlankLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "run collapsed to one",
			in:   "a\n\n\n\nb",
			want: "a\n\nb",
		},
		{
			name: "single blank untouched",
			in:   "a\n\nb",
			want: "a\n\nb",
		},
		{
			name: "blank run inside code fence preserved",
			in:   "```\nx\n\n\n\ny\n```",
			want: "```\nx\n\n\n\ny\n```",
		},
		{
			name: "blank run inside display math preserved",
			in:   "$$\na\n\n\nb\n$$",
			want: "$$\na\n\n\nb\n$$",
		},
		{
			name: "leading and trailing whitespace trimmed",
			in:   "\n\na\n\n\n",
			want: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mdpost.Process(tt.in, mdpost.Options{MaxBlankLines: 1})
			if got != tt.want {
				t.Errorf("Process() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTightenLists(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "blank between same-level bullets removed",
			in:   "- one\n\n- two",
			want: "- one\n- two",
		},
		{
			name: "blank between same-level numbers removed",
			in:   "1. one\n\n2. two",
			want: "1. one\n2. two",
		},
		{
			name: "different nesting depth preserved",
			in:   "- one\n\n  - nested",
			want: "- one\n\n  - nested",
		},
		{
			name: "different marker kinds preserved",
			in:   "- bullet\n\n1. number",
			want: "- bullet\n\n1. number",
		},
		{
			name: "blank between list and prose preserved",
			in:   "- one\n\nparagraph",
			want: "- one\n\nparagraph",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mdpost.Process(tt.in, mdpost.Defaults())
			if got != tt.want {
				t.Errorf("Process() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTightenListsRespectsFences(t *testing.T) {
	in := "```\n- one\n\n- two\n```"
	got := mdpost.Process(in, mdpost.Defaults())
	if got != in {
		t.Errorf("list tightening corrupted fence content: %q", got)
	}
}

func TestMergeDisplayMath(t *testing.T) {
	in := "$$\na\n$$\n\n$$\nb\n$$"

	merged := mdpost.Process(in, mdpost.Options{MaxBlankLines: 1, MergeDisplayMath: true})
	want := "$$\na\nb\n$$"
	if merged != want {
		t.Errorf("merge on: Process() = %q, want %q", merged, want)
	}

	unmerged := mdpost.Process(in, mdpost.Options{MaxBlankLines: 1})
	if unmerged != in {
		t.Errorf("merge off: Process() = %q, want unchanged %q", unmerged, in)
	}
}

func TestFencePaddingRemoval(t *testing.T) {
	in := "text\n\n\n```go\nx := 1\n```\n\n\nmore"
	got := mdpost.Process(in, mdpost.Options{MaxBlankLines: 3})
	want := "text\n\n```go\nx := 1\n```\n\nmore"
	if got != want {
		t.Errorf("Process() = %q, want %q", got, want)
	}
}

func TestTrailingWhitespaceTrimmedOutsideFences(t *testing.T) {
	in := "prose with trailing space   \n\n```\ncode line   \n```"
	got := mdpost.Process(in, mdpost.Defaults())
	want := "prose with trailing space\n\n```\ncode line   \n```"
	if got != want {
		t.Errorf("Process() = %q, want %q", got, want)
	}
}

func TestTablesAreNotCollapsed(t *testing.T) {
	in := "| a | b |\n| --- | --- |\n| 1 | 2 |"
	got := mdpost.Process(in, mdpost.Defaults())
	if got != in {
		t.Errorf("table rows altered: %q", got)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	inputs := []string{
		"a\n\n\n\nb\n\n- one\n\n- two\n\n```py\n\n\ncode\n\n\n```\n\n\ntail",
		"$$\nx\n$$\n\n$$\ny\n$$\n\nprose",
		"# h\n\ntext with $x$\n\n| a |\n| - |\n",
	}

	for _, opts := range []mdpost.Options{
		mdpost.Defaults(),
		{MaxBlankLines: 2, TightenLists: true, MergeDisplayMath: true},
	} {
		for _, in := range inputs {
			once := mdpost.Process(in, opts)
			twice := mdpost.Process(once, opts)
			if once != twice {
				t.Errorf("Process not idempotent with %+v:\nonce:  %q\ntwice: %q", opts, once, twice)
			}
		}
	}
}
