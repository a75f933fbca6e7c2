package code_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/texclip/texclip/internal/code"
	"github.com/texclip/texclip/internal/placeholder"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		wantLang string
		wantBody string
	}{
		{
			name:     "language class on code element",
			html:     `<pre><code class="language-python">def f():` + "\n" + `    pass` + "\n" + `</code></pre>`,
			wantLang: "python",
			wantBody: "def f():\n    pass",
		},
		{
			name:     "lang- prefix on pre element",
			html:     `<pre class="lang-js">console.log(1);</pre>`,
			wantLang: "js",
			wantBody: "console.log(1);",
		},
		{
			name:     "data-lang attribute",
			html:     `<pre><code data-lang="rust">fn main() {}</code></pre>`,
			wantLang: "rust",
			wantBody: "fn main() {}",
		},
		{
			name:     "golang normalized to go",
			html:     `<pre><code class="language-golang">package main</code></pre>`,
			wantLang: "go",
			wantBody: "package main",
		},
		{
			name:     "code class wins over pre class",
			html:     `<pre class="language-text"><code class="language-c">int x;</code></pre>`,
			wantLang: "c",
			wantBody: "int x;",
		},
		{
			name:     "no language",
			html:     `<pre><code>plain</code></pre>`,
			wantLang: "",
			wantBody: "plain",
		},
		{
			name:     "copy button label stripped from leading edge",
			html:     "<pre><code>Copy\nimport os\n</code></pre>",
			wantLang: "",
			wantBody: "import os",
		},
		{
			name:     "copyright is not a copy label",
			html:     "<pre><code>Copyright 2024 Acme\n</code></pre>",
			wantLang: "",
			wantBody: "Copyright 2024 Acme",
		},
		{
			name:     "button element removed",
			html:     `<pre><button>Copy code</button><code>x = 1</code></pre>`,
			wantLang: "",
			wantBody: "x = 1",
		},
		{
			name:     "trailing blank lines trimmed, interior preserved",
			html:     "<pre><code>a\n\n    b\n\n\n</code></pre>",
			wantLang: "",
			wantBody: "a\n\n    b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, tt.html)
			lang, body := code.Resolve(doc.Find("pre").First())

			if lang != tt.wantLang {
				t.Errorf("Resolve() lang = %q, want %q", lang, tt.wantLang)
			}
			if body != tt.wantBody {
				t.Errorf("Resolve() body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	doc := parseDoc(t, `<div><p>before</p><pre><code class="language-python">def f():
    pass
</code></pre><p>after</p></div>`)

	reg := placeholder.NewCode()
	code.Extract(doc, reg)

	if reg.Len() != 1 {
		t.Fatalf("Extract() registered %d entries, want 1", reg.Len())
	}

	html, _ := doc.Find("div").Html()
	if !strings.Contains(html, "%%CODE0%%") {
		t.Errorf("pre was not replaced with a token: %s", html)
	}
	if strings.Contains(html, "<pre") {
		t.Errorf("pre element still present: %s", html)
	}

	restored := reg.Restore("%%CODE0%%")
	if !strings.Contains(restored, "```python\ndef f():\n    pass\n```") {
		t.Errorf("restored block = %q", restored)
	}
}

func TestExtractSkipsEmptyBodies(t *testing.T) {
	doc := parseDoc(t, `<div><pre><code>   </code></pre></div>`)

	reg := placeholder.NewCode()
	code.Extract(doc, reg)

	if reg.Len() != 0 {
		t.Errorf("Extract() registered %d entries for empty body, want 0", reg.Len())
	}
	if doc.Find("pre").Length() != 1 {
		t.Errorf("empty pre should be left in place")
	}
}

func TestExtractWidensFenceForBackticks(t *testing.T) {
	doc := parseDoc(t, "<div><pre><code>```\ninner\n```</code></pre></div>")

	reg := placeholder.NewCode()
	code.Extract(doc, reg)

	restored := reg.Restore("%%CODE0%%")
	if !strings.Contains(restored, "````\n```\ninner\n```\n````") {
		t.Errorf("fence not widened: %q", restored)
	}
}
