package fetch_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/texclip/texclip/internal/fetch"
)

func TestGetContent(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		setupFunc   func(t *testing.T) (source string, cleanup func())
		expectError bool
		expectData  string
	}{
		{
			name:   "http URL success",
			source: "",
			setupFunc: func(t *testing.T) (string, func()) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
					_, _ = w.Write([]byte("<p>served content</p>"))
				}))
				return server.URL, server.Close
			},
			expectError: false,
			expectData:  "<p>served content</p>",
		},
		{
			name:   "http URL with error status",
			source: "",
			setupFunc: func(t *testing.T) (string, func()) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusNotFound)
					_, _ = w.Write([]byte("not found"))
				}))
				return server.URL, server.Close
			},
			expectError: true,
		},
		{
			name:   "local file success",
			source: "",
			setupFunc: func(t *testing.T) (string, func()) {
				tmpFile, err := os.CreateTemp("", "texclip_test_*.html")
				if err != nil {
					t.Fatalf("Failed to create temp file: %v", err)
				}

				content := "<p>file content</p>"
				if _, err := tmpFile.WriteString(content); err != nil {
					t.Fatalf("Failed to write to temp file: %v", err)
				}
				tmpFile.Close()

				return tmpFile.Name(), func() {
					os.Remove(tmpFile.Name())
				}
			},
			expectError: false,
			expectData:  "<p>file content</p>",
		},
		{
			name:        "non-existent file",
			source:      "/path/that/does/not/exist.html",
			expectError: true,
		},
		{
			name:        "unresolvable URL",
			source:      "http://invalid-url-that-does-not-exist.example.com",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := tt.source
			if tt.setupFunc != nil {
				var cleanup func()
				source, cleanup = tt.setupFunc(t)
				defer cleanup()
			}

			reader, err := fetch.GetContent(context.Background(), source)

			if tt.expectError {
				if err == nil {
					reader.Close()
					t.Errorf("GetContent() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("GetContent() error = %v", err)
			}
			defer reader.Close()

			data, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("Failed to read from reader: %v", err)
			}
			if string(data) != tt.expectData {
				t.Errorf("GetContent() data = %q, expected %q", string(data), tt.expectData)
			}
		})
	}
}

func TestGetContentStdin(t *testing.T) {
	reader, err := fetch.GetContent(context.Background(), "-")
	if err != nil {
		t.Fatalf("GetContent(\"-\") error = %v", err)
	}
	if reader == nil {
		t.Fatal("GetContent(\"-\") returned nil reader")
	}
	// the wrapper enforces a size limit; it must not be os.Stdin itself
	if reader == io.ReadCloser(os.Stdin) {
		t.Error("stdin returned unwrapped")
	}
	reader.Close()
}

func TestGetContentUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	reader, err := fetch.GetContent(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetContent() error = %v", err)
	}
	reader.Close()

	if !strings.HasPrefix(gotUA, "texclip/") {
		t.Errorf("User-Agent = %q, want texclip/ prefix", gotUA)
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantHost string
		wantNil  bool
	}{
		{"https URL", "https://en.wikipedia.org/wiki/Energy", "en.wikipedia.org", false},
		{"http URL", "http://example.com/page", "example.com", false},
		{"file path", "/tmp/page.html", "", true},
		{"stdin", "-", "", true},
		{"clipboard", "clipboard", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := fetch.BaseURL(tt.source)
			if tt.wantNil {
				if u != nil {
					t.Errorf("BaseURL(%q) = %v, want nil", tt.source, u)
				}
				return
			}
			if u == nil || u.Hostname() != tt.wantHost {
				t.Errorf("BaseURL(%q) = %v, want host %q", tt.source, u, tt.wantHost)
			}
		})
	}
}
