package templates

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/dgallion1/guides/internal/render"
)

func TestService_HTMLPage(t *testing.T) {
	out, err := New().Render("html/page", map[string]any{
		"Title": "A & B",
		"File":  "index",
		"Meta":  map[string]string{"author": "Jane"},
		"Body":  "<p>hello</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"<title>A &amp; B</title>",
		`<meta name="author" content="Jane">`,
		"<p>hello</p>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected page to contain %q, got:\n%s", want, out)
		}
	}
}

func TestService_TextTemplatesDoNotEscape(t *testing.T) {
	out, err := New().Render("latex/page", map[string]any{
		"Title": "A & B",
		"File":  "index",
		"Body":  `\section{<x>}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `\section{<x>}`) || !strings.Contains(out, "% A & B") {
		t.Errorf("expected unescaped output, got:\n%s", out)
	}
}

func TestService_Preamble(t *testing.T) {
	out, err := New().Render("latex/preamble", map[string]any{
		"Title": "Guides",
		"Files": []string{"index", "guide/intro"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{`\title{Guides}`, `\input{index}`, `\input{guide/intro}`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected preamble to contain %q, got:\n%s", want, out)
		}
	}
}

func TestService_MissingTemplate(t *testing.T) {
	_, err := New().Render("text/page", nil)
	if !errors.Is(err, render.ErrNoTemplate) {
		t.Errorf("expected ErrNoTemplate, got %v", err)
	}
}

func TestService_CustomFS(t *testing.T) {
	s := NewFS(fstest.MapFS{
		"html/admonition.tmpl": {Data: []byte(`<aside class="{{.Name}}">{{.Body}}</aside>`)},
		"html/broken.tmpl":     {Data: []byte(`{{.Name`)},
	})
	out, err := s.Render("html/admonition", map[string]any{"Name": "tip", "Body": "<p>x</p>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `<aside class="tip"><p>x</p></aside>`; out != want {
		t.Errorf("expected %q, got %q", want, out)
	}

	if _, err := s.Render("html/broken", nil); err == nil || errors.Is(err, render.ErrNoTemplate) {
		t.Errorf("expected parse error, got %v", err)
	}
}
