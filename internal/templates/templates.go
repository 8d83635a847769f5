// Package templates provides the page templates used by the renderers.
// Templates under html/ are parsed with html/template; all others with
// text/template. Names are "<format>/<name>" without the .tmpl suffix.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/dgallion1/guides/internal/render"
)

//go:embed files
var embedded embed.FS

type executor interface {
	Execute(w *bytes.Buffer, data any) error
}

type htmlExec struct{ t *htmltemplate.Template }

func (e htmlExec) Execute(w *bytes.Buffer, data any) error { return e.t.Execute(w, data) }

type textExec struct{ t *texttemplate.Template }

func (e textExec) Execute(w *bytes.Buffer, data any) error { return e.t.Execute(w, data) }

// Service renders named templates from a file system. Parsed templates
// are cached.
type Service struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[string]executor
}

// New returns the service backed by the built-in templates.
func New() *Service {
	sub, err := fs.Sub(embedded, "files")
	if err != nil {
		panic(err) // the directory is embedded above
	}
	return NewFS(sub)
}

// NewFS returns a service reading "<format>/<name>.tmpl" files from fsys.
func NewFS(fsys fs.FS) *Service {
	return &Service{fsys: fsys, cache: map[string]executor{}}
}

// Render executes the template called name. Missing templates report
// render.ErrNoTemplate. For HTML templates the "Body" value is trusted
// markup produced by the renderer and is not escaped again.
func (s *Service) Render(name string, data map[string]any) (string, error) {
	ex, err := s.load(name)
	if err != nil {
		return "", err
	}
	if isHTML(name) {
		data = trustBody(data)
	}
	var buf bytes.Buffer
	if err := ex.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *Service) load(name string) (executor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ex, ok := s.cache[name]; ok {
		return ex, nil
	}
	file := path.Clean(name) + ".tmpl"
	src, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", render.ErrNoTemplate, name)
	}
	var ex executor
	if isHTML(name) {
		t, err := htmltemplate.New(name).Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		ex = htmlExec{t}
	} else {
		t, err := texttemplate.New(name).Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		ex = textExec{t}
	}
	s.cache[name] = ex
	return ex, nil
}

func isHTML(name string) bool {
	return strings.HasPrefix(name, "html/")
}

func trustBody(data map[string]any) map[string]any {
	body, ok := data["Body"].(string)
	if !ok {
		return data
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	out["Body"] = htmltemplate.HTML(body)
	return out
}
