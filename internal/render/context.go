package render

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
)

// ErrNoTemplate is returned by Templates when a template is not defined.
var ErrNoTemplate = errors.New("template not found")

// Templates renders named templates. Renderers treat ErrNoTemplate as "use
// the built-in markup".
type Templates interface {
	Render(name string, data map[string]any) (string, error)
}

// Options configure a render run.
type Options struct {
	Tags      []string
	Templates Templates
	// Extension is appended to document file ids in links, e.g. ".html".
	Extension string
	// TitleOf looks up the title of another document in the project.
	TitleOf func(file string) (string, bool)
}

// Context is passed to every renderer during one document render.
type Context struct {
	Format   string
	Document *doctree.Document
	Tags     []string

	reg  *Registry
	opts Options
}

// NewContext returns a context for rendering doc in format.
func NewContext(reg *Registry, doc *doctree.Document, format string, opts Options) *Context {
	return &Context{
		Format:   format,
		Document: doc,
		Tags:     opts.Tags,
		reg:      reg,
		opts:     opts,
	}
}

// Templates returns the template service, or nil.
func (c *Context) Templates() Templates {
	return c.opts.Templates
}

// Template renders a named template for the active format. ok is false
// when no template service is set or the template does not exist.
func (c *Context) Template(name string, data map[string]any) (out string, ok bool, err error) {
	if c.opts.Templates == nil {
		return "", false, nil
	}
	out, err = c.opts.Templates.Render(c.Format+"/"+name, data)
	if errors.Is(err, ErrNoTemplate) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("template %s/%s: %w", c.Format, name, err)
	}
	return out, true, nil
}

// Render renders one node with the renderer the registry picks for it.
func (c *Context) Render(n doctree.Node) (string, error) {
	r, err := c.reg.Lookup(c.Format, n)
	if err != nil {
		return "", err
	}
	return r.Render(c, n)
}

// RenderNodes renders nodes in order and concatenates the output.
func (c *Context) RenderNodes(nodes []doctree.Node) (string, error) {
	var sb strings.Builder
	for _, n := range nodes {
		out, err := c.Render(n)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

// RenderChildren renders the children of n.
func (c *Context) RenderChildren(n doctree.Node) (string, error) {
	return c.RenderNodes(n.Children())
}

// Only reports whether an only-directive expression holds for the active
// format and tags.
func (c *Context) Only(expression string) (bool, error) {
	return EvalOnly(expression, c.Format, c.Tags)
}

// Title returns the title of the document file, falling back to file.
func (c *Context) Title(file string) string {
	if c.Document != nil && file == c.Document.File {
		return c.Document.TitleText()
	}
	if c.opts.TitleOf != nil {
		if t, ok := c.opts.TitleOf(file); ok {
			return t
		}
	}
	return file
}

// URL returns a link from the current document to anchor in file. An empty
// file or the current document's own file yields a fragment-only link.
func (c *Context) URL(file, anchor string) string {
	frag := ""
	if anchor != "" {
		frag = "#" + anchor
	}
	cur := ""
	if c.Document != nil {
		cur = c.Document.File
	}
	if file == "" || file == cur {
		if frag == "" {
			return "#"
		}
		return frag
	}
	return relative(cur, file) + c.opts.Extension + frag
}

// relative returns the slash path to file as seen from the directory of
// from.
func relative(from, file string) string {
	dir := path.Dir(from)
	if dir == "." {
		return file
	}
	fromParts := strings.Split(dir, "/")
	toParts := strings.Split(file, "/")
	i := 0
	for i < len(fromParts) && i < len(toParts)-1 && fromParts[i] == toParts[i] {
		i++
	}
	up := strings.Repeat("../", len(fromParts)-i)
	return up + strings.Join(toParts[i:], "/")
}

// Document renders doc as a complete page in format. When a template
// service is configured and defines "<format>/page", the rendered body is
// wrapped with it.
func Document(reg *Registry, doc *doctree.Document, format string, opts Options) (string, error) {
	if doc == nil {
		return "", errors.New("render: nil document")
	}
	ctx := NewContext(reg, doc, format, opts)
	body, err := ctx.Render(doc)
	if err != nil {
		return "", fmt.Errorf("render %s as %s: %w", doc.File, format, err)
	}
	page, ok, err := ctx.Template("page", map[string]any{
		"Title": doc.TitleText(),
		"File":  doc.File,
		"Meta":  doc.Meta,
		"Body":  body,
	})
	if err != nil {
		return "", err
	}
	if ok {
		return page, nil
	}
	return body, nil
}
