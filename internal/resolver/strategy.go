package resolver

import (
	"path"
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/refs"
)

// Inventory is an external documentation set addressed by an interlink
// prefix or a role domain.
type Inventory struct {
	URL     string            `toml:"url" yaml:"url"`
	Objects map[string]string `toml:"objects" yaml:"objects"` // reference → path below URL
}

// Link returns the absolute URL of a reference, if the inventory lists it.
func (inv Inventory) Link(reference string) (string, bool) {
	p, ok := inv.Objects[reference]
	if !ok {
		p, ok = inv.Objects[strings.ToLower(reference)]
	}
	if !ok {
		return "", false
	}
	if strings.Contains(p, "://") {
		return p, true
	}
	return strings.TrimSuffix(inv.URL, "/") + "/" + strings.TrimPrefix(p, "/"), true
}

// InterlinkStrategy resolves `prefix:target` references and domain roles
// such as :php:class: against configured inventories.
type InterlinkStrategy struct {
	Inventories map[string]Inventory
}

func (s *InterlinkStrategy) key(ref *doctree.CrossReference) string {
	if ref.Ref.Interlink != "" {
		return ref.Ref.Interlink
	}
	return ref.Domain
}

func (s *InterlinkStrategy) Supports(ref *doctree.CrossReference) bool {
	_, ok := s.Inventories[s.key(ref)]
	return ok
}

func (s *InterlinkStrategy) Resolve(ref *doctree.CrossReference, _ Context) (doctree.Resolved, bool) {
	inv := s.Inventories[s.key(ref)]
	url, ok := inv.Link(ref.Ref.Reference)
	if !ok {
		return doctree.Resolved{}, false
	}
	return doctree.Resolved{URL: url, Text: ref.Ref.Reference}, true
}

// DocStrategy resolves :doc: references. Paths are relative to the
// referencing document unless they start with "/".
type DocStrategy struct{}

func (DocStrategy) Supports(ref *doctree.CrossReference) bool {
	return ref.Role == "doc" && ref.Domain == ""
}

func (DocStrategy) Resolve(ref *doctree.CrossReference, ctx Context) (doctree.Resolved, bool) {
	if ctx.Index == nil {
		return doctree.Resolved{}, false
	}
	file := DocPath(ctx.Document, fullReference(ref))
	title, ok := ctx.Index.Title(file)
	if !ok {
		return doctree.Resolved{}, false
	}
	return doctree.Resolved{File: file, Text: title}, true
}

// DocPath converts a document reference as written in doc into a file id.
func DocPath(doc *doctree.Document, reference string) string {
	reference = strings.TrimSpace(reference)
	var p string
	if rest, ok := strings.CutPrefix(reference, "/"); ok {
		p = path.Clean(rest)
	} else {
		dir := "."
		if doc != nil {
			dir = path.Dir(doc.File)
		}
		p = path.Join(dir, reference)
	}
	if ext := path.Ext(p); ext == ".rst" || ext == ".txt" || ext == ".md" {
		p = strings.TrimSuffix(p, ext)
	}
	return strings.TrimPrefix(p, "./")
}

// LabelStrategy resolves :ref: references, `name`_ hyperlink references and
// domain roles. Names are looked up in the referencing document's own
// targets, then in project-wide labels, then among the section titles of
// the referencing document.
type LabelStrategy struct{}

// maxAliasHops bounds chains of `.. _a: b_` targets.
const maxAliasHops = 8

func (LabelStrategy) Supports(ref *doctree.CrossReference) bool {
	return ref.Role != "doc" || ref.Domain != ""
}

func (LabelStrategy) Resolve(ref *doctree.CrossReference, ctx Context) (doctree.Resolved, bool) {
	name := fullReference(ref)
	if ref.Anonymous {
		// Anonymous references already carry their generated target name.
		name = ref.Ref.Reference
	}
	return lookup(ctx, refs.NormalizeName(name), 0)
}

func lookup(ctx Context, name string, hops int) (doctree.Resolved, bool) {
	if hops > maxAliasHops {
		return doctree.Resolved{}, false
	}
	if ctx.Document != nil {
		for _, t := range ctx.Document.Targets {
			if t.Name != name {
				continue
			}
			switch {
			case t.Alias != "":
				return lookup(ctx, t.Alias, hops+1)
			case t.URL != "":
				return doctree.Resolved{URL: t.URL, Text: t.URL}, true
			}
		}
	}
	if ctx.Index != nil {
		if l, ok := ctx.Index.Label(name); ok {
			return doctree.Resolved{File: l.File, Anchor: l.Anchor, Text: l.Title}, true
		}
		if ctx.Document != nil {
			if l, ok := ctx.Index.Section(ctx.Document.File, name); ok {
				return doctree.Resolved{File: l.File, Anchor: l.Anchor, Text: l.Title}, true
			}
		}
	}
	return doctree.Resolved{}, false
}

// fullReference rebuilds the reference target including an interlink
// prefix that no inventory claimed.
func fullReference(ref *doctree.CrossReference) string {
	if ref.Ref.Interlink != "" {
		return ref.Ref.Interlink + ":" + ref.Ref.Reference
	}
	return ref.Ref.Reference
}
