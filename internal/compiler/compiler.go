// Package compiler runs the whole-document passes that follow parsing:
// table of contents, footnote numbering and cross-reference resolution.
// Each pass is a full traversal of the document's shadow tree.
package compiler

import (
	"errors"
	"fmt"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/refs"
	"github.com/dgallion1/guides/internal/resolver"
)

// Compiled is a document after every pass has run.
type Compiled struct {
	Document *doctree.Document
	Shadow   *ShadowTree
	TOC      *TOCEntry
	Toctrees []TocPlacement

	// Diagnostics holds the problems found by the passes. Parse-time
	// diagnostics stay on the document.
	Diagnostics diag.List
}

// AllDiagnostics returns the parse diagnostics followed by the compile
// diagnostics.
func (c *Compiled) AllDiagnostics() diag.List {
	out := make(diag.List, 0, len(c.Document.Diagnostics)+len(c.Diagnostics))
	out = append(out, c.Document.Diagnostics...)
	return append(out, c.Diagnostics...)
}

// Compiler runs the passes with a fixed resolver.
type Compiler struct {
	Resolver *resolver.Resolver
}

// New returns a compiler resolving references with r.
func New(r *resolver.Resolver) *Compiler {
	return &Compiler{Resolver: r}
}

// Compile runs the passes over doc with the default resolver.
func Compile(doc *doctree.Document, ix *resolver.Index) (*Compiled, error) {
	return New(resolver.Default(nil)).Compile(doc, ix)
}

// Compile runs the TOC, footnote and reference passes over doc. The index
// must hold every document of the project and is only read. Authoring
// problems become diagnostics; only a missing document is an error.
func (c *Compiler) Compile(doc *doctree.Document, ix *resolver.Index) (*Compiled, error) {
	if doc == nil {
		return nil, errors.New("compile: nil document")
	}
	st := BuildShadow(doc)
	out := &Compiled{Document: doc, Shadow: st}
	c.tocPass(st, ix, out)
	c.footnotePass(st, out)
	if err := c.referencePass(st, ix, out); err != nil {
		return nil, fmt.Errorf("compile %s: %w", doc.File, err)
	}
	return out, nil
}

// referencePass resolves every cross-reference. A reference no strategy
// can resolve is marked as a broken link and reported as a warning.
func (c *Compiler) referencePass(st *ShadowTree, ix *resolver.Index, out *Compiled) error {
	if c.Resolver == nil {
		return errors.New("no resolver configured")
	}
	doc := st.Document()
	ctx := resolver.Context{Document: doc, Index: ix}
	anonRefs := 0
	st.Walk(func(i int) {
		x, ok := st.Node(i).(*doctree.CrossReference)
		if !ok {
			return
		}
		if x.Anonymous && refs.IsAnonymousTarget(x.Ref.Reference) {
			anonRefs++
		}
		if r, ok := c.Resolver.Resolve(x, ctx); ok {
			x.Resolve(r)
			return
		}
		x.MarkUnresolved()
		out.Diagnostics.Add(diag.Warning, x.Location(), "undefined label: %q", x.Raw)
	})

	anonTargets := 0
	for _, t := range doc.Targets {
		if refs.IsAnonymousTarget(t.Name) {
			anonTargets++
		}
	}
	if anonRefs != anonTargets {
		out.Diagnostics.Add(diag.Warning, doc.Loc(0),
			"anonymous hyperlink mismatch: %d references but %d targets", anonRefs, anonTargets)
	}
	return nil
}
