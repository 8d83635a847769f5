package compiler

import (
	"encoding/json"
	"path"
	"slices"
	"strings"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/refs"
	"github.com/dgallion1/guides/internal/resolver"
)

// TOCEntry is one node of a table of contents. URL is a file id for a
// document and "file#anchor" for a section.
type TOCEntry struct {
	URL      string
	Title    *doctree.Title
	Parent   string // URL of the parent entry; empty for the root
	Children []*TOCEntry
}

// TitleText returns the plain title, or the URL when there is none.
func (e *TOCEntry) TitleText() string {
	if e.Title == nil {
		return e.URL
	}
	return e.Title.Text()
}

func (e *TOCEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		URL      string      `json:"url"`
		Title    string      `json:"title"`
		Parent   string      `json:"parent,omitempty"`
		Children []*TOCEntry `json:"children,omitempty"`
	}{e.URL, e.TitleText(), e.Parent, e.Children})
}

// TocPlacement records the TOC entry whose section holds a toctree.
type TocPlacement struct {
	Toctree *doctree.Toctree
	Entry   string
}

// sectionURL returns the TOC url of a section of file.
func sectionURL(file, id string) string {
	return file + "#" + id
}

// tocPass builds the document's TOC from section nesting and resolves its
// toctree placeholders.
func (c *Compiler) tocPass(st *ShadowTree, ix *resolver.Index, out *Compiled) {
	doc := st.Document()
	root := &TOCEntry{URL: doc.File, Title: doc.Title()}
	entries := map[int]*TOCEntry{0: root}

	// entryFor returns the entry of the section enclosing node i.
	entryFor := func(i int) *TOCEntry {
		if s := st.Enclosing(i, doctree.KindSection); s >= 0 {
			return entries[s]
		}
		return root
	}

	st.Walk(func(i int) {
		switch n := st.Node(i).(type) {
		case *doctree.Section:
			parent := entryFor(i)
			e := &TOCEntry{URL: sectionURL(doc.File, n.ID), Title: n.Title(), Parent: parent.URL}
			parent.Children = append(parent.Children, e)
			entries[i] = e
		case *doctree.Toctree:
			c.resolveToctree(doc, n, ix, out)
			out.Toctrees = append(out.Toctrees, TocPlacement{Toctree: n, Entry: entryFor(i).URL})
		}
	})
	out.TOC = root
}

// resolveToctree fills t.Files from its entries.
func (c *Compiler) resolveToctree(doc *doctree.Document, t *doctree.Toctree, ix *resolver.Index, out *Compiled) {
	t.Files = nil
	loc := t.Location()
	for _, raw := range t.Entries {
		e := refs.ExtractEmbeddedReference(raw)
		target := e.Reference
		switch {
		case target == "self":
			t.Files = append(t.Files, doctree.TocFile{File: doc.File, Title: e.Text})
		case strings.Contains(target, "://"):
			title := e.Text
			if title == "" {
				title = target
			}
			t.Files = append(t.Files, doctree.TocFile{URL: target, Title: title})
		case t.Glob && strings.ContainsAny(target, "*?["):
			matches := globFiles(doc, target, ix)
			if len(matches) == 0 {
				out.Diagnostics.Add(diag.Warning, loc, "toctree glob pattern %q didn't match any documents", target)
			}
			for _, f := range matches {
				t.Files = append(t.Files, doctree.TocFile{File: f})
			}
		default:
			file := resolver.DocPath(doc, target)
			if ix == nil {
				continue
			}
			if _, ok := ix.Document(file); !ok {
				out.Diagnostics.Add(diag.Warning, loc, "toctree contains reference to nonexisting document %q", target)
				continue
			}
			t.Files = append(t.Files, doctree.TocFile{File: file, Title: e.Text})
		}
	}
}

// globFiles returns the project files matching pattern, sorted, without
// the document itself.
func globFiles(doc *doctree.Document, pattern string, ix *resolver.Index) []string {
	if ix == nil {
		return nil
	}
	pattern = resolver.DocPath(doc, pattern)
	var out []string
	for _, f := range ix.Files() {
		if f == doc.File {
			continue
		}
		if ok, err := path.Match(pattern, f); err == nil && ok {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out
}

// ProjectTOC joins the per-document TOCs along toctree edges, starting at
// the root document. Documents already on the current path are skipped so
// cyclic toctrees terminate. The per-document trees are not modified and
// the result shares no nodes with them.
func ProjectTOC(root string, docs map[string]*Compiled) *TOCEntry {
	return projectEntry(root, "", docs, map[string]bool{})
}

func projectEntry(file, parent string, docs map[string]*Compiled, visiting map[string]bool) *TOCEntry {
	c, ok := docs[file]
	if !ok || c.TOC == nil {
		return nil
	}
	visiting[file] = true
	defer delete(visiting, file)

	byURL := map[string]*TOCEntry{}
	var clone func(e *TOCEntry, parent string) *TOCEntry
	clone = func(e *TOCEntry, parent string) *TOCEntry {
		// Titles are copied as text: the document nodes are reused and
		// rewritten by later builds.
		cp := &TOCEntry{URL: e.URL, Title: textTitle(e.TitleText()), Parent: parent}
		byURL[cp.URL] = cp
		for _, ch := range e.Children {
			cp.Children = append(cp.Children, clone(ch, cp.URL))
		}
		return cp
	}
	top := clone(c.TOC, parent)

	for _, p := range c.Toctrees {
		host := byURL[p.Entry]
		if host == nil {
			host = top
		}
		for _, f := range p.Toctree.Files {
			var child *TOCEntry
			switch {
			case f.URL != "":
				child = &TOCEntry{URL: f.URL, Title: textTitle(f.Title), Parent: host.URL}
			case f.File == file || visiting[f.File]:
				continue
			default:
				child = projectEntry(f.File, host.URL, docs, visiting)
				if child == nil {
					continue
				}
				if f.Title != "" {
					child.Title = textTitle(f.Title)
				}
			}
			host.Children = append(host.Children, child)
		}
	}
	return top
}

func textTitle(s string) *doctree.Title {
	return doctree.NewTitle(1, "", doctree.NewText(s))
}
