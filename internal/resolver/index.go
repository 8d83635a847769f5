package resolver

import (
	"sort"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/refs"
)

// Label is a place a reference can point at.
type Label struct {
	File   string
	Anchor string
	Title  string
}

// Index is the project-wide reference index. It is built once every
// document of a project has been parsed and is read-only afterwards, so it
// may be shared by concurrent compile passes.
type Index struct {
	docs     map[string]*doctree.Document
	files    []string
	labels   map[string]Label
	sections map[string]map[string]Label // file → normalized title → section

	// Diagnostics holds problems found while indexing, such as labels
	// defined twice.
	Diagnostics diag.List
}

// BuildIndex registers the files, labels and section titles of docs.
// Documents are indexed in file order; when a label is defined twice the
// first definition wins and the second is reported.
func BuildIndex(docs []*doctree.Document) *Index {
	ix := &Index{
		docs:     make(map[string]*doctree.Document, len(docs)),
		labels:   map[string]Label{},
		sections: map[string]map[string]Label{},
	}
	sorted := make([]*doctree.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	for _, doc := range sorted {
		if _, dup := ix.docs[doc.File]; dup {
			ix.Diagnostics.Add(diag.Warning, doc.Loc(0), "duplicate document %q", doc.File)
			continue
		}
		ix.docs[doc.File] = doc
		ix.files = append(ix.files, doc.File)

		for _, t := range doc.Targets {
			// Only internal targets are visible project-wide. External,
			// alias and anonymous targets stay with their document.
			if t.Anchor == "" {
				continue
			}
			if prev, ok := ix.labels[t.Name]; ok {
				ix.Diagnostics.Add(diag.Warning, doc.Loc(t.Line),
					"duplicate label %q, other instance in %s", t.Name, prev.File)
				continue
			}
			title := t.Title
			if title == "" {
				title = t.Name
			}
			ix.labels[t.Name] = Label{File: doc.File, Anchor: t.Anchor, Title: title}
		}

		secs := map[string]Label{}
		doctree.Walk(doc, func(n doctree.Node) bool {
			s, ok := n.(*doctree.Section)
			if !ok {
				return true
			}
			title := s.Title().Text()
			key := refs.NormalizeName(title)
			if _, seen := secs[key]; !seen {
				secs[key] = Label{File: doc.File, Anchor: s.ID, Title: title}
			}
			return true
		})
		ix.sections[doc.File] = secs
	}
	return ix
}

// Files returns the indexed file ids in sorted order.
func (ix *Index) Files() []string {
	return ix.files
}

// Document returns the parsed document for a file id.
func (ix *Index) Document(file string) (*doctree.Document, bool) {
	d, ok := ix.docs[file]
	return d, ok
}

// Title returns the title of a document.
func (ix *Index) Title(file string) (string, bool) {
	d, ok := ix.docs[file]
	if !ok {
		return "", false
	}
	return d.TitleText(), true
}

// Label looks up a project-wide label by name.
func (ix *Index) Label(name string) (Label, bool) {
	l, ok := ix.labels[refs.NormalizeName(name)]
	return l, ok
}

// Section looks up a section of file by its title.
func (ix *Index) Section(file, title string) (Label, bool) {
	l, ok := ix.sections[file][refs.NormalizeName(title)]
	return l, ok
}
