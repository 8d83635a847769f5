package doctree

import "github.com/dgallion1/guides/internal/diag"

// Document is the root node of one parsed source file.
type Document struct {
	container

	File   string // slash-separated path without extension, e.g. "guide/intro"
	Source string // the file name the document was parsed from

	Meta        map[string]string
	Targets     []Target
	Diagnostics diag.List
}

// Target is a hyperlink target declared in a document with `.. _name:`.
type Target struct {
	Name   string // normalized reference name
	Anchor string
	Title  string // text of the section the label precedes, if any
	URL    string // set for external targets
	Alias  string // name of another target this one refers to
	Line   int
}

// NewDocument returns an empty document for file.
func NewDocument(file, source string) *Document {
	return &Document{
		File:   file,
		Source: source,
		Meta:   map[string]string{},
	}
}

func (*Document) Kind() Kind { return KindDocument }

// Title returns the title of the first section, or nil.
func (d *Document) Title() *Title {
	for _, c := range d.children {
		if s, ok := c.(*Section); ok {
			return s.Title()
		}
	}
	return nil
}

// TitleText returns the plain document title, falling back to the file id.
func (d *Document) TitleText() string {
	if t := d.Title(); t != nil {
		return t.Text()
	}
	return d.File
}

// Loc returns a location in this document's source file.
func (d *Document) Loc(line int) diag.Location {
	return diag.Location{File: d.Source, Line: line}
}

// Report appends a diagnostic for this document.
func (d *Document) Report(sev diag.Severity, line int, format string, args ...any) {
	d.Diagnostics.Add(sev, d.Loc(line), format, args...)
}

// AddTarget records a hyperlink target.
func (d *Document) AddTarget(t Target) {
	d.Targets = append(d.Targets, t)
}

// Sections returns the top-level sections in order.
func (d *Document) Sections() []*Section {
	var out []*Section
	for _, c := range d.children {
		if s, ok := c.(*Section); ok {
			out = append(out, s)
		}
	}
	return out
}
