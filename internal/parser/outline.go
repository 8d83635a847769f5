package parser

import (
	"strconv"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/refs"
)

type appender interface {
	Append(nodes ...doctree.Node)
}

// stackEntry is an open section and its heading level; the document sits at
// level 0.
type stackEntry struct {
	node  appender
	level int
}

// outline nests sections by heading level. Every parser builds its
// document through one.
type outline struct {
	doc   *doctree.Document
	stack []stackEntry
	ids   map[string]int
}

func newOutline(doc *doctree.Document) *outline {
	return &outline{
		doc:   doc,
		stack: []stackEntry{{node: doc, level: 0}},
		ids:   map[string]int{},
	}
}

// open starts a section at level, closing any open section at the same or
// a deeper level.
func (o *outline) open(title []doctree.Node, level, line int) *doctree.Section {
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	depth := len(o.stack)
	t := doctree.NewTitle(depth, "", title...)
	id := o.uniqueID(t.Text())
	t.ID = id
	t.SetLocation(o.doc.Loc(line))

	s := doctree.NewSection(t, depth, id)
	s.SetLocation(o.doc.Loc(line))
	o.stack[len(o.stack)-1].node.Append(s)
	o.stack = append(o.stack, stackEntry{node: s, level: level})
	return s
}

// add appends nodes to the innermost open section.
func (o *outline) add(nodes ...doctree.Node) {
	o.stack[len(o.stack)-1].node.Append(nodes...)
}

// uniqueID returns the anchor for a title, suffixed when the document
// already uses it.
func (o *outline) uniqueID(text string) string {
	id := refs.Anchor(text)
	if id == "" {
		id = "section"
	}
	candidate := id
	for n := o.ids[id]; o.ids[candidate] > 0; n++ {
		candidate = id + "-" + strconv.Itoa(n)
	}
	if candidate != id {
		o.ids[id]++
	}
	o.ids[candidate]++
	return candidate
}
