package compiler

import (
	"strings"
	"testing"

	"github.com/dgallion1/guides/internal/builtin"
	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/parser"
	"github.com/dgallion1/guides/internal/resolver"
	"github.com/google/go-cmp/cmp"
)

func parse(src, name string) *doctree.Document {
	p := &parser.RSTParser{Registry: builtin.NewRegistry()}
	return p.ParseString(src, name)
}

// project parses sources and compiles each against the shared index.
func project(t *testing.T, sources map[string]string) map[string]*Compiled {
	t.Helper()
	var docs []*doctree.Document
	for name, src := range sources {
		docs = append(docs, parse(src, name))
	}
	ix := resolver.BuildIndex(docs)
	out := map[string]*Compiled{}
	for _, d := range docs {
		c, err := Compile(d, ix)
		if err != nil {
			t.Fatalf("compile %s: %v", d.File, err)
		}
		out[d.File] = c
	}
	return out
}

const shadowSrc = `Title
=====

Para with *emphasis* and a ` + "`link <https://example.org>`_" + `.

- item one
- item two

+-----+-----+
| a   | b   |
+-----+-----+

Sub
---

.. note:: careful
`

func TestBuildShadow_NodeCountParentsAndOrder(t *testing.T) {
	doc := parse(shadowSrc, "shadow.rst")
	st := BuildShadow(doc)

	var preorder []doctree.Node
	doctree.Walk(doc, func(n doctree.Node) bool {
		preorder = append(preorder, n)
		return true
	})
	if st.Len() != len(preorder) {
		t.Fatalf("expected %d shadow nodes, got %d", len(preorder), st.Len())
	}
	if st.Node(0) != doctree.Node(doc) || st.Parent(0) != -1 {
		t.Fatalf("expected document at the root")
	}
	for i, n := range preorder {
		if st.Node(i) != n {
			t.Fatalf("node %d: pre-order mismatch, expected %s got %s", i, n.Kind(), st.Node(i).Kind())
		}
	}
	for i := 1; i < st.Len(); i++ {
		parent := st.Node(st.Parent(i))
		found := false
		for _, c := range parent.Children() {
			if c == st.Node(i) {
				found = true
			}
		}
		if !found {
			t.Errorf("node %d (%s): parent %s does not own it", i, st.Node(i).Kind(), parent.Kind())
		}
	}
	for i := 0; i < st.Len(); i++ {
		if len(st.Children(i)) != len(st.Node(i).Children()) {
			t.Errorf("node %d: expected %d children, got %d", i, len(st.Node(i).Children()), len(st.Children(i)))
		}
	}
}

func TestBuildShadow_CountsEveryCompoundNode(t *testing.T) {
	doc := doctree.NewDocument("d", "d.rst")
	p := doctree.NewParagraph(doctree.NewText("a"), doctree.NewSpan(doctree.StyleStrong, "b"))
	q := &doctree.BlockQuote{}
	q.Append(doctree.NewParagraph(doctree.NewText("c")))
	doc.Append(p, q)

	// document, paragraph, 2 spans, quote, paragraph, span
	if got := BuildShadow(doc).Len(); got != 7 {
		t.Errorf("expected 7 nodes, got %d", got)
	}
}

func TestTOC_TwoSections(t *testing.T) {
	doc := parse("First\n=====\n\nA.\n\nSecond\n======\n\nB.\n", "guide.rst")
	c, err := Compile(doc, resolver.BuildIndex([]*doctree.Document{doc}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := c.TOC
	if root.URL != "guide" {
		t.Errorf("expected root url %q, got %q", "guide", root.URL)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	for i, want := range []string{"First", "Second"} {
		e := root.Children[i]
		if e.TitleText() != want {
			t.Errorf("child %d: expected %q, got %q", i, want, e.TitleText())
		}
		if e.Parent != root.URL {
			t.Errorf("child %d: expected parent %q, got %q", i, root.URL, e.Parent)
		}
	}
	if root.Children[1].URL != "guide#second" {
		t.Errorf("unexpected url %q", root.Children[1].URL)
	}
}

func TestTOC_NestedSections(t *testing.T) {
	doc := parse("Top\n===\n\nA\n--\n\nB\n--\n\nB1\n~~\n", "n.rst")
	c, _ := Compile(doc, nil)

	type flat struct{ URL, Parent string }
	var got []flat
	var visit func(e *TOCEntry)
	visit = func(e *TOCEntry) {
		got = append(got, flat{e.URL, e.Parent})
		for _, ch := range e.Children {
			visit(ch)
		}
	}
	visit(c.TOC)
	want := []flat{
		{"n", ""},
		{"n#top", "n"},
		{"n#a", "n#top"},
		{"n#b", "n#top"},
		{"n#b1", "n#b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("toc mismatch (-want +got):\n%s", diff)
	}
}

func TestTOC_ToctreeResolution(t *testing.T) {
	index := `Home
====

.. toctree::
   :glob:

   self
   Getting started <guide/install>
   guide/u*
   missing
   Python <https://python.org>
`
	compiled := project(t, map[string]string{
		"index.rst":         index,
		"guide/install.rst": "Install\n=======\n",
		"guide/usage.rst":   "Usage\n=====\n",
		"guide/upgrade.rst": "Upgrade\n=======\n",
	})
	c := compiled["index"]
	if len(c.Toctrees) != 1 {
		t.Fatalf("expected 1 toctree, got %d", len(c.Toctrees))
	}
	if c.Toctrees[0].Entry != "index#home" {
		t.Errorf("expected toctree inside %q, got %q", "index#home", c.Toctrees[0].Entry)
	}
	want := []doctree.TocFile{
		{File: "index"},
		{File: "guide/install", Title: "Getting started"},
		{File: "guide/upgrade"},
		{File: "guide/usage"},
		{URL: "https://python.org", Title: "Python"},
	}
	if diff := cmp.Diff(want, c.Toctrees[0].Toctree.Files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	if c.Diagnostics.Count(diag.Warning) != 1 || !strings.Contains(c.Diagnostics[0].Message, "missing") {
		t.Errorf("expected one warning for the missing document, got %v", c.Diagnostics)
	}
}

func TestProjectTOC(t *testing.T) {
	compiled := project(t, map[string]string{
		"index.rst": "Home\n====\n\n.. toctree::\n\n   a\n   b\n",
		"a.rst":     "Alpha\n=====\n\nPart\n----\n",
		// b links back to the root, which must not recurse.
		"b.rst": "Beta\n====\n\n.. toctree::\n\n   index\n",
	})
	root := ProjectTOC("index", compiled)
	if root == nil {
		t.Fatal("expected a project toc")
	}
	home := root.Children[0]
	var titles []string
	for _, ch := range home.Children {
		titles = append(titles, ch.TitleText())
		if ch.Parent != home.URL {
			t.Errorf("expected parent %q, got %q", home.URL, ch.Parent)
		}
	}
	if diff := cmp.Diff([]string{"Alpha", "Beta"}, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	beta := home.Children[1]
	if len(beta.Children) != 1 || len(beta.Children[0].Children) != 0 {
		t.Errorf("expected the cycle back to index to be cut")
	}
	if len(compiled["index"].TOC.Children[0].Children) != 0 {
		t.Error("expected the per-document toc to stay unchanged")
	}
}

func TestProjectTOC_TitlesAreDetached(t *testing.T) {
	compiled := project(t, map[string]string{
		"index.rst": "Home\n====\n\n.. toctree::\n\n   a\n",
		"a.rst":     "Alpha\n=====\n",
	})
	root := ProjectTOC("index", compiled)
	if root == nil {
		t.Fatal("expected a project toc")
	}
	alpha := root.Children[0].Children[0]
	if alpha.Title == compiled["a"].TOC.Title {
		t.Fatal("expected the project toc to copy the document title")
	}

	// A later build rewrites the document title in place.
	compiled["a"].TOC.Title.Append(doctree.NewText(" (edited)"))
	if got := alpha.TitleText(); got != "Alpha" {
		t.Errorf("expected %q, got %q", "Alpha", got)
	}
}

func TestFootnotePass_Numbering(t *testing.T) {
	src := `Refs [#]_ [3]_ [#a]_ [#]_ [CIT]_ [9]_.

.. [#] first auto
.. [3] manual
.. [#a] named
.. [#] second auto
.. [CIT] citation
`
	doc := parse(src, "fn.rst")
	c, err := Compile(doc, resolver.BuildIndex([]*doctree.Document{doc}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var notes []int
	var ids []string
	var refs []string
	doctree.Walk(doc, func(n doctree.Node) bool {
		switch n := n.(type) {
		case *doctree.Footnote:
			notes = append(notes, n.Number)
			ids = append(ids, n.ID)
		case *doctree.FootnoteReference:
			refs = append(refs, n.TargetID)
		}
		return true
	})
	if diff := cmp.Diff([]int{1, 3, 2, 4, 0}, notes); diff != "" {
		t.Errorf("numbers mismatch (-want +got):\n%s", diff)
	}
	wantIDs := []string{"footnote-1", "footnote-3", "footnote-2", "footnote-4", "citation-cit"}
	if diff := cmp.Diff(wantIDs, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	wantRefs := []string{"footnote-1", "footnote-3", "footnote-2", "footnote-4", "citation-cit", ""}
	if diff := cmp.Diff(wantRefs, refs); diff != "" {
		t.Errorf("refs mismatch (-want +got):\n%s", diff)
	}
	if c.Diagnostics.Count(diag.Warning) != 1 || !strings.Contains(c.Diagnostics[0].Message, "[9]") {
		t.Errorf("expected a warning for [9], got %v", c.Diagnostics)
	}
}

func TestCompile_RerunIsStable(t *testing.T) {
	doc := parse("A [#]_ and [2]_ and [#b]_.\n\n.. [#] one\n.. [2] two\n.. [#b] bee\n", "fn.rst")
	ix := resolver.BuildIndex([]*doctree.Document{doc})

	numbers := func() []int {
		var out []int
		doctree.Walk(doc, func(n doctree.Node) bool {
			switch n := n.(type) {
			case *doctree.Footnote:
				out = append(out, n.Number)
			case *doctree.FootnoteReference:
				out = append(out, -n.Number)
			}
			return true
		})
		return out
	}
	for i := range 2 {
		if _, err := Compile(doc, ix); err != nil {
			t.Fatalf("compile %d: %v", i, err)
		}
		if diff := cmp.Diff([]int{-1, -2, -3, 1, 2, 3}, numbers()); diff != "" {
			t.Errorf("pass %d numbers mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestReferencePass(t *testing.T) {
	compiled := project(t, map[string]string{
		"index.rst": "Home\n====\n\nSee :ref:`setup`, :doc:`install` and :ref:`nowhere`.\n",
		"install.rst": ".. _setup:\n\nSetup\n=====\n",
	})
	c := compiled["index"]
	var xrefs []*doctree.CrossReference
	doctree.Walk(c.Document, func(n doctree.Node) bool {
		if x, ok := n.(*doctree.CrossReference); ok {
			xrefs = append(xrefs, x)
		}
		return true
	})
	if len(xrefs) != 3 {
		t.Fatalf("expected 3 references, got %d", len(xrefs))
	}
	r, ok := xrefs[0].Resolution()
	if !ok || r.File != "install" || r.Anchor != "setup" || xrefs[0].DisplayText() != "Setup" {
		t.Errorf("unexpected resolution %+v", r)
	}
	if _, ok := xrefs[1].Resolution(); !ok {
		t.Error("expected the doc reference to resolve")
	}
	if !xrefs[2].Unresolved() {
		t.Error("expected the missing label to be unresolved")
	}
	if c.Diagnostics.Count(diag.Warning) != 1 {
		t.Errorf("expected 1 warning, got %v", c.Diagnostics)
	}
	if c.Diagnostics.HasErrors() {
		t.Error("broken references must not be errors")
	}
}

func TestReferencePass_AnonymousMismatch(t *testing.T) {
	doc := parse("`a`__ and `b`__\n\n.. __: https://a.example\n", "anon.rst")
	c, err := Compile(doc, resolver.BuildIndex([]*doctree.Document{doc}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var msgs []string
	for _, d := range c.Diagnostics {
		msgs = append(msgs, d.Message)
	}
	if !strings.Contains(strings.Join(msgs, "\n"), "anonymous hyperlink mismatch: 2 references but 1 targets") {
		t.Errorf("expected mismatch warning, got %v", msgs)
	}
}

func TestCompile_NilDocument(t *testing.T) {
	if _, err := Compile(nil, nil); err == nil {
		t.Error("expected error for nil document")
	}
}

func TestTOCEntry_MarshalJSON(t *testing.T) {
	e := &TOCEntry{URL: "a", Title: textTitle("A"), Children: []*TOCEntry{{URL: "a#b", Parent: "a"}}}
	b, err := e.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"url":"a","title":"A","children":[{"url":"a#b","title":"a#b","parent":"a"}]}`
	if string(b) != want {
		t.Errorf("expected %s, got %s", want, b)
	}
}
