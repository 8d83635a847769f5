package html

import (
	"strings"
	"testing"

	"github.com/dgallion1/guides/internal/builtin"
	"github.com/dgallion1/guides/internal/compiler"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/parser"
	"github.com/dgallion1/guides/internal/render"
	"github.com/dgallion1/guides/internal/resolver"
)

func newRegistry() *render.Registry {
	reg := render.NewRegistry()
	Register(reg)
	return reg
}

func renderRST(t *testing.T, src string, opts render.Options) string {
	t.Helper()
	p := &parser.RSTParser{Registry: builtin.NewRegistry()}
	doc := p.ParseString(src, "guide.rst")
	c, err := compiler.Compile(doc, resolver.BuildIndex([]*doctree.Document{doc}))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, err := render.Document(newRegistry(), c.Document, Format, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

func renderNode(t *testing.T, n doctree.Node, opts render.Options) string {
	t.Helper()
	doc := doctree.NewDocument("guide/intro", "guide/intro.rst")
	doc.Append(n)
	out, err := render.Document(newRegistry(), doc, Format, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("expected output to contain %q, got:\n%s", w, out)
		}
	}
}

func assertNotContains(t *testing.T, out string, unwanted ...string) {
	t.Helper()
	for _, w := range unwanted {
		if strings.Contains(out, w) {
			t.Errorf("expected output not to contain %q, got:\n%s", w, out)
		}
	}
}

const page = `Guide
=====

.. _setup:

Setup
-----

See :ref:` + "`setup`" + `, :doc:` + "`/index`" + ` and ` + "`missing`_" + `.

Text with *em*, **strong**, ` + "``code``" + ` and :abbr:` + "`LIFO (last in)`" + `.

.. note::

   Be careful <here>.

.. code-block:: php

   echo "<b>";

.. raw:: html

   <div class="x"></div>

.. raw:: latex

   \newpage

.. only:: latex

   Latex only.

.. only:: html and not draft

   Published only.
`

func TestRender_Page(t *testing.T) {
	out := renderRST(t, page, render.Options{})

	assertContains(t, out,
		`<div class="section" id="guide">`,
		`<h1>Guide<a class="headerlink" href="#guide"`,
		`<h2>Setup`,
		`<a class="reference internal" href="#setup">`,
		`<em>em</em>`,
		`<strong>strong</strong>`,
		`<code class="literal">code</code>`,
		`<abbr title="last in">LIFO</abbr>`,
		`<div class="admonition note">`,
		`<p class="admonition-title">Note</p>`,
		`Be careful &lt;here&gt;.`,
		`<div class="highlight-php notranslate"><pre>echo &quot;&lt;b&gt;&quot;;`,
		`<div class="x"></div>`,
		"Published only.",
	)
	assertNotContains(t, out, `\newpage`, "Latex only.")
	if got := strings.Count(out, `class="broken-link"`); got != 2 {
		t.Errorf("expected 2 broken links, got %d", got)
	}
}

func TestRender_OnlyUsesTags(t *testing.T) {
	out := renderRST(t, page, render.Options{Tags: []string{"draft"}})
	assertNotContains(t, out, "Published only.")
}

func TestRender_Table(t *testing.T) {
	cell := func(text string, colspan int) *doctree.TableColumn {
		c := doctree.NewTableColumn(text, colspan)
		c.SetChildren([]doctree.Node{doctree.NewParagraph(doctree.NewText(text))})
		return c
	}
	tall := cell("b", 1)
	tall.IncrementRowspan()
	table := &doctree.Table{
		Header: []*doctree.TableRow{{Columns: []*doctree.TableColumn{cell("head", 2)}}},
		Rows: []*doctree.TableRow{
			{Columns: []*doctree.TableColumn{cell("a", 1), tall}},
			{Columns: []*doctree.TableColumn{cell("c", 1)}},
		},
	}
	out := renderNode(t, table, render.Options{})
	assertContains(t, out,
		`<table class="docutils">`,
		`<thead>`,
		`<th colspan="2"><p>head</p></th>`,
		`<td rowspan="2"><p>b</p></td>`,
		"<tr><td><p>c</p></td></tr>",
	)
}

func TestRender_Toctree(t *testing.T) {
	tree := &doctree.Toctree{
		Caption: "Contents",
		Files: []doctree.TocFile{
			{File: "guide/setup"},
			{File: "index", Title: "Home"},
			{URL: "https://example.com", Title: "Example"},
		},
	}
	out := renderNode(t, tree, render.Options{
		Extension: ".html",
		TitleOf: func(file string) (string, bool) {
			return map[string]string{"guide/setup": "Setup"}[file], file == "guide/setup"
		},
	})
	assertContains(t, out,
		`<p class="caption">Contents</p>`,
		`<a class="reference internal" href="setup.html">Setup</a>`,
		`<a class="reference internal" href="../index.html">Home</a>`,
		`href="https://example.com">Example</a>`,
	)

	tree.Hidden = true
	if out := renderNode(t, tree, render.Options{}); out != "" {
		t.Errorf("expected hidden toctree to render nothing, got %q", out)
	}
}

func TestRender_CrossReferences(t *testing.T) {
	internal := doctree.NewCrossReference("ref", "", "install")
	internal.Resolve(doctree.Resolved{File: "index", Anchor: "install", Text: "Installing"})
	external := doctree.NewCrossReference("class", "php", "php:ArrayAccess")
	external.Resolve(doctree.Resolved{URL: "https://php.net/arrayaccess", Text: "ArrayAccess"})
	broken := doctree.NewCrossReference("ref", "", "nowhere")
	broken.MarkUnresolved()

	out := renderNode(t, doctree.NewParagraph(internal, external, broken), render.Options{Extension: ".html"})
	assertContains(t, out,
		`<a class="reference internal" href="../index.html#install">Installing</a>`,
		`<a class="reference external" href="https://php.net/arrayaccess">ArrayAccess</a>`,
		`<span class="broken-link" title="unresolved reference: nowhere">nowhere</span>`,
	)
}

func TestRender_Footnotes(t *testing.T) {
	ref := &doctree.FootnoteReference{Key: "1", Number: 1, TargetID: "footnote-1", Resolved: true}
	cite := &doctree.FootnoteReference{Key: "CIT2002", Citation: true, TargetID: "citation-cit2002", Resolved: true}
	missing := &doctree.FootnoteReference{Key: "9"}
	fn := &doctree.Footnote{Key: "1", Number: 1, ID: "footnote-1"}
	fn.Append(doctree.NewParagraph(doctree.NewText("Body.")))

	doc := doctree.NewDocument("index", "index.rst")
	doc.Append(doctree.NewParagraph(ref, cite, missing), fn)
	out, err := render.Document(newRegistry(), doc, Format, render.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertContains(t, out,
		`<a class="footnote-reference" href="#footnote-1">[1]</a>`,
		`<a class="citation-reference" href="#citation-cit2002">[CIT2002]</a>`,
		`<span class="broken-link">[9]</span>`,
		`<aside class="footnote" id="footnote-1">`,
		`<span class="label">[1]</span>`,
	)
}

func TestRender_Lists(t *testing.T) {
	l := &doctree.List{Ordered: true, Enumerator: "loweralpha", Start: 3}
	item := &doctree.ListItem{}
	item.Append(doctree.NewParagraph(doctree.NewText("third")))
	l.Append(item)

	out := renderNode(t, l, render.Options{})
	assertContains(t, out, `<ol class="loweralpha" type="a" start="3">`, "<li>third</li>")
}

func TestRender_Figure(t *testing.T) {
	img := &doctree.Image{URI: "img/a.png", Alt: "A", Width: "100", Align: "center", Caption: "A caption", Target: "https://example.com"}
	img.AddClass("figure")
	out := renderNode(t, img, render.Options{})
	assertContains(t, out,
		`<figure class="align-center figure">`,
		`<a class="reference external image-reference" href="https://example.com"><img src="img/a.png" alt="A" width="100" /></a>`,
		"<figcaption>\n<p>A caption</p>",
	)
}

func TestRender_ConfigurationBlock(t *testing.T) {
	block := &doctree.ConfigurationBlock{}
	block.Append(doctree.NewConfigurationTab("YAML", "a: 1", &doctree.LiteralBlock{Value: "a: 1", Language: "yaml"}))
	out := renderNode(t, block, render.Options{})
	assertContains(t, out,
		`<div class="configuration-block">`,
		`data-tab="yaml" data-hash="`+doctree.ContentHash("a: 1")+`"`,
		`<p class="configuration-tab-label">YAML</p>`,
	)
}

func TestRender_ErrorNode(t *testing.T) {
	out := renderNode(t, doctree.NewError(`unknown role "x"`, ":x:`y`"), render.Options{})
	assertContains(t, out, `<span class="problematic" title="unknown role &quot;x&quot;">:x:`+"`y`"+`</span>`)
}

func TestRender_LineNumbers(t *testing.T) {
	out := renderNode(t, &doctree.LiteralBlock{Value: "a\nb", LineNumbers: true, Caption: "demo"}, render.Options{})
	assertContains(t, out,
		`<div class="code-block-caption">demo</div>`,
		`<pre class="literal-block"><span class="linenos">1</span>a`,
		`<span class="linenos">2</span>b</pre>`,
	)
}

func TestRegister_CoversEveryKind(t *testing.T) {
	if missing := newRegistry().Missing(Format); len(missing) != 0 {
		t.Errorf("expected every kind to have a renderer, missing %v", missing)
	}
}
