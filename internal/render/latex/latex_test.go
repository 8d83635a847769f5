package latex

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

func renderDoc(t *testing.T, doc *doctree.Document) string {
	t.Helper()
	reg := render.NewRegistry()
	Register(reg)
	out, err := render.Document(reg, doc, Format, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

func TestEscape(t *testing.T) {
	got := Escape(`50% of $x_1 & {y} #2 ~ ^ \`)
	want := `50\% of \$x\_1 \& \{y\} \#2 \textasciitilde{} \textasciicircum{} \textbackslash{}`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_Sections(t *testing.T) {
	src := `Guide
=====

Intro with *emphasis* and 100%.

Setup
-----

See Setup_.

::

    raw {text} stays
`
	doc := (&parser.RSTParser{Registry: builtin.NewRegistry()}).ParseString(src, "guide.rst")
	c, err := compiler.Compile(doc, resolver.BuildIndex([]*doctree.Document{doc}))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out := renderDoc(t, c.Document)

	for _, want := range []string{
		"\\label{guide}\n",
		`\chapter{Guide}\label{guide:guide}`,
		`\section{Setup}\label{guide:setup}`,
		`Intro with \emph{emphasis} and 100\%.`,
		`\hyperref[guide:setup]{Setup}`,
		"\\begin{verbatim}\nraw {text} stays\n\\end{verbatim}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRender_RawAndOnly(t *testing.T) {
	doc := doctree.NewDocument("index", "index.rst")
	only := &doctree.Only{Expression: "latex"}
	only.Append(doctree.NewParagraph(doctree.NewText("Printed")))
	hidden := &doctree.Only{Expression: "html"}
	hidden.Append(doctree.NewParagraph(doctree.NewText("Web")))
	doc.Append(
		&doctree.Raw{Format: "latex", Value: `\newpage`},
		&doctree.Raw{Format: "html", Value: "<hr>"},
		only, hidden,
	)
	out := renderDoc(t, doc)
	if !strings.Contains(out, `\newpage`) || !strings.Contains(out, "Printed") {
		t.Errorf("expected latex content, got:\n%s", out)
	}
	if strings.Contains(out, "<hr>") || strings.Contains(out, "Web") {
		t.Errorf("expected html content to be dropped, got:\n%s", out)
	}
}

func TestRender_Footnotes(t *testing.T) {
	doc := doctree.NewDocument("index", "index.rst")
	ref := &doctree.FootnoteReference{Key: "1", Number: 1, TargetID: "footnote-1", Resolved: true}
	broken := &doctree.FootnoteReference{Key: "x"}
	fn := &doctree.Footnote{Key: "1", Number: 1, ID: "footnote-1"}
	fn.Append(doctree.NewParagraph(doctree.NewText("Body.")))
	doc.Append(doctree.NewParagraph(doctree.NewText("See"), ref, broken), fn)

	out := renderDoc(t, doc)
	for _, want := range []string{`See\footnotemark[1][x]\textbf{??}`, `\footnotetext[1]{Body.}`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRender_Table(t *testing.T) {
	cell := func(s string, span int) *doctree.TableColumn {
		c := doctree.NewTableColumn(s, span)
		c.SetChildren([]doctree.Node{doctree.NewText(s)})
		return c
	}
	doc := doctree.NewDocument("index", "index.rst")
	doc.Append(&doctree.Table{
		Header: []*doctree.TableRow{{Columns: []*doctree.TableColumn{cell("A", 1), cell("B", 1)}}},
		Rows:   []*doctree.TableRow{{Columns: []*doctree.TableColumn{cell("wide", 2)}}},
	})
	out := renderDoc(t, doc)
	for _, want := range []string{
		`\begin{tabular}{|l|l|}`,
		`\textbf{A} & \textbf{B} \\`,
		`\multicolumn{2}{|l|}{wide} \\`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRegister_CoversEveryKind(t *testing.T) {
	reg := render.NewRegistry()
	Register(reg)
	if missing := reg.Missing(Format); len(missing) != 0 {
		t.Errorf("expected every kind to have a renderer, missing %v", missing)
	}
}
