package builtin

import (
	"fmt"
	"strings"
	"testing"

	"github.com/expr-lang/expr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
)

// fakeContext parses inline text as a single text span.
type fakeContext struct {
	doc     *doctree.Document
	reports []string
}

func newFakeContext() *fakeContext {
	return &fakeContext{doc: doctree.NewDocument("index", "index.rst")}
}

func (c *fakeContext) Document() *doctree.Document { return c.doc }
func (c *fakeContext) Location() diag.Location     { return c.doc.Loc(1) }

func (c *fakeContext) Report(sev diag.Severity, format string, args ...any) {
	c.reports = append(c.reports, sev.String()+": "+fmt.Sprintf(format, args...))
}

func (c *fakeContext) ParseInline(text string) []doctree.Node {
	return []doctree.Node{doctree.NewText(text)}
}

func (c *fakeContext) ParseBlocks(lines []string) []doctree.Node {
	return []doctree.Node{doctree.NewParagraph(doctree.NewText(strings.Join(lines, " ")))}
}

func invoke(t *testing.T, name, arg string, opts map[string]string, content []string, children ...doctree.Node) ([]doctree.Node, *fakeContext, error) {
	t.Helper()
	reg := NewRegistry()
	d, ok := reg.Directive(name)
	require.True(t, ok, "directive %q not registered", name)
	o, err := extension.ParseOptions(d.Spec().Options, opts)
	require.NoError(t, err)
	ctx := newFakeContext()
	nodes, err := d.Process(ctx, &extension.Invocation{
		Name: name, Argument: arg, Options: o, Content: content, Children: children, Line: 3,
	})
	return nodes, ctx, err
}

func TestRegister_NoConflicts(t *testing.T) {
	reg := extension.NewRegistry()
	require.NoError(t, Register(reg))
	assert.ErrorIs(t, Register(reg), extension.ErrDuplicate)

	for _, name := range []string{"note", "seealso", "code", "sourcecode", "toctree", "csv-table", "configuration-block"} {
		_, ok := reg.Directive(name)
		assert.True(t, ok, name)
	}
	for _, r := range [][2]string{{"", "ref"}, {"", "literal"}, {"php", "class"}, {"php", "ref"}} {
		_, ok := reg.Role(r[0], r[1])
		assert.True(t, ok, "%s:%s", r[0], r[1])
	}
}

func TestAdmonition_ArgumentBecomesFirstParagraph(t *testing.T) {
	body := doctree.NewParagraph(doctree.NewText("more"))
	nodes, _, err := invoke(t, "warning", "Careful", nil, nil, body)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	a := nodes[0].(*doctree.Admonition)
	assert.Equal(t, "warning", a.Name)
	assert.Equal(t, "Warning", a.Title)
	require.Len(t, a.Children(), 2)
	assert.Equal(t, "Careful", doctree.PlainText(a.Children()[0]))
	assert.Same(t, body, a.Children()[1])
}

func TestAdmonition_GenericNeedsTitle(t *testing.T) {
	_, _, err := invoke(t, "admonition", "", nil, nil)
	assert.Error(t, err)

	nodes, _, err := invoke(t, "admonition", "Read Me", nil, nil)
	require.NoError(t, err)
	a := nodes[0].(*doctree.Admonition)
	assert.Equal(t, "Read Me", a.Title)
	assert.Contains(t, a.Classes(), "admonition-read-me")
}

func TestCodeBlock(t *testing.T) {
	nodes, ctx, err := invoke(t, "code", "php", map[string]string{"linenos": "", "name": "Example Code"},
		[]string{"<?php", "", "echo 1;"})
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	anchor := nodes[0].(*doctree.Anchor)
	assert.Equal(t, "example-code", anchor.ID)
	lb := nodes[1].(*doctree.LiteralBlock)
	assert.Equal(t, "php", lb.Language)
	assert.Equal(t, "<?php\n\necho 1;", lb.Value)
	assert.True(t, lb.LineNumbers)
	require.Len(t, ctx.doc.Targets, 1)
	assert.Equal(t, "example code", ctx.doc.Targets[0].Name)
}

func TestToctree(t *testing.T) {
	nodes, _, err := invoke(t, "toctree", "", map[string]string{"maxdepth": "2", "glob": "", "hidden": ""},
		[]string{"intro", "", "  guide/*  ", "Reference <api/index>"})
	require.NoError(t, err)
	tt := nodes[0].(*doctree.Toctree)
	if diff := cmp.Diff([]string{"intro", "guide/*", "Reference <api/index>"}, tt.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, tt.MaxDepth)
	assert.True(t, tt.Glob)
	assert.True(t, tt.Hidden)
	assert.False(t, tt.TitlesOnly)
}

func TestRaw_RequiresFormat(t *testing.T) {
	_, _, err := invoke(t, "raw", "", nil, []string{"<b>x</b>"})
	assert.Error(t, err)

	nodes, _, err := invoke(t, "raw", "HTML", nil, []string{"<b>x</b>"})
	require.NoError(t, err)
	assert.Equal(t, &doctree.Raw{Format: "html", Value: "<b>x</b>"}, nodes[0])
}

func TestOnly_RejectsBadExpression(t *testing.T) {
	_, _, err := invoke(t, "only", "html and (", nil, nil)
	assert.Error(t, err)

	nodes, _, err := invoke(t, "only", "html or latex", nil, nil, doctree.NewParagraph())
	require.NoError(t, err)
	o := nodes[0].(*doctree.Only)
	assert.Equal(t, "html or latex", o.Expression)
	assert.Len(t, o.Children(), 1)
}

func TestCompileOnly_RunsProgram(t *testing.T) {
	program, err := CompileOnly("html or latex")
	require.NoError(t, err)
	out, err := expr.Run(program, map[string]any{"html": true})
	require.NoError(t, err)
	assert.Equal(t, true, out)

	_, err = CompileOnly("html and (")
	assert.Error(t, err)
}

func TestMeta_FieldListAndYAML(t *testing.T) {
	nodes, ctx, err := invoke(t, "meta", "", nil, []string{":description: A guide", ":keywords: go, rst"})
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Equal(t, "A guide", ctx.doc.Meta["description"])
	assert.Equal(t, "go, rst", ctx.doc.Meta["keywords"])

	_, ctx, err = invoke(t, "meta", "", nil, []string{"author: Jane", "tags:", "  - a", "  - b", "draft: true"})
	require.NoError(t, err)
	assert.Equal(t, "Jane", ctx.doc.Meta["author"])
	assert.Equal(t, "a, b", ctx.doc.Meta["tags"])
	assert.Equal(t, "true", ctx.doc.Meta["draft"])
}

func TestClass_AddsToChildren(t *testing.T) {
	p := doctree.NewParagraph()
	nodes, _, err := invoke(t, "class", "lead special", nil, nil, p)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, []string{"lead", "special"}, p.Classes())
}

func TestFigure_CaptionFromFirstParagraph(t *testing.T) {
	caption := doctree.NewParagraph(doctree.NewText("The caption"))
	legend := doctree.NewParagraph(doctree.NewText("Legend"))
	nodes, _, err := invoke(t, "figure", "img/a.png", map[string]string{"alt": "A", "align": "center"}, nil, caption, legend)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	img := nodes[0].(*doctree.Image)
	assert.Equal(t, "img/a.png", img.URI)
	assert.Equal(t, "The caption", img.Caption)
	assert.Equal(t, "center", img.Align)
	assert.Same(t, legend, nodes[1])
}

func TestCSVTable(t *testing.T) {
	nodes, _, err := invoke(t, "csv-table", "Prices", map[string]string{"header": `"Item", "Price"`},
		[]string{`"Apple, red", 1`, `Pear, \`})
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Contains(t, nodes[0].Classes(), "table-title")

	tbl := nodes[1].(*doctree.Table)
	require.Len(t, tbl.Header, 1)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Item", tbl.Header[0].Columns[0].Content())
	assert.Equal(t, "Apple, red", tbl.Rows[0].Columns[0].Content())
	assert.Equal(t, "", tbl.Rows[1].Columns[1].Content())
	assert.Empty(t, tbl.Rows[1].Columns[1].Children())
}

func TestConfigurationBlock_TabsFromCodeBlocks(t *testing.T) {
	yml := &doctree.LiteralBlock{Language: "yaml", Value: "a: 1"}
	php := &doctree.LiteralBlock{Language: "php-attributes", Value: "#[A]"}
	nodes, ctx, err := invoke(t, "configuration-block", "", nil, nil, yml, doctree.NewParagraph(), php)
	require.NoError(t, err)

	block := nodes[0].(*doctree.ConfigurationBlock)
	require.Len(t, block.Children(), 2)
	tab := block.Children()[1].(*doctree.ConfigurationTab)
	assert.Equal(t, "Attributes", tab.Label)
	assert.Equal(t, "attributes", tab.Slug)
	assert.Equal(t, doctree.ContentHash("#[A]"), tab.Hash)
	assert.Len(t, ctx.reports, 1)
}

func TestRoles(t *testing.T) {
	reg := NewRegistry()
	ctx := newFakeContext()
	run := func(domain, name, content string) doctree.Node {
		r, ok := reg.Role(domain, name)
		require.True(t, ok)
		n, err := r.Process(ctx, &extension.RoleInvocation{Domain: domain, Name: name, Content: content})
		require.NoError(t, err)
		return n
	}

	ref := run("", "ref", "Install <install>").(*doctree.CrossReference)
	assert.Equal(t, "install", ref.Ref.Reference)
	assert.Equal(t, "Install", ref.Ref.Text)

	cls := run("php", "class", `App\Kernel`).(*doctree.CrossReference)
	assert.Equal(t, "php", cls.Domain)
	assert.Equal(t, "class", cls.Role)

	lit := run("", "literal", "x := 1").(*doctree.Span)
	assert.Equal(t, doctree.StyleLiteral, lit.Style)

	abbr := run("", "abbr", "LIFO (last-in, first-out)").(*doctree.Span)
	assert.Equal(t, "LIFO", abbr.Value)
	assert.Equal(t, "last-in, first-out", abbr.Title)

	dl := run("", "download", "/files/app.zip").(*doctree.Link)
	assert.Equal(t, "files/app.zip", dl.URL)
	assert.Equal(t, "app.zip", dl.Text)
}

func TestLanguageLabel(t *testing.T) {
	assert.Equal(t, "YAML", LanguageLabel("yaml"))
	assert.Equal(t, "Text", LanguageLabel(""))
	assert.Equal(t, "Go", LanguageLabel("go"))
}
