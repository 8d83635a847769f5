// Package rst writes documents back out as normalized reStructuredText.
// Directives are kept as directives, so the output parses to an
// equivalent tree.
package rst

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/refs"
	"github.com/dgallion1/guides/internal/render"
)

// Format is the registry key of this renderer set.
const Format = "rst"

var adornments = []string{"=", "-", "~", "^", `"`, "'"}

var plainAdmonitions = map[string]bool{
	"note": true, "tip": true, "hint": true, "important": true, "warning": true,
	"caution": true, "danger": true, "attention": true, "error": true, "seealso": true,
}

// Register adds the reStructuredText renderers to reg.
func Register(reg *render.Registry) {
	for kind, fn := range map[doctree.Kind]render.Func{
		doctree.KindDocument:           renderDocument,
		doctree.KindSection:            renderSection,
		doctree.KindTitle:              children,
		doctree.KindParagraph:          renderParagraph,
		doctree.KindSpan:               renderSpan,
		doctree.KindCrossReference:     renderCrossReference,
		doctree.KindFootnoteReference:  renderFootnoteReference,
		doctree.KindLink:               renderLink,
		doctree.KindList:               renderList,
		doctree.KindListItem:           children,
		doctree.KindDefinitionList:     renderBlockContainer,
		doctree.KindDefinitionItem:     renderDefinitionItem,
		doctree.KindDefinitionTerm:     renderTerm,
		doctree.KindDefinition:         children,
		doctree.KindFieldList:          renderBlockContainer,
		doctree.KindField:              renderField,
		doctree.KindTable:              renderTable,
		doctree.KindTableColumn:        children,
		doctree.KindLiteralBlock:       renderLiteral,
		doctree.KindBlockQuote:         renderBlockQuote,
		doctree.KindTransition:         renderTransition,
		doctree.KindAnchor:             renderAnchor,
		doctree.KindAdmonition:         renderAdmonition,
		doctree.KindToctree:            renderToctree,
		doctree.KindFootnote:           renderFootnote,
		doctree.KindRaw:                renderRaw,
		doctree.KindOnly:               renderOnly,
		doctree.KindConfigurationBlock: renderConfigurationBlock,
		doctree.KindConfigurationTab:   children,
		doctree.KindImage:              renderImage,
		doctree.KindError:              renderError,
	} {
		reg.Register(Format, kind, fn, 0)
	}
}

// indent prefixes every non-blank line of s and ends it with a newline.
func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// hang indents s by the width of marker and puts marker on the first line.
func hang(marker, s string) string {
	pad := strings.Repeat(" ", utf8.RuneCountInString(marker))
	return marker + strings.TrimPrefix(indent(strings.TrimSpace(s), pad), pad)
}

type option struct{ name, value string }

func directive(name, arg string, opts []option, body string) string {
	var sb strings.Builder
	sb.WriteString(".. " + name + "::")
	if arg != "" {
		sb.WriteString(" " + arg)
	}
	sb.WriteString("\n")
	for _, o := range opts {
		sb.WriteString("   :" + o.name + ":")
		if o.value != "" {
			sb.WriteString(" " + o.value)
		}
		sb.WriteString("\n")
	}
	if body = strings.TrimRight(body, "\n"); body != "" {
		sb.WriteString("\n" + indent(body, "   "))
	}
	return sb.String() + "\n"
}

var inlineEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "`", "\\`", "|", `\|`)

func children(ctx *render.Context, n doctree.Node) (string, error) {
	return ctx.RenderChildren(n)
}

func renderBlockContainer(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	return body + "\n", nil
}

func renderDocument(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	var targets []string
	for _, t := range ctx.Document.Targets {
		switch {
		case t.Anchor != "":
		case refs.IsAnonymousTarget(t.Name) && t.URL != "":
			targets = append(targets, ".. __: "+t.URL)
		case t.URL != "":
			targets = append(targets, ".. _"+t.Name+": "+t.URL)
		case t.Alias != "":
			targets = append(targets, ".. _"+t.Name+": "+t.Alias+"_")
		}
	}
	out := strings.TrimRight(body, "\n") + "\n"
	if len(targets) > 0 {
		out += "\n" + strings.Join(targets, "\n") + "\n"
	}
	return out, nil
}

func renderSection(ctx *render.Context, n doctree.Node) (string, error) {
	s := n.(*doctree.Section)
	title, err := ctx.Render(s.Title())
	if err != nil {
		return "", err
	}
	body, err := ctx.RenderNodes(s.Children()[1:])
	if err != nil {
		return "", err
	}
	char := adornments[min(max(s.Depth-1, 0), len(adornments)-1)]
	line := strings.Repeat(char, utf8.RuneCountInString(title))
	return title + "\n" + line + "\n\n" + body, nil
}

func renderParagraph(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	if n.(*doctree.Paragraph).HasClass("rubric") {
		return directive("rubric", body, nil, ""), nil
	}
	return body + "\n\n", nil
}

func renderSpan(ctx *render.Context, n doctree.Node) (string, error) {
	s := n.(*doctree.Span)
	if s.HasClass("abbr") {
		v := s.Value
		if s.Title != "" {
			v += " (" + s.Title + ")"
		}
		return ":abbr:`" + v + "`", nil
	}
	switch s.Style {
	case doctree.StyleEmphasis:
		return "*" + inlineEscaper.Replace(s.Value) + "*", nil
	case doctree.StyleStrong:
		return "**" + inlineEscaper.Replace(s.Value) + "**", nil
	case doctree.StyleLiteral:
		return "``" + s.Value + "``", nil
	case doctree.StyleInterpreted:
		return "`" + s.Value + "`", nil
	}
	return inlineEscaper.Replace(s.Value), nil
}

func renderCrossReference(ctx *render.Context, n doctree.Node) (string, error) {
	x := n.(*doctree.CrossReference)
	if x.Role == "" {
		suffix := "_"
		if x.Anonymous {
			suffix = "__"
		}
		return "`" + x.Raw + "`" + suffix, nil
	}
	role := x.Role
	if x.Domain != "" {
		role = x.Domain + ":" + role
	}
	return ":" + role + ":`" + x.Raw + "`", nil
}

func renderFootnoteReference(ctx *render.Context, n doctree.Node) (string, error) {
	return "[" + n.(*doctree.FootnoteReference).Key + "]_", nil
}

func renderLink(ctx *render.Context, n doctree.Node) (string, error) {
	l := n.(*doctree.Link)
	if l.HasClass("download") {
		return ":download:`" + l.Text + " </" + l.URL + ">`", nil
	}
	if l.Text == "" || l.Text == l.URL {
		return l.URL, nil
	}
	return "`" + l.Text + " <" + l.URL + ">`__", nil
}

func renderList(ctx *render.Context, n doctree.Node) (string, error) {
	l := n.(*doctree.List)
	var sb strings.Builder
	for i, item := range l.Children() {
		body, err := ctx.Render(item)
		if err != nil {
			return "", err
		}
		sb.WriteString(hang(marker(l, i), body))
	}
	return sb.String() + "\n", nil
}

func marker(l *doctree.List, i int) string {
	if !l.Ordered {
		return "- "
	}
	n := max(l.Start, 1) + i
	switch l.Enumerator {
	case "loweralpha":
		return string(rune('a'+n-1)) + ". "
	case "upperalpha":
		return string(rune('A'+n-1)) + ". "
	case "lowerroman":
		return strings.ToLower(roman(n)) + ". "
	case "upperroman":
		return roman(n) + ". "
	}
	return strconv.Itoa(n) + ". "
}

func roman(n int) string {
	values := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	symbols := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var sb strings.Builder
	for i, v := range values {
		for n >= v {
			sb.WriteString(symbols[i])
			n -= v
		}
	}
	return sb.String()
}

func renderDefinitionItem(ctx *render.Context, n doctree.Node) (string, error) {
	kids := n.Children()
	term, err := ctx.Render(kids[0])
	if err != nil {
		return "", err
	}
	def, err := ctx.RenderNodes(kids[1:])
	if err != nil {
		return "", err
	}
	return term + "\n" + indent(def, "   "), nil
}

func renderTerm(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.DefinitionTerm)
	body, err := ctx.RenderChildren(t)
	if err != nil {
		return "", err
	}
	for _, c := range t.Classifiers {
		body += " : " + c
	}
	return body, nil
}

func renderField(ctx *render.Context, n doctree.Node) (string, error) {
	f := n.(*doctree.Field)
	body, err := ctx.RenderChildren(f)
	if err != nil {
		return "", err
	}
	return hang(":"+f.Name+": ", body), nil
}

// renderTable writes a list-table. Cell spans are not representable there
// and are dropped.
func renderTable(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.Table)
	var sb strings.Builder
	for _, r := range append(append([]*doctree.TableRow(nil), t.Header...), t.Rows...) {
		for j, c := range r.Columns {
			body, err := ctx.Render(c)
			if err != nil {
				return "", err
			}
			if strings.TrimSpace(body) == "" {
				body = `\`
			}
			cell := hang("- ", body)
			if j == 0 {
				sb.WriteString(hang("* ", cell))
			} else {
				sb.WriteString(indent(cell, "  "))
			}
		}
	}
	var opts []option
	if len(t.Header) > 0 {
		opts = append(opts, option{"header-rows", strconv.Itoa(len(t.Header))})
	}
	if cs := t.Classes(); len(cs) > 0 {
		opts = append(opts, option{"class", strings.Join(cs, " ")})
	}
	return directive("list-table", "", opts, sb.String()), nil
}

func renderLiteral(ctx *render.Context, n doctree.Node) (string, error) {
	lb := n.(*doctree.LiteralBlock)
	if lb.Language == "" && lb.Caption == "" && !lb.LineNumbers {
		return "::\n\n" + indent(lb.Value, "    ") + "\n", nil
	}
	var opts []option
	if lb.LineNumbers {
		opts = append(opts, option{"linenos", ""})
	}
	if lb.Caption != "" {
		opts = append(opts, option{"caption", lb.Caption})
	}
	lang := lb.Language
	if lang == "" {
		lang = "text"
	}
	return directive("code-block", lang, opts, lb.Value), nil
}

func renderBlockQuote(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	// An empty comment keeps the quote from joining a preceding list.
	return "..\n\n" + indent(body, "    ") + "\n", nil
}

func renderTransition(ctx *render.Context, n doctree.Node) (string, error) {
	return "----\n\n", nil
}

func renderAnchor(ctx *render.Context, n doctree.Node) (string, error) {
	return ".. _" + n.(*doctree.Anchor).Name + ":\n\n", nil
}

func renderAdmonition(ctx *render.Context, n doctree.Node) (string, error) {
	a := n.(*doctree.Admonition)
	body, err := ctx.RenderChildren(a)
	if err != nil {
		return "", err
	}
	if plainAdmonitions[a.Name] {
		return directive(a.Name, "", nil, body), nil
	}
	return directive("admonition", a.Title, nil, body), nil
}

func renderToctree(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.Toctree)
	var opts []option
	if t.MaxDepth > 0 {
		opts = append(opts, option{"maxdepth", strconv.Itoa(t.MaxDepth)})
	}
	if t.Caption != "" {
		opts = append(opts, option{"caption", t.Caption})
	}
	for _, flag := range []struct {
		name string
		set  bool
	}{{"glob", t.Glob}, {"hidden", t.Hidden}, {"titlesonly", t.TitlesOnly}} {
		if flag.set {
			opts = append(opts, option{flag.name, ""})
		}
	}
	return directive("toctree", "", opts, strings.Join(t.Entries, "\n")), nil
}

func renderFootnote(ctx *render.Context, n doctree.Node) (string, error) {
	f := n.(*doctree.Footnote)
	body, err := ctx.RenderChildren(f)
	if err != nil {
		return "", err
	}
	return hang(".. ["+f.Key+"] ", body) + "\n", nil
}

func renderRaw(ctx *render.Context, n doctree.Node) (string, error) {
	r := n.(*doctree.Raw)
	return directive("raw", r.Format, nil, r.Value), nil
}

func renderOnly(ctx *render.Context, n doctree.Node) (string, error) {
	o := n.(*doctree.Only)
	body, err := ctx.RenderChildren(o)
	if err != nil {
		return "", err
	}
	return directive("only", o.Expression, nil, body), nil
}

func renderConfigurationBlock(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	return directive("configuration-block", "", nil, body), nil
}

func renderImage(ctx *render.Context, n doctree.Node) (string, error) {
	img := n.(*doctree.Image)
	var opts []option
	for _, o := range []option{
		{"alt", img.Alt}, {"width", img.Width}, {"height", img.Height},
		{"align", img.Align}, {"target", img.Target},
	} {
		if o.value != "" {
			opts = append(opts, o)
		}
	}
	if img.HasClass("figure") {
		return directive("figure", img.URI, opts, img.Caption), nil
	}
	return directive("image", img.URI, opts, ""), nil
}

func renderError(ctx *render.Context, n doctree.Node) (string, error) {
	src := n.(*doctree.Error).Source
	if strings.HasPrefix(src, "..") || strings.Contains(src, "\n") {
		return strings.TrimRight(src, "\n") + "\n\n", nil
	}
	return src, nil
}

// String renders a single node with a fresh registry.
func String(n doctree.Node) (string, error) {
	reg := render.NewRegistry()
	Register(reg)
	doc := doctree.NewDocument("", "")
	out, err := render.NewContext(reg, doc, Format, render.Options{}).Render(n)
	if err != nil {
		return "", fmt.Errorf("rst: %w", err)
	}
	return out, nil
}
