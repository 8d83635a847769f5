// Package text renders documents as plain text.
package text

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/render"
	"golang.org/x/net/html"
)

// Format is the registry key of this renderer set.
const Format = "text"

// BrokenLink is appended to the text of unresolved references.
const BrokenLink = "[?]"

var underlines = []string{"=", "-", "~", "^", `"`, "'"}

// Register adds the plain text renderers to reg. Node kinds without a
// dedicated renderer fall back to their children's text.
func Register(reg *render.Registry) {
	for kind, fn := range map[doctree.Kind]render.Func{
		doctree.KindDocument:          renderDocument,
		doctree.KindSection:           renderSection,
		doctree.KindParagraph:         block,
		doctree.KindSpan:              renderSpan,
		doctree.KindCrossReference:    renderCrossReference,
		doctree.KindFootnoteReference: renderFootnoteReference,
		doctree.KindLink:              renderLink,
		doctree.KindList:              renderList,
		doctree.KindDefinitionItem:    renderDefinitionItem,
		doctree.KindFieldList:         fieldList,
		doctree.KindField:             renderField,
		doctree.KindTable:             renderTable,
		doctree.KindLiteralBlock:      renderLiteral,
		doctree.KindBlockQuote:        renderBlockQuote,
		doctree.KindTransition:        renderTransition,
		doctree.KindAnchor:            empty,
		doctree.KindAdmonition:        renderAdmonition,
		doctree.KindToctree:           renderToctree,
		doctree.KindFootnote:          renderFootnote,
		doctree.KindRaw:               renderRaw,
		doctree.KindOnly:              renderOnly,
		doctree.KindConfigurationTab:  renderConfigurationTab,
		doctree.KindImage:             renderImage,
		doctree.KindError:             renderError,
	} {
		reg.Register(Format, kind, fn, 0)
	}
	reg.RegisterFallback(Format, render.Func(children), 0)
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func hang(marker, s string) string {
	pad := strings.Repeat(" ", utf8.RuneCountInString(marker))
	return marker + strings.TrimPrefix(indent(strings.TrimSpace(s), pad), pad)
}

func children(ctx *render.Context, n doctree.Node) (string, error) {
	return ctx.RenderChildren(n)
}

func empty(*render.Context, doctree.Node) (string, error) { return "", nil }

func block(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(body, "\n") + "\n\n", nil
}

func renderDocument(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(body, "\n") + "\n", nil
}

func renderSection(ctx *render.Context, n doctree.Node) (string, error) {
	s := n.(*doctree.Section)
	title, err := ctx.RenderChildren(s.Title())
	if err != nil {
		return "", err
	}
	body, err := ctx.RenderNodes(s.Children()[1:])
	if err != nil {
		return "", err
	}
	char := underlines[min(max(s.Depth-1, 0), len(underlines)-1)]
	return title + "\n" + strings.Repeat(char, utf8.RuneCountInString(title)) + "\n\n" + body, nil
}

func renderSpan(ctx *render.Context, n doctree.Node) (string, error) {
	s := n.(*doctree.Span)
	if s.Title != "" {
		return s.Value + " (" + s.Title + ")", nil
	}
	return s.Value, nil
}

func renderCrossReference(ctx *render.Context, n doctree.Node) (string, error) {
	x := n.(*doctree.CrossReference)
	if x.Unresolved() {
		return x.DisplayText() + BrokenLink, nil
	}
	return x.DisplayText(), nil
}

func renderFootnoteReference(ctx *render.Context, n doctree.Node) (string, error) {
	f := n.(*doctree.FootnoteReference)
	if !f.Resolved {
		return "[" + f.Label() + "]" + BrokenLink, nil
	}
	return "[" + f.Label() + "]", nil
}

func renderLink(ctx *render.Context, n doctree.Node) (string, error) {
	l := n.(*doctree.Link)
	if l.Text == "" || l.Text == l.URL {
		return l.URL, nil
	}
	return l.Text + " <" + l.URL + ">", nil
}

func renderList(ctx *render.Context, n doctree.Node) (string, error) {
	l := n.(*doctree.List)
	var sb strings.Builder
	for i, item := range l.Children() {
		body, err := ctx.Render(item)
		if err != nil {
			return "", err
		}
		marker := "* "
		if l.Ordered {
			marker = strconv.Itoa(max(l.Start, 1)+i) + ". "
		}
		sb.WriteString(hang(marker, body))
	}
	return sb.String() + "\n", nil
}

func renderDefinitionItem(ctx *render.Context, n doctree.Node) (string, error) {
	kids := n.Children()
	term, err := ctx.Render(kids[0])
	if err != nil {
		return "", err
	}
	if t := kids[0].(*doctree.DefinitionTerm); len(t.Classifiers) > 0 {
		term += " : " + strings.Join(t.Classifiers, " : ")
	}
	def, err := ctx.RenderNodes(kids[1:])
	if err != nil {
		return "", err
	}
	return term + "\n" + indent(def, "    ") + "\n", nil
}

func fieldList(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	return body + "\n", nil
}

func renderField(ctx *render.Context, n doctree.Node) (string, error) {
	f := n.(*doctree.Field)
	body, err := ctx.RenderChildren(f)
	if err != nil {
		return "", err
	}
	return hang(f.Name+": ", body), nil
}

// renderTable writes one line per row with cells separated by " | ".
func renderTable(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.Table)
	var sb strings.Builder
	row := func(r *doctree.TableRow) error {
		cells := make([]string, 0, len(r.Columns))
		for _, c := range r.Columns {
			body, err := ctx.Render(c)
			if err != nil {
				return err
			}
			cells = append(cells, strings.Join(strings.Fields(body), " "))
		}
		sb.WriteString(strings.Join(cells, " | ") + "\n")
		return nil
	}
	for _, r := range t.Header {
		if err := row(r); err != nil {
			return "", err
		}
	}
	if len(t.Header) > 0 {
		sb.WriteString("---\n")
	}
	for _, r := range t.Rows {
		if err := row(r); err != nil {
			return "", err
		}
	}
	return sb.String() + "\n", nil
}

func renderLiteral(ctx *render.Context, n doctree.Node) (string, error) {
	lb := n.(*doctree.LiteralBlock)
	out := indent(lb.Value, "    ")
	if lb.Caption != "" {
		out = lb.Caption + ":\n\n" + out
	}
	return out + "\n", nil
}

func renderBlockQuote(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	return indent(body, "    ") + "\n", nil
}

func renderTransition(ctx *render.Context, n doctree.Node) (string, error) {
	return strings.Repeat("-", 40) + "\n\n", nil
}

func renderAdmonition(ctx *render.Context, n doctree.Node) (string, error) {
	a := n.(*doctree.Admonition)
	body, err := ctx.RenderChildren(a)
	if err != nil {
		return "", err
	}
	return a.Title + ":\n" + indent(body, "    ") + "\n", nil
}

func renderToctree(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.Toctree)
	if t.Hidden || len(t.Files) == 0 {
		return "", nil
	}
	var sb strings.Builder
	if t.Caption != "" {
		sb.WriteString(t.Caption + "\n\n")
	}
	for _, f := range t.Files {
		title := f.Title
		if title == "" && f.File != "" {
			title = ctx.Title(f.File)
		}
		if f.URL != "" && f.File == "" {
			title += " <" + f.URL + ">"
		}
		sb.WriteString("* " + strings.TrimSpace(title) + "\n")
	}
	return sb.String() + "\n", nil
}

func renderFootnote(ctx *render.Context, n doctree.Node) (string, error) {
	f := n.(*doctree.Footnote)
	body, err := ctx.RenderChildren(f)
	if err != nil {
		return "", err
	}
	return hang("["+f.Display()+"] ", body) + "\n", nil
}

// renderRaw passes raw text through and reduces raw HTML to its text
// content. Other formats are dropped.
func renderRaw(ctx *render.Context, n doctree.Node) (string, error) {
	r := n.(*doctree.Raw)
	switch r.Format {
	case Format:
		return strings.TrimRight(r.Value, "\n") + "\n\n", nil
	case "html":
		s, err := htmlText(r.Value)
		if err != nil {
			return "", fmt.Errorf("raw html: %w", err)
		}
		if s == "" {
			return "", nil
		}
		return s + "\n\n", nil
	}
	return "", nil
}

// htmlText returns the visible text of an HTML fragment with whitespace
// collapsed.
func htmlText(fragment string) (string, error) {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.Join(strings.Fields(sb.String()), " "), nil
}

func renderOnly(ctx *render.Context, n doctree.Node) (string, error) {
	o := n.(*doctree.Only)
	ok, err := ctx.Only(o.Expression)
	if err != nil || !ok {
		return "", err
	}
	return ctx.RenderChildren(o)
}

func renderConfigurationTab(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.ConfigurationTab)
	body, err := ctx.RenderChildren(t)
	if err != nil {
		return "", err
	}
	return t.Label + ":\n\n" + body, nil
}

func renderImage(ctx *render.Context, n doctree.Node) (string, error) {
	img := n.(*doctree.Image)
	alt := img.Alt
	if alt == "" {
		alt = img.URI
	}
	out := "[image: " + alt + "]"
	if img.Caption != "" {
		out += "\n" + img.Caption
	}
	return out + "\n\n", nil
}

func renderError(ctx *render.Context, n doctree.Node) (string, error) {
	return n.(*doctree.Error).Source, nil
}
