// Package html renders documents as HTML fragments.
package html

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/render"
	"github.com/yuin/goldmark/util"
)

// Format is the registry key of this renderer set.
const Format = "html"

// Register adds the HTML renderers to reg.
func Register(reg *render.Registry) {
	for kind, fn := range map[doctree.Kind]render.Func{
		doctree.KindDocument:           renderDocument,
		doctree.KindSection:            renderSection,
		doctree.KindTitle:              renderTitle,
		doctree.KindParagraph:          renderParagraph,
		doctree.KindSpan:               renderSpan,
		doctree.KindCrossReference:     renderCrossReference,
		doctree.KindFootnoteReference:  renderFootnoteReference,
		doctree.KindLink:               renderLink,
		doctree.KindList:               renderList,
		doctree.KindListItem:           renderListItem,
		doctree.KindDefinitionList:     wrap("dl", ""),
		doctree.KindDefinitionItem:     render.Func(children),
		doctree.KindDefinitionTerm:     renderTerm,
		doctree.KindDefinition:         wrap("dd", ""),
		doctree.KindFieldList:          wrap("dl", "field-list"),
		doctree.KindField:              renderField,
		doctree.KindTable:              renderTable,
		doctree.KindTableColumn:        render.Func(children),
		doctree.KindLiteralBlock:       renderLiteral,
		doctree.KindBlockQuote:         wrap("blockquote", ""),
		doctree.KindTransition:         renderTransition,
		doctree.KindAnchor:             renderAnchor,
		doctree.KindAdmonition:         renderAdmonition,
		doctree.KindToctree:            renderToctree,
		doctree.KindFootnote:           renderFootnote,
		doctree.KindRaw:                renderRaw,
		doctree.KindOnly:               renderOnly,
		doctree.KindConfigurationBlock: renderConfigurationBlock,
		doctree.KindConfigurationTab:   renderConfigurationTab,
		doctree.KindImage:              renderImage,
		doctree.KindError:              renderError,
	} {
		reg.Register(Format, kind, fn, 0)
	}
	reg.Register(Format, doctree.KindSpan, render.When(isAbbr, renderAbbr), 10)
	reg.Register(Format, doctree.KindParagraph, render.When(isRubric, renderRubric), 10)
}

func esc(s string) string {
	return string(util.EscapeHTML([]byte(s)))
}

// classAttr returns ` class="..."` for the node classes plus extra, or "".
func classAttr(n doctree.Node, extra ...string) string {
	cs := append(extra, n.Classes()...)
	var out []string
	for _, c := range cs {
		if c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return ""
	}
	return ` class="` + esc(strings.Join(out, " ")) + `"`
}

func children(ctx *render.Context, n doctree.Node) (string, error) {
	return ctx.RenderChildren(n)
}

func wrap(tag, class string) render.Func {
	return func(ctx *render.Context, n doctree.Node) (string, error) {
		body, err := ctx.RenderChildren(n)
		if err != nil {
			return "", err
		}
		return "<" + tag + classAttr(n, class) + ">\n" + body + "</" + tag + ">\n", nil
	}
}

func renderDocument(ctx *render.Context, n doctree.Node) (string, error) {
	return ctx.RenderChildren(n)
}

func renderSection(ctx *render.Context, n doctree.Node) (string, error) {
	s := n.(*doctree.Section)
	body, err := ctx.RenderChildren(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<div%s id=\"%s\">\n%s</div>\n", classAttr(s, "section"), esc(s.ID), body), nil
}

func renderTitle(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.Title)
	body, err := ctx.RenderChildren(t)
	if err != nil {
		return "", err
	}
	level := min(max(t.Level, 1), 6)
	link := ""
	if t.ID != "" {
		link = fmt.Sprintf(`<a class="headerlink" href="#%s" title="Permalink to this headline">¶</a>`, esc(t.ID))
	}
	return fmt.Sprintf("<h%d>%s%s</h%d>\n", level, body, link, level), nil
}

func renderParagraph(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	return "<p" + classAttr(n) + ">" + body + "</p>\n", nil
}

func isRubric(n doctree.Node) bool {
	return n.(*doctree.Paragraph).HasClass("rubric")
}

func renderRubric(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	return `<p class="rubric">` + body + "</p>\n", nil
}

func renderSpan(ctx *render.Context, n doctree.Node) (string, error) {
	s := n.(*doctree.Span)
	v := esc(s.Value)
	switch s.Style {
	case doctree.StyleEmphasis:
		v = "<em>" + v + "</em>"
	case doctree.StyleStrong:
		v = "<strong>" + v + "</strong>"
	case doctree.StyleLiteral:
		v = `<code class="literal">` + v + "</code>"
	case doctree.StyleInterpreted:
		v = "<cite>" + v + "</cite>"
	}
	if len(s.Classes()) > 0 {
		v = "<span" + classAttr(s) + ">" + v + "</span>"
	}
	return v, nil
}

func isAbbr(n doctree.Node) bool {
	return n.(*doctree.Span).HasClass("abbr")
}

func renderAbbr(ctx *render.Context, n doctree.Node) (string, error) {
	s := n.(*doctree.Span)
	if s.Title == "" {
		return "<abbr>" + esc(s.Value) + "</abbr>", nil
	}
	return `<abbr title="` + esc(s.Title) + `">` + esc(s.Value) + "</abbr>", nil
}

func renderCrossReference(ctx *render.Context, n doctree.Node) (string, error) {
	x := n.(*doctree.CrossReference)
	text := esc(x.DisplayText())
	r, ok := x.Resolution()
	switch {
	case ok && r.URL != "":
		return `<a class="reference external" href="` + esc(r.URL) + `">` + text + "</a>", nil
	case ok:
		return `<a class="reference internal" href="` + esc(ctx.URL(r.File, r.Anchor)) + `">` + text + "</a>", nil
	case x.Unresolved():
		return `<span class="broken-link" title="unresolved reference: ` + esc(x.Raw) + `">` + text + "</span>", nil
	}
	return text, nil
}

func renderFootnoteReference(ctx *render.Context, n doctree.Node) (string, error) {
	f := n.(*doctree.FootnoteReference)
	label := "[" + esc(f.Label()) + "]"
	if !f.Resolved {
		return `<span class="broken-link">` + label + "</span>", nil
	}
	class := "footnote-reference"
	if f.Citation {
		class = "citation-reference"
	}
	return fmt.Sprintf(`<a class="%s" href="#%s">%s</a>`, class, esc(f.TargetID), label), nil
}

func renderLink(ctx *render.Context, n doctree.Node) (string, error) {
	l := n.(*doctree.Link)
	text := l.Text
	if text == "" {
		text = l.URL
	}
	return `<a` + classAttr(l, "reference", "external") + ` href="` + esc(l.URL) + `">` + esc(text) + "</a>", nil
}

var listTypes = map[string]string{
	"loweralpha": "a",
	"upperalpha": "A",
	"lowerroman": "i",
	"upperroman": "I",
}

func renderList(ctx *render.Context, n doctree.Node) (string, error) {
	l := n.(*doctree.List)
	body, err := ctx.RenderChildren(l)
	if err != nil {
		return "", err
	}
	if !l.Ordered {
		return "<ul" + classAttr(l, "simple") + ">\n" + body + "</ul>\n", nil
	}
	attrs := classAttr(l, l.Enumerator)
	if t, ok := listTypes[l.Enumerator]; ok {
		attrs += ` type="` + t + `"`
	}
	if l.Start > 1 {
		attrs += ` start="` + strconv.Itoa(l.Start) + `"`
	}
	return "<ol" + attrs + ">\n" + body + "</ol>\n", nil
}

// renderListItem drops the paragraph wrapper of single-paragraph items.
func renderListItem(ctx *render.Context, n doctree.Node) (string, error) {
	kids := n.Children()
	if len(kids) == 1 {
		if p, ok := kids[0].(*doctree.Paragraph); ok && len(p.Classes()) == 0 {
			body, err := ctx.RenderChildren(p)
			if err != nil {
				return "", err
			}
			return "<li>" + body + "</li>\n", nil
		}
	}
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	return "<li>" + body + "</li>\n", nil
}

func renderTerm(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.DefinitionTerm)
	body, err := ctx.RenderChildren(t)
	if err != nil {
		return "", err
	}
	for _, c := range t.Classifiers {
		body += ` <span class="classifier-delimiter">:</span> <span class="classifier">` + esc(c) + "</span>"
	}
	return "<dt" + classAttr(t) + ">" + body + "</dt>\n", nil
}

func renderField(ctx *render.Context, n doctree.Node) (string, error) {
	f := n.(*doctree.Field)
	body, err := ctx.RenderChildren(f)
	if err != nil {
		return "", err
	}
	return "<dt>" + esc(f.Name) + "</dt>\n<dd>" + body + "</dd>\n", nil
}

func renderTable(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.Table)
	var sb strings.Builder
	sb.WriteString("<table" + classAttr(t, "docutils") + ">\n")
	section := func(tag, cell string, rows []*doctree.TableRow) error {
		if len(rows) == 0 {
			return nil
		}
		sb.WriteString("<" + tag + ">\n")
		for _, r := range rows {
			sb.WriteString("<tr>")
			for _, c := range r.Columns {
				body, err := ctx.Render(c)
				if err != nil {
					return err
				}
				attrs := ""
				if c.Colspan > 1 {
					attrs += ` colspan="` + strconv.Itoa(c.Colspan) + `"`
				}
				if c.Rowspan > 1 {
					attrs += ` rowspan="` + strconv.Itoa(c.Rowspan) + `"`
				}
				sb.WriteString("<" + cell + attrs + ">" + strings.TrimSpace(body) + "</" + cell + ">")
			}
			sb.WriteString("</tr>\n")
		}
		sb.WriteString("</" + tag + ">\n")
		return nil
	}
	if err := section("thead", "th", t.Header); err != nil {
		return "", err
	}
	if err := section("tbody", "td", t.Rows); err != nil {
		return "", err
	}
	sb.WriteString("</table>\n")
	return sb.String(), nil
}

func renderLiteral(ctx *render.Context, n doctree.Node) (string, error) {
	lb := n.(*doctree.LiteralBlock)
	data := map[string]any{
		"Language":    lb.Language,
		"Caption":     lb.Caption,
		"LineNumbers": lb.LineNumbers,
		"Code":        lb.Value,
	}
	if out, ok, err := ctx.Template("code", data); err != nil || ok {
		return out, err
	}

	var sb strings.Builder
	if lb.Caption != "" {
		sb.WriteString(`<div class="code-block-caption">` + esc(lb.Caption) + "</div>\n")
	}
	code := esc(lb.Value)
	if lb.LineNumbers {
		lines := strings.Split(code, "\n")
		for i, l := range lines {
			lines[i] = fmt.Sprintf(`<span class="linenos">%*d</span>%s`, len(strconv.Itoa(len(lines))), i+1, l)
		}
		code = strings.Join(lines, "\n")
	}
	if lb.Language == "" {
		sb.WriteString("<pre" + classAttr(lb, "literal-block") + ">" + code + "</pre>\n")
	} else {
		sb.WriteString(`<div` + classAttr(lb, "highlight-"+lb.Language, "notranslate") + `><pre>` + code + "</pre></div>\n")
	}
	return sb.String(), nil
}

func renderTransition(ctx *render.Context, n doctree.Node) (string, error) {
	return "<hr" + classAttr(n) + " />\n", nil
}

func renderAnchor(ctx *render.Context, n doctree.Node) (string, error) {
	a := n.(*doctree.Anchor)
	return `<span id="` + esc(a.ID) + `"></span>` + "\n", nil
}

func renderAdmonition(ctx *render.Context, n doctree.Node) (string, error) {
	a := n.(*doctree.Admonition)
	body, err := ctx.RenderChildren(a)
	if err != nil {
		return "", err
	}
	if out, ok, err := ctx.Template("admonition", map[string]any{
		"Name":    a.Name,
		"Title":   a.Title,
		"Classes": a.Classes(),
		"Body":    body,
	}); err != nil || ok {
		return out, err
	}
	return fmt.Sprintf("<div%s>\n<p class=\"admonition-title\">%s</p>\n%s</div>\n",
		classAttr(a, "admonition", a.Name), esc(a.Title), body), nil
}

func renderToctree(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.Toctree)
	if t.Hidden {
		return "", nil
	}
	var sb strings.Builder
	sb.WriteString("<div" + classAttr(t, "toctree-wrapper") + ">\n")
	if t.Caption != "" {
		sb.WriteString(`<p class="caption">` + esc(t.Caption) + "</p>\n")
	}
	sb.WriteString("<ul>\n")
	for _, f := range t.Files {
		title, href := f.Title, f.URL
		if f.File != "" {
			if title == "" {
				title = ctx.Title(f.File)
			}
			href = ctx.URL(f.File, "")
		}
		if title == "" {
			title = href
		}
		sb.WriteString(`<li class="toctree-l1"><a class="reference internal" href="` + esc(href) + `">` + esc(title) + "</a></li>\n")
	}
	sb.WriteString("</ul>\n</div>\n")
	return sb.String(), nil
}

func renderFootnote(ctx *render.Context, n doctree.Node) (string, error) {
	f := n.(*doctree.Footnote)
	body, err := ctx.RenderChildren(f)
	if err != nil {
		return "", err
	}
	class := "footnote"
	if f.Citation {
		class = "citation"
	}
	return fmt.Sprintf("<aside%s id=\"%s\">\n<span class=\"label\">[%s]</span>\n%s</aside>\n",
		classAttr(f, class), esc(f.ID), esc(f.Display()), body), nil
}

func renderRaw(ctx *render.Context, n doctree.Node) (string, error) {
	r := n.(*doctree.Raw)
	if r.Format != Format {
		return "", nil
	}
	return r.Value + "\n", nil
}

func renderOnly(ctx *render.Context, n doctree.Node) (string, error) {
	o := n.(*doctree.Only)
	ok, err := ctx.Only(o.Expression)
	if err != nil || !ok {
		return "", err
	}
	return ctx.RenderChildren(o)
}

func renderConfigurationBlock(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	return "<div" + classAttr(n, "configuration-block") + ">\n" + body + "</div>\n", nil
}

func renderConfigurationTab(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.ConfigurationTab)
	body, err := ctx.RenderChildren(t)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<div class=\"configuration-tab\" data-tab=\"%s\" data-hash=\"%s\">\n<p class=\"configuration-tab-label\">%s</p>\n%s</div>\n",
		esc(t.Slug), esc(t.Hash), esc(t.Label), body), nil
}

func renderImage(ctx *render.Context, n doctree.Node) (string, error) {
	img := n.(*doctree.Image)
	attrs := ` src="` + esc(img.URI) + `" alt="` + esc(img.Alt) + `"`
	if img.Width != "" {
		attrs += ` width="` + esc(img.Width) + `"`
	}
	if img.Height != "" {
		attrs += ` height="` + esc(img.Height) + `"`
	}
	align := ""
	if img.Align != "" {
		align = "align-" + img.Align
	}
	tag := "<img" + attrs + " />"
	if img.Target != "" {
		tag = `<a class="reference external image-reference" href="` + esc(img.Target) + `">` + tag + "</a>"
	}
	if !img.HasClass("figure") {
		return "<p" + classAttr(img, align) + ">" + tag + "</p>\n", nil
	}
	caption := ""
	if img.Caption != "" {
		caption = "<figcaption>\n<p>" + esc(img.Caption) + "</p>\n</figcaption>\n"
	}
	return "<figure" + classAttr(img, align) + ">\n" + tag + "\n" + caption + "</figure>\n", nil
}

func renderError(ctx *render.Context, n doctree.Node) (string, error) {
	e := n.(*doctree.Error)
	return `<span class="problematic" title="` + esc(e.Message) + `">` + esc(e.Source) + "</span>", nil
}
