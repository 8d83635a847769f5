// Package latex renders documents as LaTeX body text, one file per
// document. Cross-document links use \hyperref labels of the form
// "file:anchor".
package latex

import (
	"fmt"
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/render"
)

// Format is the registry key of this renderer set.
const Format = "latex"

var sectionCommands = []string{"chapter", "section", "subsection", "subsubsection", "paragraph", "subparagraph"}

// Register adds the LaTeX renderers to reg.
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
		doctree.KindListItem:           renderListItem,
		doctree.KindDefinitionList:     environment("description"),
		doctree.KindDefinitionItem:     children,
		doctree.KindDefinitionTerm:     renderTerm,
		doctree.KindDefinition:         children,
		doctree.KindFieldList:          environment("description"),
		doctree.KindField:              renderField,
		doctree.KindTable:              renderTable,
		doctree.KindTableColumn:        children,
		doctree.KindLiteralBlock:       renderLiteral,
		doctree.KindBlockQuote:         environment("quote"),
		doctree.KindTransition:         renderTransition,
		doctree.KindAnchor:             renderAnchor,
		doctree.KindAdmonition:         renderAdmonition,
		doctree.KindToctree:            renderToctree,
		doctree.KindFootnote:           renderFootnote,
		doctree.KindRaw:                renderRaw,
		doctree.KindOnly:               renderOnly,
		doctree.KindConfigurationBlock: children,
		doctree.KindConfigurationTab:   renderConfigurationTab,
		doctree.KindImage:              renderImage,
		doctree.KindError:              renderError,
	} {
		reg.Register(Format, kind, fn, 0)
	}
}

var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// Escape quotes LaTeX special characters in s.
func Escape(s string) string {
	return escaper.Replace(s)
}

// label returns the hyperref label for anchor in file.
func label(file, anchor string) string {
	if anchor == "" {
		return file
	}
	return file + ":" + anchor
}

func children(ctx *render.Context, n doctree.Node) (string, error) {
	return ctx.RenderChildren(n)
}

func environment(name string) render.Func {
	return func(ctx *render.Context, n doctree.Node) (string, error) {
		body, err := ctx.RenderChildren(n)
		if err != nil {
			return "", err
		}
		return `\begin{` + name + "}\n" + body + `\end{` + name + "}\n\n", nil
	}
}

func renderDocument(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	return `\label{` + ctx.Document.File + "}\n" + body, nil
}

func renderSection(ctx *render.Context, n doctree.Node) (string, error) {
	s := n.(*doctree.Section)
	title, err := ctx.Render(s.Title())
	if err != nil {
		return "", err
	}
	cmd := sectionCommands[min(max(s.Depth-1, 0), len(sectionCommands)-1)]
	body, err := ctx.RenderNodes(s.Children()[1:])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("\\%s{%s}\\label{%s}\n\n%s", cmd, title, label(ctx.Document.File, s.ID), body), nil
}

func renderParagraph(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	if n.(*doctree.Paragraph).HasClass("rubric") {
		return `\subsubsection*{` + body + "}\n\n", nil
	}
	return body + "\n\n", nil
}

func renderSpan(ctx *render.Context, n doctree.Node) (string, error) {
	s := n.(*doctree.Span)
	v := Escape(s.Value)
	switch s.Style {
	case doctree.StyleEmphasis, doctree.StyleInterpreted:
		v = `\emph{` + v + "}"
	case doctree.StyleStrong:
		v = `\textbf{` + v + "}"
	case doctree.StyleLiteral:
		v = `\texttt{` + v + "}"
	}
	if s.Title != "" {
		v += ` (` + Escape(s.Title) + ")"
	}
	return v, nil
}

func renderCrossReference(ctx *render.Context, n doctree.Node) (string, error) {
	x := n.(*doctree.CrossReference)
	text := Escape(x.DisplayText())
	r, ok := x.Resolution()
	switch {
	case ok && r.URL != "":
		return `\href{` + r.URL + "}{" + text + "}", nil
	case ok:
		file := r.File
		if file == "" {
			file = ctx.Document.File
		}
		return `\hyperref[` + label(file, r.Anchor) + "]{" + text + "}", nil
	case x.Unresolved():
		return `\textbf{??}` + text, nil
	}
	return text, nil
}

func renderFootnoteReference(ctx *render.Context, n doctree.Node) (string, error) {
	f := n.(*doctree.FootnoteReference)
	switch {
	case !f.Resolved:
		return `[` + Escape(f.Label()) + `]\textbf{??}`, nil
	case f.Citation:
		return `\cite{` + f.TargetID + "}", nil
	}
	return fmt.Sprintf(`\footnotemark[%d]`, f.Number), nil
}

func renderLink(ctx *render.Context, n doctree.Node) (string, error) {
	l := n.(*doctree.Link)
	if l.Text == "" || l.Text == l.URL {
		return `\url{` + l.URL + "}", nil
	}
	return `\href{` + l.URL + "}{" + Escape(l.Text) + "}", nil
}

func renderList(ctx *render.Context, n doctree.Node) (string, error) {
	l := n.(*doctree.List)
	body, err := ctx.RenderChildren(l)
	if err != nil {
		return "", err
	}
	if !l.Ordered {
		return "\\begin{itemize}\n" + body + "\\end{itemize}\n\n", nil
	}
	start := ""
	if l.Start > 1 {
		start = fmt.Sprintf("\\setcounter{enumi}{%d}\n", l.Start-1)
	}
	return "\\begin{enumerate}\n" + start + body + "\\end{enumerate}\n\n", nil
}

func renderListItem(ctx *render.Context, n doctree.Node) (string, error) {
	body, err := ctx.RenderChildren(n)
	if err != nil {
		return "", err
	}
	return `\item ` + strings.TrimSpace(body) + "\n", nil
}

func renderTerm(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.DefinitionTerm)
	body, err := ctx.RenderChildren(t)
	if err != nil {
		return "", err
	}
	for _, c := range t.Classifiers {
		body += ` : \emph{` + Escape(c) + "}"
	}
	return `\item[{` + body + "}] ", nil
}

func renderField(ctx *render.Context, n doctree.Node) (string, error) {
	f := n.(*doctree.Field)
	body, err := ctx.RenderChildren(f)
	if err != nil {
		return "", err
	}
	return `\item[{` + Escape(f.Name) + "}] " + strings.TrimSpace(body) + "\n", nil
}

func renderTable(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.Table)
	width := 0
	for _, rows := range [][]*doctree.TableRow{t.Header, t.Rows} {
		for _, r := range rows {
			w := 0
			for _, c := range r.Columns {
				w += c.Colspan
			}
			width = max(width, w)
		}
	}
	if width == 0 {
		return "", nil
	}
	var sb strings.Builder
	sb.WriteString(`\begin{tabular}{|` + strings.Repeat("l|", width) + "}\n\\hline\n")
	writeRows := func(rows []*doctree.TableRow, bold bool) error {
		for _, r := range rows {
			cells := make([]string, 0, len(r.Columns))
			for _, c := range r.Columns {
				body, err := ctx.Render(c)
				if err != nil {
					return err
				}
				body = strings.TrimSpace(body)
				if bold && body != "" {
					body = `\textbf{` + body + "}"
				}
				if c.Rowspan > 1 {
					body = fmt.Sprintf(`\multirow{%d}{*}{%s}`, c.Rowspan, body)
				}
				if c.Colspan > 1 {
					body = fmt.Sprintf(`\multicolumn{%d}{|l|}{%s}`, c.Colspan, body)
				}
				cells = append(cells, body)
			}
			sb.WriteString(strings.Join(cells, " & ") + ` \\` + "\n\\hline\n")
		}
		return nil
	}
	if err := writeRows(t.Header, true); err != nil {
		return "", err
	}
	if err := writeRows(t.Rows, false); err != nil {
		return "", err
	}
	sb.WriteString("\\end{tabular}\n\n")
	return sb.String(), nil
}

func renderLiteral(ctx *render.Context, n doctree.Node) (string, error) {
	lb := n.(*doctree.LiteralBlock)
	caption := ""
	if lb.Caption != "" {
		caption = `\textit{` + Escape(lb.Caption) + "}\n"
	}
	return caption + "\\begin{verbatim}\n" + lb.Value + "\n\\end{verbatim}\n\n", nil
}

func renderTransition(ctx *render.Context, n doctree.Node) (string, error) {
	return "\\par\\noindent\\rule{\\linewidth}{0.4pt}\\par\n\n", nil
}

func renderAnchor(ctx *render.Context, n doctree.Node) (string, error) {
	return `\label{` + label(ctx.Document.File, n.(*doctree.Anchor).ID) + "}\n", nil
}

func renderAdmonition(ctx *render.Context, n doctree.Node) (string, error) {
	a := n.(*doctree.Admonition)
	body, err := ctx.RenderChildren(a)
	if err != nil {
		return "", err
	}
	if out, ok, err := ctx.Template("admonition", map[string]any{
		"Name":  a.Name,
		"Title": Escape(a.Title),
		"Body":  body,
	}); err != nil || ok {
		return out, err
	}
	return "\\begin{quote}\n\\textbf{" + Escape(a.Title) + "}\n\n" + body + "\\end{quote}\n\n", nil
}

// renderToctree includes the listed documents, which are rendered to
// sibling .tex files.
func renderToctree(ctx *render.Context, n doctree.Node) (string, error) {
	t := n.(*doctree.Toctree)
	var sb strings.Builder
	for _, f := range t.Files {
		if f.File == "" {
			continue
		}
		sb.WriteString(`\input{` + f.File + "}\n")
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func renderFootnote(ctx *render.Context, n doctree.Node) (string, error) {
	f := n.(*doctree.Footnote)
	body, err := ctx.RenderChildren(f)
	if err != nil {
		return "", err
	}
	body = strings.TrimSpace(body)
	if f.Citation {
		return "\\begin{thebibliography}{" + Escape(f.Label) + "}\n\\bibitem[" + Escape(f.Label) + "]{" + f.ID + "} " + body + "\n\\end{thebibliography}\n\n", nil
	}
	return fmt.Sprintf("\\footnotetext[%d]{%s}\n\n", f.Number, body), nil
}

func renderRaw(ctx *render.Context, n doctree.Node) (string, error) {
	r := n.(*doctree.Raw)
	if r.Format != Format {
		return "", nil
	}
	return r.Value + "\n\n", nil
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
	return `\textbf{` + Escape(t.Label) + "}\n\n" + body, nil
}

func renderImage(ctx *render.Context, n doctree.Node) (string, error) {
	img := n.(*doctree.Image)
	opts := ""
	if img.Width != "" {
		opts = "[width=" + img.Width + "]"
	}
	out := `\includegraphics` + opts + "{" + img.URI + "}"
	if !img.HasClass("figure") {
		return out + "\n\n", nil
	}
	caption := ""
	if img.Caption != "" {
		caption = `\caption{` + Escape(img.Caption) + "}\n"
	}
	return "\\begin{figure}[htbp]\n\\centering\n" + out + "\n" + caption + "\\end{figure}\n\n", nil
}

func renderError(ctx *render.Context, n doctree.Node) (string, error) {
	return `\textcolor{red}{` + Escape(n.(*doctree.Error).Source) + "}", nil
}
