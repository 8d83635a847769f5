package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	doc := newDocument(filename)
	out := newOutline(doc)
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		line := lineOf(n, src)
		if h, ok := n.(*ast.Heading); ok {
			out.open(mdInline(h, src), h.Level, line)
			continue
		}
		if b := mdBlock(n, src); b != nil {
			b.SetLocation(doc.Loc(line))
			out.add(b)
		}
	}
	return doc, nil
}

// mdBlock converts a goldmark block node.
func mdBlock(n ast.Node, src []byte) doctree.Node {
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return doctree.NewParagraph(mdInline(node, src)...)
	case *ast.Heading:
		// Headings nested in lists or quotes cannot open sections.
		p := doctree.NewParagraph(mdInline(node, src)...)
		p.AddClass("rubric")
		return p
	case *ast.FencedCodeBlock:
		return &doctree.LiteralBlock{Value: blockLines(node, src), Language: string(node.Language(src))}
	case *ast.CodeBlock:
		return &doctree.LiteralBlock{Value: blockLines(node, src)}
	case *ast.HTMLBlock:
		return &doctree.Raw{Format: "html", Value: blockLines(node, src)}
	case *ast.ThematicBreak:
		return &doctree.Transition{}
	case *ast.Blockquote:
		bq := &doctree.BlockQuote{}
		bq.Append(mdBlocks(node, src)...)
		return bq
	case *ast.List:
		l := &doctree.List{Ordered: node.IsOrdered(), Start: node.Start}
		if l.Ordered {
			l.Enumerator = "arabic"
		}
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			item := &doctree.ListItem{}
			item.Append(mdBlocks(c, src)...)
			l.Append(item)
		}
		return l
	}
	if t := extractText(n, src); t != "" {
		return doctree.NewParagraph(doctree.NewText(t))
	}
	return nil
}

func mdBlocks(n ast.Node, src []byte) []doctree.Node {
	var out []doctree.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if b := mdBlock(c, src); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// mdInline converts the inline children of n.
func mdInline(n ast.Node, src []byte) []doctree.Node {
	var out []doctree.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			s := string(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				s += "\n"
			}
			out = append(out, doctree.NewText(s))
		case *ast.String:
			out = append(out, doctree.NewText(string(node.Value)))
		case *ast.Emphasis:
			style := doctree.StyleEmphasis
			if node.Level > 1 {
				style = doctree.StyleStrong
			}
			out = append(out, doctree.NewSpan(style, extractText(node, src)))
		case *ast.CodeSpan:
			out = append(out, doctree.NewSpan(doctree.StyleLiteral, extractText(node, src)))
		case *ast.Link:
			out = append(out, &doctree.Link{URL: string(node.Destination), Text: extractText(node, src)})
		case *ast.AutoLink:
			out = append(out, &doctree.Link{URL: string(node.URL(src)), Text: string(node.Label(src))})
		case *ast.Image:
			out = append(out, &doctree.Image{URI: string(node.Destination), Alt: extractText(node, src)})
		case *ast.RawHTML:
			var buf bytes.Buffer
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				buf.Write(seg.Value(src))
			}
			out = append(out, &doctree.Raw{Format: "html", Value: buf.String()})
		default:
			out = append(out, mdInline(node, src)...)
		}
	}
	return out
}

func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

// lineOf returns the 1-based source line where a block starts, or 0.
func lineOf(n ast.Node, src []byte) int {
	if n.Type() != ast.TypeBlock || n.Lines().Len() == 0 {
		if c := n.FirstChild(); c != nil {
			if t, ok := c.(*ast.Text); ok {
				return bytes.Count(src[:t.Segment.Start], []byte("\n")) + 1
			}
		}
		return 0
	}
	return bytes.Count(src[:n.Lines().At(0).Start], []byte("\n")) + 1
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return strings.TrimSpace(blockLines(n, src))
	}
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			// Recurse for nested inlines.
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
