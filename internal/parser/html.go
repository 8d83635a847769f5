package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := newDocument(filename)
	if title := findTitle(root); title != "" {
		doc.Meta["title"] = title
	}
	out := newOutline(doc)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				out.open([]doctree.Node{doctree.NewText(textContent(n))}, level, 0)
				return
			}
			if b := htmlBlock(n); b != nil {
				out.add(b)
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}
	return doc, nil
}

// htmlBlock converts the content elements the importer understands.
func htmlBlock(n *html.Node) doctree.Node {
	switch n.Data {
	case "p", "td":
		if t := textContent(n); t != "" {
			return doctree.NewParagraph(htmlInline(n)...)
		}
	case "pre":
		lb := &doctree.LiteralBlock{Value: strings.Trim(rawText(n), "\n")}
		if code := firstElement(n, "code"); code != nil {
			for _, c := range strings.Fields(attr(code, "class")) {
				if lang, ok := strings.CutPrefix(c, "language-"); ok {
					lb.Language = lang
				}
			}
		}
		return lb
	case "blockquote":
		bq := &doctree.BlockQuote{}
		bq.Append(doctree.NewParagraph(doctree.NewText(textContent(n))))
		return bq
	case "hr":
		return &doctree.Transition{}
	case "ul", "ol":
		l := &doctree.List{Ordered: n.Data == "ol"}
		if l.Ordered {
			l.Enumerator, l.Start = "arabic", 1
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				item := &doctree.ListItem{}
				item.Append(doctree.NewParagraph(htmlInline(c)...))
				l.Append(item)
			}
		}
		return l
	}
	return nil
}

// htmlInline converts text, emphasis, code and links below n.
func htmlInline(n *html.Node) []doctree.Node {
	var out []doctree.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			if c.Data != "" {
				out = append(out, doctree.NewText(c.Data))
			}
		case c.Type != html.ElementNode:
		case c.Data == "em" || c.Data == "i":
			out = append(out, doctree.NewSpan(doctree.StyleEmphasis, textContent(c)))
		case c.Data == "strong" || c.Data == "b":
			out = append(out, doctree.NewSpan(doctree.StyleStrong, textContent(c)))
		case c.Data == "code":
			out = append(out, doctree.NewSpan(doctree.StyleLiteral, textContent(c)))
		case c.Data == "a" && attr(c, "href") != "":
			out = append(out, &doctree.Link{URL: attr(c, "href"), Text: textContent(c)})
		case c.Data == "img":
			out = append(out, &doctree.Image{URI: attr(c, "src"), Alt: attr(c, "alt")})
		default:
			out = append(out, htmlInline(c)...)
		}
	}
	return out
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	return strings.TrimSpace(rawText(n))
}

// rawText concatenates the text nodes below n without trimming.
func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func firstElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
