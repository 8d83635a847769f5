// Package doctree is the document node tree produced by the parsers and
// consumed by the compiler passes and renderers.
//
// Node is a sealed sum type: every kind is a concrete struct in this package
// and consumers dispatch with a type switch or on Kind.
package doctree

import (
	"fmt"
	"strings"

	"github.com/dgallion1/guides/internal/diag"
)

// Kind tags each node type.
type Kind int

const (
	KindDocument Kind = iota
	KindSection
	KindTitle
	KindParagraph
	KindSpan
	KindCrossReference
	KindFootnoteReference
	KindLink
	KindList
	KindListItem
	KindDefinitionList
	KindDefinitionItem
	KindDefinitionTerm
	KindDefinition
	KindFieldList
	KindField
	KindTable
	KindTableColumn
	KindLiteralBlock
	KindBlockQuote
	KindTransition
	KindAnchor
	KindAdmonition
	KindToctree
	KindFootnote
	KindRaw
	KindOnly
	KindConfigurationBlock
	KindConfigurationTab
	KindImage
	KindError

	kindCount
)

var kindNames = [...]string{
	KindDocument:           "document",
	KindSection:            "section",
	KindTitle:              "title",
	KindParagraph:          "paragraph",
	KindSpan:               "span",
	KindCrossReference:     "cross-reference",
	KindFootnoteReference:  "footnote-reference",
	KindLink:               "link",
	KindList:               "list",
	KindListItem:           "list-item",
	KindDefinitionList:     "definition-list",
	KindDefinitionItem:     "definition-item",
	KindDefinitionTerm:     "definition-term",
	KindDefinition:         "definition",
	KindFieldList:          "field-list",
	KindField:              "field",
	KindTable:              "table",
	KindTableColumn:        "table-column",
	KindLiteralBlock:       "literal-block",
	KindBlockQuote:         "block-quote",
	KindTransition:         "transition",
	KindAnchor:             "anchor",
	KindAdmonition:         "admonition",
	KindToctree:            "toctree",
	KindFootnote:           "footnote",
	KindRaw:                "raw",
	KindOnly:               "only",
	KindConfigurationBlock: "configuration-block",
	KindConfigurationTab:   "configuration-tab",
	KindImage:              "image",
	KindError:              "error",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds returns every node kind.
func Kinds() []Kind {
	ks := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		ks = append(ks, k)
	}
	return ks
}

// Node is implemented by every node in the tree.
type Node interface {
	Kind() Kind
	Classes() []string
	AddClass(classes ...string)
	Location() diag.Location
	SetLocation(loc diag.Location)
	// Children returns the owned child nodes in document order; nil for
	// leaves.
	Children() []Node
	node()
}

// base carries the fields shared by every node.
type base struct {
	classes []string
	loc     diag.Location
}

func (b *base) Classes() []string             { return b.classes }
func (b *base) Location() diag.Location       { return b.loc }
func (b *base) SetLocation(loc diag.Location) { b.loc = loc }
func (b *base) Children() []Node              { return nil }
func (*base) node()                           {}

func (b *base) AddClass(classes ...string) {
	for _, c := range classes {
		if c != "" && !b.HasClass(c) {
			b.classes = append(b.classes, c)
		}
	}
}

// HasClass reports whether the node carries class c.
func (b *base) HasClass(c string) bool {
	for _, have := range b.classes {
		if have == c {
			return true
		}
	}
	return false
}

// container is embedded by compound nodes.
type container struct {
	base
	children []Node
}

func (c *container) Children() []Node { return c.children }

// Append adds nodes at the end of the child list. Nil nodes are skipped.
func (c *container) Append(nodes ...Node) {
	for _, n := range nodes {
		if n != nil {
			c.children = append(c.children, n)
		}
	}
}

// HasChildren reports whether n is a compound node with at least one child.
func HasChildren(n Node) bool {
	return len(n.Children()) > 0
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// PlainText returns the text content of n with all markup removed.
func PlainText(n Node) string {
	var sb strings.Builder
	writePlain(&sb, n)
	return sb.String()
}

func writePlain(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Span:
		sb.WriteString(n.Value)
		return
	case *CrossReference:
		sb.WriteString(n.DisplayText())
		return
	case *FootnoteReference:
		sb.WriteString("[" + n.Label() + "]")
		return
	case *Link:
		sb.WriteString(n.Text)
		return
	case *LiteralBlock:
		sb.WriteString(n.Value)
		return
	}
	for _, c := range n.Children() {
		writePlain(sb, c)
	}
}
