package doctree

import (
	"strconv"

	"github.com/dgallion1/guides/internal/refs"
)

// SpanStyle distinguishes the inline runs carried by a Span.
type SpanStyle int

const (
	StyleText SpanStyle = iota
	StyleEmphasis
	StyleStrong
	StyleLiteral
	StyleInterpreted // interpreted text without a role
)

func (s SpanStyle) String() string {
	switch s {
	case StyleText:
		return "text"
	case StyleEmphasis:
		return "emphasis"
	case StyleStrong:
		return "strong"
	case StyleLiteral:
		return "literal"
	case StyleInterpreted:
		return "interpreted"
	}
	return "style(" + strconv.Itoa(int(s)) + ")"
}

// Span is a run of inline text.
type Span struct {
	base
	Style SpanStyle
	Value string
	Title string // explanation of an abbreviation
}

// NewText returns a plain text span.
func NewText(value string) *Span {
	return &Span{Style: StyleText, Value: value}
}

// NewSpan returns a styled span.
func NewSpan(style SpanStyle, value string) *Span {
	return &Span{Style: style, Value: value}
}

func (*Span) Kind() Kind { return KindSpan }

// Resolved is the outcome of resolving a cross-reference. Only the
// resolver creates these.
type Resolved struct {
	File   string // target document file id; empty for external targets
	Anchor string
	Text   string
	URL    string // absolute URL for external targets
}

// CrossReference is a span pointing at another location in the project or
// an external inventory.
type CrossReference struct {
	base
	Role      string // "ref", "doc", ... ; empty for `name`_ references
	Domain    string
	Ref       refs.Descriptor
	Raw       string // source text between the delimiters
	Anonymous bool

	resolved   *Resolved
	unresolved bool
}

// NewCrossReference parses raw with the embedded/interlink grammar.
func NewCrossReference(role, domain, raw string) *CrossReference {
	return &CrossReference{
		Role:   role,
		Domain: domain,
		Ref:    refs.Parse(raw),
		Raw:    raw,
	}
}

func (*CrossReference) Kind() Kind { return KindCrossReference }

// Resolve attaches a resolution result.
func (c *CrossReference) Resolve(r Resolved) {
	c.resolved = &r
	c.unresolved = false
}

// MarkUnresolved flags the reference as a broken link.
func (c *CrossReference) MarkUnresolved() {
	c.resolved = nil
	c.unresolved = true
}

// Resolution returns the attached result, if any.
func (c *CrossReference) Resolution() (Resolved, bool) {
	if c.resolved == nil {
		return Resolved{}, false
	}
	return *c.resolved, true
}

// Unresolved reports whether resolution was attempted and failed.
func (c *CrossReference) Unresolved() bool {
	return c.unresolved
}

// DisplayText is the explicit link text, else the resolved title, else the
// reference itself.
func (c *CrossReference) DisplayText() string {
	if c.Ref.Text != "" {
		return c.Ref.Text
	}
	if c.resolved != nil && c.resolved.Text != "" {
		return c.resolved.Text
	}
	return c.Ref.Reference
}

// FootnoteReference points at a footnote or citation.
type FootnoteReference struct {
	base
	Key      string
	Citation bool

	Number   int    // set by the footnote pass
	TargetID string // set by the footnote pass
	Resolved bool
}

func (*FootnoteReference) Kind() Kind { return KindFootnoteReference }

// Label returns the marker text for the reference.
func (f *FootnoteReference) Label() string {
	if f.Citation {
		return f.Key
	}
	if f.Number > 0 {
		return strconv.Itoa(f.Number)
	}
	return f.Key
}

// Link is an external hyperlink.
type Link struct {
	base
	URL  string
	Text string
}

func (*Link) Kind() Kind { return KindLink }
