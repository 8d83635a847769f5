package doctree

import (
	"strconv"
	"strings"
)

// Section groups a title with the content that follows it.
// The title is always the first child.
type Section struct {
	container
	Depth int
	ID    string
}

// NewSection returns a section whose first child is title.
func NewSection(title *Title, depth int, id string) *Section {
	s := &Section{Depth: depth, ID: id}
	s.Append(title)
	return s
}

func (*Section) Kind() Kind { return KindSection }

// Title returns the section title.
func (s *Section) Title() *Title {
	if len(s.children) == 0 {
		return nil
	}
	t, _ := s.children[0].(*Title)
	return t
}

// Title holds the inline content of a section heading.
type Title struct {
	container
	Level int
	ID    string
}

// NewTitle returns a title over inline nodes.
func NewTitle(level int, id string, inline ...Node) *Title {
	t := &Title{Level: level, ID: id}
	t.Append(inline...)
	return t
}

func (*Title) Kind() Kind { return KindTitle }

// Text returns the plain title text.
func (t *Title) Text() string {
	return strings.TrimSpace(PlainText(t))
}

// Paragraph is a run of inline content.
type Paragraph struct{ container }

// NewParagraph returns a paragraph over inline nodes.
func NewParagraph(inline ...Node) *Paragraph {
	p := &Paragraph{}
	p.Append(inline...)
	return p
}

func (*Paragraph) Kind() Kind { return KindParagraph }

// List is a bullet or enumerated list.
type List struct {
	container
	Ordered    bool
	Enumerator string // arabic, loweralpha, upperalpha, lowerroman, upperroman
	Start      int
}

func (*List) Kind() Kind { return KindList }

// ListItem holds the blocks of one list entry.
type ListItem struct{ container }

func (*ListItem) Kind() Kind { return KindListItem }

// DefinitionList holds DefinitionItem children.
type DefinitionList struct{ container }

func (*DefinitionList) Kind() Kind { return KindDefinitionList }

// DefinitionItem has exactly two children: a DefinitionTerm and a Definition.
type DefinitionItem struct{ container }

// NewDefinitionItem pairs a term with its definition.
func NewDefinitionItem(term *DefinitionTerm, def *Definition) *DefinitionItem {
	d := &DefinitionItem{}
	d.Append(term, def)
	return d
}

func (*DefinitionItem) Kind() Kind { return KindDefinitionItem }

// DefinitionTerm is the inline term of a definition list item.
type DefinitionTerm struct {
	container
	Classifiers []string
}

func (*DefinitionTerm) Kind() Kind { return KindDefinitionTerm }

// Definition is the block body of a definition list item.
type Definition struct{ container }

func (*Definition) Kind() Kind { return KindDefinition }

// FieldList holds Field children.
type FieldList struct{ container }

func (*FieldList) Kind() Kind { return KindFieldList }

// Field is a `:name: body` entry; its children are the body blocks.
type Field struct {
	container
	Name string
}

func (*Field) Kind() Kind { return KindField }

// LiteralBlock is preformatted text, optionally with a language.
type LiteralBlock struct {
	base
	Value       string
	Language    string
	Caption     string
	LineNumbers bool
}

func (*LiteralBlock) Kind() Kind { return KindLiteralBlock }

// BlockQuote is indented content.
type BlockQuote struct{ container }

func (*BlockQuote) Kind() Kind { return KindBlockQuote }

// Transition is a horizontal rule.
type Transition struct{ base }

func (*Transition) Kind() Kind { return KindTransition }

// Anchor marks the position of an internal hyperlink target.
type Anchor struct {
	base
	Name string
	ID   string
}

func (*Anchor) Kind() Kind { return KindAnchor }

// Footnote is a footnote or citation body.
type Footnote struct {
	container
	Key      string // as written between brackets
	Label    string // footnote name or citation label
	Number   int    // assigned by the footnote pass for footnotes
	Citation bool
	ID       string
}

func (*Footnote) Kind() Kind { return KindFootnote }

// Display returns the marker shown for the footnote.
func (f *Footnote) Display() string {
	if f.Citation {
		return f.Label
	}
	return strconv.Itoa(f.Number)
}

// Error replaces markup that could not be processed.
type Error struct {
	base
	Message string
	Source  string
}

func (*Error) Kind() Kind { return KindError }

// NewError returns an error marker node.
func NewError(message, source string) *Error {
	return &Error{Message: message, Source: source}
}
