package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
	"github.com/dgallion1/guides/internal/linebuf"
)

// RSTParser parses reStructuredText. Directives and roles come from
// Registry; a nil Registry knows none.
type RSTParser struct {
	Registry *extension.Registry
}

func (p *RSTParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return p.ParseString(string(src), filename), nil
}

// ParseString parses text as the contents of filename. It never fails;
// problems are reported in the document's diagnostics.
func (p *RSTParser) ParseString(text, filename string) *doctree.Document {
	doc := newDocument(filename)
	reg := p.Registry
	if reg == nil {
		reg = extension.NewRegistry()
	}
	st := &docState{reg: reg, doc: doc, outline: newOutline(doc)}
	text = strings.ReplaceAll(text, "\t", "        ")
	bp := &blockParser{docState: st, buf: linebuf.New(text), sink: st.outline, top: true}
	bp.run()
	return doc
}

// docState is shared by the parser of a document and the child parsers of
// its nested content.
type docState struct {
	reg     *extension.Registry
	doc     *doctree.Document
	outline *outline

	styles      []string // section adornment styles, in first-seen order
	anonRefs    int
	anonTargets int
	pending     []int // targets waiting for the section they precede
	started     bool  // a node other than a field list has been emitted
}

type sink interface {
	add(nodes ...doctree.Node)
}

type nodeList struct{ nodes []doctree.Node }

func (l *nodeList) add(nodes ...doctree.Node) {
	for _, n := range nodes {
		if n != nil {
			l.nodes = append(l.nodes, n)
		}
	}
}

// blockParser parses body elements from a line buffer. The document parser
// may open sections; child parsers for nested content may not.
type blockParser struct {
	*docState
	buf    *linebuf.Buffer
	offset int // source line number of the line before the buffer's first
	sink   sink
	top    bool

	line   string // line that started the current construct
	lineNo int
}

// stateFn represents the state of the block parser as a function that
// returns the next state.
type stateFn func(*blockParser) stateFn

func (p *blockParser) run() {
	for state := betweenBlocks; state != nil; {
		state = state(p)
	}
}

// lineNumber is the source line of the line most recently read.
func (p *blockParser) lineNumber() int {
	return p.offset + p.buf.Line()
}

func (p *blockParser) next() (string, bool) {
	line, ok := p.buf.Next()
	return strings.TrimRight(line, " "), ok
}

func (p *blockParser) peek() (string, bool) {
	line, ok := p.buf.Peek()
	return strings.TrimRight(line, " "), ok
}

// emit adds block nodes at the current position.
func (p *blockParser) emit(line int, nodes ...doctree.Node) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.Location() == (diag.Location{}) {
			n.SetLocation(p.doc.Loc(line))
		}
		if _, ok := n.(*doctree.Anchor); !ok {
			p.pending = nil
		}
		if _, ok := n.(*doctree.FieldList); !ok {
			p.started = true
		}
	}
	p.sink.add(nodes...)
}

func (p *blockParser) report(sev diag.Severity, line int, format string, args ...any) {
	p.doc.Report(sev, line, format, args...)
}

// reportError adds an error diagnostic and an error node in place of the
// offending markup.
func (p *blockParser) reportError(line int, source, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.report(diag.Error, line, "%s", msg)
	p.emit(line, doctree.NewError(msg, source))
}

// child parses lines as nested content starting at source line start.
func (p *blockParser) child(lines []string, start int) []doctree.Node {
	out := &nodeList{}
	c := &blockParser{
		docState: p.docState,
		buf:      linebuf.FromLines(lines),
		offset:   start - 1,
		sink:     out,
	}
	c.run()
	return out.nodes
}

// betweenBlocks skips blank lines and dispatches on the first line of the
// next construct.
func betweenBlocks(p *blockParser) stateFn {
	line, ok := p.next()
	if !ok {
		return nil
	}
	if line == "" {
		return betweenBlocks
	}
	p.line, p.lineNo = line, p.lineNumber()

	if indent(line) > 0 {
		p.buf.Backup()
		p.blockQuote()
		return betweenBlocks
	}
	if isAdornment(line) {
		if p.overlineTitle() {
			return betweenBlocks
		}
		if utf8.RuneCountInString(line) >= 4 {
			if next, ok := p.peek(); !ok || next == "" {
				p.emit(p.lineNo, &doctree.Transition{})
				return betweenBlocks
			}
		}
	}
	if strings.HasPrefix(line, "..") && (len(line) == 2 || line[2] == ' ') {
		return inExplicitMarkup
	}
	if p.underlineTitle() {
		return betweenBlocks
	}
	if _, ok := matchListItem(line); ok {
		return inList
	}
	if _, _, ok := fieldLine(line); ok {
		p.fieldList()
		return betweenBlocks
	}
	if gridBorder.MatchString(line) || simpleBorder.MatchString(line) {
		return inTable
	}
	if !strings.HasSuffix(line, "::") {
		if next, ok := p.peek(); ok && next != "" && indent(next) > 0 {
			p.definitionList()
			return betweenBlocks
		}
	}
	return inParagraph
}

// inParagraph collects lines up to a blank line or a change of indentation.
func inParagraph(p *blockParser) stateFn {
	lines := []string{p.line}
	start := p.lineNo
	for {
		line, ok := p.next()
		if !ok || line == "" {
			break
		}
		if indent(line) > 0 {
			p.buf.Backup()
			break
		}
		lines = append(lines, line)
	}

	text := strings.Join(lines, "\n")
	literal := strings.HasSuffix(text, "::")
	switch {
	case text == "::":
		text = ""
	case strings.HasSuffix(text, " ::"), strings.HasSuffix(text, "\n::"):
		text = strings.TrimRight(strings.TrimSuffix(text, "::"), " \n")
	case literal:
		text = strings.TrimSuffix(text, ":")
	}
	if text != "" {
		p.emit(start, doctree.NewParagraph(p.inline(text, start)...))
	}
	if literal {
		p.lineNo = p.lineNumber()
		return inLiteralBlock
	}
	return betweenBlocks
}

// inLiteralBlock reads the indented block after a "::" paragraph.
func inLiteralBlock(p *blockParser) stateFn {
	lines, start := p.indentedBlock(1)
	if len(lines) == 0 {
		p.report(diag.Warning, p.lineNo, "literal block expected; none found")
		return betweenBlocks
	}
	p.emit(start, &doctree.LiteralBlock{Value: strings.Join(lines, "\n")})
	return betweenBlocks
}

// blockQuote parses an indented block as quoted body elements.
func (p *blockParser) blockQuote() {
	lines, start := p.indentedBlock(1)
	bq := &doctree.BlockQuote{}
	bq.Append(p.child(lines, start)...)
	p.emit(start, bq)
}

// indentedBlock consumes lines that are blank or indented by at least
// minIndent columns. The lines come back with the common indentation and trailing
// blank lines removed, along with the source line of the first one.
func (p *blockParser) indentedBlock(minIndent int) ([]string, int) {
	var lines []string
	start := 0
	for {
		line, ok := p.next()
		if !ok {
			break
		}
		if line != "" && indent(line) < minIndent {
			p.buf.Backup()
			break
		}
		if line == "" && len(lines) == 0 {
			continue
		}
		if len(lines) == 0 {
			start = p.lineNumber()
		}
		lines = append(lines, line)
	}
	return dedent(trimBlank(lines)), start
}

// blankNext reports whether the next line is blank.
func (p *blockParser) blankNext() bool {
	next, ok := p.peek()
	return ok && next == ""
}

func indent(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

// dedent removes the indentation shared by every non-blank line.
func dedent(lines []string) []string {
	common := -1
	for _, l := range lines {
		if l == "" {
			continue
		}
		if n := indent(l); common < 0 || n < common {
			common = n
		}
	}
	if common <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= common {
			out[i] = l[common:]
		}
	}
	return out
}

func trimBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
