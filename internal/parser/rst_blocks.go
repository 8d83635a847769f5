package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
)

var (
	bulletItem = regexp.MustCompile(`^([-*+•‣⁃])(?: +|$)`)
	enumItem   = regexp.MustCompile(`^(\(?)([0-9]+|#|[a-zA-Z]|[ivxlcdm]+|[IVXLCDM]+)([.)])(?: +|$)`)
	fieldItem  = regexp.MustCompile(`^:((?:[^:\\\s]|\\.)(?:[^:\\]|\\.)*):(?: +(.*))?$`)
)

// listMarker describes the marker that starts a list item.
type listMarker struct {
	ordered    bool
	bullet     string // bullet character
	enumerator string // arabic, loweralpha, upperalpha, lowerroman, upperroman
	format     string // prefix and suffix punctuation, e.g. "." or "()"
	value      int
	width      int // columns taken by the marker and following spaces
}

func (m listMarker) sameList(o listMarker) bool {
	if m.ordered != o.ordered {
		return false
	}
	if !m.ordered {
		return m.bullet == o.bullet
	}
	return m.format == o.format && (o.enumerator == m.enumerator || o.enumerator == "auto")
}

func matchListItem(line string) (listMarker, bool) {
	if m := bulletItem.FindStringSubmatch(line); m != nil {
		return listMarker{bullet: m[1], width: len(m[0])}, true
	}
	m := enumItem.FindStringSubmatch(line)
	if m == nil {
		return listMarker{}, false
	}
	opening, seq, closing := m[1], m[2], m[3]
	if opening == "(" && closing != ")" {
		return listMarker{}, false
	}
	lm := listMarker{ordered: true, format: opening + closing, width: len(m[0])}
	lm.enumerator, lm.value = enumerator(seq)
	return lm, true
}

func enumerator(seq string) (string, int) {
	switch {
	case seq == "#":
		return "auto", 1
	case seq[0] >= '0' && seq[0] <= '9':
		n, _ := strconv.Atoi(seq)
		return "arabic", n
	case seq == "i" || seq == "I" || len(seq) > 1:
		n := romanValue(strings.ToLower(seq))
		if seq[0] >= 'a' {
			return "lowerroman", n
		}
		return "upperroman", n
	case seq[0] >= 'a' && seq[0] <= 'z':
		return "loweralpha", int(seq[0]-'a') + 1
	}
	return "upperalpha", int(seq[0]-'A') + 1
}

func romanValue(s string) int {
	values := map[byte]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000}
	total := 0
	for i := 0; i < len(s); i++ {
		v := values[s[i]]
		if i+1 < len(s) && values[s[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	return total
}

// inList parses consecutive items that share a marker style.
func inList(p *blockParser) stateFn {
	first, _ := matchListItem(p.line)
	list := &doctree.List{Ordered: first.ordered, Enumerator: first.enumerator, Start: first.value}
	if first.enumerator == "auto" {
		list.Enumerator = "arabic"
	}
	start := p.lineNo
	line, lineNo := p.line, p.lineNo
	for {
		m, _ := matchListItem(line)
		item := &doctree.ListItem{}
		item.Append(p.child(p.itemBody(line, m.width), lineNo)...)
		item.SetLocation(p.doc.Loc(lineNo))
		list.Append(item)

		next, ok := p.next()
		if !ok {
			break
		}
		nm, isItem := matchListItem(next)
		if !isItem || !first.sameList(nm) {
			p.buf.Backup()
			break
		}
		line, lineNo = next, p.lineNumber()
	}
	p.emit(start, list)
	return betweenBlocks
}

// itemBody returns the lines of a list item or field whose first line has
// a marker of the given width.
func (p *blockParser) itemBody(first string, width int) []string {
	head := strings.TrimSpace(first[min(width, len(first)):])
	gap := p.blankNext()
	rest, _ := p.indentedBlock(1)
	if head == "" {
		return rest
	}
	lines := []string{head}
	if gap && len(rest) > 0 {
		lines = append(lines, "")
	}
	return append(lines, rest...)
}

// fieldLine splits ":name: body".
func fieldLine(line string) (name, body string, ok bool) {
	m := fieldItem.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// fieldList parses consecutive fields. A field list that opens the
// document also fills the document metadata.
func (p *blockParser) fieldList() {
	fl := &doctree.FieldList{}
	docinfo := p.top && !p.started
	line, lineNo := p.line, p.lineNo
	for {
		name, body, _ := fieldLine(line)
		gap := p.blankNext()
		rest, _ := p.indentedBlock(1)
		lines := rest
		if body != "" {
			lines = []string{body}
			if gap && len(rest) > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, rest...)
		}
		f := &doctree.Field{Name: name}
		f.SetLocation(p.doc.Loc(lineNo))
		f.Append(p.child(lines, lineNo)...)
		fl.Append(f)
		if docinfo {
			p.doc.Meta[name] = strings.TrimSpace(doctree.PlainText(f))
		}

		next, ok := p.next()
		if !ok {
			break
		}
		if _, _, isField := fieldLine(next); !isField {
			p.buf.Backup()
			break
		}
		line, lineNo = next, p.lineNumber()
	}
	p.emit(p.lineNo, fl)
}

// definitionList parses items made of an unindented term line followed by
// an indented definition.
func (p *blockParser) definitionList() {
	dl := &doctree.DefinitionList{}
	line, lineNo := p.line, p.lineNo
	for {
		parts := strings.Split(line, " : ")
		term := &doctree.DefinitionTerm{}
		term.Append(p.inline(strings.TrimSpace(parts[0]), lineNo)...)
		for _, c := range parts[1:] {
			term.Classifiers = append(term.Classifiers, strings.TrimSpace(c))
		}
		body, start := p.indentedBlock(1)
		def := &doctree.Definition{}
		def.Append(p.child(body, start)...)
		item := doctree.NewDefinitionItem(term, def)
		item.SetLocation(p.doc.Loc(lineNo))
		dl.Append(item)

		next, ok := p.next()
		if !ok {
			break
		}
		after, ok := p.peek()
		if !ok || after == "" || indent(after) == 0 || !p.isTermLine(next) {
			p.buf.Backup()
			break
		}
		line, lineNo = next, p.lineNumber()
	}
	p.emit(p.lineNo, dl)
}

func (p *blockParser) isTermLine(line string) bool {
	if line == "" || indent(line) > 0 || strings.HasPrefix(line, "..") {
		return false
	}
	if _, ok := matchListItem(line); ok {
		return false
	}
	_, _, isField := fieldLine(line)
	return !isField
}
