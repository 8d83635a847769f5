package parser

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/guides/internal/diag"
)

const adornmentChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// isAdornment reports whether line is a run of one repeated punctuation
// character, as used for section underlines, overlines and transitions.
func isAdornment(line string) bool {
	if len(line) < 2 || !strings.ContainsRune(adornmentChars, rune(line[0])) {
		return false
	}
	return strings.Count(line, line[:1]) == len(line)
}

// underlineTitle handles a title line followed by an adornment line.
func (p *blockParser) underlineTitle() bool {
	under, ok := p.peek()
	if !ok || !isAdornment(under) || isAdornment(p.line) {
		return false
	}
	width := utf8.RuneCountInString(p.line)
	if len(under) < width && len(under) < 4 {
		return false
	}
	p.next()
	if len(under) < width {
		p.report(diag.Warning, p.lineNo, "title underline too short")
	}
	p.section(p.line, under[:1], p.lineNo)
	return true
}

// overlineTitle handles an adornment line, a title line and a matching
// adornment line.
func (p *blockParser) overlineTitle() bool {
	title, ok := p.peek()
	if !ok || title == "" || isAdornment(title) {
		return false
	}
	p.next()
	under, ok := p.peek()
	if !ok || under != p.line {
		p.buf.Backup()
		return false
	}
	p.next()
	p.section(strings.TrimSpace(title), p.line[:1]+"/over", p.lineNo)
	return true
}

// section opens a section for title. Levels are assigned to adornment
// styles in the order they first appear.
func (p *blockParser) section(title, style string, line int) {
	if !p.top {
		p.reportError(line, title, "unexpected section title %q in nested content", title)
		return
	}
	level := slices.Index(p.styles, style)
	if level < 0 {
		p.styles = append(p.styles, style)
		level = len(p.styles) - 1
	}
	s := p.outline.open(p.inline(title, line), level+1, line)
	text := s.Title().Text()
	for _, i := range p.pending {
		p.doc.Targets[i].Title = text
	}
	p.pending = nil
	p.started = true
}
