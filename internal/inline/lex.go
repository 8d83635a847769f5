// Package inline tokenizes the inline markup of a paragraph: emphasis,
// literals, roles, hyperlink references and footnote markers.
//
// Tokenization is permissive. Delimiters that do not form valid markup are
// returned as part of the surrounding text.
package inline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/guides/internal/refs"
)

// Token is a unit of inline markup.
type Token struct {
	Type      Type
	Pos       int    // byte offset of the token in the input
	Text      string // source text of the token
	Value     string // content between the delimiters; unescaped for Text
	Role      string // role name for Role tokens
	Domain    string // role domain, e.g. "php" in :php:class:
	Anonymous bool   // Reference ending in "__"
}

// Type identifies the type of inline tokens.
type Type int

const (
	EOF         Type = iota // EOF ends the token stream
	Text                    // Text is plain text
	Emphasis                // Emphasis is *text*
	Strong                  // Strong is **text**
	Literal                 // Literal is ``text``
	Interpreted             // Interpreted is `text` without a role
	Role                    // Role is :name:`text` or `text`:name:
	Reference               // Reference is name_, `phrase`_ or an anonymous __ form
	FootnoteRef             // FootnoteRef is [1]_, [#]_ or [#name]_
	CitationRef             // CitationRef is [LABEL]_
	Link                    // Link is a standalone http(s) URL
)

var typeNames = map[Type]string{
	EOF:         "EOF",
	Text:        "text",
	Emphasis:    "emphasis",
	Strong:      "strong",
	Literal:     "literal",
	Interpreted: "interpreted",
	Role:        "role",
	Reference:   "reference",
	FootnoteRef: "footnote-ref",
	CitationRef: "citation-ref",
	Link:        "link",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("type(%d)", int(t))
}

func (t Token) String() string {
	switch {
	case t.Type == EOF:
		return "EOF"
	case len(t.Text) > 10:
		return fmt.Sprintf("%s: %.10q...", t.Type, t.Text)
	}
	return fmt.Sprintf("%s: %q", t.Type, t.Text)
}

const (
	roleName    = `[\w+.-]+(?::[\w+.-]+)?`
	startAfter  = "-:/'\"<([{"
	endBefore   = "-.,:;!?\\/'\")]}>"
	escapeStart = '\\'
)

var (
	literalPattern   = regexp.MustCompile("(?s)^``(\\S(?:.*?\\S)?)``")
	rolePattern      = regexp.MustCompile("(?s)^:(" + roleName + "):`([^`]+)`")
	backquotePattern = regexp.MustCompile("(?s)^`([^`]+)`(__?|:" + roleName + ":)?")
	footnotePattern  = regexp.MustCompile(`^\[(#[A-Za-z0-9]*|[A-Za-z0-9][\w.-]*)\]_`)
	wordRefPattern   = regexp.MustCompile(`^([A-Za-z0-9]+(?:[-_.+][A-Za-z0-9]+)*)(__?)`)
	linkPattern      = regexp.MustCompile(`^https?://[^\s<>]*[^\s<>.,;:!?'")\]]`)
)

// Lexer holds the state of the inline scanner.
type Lexer struct {
	input   string
	pos     int
	pending *Token
}

// Lex returns a lexer over text.
func Lex(text string) *Lexer {
	return &Lexer{input: text}
}

// Reset rewinds the lexer to the start of its input.
func (l *Lexer) Reset() {
	l.pos = 0
	l.pending = nil
}

// Tokens returns every token in text, excluding the final EOF.
func Tokens(text string) []Token {
	l := Lex(text)
	var out []Token
	for t := l.Next(); t.Type != EOF; t = l.Next() {
		out = append(out, t)
	}
	return out
}

// Next returns the next token. After the input is exhausted it keeps
// returning EOF.
func (l *Lexer) Next() Token {
	if l.pending != nil {
		t := *l.pending
		l.pending = nil
		return t
	}
	if l.pos >= len(l.input) {
		return Token{Type: EOF, Pos: l.pos}
	}
	start := l.pos
	var text strings.Builder
	for l.pos < len(l.input) {
		if l.input[l.pos] == escapeStart {
			l.escape(&text)
			continue
		}
		if l.canStart() {
			if t, ok := l.markup(); ok {
				if text.Len() == 0 && l.pos == start {
					l.pos += len(t.Text)
					return t
				}
				l.pos += len(t.Text)
				l.pending = &t
				break
			}
		}
		r, w := utf8.DecodeRuneInString(l.input[l.pos:])
		text.WriteRune(r)
		l.pos += w
	}
	end := l.pos
	if l.pending != nil {
		end = l.pending.Pos
	}
	return Token{Type: Text, Pos: start, Text: l.input[start:end], Value: text.String()}
}

// escape consumes a backslash escape. An escaped whitespace character
// vanishes together with the backslash.
func (l *Lexer) escape(text *strings.Builder) {
	l.pos++
	if l.pos >= len(l.input) {
		text.WriteByte(escapeStart)
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	if !unicode.IsSpace(r) {
		text.WriteRune(r)
	}
}

// canStart reports whether inline markup may begin at the current position.
func (l *Lexer) canStart() bool {
	if l.pos == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(l.input[:l.pos])
	return unicode.IsSpace(prev) || strings.ContainsRune(startAfter, prev)
}

// canEnd reports whether inline markup may end just before offset i.
func (l *Lexer) canEnd(i int) bool {
	if i >= len(l.input) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(l.input[i:])
	return unicode.IsSpace(next) || strings.ContainsRune(endBefore, next)
}

// markup returns the longest markup token starting at the current position.
func (l *Lexer) markup() (Token, bool) {
	s := l.input[l.pos:]
	var candidates []Token
	switch c := s[0]; {
	case c == '`':
		candidates = append(candidates, l.literal(s)...)
		candidates = append(candidates, l.backquote(s)...)
	case c == '*':
		candidates = append(candidates, l.delimited(s, "**", Strong)...)
		candidates = append(candidates, l.delimited(s, "*", Emphasis)...)
	case c == ':':
		candidates = append(candidates, l.role(s)...)
	case c == '[':
		candidates = append(candidates, l.footnote(s)...)
	case isAlnum(c):
		candidates = append(candidates, l.link(s)...)
		candidates = append(candidates, l.wordRef(s)...)
	}
	var best Token
	found := false
	for _, t := range candidates {
		if !l.canEnd(l.pos + len(t.Text)) {
			continue
		}
		if !found || len(t.Text) > len(best.Text) {
			best, found = t, true
		}
	}
	return best, found
}

func (l *Lexer) token(typ Type, text, value string) Token {
	return Token{Type: typ, Pos: l.pos, Text: text, Value: value}
}

func (l *Lexer) literal(s string) []Token {
	m := literalPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return []Token{l.token(Literal, m[0], m[1])}
}

// delimited matches s, which opens with delim, up to the first closing
// delim that satisfies the end-string rules. Closing candidates that are
// preceded by whitespace or a backslash, or followed by a character that
// may not end markup, are skipped.
func (l *Lexer) delimited(s, delim string, typ Type) []Token {
	n := len(delim)
	if len(s) <= n || !strings.HasPrefix(s, delim) {
		return nil
	}
	first, _ := utf8.DecodeRuneInString(s[n:])
	if unicode.IsSpace(first) || (delim == "*" && first == '*') {
		return nil
	}
	for i := n + 1; i+n <= len(s); i++ {
		if !strings.HasPrefix(s[i:], delim) {
			continue
		}
		last, _ := utf8.DecodeLastRuneInString(s[:i])
		if unicode.IsSpace(last) || last == escapeStart || !l.canEnd(l.pos+i+n) {
			continue
		}
		return []Token{l.token(typ, s[:i+n], unescape(s[n:i]))}
	}
	return nil
}

func (l *Lexer) backquote(s string) []Token {
	if strings.HasPrefix(s, "``") {
		return nil
	}
	m := backquotePattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	suffix := m[2]
	switch {
	case suffix == "":
		return []Token{l.token(Interpreted, m[0], m[1])}
	case suffix[0] == '_':
		t := l.token(Reference, m[0], m[1])
		t.Anonymous = suffix == "__"
		return []Token{t}
	}
	t := l.token(Role, m[0], m[1])
	t.Domain, t.Role = splitRole(strings.Trim(suffix, ":"))
	return []Token{t}
}

func (l *Lexer) role(s string) []Token {
	m := rolePattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	t := l.token(Role, m[0], m[2])
	t.Domain, t.Role = splitRole(m[1])
	return []Token{t}
}

func (l *Lexer) footnote(s string) []Token {
	m := footnotePattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	typ := CitationRef
	if refs.IsFootnoteKey(m[1]) {
		typ = FootnoteRef
	}
	return []Token{l.token(typ, m[0], m[1])}
}

func (l *Lexer) link(s string) []Token {
	m := linkPattern.FindString(s)
	if m == "" {
		return nil
	}
	return []Token{l.token(Link, m, m)}
}

func (l *Lexer) wordRef(s string) []Token {
	m := wordRefPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	t := l.token(Reference, m[0], m[1])
	t.Anonymous = m[2] == "__"
	return []Token{t}
}

// splitRole separates "domain:name" into its parts.
func splitRole(name string) (domain, role string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// unescape removes backslash escapes from markup content.
func unescape(s string) string {
	if !strings.ContainsRune(s, escapeStart) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == escapeStart && i+1 < len(s) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
