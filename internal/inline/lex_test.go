package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type lexTest struct {
	name   string
	input  string
	tokens []Token
}

func tok(typ Type, text, value string) Token {
	return Token{Type: typ, Text: text, Value: value}
}

func text(s string) Token { return tok(Text, s, s) }

// strip zeroes positions so tests only compare content.
func strip(ts []Token) []Token {
	if len(ts) == 0 {
		return nil
	}
	out := make([]Token, len(ts))
	for i, t := range ts {
		t.Pos = 0
		out[i] = t
	}
	return out
}

var lexTests = []lexTest{
	{"empty", "", nil},
	{"plain", "now is the time", []Token{text("now is the time")}},
	{"emphasis", "an *important* word", []Token{
		text("an "), tok(Emphasis, "*important*", "important"), text(" word"),
	}},
	{"strong", "**bold**", []Token{tok(Strong, "**bold**", "bold")}},
	{"literal", "use ``go test``.", []Token{
		text("use "), tok(Literal, "``go test``", "go test"), text("."),
	}},
	{"interpreted", "the `title`", []Token{text("the "), tok(Interpreted, "`title`", "title")}},
	{"role prefix", "see :ref:`install`", []Token{
		text("see "), {Type: Role, Text: ":ref:`install`", Value: "install", Role: "ref"},
	}},
	{"domain role", ":php:class:`Foo\\Bar`", []Token{
		{Type: Role, Text: ":php:class:`Foo\\Bar`", Value: "Foo\\Bar", Role: "class", Domain: "php"},
	}},
	{"role suffix", "`install`:doc:", []Token{
		{Type: Role, Text: "`install`:doc:", Value: "install", Role: "doc"},
	}},
	{"phrase reference", "`Getting Started`_ now", []Token{
		tok(Reference, "`Getting Started`_", "Getting Started"), text(" now"),
	}},
	{"anonymous reference", "`docs <https://x.org>`__", []Token{
		{Type: Reference, Text: "`docs <https://x.org>`__", Value: "docs <https://x.org>", Anonymous: true},
	}},
	{"word reference", "read docs_ first", []Token{
		text("read "), tok(Reference, "docs_", "docs"), text(" first"),
	}},
	{"snake case is text", "call my_func here", []Token{text("call my_func here")}},
	{"footnote refs", "a [1]_ b [#]_ c [#note]_", []Token{
		text("a "), tok(FootnoteRef, "[1]_", "1"),
		text(" b "), tok(FootnoteRef, "[#]_", "#"),
		text(" c "), tok(FootnoteRef, "[#note]_", "#note"),
	}},
	{"citation ref", "see [CIT2002]_.", []Token{
		text("see "), tok(CitationRef, "[CIT2002]_", "CIT2002"), text("."),
	}},
	{"link", "visit https://example.org/docs.", []Token{
		text("visit "), tok(Link, "https://example.org/docs", "https://example.org/docs"), text("."),
	}},
	{"unmatched emphasis degrades", "2 * 3 = 6", []Token{text("2 * 3 = 6")}},
	{"unterminated literal degrades", "``open", []Token{text("``open")}},
	{"intraword delimiters are text", "a*b*c", []Token{text("a*b*c")}},
	{"emphasis skips invalid close", "*foo*bar baz* end", []Token{
		tok(Emphasis, "*foo*bar baz*", "foo*bar baz"), text(" end"),
	}},
	{"strong skips invalid close", "**a**b c**", []Token{tok(Strong, "**a**b c**", "a**b c")}},
	{"emphasis without valid close", "*foo*bar", []Token{text("*foo*bar")}},
	{"escaped delimiter", `\*not emphasis\*`, []Token{tok(Text, `\*not emphasis\*`, "*not emphasis*")}},
	{"escaped space vanishes", `a\ b`, []Token{tok(Text, `a\ b`, "ab")}},
	{"markup after punctuation", "(*x*)", []Token{text("("), tok(Emphasis, "*x*", "x"), text(")")}},
}

func TestLexer(t *testing.T) {
	for _, tt := range lexTests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.tokens, strip(Tokens(tt.input)))
		})
	}
}

func TestLexer_Idempotent(t *testing.T) {
	in := "some *mixed* ``markup`` with :ref:`roles` and refs_ [1]_"
	assert.Equal(t, Tokens(in), Tokens(in))
}

func TestLexer_ResetRestarts(t *testing.T) {
	l := Lex("*a* b")
	first := l.Next()
	l.Next()
	assert.Equal(t, EOF, l.Next().Type)
	assert.Equal(t, EOF, l.Next().Type, "EOF repeats")

	l.Reset()
	assert.Equal(t, first, l.Next())
}

func TestLexer_Positions(t *testing.T) {
	ts := Tokens("ab *c*")
	if assert.Len(t, ts, 2) {
		assert.Equal(t, 0, ts[0].Pos)
		assert.Equal(t, 3, ts[1].Pos)
	}
}
