// Package refs parses the small reference grammars used by roles and
// hyperlink references: embedded targets (`text <target>`), interlink
// prefixes (`domain:target`) and footnote keys.
package refs

import (
	"regexp"
	"strings"
)

var (
	embeddedPattern  = regexp.MustCompile(`(?s)^(.*?)(?:(?:\s|^)<([^<]+)>)?$`)
	interlinkPattern = regexp.MustCompile(`(?s)^([a-zA-Z0-9\-_]+):(.*)$`)
)

// Embedded is the result of splitting `text <target>`.
type Embedded struct {
	Reference string
	Text      string // empty when no display text was given
}

// Interlink is a reference split into its namespace prefix and target.
type Interlink struct {
	Interlink string // empty when the reference has no prefix
	Reference string
}

// Descriptor describes a cross-reference as written in the source.
// An empty Text means the link text defaults to the target's title.
type Descriptor struct {
	Reference string
	Interlink string
	Text      string
}

// ExtractEmbeddedReference splits text into display text and an embedded
// `<target>`. Without a target the whole text is the reference and the
// display text is empty.
func ExtractEmbeddedReference(text string) Embedded {
	m := embeddedPattern.FindStringSubmatch(text)
	if m == nil || m[2] == "" {
		return Embedded{Reference: text}
	}
	return Embedded{
		Reference: strings.TrimSpace(m[2]),
		Text:      strings.TrimSpace(m[1]),
	}
}

// ExtractInterlink splits a `prefix:target` reference. Input without a
// prefix comes back unchanged with an empty Interlink.
func ExtractInterlink(reference string) Interlink {
	m := interlinkPattern.FindStringSubmatch(reference)
	if m == nil {
		return Interlink{Reference: reference}
	}
	return Interlink{Interlink: m[1], Reference: m[2]}
}

// Parse applies embedded-reference extraction, then interlink extraction on
// the extracted target.
func Parse(text string) Descriptor {
	e := ExtractEmbeddedReference(text)
	il := ExtractInterlink(e.Reference)
	return Descriptor{
		Reference: il.Reference,
		Interlink: il.Interlink,
		Text:      e.Text,
	}
}

// NormalizeName folds a reference name the way reStructuredText compares
// them: case-insensitive, with runs of whitespace collapsed.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
