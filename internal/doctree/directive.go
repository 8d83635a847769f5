package doctree

import (
	"fmt"

	"github.com/dgallion1/guides/internal/refs"
	"github.com/spaolacci/murmur3"
)

// Admonition is a note, warning or similar callout.
type Admonition struct {
	container
	Name  string
	Title string
}

func (*Admonition) Kind() Kind { return KindAdmonition }

// Toctree is a placeholder listing other documents. The compiler fills
// Files; until then only Entries, as written, are known.
type Toctree struct {
	base
	Entries    []string
	Glob       bool
	Hidden     bool
	TitlesOnly bool
	MaxDepth   int
	Caption    string

	Files []TocFile
}

// TocFile is a resolved toctree entry.
type TocFile struct {
	File  string // document file id; empty for external links
	Title string // explicit title, empty to use the document title
	URL   string
}

func (*Toctree) Kind() Kind { return KindToctree }

// Raw is output passed through unchanged for one format.
type Raw struct {
	base
	Format string
	Value  string
}

func (*Raw) Kind() Kind { return KindRaw }

// Only wraps content that is rendered when its expression holds for the
// active output format and tags.
type Only struct {
	container
	Expression string
}

func (*Only) Kind() Kind { return KindOnly }

// ConfigurationBlock groups interchangeable code samples shown as tabs.
type ConfigurationBlock struct{ container }

func (*ConfigurationBlock) Kind() Kind { return KindConfigurationBlock }

// ConfigurationTab is one labelled alternative in a ConfigurationBlock.
type ConfigurationTab struct {
	container
	Label string
	Slug  string
	Hash  string
}

// NewConfigurationTab derives the slug from label and the hash from
// content.
func NewConfigurationTab(label, content string, children ...Node) *ConfigurationTab {
	t := &ConfigurationTab{
		Label: label,
		Slug:  refs.Anchor(label),
		Hash:  ContentHash(content),
	}
	t.Append(children...)
	return t
}

func (*ConfigurationTab) Kind() Kind { return KindConfigurationTab }

// ContentHash returns the hex murmur3 128-bit hash of content.
func ContentHash(content string) string {
	h1, h2 := murmur3.Sum128([]byte(content))
	return fmt.Sprintf("%016x%016x", h1, h2)
}

// Image is an image or figure.
type Image struct {
	base
	URI     string
	Alt     string
	Width   string
	Height  string
	Align   string
	Target  string
	Caption string
}

func (*Image) Kind() Kind { return KindImage }
