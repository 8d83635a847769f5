// Package extension is the registry of directives and roles. Parsers look
// names up here; everything the markup language knows beyond its core block
// and inline grammar is contributed through it.
package extension

import (
	"strings"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
)

// Body is the body style of a directive.
type Body int

const (
	BodyNone   Body = iota // argument and options only
	BodyRaw                // indented block passed through unparsed
	BodyNested             // indented block parsed as child content
)

// Context is the parser state available to directives and roles.
type Context interface {
	Document() *doctree.Document
	Location() diag.Location
	// Report adds a diagnostic at the current location.
	Report(sev diag.Severity, format string, args ...any)
	// ParseInline parses text as inline markup.
	ParseInline(text string) []doctree.Node
	// ParseBlocks parses lines as body elements. Sections are not allowed.
	ParseBlocks(lines []string) []doctree.Node
}

// DirectiveSpec describes the syntax a directive accepts.
type DirectiveSpec struct {
	Name    string
	Aliases []string
	Options []Option
	Body    Body
}

// Invocation is one use of a directive in a document.
type Invocation struct {
	Name     string // name as written, which may be an alias
	Argument string
	Options  Options
	Content  []string       // body lines with the indentation removed
	Children []doctree.Node // parsed body for BodyNested directives
	Line     int
}

// ContentText returns the body as a single string.
func (inv *Invocation) ContentText() string {
	return strings.Join(inv.Content, "\n")
}

// Directive processes `.. name:: argument` blocks.
type Directive interface {
	Spec() DirectiveSpec
	Process(ctx Context, inv *Invocation) ([]doctree.Node, error)
}

// RoleSpec names a role. Domain is empty for roles available everywhere.
type RoleSpec struct {
	Domain  string
	Name    string
	Aliases []string
}

// RoleInvocation is one use of a role in inline text.
type RoleInvocation struct {
	Domain  string
	Name    string
	Content string // text between the backquotes
	Raw     string // full source text of the role
	Line    int
}

// Role processes interpreted text such as :name:`text`.
type Role interface {
	Spec() RoleSpec
	Process(ctx Context, inv *RoleInvocation) (doctree.Node, error)
}

type directiveFunc struct {
	spec DirectiveSpec
	fn   func(Context, *Invocation) ([]doctree.Node, error)
}

func (d directiveFunc) Spec() DirectiveSpec { return d.spec }

func (d directiveFunc) Process(ctx Context, inv *Invocation) ([]doctree.Node, error) {
	return d.fn(ctx, inv)
}

// DirectiveFunc adapts a function to the Directive interface.
func DirectiveFunc(spec DirectiveSpec, fn func(Context, *Invocation) ([]doctree.Node, error)) Directive {
	return directiveFunc{spec: spec, fn: fn}
}

type roleFunc struct {
	spec RoleSpec
	fn   func(Context, *RoleInvocation) (doctree.Node, error)
}

func (r roleFunc) Spec() RoleSpec { return r.spec }

func (r roleFunc) Process(ctx Context, inv *RoleInvocation) (doctree.Node, error) {
	return r.fn(ctx, inv)
}

// RoleFunc adapts a function to the Role interface.
func RoleFunc(spec RoleSpec, fn func(Context, *RoleInvocation) (doctree.Node, error)) Role {
	return roleFunc{spec: spec, fn: fn}
}
