// Package builtin provides the standard directives and roles.
package builtin

import (
	"fmt"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
	"github.com/dgallion1/guides/internal/refs"
)

// Directives returns every built-in directive.
func Directives() []extension.Directive {
	var ds []extension.Directive
	ds = append(ds, admonitions()...)
	ds = append(ds,
		admonition(),
		versionChange("versionadded", "New in version %s"),
		versionChange("versionchanged", "Changed in version %s"),
		versionChange("deprecated", "Deprecated since version %s"),
		codeBlock(),
		toctree(),
		raw(),
		only(),
		meta(),
		index(),
		class(),
		rubric(),
		image(),
		figure(),
		csvTable(),
		configurationBlock(),
	)
	return ds
}

// Roles returns every built-in role.
func Roles() []extension.Role {
	rs := []extension.Role{
		refRole(),
		docRole(),
		termRole(),
		codeRole(),
		abbrRole(),
		downloadRole(),
	}
	return append(rs, phpRoles()...)
}

// Register adds the built-ins to r.
func Register(r *extension.Registry) error {
	for _, d := range Directives() {
		if err := r.RegisterDirective(d); err != nil {
			return fmt.Errorf("register builtin directives: %w", err)
		}
	}
	for _, role := range Roles() {
		if err := r.RegisterRole(role); err != nil {
			return fmt.Errorf("register builtin roles: %w", err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding only the built-ins.
func NewRegistry() *extension.Registry {
	r := extension.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}

var classOption = extension.Option{Name: "class", Type: extension.String, Example: "wide"}

// withName prefixes n with an anchor when the "name" option declares a
// hyperlink target for it.
func withName(ctx extension.Context, inv *extension.Invocation, n doctree.Node) []doctree.Node {
	name := inv.Options.String("name")
	if name == "" {
		return []doctree.Node{n}
	}
	key := refs.NormalizeName(name)
	id := refs.Anchor(name)
	ctx.Document().AddTarget(doctree.Target{Name: key, Anchor: id, Line: inv.Line})
	return []doctree.Node{&doctree.Anchor{Name: key, ID: id}, n}
}
