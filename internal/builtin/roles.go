package builtin

import (
	"path"
	"regexp"
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
	"github.com/dgallion1/guides/internal/refs"
)

func crossRefRole(domain, name string, aliases ...string) extension.Role {
	spec := extension.RoleSpec{Domain: domain, Name: name, Aliases: aliases}
	return extension.RoleFunc(spec, func(ctx extension.Context, inv *extension.RoleInvocation) (doctree.Node, error) {
		return doctree.NewCrossReference(name, domain, inv.Content), nil
	})
}

func refRole() extension.Role  { return crossRefRole("", "ref") }
func docRole() extension.Role  { return crossRefRole("", "doc") }
func termRole() extension.Role { return crossRefRole("", "term") }

func phpRoles() []extension.Role {
	return []extension.Role{
		crossRefRole("php", "class"),
		crossRefRole("php", "method"),
		crossRefRole("php", "func"),
		crossRefRole("php", "ns"),
	}
}

func codeRole() extension.Role {
	spec := extension.RoleSpec{Name: "code", Aliases: []string{"literal"}}
	return extension.RoleFunc(spec, func(ctx extension.Context, inv *extension.RoleInvocation) (doctree.Node, error) {
		return doctree.NewSpan(doctree.StyleLiteral, inv.Content), nil
	})
}

var abbrPattern = regexp.MustCompile(`(?s)^(.+?)\s*\((.+)\)$`)

// abbrRole splits "LIFO (last-in, first-out)" into the abbreviation and
// its explanation.
func abbrRole() extension.Role {
	spec := extension.RoleSpec{Name: "abbr"}
	return extension.RoleFunc(spec, func(ctx extension.Context, inv *extension.RoleInvocation) (doctree.Node, error) {
		s := doctree.NewText(inv.Content)
		s.AddClass("abbr")
		if m := abbrPattern.FindStringSubmatch(inv.Content); m != nil {
			s.Value, s.Title = m[1], m[2]
		}
		return s, nil
	})
}

func downloadRole() extension.Role {
	spec := extension.RoleSpec{Name: "download"}
	return extension.RoleFunc(spec, func(ctx extension.Context, inv *extension.RoleInvocation) (doctree.Node, error) {
		e := refs.ExtractEmbeddedReference(inv.Content)
		text := e.Text
		if text == "" {
			text = path.Base(e.Reference)
		}
		l := &doctree.Link{URL: strings.TrimPrefix(e.Reference, "/"), Text: text}
		l.AddClass("download")
		return l, nil
	})
}
