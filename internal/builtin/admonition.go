package builtin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
)

var admonitionTitles = map[string]string{
	"note":      "Note",
	"tip":       "Tip",
	"hint":      "Hint",
	"important": "Important",
	"warning":   "Warning",
	"caution":   "Caution",
	"danger":    "Danger",
	"attention": "Attention",
	"error":     "Error",
	"seealso":   "See also",
}

var admonitionOrder = []string{
	"note", "tip", "hint", "important", "warning",
	"caution", "danger", "attention", "error", "seealso",
}

func admonitions() []extension.Directive {
	ds := make([]extension.Directive, 0, len(admonitionOrder))
	for _, name := range admonitionOrder {
		title := admonitionTitles[name]
		spec := extension.DirectiveSpec{
			Name:    name,
			Options: []extension.Option{classOption},
			Body:    extension.BodyNested,
		}
		ds = append(ds, extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
			a := &doctree.Admonition{Name: spec.Name, Title: title}
			a.AddClass(inv.Options.Classes()...)
			// The argument is the first line of the body.
			if inv.Argument != "" {
				a.Append(doctree.NewParagraph(ctx.ParseInline(inv.Argument)...))
			}
			a.Append(inv.Children...)
			return []doctree.Node{a}, nil
		}))
	}
	return ds
}

// admonition is the generic callout whose argument is its title.
func admonition() extension.Directive {
	spec := extension.DirectiveSpec{
		Name:    "admonition",
		Options: []extension.Option{classOption},
		Body:    extension.BodyNested,
	}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		if inv.Argument == "" {
			return nil, errors.New("admonition requires a title")
		}
		a := &doctree.Admonition{Name: "admonition", Title: inv.Argument}
		a.AddClass("admonition-" + strings.ReplaceAll(strings.ToLower(inv.Argument), " ", "-"))
		a.AddClass(inv.Options.Classes()...)
		a.Append(inv.Children...)
		return []doctree.Node{a}, nil
	})
}

func versionChange(name, format string) extension.Directive {
	spec := extension.DirectiveSpec{Name: name, Body: extension.BodyNested}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		version, rest, _ := strings.Cut(inv.Argument, " ")
		if version == "" {
			return nil, fmt.Errorf("%s requires a version", name)
		}
		a := &doctree.Admonition{Name: name, Title: fmt.Sprintf(format, version)}
		if rest = strings.TrimSpace(rest); rest != "" {
			a.Append(doctree.NewParagraph(ctx.ParseInline(rest)...))
		}
		a.Append(inv.Children...)
		return []doctree.Node{a}, nil
	})
}
