package builtin

import (
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
)

func toctree() extension.Directive {
	spec := extension.DirectiveSpec{
		Name: "toctree",
		Options: []extension.Option{
			{Name: "glob", Type: extension.Flag},
			{Name: "hidden", Type: extension.Flag},
			{Name: "titlesonly", Type: extension.Flag},
			{Name: "maxdepth", Type: extension.Int, Example: "2"},
			{Name: "caption", Type: extension.String, Example: "Contents"},
			{Name: "numbered", Type: extension.Flag},
			classOption,
		},
		Body: extension.BodyRaw,
	}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		t := &doctree.Toctree{
			Glob:       inv.Options.Flag("glob"),
			Hidden:     inv.Options.Flag("hidden"),
			TitlesOnly: inv.Options.Flag("titlesonly"),
			MaxDepth:   inv.Options.Int("maxdepth"),
			Caption:    inv.Options.String("caption"),
		}
		t.AddClass(inv.Options.Classes()...)
		for _, line := range inv.Content {
			if line = strings.TrimSpace(line); line != "" {
				t.Entries = append(t.Entries, line)
			}
		}
		return []doctree.Node{t}, nil
	})
}
