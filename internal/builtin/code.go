package builtin

import (
	"strings"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
)

func codeBlock() extension.Directive {
	spec := extension.DirectiveSpec{
		Name:    "code-block",
		Aliases: []string{"code", "sourcecode"},
		Options: []extension.Option{
			{Name: "linenos", Type: extension.Flag},
			{Name: "caption", Type: extension.String, Example: "config/app.php"},
			{Name: "emphasize-lines", Type: extension.String, Example: "1,3-4"},
			{Name: "name", Type: extension.String},
			classOption,
		},
		Body: extension.BodyRaw,
	}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		lang := strings.TrimSpace(inv.Argument)
		if lang == "" {
			lang = "text"
		}
		lb := &doctree.LiteralBlock{
			Value:       inv.ContentText(),
			Language:    lang,
			Caption:     inv.Options.String("caption"),
			LineNumbers: inv.Options.Flag("linenos"),
		}
		lb.AddClass(inv.Options.Classes()...)
		if lb.Value == "" {
			ctx.Report(diag.Warning, "%s directive has no content", inv.Name)
		}
		return withName(ctx, inv, lb), nil
	})
}
