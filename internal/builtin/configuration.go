package builtin

import (
	"strings"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
)

var languageLabels = map[string]string{
	"php":             "PHP",
	"php-annotations": "Annotations",
	"php-attributes":  "Attributes",
	"php-standalone":  "Standalone Use",
	"php-symfony":     "Symfony",
	"yaml":            "YAML",
	"xml":             "XML",
	"json":            "JSON",
	"ini":             "INI",
	"html":            "HTML",
	"html+php":        "PHP",
	"html+twig":       "Twig",
	"twig":            "Twig",
	"rst":             "RST",
	"env":             "Bash",
	"bash":            "Bash",
	"terminal":        "Bash",
}

// LanguageLabel returns the tab label for a code block language.
func LanguageLabel(lang string) string {
	if l, ok := languageLabels[strings.ToLower(lang)]; ok {
		return l
	}
	if lang == "" {
		return "Text"
	}
	return strings.ToUpper(lang[:1]) + lang[1:]
}

// configurationBlock turns each nested code block into a tab.
func configurationBlock() extension.Directive {
	spec := extension.DirectiveSpec{
		Name:    "configuration-block",
		Options: []extension.Option{classOption},
		Body:    extension.BodyNested,
	}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		block := &doctree.ConfigurationBlock{}
		block.AddClass(inv.Options.Classes()...)
		for _, c := range inv.Children {
			lb, ok := c.(*doctree.LiteralBlock)
			if !ok {
				ctx.Report(diag.Warning, "configuration-block: only code blocks become tabs, skipping %s", c.Kind())
				continue
			}
			block.Append(doctree.NewConfigurationTab(LanguageLabel(lb.Language), lb.Value, lb))
		}
		return []doctree.Node{block}, nil
	})
}
