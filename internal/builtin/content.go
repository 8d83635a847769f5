package builtin

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
)

func raw() extension.Directive {
	spec := extension.DirectiveSpec{Name: "raw", Body: extension.BodyRaw}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		format := strings.ToLower(strings.TrimSpace(inv.Argument))
		if format == "" {
			return nil, errors.New("raw requires an output format")
		}
		return []doctree.Node{&doctree.Raw{Format: format, Value: inv.ContentText()}}, nil
	})
}

// CompileOnly compiles an `only` expression. Unknown identifiers evaluate
// to nil, so tags that are not set read as false.
func CompileOnly(expression string) (*vm.Program, error) {
	return expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool())
}

func only() extension.Directive {
	spec := extension.DirectiveSpec{Name: "only", Body: extension.BodyNested}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		if inv.Argument == "" {
			return nil, errors.New("only requires an expression")
		}
		if _, err := CompileOnly(inv.Argument); err != nil {
			return nil, fmt.Errorf("only expression %q: %w", inv.Argument, err)
		}
		o := &doctree.Only{Expression: inv.Argument}
		o.Append(inv.Children...)
		return []doctree.Node{o}, nil
	})
}

// meta stores document metadata. The body is either a field list or a YAML
// mapping; it produces no nodes.
func meta() extension.Directive {
	spec := extension.DirectiveSpec{Name: "meta", Body: extension.BodyRaw}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		doc := ctx.Document()
		if len(inv.Content) > 0 && strings.HasPrefix(strings.TrimSpace(inv.Content[0]), ":") {
			for _, line := range inv.Content {
				name, value, ok := fieldLine(line)
				if !ok {
					ctx.Report(diag.Warning, "meta: ignoring line %q", strings.TrimSpace(line))
					continue
				}
				doc.Meta[name] = value
			}
			return nil, nil
		}

		var values map[string]any
		if err := yaml.Unmarshal([]byte(inv.ContentText()), &values); err != nil {
			return nil, fmt.Errorf("meta: %w", err)
		}
		for k, v := range values {
			doc.Meta[k] = metaString(v)
		}
		return nil, nil
	})
}

// fieldLine splits ":name: value".
func fieldLine(line string) (name, value string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		return "", "", false
	}
	name, value, ok = strings.Cut(line[1:], ":")
	if !ok || name == "" {
		return "", "", false
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), true
}

func metaString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			parts = append(parts, metaString(e))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

// index entries are collected into the document metadata.
func index() extension.Directive {
	spec := extension.DirectiveSpec{
		Name:    "index",
		Options: []extension.Option{{Name: "name", Type: extension.String}},
		Body:    extension.BodyRaw,
	}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		entries := slices.Clone(inv.Content)
		if inv.Argument != "" {
			entries = append([]string{inv.Argument}, entries...)
		}
		doc := ctx.Document()
		for _, e := range entries {
			if e = strings.TrimSpace(e); e == "" {
				continue
			}
			if prev := doc.Meta["index"]; prev != "" {
				doc.Meta["index"] = prev + "; " + e
			} else {
				doc.Meta["index"] = e
			}
		}
		return nil, nil
	})
}

func class() extension.Directive {
	spec := extension.DirectiveSpec{Name: "class", Body: extension.BodyNested}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		classes := strings.Fields(inv.Argument)
		if len(classes) == 0 {
			return nil, errors.New("class requires at least one class name")
		}
		for _, c := range inv.Children {
			c.AddClass(classes...)
		}
		return inv.Children, nil
	})
}

func rubric() extension.Directive {
	spec := extension.DirectiveSpec{
		Name:    "rubric",
		Options: []extension.Option{classOption},
	}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		p := doctree.NewParagraph(ctx.ParseInline(inv.Argument)...)
		p.AddClass("rubric")
		p.AddClass(inv.Options.Classes()...)
		return []doctree.Node{p}, nil
	})
}
