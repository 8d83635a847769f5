package builtin

import (
	"errors"
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
)

var imageOptions = []extension.Option{
	{Name: "alt", Type: extension.String},
	{Name: "width", Type: extension.String, Example: "200px"},
	{Name: "height", Type: extension.String},
	{Name: "scale", Type: extension.String},
	{Name: "align", Type: extension.Choice, Choices: []string{"left", "center", "right", "top", "middle", "bottom"}},
	{Name: "target", Type: extension.String},
	classOption,
}

func newImage(inv *extension.Invocation) (*doctree.Image, error) {
	uri := strings.TrimSpace(inv.Argument)
	if uri == "" {
		return nil, errors.New(inv.Name + " requires an image URI")
	}
	img := &doctree.Image{
		URI:    uri,
		Alt:    inv.Options.String("alt"),
		Width:  inv.Options.String("width"),
		Height: inv.Options.String("height"),
		Align:  inv.Options.String("align"),
		Target: inv.Options.String("target"),
	}
	img.AddClass(inv.Options.Classes()...)
	return img, nil
}

func image() extension.Directive {
	spec := extension.DirectiveSpec{Name: "image", Options: imageOptions}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		img, err := newImage(inv)
		if err != nil {
			return nil, err
		}
		return []doctree.Node{img}, nil
	})
}

// figure is an image whose first body paragraph is the caption. Any
// further body content follows the image as a legend.
func figure() extension.Directive {
	spec := extension.DirectiveSpec{
		Name:    "figure",
		Options: append(append([]extension.Option(nil), imageOptions...), extension.Option{Name: "figclass", Type: extension.String}),
		Body:    extension.BodyNested,
	}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		img, err := newImage(inv)
		if err != nil {
			return nil, err
		}
		img.AddClass("figure")
		img.AddClass(strings.Fields(inv.Options.String("figclass"))...)
		legend := inv.Children
		if len(legend) > 0 {
			if p, ok := legend[0].(*doctree.Paragraph); ok {
				img.Caption = strings.TrimSpace(doctree.PlainText(p))
				legend = legend[1:]
			}
		}
		return append([]doctree.Node{img}, legend...), nil
	})
}
