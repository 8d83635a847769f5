package builtin

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
)

func csvTable() extension.Directive {
	spec := extension.DirectiveSpec{
		Name: "csv-table",
		Options: []extension.Option{
			{Name: "header", Type: extension.String, Example: `"Name", "Value"`},
			{Name: "header-rows", Type: extension.Int, Default: "0"},
			{Name: "widths", Type: extension.String},
			{Name: "delim", Type: extension.String},
			classOption,
		},
		Body: extension.BodyRaw,
	}
	return extension.DirectiveFunc(spec, func(ctx extension.Context, inv *extension.Invocation) ([]doctree.Node, error) {
		delim := ','
		if d := inv.Options.String("delim"); d != "" {
			delim = []rune(d)[0]
		}

		body, err := readCSV(inv.ContentText(), delim)
		if err != nil {
			return nil, fmt.Errorf("csv-table: %w", err)
		}
		var header [][]string
		if h := inv.Options.String("header"); h != "" {
			if header, err = readCSV(h, delim); err != nil {
				return nil, fmt.Errorf("csv-table header: %w", err)
			}
		}
		if n := inv.Options.Int("header-rows"); n > 0 {
			n = min(n, len(body))
			header = append(header, body[:n]...)
			body = body[n:]
		}

		t := &doctree.Table{}
		t.AddClass(inv.Options.Classes()...)
		for _, rec := range header {
			t.Header = append(t.Header, csvRow(ctx, rec))
		}
		for _, rec := range body {
			t.Rows = append(t.Rows, csvRow(ctx, rec))
		}
		nodes := []doctree.Node{t}
		if title := strings.TrimSpace(inv.Argument); title != "" {
			p := doctree.NewParagraph(ctx.ParseInline(title)...)
			p.AddClass("table-title")
			nodes = append([]doctree.Node{p}, nodes...)
		}
		return nodes, nil
	})
}

func readCSV(text string, delim rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var out [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func csvRow(ctx extension.Context, rec []string) *doctree.TableRow {
	row := &doctree.TableRow{}
	for _, field := range rec {
		col := doctree.NewTableColumn(field, 1)
		if c := col.Content(); c != "" {
			col.SetChildren(ctx.ParseInline(c))
		}
		row.Columns = append(row.Columns, col)
	}
	return row
}
