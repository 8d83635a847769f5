package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/guides/internal/doctree"
)

// CSVParser handles CSV files. The first record is the table header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := newDocument(filename)
	if len(records) == 0 {
		return doc, nil
	}

	row := func(rec []string) *doctree.TableRow {
		tr := &doctree.TableRow{}
		for _, cell := range rec {
			col := doctree.NewTableColumn(cell, 1)
			if c := col.Content(); c != "" {
				col.SetChildren([]doctree.Node{doctree.NewParagraph(doctree.NewText(c))})
			}
			tr.Columns = append(tr.Columns, col)
		}
		return tr
	}

	t := &doctree.Table{Header: []*doctree.TableRow{row(records[0])}}
	for _, rec := range records[1:] {
		t.Rows = append(t.Rows, row(rec))
	}
	out := newOutline(doc)
	out.open([]doctree.Node{doctree.NewText(doc.File)}, 1, 0)
	out.add(t)
	return doc, nil
}
