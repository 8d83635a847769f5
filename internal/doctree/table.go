package doctree

import "strings"

// Table is a grid of columns split into header and body rows.
type Table struct {
	base
	Header []*TableRow
	Rows   []*TableRow
}

// TableRow is one source row. Cells spanning rows from above do not appear
// in later rows.
type TableRow struct {
	Columns []*TableColumn
}

func (*Table) Kind() Kind { return KindTable }

// Children lists every column, header rows first.
func (t *Table) Children() []Node {
	var out []Node
	for _, rows := range [][]*TableRow{t.Header, t.Rows} {
		for _, r := range rows {
			for _, c := range r.Columns {
				out = append(out, c)
			}
		}
	}
	return out
}

// TableColumn is a single cell.
type TableColumn struct {
	container
	content string
	Colspan int
	Rowspan int
}

// NewTableColumn returns a cell with trimmed content spanning colspan
// columns and one row.
func NewTableColumn(content string, colspan int) *TableColumn {
	if colspan < 1 {
		colspan = 1
	}
	return &TableColumn{
		content: strings.TrimSpace(content),
		Colspan: colspan,
		Rowspan: 1,
	}
}

func (*TableColumn) Kind() Kind { return KindTableColumn }

// Content returns the cell text. A lone backslash marks an intentionally
// blank cell and reads as empty.
func (c *TableColumn) Content() string {
	if c.content == `\` {
		return ""
	}
	return c.content
}

// RawContent returns the trimmed source text.
func (c *TableColumn) RawContent() string {
	return c.content
}

// AddContent appends a line of source text to the cell.
func (c *TableColumn) AddContent(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if c.content == "" {
		c.content = s
		return
	}
	c.content += "\n" + s
}

// IsCompletelyEmpty reports whether the cell has no source text at all.
func (c *TableColumn) IsCompletelyEmpty() bool {
	return c.content == ""
}

// IncrementRowspan extends the cell one more row down.
func (c *TableColumn) IncrementRowspan() {
	c.Rowspan++
}

// SetChildren replaces the parsed content of the cell.
func (c *TableColumn) SetChildren(nodes []Node) {
	c.children = nil
	c.Append(nodes...)
}
