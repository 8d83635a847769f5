package parser

import (
	"regexp"
	"slices"
	"strings"

	"github.com/dgallion1/guides/internal/doctree"
)

var (
	gridBorder   = regexp.MustCompile(`^\+(?:[-=]+\+)+$`)
	simpleBorder = regexp.MustCompile(`^=+(?: +=+)+$|^={2,}$`)
)

// inTable collects the lines of a grid or simple table.
func inTable(p *blockParser) stateFn {
	if gridBorder.MatchString(p.line) {
		p.gridTable()
	} else {
		p.simpleTable()
	}
	return betweenBlocks
}

// gridTable reads lines up to the next blank line and splits them into
// cells. Cells may span several columns and rows.
func (p *blockParser) gridTable() {
	lines := []string{p.line}
	for {
		line, ok := p.next()
		if !ok || line == "" {
			break
		}
		lines = append(lines, line)
	}
	source := strings.Join(lines, "\n")
	if !gridBorder.MatchString(lines[len(lines)-1]) {
		p.reportError(p.lineNo, source, "malformed table: missing bottom border")
		return
	}

	g := newGrid(lines)
	cells := g.cells()
	if cells == nil {
		p.reportError(p.lineNo, source, "malformed table: cells do not form a grid")
		return
	}

	cols, rows := []int{}, []int{}
	for _, c := range cells {
		cols = append(cols, c.left, c.right)
		rows = append(rows, c.top, c.bottom)
	}
	slices.Sort(cols)
	slices.Sort(rows)
	cols = slices.Compact(cols)
	rows = slices.Compact(rows)

	header := -1
	for i, l := range lines {
		if i > 0 && i < len(lines)-1 && strings.Contains(l, "=") && gridBorder.MatchString(l) {
			header = i
			break
		}
	}

	t := &doctree.Table{}
	var current *doctree.TableRow
	currentTop := -1
	for _, c := range cells {
		content := c.content(g)
		col := doctree.NewTableColumn(strings.Join(content, "\n"), span(cols, c.left, c.right))
		for i := 1; i < span(rows, c.top, c.bottom); i++ {
			col.IncrementRowspan()
		}
		if !col.IsCompletelyEmpty() && col.Content() != "" {
			col.SetChildren(p.child(content, p.lineNo+c.top+1))
		}
		if c.top != currentTop {
			current = &doctree.TableRow{}
			currentTop = c.top
			if header > 0 && c.top < header {
				t.Header = append(t.Header, current)
			} else {
				t.Rows = append(t.Rows, current)
			}
		}
		current.Columns = append(current.Columns, col)
	}
	p.emit(p.lineNo, t)
}

// span counts the boundaries strictly between from and to, plus one.
func span(bounds []int, from, to int) int {
	n := 0
	for _, b := range bounds {
		if b > from && b <= to {
			n++
		}
	}
	return max(n, 1)
}

type grid struct {
	rows   [][]rune
	height int
	width  int
}

func newGrid(lines []string) *grid {
	g := &grid{height: len(lines)}
	for _, l := range lines {
		r := []rune(l)
		g.rows = append(g.rows, r)
		g.width = max(g.width, len(r))
	}
	for i, r := range g.rows {
		for len(r) < g.width {
			r = append(r, ' ')
		}
		g.rows[i] = r
	}
	return g
}

func (g *grid) at(row, col int) rune {
	if row < 0 || row >= g.height || col < 0 || col >= g.width {
		return 0
	}
	return g.rows[row][col]
}

type gridCell struct {
	top, left, bottom, right int
}

// content returns the cell text with the common indentation removed.
func (c gridCell) content(g *grid) []string {
	var lines []string
	for r := c.top + 1; r < c.bottom; r++ {
		lines = append(lines, strings.TrimRight(string(g.rows[r][c.left+1:c.right]), " "))
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return dedent(trimBlank(lines))
}

// cells finds every cell by scanning from each known top-left corner,
// starting at the table origin. Cells come back ordered by top row, then
// left column. It returns nil if the cells do not cover the grid.
func (g *grid) cells() []gridCell {
	type corner struct{ top, left int }
	// done holds, per column, the last row already covered by a cell.
	done := make([]int, g.width)
	for i := range done {
		done[i] = -1
	}
	queue := []corner{{0, 0}}
	var out []gridCell
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c.top >= g.height-1 || c.left >= g.width-1 || c.top <= done[c.left] {
			continue
		}
		cell, ok := g.scanCell(c.top, c.left)
		if !ok {
			continue
		}
		for col := cell.left; col < cell.right; col++ {
			done[col] = cell.bottom - 1
		}
		out = append(out, cell)
		queue = append(queue, corner{cell.top, cell.right}, corner{cell.bottom, cell.left})
		slices.SortFunc(queue, func(a, b corner) int {
			if a.top != b.top {
				return a.top - b.top
			}
			return a.left - b.left
		})
	}
	for _, d := range done[:g.width-1] {
		if d != g.height-2 {
			return nil
		}
	}
	slices.SortFunc(out, func(a, b gridCell) int {
		if a.top != b.top {
			return a.top - b.top
		}
		return a.left - b.left
	})
	return out
}

// scanCell finds the smallest rectangle with its top-left corner at
// (top, left) whose edges are all drawn.
func (g *grid) scanCell(top, left int) (gridCell, bool) {
	for right := left + 1; right < g.width; right++ {
		ch := g.at(top, right)
		if ch != '-' && ch != '=' && ch != '+' {
			break
		}
		if ch != '+' {
			continue
		}
		for bottom := top + 1; bottom < g.height; bottom++ {
			ch := g.at(bottom, right)
			if ch != '|' && ch != '+' {
				break
			}
			if ch == '+' && g.closed(top, left, bottom, right) {
				return gridCell{top, left, bottom, right}, true
			}
		}
	}
	return gridCell{}, false
}

// closed reports whether the bottom and left edges of the rectangle are
// drawn.
func (g *grid) closed(top, left, bottom, right int) bool {
	if g.at(bottom, left) != '+' {
		return false
	}
	for c := left + 1; c < right; c++ {
		if ch := g.at(bottom, c); ch != '-' && ch != '=' && ch != '+' {
			return false
		}
	}
	for r := top + 1; r < bottom; r++ {
		if ch := g.at(r, left); ch != '|' && ch != '+' {
			return false
		}
	}
	return true
}

// simpleTable reads a table delimited by "=" borders. Column boundaries come
// from the first border; a second border inside the table ends the header.
func (p *blockParser) simpleTable() {
	border := p.line
	lines := []string{border}
	borders := 1
	for {
		line, ok := p.next()
		if !ok {
			break
		}
		if simpleBorder.MatchString(line) {
			lines = append(lines, line)
			borders++
			next, ok := p.peek()
			if !ok || next == "" {
				break
			}
			continue
		}
		lines = append(lines, line)
	}
	if borders < 2 {
		p.reportError(p.lineNo, strings.Join(lines, "\n"), "malformed table: missing bottom border")
		return
	}

	ranges := dashRanges(border, '=')
	// The last column takes the rest of the line.
	ranges[len(ranges)-1][1] = -1

	type srow struct {
		lines []string
		line  int
		spans [][2]int
	}
	var header, body []srow
	inHeader := borders > 2
	for i, l := range lines[1 : len(lines)-1] {
		lineNo := p.lineNo + i + 1
		target := &body
		if inHeader {
			target = &header
		}
		switch {
		case simpleBorder.MatchString(l):
			inHeader = false
			continue
		case strings.TrimSpace(l) == "":
			continue
		case strings.Trim(l, "- ") == "":
			// A dash underline groups the columns of the row above.
			if len(*target) > 0 {
				(*target)[len(*target)-1].spans = dashRanges(l, '-')
			}
			continue
		}
		// A blank first column continues the previous row.
		if columnText(l, ranges[0]) == "" && len(*target) > 0 {
			prev := &(*target)[len(*target)-1]
			prev.lines = append(prev.lines, l)
			continue
		}
		*target = append(*target, srow{lines: []string{l}, line: lineNo})
	}

	for _, rows := range [][]srow{header, body} {
		for _, r := range rows {
			groups := columnGroups(ranges, r.spans)
			for i, l := range r.lines {
				for g := 0; g+1 < len(groups); g++ {
					gap := [2]int{ranges[groups[g][1]][1], ranges[groups[g+1][0]][0]}
					if columnText(l, gap) != "" {
						p.reportError(r.line+i, strings.Join(lines, "\n"), "malformed table: text in column margin")
						return
					}
				}
			}
		}
	}

	t := &doctree.Table{}
	build := func(rows []srow) []*doctree.TableRow {
		var out []*doctree.TableRow
		for _, r := range rows {
			tr := &doctree.TableRow{}
			for _, g := range columnGroups(ranges, r.spans) {
				span := [2]int{ranges[g[0]][0], ranges[g[1]][1]}
				var cell []string
				for _, l := range r.lines {
					cell = append(cell, columnText(l, span))
				}
				lines := dedent(trimBlank(cell))
				col := doctree.NewTableColumn(strings.Join(lines, "\n"), g[1]-g[0]+1)
				if col.Content() != "" {
					col.SetChildren(p.child(lines, r.line))
				}
				tr.Columns = append(tr.Columns, col)
			}
			out = append(out, tr)
		}
		return out
	}
	t.Header = build(header)
	t.Rows = build(body)
	p.emit(p.lineNo, t)
}

// dashRanges returns the rune ranges of the runs of ch in line.
func dashRanges(line string, ch rune) [][2]int {
	var out [][2]int
	in := false
	i := 0
	for _, r := range line {
		switch {
		case r == ch && !in:
			out = append(out, [2]int{i, -1})
			in = true
		case r != ch && in:
			out[len(out)-1][1] = i
			in = false
		}
		i++
	}
	if in {
		out[len(out)-1][1] = i
	}
	return out
}

// columnGroups returns the first and last column index of each cell in a
// row. Without spans every column is its own cell; otherwise columns whose
// start falls inside the same dash run are merged.
func columnGroups(ranges [][2]int, spans [][2]int) [][2]int {
	var out [][2]int
	for c := 0; c < len(ranges); {
		last := c
		for _, s := range spans {
			if ranges[c][0] >= s[0] && ranges[c][0] < s[1] {
				for last+1 < len(ranges) && ranges[last+1][0] < s[1] {
					last++
				}
				break
			}
		}
		out = append(out, [2]int{c, last})
		c = last + 1
	}
	return out
}

// columnText returns the part of line inside the rune range r, without
// trailing blanks. An end of -1 means the rest of the line.
func columnText(line string, r [2]int) string {
	runes := []rune(line)
	if r[0] >= len(runes) {
		return ""
	}
	end := r[1]
	if end < 0 || end > len(runes) {
		end = len(runes)
	}
	return strings.TrimRight(string(runes[r[0]:end]), " ")
}
