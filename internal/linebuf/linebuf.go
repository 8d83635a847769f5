// Package linebuf holds the lines of a source document and lets the block
// parser consume them one at a time with a single line of pushback.
package linebuf

import "strings"

// Buffer is an ordered sequence of lines with a read cursor.
type Buffer struct {
	lines []string
	pos   int // index of the next line Next returns
}

// New splits text into lines. Carriage returns are dropped and a trailing
// newline does not produce an extra empty line.
func New(text string) *Buffer {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.TrimSuffix(text, "\n")
	b := &Buffer{}
	if text == "" {
		return b
	}
	for _, line := range strings.Split(text, "\n") {
		b.Push(line)
	}
	return b
}

// FromLines returns a buffer over a copy of lines.
func FromLines(lines []string) *Buffer {
	return &Buffer{lines: append([]string(nil), lines...)}
}

// Push appends a line. Any string is accepted, including the empty string.
func (b *Buffer) Push(line string) {
	b.lines = append(b.lines, line)
}

// Lines returns every line in order, regardless of the cursor.
func (b *Buffer) Lines() []string {
	return b.lines
}

// Len returns the number of lines.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// Done reports whether every line has been consumed.
func (b *Buffer) Done() bool {
	return b.pos >= len(b.lines)
}

// Next consumes and returns the next line.
func (b *Buffer) Next() (string, bool) {
	if b.Done() {
		return "", false
	}
	line := b.lines[b.pos]
	b.pos++
	return line, true
}

// Peek returns the next line without consuming it.
func (b *Buffer) Peek() (string, bool) {
	if b.Done() {
		return "", false
	}
	return b.lines[b.pos], true
}

// Backup pushes the most recently consumed line back. It is a no-op at the
// start of the buffer.
func (b *Buffer) Backup() {
	if b.pos > 0 {
		b.pos--
	}
}

// Line returns the 1-based number of the line most recently returned by Next,
// or 0 before the first call.
func (b *Buffer) Line() int {
	return b.pos
}
