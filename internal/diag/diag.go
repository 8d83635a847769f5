// Package diag carries the diagnostics emitted while parsing and resolving
// documents. Diagnostics describe authoring problems; they never abort a
// build on their own.
package diag

import "fmt"

// Severity orders diagnostics from informational to error.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// MarshalText renders the severity name in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Location points at a line in a source file. Line is 1-based; 0 means
// unknown.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Diagnostic is one message in the diagnostics stream.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
}

// List is an ordered diagnostics stream. It is not safe for concurrent use;
// each document owns its own list.
type List []Diagnostic

// Add appends a formatted diagnostic.
func (l *List) Add(sev Severity, loc Location, format string, args ...any) {
	*l = append(*l, Diagnostic{
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

// Count returns the number of diagnostics at the given severity.
func (l List) Count(sev Severity) int {
	n := 0
	for _, d := range l {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether any diagnostic has error severity.
func (l List) HasErrors() bool {
	return l.Count(Error) > 0
}
