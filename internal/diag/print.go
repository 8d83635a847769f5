package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer writes diagnostics one per line, coloring the severity when
// Color is set.
type Printer struct {
	Color bool
}

func (p Printer) severity(s Severity) string {
	if !p.Color {
		return s.String()
	}
	switch s {
	case Error:
		return color.New(color.FgRed, color.Bold).Sprint(s)
	case Warning:
		return color.YellowString(s.String())
	}
	return color.CyanString(s.String())
}

// Fprint writes every diagnostic in l to w.
func (p Printer) Fprint(w io.Writer, l List) error {
	for _, d := range l {
		loc := d.Location.String()
		if p.Color {
			loc = color.New(color.Faint).Sprint(loc)
		}
		if _, err := fmt.Fprintf(w, "%s: %s: %s\n", loc, p.severity(d.Severity), d.Message); err != nil {
			return err
		}
	}
	return nil
}
