package diag

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestList_AddAndCount(t *testing.T) {
	var l List
	l.Add(Warning, Location{File: "a.rst", Line: 3}, "unresolved reference %q", "x")
	l.Add(Error, Location{File: "a.rst", Line: 9}, "unknown directive %q", "foo")
	l.Add(Warning, Location{File: "b.rst"}, "missing file")

	if len(l) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(l))
	}
	if l.Count(Warning) != 2 {
		t.Errorf("expected 2 warnings, got %d", l.Count(Warning))
	}
	if !l.HasErrors() {
		t.Error("expected HasErrors to be true")
	}
	if l[0].Message != `unresolved reference "x"` {
		t.Errorf("unexpected message %q", l[0].Message)
	}
}

func TestPrinter_Plain(t *testing.T) {
	l := List{{Severity: Error, Message: "boom", Location: Location{File: "x.rst", Line: 2}}}
	var buf bytes.Buffer
	if err := (Printer{}).Fprint(&buf, l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "x.rst:2: error: boom\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestDiagnostic_JSONSeverityName(t *testing.T) {
	b, err := json.Marshal(Diagnostic{Severity: Warning, Message: "m", Location: Location{File: "f"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(b), `"severity":"warning"`) {
		t.Errorf("expected severity name in %s", b)
	}
}
