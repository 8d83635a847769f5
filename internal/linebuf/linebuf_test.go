package linebuf

import "testing"

func TestBuffer_PushPreservesOrder(t *testing.T) {
	b := &Buffer{}
	for _, l := range []string{"one", "", "  three"} {
		b.Push(l)
	}
	got := b.Lines()
	want := []string{"one", "", "  three"}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestBuffer_NewStripsCarriageReturns(t *testing.T) {
	b := New("a\r\nb\r\n")
	if b.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d", b.Len())
	}
	if b.Lines()[1] != "b" {
		t.Errorf("expected %q, got %q", "b", b.Lines()[1])
	}
}

func TestBuffer_EmptyInput(t *testing.T) {
	b := New("")
	if !b.Done() {
		t.Error("expected empty buffer to be done")
	}
	if _, ok := b.Next(); ok {
		t.Error("expected Next to fail on empty buffer")
	}
}

func TestBuffer_Cursor(t *testing.T) {
	b := New("first\nsecond\nthird")

	if l, _ := b.Peek(); l != "first" {
		t.Errorf("expected peek %q, got %q", "first", l)
	}
	if l, _ := b.Next(); l != "first" {
		t.Errorf("expected next %q, got %q", "first", l)
	}
	if b.Line() != 1 {
		t.Errorf("expected line 1, got %d", b.Line())
	}
	b.Next()
	b.Backup()
	if l, _ := b.Next(); l != "second" {
		t.Errorf("expected %q after backup, got %q", "second", l)
	}
	b.Next()
	if !b.Done() {
		t.Error("expected buffer to be done")
	}
	if _, ok := b.Peek(); ok {
		t.Error("expected peek to fail at end")
	}
}

func TestBuffer_BackupAtStart(t *testing.T) {
	b := New("x")
	b.Backup()
	if l, ok := b.Next(); !ok || l != "x" {
		t.Errorf("expected %q, got %q (ok=%v)", "x", l, ok)
	}
}
