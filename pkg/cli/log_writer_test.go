package cli

import (
	"fmt"
	"slices"
	"testing"
)

func TestLogWriterKeepsRecentLines(t *testing.T) {
	w := NewLogWriter(3)
	for i := range 5 {
		fmt.Fprintf(w, "line %d\n", i)
	}
	want := []string{"line 2", "line 3", "line 4"}
	if got := w.Lines(); !slices.Equal(got, want) {
		t.Errorf("Lines = %q, want %q", got, want)
	}
}

func TestLogWriterSplitsMultiline(t *testing.T) {
	w := NewLogWriter(10)
	n, err := w.Write([]byte("a\nb\n"))
	if err != nil || n != 4 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if got := w.Lines(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Lines = %q", got)
	}
	if got := <-w.Channel(); got != "a" {
		t.Errorf("first notification = %q", got)
	}
}
