package search

import (
	"strings"
	"testing"
)

func TestSnippet(t *testing.T) {
	if Snippet("short", 10) != "short" {
		t.Error("short string should be unchanged")
	}
	if got := Snippet("long text here", 4); got != "long..." {
		t.Errorf("got %s", got)
	}
	if got := Snippet("a\n\n  b\tc", 0); got != "a b c" {
		t.Errorf("whitespace should collapse, got %q", got)
	}
	long := strings.Repeat("é", 150)
	if got := Snippet(long, 100); got != strings.Repeat("é", 100)+"..." {
		t.Errorf("truncation should count characters, got %d bytes", len(got))
	}
}
