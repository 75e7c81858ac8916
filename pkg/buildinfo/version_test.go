package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)
	Version, Commit, Date = "v1.0.0", "abc123", "2024-01-01"

	want := "version: v1.0.0\ncommit: abc123\nbuilt: 2024-01-01"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := Template(); !strings.HasPrefix(got, "{{.Name}} v1.0.0\n") {
		t.Errorf("Template() = %q", got)
	}
}
