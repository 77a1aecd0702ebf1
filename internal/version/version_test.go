package version

import (
	"strings"
	"testing"
)

func TestStringReportsVersion(t *testing.T) {
	s := String()
	if s == "" {
		t.Fatalf("empty version string")
	}
	if s != Version {
		t.Fatalf("String() = %q, want %q", s, Version)
	}
	if !strings.Contains(s, ".") {
		t.Fatalf("version %q does not look like a semantic version", s)
	}
}
