// Package testkit holds small assertions shared by tests
package testkit

import (
	"strings"
	"testing"
)

// MustPanic fails t unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustContain fails t unless out contains want, printing out in full
func MustContain(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("missing %q in:\n%s", want, out)
	}
}

// Swap replaces *target for the duration of t
func Swap[T any](t *testing.T, target *T, v T) {
	t.Helper()
	orig := *target
	*target = v
	t.Cleanup(func() { *target = orig })
}
