package testkit

import "testing"

var grain = "day"

func TestSwapRestores(t *testing.T) {
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &grain, "hour")
		if grain != "hour" {
			t.Fatalf("grain %q", grain)
		}
	})
	if grain != "day" {
		t.Fatalf("not restored: %q", grain)
	}
}

func TestMustHelpers(t *testing.T) {
	MustPanic(t, func() { panic("boom") })
	MustContain(t, "branch=concat lang=fr", "lang=fr")
}
