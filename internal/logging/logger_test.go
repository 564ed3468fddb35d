package logging

import "testing"

func TestNewLevels(t *testing.T) {
	for _, lvl := range []string{"", "debug", "info", "warn", "error"} {
		if _, err := New(false, lvl); err != nil {
			t.Fatalf("New(%q): %v", lvl, err)
		}
	}
	if _, err := New(true, "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
