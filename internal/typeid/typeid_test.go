package typeid

import (
	"strings"
	"testing"
)

func TestNewAndValidate(t *testing.T) {
	tests := []struct {
		gen    func() string
		prefix string
	}{
		{NewPlotID, PrefixPlot},
		{NewGraphID, PrefixGraph},
		{NewUserID, PrefixUser},
		{NewOpID, PrefixOp},
	}
	for _, tt := range tests {
		id := tt.gen()
		if !strings.HasPrefix(id, tt.prefix+"_") {
			t.Errorf("%q lacks prefix %q", id, tt.prefix)
		}
		if err := Validate(id, tt.prefix); err != nil {
			t.Errorf("Validate(%q): %v", id, err)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	if err := Validate(NewGraphID(), PrefixPlot); err == nil {
		t.Error("wrong prefix accepted")
	}
	for _, id := range []string{"", "plot_", "../etc/passwd", "plot_not-a-suffix"} {
		if err := Validate(id, PrefixPlot); err == nil {
			t.Errorf("Validate(%q) accepted", id)
		}
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewPlotID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
