package colors

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestInit_ForceOn(t *testing.T) {
	// Save and restore original state
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	color.NoColor = true // start disabled
	forceOn := true
	Init(&forceOn)

	if color.NoColor {
		t.Error("expected colors enabled when Init(true)")
	}
	if !Enabled() {
		t.Error("Enabled() should return true")
	}
}

func TestInit_ForceOff(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	color.NoColor = false // start enabled
	forceOff := false
	Init(&forceOff)

	if !color.NoColor {
		t.Error("expected colors disabled when Init(false)")
	}
	if Enabled() {
		t.Error("Enabled() should return false")
	}
}

func TestInit_Nil_KeepsExisting(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	// Test with colors enabled
	color.NoColor = false
	Init(nil)
	if color.NoColor {
		t.Error("Init(nil) should not change NoColor when it was false")
	}

	// Test with colors disabled
	color.NoColor = true
	Init(nil)
	if !color.NoColor {
		t.Error("Init(nil) should not change NoColor when it was true")
	}
}

func TestPalette(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	palette := []struct {
		name string
		fn   func(a ...any) string
	}{
		{"Name", Name},
		{"Type", Type},
		{"Dimensions", Dimensions},
		{"Size", Size},
		{"Faint", Faint},
		{"Error", Error},
	}
	for _, tc := range palette {
		t.Run(tc.name, func(t *testing.T) {
			color.NoColor = false
			if got := tc.fn("gif"); !strings.Contains(got, "\x1b[") || !strings.Contains(got, "gif") {
				t.Errorf("%s() = %q, want ANSI codes around %q", tc.name, got, "gif")
			}
			color.NoColor = true
			if got := tc.fn("gif"); got != "gif" {
				t.Errorf("%s() = %q, want plain %q", tc.name, got, "gif")
			}
		})
	}
}
