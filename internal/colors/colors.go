// Package colors provides the color palette of the CLI output with TTY-aware defaults.
//
// Colors are automatically disabled when stdout is not a terminal (piped or
// redirected to a file). This behavior is provided by the underlying fatih/color
// library and respected by default. Use Init() to override based on CLI flags.
package colors

import "github.com/fatih/color"

// Init allows overriding the auto-detected color setting.
//
// By default, colors are automatically disabled when stdout is not a TTY.
// Use this function to override based on CLI flags:
//   - forceColor == nil: keep auto-detected value
//   - forceColor == true: force colors on (--color)
//   - forceColor == false: force colors off (--no-color, NO_COLOR)
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Enabled returns true if colors are currently enabled.
func Enabled() bool {
	return !color.NoColor
}

// Name colors input file names.
func Name(a ...any) string { return color.New(color.Bold).Sprint(a...) }

// Type colors detected image types and decode results.
func Type(a ...any) string { return color.New(color.FgHiMagenta).Sprint(a...) }

// Dimensions colors pixel dimensions and frame counts.
func Dimensions(a ...any) string { return color.New(color.FgHiBlue).Sprint(a...) }

// Size colors byte sizes.
func Size(a ...any) string { return color.New(color.FgHiCyan).Sprint(a...) }

// Faint colors secondary details such as the compression of an input.
func Faint(a ...any) string { return color.New(color.Faint).Sprint(a...) }

// Error colors per-file failures.
func Error(a ...any) string { return color.New(color.Bold, color.FgHiRed).Sprint(a...) }
