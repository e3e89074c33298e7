package utils

import (
	"path/filepath"
	"strings"

	"github.com/apex/log/handlers/cli"
)

var normalPadding = cli.Default.Padding

// Indent indents apex log line to supplied level
func Indent(f func(s string), level int) func(string) {
	return func(s string) {
		cli.Default.Padding = normalPadding * level
		f(s)
		cli.Default.Padding = normalPadding
	}
}

// OutputName returns the path of the PNG written for input inside dir
func OutputName(dir, input string) string {
	base := filepath.Base(input)
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "-" {
		base = "stdin"
	}
	return filepath.Join(dir, base+".png")
}
