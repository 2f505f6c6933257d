// Package ui renders CLI output: styled when stdout is a terminal,
// plain when piped.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ProgressBar renders a fixed-width text progress bar.
//
//	[=========>          ]  45%  (45/100)
func ProgressBar(done, total, width int) string {
	if width <= 0 {
		width = 20
	}
	if total <= 0 {
		return fmt.Sprintf("[%s] 100%%  (0/0)", strings.Repeat("=", width))
	}

	pct := done * 100 / total
	filled := done * width / total
	if filled > width {
		filled = width
	}

	var bar strings.Builder
	bar.WriteString(strings.Repeat("=", filled))
	if filled < width {
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", width-filled-1))
	}
	return fmt.Sprintf("[%s] %3d%%  (%d/%d)", bar.String(), pct, done, total)
}
