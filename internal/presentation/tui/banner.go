package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Tendril banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	// Green gradient, top to bottom
	lines := []struct{ text, color string }{
		{"  _                 _      _ _ ", "#bbf7d0"},
		{" | |_ ___ _ __   __| |_ __(_) |", "#86efac"},
		{" | __/ _ \\ '_ \\ / _` | '__| | |", "#4ade80"},
		{" | ||  __/ | | | (_| | |  | | |", "#22c55e"},
		{"  \\__\\___|_| |_|\\__,_|_|  |_|_|", "#16a34a"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
