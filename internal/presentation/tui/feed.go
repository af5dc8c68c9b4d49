package tui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// TerminalWidth returns the width of f, or DefaultWidth when f is not a
// terminal.
func TerminalWidth(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return DefaultWidth
}

// RenderFeed writes the feed as a three column table (kind, label, value),
// sorted by kind then label. Values are coloured by type and long values
// are cut to fit width.
func RenderFeed(w io.Writer, feed domain.Feed, width int) {
	out := termenv.NewOutput(w)
	if width <= 0 {
		width = DefaultWidth
	}

	type row struct {
		kind  domain.Kind
		label string
		value domain.Value
	}
	var rows []row
	kindWidth, labelWidth := len("KIND"), len("LABEL")
	for kind, values := range feed {
		for label, v := range values {
			rows = append(rows, row{kind, label, v})
			kindWidth = max(kindWidth, len(kind))
			labelWidth = max(labelWidth, len(label))
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].kind != rows[j].kind {
			return rows[i].kind < rows[j].kind
		}
		return rows[i].label < rows[j].label
	})

	if len(rows) == 0 {
		fmt.Fprintln(w, out.String("(empty feed)").Faint())
		return
	}

	valueWidth := max(width-kindWidth-labelWidth-4, 8)
	header := fmt.Sprintf("%-*s  %-*s  %s", kindWidth, "KIND", labelWidth, "LABEL", "VALUE")
	fmt.Fprintln(w, out.String(header).Bold())
	longest := len("VALUE")
	for _, r := range rows {
		longest = max(longest, min(len(r.value.String()), valueWidth))
	}
	fmt.Fprintln(w, strings.Repeat("-", min(width, kindWidth+labelWidth+4+longest)))

	for _, r := range rows {
		text := truncate(r.value.String(), valueWidth)
		fmt.Fprintf(w, "%-*s  %-*s  %s\n",
			kindWidth, r.kind,
			labelWidth, r.label,
			out.String(text).Foreground(out.Color(valueColor(r.value))))
	}
}

func valueColor(v domain.Value) string {
	switch v.Type() {
	case domain.TypeInt, domain.TypeFloat:
		return "#38bdf8"
	case domain.TypeString:
		return "#4ade80"
	default:
		return "#9ca3af"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
