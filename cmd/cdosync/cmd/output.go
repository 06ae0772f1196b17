package cmd

import (
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

func okText(s string) string      { return color.Green.Sprint(s) }
func warnText(s string) string    { return color.Yellow.Sprint(s) }
func errorText(s string) string   { return color.Red.Sprint(s) }
func headingText(s string) string { return color.Bold.Sprint(s) }

// statusText renders a pass/fail marker.
func statusText(ok bool) string {
	if ok {
		return okText("OK")
	}
	return errorText("FAIL")
}

// table renders rows as space-aligned columns. Widths are display widths,
// so wide characters in provider field names stay aligned.
func table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}

	writeRow(header)
	rule := make([]string, len(header))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	writeRow(rule)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
