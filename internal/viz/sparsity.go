package viz

import (
	"fmt"
	"strings"
)

const (
	cellAssigned = "█"
	cellZero     = "·"
)

// RenderMask draws one row per entry of assigned, labelled with rowNames.
// Column names are printed vertically by their last character.
func RenderMask(title string, assigned [][]bool, rowNames, colNames []string) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(title))
	b.WriteString("\n")

	width := 0
	for _, name := range rowNames {
		width = max(width, len(name))
	}

	b.WriteString(strings.Repeat(" ", width+1))
	for _, name := range colNames {
		b.WriteString(Subtle.Render(name[len(name)-1:]))
	}
	b.WriteString("\n")

	nonzero := 0
	for i, row := range assigned {
		b.WriteString(Subtle.Render(fmt.Sprintf("%-*s ", width, rowNames[i])))
		for _, on := range row {
			if on {
				nonzero++
				b.WriteString(Assigned.Render(cellAssigned))
			} else {
				b.WriteString(Zero.Render(cellZero))
			}
		}
		b.WriteString("\n")
	}

	total := 0
	if len(assigned) > 0 {
		total = len(assigned) * len(assigned[0])
	}
	fmt.Fprintf(&b, "%s %d/%d\n", MetricLabel.Render("nonzero:"), nonzero, total)
	return b.String()
}
