// Package logging renders the end-of-session transition report. This file
// contains the reusable aligned-column table infrastructure.
package logging

import (
	"fmt"
	"strings"
)

// Row is one line of a report table; one value per header.
type Row struct {
	Values []string
}

// Table formats aligned columns: headers, then rows. The first and last
// columns are left-aligned (labels and free text), inner columns are
// right-aligned.
type Table struct {
	Headers []string
	Rows    []Row
}

// String renders the table with aligned columns.
func (t *Table) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, v := range row.Values {
			if i < len(widths) && len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(values []string) {
		for i, w := range widths {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			switch {
			case i == 0:
				sb.WriteString(fmt.Sprintf("%-*s", w, v))
			case i == len(widths)-1:
				sb.WriteString("  " + v)
			default:
				sb.WriteString(fmt.Sprintf("  %*s", w, v))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(t.Headers)
	for _, row := range t.Rows {
		writeRow(row.Values)
	}
	return sb.String()
}
