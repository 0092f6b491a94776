package table

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// NoCursor disables the row marker in Render.
const NoCursor = -1

// Render draws an ASCII table from columns + rows. When cursor is a valid
// row index that row is marked with "> ", and every line gets a two column
// gutter so the borders stay aligned.
func Render(columns []string, rows [][]string, cursor int) string {
	if len(columns) == 0 {
		return "(No columns)\n"
	}

	// Calculate width of each column
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = utf8.RuneCountInString(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				continue
			}
			if l := utf8.RuneCountInString(cell); l > widths[i] {
				widths[i] = l
			}
		}
	}

	gutter := ""
	if cursor >= 0 {
		gutter = "  "
	}

	border := func() string {
		var b strings.Builder
		b.WriteString(gutter)
		b.WriteString("+")
		for _, w := range widths {
			b.WriteString(strings.Repeat("-", w+2))
			b.WriteString("+")
		}
		b.WriteString("\n")
		return b.String()
	}

	line := func(prefix string, cells []string) string {
		var b strings.Builder
		b.WriteString(prefix)
		b.WriteString("|")
		for i := range columns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(" ")
			b.WriteString(pad(cell, widths[i]))
			b.WriteString(" |")
		}
		b.WriteString("\n")
		return b.String()
	}

	var sb strings.Builder
	sb.WriteString(border())
	sb.WriteString(line(gutter, columns))
	sb.WriteString(border())
	for i, row := range rows {
		prefix := gutter
		if cursor >= 0 && i == cursor {
			prefix = "> "
		}
		sb.WriteString(line(prefix, row))
	}
	sb.WriteString(border())

	return sb.String()
}

// pad left-aligns s in a field of width runes. fmt's %-*s counts bytes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// ApplyHorizontalScroll clips text horizontally based on offset and width.
func ApplyHorizontalScroll(s string, offset, width int) string {
	if width <= 0 {
		return s
	}
	if offset < 0 {
		offset = 0
	}

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		runes := []rune(line)

		if offset >= len(runes) {
			out = append(out, "")
			continue
		}

		end := min(offset+width, len(runes))
		out = append(out, string(runes[offset:end]))
	}

	return strings.Join(out, "\n")
}

// Summary is the footer line under a page of rows.
func Summary(offset, shown, total, pageSize int) string {
	if total == 0 {
		return "(No rows)"
	}
	if pageSize <= 0 {
		return fmt.Sprintf("Rows 1-%d of %d", shown, total)
	}
	end := min(offset+shown, total)
	totalPages := (total + pageSize - 1) / pageSize
	currentPage := offset/pageSize + 1
	return fmt.Sprintf("Rows %d-%d of %d (Page %d/%d, page size %d)",
		offset+1, end, total, currentPage, totalPages, pageSize)
}
