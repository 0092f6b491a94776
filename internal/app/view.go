package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hrutik5321/homelib/internal/db"
	"github.com/hrutik5321/homelib/internal/ui/table"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	loadingMarker = "\n[Working...]\n"
)

func (m Model) View() string {
	switch m.mode {
	case modeConnect:
		return m.viewConnect()
	case modeTables:
		return m.viewTables()
	case modeRows, modeConfirmDelete:
		return m.viewRows()
	case modeEdit:
		return m.viewEdit()
	case modeReports, modeReportParam:
		return m.viewReports()
	case modeReportResult:
		return m.viewReportResult()
	default:
		return "Unknown state"
	}
}

func (m Model) statusLine() string {
	s := "\n"
	if m.loading {
		s += loadingMarker
	}
	if m.statusErr {
		return s + errorStyle.Render(m.status) + "\n"
	}
	return s + statusStyle.Render(m.status) + "\n"
}

func (m Model) viewConnect() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Enter Postgres Credentials:") + "\n\n")
	for _, in := range m.connInputs {
		b.WriteString(in.View() + "\n")
	}
	b.WriteString(m.statusLine())
	b.WriteString(helpStyle.Render("\n(esc/ctrl+c to quit)") + "\n")
	return b.String()
}

func (m Model) viewTables() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Library tables:") + "\n\n")

	if len(m.tableNames) == 0 && !m.loading {
		b.WriteString("  (no tables)\n")
	}
	for i, t := range m.tableNames {
		if i == m.tableCursor {
			b.WriteString(cursorStyle.Render("> "+t) + "\n")
			continue
		}
		b.WriteString("  " + t + "\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString(helpStyle.Render("\n↑/↓ and Enter open a table, r reports, q quit.") + "\n")
	return b.String()
}

func (m Model) viewRows() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Rows from table: "+m.selectedTable) + "\n\n")

	if len(m.columns) == 0 {
		b.WriteString("(No rows or columns found)\n")
	} else {
		cursor := table.NoCursor
		if len(m.rows) > 0 {
			cursor = m.rowCursor
		}
		b.WriteString(table.Render(m.columns, cells(m.rows), cursor))
	}

	b.WriteString("\n" + table.Summary(m.offset, len(m.rows), m.totalRows, m.pageSize) + "\n")

	if m.mode == modeConfirmDelete && len(m.rows) > 0 {
		b.WriteString("\n" + boxStyle.Render("DELETE "+strings.Join(m.rows[m.rowCursor].Strings(), ", ")) + "\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString(helpStyle.Render("\nPress 'b' to go back to tables, 'q' or ctrl+c to quit.") + "\n")

	// apply horizontal scroll based on terminal width and offset
	return table.ApplyHorizontalScroll(b.String(), m.horizOffset, m.width)
}

func (m Model) viewEdit() string {
	var b strings.Builder
	verb := "Insert into"
	if m.editOp == "update" {
		verb = "Update in"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s:", verb, m.selectedTable)) + "\n\n")

	var fields strings.Builder
	for i, in := range m.editInputs {
		fields.WriteString(in.View())
		if i < len(m.editInputs)-1 {
			fields.WriteString("\n")
		}
	}
	b.WriteString(boxStyle.Render(fields.String()) + "\n")

	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) viewReports() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Reports:") + "\n\n")

	for i, rep := range m.reportList {
		line := fmt.Sprintf("%d. %s", i+1, rep.Label)
		if rep.NeedsParam() {
			line += " (" + rep.Param + ")"
		}
		if i == m.reportCursor {
			b.WriteString(cursorStyle.Render("> "+line) + "\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}

	if m.mode == modeReportParam {
		b.WriteString("\n" + boxStyle.Render(m.reportInput.View()) + "\n")
	}

	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) viewReportResult() string {
	var b strings.Builder
	if m.reportCursor < len(m.reportList) {
		b.WriteString(titleStyle.Render(m.reportList[m.reportCursor].Label) + "\n\n")
	}
	if m.reportSet.Empty() {
		b.WriteString("(No rows)\n")
	} else {
		b.WriteString(table.Render(m.reportSet.Columns, cells(m.reportSet.Rows), table.NoCursor))
	}

	b.WriteString(m.statusLine())
	b.WriteString(helpStyle.Render("\nPress 'b' to go back to reports, ←/→ or h/l to scroll.") + "\n")
	return table.ApplyHorizontalScroll(b.String(), m.horizOffset, m.width)
}

func cells(rows []db.Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Strings()
	}
	return out
}
