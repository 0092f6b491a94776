package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hrutik5321/homelib/internal/db"
)

// ----- Messages from async library calls -----

type connectResultMsg struct {
	err error
}

type tablesResultMsg struct {
	tables []string
	err    error
}

type rowsResultMsg struct {
	page db.RowPage
	err  error
}

type mutationResultMsg struct {
	op       string
	affected int64
	err      error
}

type reportResultMsg struct {
	index int
	set   db.RowSet
	err   error
}

// ----- Commands -----

func connectCmd(lib Library, cfg db.ConnConfig) tea.Cmd {
	return func() tea.Msg {
		return connectResultMsg{err: lib.Connect(context.Background(), cfg)}
	}
}

func listTablesCmd(lib Library) tea.Cmd {
	return func() tea.Msg {
		tables, err := lib.Tables(context.Background())
		return tablesResultMsg{tables: tables, err: err}
	}
}

func fetchRowsCmd(lib Library, table string, opts db.QueryOptions) tea.Cmd {
	return func() tea.Msg {
		page, err := lib.Rows(context.Background(), table, opts)
		return rowsResultMsg{page: page, err: err}
	}
}

func insertCmd(lib Library, table string, columns []string, values db.Row) tea.Cmd {
	return func() tea.Msg {
		n, err := lib.Insert(context.Background(), table, columns, values)
		return mutationResultMsg{op: "insert", affected: n, err: err}
	}
}

func updateCmd(lib Library, table string, columns []string, values db.Row) tea.Cmd {
	return func() tea.Msg {
		n, err := lib.Update(context.Background(), table, columns, values)
		return mutationResultMsg{op: "update", affected: n, err: err}
	}
}

func deleteCmd(lib Library, table string, columns []string, values db.Row) tea.Cmd {
	return func() tea.Msg {
		n, err := lib.Delete(context.Background(), table, columns, values)
		return mutationResultMsg{op: "delete", affected: n, err: err}
	}
}

func runReportCmd(lib Library, index int, param *string) tea.Cmd {
	return func() tea.Msg {
		set, err := lib.RunReport(context.Background(), index, param)
		return reportResultMsg{index: index, set: set, err: err}
	}
}
