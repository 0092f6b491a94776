// Package app is the terminal UI. It only talks to the library service.
package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hrutik5321/homelib/internal/db"
	"github.com/hrutik5321/homelib/internal/reports"
)

// Library is the part of service.Library the UI uses.
type Library interface {
	Connect(ctx context.Context, cfg db.ConnConfig) error
	Tables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]string, error)
	Rows(ctx context.Context, table string, opts db.QueryOptions) (db.RowPage, error)
	Insert(ctx context.Context, table string, columns []string, values db.Row) (int64, error)
	Update(ctx context.Context, table string, columns []string, values db.Row) (int64, error)
	Delete(ctx context.Context, table string, columns []string, values db.Row) (int64, error)
	Reports() []reports.Report
	RunReport(ctx context.Context, index int, param *string) (db.RowSet, error)
}

type Options struct {
	// Conn prefills the connection form. Schema, SSL and pool size are
	// taken from it as they are.
	Conn db.ConnConfig
	// AutoConnect skips the form and connects with Conn straight away.
	AutoConnect bool
	PageSize    int
}

func New(lib Library, opts Options) tea.Model {
	return initialModel(lib, opts)
}

func NewProgram(lib Library, opts Options) *tea.Program {
	return tea.NewProgram(New(lib, opts), tea.WithAltScreen())
}
