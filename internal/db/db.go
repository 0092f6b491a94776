package db

import "context"

// NullText is how a SQL NULL is shown when a cell is printed.
const NullText = "NULL"

// Cell is one column value as text. Null marks SQL NULL, in which case
// Text is empty.
type Cell struct {
	Text string
	Null bool
}

// Null is the SQL NULL cell.
var Null = Cell{Null: true}

// Text returns a non-NULL cell.
func Text(s string) Cell {
	return Cell{Text: s}
}

// String renders the cell for display. NULL shows as NullText.
func (c Cell) String() string {
	if c.Null {
		return NullText
	}
	return c.Text
}

// Arg is the statement argument for the cell: nil for NULL, the text otherwise.
func (c Cell) Arg() any {
	if c.Null {
		return nil
	}
	return c.Text
}

// Connection parameters for the library database.
type ConnConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// SSL selects sslmode=require instead of sslmode=disable.
	SSL bool
	// Schema holding the library tables. Also used as search_path.
	Schema string
	// MaxConns caps the pool. Zero leaves the driver default.
	MaxConns int32
}

// Options for fetching rows. A zero Limit returns every row.
type QueryOptions struct {
	Limit  int
	Offset int
}

// Row is one record, one cell per column.
type Row []Cell

// TextRow builds a row without NULLs.
func TextRow(values ...string) Row {
	r := make(Row, len(values))
	for i, v := range values {
		r[i] = Text(v)
	}
	return r
}

// Strings renders every cell for display.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}

// RowSet is a result with its column names.
type RowSet struct {
	Columns []string
	Rows    []Row
}

// Empty reports a successful query that matched nothing.
func (r RowSet) Empty() bool {
	return len(r.Rows) == 0
}

// Page of rows.
type RowPage struct {
	RowSet
	TotalRows int
	Offset    int
}

type DB interface {
	Connect(ctx context.Context, cfg ConnConfig) error
	Close() error
	Ping(ctx context.Context) error

	ListTables(ctx context.Context) ([]string, error)
	ListColumns(ctx context.Context, table string) ([]string, error)
	PrimaryKey(ctx context.Context, table string) ([]string, error)

	ListRows(ctx context.Context, table string, opts QueryOptions) (RowPage, error)
	InsertRow(ctx context.Context, table string, columns []string, values Row) (int64, error)
	UpdateRow(ctx context.Context, table string, identity, columns []string, values Row) (int64, error)
	DeleteRow(ctx context.Context, table string, columns []string, values Row) (int64, error)

	Query(ctx context.Context, query string, args ...any) (RowSet, error)
}
