package postgres

import (
	"context"
	"database/sql"

	"github.com/hrutik5321/homelib/internal/db"
)

// ListRows returns the table's rows with cells rendered as text, in the
// column order reported by ListColumns.
func (p *PostgresDB) ListRows(ctx context.Context, table string, opts db.QueryOptions) (db.RowPage, error) {
	if opts.Limit < 0 || opts.Offset < 0 {
		return db.RowPage{}, db.InvalidInput("limit and offset must not be negative")
	}

	conn, err := p.acquire(ctx)
	if err != nil {
		return db.RowPage{}, err
	}
	defer conn.Close()

	cols, err := p.tableColumns(ctx, conn, table)
	if err != nil {
		return db.RowPage{}, err
	}

	// 1) Get total row count for pagination
	total := -1
	if opts.Limit > 0 {
		if err := conn.QueryRowContext(ctx, countRowsSQL(p.schema, table)).Scan(&total); err != nil {
			return db.RowPage{}, classify("count rows", err)
		}
	}

	// 2) Fetch rows
	query, args := selectRowsSQL(p.schema, table, cols, opts)
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return db.RowPage{}, classify("list rows", err)
	}
	defer rows.Close()

	data, err := scanTextRows(rows, len(cols))
	if err != nil {
		return db.RowPage{}, classify("list rows", err)
	}
	if total < 0 {
		total = len(data)
	}

	return db.RowPage{
		RowSet:    db.RowSet{Columns: cols, Rows: data},
		TotalRows: total,
		Offset:    opts.Offset,
	}, nil
}

// InsertRow implements db.DB.
func (p *PostgresDB) InsertRow(ctx context.Context, table string, columns []string, values db.Row) (int64, error) {
	conn, err := p.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if err := p.checkColumns(ctx, conn, table, columns, values); err != nil {
		return 0, err
	}

	query, args := insertRowSQL(p.schema, table, columns, values)
	return execAffected(ctx, conn, "insert row", query, args)
}

// UpdateRow sets every non-identity column of the row whose identity
// columns equal the corresponding values. Identity columns are never assigned.
func (p *PostgresDB) UpdateRow(ctx context.Context, table string, identity, columns []string, values db.Row) (int64, error) {
	if len(identity) == 0 {
		return 0, db.InvalidInput("table %q: no identity columns given", table)
	}

	conn, err := p.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if err := p.checkColumns(ctx, conn, table, columns, values); err != nil {
		return 0, err
	}

	query, args, err := updateRowSQL(p.schema, table, identity, columns, values)
	if err != nil {
		return 0, err
	}
	return execAffected(ctx, conn, "update row", query, args)
}

// DeleteRow removes every row whose listed columns all equal the values.
func (p *PostgresDB) DeleteRow(ctx context.Context, table string, columns []string, values db.Row) (int64, error) {
	conn, err := p.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if err := p.checkColumns(ctx, conn, table, columns, values); err != nil {
		return 0, err
	}

	query, args := deleteRowSQL(p.schema, table, columns, values)
	return execAffected(ctx, conn, "delete row", query, args)
}

// Query runs an arbitrary read statement and renders every non-NULL cell as text.
func (p *PostgresDB) Query(ctx context.Context, query string, args ...any) (db.RowSet, error) {
	conn, err := p.acquire(ctx)
	if err != nil {
		return db.RowSet{}, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return db.RowSet{}, classify("query", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return db.RowSet{}, classify("query", err)
	}
	cols := make([]string, len(types))
	for i, t := range types {
		cols[i] = t.Name()
	}

	var data []db.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return db.RowSet{}, classify("query", err)
		}

		r := make(db.Row, len(values))
		for i, v := range values {
			r[i] = formatValue(v, types[i].DatabaseTypeName())
		}
		data = append(data, r)
	}
	if err := rows.Err(); err != nil {
		return db.RowSet{}, classify("query", err)
	}

	return db.RowSet{Columns: cols, Rows: data}, nil
}

// ----- helpers -----

// tableColumns is listColumns that treats an unknown table as invalid input.
func (p *PostgresDB) tableColumns(ctx context.Context, conn *sql.Conn, table string) ([]string, error) {
	cols, err := p.listColumns(ctx, conn, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, db.InvalidInput("unknown table %q", table)
	}
	return cols, nil
}

// checkColumns verifies that columns name distinct columns of table and
// that there is one value per column.
func (p *PostgresDB) checkColumns(ctx context.Context, conn *sql.Conn, table string, columns []string, values db.Row) error {
	if len(columns) == 0 {
		return db.InvalidInput("no columns given")
	}
	if len(columns) != len(values) {
		return db.InvalidInput("got %d values for %d columns", len(values), len(columns))
	}

	known, err := p.tableColumns(ctx, conn, table)
	if err != nil {
		return err
	}
	exists := make(map[string]bool, len(known))
	for _, col := range known {
		exists[col] = true
	}

	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if !exists[col] {
			return db.InvalidInput("table %q has no column %q", table, col)
		}
		if seen[col] {
			return db.InvalidInput("column %q given twice", col)
		}
		seen[col] = true
	}
	return nil
}

func execAffected(ctx context.Context, conn *sql.Conn, op, query string, args []any) (int64, error) {
	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, classify(op, err)
	}
	return affected, nil
}

func scanTextRows(rows *sql.Rows, n int) ([]db.Row, error) {
	data := []db.Row{}
	for rows.Next() {
		cells := make([]sql.NullString, n)
		ptrs := make([]any, n)
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		r := make(db.Row, n)
		for i, c := range cells {
			if c.Valid {
				r[i] = db.Text(c.String)
			} else {
				r[i] = db.Null
			}
		}
		data = append(data, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return data, nil
}
