package postgres

import (
	"context"
	"database/sql"
)

const listTablesSQL = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = $1 AND table_type = 'BASE TABLE'
	ORDER BY table_name`

const listColumnsSQL = `
	SELECT column_name
	FROM information_schema.columns
	WHERE table_schema = $1 AND table_name = $2
	ORDER BY ordinal_position`

const primaryKeySQL = `
	SELECT kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_schema = kcu.constraint_schema
		AND tc.constraint_name = kcu.constraint_name
		AND tc.table_name = kcu.table_name
	WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = $1 AND tc.table_name = $2
	ORDER BY kcu.ordinal_position`

// ListTables returns the base tables of the configured schema, sorted by name.
func (p *PostgresDB) ListTables(ctx context.Context) ([]string, error) {
	conn, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return queryNames(ctx, conn, "list tables", listTablesSQL, p.schema)
}

// ListColumns returns the table's columns in declared order.
// A table that does not exist yields an empty list.
func (p *PostgresDB) ListColumns(ctx context.Context, table string) ([]string, error) {
	conn, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return p.listColumns(ctx, conn, table)
}

// PrimaryKey returns the declared primary key columns, empty if there is none.
func (p *PostgresDB) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	conn, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return queryNames(ctx, conn, "primary key", primaryKeySQL, p.schema, table)
}

func (p *PostgresDB) listColumns(ctx context.Context, conn *sql.Conn, table string) ([]string, error) {
	return queryNames(ctx, conn, "list columns", listColumnsSQL, p.schema, table)
}

// queryNames collects a single text column.
func queryNames(ctx context.Context, conn *sql.Conn, op, query string, args ...any) ([]string, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, classify(op, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}

	return names, nil
}
