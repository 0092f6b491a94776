package postgres

import (
	"fmt"
	"strings"

	"github.com/hrutik5321/homelib/internal/db"
	"github.com/jackc/pgx/v5"
)

// ----- Identifiers -----

func tableIdent(schema, table string) string {
	if schema == "" {
		return pgx.Identifier{table}.Sanitize()
	}
	return pgx.Identifier{schema, table}.Sanitize()
}

func columnIdent(column string) string {
	return pgx.Identifier{column}.Sanitize()
}

// textMatch builds `"a"::text IS NOT DISTINCT FROM $n AND ...` starting at
// placeholder next. Cells compare as text so rendered values round-trip.
func textMatch(columns []string, next int) string {
	conds := make([]string, len(columns))
	for i, col := range columns {
		conds[i] = fmt.Sprintf("%s::text IS NOT DISTINCT FROM $%d", columnIdent(col), next+i)
	}
	return strings.Join(conds, " AND ")
}

// ----- Builders -----

func selectRowsSQL(schema, table string, columns []string, opts db.QueryOptions) (string, []any) {
	exprs := make([]string, len(columns))
	for i, col := range columns {
		exprs[i] = columnIdent(col) + "::text"
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), tableIdent(schema, table))
	if opts.Limit <= 0 {
		return query, nil
	}
	return query + " ORDER BY 1 LIMIT $1 OFFSET $2", []any{opts.Limit, opts.Offset}
}

func countRowsSQL(schema, table string) string {
	return "SELECT COUNT(*) FROM " + tableIdent(schema, table)
}

func insertRowSQL(schema, table string, columns []string, values db.Row) (string, []any) {
	names := make([]string, len(columns))
	holders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		names[i] = columnIdent(col)
		holders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[i].Arg()
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		tableIdent(schema, table),
		strings.Join(names, ", "),
		strings.Join(holders, ", "),
	)
	return query, args
}

// updateRowSQL assigns every non-identity column and matches the identity
// columns against their values in the same row.
func updateRowSQL(schema, table string, identity, columns []string, values db.Row) (string, []any, error) {
	isIdentity := make(map[string]bool, len(identity))
	for _, col := range identity {
		isIdentity[col] = true
	}

	var sets []string
	var args []any
	keyValues := make(map[string]db.Cell, len(identity))
	for i, col := range columns {
		if isIdentity[col] {
			keyValues[col] = values[i]
			continue
		}
		args = append(args, values[i].Arg())
		sets = append(sets, fmt.Sprintf("%s = $%d", columnIdent(col), len(args)))
	}
	if len(sets) == 0 {
		return "", nil, db.InvalidInput("table %q has no columns to update besides its identity", table)
	}

	where := textMatch(identity, len(args)+1)
	for _, col := range identity {
		v, ok := keyValues[col]
		if !ok {
			return "", nil, db.InvalidInput("identity column %q missing from update", col)
		}
		args = append(args, v.Arg())
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s",
		tableIdent(schema, table),
		strings.Join(sets, ", "),
		where,
	)
	return query, args, nil
}

func deleteRowSQL(schema, table string, columns []string, values db.Row) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v.Arg()
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", tableIdent(schema, table), textMatch(columns, 1))
	return query, args
}
