package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hrutik5321/homelib/internal/db"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name   string
		value  any
		dbType string
		want   db.Cell
	}{
		{"nil", nil, "", db.Null},
		{"string", "Dune", "TEXT", db.Text("Dune")},
		{"text NULL", "NULL", "TEXT", db.Text("NULL")},
		{"int", int64(42), "INT8", db.Text("42")},
		{"bool", true, "BOOL", db.Text("true")},
		{"uuid array", [16]byte(id), "UUID", db.Text(id.String())},
		{"uuid bytes", id[:], "UUID", db.Text(id.String())},
		{"text bytes", []byte("shelf 3"), "BYTEA", db.Text("shelf 3")},
		{"pgtype uuid", pgtype.UUID{Bytes: id, Valid: true}, "UUID", db.Text(id.String())},
		{"pgtype null uuid", pgtype.UUID{}, "UUID", db.Null},
		{"date", time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC), "DATE", db.Text("2024-05-24")},
		{"timestamp at midnight", time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC), "TIMESTAMP", db.Text("2024-05-24T00:00:00Z")},
		{"timestamp", time.Date(2024, 5, 24, 13, 5, 0, 0, time.UTC), "TIMESTAMPTZ", db.Text("2024-05-24T13:05:00Z")},
		{"time of unknown type", time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC), "", db.Text("2024-05-24T00:00:00Z")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.value, tt.dbType))
		})
	}
}

func TestStatementBuilders(t *testing.T) {
	t.Run("identifiers are quoted", func(t *testing.T) {
		assert.Equal(t, `"main"."books"`, tableIdent("main", "books"))
		assert.Equal(t, `"books"`, tableIdent("", "books"))
		assert.Equal(t, `"we""ird"`, columnIdent(`we"ird`))
	})

	t.Run("composite identity", func(t *testing.T) {
		query, args, err := updateRowSQL("main", "authors_books",
			[]string{"author_code", "book_code"},
			[]string{"author_code", "book_code", "note"},
			db.Row{db.Text("3"), db.Text("1"), db.Null},
		)
		assert.NoError(t, err)
		assert.Equal(t,
			`UPDATE "main"."authors_books" SET "note" = $1 WHERE "author_code"::text IS NOT DISTINCT FROM $2 AND "book_code"::text IS NOT DISTINCT FROM $3`,
			query,
		)
		assert.Equal(t, []any{nil, "3", "1"}, args)
	})

	t.Run("identity only", func(t *testing.T) {
		_, _, err := updateRowSQL("main", "genres", []string{"genre_code"}, []string{"genre_code"}, db.TextRow("5"))
		assert.ErrorIs(t, err, db.ErrInvalidInput)
	})
}

func TestCellArgs(t *testing.T) {
	query, args := insertRowSQL("main", "books",
		[]string{"book_code", "title", "genre_code"},
		db.Row{db.Text("3"), db.Text("NULL"), db.Null},
	)
	assert.Equal(t, `INSERT INTO "main"."books" ("book_code", "title", "genre_code") VALUES ($1, $2, $3)`, query)
	assert.Equal(t, []any{"3", "NULL", nil}, args)

	_, args = deleteRowSQL("main", "books", []string{"title", "genre_code"}, db.Row{db.Text(""), db.Null})
	assert.Equal(t, []any{"", nil}, args)
}
