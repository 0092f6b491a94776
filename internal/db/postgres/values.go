package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hrutik5321/homelib/internal/db"
	"github.com/jackc/pgx/v5/pgtype"
)

// formatValue renders a driver value as a cell. dbType is the column's
// database type name as reported by the driver, empty when unknown.
func formatValue(v any, dbType string) db.Cell {
	switch val := v.(type) {

	case nil:
		return db.Null

	// UUID as [16]byte
	case [16]byte:
		if uid, err := uuid.FromBytes(val[:]); err == nil {
			return db.Text(uid.String())
		}
		return db.Text(fmt.Sprint(val))

	// UUID / binary as []byte
	case []byte:
		if len(val) == 16 {
			if uid, err := uuid.FromBytes(val); err == nil {
				return db.Text(uid.String())
			}
		}
		return db.Text(string(val))

	// pgx UUID type
	case pgtype.UUID:
		if !val.Valid {
			return db.Null
		}
		return db.Text(uuid.UUID(val.Bytes).String())

	case string:
		return db.Text(val)

	case time.Time:
		if dbType == "DATE" {
			return db.Text(val.Format(time.DateOnly))
		}
		return db.Text(val.Format(time.RFC3339Nano))

	case fmt.Stringer:
		return db.Text(val.String())

	default:
		return db.Text(fmt.Sprint(v))
	}
}
