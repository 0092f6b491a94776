// Package catalog decides which tables the generic CRUD path may touch.
package catalog

import (
	"context"
	"fmt"
	"slices"
)

// Mode selects where the table list comes from.
type Mode string

const (
	// ModeFixed serves a configured list.
	ModeFixed Mode = "fixed"
	// ModeDiscover asks the schema catalog on every call.
	ModeDiscover Mode = "discover"
)

// LibraryTables is the home library schema, in menu order.
var LibraryTables = []string{
	"authors",
	"restrictions",
	"publishing_houses",
	"genres",
	"rooms",
	"shelf",
	"books",
	"authors_books",
	"readers",
	"read_request",
	"read_request_lines",
}

// TableLister discovers tables, normally the database itself.
type TableLister interface {
	ListTables(ctx context.Context) ([]string, error)
}

type Catalog struct {
	mode   Mode
	fixed  []string
	lister TableLister
}

// New builds a catalog. In fixed mode an empty list falls back to LibraryTables.
func New(mode Mode, tables []string, lister TableLister) (*Catalog, error) {
	switch mode {
	case ModeFixed:
		if len(tables) == 0 {
			tables = LibraryTables
		}
		return &Catalog{mode: mode, fixed: slices.Clone(tables)}, nil
	case ModeDiscover:
		if lister == nil {
			return nil, fmt.Errorf("discover mode needs a table lister")
		}
		return &Catalog{mode: mode, lister: lister}, nil
	default:
		return nil, fmt.Errorf("unknown catalog mode %q", mode)
	}
}

func (c *Catalog) Mode() Mode {
	return c.mode
}

// Tables returns the menu of tables. The caller owns the returned slice.
func (c *Catalog) Tables(ctx context.Context) ([]string, error) {
	if c.mode == ModeFixed {
		return slices.Clone(c.fixed), nil
	}
	return c.lister.ListTables(ctx)
}

// Contains reports whether table is on the menu.
func (c *Catalog) Contains(ctx context.Context, table string) (bool, error) {
	tables, err := c.Tables(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(tables, table), nil
}
