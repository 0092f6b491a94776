package cli

import (
	"fmt"
	"strings"

	"github.com/hrutik5321/homelib/internal/db"
	"github.com/hrutik5321/homelib/internal/service"
	uitable "github.com/hrutik5321/homelib/internal/ui/table"
	"github.com/spf13/cobra"
)

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, cfg, err := connect(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			tables, err := lib.Tables(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd, cfg).list("table", tables)
		},
	}
}

func newColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "List a table's columns in declared order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, cfg, err := connect(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			cols, err := lib.Columns(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output(cmd, cfg).list("column", cols)
		},
	}
}

func newRowsCommand() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "rows <table>",
		Short: "Show the rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, cfg, err := connect(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			return printRows(cmd, lib, output(cmd, cfg), args[0], db.QueryOptions{Limit: limit, Offset: offset})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (0 shows every row)")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip, used with --limit")
	return cmd
}

func printRows(cmd *cobra.Command, lib *service.Library, out renderer, table string, opts db.QueryOptions) error {
	page, err := lib.Rows(cmd.Context(), table, opts)
	if err != nil {
		return err
	}
	if err := out.rowSet(page.RowSet); err != nil {
		return err
	}
	if out.format == "table" && opts.Limit > 0 {
		_, _ = fmt.Fprintln(out.w, uitable.Summary(page.Offset, len(page.Rows), page.TotalRows, opts.Limit))
	}
	return nil
}

type mutateFunc func(lib *service.Library, cmd *cobra.Command, table string, cols []string, vals db.Row) (int64, error)

func newInsertCommand() *cobra.Command {
	return newMutationCommand("insert", "Insert one row", func(lib *service.Library, cmd *cobra.Command, table string, cols []string, vals db.Row) (int64, error) {
		return lib.Insert(cmd.Context(), table, cols, vals)
	})
}

func newUpdateCommand() *cobra.Command {
	cmd := newMutationCommand("update", "Update the row selected by its key columns", func(lib *service.Library, cmd *cobra.Command, table string, cols []string, vals db.Row) (int64, error) {
		return lib.Update(cmd.Context(), table, cols, vals)
	})
	cmd.Long = `Update rewrites every non-key column given. The key columns must be
included; their values select the row and are never changed.`
	return cmd
}

func newDeleteCommand() *cobra.Command {
	cmd := newMutationCommand("delete", "Delete every row equal to the given values", func(lib *service.Library, cmd *cobra.Command, table string, cols []string, vals db.Row) (int64, error) {
		return lib.Delete(cmd.Context(), table, cols, vals)
	})
	cmd.Long = `Delete removes every row whose given columns all equal the given values.
Rows that are exact duplicates are removed together.`
	return cmd
}

// newMutationCommand builds insert, update and delete. Values are given
// either positionally, one per column in declared order, or as
// --set column=value pairs. A value equal to --null is SQL NULL.
func newMutationCommand(use, short string, run mutateFunc) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   use + " <table> [value...]",
		Short: short,
		Example: fmt.Sprintf("  homelib %s books 1 Dune 5\n  homelib %s books --set book_code=1 --set title=Dune --set genre_code=5",
			use, use),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, vals, err := rowArgs(args[1:], sets, getConfig(cmd.Context()).NullText)
			if err != nil {
				return err
			}

			lib, cfg, err := connect(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			out := output(cmd, cfg)
			affected, err := run(lib, cmd, args[0], cols, vals)
			if err != nil {
				return err
			}
			out.affected(affected)
			return printRows(cmd, lib, out, args[0], db.QueryOptions{})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "column=value pair, repeatable")
	return cmd
}

// rowArgs turns command arguments into a column list and values. Positional
// values leave the columns nil, meaning all of them. A value equal to null
// becomes SQL NULL.
func rowArgs(positional, sets []string, null string) ([]string, db.Row, error) {
	cell := func(v string) db.Cell {
		if v == null {
			return db.Null
		}
		return db.Text(v)
	}

	switch {
	case len(positional) > 0 && len(sets) > 0:
		return nil, nil, db.InvalidInput("give values either positionally or with --set, not both")
	case len(positional) > 0:
		vals := make(db.Row, len(positional))
		for i, v := range positional {
			vals[i] = cell(v)
		}
		return nil, vals, nil
	case len(sets) == 0:
		return nil, nil, db.InvalidInput("no values given")
	}

	cols := make([]string, 0, len(sets))
	vals := make(db.Row, 0, len(sets))
	for _, pair := range sets {
		col, val, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return nil, nil, db.InvalidInput("--set %q: want column=value", pair)
		}
		cols = append(cols, strings.TrimSpace(col))
		vals = append(vals, cell(val))
	}
	return cols, vals, nil
}
