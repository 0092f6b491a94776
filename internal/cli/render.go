package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hrutik5321/homelib/internal/db"
	"github.com/hrutik5321/homelib/internal/reports"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderer writes results in the configured output format. In table and
// csv output a NULL cell is written as null.
type renderer struct {
	w      io.Writer
	format string
	null   string
}

func (r renderer) rowSet(set db.RowSet) error {
	switch r.format {
	case "json":
		return r.json(rowObjects(set))
	case "csv":
		return r.csv(set.Columns, set.Rows)
	default:
		return r.table(set.Columns, set.Rows)
	}
}

// list renders a single-column result such as table or column names.
func (r renderer) list(header string, items []string) error {
	if r.format == "json" {
		if items == nil {
			items = []string{}
		}
		return r.json(items)
	}
	rows := make([]db.Row, len(items))
	for i, item := range items {
		rows[i] = db.TextRow(item)
	}
	if r.format == "csv" {
		return r.csv([]string{header}, rows)
	}
	return r.table([]string{header}, rows)
}

func (r renderer) reports(list []reports.Report) error {
	if r.format == "json" {
		type item struct {
			Index int `json:"index"`
			reports.Report
		}
		items := make([]item, len(list))
		for i, rep := range list {
			items[i] = item{Index: i, Report: rep}
		}
		return r.json(items)
	}

	cols := []string{"#", "key", "label", "param"}
	rows := make([]db.Row, len(list))
	for i, rep := range list {
		rows[i] = db.TextRow(fmt.Sprint(i), rep.Key, rep.Label, rep.Param)
	}
	if r.format == "csv" {
		return r.csv(cols, rows)
	}
	return r.table(cols, rows)
}

func (r renderer) affected(n int64) {
	if r.format == "table" {
		_, _ = fmt.Fprintf(r.w, "%d row(s) affected\n", n)
	}
}

func (r renderer) table(cols []string, rows []db.Row) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(r.w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rows {
		out := make(table.Row, len(row))
		for i, cell := range row {
			out[i] = r.text(cell)
		}
		t.AppendRow(out)
	}

	t.Render()
	_, _ = fmt.Fprintf(r.w, "(%d rows)\n", len(rows))
	return nil
}

func (r renderer) json(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r renderer) csv(cols []string, rows []db.Row) error {
	cw := csv.NewWriter(r.w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = r.text(cell)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r renderer) text(c db.Cell) string {
	if c.Null {
		return r.null
	}
	return c.Text
}

// rowObjects keys each row by column name; NULL cells become JSON null.
func rowObjects(set db.RowSet) []map[string]any {
	out := make([]map[string]any, 0, len(set.Rows))
	for _, row := range set.Rows {
		obj := make(map[string]any, len(set.Columns))
		for i, col := range set.Columns {
			if i >= len(row) || row[i].Null {
				obj[col] = nil
				continue
			}
			obj[col] = row[i].Text
		}
		out = append(out, obj)
	}
	return out
}
