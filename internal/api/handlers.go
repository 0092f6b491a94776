package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hrutik5321/homelib/internal/db"
)

// RowsRequest is the body of insert, update and delete. A null value is
// SQL NULL. Omitted columns mean every column in declared order.
type RowsRequest struct {
	Columns []string  `json:"columns"`
	Values  []*string `json:"values"`
}

// ReportRequest is the optional body of a report run.
type ReportRequest struct {
	Param *string `json:"param"`
}

// RowSetResponse carries a result set. NULL cells are JSON null.
type RowSetResponse struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type RowPageResponse struct {
	RowSetResponse
	TotalRows int `json:"total_rows"`
	Offset    int `json:"offset"`
}

type ReportItem struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Label string `json:"label"`
	Param string `json:"param,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.lib.Ping(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.lib.Tables(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tables": tables})
}

func (s *Server) listColumns(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	cols, err := s.lib.Columns(r.Context(), table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"table": table, "columns": cols})
}

func (s *Server) listRows(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	page, err := s.lib.Rows(r.Context(), chi.URLParam(r, "table"), db.QueryOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RowPageResponse{
		RowSetResponse: toRowSetResponse(page.RowSet),
		TotalRows:      page.TotalRows,
		Offset:         page.Offset,
	})
}

func (s *Server) insertRow(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.lib.Insert)
}

func (s *Server) updateRow(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.lib.Update)
}

func (s *Server) deleteRow(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.lib.Delete)
}

type mutation func(ctx context.Context, table string, columns []string, values db.Row) (int64, error)

func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op mutation) {
	var req RowsRequest
	if err := decodeBody(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}

	values := make(db.Row, len(req.Values))
	for i, v := range req.Values {
		if v == nil {
			values[i] = db.Null
			continue
		}
		values[i] = db.Text(*v)
	}

	affected, err := op(r.Context(), chi.URLParam(r, "table"), req.Columns, values)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

func (s *Server) listReports(w http.ResponseWriter, _ *http.Request) {
	list := s.lib.Reports()
	items := make([]ReportItem, len(list))
	for i, rep := range list {
		items[i] = ReportItem{Index: i, Key: rep.Key, Label: rep.Label, Param: rep.Param}
	}
	writeJSON(w, http.StatusOK, map[string][]ReportItem{"reports": items})
}

func (s *Server) runReport(w http.ResponseWriter, r *http.Request) {
	index, _, err := s.lib.LookupReport(chi.URLParam(r, "report"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req ReportRequest
	if err := decodeBody(r, &req, true); err != nil {
		s.writeError(w, err)
		return
	}

	set, err := s.lib.RunReport(r.Context(), index, req.Param)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRowSetResponse(set))
}

// ----- helpers -----

func toRowSetResponse(set db.RowSet) RowSetResponse {
	rows := make([][]any, len(set.Rows))
	for i, row := range set.Rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			if cell.Null {
				continue
			}
			cells[j] = cell.Text
		}
		rows[i] = cells
	}
	cols := set.Columns
	if cols == nil {
		cols = []string{}
	}
	return RowSetResponse{Columns: cols, Rows: rows}
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, db.InvalidInput("query parameter %s: %q is not an integer", name, raw)
	}
	return n, nil
}

func decodeBody(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return db.InvalidInput("invalid request body: %v", err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrStatement):
		return http.StatusUnprocessableEntity
	case errors.Is(err, db.ErrConnection):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
