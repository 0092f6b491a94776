package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hrutik5321/homelib/internal/catalog"
	"github.com/hrutik5321/homelib/internal/db"
	"github.com/hrutik5321/homelib/internal/metrics"
	"github.com/hrutik5321/homelib/internal/reports"
	"github.com/hrutik5321/homelib/internal/service"
	"github.com/hrutik5321/homelib/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *testutil.MemStore) {
	t.Helper()
	store := testutil.NewLibraryStore()
	cat, err := catalog.New(catalog.ModeFixed, []string{"books", "genres", "shelf"}, nil)
	require.NoError(t, err)
	logger := testutil.NewTestLogger(t)
	lib := service.New(store, cat, reports.NewRegistry(reports.Library), service.Options{Logger: logger})
	return NewServer(lib, logger), store
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, store := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	store.Connected = false
	rec = do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTablesAndColumns(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/tables", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tables":["books","genres","shelf"]}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/tables/books/columns", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"table":"books","columns":["book_code","title","genre_code"]}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/tables/nope/columns", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"table":"nope","columns":[]}`, rec.Body.String())
}

func TestRows(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/tables/genres/rows?limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[RowPageResponse](t, rec)
	assert.Equal(t, []string{"genre_code", "description"}, page.Columns)
	assert.Equal(t, [][]any{{"7", "classics"}}, page.Rows)
	assert.Equal(t, 2, page.TotalRows)
	assert.Equal(t, 1, page.Offset)

	rec = do(t, s, http.MethodGet, "/api/tables/genres/rows?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/tables/secrets/rows", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "not in the catalog")
}

func TestBooksLifecycle(t *testing.T) {
	s, store := newTestServer(t)
	body := `{"columns":["book_code","title","genre_code"],"values":["1","Dune","5"]}`

	rec := do(t, s, http.MethodPost, "/api/tables/books/rows", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"affected":1}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/tables/books/rows", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/tables/books/rows",
		`{"columns":["book_code","title","genre_code"],"values":["1","Dune","7"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, store.Rows("books"), db.TextRow("1", "Dune", "7"))

	rec = do(t, s, http.MethodDelete, "/api/tables/books/rows", `{"values":["1","Dune","7"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"affected":1}`, rec.Body.String())
	assert.Equal(t, []db.Row{db.TextRow("2", "Solaris", "5")}, store.Rows("books"))
}

func TestNullValues(t *testing.T) {
	s, store := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/tables/genres/rows", `{"columns":["genre_code","description"],"values":["9",null]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, store.Rows("genres"), db.Row{db.Text("9"), db.Null})

	rec = do(t, s, http.MethodPost, "/api/tables/genres/rows", `{"columns":["genre_code","description"],"values":["10","NULL"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, store.Rows("genres"), db.TextRow("10", "NULL"))

	rec = do(t, s, http.MethodGet, "/api/tables/genres/rows", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[RowPageResponse](t, rec).Rows
	assert.Contains(t, rows, []any{"9", nil})
	assert.Contains(t, rows, []any{"10", "NULL"})

	rec = do(t, s, http.MethodDelete, "/api/tables/genres/rows", `{"values":["10","NULL"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"affected":1}`, rec.Body.String())

	rec = do(t, s, http.MethodDelete, "/api/tables/genres/rows", `{"values":["9",null]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"affected":1}`, rec.Body.String())
	assert.Len(t, store.Rows("genres"), 2)
}

func TestBadBodies(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{`},
		{name: "unknown field", body: `{"cols":["a"]}`},
		{name: "empty", body: ``},
		{name: "count mismatch", body: `{"columns":["book_code"],"values":["1","2"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/tables/books/rows", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestReports(t *testing.T) {
	s, store := newTestServer(t)
	store.Results[reports.Library[1].SQL] = db.RowSet{Columns: []string{"title"}, Rows: []db.Row{db.TextRow("Solaris")}}

	rec := do(t, s, http.MethodGet, "/api/reports", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string][]ReportItem](t, rec)["reports"]
	require.Len(t, list, len(reports.Library))
	assert.Equal(t, ReportItem{Index: 1, Key: "books-by-genre", Label: "Books of a genre", Param: "genre_code"}, list[1])

	rec = do(t, s, http.MethodPost, "/api/reports/books-by-genre", `{"param":"5"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"columns":["title"],"rows":[["Solaris"]]}`, rec.Body.String())
	assert.Equal(t, []any{"5"}, store.LastArgs)

	rec = do(t, s, http.MethodPost, "/api/reports/1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/reports/99", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/reports/publishers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"columns":[],"rows":[]}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(db.InvalidInput("x")))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(db.StatementError("q", errors.New("syntax"))))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(db.ConnectionError("q", errors.New("refused"))))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestRequestMetrics(t *testing.T) {
	s, _ := newTestServer(t)
	counter := metrics.HTTPRequests.WithLabelValues("/api/tables/{table}/columns", "200")
	before := promtest.ToFloat64(counter)

	do(t, s, http.MethodGet, "/api/tables/books/columns", "")
	assert.Equal(t, before+1, promtest.ToFloat64(counter))

	rec := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "homelib_http_requests_total")
}

func TestServeShutdown(t *testing.T) {
	s, _ := newTestServer(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, listener) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
