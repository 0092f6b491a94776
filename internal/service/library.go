// Package service exposes the library database as explicit request/response
// calls: catalog-gated table CRUD and the canned report menu.
//
// Each call is independent. Mutations do not refresh anything; callers that
// display rows call Rows again afterwards.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/hrutik5321/homelib/internal/catalog"
	"github.com/hrutik5321/homelib/internal/db"
	"github.com/hrutik5321/homelib/internal/metrics"
	"github.com/hrutik5321/homelib/internal/reports"
)

type Options struct {
	// FirstColumnFallback lets Update key tables without a primary key on
	// their first column.
	FirstColumnFallback bool
	// Timeout bounds every call. Zero means no bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

type Library struct {
	store   db.DB
	catalog *catalog.Catalog
	reports *reports.Registry
	opts    Options
	logger  *slog.Logger
}

func New(store db.DB, cat *catalog.Catalog, reg *reports.Registry, opts Options) *Library {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Library{
		store:   store,
		catalog: cat,
		reports: reg,
		opts:    opts,
		logger:  logger,
	}
}

// Connect opens the store.
func (l *Library) Connect(ctx context.Context, cfg db.ConnConfig) (err error) {
	defer l.observe("connect", time.Now(), &err)
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	if err := l.store.Connect(ctx, cfg); err != nil {
		return err
	}
	l.logger.Info("connected", "host", cfg.Host, "port", cfg.Port, "database", cfg.Database, "schema", cfg.Schema, "ssl", cfg.SSL)
	return nil
}

func (l *Library) Close() error {
	return l.store.Close()
}

func (l *Library) Ping(ctx context.Context) (err error) {
	defer l.observe("ping", time.Now(), &err)
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	return l.store.Ping(ctx)
}

// Tables returns the catalog menu.
func (l *Library) Tables(ctx context.Context) (tables []string, err error) {
	defer l.observe("tables", time.Now(), &err)
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	return l.catalog.Tables(ctx)
}

// Columns lists a table's columns in declared order. Unknown tables give an
// empty list, not an error.
func (l *Library) Columns(ctx context.Context, table string) (cols []string, err error) {
	defer l.observe("columns", time.Now(), &err, "table", table)
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	return l.store.ListColumns(ctx, table)
}

// Identity returns the columns Update matches on.
func (l *Library) Identity(ctx context.Context, table string) (key []string, err error) {
	defer l.observe("identity", time.Now(), &err, "table", table)
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	if err := l.checkTable(ctx, table); err != nil {
		return nil, err
	}
	return l.identity(ctx, table)
}

func (l *Library) Rows(ctx context.Context, table string, opts db.QueryOptions) (page db.RowPage, err error) {
	defer l.observe("rows", time.Now(), &err, "table", table)
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	if err := l.checkTable(ctx, table); err != nil {
		return db.RowPage{}, err
	}
	page, err = l.store.ListRows(ctx, table, opts)
	if err == nil && page.Empty() {
		l.logger.Debug("empty result", "table", table, "offset", opts.Offset)
	}
	return page, err
}

// Insert adds one row. Nil columns means every column in declared order.
func (l *Library) Insert(ctx context.Context, table string, columns []string, values db.Row) (affected int64, err error) {
	defer l.observeMutation("insert", time.Now(), &affected, &err, table)
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	if err := l.checkTable(ctx, table); err != nil {
		return 0, err
	}
	if columns, err = l.defaultColumns(ctx, table, columns); err != nil {
		return 0, err
	}
	return l.store.InsertRow(ctx, table, columns, values)
}

// Update rewrites the non-identity columns of the row whose identity columns
// equal the given values. Identity values cannot be changed this way.
func (l *Library) Update(ctx context.Context, table string, columns []string, values db.Row) (affected int64, err error) {
	defer l.observeMutation("update", time.Now(), &affected, &err, table)
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	if err := l.checkTable(ctx, table); err != nil {
		return 0, err
	}
	if columns, err = l.defaultColumns(ctx, table, columns); err != nil {
		return 0, err
	}
	key, err := l.identity(ctx, table)
	if err != nil {
		return 0, err
	}
	return l.store.UpdateRow(ctx, table, key, columns, values)
}

// Delete removes every row whose columns all equal values.
func (l *Library) Delete(ctx context.Context, table string, columns []string, values db.Row) (affected int64, err error) {
	defer l.observeMutation("delete", time.Now(), &affected, &err, table)
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	if err := l.checkTable(ctx, table); err != nil {
		return 0, err
	}
	if columns, err = l.defaultColumns(ctx, table, columns); err != nil {
		return 0, err
	}
	return l.store.DeleteRow(ctx, table, columns, values)
}

// Reports returns the canned report menu in order.
func (l *Library) Reports() []reports.Report {
	return l.reports.List()
}

// LookupReport resolves a report by key or index.
func (l *Library) LookupReport(ref string) (int, reports.Report, error) {
	return l.reports.Lookup(ref)
}

// RunReport runs the report at index with an optional parameter.
func (l *Library) RunReport(ctx context.Context, index int, param *string) (set db.RowSet, err error) {
	defer l.observe("report", time.Now(), &err, "index", index)
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	return l.reports.Run(ctx, l.store, index, param)
}

// ----- helpers -----

func (l *Library) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.opts.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, l.opts.Timeout)
}

func (l *Library) checkTable(ctx context.Context, table string) error {
	ok, err := l.catalog.Contains(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		return db.InvalidInput("table %q is not in the catalog", table)
	}
	return nil
}

func (l *Library) defaultColumns(ctx context.Context, table string, columns []string) ([]string, error) {
	if len(columns) > 0 {
		return columns, nil
	}
	cols, err := l.store.ListColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, db.InvalidInput("unknown table %q", table)
	}
	return cols, nil
}

func (l *Library) identity(ctx context.Context, table string) ([]string, error) {
	key, err := l.store.PrimaryKey(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(key) > 0 {
		return key, nil
	}
	if !l.opts.FirstColumnFallback {
		return nil, db.InvalidInput("table %q has no primary key", table)
	}

	cols, err := l.store.ListColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, db.InvalidInput("unknown table %q", table)
	}
	l.logger.Debug("no primary key, keying on first column", "table", table, "column", cols[0])
	return cols[:1], nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, db.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, db.ErrConnection):
		return "connection_error"
	case errors.Is(err, db.ErrStatement):
		return "statement_error"
	default:
		return "error"
	}
}

func (l *Library) observe(op string, start time.Time, errp *error, attrs ...any) {
	err := *errp
	elapsed := time.Since(start)
	metrics.Operations.WithLabelValues(op, resultLabel(err)).Inc()
	metrics.OperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	attrs = append(attrs, "op", op, "duration", elapsed)
	switch {
	case err == nil:
		l.logger.Debug("operation done", attrs...)
	case errors.Is(err, db.ErrInvalidInput):
		l.logger.Warn("operation rejected", append(attrs, "error", err)...)
	default:
		l.logger.Error("operation failed", append(attrs, "error", err)...)
	}
}

func (l *Library) observeMutation(op string, start time.Time, affected *int64, errp *error, table string) {
	l.observe(op, start, errp, "table", table, "affected", *affected)
	if *errp != nil {
		return
	}
	metrics.RowsAffected.WithLabelValues(op).Add(float64(*affected))
	if *affected == 0 {
		l.logger.Warn("no rows matched", "op", op, "table", table)
	}
}
