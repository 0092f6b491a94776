package testutil

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/hrutik5321/homelib/internal/db"
)

var _ db.DB = (*MemStore)(nil)

// MemTable is one table held by MemStore.
type MemTable struct {
	Columns []string
	Key     []string
	Rows    []db.Row
}

// MemStore is an in-memory db.DB with the same matching rules as the
// Postgres implementation: cells compare as text and NULL matches NULL.
type MemStore struct {
	mu sync.Mutex

	Tables map[string]*MemTable
	// Results answers Query by statement text.
	Results map[string]db.RowSet
	// Err, when set, is returned by every call after Connect.
	Err error
	// ConnectErr is returned by Connect.
	ConnectErr error

	Connected bool
	LastQuery string
	LastArgs  []any
}

// NewLibraryStore returns a connected store with a small library schema.
func NewLibraryStore() *MemStore {
	return &MemStore{
		Connected: true,
		Tables: map[string]*MemTable{
			"books": {
				Columns: []string{"book_code", "title", "genre_code"},
				Key:     []string{"book_code"},
				Rows:    []db.Row{db.TextRow("2", "Solaris", "5")},
			},
			"genres": {
				Columns: []string{"genre_code", "description"},
				Key:     []string{"genre_code"},
				Rows:    []db.Row{db.TextRow("5", "science fiction"), db.TextRow("7", "classics")},
			},
			"shelf": {
				Columns: []string{"shelf_code", "room_code"},
				Rows:    []db.Row{db.TextRow("1", "1")},
			},
		},
		Results: map[string]db.RowSet{},
	}
}

func (m *MemStore) Connect(_ context.Context, _ db.ConnConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.Connected = true
	return nil
}

func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Connected = false
	return nil
}

func (m *MemStore) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.check()
}

func (m *MemStore) ListTables(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m.Tables))
	for name := range m.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemStore) ListColumns(_ context.Context, table string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	t, ok := m.Tables[table]
	if !ok {
		return []string{}, nil
	}
	return slices.Clone(t.Columns), nil
}

func (m *MemStore) PrimaryKey(_ context.Context, table string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	t, ok := m.Tables[table]
	if !ok {
		return []string{}, nil
	}
	return slices.Clone(t.Key), nil
}

func (m *MemStore) ListRows(_ context.Context, table string, opts db.QueryOptions) (db.RowPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return db.RowPage{}, err
	}
	t, ok := m.Tables[table]
	if !ok {
		return db.RowPage{}, db.InvalidInput("unknown table %q", table)
	}

	rows := make([]db.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, slices.Clone(r))
	}
	total := len(rows)
	if opts.Limit > 0 {
		start := min(opts.Offset, len(rows))
		end := min(start+opts.Limit, len(rows))
		rows = rows[start:end]
	}
	return db.RowPage{
		RowSet:    db.RowSet{Columns: slices.Clone(t.Columns), Rows: rows},
		TotalRows: total,
		Offset:    opts.Offset,
	}, nil
}

func (m *MemStore) InsertRow(_ context.Context, table string, columns []string, values db.Row) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, idx, err := m.resolve(table, columns, values)
	if err != nil {
		return 0, err
	}

	row := make(db.Row, len(t.Columns))
	for i := range row {
		row[i] = db.Null
	}
	for i, v := range values {
		row[idx[i]] = v
	}
	for _, existing := range t.Rows {
		if len(t.Key) > 0 && sameKey(t, existing, row) {
			return 0, db.StatementError("insert row", errors.New("duplicate key value violates unique constraint"))
		}
	}
	t.Rows = append(t.Rows, row)
	return 1, nil
}

func (m *MemStore) UpdateRow(_ context.Context, table string, identity, columns []string, values db.Row) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(identity) == 0 {
		return 0, db.InvalidInput("table %q: no identity columns given", table)
	}
	t, idx, err := m.resolve(table, columns, values)
	if err != nil {
		return 0, err
	}

	match := map[int]db.Cell{}
	for _, key := range identity {
		pos := slices.Index(columns, key)
		if pos < 0 {
			return 0, db.InvalidInput("identity column %q missing from update", key)
		}
		match[idx[pos]] = values[pos]
	}

	var affected int64
	for _, r := range t.Rows {
		if !matches(r, match) {
			continue
		}
		for i, col := range columns {
			if !slices.Contains(identity, col) {
				r[idx[i]] = values[i]
			}
		}
		affected++
	}
	return affected, nil
}

func (m *MemStore) DeleteRow(_ context.Context, table string, columns []string, values db.Row) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, idx, err := m.resolve(table, columns, values)
	if err != nil {
		return 0, err
	}

	match := map[int]db.Cell{}
	for i := range columns {
		match[idx[i]] = values[i]
	}

	kept := t.Rows[:0]
	var affected int64
	for _, r := range t.Rows {
		if matches(r, match) {
			affected++
			continue
		}
		kept = append(kept, r)
	}
	t.Rows = kept
	return affected, nil
}

func (m *MemStore) Query(_ context.Context, query string, args ...any) (db.RowSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return db.RowSet{}, err
	}
	m.LastQuery = query
	m.LastArgs = args
	return m.Results[query], nil
}

// Rows returns a copy of a table's rows.
func (m *MemStore) Rows(table string) []db.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tables[table]
	if !ok {
		return nil
	}
	out := make([]db.Row, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = slices.Clone(r)
	}
	return out
}

func (m *MemStore) check() error {
	if !m.Connected {
		return db.ConnectionError("acquire", errors.New("database not connected"))
	}
	return m.Err
}

func (m *MemStore) resolve(table string, columns []string, values db.Row) (*MemTable, []int, error) {
	if err := m.check(); err != nil {
		return nil, nil, err
	}
	if len(columns) == 0 {
		return nil, nil, db.InvalidInput("no columns given")
	}
	if len(columns) != len(values) {
		return nil, nil, db.InvalidInput("got %d values for %d columns", len(values), len(columns))
	}
	t, ok := m.Tables[table]
	if !ok {
		return nil, nil, db.InvalidInput("unknown table %q", table)
	}
	idx := make([]int, len(columns))
	for i, col := range columns {
		pos := slices.Index(t.Columns, col)
		if pos < 0 {
			return nil, nil, db.InvalidInput("table %q has no column %q", table, col)
		}
		idx[i] = pos
	}
	return t, idx, nil
}

func matches(r db.Row, match map[int]db.Cell) bool {
	for pos, v := range match {
		if r[pos] != v {
			return false
		}
	}
	return true
}

func sameKey(t *MemTable, a, b db.Row) bool {
	for _, key := range t.Key {
		pos := slices.Index(t.Columns, key)
		if a[pos] != b[pos] {
			return false
		}
	}
	return true
}
