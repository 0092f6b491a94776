package reports

import (
	"context"
	"testing"

	"github.com/hrutik5321/homelib/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQuerier struct {
	query string
	args  []any
	calls int
}

func (q *recordingQuerier) Query(_ context.Context, query string, args ...any) (db.RowSet, error) {
	q.calls++
	q.query = query
	q.args = args
	return db.RowSet{Columns: []string{"title"}, Rows: []db.Row{db.TextRow("Dune")}}, nil
}

func ptr(s string) *string { return &s }

func TestLibraryMenu(t *testing.T) {
	require.Len(t, Library, 8)

	withParam := 0
	keys := map[string]bool{}
	for _, rep := range Library {
		assert.NotEmpty(t, rep.Label)
		assert.False(t, keys[rep.Key], "duplicate key %s", rep.Key)
		keys[rep.Key] = true

		if rep.NeedsParam() {
			withParam++
			assert.Contains(t, rep.SQL, "$1", rep.Key)
		} else {
			assert.NotContains(t, rep.SQL, "$1", rep.Key)
		}
	}
	assert.Equal(t, 4, withParam)
}

func TestRegistryRun(t *testing.T) {
	reg := NewRegistry(Library)
	ctx := context.Background()

	tests := []struct {
		name     string
		index    int
		param    *string
		wantErr  bool
		wantArgs []any
	}{
		{name: "no parameter", index: 0, wantArgs: nil},
		{name: "with parameter", index: 1, param: ptr("5"), wantArgs: []any{"5"}},
		{name: "quote in parameter is bound", index: 7, param: ptr("1' OR '1'='1"), wantArgs: []any{"1' OR '1'='1"}},
		{name: "missing parameter", index: 1, wantErr: true},
		{name: "unexpected parameter", index: 3, param: ptr("x"), wantErr: true},
		{name: "negative index", index: -1, wantErr: true},
		{name: "index past end", index: 8, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &recordingQuerier{}
			set, err := reg.Run(ctx, q, tt.index, tt.param)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, db.ErrInvalidInput)
				assert.Zero(t, q.calls, "store must not be queried")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Library[tt.index].SQL, q.query)
			assert.Equal(t, tt.wantArgs, q.args)
			assert.Equal(t, []db.Row{db.TextRow("Dune")}, set.Rows)
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry(Library)

	i, rep, err := reg.Lookup("reader-requests")
	require.NoError(t, err)
	assert.Equal(t, 7, i)
	assert.Equal(t, "reader_id", rep.Param)

	i, rep, err = reg.Lookup("3")
	require.NoError(t, err)
	assert.Equal(t, 3, i)
	assert.Equal(t, "publishers", rep.Key)

	_, _, err = reg.Lookup("12")
	assert.ErrorIs(t, err, db.ErrInvalidInput)

	_, _, err = reg.Lookup("overdue")
	assert.ErrorIs(t, err, db.ErrInvalidInput)
}

func TestRegistryIsACopy(t *testing.T) {
	src := []Report{{Key: "a", Label: "A", SQL: "SELECT 1"}}
	reg := NewRegistry(src)
	src[0].Key = "changed"

	list := reg.List()
	list[0].Key = "also changed"

	rep, err := reg.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "a", rep.Key)
	assert.Equal(t, 1, reg.Len())
}
