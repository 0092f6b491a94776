package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listerFunc func(ctx context.Context) ([]string, error)

func (f listerFunc) ListTables(ctx context.Context) ([]string, error) { return f(ctx) }

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		lister  TableLister
		wantErr string
	}{
		{name: "fixed", mode: ModeFixed},
		{name: "discover", mode: ModeDiscover, lister: listerFunc(func(context.Context) ([]string, error) { return nil, nil })},
		{name: "discover without lister", mode: ModeDiscover, wantErr: "needs a table lister"},
		{name: "unknown mode", mode: "guess", wantErr: "unknown catalog mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.mode, nil, tt.lister)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mode, c.Mode())
		})
	}
}

func TestFixedCatalog(t *testing.T) {
	ctx := context.Background()

	c, err := New(ModeFixed, nil, nil)
	require.NoError(t, err)

	tables, err := c.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, LibraryTables, tables)
	assert.Len(t, tables, 11)

	// Callers may not mutate the menu.
	tables[0] = "mutated"
	again, err := c.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, "authors", again[0])

	ok, err := c.Contains(ctx, "read_request_lines")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Contains(ctx, "pg_authid")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFixedCatalogOverride(t *testing.T) {
	c, err := New(ModeFixed, []string{"books"}, nil)
	require.NoError(t, err)

	tables, err := c.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"books"}, tables)
}

func TestDiscoverCatalog(t *testing.T) {
	ctx := context.Background()
	calls := 0
	c, err := New(ModeDiscover, []string{"ignored"}, listerFunc(func(context.Context) ([]string, error) {
		calls++
		return []string{"authors", "books"}, nil
	}))
	require.NoError(t, err)

	tables, err := c.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"authors", "books"}, tables)

	ok, err := c.Contains(ctx, "books")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, calls, "discovery is not cached")

	failing, err := New(ModeDiscover, nil, listerFunc(func(context.Context) ([]string, error) {
		return nil, errors.New("down")
	}))
	require.NoError(t, err)
	_, err = failing.Contains(ctx, "books")
	assert.Error(t, err)
}
