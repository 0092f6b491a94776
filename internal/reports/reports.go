// Package reports holds the fixed menu of canned library queries.
//
// The menu is ordered and indexed by position, so entries are only ever
// appended. Parameterised reports bind their single argument as $1 and
// compare it as text.
package reports

import (
	"context"
	"strconv"
	"strings"

	"github.com/hrutik5321/homelib/internal/db"
)

// Report is one canned query.
type Report struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	SQL   string `json:"-"`
	// Param names the single required argument. Empty means none.
	Param string `json:"param,omitempty"`
}

// NeedsParam reports whether the report takes exactly one argument.
func (r Report) NeedsParam() bool {
	return r.Param != ""
}

// Library is the home library menu. Unqualified table names resolve through
// the connection's search_path.
var Library = []Report{
	{
		Key:   "authors-books",
		Label: "Authors and their books",
		SQL: `SELECT authors.fio, books.title
			FROM authors
			JOIN authors_books ON authors.author_code = authors_books.author_code
			JOIN books ON authors_books.book_code = books.book_code`,
	},
	{
		Key:   "books-by-genre",
		Label: "Books of a genre",
		SQL: `SELECT DISTINCT books.title
			FROM books
			JOIN genres ON books.genre_code = genres.genre_code
			WHERE genres.genre_code::text = $1`,
		Param: "genre_code",
	},
	{
		Key:   "books-on-shelf",
		Label: "Books on a shelf",
		SQL: `SELECT DISTINCT books.title
			FROM books
			JOIN shelf ON books.shelf_code = shelf.shelf_code
			WHERE shelf.shelf_code::text = $1`,
		Param: "shelf_code",
	},
	{
		Key:   "publishers",
		Label: "Publishing houses and contacts",
		SQL:   `SELECT * FROM publishing_houses`,
	},
	{
		Key:   "books-by-publisher",
		Label: "Books of a publishing house",
		SQL:   `SELECT title FROM books WHERE publishing_houses_code::text = $1`,
		Param: "publishing_houses_code",
	},
	{
		Key:   "restricted-books",
		Label: "Books with an age restriction",
		SQL:   `SELECT title FROM books WHERE restriction_code IS NOT NULL`,
	},
	{
		Key:   "genre-counts",
		Label: "Genres and number of books in each",
		SQL: `SELECT genres.description, COUNT(*)
			FROM books
			JOIN genres ON books.genre_code = genres.genre_code
			GROUP BY genres.description`,
	},
	{
		Key:   "reader-requests",
		Label: "Loan requests of a reader",
		SQL:   `SELECT * FROM read_request WHERE reader_id::text = $1`,
		Param: "reader_id",
	},
}

// Querier runs a read statement. Implemented by db.DB.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (db.RowSet, error)
}

// Registry is an ordered, immutable report menu.
type Registry struct {
	reports []Report
}

// NewRegistry copies reports into a registry.
func NewRegistry(reports []Report) *Registry {
	return &Registry{reports: append([]Report(nil), reports...)}
}

// List returns the menu in order.
func (r *Registry) List() []Report {
	return append([]Report(nil), r.reports...)
}

func (r *Registry) Len() int {
	return len(r.reports)
}

// Get returns the report at index.
func (r *Registry) Get(index int) (Report, error) {
	if index < 0 || index >= len(r.reports) {
		return Report{}, db.InvalidInput("report index %d out of range [0, %d)", index, len(r.reports))
	}
	return r.reports[index], nil
}

// Lookup resolves a report by key or by decimal index.
func (r *Registry) Lookup(ref string) (int, Report, error) {
	ref = strings.TrimSpace(ref)
	if i, err := strconv.Atoi(ref); err == nil {
		rep, err := r.Get(i)
		return i, rep, err
	}
	for i, rep := range r.reports {
		if rep.Key == ref {
			return i, rep, nil
		}
	}
	return -1, Report{}, db.InvalidInput("unknown report %q", ref)
}

// Run executes the report at index. param must be set exactly when the
// report needs one.
func (r *Registry) Run(ctx context.Context, q Querier, index int, param *string) (db.RowSet, error) {
	rep, err := r.Get(index)
	if err != nil {
		return db.RowSet{}, err
	}

	switch {
	case rep.NeedsParam() && param == nil:
		return db.RowSet{}, db.InvalidInput("report %q requires %s", rep.Key, rep.Param)
	case !rep.NeedsParam() && param != nil:
		return db.RowSet{}, db.InvalidInput("report %q takes no parameter", rep.Key)
	}

	if param == nil {
		return q.Query(ctx, rep.SQL)
	}
	return q.Query(ctx, rep.SQL, *param)
}
