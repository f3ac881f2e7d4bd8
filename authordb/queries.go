package authordb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidIdentifier is returned for a table name that is not a plain
// or schema-qualified SQL identifier.
var ErrInvalidIdentifier = errors.New("invalid table identifier")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateIdentifier checks that name can be spliced into a query as a table name.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New returns queries using ? placeholders, as the SQLite drivers expect.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// NewForDriver returns queries whose placeholders suit driver.
func NewForDriver(db DBTX, driver string) *Queries {
	return &Queries{db: db, dollar: driver == DriverPostgres}
}

type Queries struct {
	db     DBTX
	dollar bool // PostgreSQL numbers its placeholders: $1, $2, ...
}

// WithTx returns a Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dollar: q.dollar}
}

// rebind rewrites ? placeholders for the target driver. Queries never carry
// a literal ? inside string constants.
func (q *Queries) rebind(query string) string {
	if !q.dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Author is one row of the author table.
type Author struct {
	ID          int64
	Name        sql.NullString
	Affiliation sql.NullString
}

// PaperAuthorRow is one row of the joined paper-author source table.
type PaperAuthorRow struct {
	PaperID     int64
	AuthorID    int64
	Name        sql.NullString
	Affiliation sql.NullString
	Title       sql.NullString
	Keyword     sql.NullString
}

const listAuthors = `SELECT id, name, affiliation FROM %s ORDER BY id`

// ListAuthors returns every row of the author table.
func (q *Queries) ListAuthors(ctx context.Context, table string) ([]Author, error) {
	if err := ValidateIdentifier(table); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx, fmt.Sprintf(listAuthors, table))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	var items []Author
	for rows.Next() {
		var i Author
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Affiliation,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPaperAuthorRows = `SELECT paperid, authorid, name, affiliation, title, keyword FROM %s`

// ForEachPaperAuthorRow streams the source table through fn without holding
// it in memory. An error from fn stops the scan and is returned as is.
func (q *Queries) ForEachPaperAuthorRow(ctx context.Context, table string, fn func(PaperAuthorRow) error) error {
	if err := ValidateIdentifier(table); err != nil {
		return err
	}

	rows, err := q.db.QueryContext(ctx, fmt.Sprintf(listPaperAuthorRows, table))
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var i PaperAuthorRow
		if err := rows.Scan(
			&i.PaperID,
			&i.AuthorID,
			&i.Name,
			&i.Affiliation,
			&i.Title,
			&i.Keyword,
		); err != nil {
			return err
		}
		if err := fn(i); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ListPaperAuthorRows returns every row of the source table.
func (q *Queries) ListPaperAuthorRows(ctx context.Context, table string) ([]PaperAuthorRow, error) {
	var items []PaperAuthorRow
	err := q.ForEachPaperAuthorRow(ctx, table, func(row PaperAuthorRow) error {
		items = append(items, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
