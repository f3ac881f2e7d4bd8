package authordb

import (
	"context"
	"fmt"
)

const createAuthorTable = `
CREATE TABLE IF NOT EXISTS %s (
    id          BIGINT PRIMARY KEY,
    name        TEXT,
    affiliation TEXT
)`

const createPaperAuthorTable = `
CREATE TABLE IF NOT EXISTS %s (
    paperid     BIGINT NOT NULL,
    authorid    BIGINT NOT NULL,
    name        TEXT,
    affiliation TEXT,
    title       TEXT,
    keyword     TEXT
)`

// CreateTables creates the author and paper-author tables when they do not
// exist. The columns are the subset the preparation stage reads.
func (c *Client) CreateTables(ctx context.Context, authorTable, sourceTable string) error {
	for _, table := range []string{authorTable, sourceTable} {
		if err := ValidateIdentifier(table); err != nil {
			return err
		}
	}

	if _, err := c.DB.ExecContext(ctx, fmt.Sprintf(createAuthorTable, authorTable)); err != nil {
		return fmt.Errorf("failed to create %s: %w", authorTable, err)
	}
	if _, err := c.DB.ExecContext(ctx, fmt.Sprintf(createPaperAuthorTable, sourceTable)); err != nil {
		return fmt.Errorf("failed to create %s: %w", sourceTable, err)
	}
	return nil
}

const insertAuthor = `INSERT INTO %s (id, name, affiliation) VALUES (?, ?, ?)`

// InsertAuthor adds one row to the author table.
func (q *Queries) InsertAuthor(ctx context.Context, table string, arg Author) error {
	if err := ValidateIdentifier(table); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, q.rebind(fmt.Sprintf(insertAuthor, table)),
		arg.ID,
		arg.Name,
		arg.Affiliation,
	)
	return err
}

const insertPaperAuthorRow = `
INSERT INTO %s (paperid, authorid, name, affiliation, title, keyword)
VALUES (?, ?, ?, ?, ?, ?)`

// InsertPaperAuthorRow adds one row to the paper-author source table.
func (q *Queries) InsertPaperAuthorRow(ctx context.Context, table string, arg PaperAuthorRow) error {
	if err := ValidateIdentifier(table); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, q.rebind(fmt.Sprintf(insertPaperAuthorRow, table)),
		arg.PaperID,
		arg.AuthorID,
		arg.Name,
		arg.Affiliation,
		arg.Title,
		arg.Keyword,
	)
	return err
}
