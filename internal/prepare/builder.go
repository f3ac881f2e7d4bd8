// Package prepare builds the author record set from the relational source
// tables: one row per author plus one row per paper-author pair.
package prepare

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/time/rate"

	"authordedup.kddcup.org/authordb"
	"authordedup.kddcup.org/internal/logging"
	"authordedup.kddcup.org/internal/models"
	"authordedup.kddcup.org/internal/textclean"
	"authordedup.kddcup.org/internal/utils"
)

// Source is the subset of authordb.Queries the builder reads from.
type Source interface {
	ListAuthors(ctx context.Context, table string) ([]authordb.Author, error)
	ForEachPaperAuthorRow(ctx context.Context, table string, fn func(authordb.PaperAuthorRow) error) error
}

// Stats summarises a build.
type Stats struct {
	Authors        int
	Rows           int
	SkippedRows    int // rows naming an author missing from the author table
	InvalidPapers  int // rows whose paper id does not fit the paper id set
	LoadAuthors    time.Duration
	FoldRows       time.Duration
	FinalizeTokens time.Duration
}

// Builder accumulates raw attribute values per author and turns them into records.
type Builder struct {
	source      Source
	authorTable string
	sourceTable string
	logger      *slog.Logger
	lower       *textclean.Lowerer
}

// NewBuilder creates a builder reading authorTable and sourceTable from source.
func NewBuilder(source Source, authorTable, sourceTable string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		source:      source,
		authorTable: authorTable,
		sourceTable: sourceTable,
		logger:      logger.With(slog.String("component", "record_builder")),
		lower:       textclean.NewLowerer(),
	}
}

// draft holds the raw, lower-cased values gathered for one author.
type draft struct {
	record       *models.Record
	names        []string
	affiliations []string
	keywords     []string
	titles       []string
}

// Build reads both tables and returns the record set.
//
// Every author of the author table yields one record, seeded with its name
// and affiliation. Each paper-author row then adds its paper id and any
// non-empty name, affiliation, keyword and title. Name and title words are
// cleaned with textclean.Words, keywords with textclean.Keywords.
func (b *Builder) Build(ctx context.Context) (*models.RecordSet, Stats, error) {
	var stats Stats

	start := time.Now()
	authors, err := b.source.ListAuthors(ctx, b.authorTable)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to list authors: %w", err)
	}

	drafts := make(map[int64]*draft, len(authors))
	for _, a := range authors {
		if _, ok := drafts[a.ID]; ok {
			continue
		}
		d := &draft{record: models.NewRecord(a.ID)}
		d.addName(b.lower.Lower(utils.NullText(a.Name)))
		d.addAffiliation(b.lower.Lower(utils.NullText(a.Affiliation)))
		drafts[a.ID] = d
	}
	stats.Authors = len(drafts)
	stats.LoadAuthors = time.Since(start)

	logging.LogOperation(b.logger, "authors_loaded",
		slog.Int("authors", stats.Authors),
		slog.Duration("duration", stats.LoadAuthors))

	start = time.Now()
	progress := rate.Sometimes{Interval: 30 * time.Second}
	err = b.source.ForEachPaperAuthorRow(ctx, b.sourceTable, func(row authordb.PaperAuthorRow) error {
		stats.Rows++
		progress.Do(func() {
			logging.LogOperation(b.logger, "rows_progress", slog.Int("rows", stats.Rows))
		})

		d, ok := drafts[row.AuthorID]
		if !ok {
			stats.SkippedRows++
			return nil
		}

		if row.PaperID < 0 || row.PaperID > math.MaxUint32 {
			stats.InvalidPapers++
		} else {
			d.record.PaperIDs.Add(uint32(row.PaperID))
		}
		d.addName(b.lower.Lower(utils.NullText(row.Name)))
		d.addAffiliation(b.lower.Lower(utils.NullText(row.Affiliation)))
		if keyword := utils.NullText(row.Keyword); keyword != "" {
			d.keywords = append(d.keywords, b.lower.Lower(keyword))
		}
		if title := utils.NullText(row.Title); title != "" {
			d.titles = append(d.titles, b.lower.Lower(title))
		}
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read %s: %w", b.sourceTable, err)
	}
	stats.FoldRows = time.Since(start)

	if stats.SkippedRows > 0 {
		b.logger.Warn("rows reference unknown authors",
			slog.Int("skipped_rows", stats.SkippedRows))
	}
	if stats.InvalidPapers > 0 {
		b.logger.Warn("rows carry paper ids outside the supported range",
			slog.Int("invalid_rows", stats.InvalidPapers))
	}

	start = time.Now()
	records := make([]*models.Record, 0, len(drafts))
	for _, d := range drafts {
		records = append(records, d.finish())
	}
	set, err := models.NewRecordSet(records)
	if err != nil {
		return nil, stats, err
	}
	stats.FinalizeTokens = time.Since(start)

	logging.LogOperation(b.logger, "records_built",
		slog.Int("records", set.Len()),
		slog.Int("rows", stats.Rows),
		slog.Duration("fold_duration", stats.FoldRows),
		slog.Duration("finalize_duration", stats.FinalizeTokens))

	return set, stats, nil
}

// Empty values are never recorded.
func (d *draft) addName(name string) {
	if name != "" {
		d.names = append(d.names, name)
	}
}

func (d *draft) addAffiliation(affiliation string) {
	if affiliation != "" {
		d.affiliations = append(d.affiliations, affiliation)
	}
}

// finish deduplicates and cleans the gathered values into the record.
// Whole names, affiliations and titles are kept as is.
func (d *draft) finish() *models.Record {
	r := d.record
	r.Names = models.NewTokenSet(d.names...)
	r.NameTokens = models.NewTokenSet(textclean.Words(d.names...)...)
	r.Affiliations = models.NewTokenSet(d.affiliations...)
	r.Titles = models.NewTokenSet(d.titles...)
	r.TitleTokens = models.NewTokenSet(textclean.Words(d.titles...)...)
	r.Keywords = models.NewTokenSet(textclean.Keywords(d.keywords...)...)
	return r
}
