package authordb

import (
	"context"
	"fmt"
	"log/slog"

	"authordedup.kddcup.org/internal/logging"
)

// TableCounts returns the row count of each named table.
func (c *Client) TableCounts(ctx context.Context, tables ...string) (map[string]int, error) {
	counts := make(map[string]int, len(tables))

	for _, table := range tables {
		// Only validated identifiers ever reach the query string.
		if err := ValidateIdentifier(table); err != nil {
			return nil, err
		}

		var count int
		err := c.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("failed to count rows of %s: %w", table, err)
		}
		counts[table] = count

		if c.config.verbose {
			logging.LogOperation(c.logger, "table_counted",
				slog.String("table", table),
				slog.Int("rows", count))
		}
	}

	return counts, nil
}
