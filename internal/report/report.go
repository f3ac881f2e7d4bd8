// Package report writes the duplicate author submission file.
//
// The file starts with the header "AuthorId,DuplicateAuthorIds". Each
// following line holds an author id and a space-separated list that starts
// with the author's own id, then its duplicates in ascending order:
//
//	AuthorId,DuplicateAuthorIds
//	1,1 2
//	2,2 1
//	3,3
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"authordedup.kddcup.org/internal/engine"
	"authordedup.kddcup.org/internal/models"
	"authordedup.kddcup.org/internal/utils"
)

// Write writes matches to w, one line per author in ascending id order.
func Write(w io.Writer, matches engine.FinalMatchMap) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{models.ReportAuthorIDColumn, models.ReportDuplicatesColumn}); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	var dups strings.Builder
	for _, id := range matches.IDs() {
		own := strconv.FormatInt(id, 10)

		dups.Reset()
		dups.WriteString(own)
		for _, other := range matches[id] {
			dups.WriteByte(' ')
			dups.WriteString(strconv.FormatInt(other, 10))
		}

		if err := cw.Write([]string{own, dups.String()}); err != nil {
			return fmt.Errorf("failed to write report line for %d: %w", id, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}

// WriteFile writes matches to path atomically; a failed write leaves any
// previous file untouched.
func WriteFile(path string, matches engine.FinalMatchMap) error {
	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		return Write(w, matches)
	})
}
