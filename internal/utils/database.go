package utils

import (
	"database/sql"
	"strings"
)

// NullText returns the value of ns without surrounding whitespace, or "" for NULL.
func NullText(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return strings.TrimSpace(ns.String)
}
