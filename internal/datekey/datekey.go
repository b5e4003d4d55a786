// Package datekey handles the YYYY-MM-DD keys used by the history ledger,
// the journal and the calendar. Lexicographic order on valid keys equals
// chronological order.
package datekey

import (
	"time"

	"github.com/hpungsan/serene/internal/errors"
)

// Layout is the canonical key layout.
const Layout = "2006-01-02"

// Parse validates s and returns the date at midnight UTC.
// Only zero-padded YYYY-MM-DD keys naming a real calendar day are accepted.
func Parse(s string) (time.Time, error) {
	if len(s) != len(Layout) {
		return time.Time{}, errors.NewValidation("date", "date must be formatted as YYYY-MM-DD")
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, errors.NewValidation("date", "date must be a valid YYYY-MM-DD calendar day")
	}
	return t, nil
}

// Validate reports whether s is a well-formed key.
func Validate(s string) error {
	_, err := Parse(s)
	return err
}

// Format returns the key for t's calendar day in t's own location.
func Format(t time.Time) string {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Format(Layout)
}

// Today returns the key for now in the local timezone.
func Today(now time.Time) string {
	return Format(now.Local())
}
