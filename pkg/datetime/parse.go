// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
)

const (
	// DateLayout is the format expected in config files and API payloads and
	// is also the output date format.
	DateLayout = constants.DateLayout
)

// ParseDate parses a calendar date (YYYY-MM-DD) into a UTC midnight time.
func ParseDate(date string) (time.Time, error) {
	trimmed := strings.TrimSpace(date)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s: %w", date, DateLayout, err)
	}
	return t, nil
}

// MustParseDate parses a date string and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseDate(date string) time.Time {
	t, err := ParseDate(date)
	if err != nil {
		panic(err)
	}
	return t
}

// AddMonths advances a date by the given number of calendar months. Day
// overflow is normalized, so January 31 plus one month lands in early March.
func AddMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

// FormatDate renders a date in DateLayout, or an empty string for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
