package rate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day is the fixed day length used for day counting. Calendar days that are longer
// or shorter because of a daylight saving shift count as fractional days
const Day = 24 * time.Hour

const dateSeparator = "/"

const (
	minYear = 1
	maxYear = 9999
)

// digit counts allowed for the day, month and year parts
var partWidths = [3][2]int{{1, 2}, {1, 2}, {4, 4}}

// DateParser converts the date text of an Observation into a calendar date
type DateParser func(text string) (time.Time, error)

// DateParserIn returns a DateParser that builds midnight dates in loc
func DateParserIn(loc *time.Location) DateParser {
	return func(text string) (time.Time, error) {
		return ParseDate(text, loc)
	}
}

// ParseDate parses DD/MM/YYYY text into midnight of that day in loc. A nil loc means time.Local.
// Day and month take one or two digits, the year exactly four. Dates that do not exist in the
// calendar, e.g. 31/02/2025, are rejected instead of rolling over
func ParseDate(text string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidDateFormat)
	}

	parts := strings.Split(text, dateSeparator)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q, expected DD/MM/YYYY", ErrInvalidDateFormat, text)
	}

	var fields [3]int
	for i, part := range parts {
		if !digits(part, partWidths[i][0], partWidths[i][1]) {
			return time.Time{}, fmt.Errorf("%w: %q, expected DD/MM/YYYY", ErrInvalidDateFormat, text)
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidDateFormat, text, err)
		}

		fields[i] = n
	}

	day, month, year := fields[0], fields[1], fields[2]
	if year < minYear || year > maxYear || month < 1 || month > 12 || day < 1 {
		return time.Time{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDateFormat, text)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDateFormat, text)
	}

	return t, nil
}

// digits reports whether s is made of lo to hi ASCII digits
func digits(s string, lo, hi int) bool {
	if len(s) < lo || len(s) > hi {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// DaysBetween returns the elapsed days from start to end, fractional days are preserved
func DaysBetween(start, end time.Time) float64 {
	return float64(end.Sub(start)) / float64(Day)
}

// AddDays moves t by n calendar days keeping the wall clock
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}
