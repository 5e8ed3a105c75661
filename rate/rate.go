package rate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Davphla/kiln-sos/label"
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidRateValue  = errors.New("invalid rate value")
)

// Observation is a raw rate record as loaded from a dataset. It is never modified
type Observation struct {
	CurrencyPair label.Pair
	// DateText in DD/MM/YYYY form
	DateText string
	// CloseText closing rate as decimal text
	CloseText string
}

// Parsed is an Observation with its date and rate decoded
type Parsed struct {
	Date time.Time
	Rate float64
}

// ParseClose parses closing rate text. Text that is not a finite decimal number is rejected
func ParseClose(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: empty close", ErrInvalidRateValue)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidRateValue, text, err)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidRateValue, text)
	}

	return v, nil
}

// FilterAndSort keeps the records of pair, decodes them with parse and returns them ordered by date.
// The sort is stable, observations sharing a date keep their input order.
// An empty result is not an error
func FilterAndSort(records []Observation, pair label.Pair, parse DateParser) ([]Parsed, error) {
	if parse == nil {
		parse = DateParserIn(time.Local)
	}

	list := make([]Parsed, 0, len(records))
	for i, r := range records {
		if r.CurrencyPair != pair {
			continue
		}

		date, err := parse(r.DateText)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		v, err := ParseClose(r.CloseText)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		list = append(list, Parsed{Date: date, Rate: v})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date.Before(list[j].Date)
	})

	return list, nil
}

// Pairs returns the distinct currency pairs of records in order of first appearance
func Pairs(records []Observation) []label.Pair {
	seen := make(map[label.Pair]struct{})
	pairs := make([]label.Pair, 0)
	for _, r := range records {
		if _, ok := seen[r.CurrencyPair]; ok {
			continue
		}
		seen[r.CurrencyPair] = struct{}{}
		pairs = append(pairs, r.CurrencyPair)
	}

	return pairs
}
