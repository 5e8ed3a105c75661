package codec

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/Davphla/kiln-sos/internal/strutil"
	"github.com/Davphla/kiln-sos/label"
	"github.com/Davphla/kiln-sos/rate"
)

var (
	ErrDecodeToken         = errors.New("decoding of the markup failed")
	ErrAttributeNotValid   = errors.New("attr is not valid")
	ErrFormatNotSupported  = errors.New("dataset format is not supported")
	ErrCharsetNotSupported = errors.New("charset is not supported")
)

// DecodeFunc turns a raw dataset into rate observations, in dataset order
type DecodeFunc func([]byte) ([]rate.Observation, error)

const (
	columnDate     = "date"
	columnClose    = "close"
	columnCurrency = "currency"
)

// aliases of the column names, keys are normalized with strutil.NormalizeKey
var columnAliases = map[string]string{
	"date":          columnDate,
	"close":         columnClose,
	"price":         columnClose,
	"rate":          columnClose,
	"currency":      columnCurrency,
	"currency pair": columnCurrency,
	"pair":          columnCurrency,
}

// column returns the column a key names and whether the key is the column's own name
func column(name string) (c string, canonical, ok bool) {
	key := strutil.NormalizeKey(name)
	c, ok = columnAliases[key]

	return c, key == c, ok
}

type pick struct {
	name      string
	idx       int
	canonical bool
}

// picker chooses one key per column. The column's own name beats an alias, two keys
// of the same rank for one column are ambiguous
type picker map[string]pick

func (p picker) add(name string, idx int) error {
	c, canonical, ok := column(name)
	if !ok {
		return nil
	}

	prev, seen := p[c]
	switch {
	case !seen, canonical && !prev.canonical:
		p[c] = pick{name: name, idx: idx, canonical: canonical}
	case canonical == prev.canonical:
		return fmt.Errorf("%w: %q and %q both name the %s column", ErrAttributeNotValid, prev.name, name, c)
	}

	return nil
}

func (p picker) complete() bool {
	for _, c := range []string{columnDate, columnClose, columnCurrency} {
		if _, ok := p[c]; !ok {
			return false
		}
	}

	return true
}

// ForExtension picks the decoder of a dataset file name
func ForExtension(name string) (DecodeFunc, error) {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".json":
		return JSON(), nil
	case ".csv":
		return CSV(""), nil
	case ".html", ".htm":
		return HTML(), nil
	default:
		return nil, fmt.Errorf("%w: extension %q", ErrFormatNotSupported, ext)
	}
}

// ForContentType picks the decoder of an HTTP response
func ForContentType(contentType string) (DecodeFunc, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: content type %q: %v", ErrFormatNotSupported, contentType, err)
	}

	switch {
	case strings.Contains(mediaType, "json"):
		return JSON(), nil
	case strings.Contains(mediaType, "csv"):
		return CSV(params["charset"]), nil
	case strings.Contains(mediaType, "html"):
		return HTML(), nil
	default:
		return nil, fmt.Errorf("%w: content type %q", ErrFormatNotSupported, mediaType)
	}
}

// table maps the columns of a header row to the observation fields
type table struct {
	date, close, currency int
}

func newTable(header []string) (table, error) {
	p := make(picker, 3)
	for i, name := range header {
		if err := p.add(name, i); err != nil {
			return table{}, err
		}
	}

	if !p.complete() {
		return table{}, fmt.Errorf("%w: header %q must name date, close and currency", ErrAttributeNotValid, header)
	}

	return table{date: p[columnDate].idx, close: p[columnClose].idx, currency: p[columnCurrency].idx}, nil
}

func (t table) observation(row []string) (rate.Observation, error) {
	for _, idx := range []int{t.date, t.close, t.currency} {
		if idx >= len(row) {
			return rate.Observation{}, fmt.Errorf("%w: row %q is too short", ErrAttributeNotValid, row)
		}
	}

	return rate.Observation{
		CurrencyPair: label.Pair(strings.TrimSpace(row[t.currency])),
		DateText:     strings.TrimSpace(row[t.date]),
		CloseText:    strings.TrimSpace(row[t.close]),
	}, nil
}
