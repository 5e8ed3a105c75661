package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Davphla/kiln-sos/label"
	"github.com/Davphla/kiln-sos/rate"
)

// JSON decodes an array of objects such as {"Date ": "01/02/2025", "Close": "1.0393", "Currency": "EURUSD"}.
// Keys are matched loosely, a column's own name beats its aliases. Values may be strings or numbers
func JSON() DecodeFunc {
	return func(b []byte) ([]rate.Observation, error) {
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				return nil, fmt.Errorf("%w: %v", ErrDecodeToken, err)
			}

			return nil, fmt.Errorf("json unmarshal: %w", err)
		}

		list := make([]rate.Observation, 0, len(items))
		for i, item := range items {
			keys := make([]string, 0, len(item))
			for key := range item {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			p := make(picker, 3)
			for idx, key := range keys {
				if err := p.add(key, idx); err != nil {
					return nil, fmt.Errorf("item %d: %w", i, err)
				}
			}

			fields := make(map[string]string, 3)
			for _, c := range []string{columnDate, columnClose, columnCurrency} {
				chosen, ok := p[c]
				if !ok {
					return nil, fmt.Errorf("%w: item %d has no %s", ErrAttributeNotValid, i, c)
				}

				v, err := scalar(item[chosen.name])
				if err != nil {
					return nil, fmt.Errorf("%w: item %d key %q: %v", ErrAttributeNotValid, i, chosen.name, err)
				}

				fields[c] = v
			}

			list = append(list, rate.Observation{
				CurrencyPair: label.Pair(fields[columnCurrency]),
				DateText:     fields[columnDate],
				CloseText:    fields[columnClose],
			})
		}

		return list, nil
	}
}

// scalar returns the text of a JSON string or number
func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", errors.New("empty value")
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[', 't', 'f', 'n':
		return "", fmt.Errorf("unexpected value %s", raw)
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	}
}
