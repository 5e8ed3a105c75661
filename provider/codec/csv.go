package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Davphla/kiln-sos/rate"
	"golang.org/x/text/encoding/charmap"
)

// CSV decodes a comma separated dataset whose header row names the date, close and currency
// columns in any order. charset selects a single byte encoding for spreadsheet exports, empty
// or utf-8 reads the data as is
func CSV(charset string) DecodeFunc {
	return func(b []byte) ([]rate.Observation, error) {
		r, err := charsetReader(charset, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}

		decoder := csv.NewReader(r)
		decoder.TrimLeadingSpace = true

		var (
			t    table
			list []rate.Observation
		)

		idx := 0
	TokenLoop:
		for {
			line, err := decoder.Read()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break TokenLoop
				}

				var parseError *csv.ParseError
				if errors.As(err, &parseError) {
					return nil, fmt.Errorf("%w: %v", ErrDecodeToken, parseError.Error())
				}

				return nil, fmt.Errorf("csv decoder read: %w", err)
			}

			if idx == 0 {
				t, err = newTable(line)
				if err != nil {
					return nil, err
				}
				idx++
				continue TokenLoop
			}

			o, err := t.observation(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", idx+1, err)
			}

			list = append(list, o)
			idx++
		}

		if idx == 0 {
			return nil, fmt.Errorf("%w: missing header", ErrAttributeNotValid)
		}

		return list, nil
	}
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8", "us-ascii":
		return input, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder().Reader(input), nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrCharsetNotSupported, charset)
}
