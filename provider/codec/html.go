package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Davphla/kiln-sos/internal/strutil"
	"github.com/Davphla/kiln-sos/rate"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// HTML decodes the first table of a page. The header cells (th) name the date, close and
// currency columns, every row of data cells (td) is an observation
func HTML() DecodeFunc {
	return func(b []byte) ([]rate.Observation, error) {
		root, err := html.Parse(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("%w: html parse: %v", ErrDecodeToken, err)
		}

		doc := goquery.NewDocumentFromNode(root)

		tbl := doc.Find("table").First()
		if tbl.Length() == 0 {
			return nil, fmt.Errorf("%w: no table", ErrAttributeNotValid)
		}

		var (
			header []string
			rows   [][]string
		)

		tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if th := tr.Find("th"); th.Length() > 0 && header == nil {
				header = cellTexts(th)
				return
			}

			if td := tr.Find("td"); td.Length() > 0 {
				rows = append(rows, cellTexts(td))
			}
		})

		if header == nil {
			return nil, fmt.Errorf("%w: table has no header", ErrAttributeNotValid)
		}

		t, err := newTable(header)
		if err != nil {
			return nil, err
		}

		list := make([]rate.Observation, 0, len(rows))
		for i, row := range rows {
			o, err := t.observation(row)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}

			list = append(list, o)
		}

		return list, nil
	}
}

func cellTexts(s *goquery.Selection) []string {
	return s.Map(func(_ int, cell *goquery.Selection) string {
		return strutil.RemoveExtraSpaces(strings.TrimSpace(cell.Text()))
	})
}
