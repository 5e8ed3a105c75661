package kilnsos

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidYield = errors.New("invalid yield")

var hundred = decimal.NewFromInt(100)

// ParseYield parses a yield in percent points such as "3.98%" or "3.98"
func ParseYield(text string) (decimal.Decimal, error) {
	token := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "%"))
	if token == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidYield)
	}

	d, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidYield, text, err)
	}

	return d, nil
}

// NetYield subtracts a proportional hedging cost from apy given in percent points
func NetYield(apy decimal.Decimal, cost float64) decimal.Decimal {
	return apy.Sub(decimal.NewFromFloat(cost).Mul(hundred))
}
