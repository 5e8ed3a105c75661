package kilnsos

import (
	"fmt"
	"time"

	"github.com/Davphla/kiln-sos/label"
	"github.com/Davphla/kiln-sos/rate"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
)

// Horizon is a hedging period counted in calendar days from a start date
type Horizon struct {
	Days  int
	Label string
}

// DefaultHorizons the periods offered for locking a forward rate
var DefaultHorizons = []Horizon{
	{Days: 7, Label: "1 week"},
	{Days: 30, Label: "1 month"},
	{Days: 60, Label: "2 months"},
	{Days: 90, Label: "3 months"},
	{Days: 180, Label: "6 months"},
	{Days: 270, Label: "9 months"},
	{Days: 365, Label: "1 year"},
}

// Target returns the date the horizon ends at when started on from
func (h Horizon) Target(from time.Time) time.Time {
	return rate.AddDays(from, h.Days)
}

func (h Horizon) String() string {
	if h.Label != "" {
		return h.Label
	}

	return fmt.Sprintf("%d days", h.Days)
}

// HedgeQuote is the cost of hedging a pair over one horizon
type HedgeQuote struct {
	Pair        label.Pair
	Horizon     Horizon
	Target      time.Time
	ForwardRate float64
	CurrentRate float64
	Cost        float64
}

// CostPercent returns the cost in percent points
func (q HedgeQuote) CostPercent() decimal.Decimal {
	return decimal.NewFromFloat(q.Cost).Mul(hundred)
}

// NetYield returns apy, in percent points, reduced by the hedging cost
func (q HedgeQuote) NetYield(apy decimal.Decimal) decimal.Decimal {
	return NetYield(apy, q.Cost)
}

func (q HedgeQuote) String() string {
	return fmt.Sprintf(
		"Pair: %s, Horizon: %s, Target: %s, Forward: %f, Current: %f, Cost: %s%%",
		q.Pair,
		q.Horizon,
		q.Target.Format(dateLayout),
		q.ForwardRate,
		q.CurrentRate,
		q.CostPercent().StringFixed(2),
	)
}

// Quote returns the hedge quote of pair for a horizon starting on from
func (c *Calculator) Quote(records []rate.Observation, pair label.Pair, from time.Time, h Horizon) (HedgeQuote, error) {
	target := h.Target(from)

	res, sorted, err := c.forward(records, pair, target)
	if err != nil {
		return HedgeQuote{}, err
	}

	current := sorted[0].Rate

	hedgeCost, err := cost(res.ForwardRate, current)
	if err != nil {
		return HedgeQuote{}, err
	}

	return HedgeQuote{
		Pair:        pair,
		Horizon:     h,
		Target:      target,
		ForwardRate: res.ForwardRate,
		CurrentRate: current,
		Cost:        hedgeCost,
	}, nil
}

// Schedule quotes every horizon, DefaultHorizons when none is given. Quotes that could be computed
// are returned even when others failed, the failures are joined in the returned error
func (c *Calculator) Schedule(
	records []rate.Observation, pair label.Pair, from time.Time, horizons ...Horizon,
) ([]HedgeQuote, error) {
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}

	var result *multierror.Error

	quotes := make([]HedgeQuote, 0, len(horizons))
	for _, h := range horizons {
		q, err := c.Quote(records, pair, from, h)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("horizon %s: %w", h, err))
			continue
		}

		quotes = append(quotes, q)
	}

	return quotes, result.ErrorOrNil()
}
