package kilnsos

import (
	"errors"
	"fmt"
	"time"

	"github.com/Davphla/kiln-sos/label"
	"github.com/Davphla/kiln-sos/rate"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNoDataForCurrency      = errors.New("no data for currency")
	ErrNoPriorObservation     = errors.New("no prior observation, target date is before all available dates")
	ErrNoPosteriorObservation = errors.New("no posterior observation, target date is at or after all available dates")
	ErrInvalidBracket         = errors.New("invalid bracket")

	ErrInvalidDateFormat = rate.ErrInvalidDateFormat
	ErrInvalidRateValue  = rate.ErrInvalidRateValue
)

const dateLayout = "2006-01-02"

type Option func(*Calculator)

// WithLogger set the logger receiving the failures swallowed by ForwardRate and HedgeCost
func WithLogger(logger log.Logger) Option {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// WithLocation set the location of the midnight dates parsed from observations
func WithLocation(loc *time.Location) Option {
	return func(c *Calculator) {
		c.parse = rate.DateParserIn(loc)
	}
}

// WithDateParser set a custom parser for the date text of observations
func WithDateParser(parse rate.DateParser) Option {
	return func(c *Calculator) {
		c.parse = parse
	}
}

// New return Calculator. Dates are parsed in time.Local unless WithLocation or WithDateParser is given
func New(opts ...Option) *Calculator {
	c := &Calculator{
		logger: log.NewNopLogger(),
		parse:  rate.DateParserIn(time.Local),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Calculator estimates forward rates and hedging costs from an in-memory set of observations.
// It holds no state besides its options and is safe for concurrent use
type Calculator struct {
	logger log.Logger
	parse  rate.DateParser
}

// ForwardRateResult is a forward rate with the observations it was interpolated from
type ForwardRateResult struct {
	ForwardRate float64
	PriorDate   time.Time
	NextDate    time.Time
	PriorRate   float64
	NextRate    float64
}

func (r ForwardRateResult) String() string {
	return fmt.Sprintf(
		"Forward: %f, Prior: %s %f, Next: %s %f",
		r.ForwardRate,
		r.PriorDate.Format(dateLayout),
		r.PriorRate,
		r.NextDate.Format(dateLayout),
		r.NextRate,
	)
}

// ForwardRate returns the forward rate of pair at target, ok is false when it can not be computed.
// Use ForwardRateDetails to find out why
func (c *Calculator) ForwardRate(records []rate.Observation, pair label.Pair, target time.Time) (float64, bool) {
	res, err := c.ForwardRateDetails(records, pair, target)
	if err != nil {
		c.unavailable("forward rate", pair, target, err)
		return 0, false
	}

	return res.ForwardRate, true
}

// ForwardRateDetails interpolates the rate of pair at target between the two observations around it
func (c *Calculator) ForwardRateDetails(
	records []rate.Observation, pair label.Pair, target time.Time,
) (ForwardRateResult, error) {
	res, _, err := c.forward(records, pair, target)
	return res, err
}

// CurrentRate returns the rate of the earliest observation of pair. This is the baseline of the
// dataset, not a live quote
func (c *Calculator) CurrentRate(records []rate.Observation, pair label.Pair) (float64, error) {
	if pair == "" {
		return 0, fmt.Errorf("%w: empty currency pair", ErrInvalidInput)
	}

	sorted, err := c.sorted(records, pair)
	if err != nil {
		return 0, err
	}

	return sorted[0].Rate, nil
}

// HedgeCost returns the proportional cost of locking the forward rate of pair at target,
// ok is false when it can not be computed
func (c *Calculator) HedgeCost(records []rate.Observation, pair label.Pair, target time.Time) (float64, bool) {
	cost, err := c.HedgeCostDetails(records, pair, target)
	if err != nil {
		c.unavailable("hedge cost", pair, target, err)
		return 0, false
	}

	return cost, true
}

// HedgeCostDetails returns forward rate / current rate - 1. A negative cost is a benefit
func (c *Calculator) HedgeCostDetails(records []rate.Observation, pair label.Pair, target time.Time) (float64, error) {
	res, sorted, err := c.forward(records, pair, target)
	if err != nil {
		return 0, err
	}

	return cost(res.ForwardRate, sorted[0].Rate)
}

func cost(forward, current float64) (float64, error) {
	if current == 0 {
		return 0, fmt.Errorf("%w: current rate is zero", ErrInvalidRateValue)
	}

	return forward/current - 1, nil
}

// forward returns the forward rate and the sorted observations of pair it was computed from
func (c *Calculator) forward(
	records []rate.Observation, pair label.Pair, target time.Time,
) (ForwardRateResult, []rate.Parsed, error) {
	var res ForwardRateResult

	if err := validate(records, pair, target); err != nil {
		return res, nil, err
	}

	sorted, err := c.sorted(records, pair)
	if err != nil {
		return res, nil, err
	}

	b, err := Bracket(sorted, target)
	if err != nil {
		return res, nil, fmt.Errorf("bracket %s: %w", pair, err)
	}

	wPrior, wNext, err := InterpolationWeights(b.PriorDate, b.NextDate, target)
	if err != nil {
		return res, nil, fmt.Errorf("interpolation weights %s: %w", pair, err)
	}

	return ForwardRateResult{
		ForwardRate: wPrior*b.PriorRate + wNext*b.NextRate,
		PriorDate:   b.PriorDate,
		NextDate:    b.NextDate,
		PriorRate:   b.PriorRate,
		NextRate:    b.NextRate,
	}, sorted, nil
}

func (c *Calculator) sorted(records []rate.Observation, pair label.Pair) ([]rate.Parsed, error) {
	sorted, err := rate.FilterAndSort(records, pair, c.parse)
	if err != nil {
		return nil, fmt.Errorf("filter and sort %s: %w", pair, err)
	}

	if len(sorted) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDataForCurrency, pair)
	}

	return sorted, nil
}

func (c *Calculator) unavailable(what string, pair label.Pair, target time.Time, err error) {
	_ = level.Debug(c.logger).Log(
		"msg", what+" unavailable",
		"pair", pair,
		"target", target.Format(dateLayout),
		"err", err,
	)
}

func validate(records []rate.Observation, pair label.Pair, target time.Time) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: empty records", ErrInvalidInput)
	}

	if pair == "" {
		return fmt.Errorf("%w: empty currency pair", ErrInvalidInput)
	}

	if target.IsZero() {
		return fmt.Errorf("%w: zero target date", ErrInvalidInput)
	}

	return nil
}
