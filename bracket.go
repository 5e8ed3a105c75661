package kilnsos

import (
	"fmt"
	"time"

	"github.com/Davphla/kiln-sos/rate"
)

// BracketResult is the pair of observations around a target date
type BracketResult struct {
	PriorDate time.Time
	NextDate  time.Time
	PriorRate float64
	NextRate  float64
}

// Bracket scans sorted, ascending by date, and returns the latest observation at or before target
// together with the first observation strictly after it. An observation dated exactly on target counts
// as prior, so a target on the last observation has no posterior
func Bracket(sorted []rate.Parsed, target time.Time) (BracketResult, error) {
	var (
		res         BracketResult
		prior, next bool
	)

	if len(sorted) == 0 {
		return res, ErrNoDataForCurrency
	}

	for _, r := range sorted {
		if !r.Date.After(target) {
			res.PriorDate = r.Date
			res.PriorRate = r.Rate
			prior = true
			continue
		}

		res.NextDate = r.Date
		res.NextRate = r.Rate
		next = true
		break
	}

	if !prior {
		return BracketResult{}, fmt.Errorf("%w: %s is before %s",
			ErrNoPriorObservation, target.Format(dateLayout), sorted[0].Date.Format(dateLayout))
	}

	if !next {
		return BracketResult{}, fmt.Errorf("%w: %s is on or after %s",
			ErrNoPosteriorObservation, target.Format(dateLayout), sorted[len(sorted)-1].Date.Format(dateLayout))
	}

	return res, nil
}

// InterpolationWeights returns the linear weights of the prior and next observations for target.
// Both weights sum to one. A bracket without positive width is rejected
func InterpolationWeights(prior, next, target time.Time) (weightPrior, weightNext float64, err error) {
	span := rate.DaysBetween(prior, next)
	if span <= 0 {
		return 0, 0, fmt.Errorf("%w: %s to %s", ErrInvalidBracket, prior.Format(dateLayout), next.Format(dateLayout))
	}

	elapsed := rate.DaysBetween(prior, target)

	return (span - elapsed) / span, elapsed / span, nil
}
