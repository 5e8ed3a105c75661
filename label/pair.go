package label

// Pair is a currency pair code as it appears in a rate dataset, e.g. EURUSD.
// Codes are free-form and compared by exact equality, no case folding is applied
type Pair string

const (
	EURUSD Pair = "EURUSD"
	BRLUSD Pair = "BRLUSD"
)

func (p Pair) String() string {
	return string(p)
}
