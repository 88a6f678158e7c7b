// Package amount defines the engine's money unit: a signed satoshi count with
// the network-wide supply bound used to reject overflowing outputs.
package amount

// Amount is a signed count of satoshis, the indivisible unit of value moved
// by a transaction output.
type Amount int64

const (
	COIN         Amount = 100000000
	CENT         Amount = 1000000
	CurrencyUnit        = "BCC"

	// MaxMoney is the total possible supply, used as the upper bound for
	// any single value (the chain never mints more than this in total).
	MaxMoney = 21000000 * COIN
)

// MoneyRange reports whether value is within [0, MaxMoney], the range any
// legitimate output, input, or fee amount must fall inside.
func MoneyRange(value Amount) bool {
	return value >= 0 && value <= MaxMoney
}
