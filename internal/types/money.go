// Package types holds small value objects shared across packages.
package types

import "fmt"

// Money is a currency-tagged amount in the currency's minor unit.
type Money struct {
	Amount   int64
	Currency string
}

// Add returns the sum of m and other. Mixing currencies is a programming
// error and panics.
func (m Money) Add(other Money) Money {
	if m.Currency != other.Currency {
		panic(fmt.Sprintf("types: cannot add %s to %s", other.Currency, m.Currency))
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
