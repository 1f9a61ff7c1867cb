package money

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter uppercase code")
)

// Money is an amount in minor units (cents) with its currency code.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// New validates and creates a money value.
func New(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeAmount
	}
	if !validCurrency(currency) {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Times returns the amount multiplied by n (seat count pricing).
func (m Money) Times(n int) Money {
	return Money{Amount: m.Amount * int64(n), Currency: m.Currency}
}

// IsZero reports whether the value is the zero Money.
func (m Money) IsZero() bool {
	return m.Amount == 0 && m.Currency == ""
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.Amount/100, m.Amount%100, m.Currency)
}

func validCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
