// Package valueobjects contains immutable value objects that represent domain concepts
// without identity. They are compared by their values, not by identity.
package valueobjects

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceScale - количество знаков после запятой, с которым хранится цена (NUMERIC(12,2)).
const PriceScale = 2

// Common domain errors for Price operations
var (
	ErrNegativePrice = errors.New("price cannot be negative")
	ErrInvalidPrice  = errors.New("invalid price format")
	ErrPriceScale    = errors.New("price has too many decimal places")
)

// Price represents a non-negative monetary amount in the store currency.
//
// Value Object Pattern:
// - Immutable: All operations return new Price instances
// - Self-validating: Cannot create invalid Price
type Price struct {
	amount decimal.Decimal
}

// NewPrice parses a decimal string (e.g., "100.50").
//
// Returns error if:
//   - Amount cannot be parsed
//   - Amount is negative
//   - Amount has more than PriceScale decimal places
func NewPrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("%w: %s", ErrInvalidPrice, s)
	}
	return PriceFromDecimal(d)
}

// PriceFromDecimal validates d as a price.
func PriceFromDecimal(d decimal.Decimal) (Price, error) {
	if d.IsNegative() {
		return Price{}, ErrNegativePrice
	}
	if !d.Equal(d.Round(PriceScale)) {
		return Price{}, fmt.Errorf("%w: %s", ErrPriceScale, d.String())
	}
	return Price{amount: d}, nil
}

// ZeroPrice returns a zero price.
func ZeroPrice() Price {
	return Price{amount: decimal.Zero}
}

// Decimal returns the underlying amount.
func (p Price) Decimal() decimal.Decimal {
	return p.amount
}

// String returns the amount with exactly PriceScale decimals. Example: "100.50"
func (p Price) String() string {
	return p.amount.StringFixed(PriceScale)
}

// Times returns the price of quantity items.
func (p Price) Times(quantity int) (Price, error) {
	if quantity < 0 {
		return Price{}, fmt.Errorf("%w: quantity %d", ErrNegativePrice, quantity)
	}
	return Price{amount: p.amount.Mul(decimal.NewFromInt(int64(quantity)))}, nil
}

// Add returns the sum of two prices.
func (p Price) Add(other Price) Price {
	return Price{amount: p.amount.Add(other.amount)}
}

// IsZero returns true if the amount is zero.
func (p Price) IsZero() bool {
	return p.amount.IsZero()
}

// Equals compares prices by value (1.5 == 1.50).
func (p Price) Equals(other Price) bool {
	return p.amount.Equal(other.amount)
}
