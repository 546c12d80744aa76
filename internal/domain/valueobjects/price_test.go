// Package valueobjects_test demonstrates domain layer testing.
// Domain tests have NO external dependencies - pure unit tests.
package valueobjects_test

import (
	"errors"
	"testing"

	"github.com/Haleralex/storehub/internal/domain/valueobjects"
)

// TestNewPrice tests parsing and validation rules.
func TestNewPrice(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    string
		wantErr error
	}{
		{name: "Valid amount", amount: "100.50", want: "100.50"},
		{name: "Whole amount", amount: "7", want: "7.00"},
		{name: "Zero amount", amount: "0", want: "0.00"},
		{name: "Negative", amount: "-1", wantErr: valueobjects.ErrNegativePrice},
		{name: "Garbage", amount: "abc", wantErr: valueobjects.ErrInvalidPrice},
		{name: "Too precise", amount: "1.005", wantErr: valueobjects.ErrPriceScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := valueobjects.NewPrice(tt.amount)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewPrice(%q) error = %v, want %v", tt.amount, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if price.String() != tt.want {
				t.Errorf("String() = %s, want %s", price.String(), tt.want)
			}
		})
	}
}

// TestPrice_Times tests full price calculation for a transaction.
func TestPrice_Times(t *testing.T) {
	price, _ := valueobjects.NewPrice("19.99")

	total, err := price.Times(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.String() != "59.97" {
		t.Errorf("Times(3) = %s, want 59.97", total)
	}

	// Immutability: receiver is unchanged
	if price.String() != "19.99" {
		t.Errorf("price was mutated: %s", price)
	}

	if _, err := price.Times(-1); err == nil {
		t.Error("expected error for negative quantity")
	}
}

func TestPrice_Equals(t *testing.T) {
	a, _ := valueobjects.NewPrice("1.5")
	b, _ := valueobjects.NewPrice("1.50")
	if !a.Equals(b) {
		t.Error("1.5 should equal 1.50")
	}
	if !valueobjects.ZeroPrice().IsZero() {
		t.Error("ZeroPrice should be zero")
	}
	if got := a.Add(b).String(); got != "3.00" {
		t.Errorf("Add = %s, want 3.00", got)
	}
}
