package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lot represents one recorded purchase in the portfolio
type Lot struct {
	ID         uuid.UUID
	Symbol     string // Stored form (e.g. "BTC", "TCS.NS", "^FVX"), normalized before pricing
	AssetClass AssetClass
	Quantity   decimal.Decimal // Always positive while the lot exists
	BuyPrice   decimal.Decimal // Zero means the historical price could not be resolved
	BuyTime    time.Time
}

// Validate ensures the lot adheres to domain rules
func (l *Lot) Validate() error {
	if strings.TrimSpace(l.Symbol) == "" {
		return fmt.Errorf("%w: lot symbol cannot be empty", ErrInvalidInput)
	}
	if err := l.AssetClass.Validate(); err != nil {
		return err
	}
	if l.Quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: lot quantity must be positive", ErrInvalidInput)
	}
	if l.BuyPrice.IsNegative() {
		return fmt.Errorf("%w: lot buy price cannot be negative", ErrInvalidInput)
	}
	if l.BuyTime.IsZero() {
		return fmt.Errorf("%w: lot buy time is required", ErrInvalidInput)
	}
	return nil
}

// HasResolvedBuyPrice reports whether the buy price is a real historical price
func (l *Lot) HasResolvedBuyPrice() bool {
	return !l.BuyPrice.IsZero()
}

// BuyDay returns the start of the calendar day of the buy time.
// Lots are merged on (symbol, BuyDay).
func (l *Lot) BuyDay() time.Time {
	return StartOfDay(l.BuyTime)
}

// StartOfDay truncates t to midnight of its calendar date, in UTC
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
