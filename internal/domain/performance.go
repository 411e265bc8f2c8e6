package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PercentPlaces is the number of decimal places kept for P&L percentages
const PercentPlaces = 4

var hundred = decimal.NewFromInt(100)

// PerformanceRecord is the derived, per-lot view of a position. It is never persisted.
type PerformanceRecord struct {
	LotID        uuid.UUID
	Symbol       string
	AssetClass   AssetClass
	Quantity     decimal.Decimal
	BuyPrice     decimal.Decimal
	BuyTime      time.Time
	CurrentPrice decimal.Decimal
	Invested     decimal.Decimal // BuyPrice * Quantity
	CurrentValue decimal.Decimal // CurrentPrice * Quantity
	PnL          decimal.Decimal // CurrentValue - Invested
	PnLPercent   decimal.Decimal
}

// PortfolioPerformance aggregates records into portfolio-level totals
type PortfolioPerformance struct {
	Records           []PerformanceRecord
	TotalInvested     decimal.Decimal
	TotalCurrentValue decimal.Decimal
	TotalPnL          decimal.Decimal
	TotalPnLPercent   decimal.Decimal
}

// HistoryPoint is one date of the reconstructed portfolio timeline
type HistoryPoint struct {
	Date          time.Time
	TotalValue    decimal.Decimal
	TotalInvested decimal.Decimal
}

// PricePoint is a single dated close price
type PricePoint struct {
	Date  time.Time
	Value decimal.Decimal
}

// NewPerformanceRecord values a lot at the given current price
func NewPerformanceRecord(lot *Lot, currentPrice decimal.Decimal) PerformanceRecord {
	invested := lot.BuyPrice.Mul(lot.Quantity)
	current := currentPrice.Mul(lot.Quantity)
	pnl := current.Sub(invested)

	return PerformanceRecord{
		LotID:        lot.ID,
		Symbol:       lot.Symbol,
		AssetClass:   lot.AssetClass,
		Quantity:     lot.Quantity,
		BuyPrice:     lot.BuyPrice,
		BuyTime:      lot.BuyTime,
		CurrentPrice: currentPrice,
		Invested:     invested,
		CurrentValue: current,
		PnL:          pnl,
		PnLPercent:   PnLPercent(pnl, invested),
	}
}

// NewPortfolioPerformance sums the records into portfolio totals
func NewPortfolioPerformance(records []PerformanceRecord) *PortfolioPerformance {
	totalInvested := decimal.Zero
	totalCurrent := decimal.Zero
	for _, r := range records {
		totalInvested = totalInvested.Add(r.Invested)
		totalCurrent = totalCurrent.Add(r.CurrentValue)
	}
	totalPnL := totalCurrent.Sub(totalInvested)

	if records == nil {
		records = []PerformanceRecord{}
	}

	return &PortfolioPerformance{
		Records:           records,
		TotalInvested:     totalInvested,
		TotalCurrentValue: totalCurrent,
		TotalPnL:          totalPnL,
		TotalPnLPercent:   PnLPercent(totalPnL, totalInvested),
	}
}

// PnLPercent returns pnl / invested * 100 rounded half-up to PercentPlaces.
// It is zero when nothing was invested.
func PnLPercent(pnl, invested decimal.Decimal) decimal.Decimal {
	if invested.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return pnl.Mul(hundred).DivRound(invested, PercentPlaces)
}
