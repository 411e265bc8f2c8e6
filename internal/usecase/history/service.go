package history

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/usecase/symbol"
)

// SeriesResolver returns a daily close series keyed by day, empty when unavailable
type SeriesResolver interface {
	ResolveSeries(ctx context.Context, symbol string, class domain.AssetClass) map[time.Time]decimal.Decimal
}

// HistoryService reconstructs the portfolio value over time
type HistoryService struct {
	LotRepo domain.LotRepository
	Prices  SeriesResolver
	log     zerolog.Logger
}

// NewHistoryService creates a new HistoryService instance
func NewHistoryService(lotRepo domain.LotRepository, prices SeriesResolver, log zerolog.Logger) *HistoryService {
	return &HistoryService{
		LotRepo: lotRepo,
		Prices:  prices,
		log:     log.With().Str("service", "history").Logger(),
	}
}

// BuildPortfolioHistory returns total value and total invested for each date of the timeline.
// Logic:
//  1. Fetch one price series per distinct non-crypto symbol, skipping empty ones
//  2. The dates of the first non-empty series form the timeline
//  3. For each date, every lot bought on or before it adds its cost to invested and
//     its quantity times the last known price of its own symbol to value
//
// Missing prices are carried forward per symbol, never borrowed from another symbol.
func (s *HistoryService) BuildPortfolioHistory(ctx context.Context) ([]domain.HistoryPoint, error) {
	lots, err := s.LotRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}

	tracked := make([]*domain.Lot, 0, len(lots))
	for _, lot := range lots {
		if lot.AssetClass == domain.AssetClassCrypto {
			continue
		}
		tracked = append(tracked, lot)
	}

	series := make(map[string]map[time.Time]decimal.Decimal)
	fetched := make(map[string]struct{})
	var axis []time.Time

	for _, lot := range tracked {
		canonical := symbol.Normalize(lot.Symbol, lot.AssetClass)
		if _, ok := fetched[canonical]; ok {
			continue
		}
		fetched[canonical] = struct{}{}

		prices := s.Prices.ResolveSeries(ctx, lot.Symbol, lot.AssetClass)
		if len(prices) == 0 {
			s.log.Debug().Str("symbol", canonical).Msg("No price history, skipping symbol")
			continue
		}
		series[canonical] = prices

		if axis == nil {
			axis = sortedDays(prices)
		}
	}

	points := make([]domain.HistoryPoint, 0, len(axis))
	lastKnown := make(map[string]decimal.Decimal)

	for _, day := range axis {
		invested := decimal.Zero
		value := decimal.Zero

		for _, lot := range tracked {
			if lot.BuyDay().After(day) {
				continue
			}
			invested = invested.Add(lot.BuyPrice.Mul(lot.Quantity))

			canonical := symbol.Normalize(lot.Symbol, lot.AssetClass)
			if price, ok := series[canonical][day]; ok {
				lastKnown[canonical] = price
			}
			if price, ok := lastKnown[canonical]; ok {
				value = value.Add(price.Mul(lot.Quantity))
			}
		}

		points = append(points, domain.HistoryPoint{
			Date:          day,
			TotalValue:    value,
			TotalInvested: invested,
		})
	}

	return points, nil
}

func sortedDays(prices map[time.Time]decimal.Decimal) []time.Time {
	days := make([]time.Time, 0, len(prices))
	for day := range prices {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}
