package performance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/usecase/symbol"
)

// PerformanceService values the portfolio against live quotes
type PerformanceService struct {
	LotRepo domain.LotRepository
	Quotes  domain.QuoteSource
	log     zerolog.Logger
}

// NewPerformanceService creates a new PerformanceService instance
func NewPerformanceService(lotRepo domain.LotRepository, quotes domain.QuoteSource, log zerolog.Logger) *PerformanceService {
	return &PerformanceService{
		LotRepo: lotRepo,
		Quotes:  quotes,
		log:     log.With().Str("service", "performance").Logger(),
	}
}

// ComputePerformance values every lot at its live price and rolls the records up
// into portfolio totals.
// A lot whose quote cannot be fetched is valued at its buy price, so one bad
// quote never fails the whole portfolio.
func (s *PerformanceService) ComputePerformance(ctx context.Context) (*domain.PortfolioPerformance, error) {
	lots, err := s.LotRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}

	records := make([]domain.PerformanceRecord, 0, len(lots))
	for _, lot := range lots {
		records = append(records, domain.NewPerformanceRecord(lot, s.livePrice(ctx, lot)))
	}

	return domain.NewPortfolioPerformance(records), nil
}

// ComputePerformanceByID checks that the lot exists and returns the performance
// of the whole portfolio.
// TODO: return the single-lot record once product confirms the intended contract.
func (s *PerformanceService) ComputePerformanceByID(ctx context.Context, id uuid.UUID) (*domain.PortfolioPerformance, error) {
	if _, err := s.LotRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.ComputePerformance(ctx)
}

// livePrice returns the current price of the lot, falling back to its buy price
func (s *PerformanceService) livePrice(ctx context.Context, lot *domain.Lot) (price decimal.Decimal) {
	canonical := symbol.Normalize(lot.Symbol, lot.AssetClass)

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Interface("panic", r).
				Str("symbol", canonical).
				Msg("Quote lookup panicked, using buy price")
			price = lot.BuyPrice
		}
	}()

	q, err := s.Quotes.Quote(ctx, lot.AssetClass, canonical)
	if err != nil || q == nil {
		s.log.Warn().Err(err).
			Str("symbol", canonical).
			Str("asset_class", string(lot.AssetClass)).
			Msg("Live quote unavailable, using buy price")
		return lot.BuyPrice
	}
	return q.Price
}
