package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

// PriceResolver resolves a historical close price, returning zero when unresolved
type PriceResolver interface {
	Resolve(ctx context.Context, symbol string, class domain.AssetClass, day time.Time) decimal.Decimal
}

// AddLotInput represents the input for recording a buy
type AddLotInput struct {
	Symbol     string
	AssetClass domain.AssetClass
	Quantity   decimal.Decimal
	BuyTime    *time.Time
}

// LedgerService owns the portfolio lots and is their only writer
type LedgerService struct {
	LotRepo domain.LotRepository
	Prices  PriceResolver
	log     zerolog.Logger
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(lotRepo domain.LotRepository, prices PriceResolver, log zerolog.Logger) *LedgerService {
	return &LedgerService{
		LotRepo: lotRepo,
		Prices:  prices,
		log:     log.With().Str("service", "ledger").Logger(),
	}
}

// AddOrMergeLot records a buy.
// Logic:
//  1. Upper-case the symbol and normalize the buy time to the start of its day
//  2. If a lot with the same symbol was bought that day, add the quantity to it and
//     retry the historical price if it is still unresolved
//  3. Otherwise create a lot priced at the historical close of that day (zero if unresolved)
func (s *LedgerService) AddOrMergeLot(ctx context.Context, input AddLotInput) (*domain.Lot, error) {
	if input.BuyTime == nil || input.BuyTime.IsZero() {
		return nil, fmt.Errorf("%w: buy time is required", domain.ErrInvalidInput)
	}
	sym := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if sym == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidInput)
	}
	if err := input.AssetClass.Validate(); err != nil {
		return nil, err
	}
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	day := domain.StartOfDay(*input.BuyTime)

	existing, err := s.LotRepo.FindBySymbolAndDay(ctx, sym, day)
	switch {
	case err == nil:
		return s.merge(ctx, existing, input.Quantity, day)
	case errors.Is(err, domain.ErrNotFound):
		// First buy of this symbol on this day
	default:
		return nil, fmt.Errorf("failed to look up lot for %s: %w", sym, err)
	}

	lot := &domain.Lot{
		ID:         uuid.New(),
		Symbol:     sym,
		AssetClass: input.AssetClass,
		Quantity:   input.Quantity,
		BuyPrice:   s.Prices.Resolve(ctx, sym, input.AssetClass, day),
		BuyTime:    day,
	}

	if err := lot.Validate(); err != nil {
		return nil, err
	}

	if err := s.LotRepo.Save(ctx, lot); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("lot_id", lot.ID.String()).
		Str("symbol", lot.Symbol).
		Str("quantity", lot.Quantity.String()).
		Str("buy_price", lot.BuyPrice.String()).
		Msg("Lot created")

	return lot, nil
}

func (s *LedgerService) merge(ctx context.Context, lot *domain.Lot, quantity decimal.Decimal, day time.Time) (*domain.Lot, error) {
	lot.Quantity = lot.Quantity.Add(quantity)

	if !lot.HasResolvedBuyPrice() {
		if price := s.Prices.Resolve(ctx, lot.Symbol, lot.AssetClass, day); !price.IsZero() {
			lot.BuyPrice = price
		}
	}

	if err := s.LotRepo.Save(ctx, lot); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("lot_id", lot.ID.String()).
		Str("symbol", lot.Symbol).
		Str("quantity", lot.Quantity.String()).
		Msg("Lot merged")

	return lot, nil
}

// RemoveQuantity sells part or all of a lot.
// Returns the updated lot, or nil when the whole lot was removed.
func (s *LedgerService) RemoveQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) (*domain.Lot, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity to remove must be positive", domain.ErrInvalidInput)
	}

	lot, err := s.LotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if quantity.GreaterThanOrEqual(lot.Quantity) {
		if err := s.LotRepo.Delete(ctx, lot); err != nil {
			return nil, err
		}
		s.log.Info().Str("lot_id", id.String()).Msg("Lot removed")
		return nil, nil
	}

	lot.Quantity = lot.Quantity.Sub(quantity)
	if err := s.LotRepo.Save(ctx, lot); err != nil {
		return nil, err
	}

	return lot, nil
}

// RemoveLot deletes a lot regardless of its quantity
func (s *LedgerService) RemoveLot(ctx context.Context, id uuid.UUID) error {
	lot, err := s.LotRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.LotRepo.Delete(ctx, lot); err != nil {
		return err
	}
	s.log.Info().Str("lot_id", id.String()).Msg("Lot removed")
	return nil
}

// BackfillMissingBuyPrices retries the historical price of every lot whose buy
// price is unresolved and returns the lots that were updated.
// Running it again after a successful backfill changes nothing.
func (s *LedgerService) BackfillMissingBuyPrices(ctx context.Context) ([]*domain.Lot, error) {
	lots, err := s.LotRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}

	updated := make([]*domain.Lot, 0)
	for _, lot := range lots {
		if lot.BuyTime.IsZero() || !lot.Quantity.IsPositive() || lot.HasResolvedBuyPrice() {
			continue
		}

		price := s.Prices.Resolve(ctx, lot.Symbol, lot.AssetClass, lot.BuyDay())
		if price.IsZero() {
			continue
		}

		lot.BuyPrice = price
		if err := s.LotRepo.Save(ctx, lot); err != nil {
			return updated, err
		}
		updated = append(updated, lot)
	}

	s.log.Info().Int("updated", len(updated)).Msg("Backfill finished")

	return updated, nil
}

// ListLots returns every lot in the ledger
func (s *LedgerService) ListLots(ctx context.Context) ([]*domain.Lot, error) {
	return s.LotRepo.FindAll(ctx)
}

// GetLot returns a single lot
func (s *LedgerService) GetLot(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	return s.LotRepo.FindByID(ctx, id)
}
