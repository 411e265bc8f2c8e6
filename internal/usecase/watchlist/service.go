package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/usecase/symbol"
)

// WatchlistService manages followed symbols and their live quotes
type WatchlistService struct {
	WatchlistRepo domain.WatchlistRepository
	Quotes        domain.QuoteSource
	log           zerolog.Logger
}

// NewWatchlistService creates a new WatchlistService instance
func NewWatchlistService(watchlistRepo domain.WatchlistRepository, quotes domain.QuoteSource, log zerolog.Logger) *WatchlistService {
	return &WatchlistService{
		WatchlistRepo: watchlistRepo,
		Quotes:        quotes,
		log:           log.With().Str("service", "watchlist").Logger(),
	}
}

// Add follows a symbol.
// Logic:
//  1. Upper-case the symbol
//  2. If it is already followed, fill in its asset class when it had none
//  3. Otherwise create the entry
func (s *WatchlistService) Add(ctx context.Context, sym string, class domain.AssetClass) (*domain.WatchlistAsset, error) {
	sym = strings.ToUpper(strings.TrimSpace(sym))

	existing, err := s.WatchlistRepo.FindBySymbol(ctx, sym)
	switch {
	case err == nil:
		if existing.AssetClass == "" && class != "" {
			if err := class.Validate(); err != nil {
				return nil, err
			}
			existing.AssetClass = class
			if err := s.WatchlistRepo.Save(ctx, existing); err != nil {
				return nil, fmt.Errorf("failed to update watchlist entry: %w", err)
			}
		}
		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to look up watchlist entry: %w", err)
	}

	asset := &domain.WatchlistAsset{
		ID:         uuid.New(),
		Symbol:     sym,
		AssetClass: class,
	}
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	if err := s.WatchlistRepo.Save(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to save watchlist entry: %w", err)
	}

	s.log.Info().Str("symbol", sym).Msg("Symbol added to watchlist")

	return asset, nil
}

// Remove stops following a symbol. Unknown symbols are ignored.
func (s *WatchlistService) Remove(ctx context.Context, sym string) error {
	return s.WatchlistRepo.DeleteBySymbol(ctx, strings.TrimSpace(sym))
}

// List returns every followed symbol
func (s *WatchlistService) List(ctx context.Context) ([]*domain.WatchlistAsset, error) {
	return s.WatchlistRepo.FindAll(ctx)
}

// LiveQuotes returns a live quote for every followed symbol.
// Entries whose quote fails are logged and left out.
func (s *WatchlistService) LiveQuotes(ctx context.Context) ([]*domain.Quote, error) {
	assets, err := s.WatchlistRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}

	quotes := make([]*domain.Quote, 0, len(assets))
	for _, asset := range assets {
		q, err := s.quote(ctx, asset)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", asset.Symbol).Msg("Skipping watchlist quote")
			continue
		}
		quotes = append(quotes, q)
	}

	return quotes, nil
}

// QuoteForSymbol returns the live quote of a followed symbol
func (s *WatchlistService) QuoteForSymbol(ctx context.Context, sym string) (*domain.Quote, error) {
	asset, err := s.WatchlistRepo.FindBySymbol(ctx, strings.TrimSpace(sym))
	if err != nil {
		return nil, err
	}
	return s.quote(ctx, asset)
}

// quote fetches the quote of an entry; entries without a class are quoted as equities
func (s *WatchlistService) quote(ctx context.Context, asset *domain.WatchlistAsset) (*domain.Quote, error) {
	class := asset.AssetClass
	if class == "" {
		class = domain.AssetClassEquity
	}

	q, err := s.Quotes.Quote(ctx, class, symbol.Normalize(asset.Symbol, class))
	if err != nil {
		return nil, err
	}
	if q.Symbol == "" {
		q.Symbol = asset.Symbol
	}
	return q, nil
}
