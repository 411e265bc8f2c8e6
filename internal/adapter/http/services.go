package http

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/usecase/ledger"
)

// LedgerService is the lot ledger as used by the API
type LedgerService interface {
	AddOrMergeLot(ctx context.Context, input ledger.AddLotInput) (*domain.Lot, error)
	RemoveQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) (*domain.Lot, error)
	RemoveLot(ctx context.Context, id uuid.UUID) error
	BackfillMissingBuyPrices(ctx context.Context) ([]*domain.Lot, error)
	ListLots(ctx context.Context) ([]*domain.Lot, error)
}

// PerformanceService values the portfolio
type PerformanceService interface {
	ComputePerformance(ctx context.Context) (*domain.PortfolioPerformance, error)
	ComputePerformanceByID(ctx context.Context, id uuid.UUID) (*domain.PortfolioPerformance, error)
}

// HistoryService reconstructs the portfolio timeline
type HistoryService interface {
	BuildPortfolioHistory(ctx context.Context) ([]domain.HistoryPoint, error)
}

// WatchlistService manages followed symbols
type WatchlistService interface {
	Add(ctx context.Context, symbol string, class domain.AssetClass) (*domain.WatchlistAsset, error)
	Remove(ctx context.Context, symbol string) error
	List(ctx context.Context) ([]*domain.WatchlistAsset, error)
	LiveQuotes(ctx context.Context) ([]*domain.Quote, error)
	QuoteForSymbol(ctx context.Context, symbol string) (*domain.Quote, error)
}

// SectorService manages followed sectors
type SectorService interface {
	Catalog() []string
	Add(ctx context.Context, name string) (*domain.WatchlistSector, error)
	Remove(ctx context.Context, name string) error
	List(ctx context.Context) ([]*domain.WatchlistSector, error)
}
