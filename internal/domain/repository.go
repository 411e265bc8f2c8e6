package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotRepository defines the interface for lot persistence operations.
// Lookups of unknown lots return an error wrapping ErrNotFound.
type LotRepository interface {
	// FindAll retrieves every lot
	FindAll(ctx context.Context) ([]*Lot, error)

	// FindByID retrieves a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindBySymbolAndDay retrieves the lot bought on the given calendar day
	FindBySymbolAndDay(ctx context.Context, symbol string, day time.Time) (*Lot, error)

	// Save inserts or updates a lot
	Save(ctx context.Context, lot *Lot) error

	// Delete removes a lot
	Delete(ctx context.Context, lot *Lot) error
}

// WatchlistRepository defines the interface for watchlist persistence operations
type WatchlistRepository interface {
	// FindAll retrieves every watchlist entry
	FindAll(ctx context.Context) ([]*WatchlistAsset, error)

	// FindBySymbol retrieves an entry by symbol, ignoring case
	FindBySymbol(ctx context.Context, symbol string) (*WatchlistAsset, error)

	// Save inserts or updates an entry
	Save(ctx context.Context, asset *WatchlistAsset) error

	// DeleteBySymbol removes an entry by symbol, ignoring case
	DeleteBySymbol(ctx context.Context, symbol string) error
}

// SectorRepository defines the interface for watchlist sector persistence operations
type SectorRepository interface {
	FindAll(ctx context.Context) ([]*WatchlistSector, error)
	FindByName(ctx context.Context, name string) (*WatchlistSector, error)
	Save(ctx context.Context, sector *WatchlistSector) error
	DeleteByName(ctx context.Context, name string) error
}

// QuoteProvider fetches a live quote for an already-normalized symbol
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// QuoteSource fetches a live quote, dispatching on asset class
type QuoteSource interface {
	Quote(ctx context.Context, class AssetClass, symbol string) (*Quote, error)
}

// HistoricalPriceSource resolves historical close prices for a canonical symbol.
// Implementations may run out of process and are allowed to fail.
type HistoricalPriceSource interface {
	// PriceOn returns the close price for the given day
	PriceOn(ctx context.Context, symbol string, day time.Time) (decimal.Decimal, error)

	// Series returns the recent daily close series, sorted by date
	Series(ctx context.Context, symbol string) ([]PricePoint, error)
}
