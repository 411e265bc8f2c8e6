package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

// watchlistRepository implements domain.WatchlistRepository
type watchlistRepository struct {
	db *DB
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(db *DB) domain.WatchlistRepository {
	return &watchlistRepository{db: db}
}

// FindAll retrieves every watchlist entry ordered by symbol
func (r *watchlistRepository) FindAll(ctx context.Context) ([]*domain.WatchlistAsset, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, symbol, asset_class FROM watchlist_assets ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	assets := make([]*domain.WatchlistAsset, 0)
	for rows.Next() {
		asset, err := scanWatchlistAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist: %w", err)
	}

	return assets, nil
}

// FindBySymbol retrieves an entry by symbol, ignoring case
func (r *watchlistRepository) FindBySymbol(ctx context.Context, symbol string) (*domain.WatchlistAsset, error) {
	query := `SELECT id, symbol, asset_class FROM watchlist_assets WHERE UPPER(symbol) = UPPER($1)`

	asset, err := scanWatchlistAsset(r.db.QueryRowContext(ctx, query, symbol))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("watchlist entry %s: %w", symbol, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get watchlist entry: %w", err)
	}
	return asset, nil
}

// Save inserts an entry or updates it when the ID already exists
func (r *watchlistRepository) Save(ctx context.Context, asset *domain.WatchlistAsset) error {
	query := `
		INSERT INTO watchlist_assets (id, symbol, asset_class)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			symbol = excluded.symbol,
			asset_class = excluded.asset_class
	`

	if _, err := r.db.ExecContext(ctx, query, asset.ID.String(), asset.Symbol, string(asset.AssetClass)); err != nil {
		return fmt.Errorf("failed to save watchlist entry: %w", err)
	}
	return nil
}

// DeleteBySymbol removes an entry by symbol, ignoring case. Unknown symbols are a no-op.
func (r *watchlistRepository) DeleteBySymbol(ctx context.Context, symbol string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM watchlist_assets WHERE UPPER(symbol) = UPPER($1)`, symbol); err != nil {
		return fmt.Errorf("failed to delete watchlist entry: %w", err)
	}
	return nil
}

func scanWatchlistAsset(row rowScanner) (*domain.WatchlistAsset, error) {
	var (
		asset     domain.WatchlistAsset
		id, class string
	)
	if err := row.Scan(&id, &asset.Symbol, &class); err != nil {
		return nil, err
	}

	var err error
	if asset.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist entry id: %w", err)
	}
	asset.AssetClass = domain.AssetClass(class)

	return &asset, nil
}
