package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

const (
	timeLayout = time.RFC3339Nano
	dayLayout  = "2006-01-02"
)

// lotRepository implements domain.LotRepository
type lotRepository struct {
	db *DB
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *DB) domain.LotRepository {
	return &lotRepository{db: db}
}

const lotColumns = `id, symbol, asset_class, quantity, buy_price, buy_time`

// FindAll retrieves every lot, oldest buy first
func (r *lotRepository) FindAll(ctx context.Context) ([]*domain.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots ORDER BY buy_time, symbol, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	lots := make([]*domain.Lot, 0)
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lots: %w", err)
	}

	return lots, nil
}

// FindByID retrieves a lot by its ID
func (r *lotRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`

	lot, err := scanLot(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lot %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lot by ID: %w", err)
	}
	return lot, nil
}

// FindBySymbolAndDay retrieves the lot of a symbol bought on the given calendar day
func (r *lotRepository) FindBySymbolAndDay(ctx context.Context, symbol string, day time.Time) (*domain.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE symbol = $1 AND buy_day = $2 ORDER BY id LIMIT 1`

	lot, err := scanLot(r.db.QueryRowContext(ctx, query, symbol, day.UTC().Format(dayLayout)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lot %s on %s: %w", symbol, day.Format(dayLayout), domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lot by symbol and day: %w", err)
	}
	return lot, nil
}

// Save inserts a lot or updates it when the ID already exists
func (r *lotRepository) Save(ctx context.Context, lot *domain.Lot) error {
	query := `
		INSERT INTO lots (id, symbol, asset_class, quantity, buy_price, buy_time, buy_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			symbol = excluded.symbol,
			asset_class = excluded.asset_class,
			quantity = excluded.quantity,
			buy_price = excluded.buy_price,
			buy_time = excluded.buy_time,
			buy_day = excluded.buy_day
	`

	buyTime := lot.BuyTime.UTC()
	_, err := r.db.ExecContext(ctx, query,
		lot.ID.String(),
		lot.Symbol,
		string(lot.AssetClass),
		lot.Quantity.String(),
		lot.BuyPrice.String(),
		buyTime.Format(timeLayout),
		buyTime.Format(dayLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save lot: %w", err)
	}

	return nil
}

// Delete removes a lot
func (r *lotRepository) Delete(ctx context.Context, lot *domain.Lot) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lots WHERE id = $1`, lot.ID.String())
	if err != nil {
		return fmt.Errorf("failed to delete lot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("lot %s: %w", lot.ID, domain.ErrNotFound)
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLot(row rowScanner) (*domain.Lot, error) {
	var (
		lot                   domain.Lot
		id, class             string
		quantityStr, priceStr string
		buyTimeStr            string
	)

	if err := row.Scan(&id, &lot.Symbol, &class, &quantityStr, &priceStr, &buyTimeStr); err != nil {
		return nil, err
	}

	var err error
	if lot.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to parse lot id: %w", err)
	}
	lot.AssetClass = domain.AssetClass(class)

	// Parse quantity and buy_price (DECIMAL stored as text)
	if lot.Quantity, err = decimal.NewFromString(quantityStr); err != nil {
		return nil, fmt.Errorf("failed to parse quantity: %w", err)
	}
	if lot.BuyPrice, err = decimal.NewFromString(priceStr); err != nil {
		return nil, fmt.Errorf("failed to parse buy_price: %w", err)
	}
	if lot.BuyTime, err = time.Parse(timeLayout, buyTimeStr); err != nil {
		return nil, fmt.Errorf("failed to parse buy_time: %w", err)
	}

	return &lot, nil
}
