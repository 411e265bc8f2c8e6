package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

// sectorRepository implements domain.SectorRepository
type sectorRepository struct {
	db *DB
}

// NewSectorRepository creates a new watchlist sector repository
func NewSectorRepository(db *DB) domain.SectorRepository {
	return &sectorRepository{db: db}
}

func (r *sectorRepository) FindAll(ctx context.Context) ([]*domain.WatchlistSector, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM watchlist_sectors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sectors: %w", err)
	}
	defer rows.Close()

	sectors := make([]*domain.WatchlistSector, 0)
	for rows.Next() {
		sector, err := scanSector(rows)
		if err != nil {
			return nil, err
		}
		sectors = append(sectors, sector)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sectors: %w", err)
	}

	return sectors, nil
}

func (r *sectorRepository) FindByName(ctx context.Context, name string) (*domain.WatchlistSector, error) {
	sector, err := scanSector(r.db.QueryRowContext(ctx,
		`SELECT id, name FROM watchlist_sectors WHERE LOWER(name) = LOWER($1)`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sector %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get sector: %w", err)
	}
	return sector, nil
}

func (r *sectorRepository) Save(ctx context.Context, sector *domain.WatchlistSector) error {
	query := `
		INSERT INTO watchlist_sectors (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name
	`
	if _, err := r.db.ExecContext(ctx, query, sector.ID.String(), sector.Name); err != nil {
		return fmt.Errorf("failed to save sector: %w", err)
	}
	return nil
}

func (r *sectorRepository) DeleteByName(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM watchlist_sectors WHERE LOWER(name) = LOWER($1)`, name); err != nil {
		return fmt.Errorf("failed to delete sector: %w", err)
	}
	return nil
}

func scanSector(row rowScanner) (*domain.WatchlistSector, error) {
	var (
		sector domain.WatchlistSector
		id     string
	)
	if err := row.Scan(&id, &sector.Name); err != nil {
		return nil, err
	}

	var err error
	if sector.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to parse sector id: %w", err)
	}
	return &sector, nil
}
