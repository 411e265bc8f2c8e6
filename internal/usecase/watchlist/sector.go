package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

var sectorCatalog = []string{
	"Technology",
	"Financials",
	"Healthcare",
	"Consumer Discretionary",
	"Consumer Staples",
	"Industrials",
	"Energy",
	"Utilities",
	"Materials",
	"Real Estate",
	"Communication Services",
}

// SectorService manages the market sectors the user follows
type SectorService struct {
	SectorRepo domain.SectorRepository
	log        zerolog.Logger
}

// NewSectorService creates a new SectorService instance
func NewSectorService(sectorRepo domain.SectorRepository, log zerolog.Logger) *SectorService {
	return &SectorService{
		SectorRepo: sectorRepo,
		log:        log.With().Str("service", "sector").Logger(),
	}
}

// Catalog returns the known sector names
func (s *SectorService) Catalog() []string {
	out := make([]string, len(sectorCatalog))
	copy(out, sectorCatalog)
	return out
}

// Add follows a sector. Adding a sector twice returns the existing entry.
func (s *SectorService) Add(ctx context.Context, name string) (*domain.WatchlistSector, error) {
	normalized := NormalizeSectorName(name)
	if normalized == "" {
		return nil, fmt.Errorf("%w: sector name cannot be empty", domain.ErrInvalidInput)
	}

	existing, err := s.SectorRepo.FindByName(ctx, normalized)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up sector: %w", err)
	}

	sector := &domain.WatchlistSector{ID: uuid.New(), Name: normalized}
	if err := s.SectorRepo.Save(ctx, sector); err != nil {
		return nil, fmt.Errorf("failed to save sector: %w", err)
	}

	s.log.Info().Str("sector", normalized).Msg("Sector added to watchlist")

	return sector, nil
}

// Remove stops following a sector, ignoring case
func (s *SectorService) Remove(ctx context.Context, name string) error {
	return s.SectorRepo.DeleteByName(ctx, strings.TrimSpace(name))
}

// List returns every followed sector
func (s *SectorService) List(ctx context.Context) ([]*domain.WatchlistSector, error) {
	return s.SectorRepo.FindAll(ctx)
}

// NormalizeSectorName maps a name to its catalog spelling, or capitalizes it
// ("real estate" -> "Real Estate", "biotech" -> "Biotech").
func NormalizeSectorName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	for _, sector := range sectorCatalog {
		if strings.EqualFold(sector, trimmed) {
			return sector
		}
	}
	runes := []rune(trimmed)
	return strings.ToUpper(string(runes[:1])) + strings.ToLower(string(runes[1:]))
}
