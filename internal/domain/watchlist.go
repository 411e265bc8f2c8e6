package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// WatchlistAsset is a symbol followed for live quotes without being held
type WatchlistAsset struct {
	ID         uuid.UUID
	Symbol     string
	AssetClass AssetClass // May be empty for entries created before a class was known
}

// Validate ensures the watchlist entry adheres to domain rules
func (w *WatchlistAsset) Validate() error {
	if strings.TrimSpace(w.Symbol) == "" {
		return fmt.Errorf("%w: watchlist symbol cannot be empty", ErrInvalidInput)
	}
	if w.AssetClass != "" {
		return w.AssetClass.Validate()
	}
	return nil
}

// WatchlistSector is a market sector the user follows
type WatchlistSector struct {
	ID   uuid.UUID
	Name string
}
