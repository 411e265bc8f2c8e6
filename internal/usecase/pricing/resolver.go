package pricing

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/usecase/symbol"
)

// Resolver resolves historical close prices and never fails.
// A zero price is the "unresolved" sentinel and must not be used as a real price.
type Resolver struct {
	Source domain.HistoricalPriceSource
	log    zerolog.Logger
}

// NewResolver creates a new Resolver instance
func NewResolver(source domain.HistoricalPriceSource, log zerolog.Logger) *Resolver {
	return &Resolver{
		Source: source,
		log:    log.With().Str("service", "pricing").Logger(),
	}
}

// Resolve returns the close price of the symbol on the given day.
// Source errors and negative prices are logged and reported as zero.
func (r *Resolver) Resolve(ctx context.Context, sym string, class domain.AssetClass, day time.Time) decimal.Decimal {
	canonical := symbol.Normalize(sym, class)
	day = domain.StartOfDay(day)

	price, err := r.Source.PriceOn(ctx, canonical, day)
	if err != nil {
		r.log.Warn().Err(err).
			Str("symbol", canonical).
			Time("day", day).
			Msg("Historical price unavailable")
		return decimal.Zero
	}
	if price.IsNegative() {
		r.log.Warn().
			Str("symbol", canonical).
			Str("price", price.String()).
			Msg("Discarding negative historical price")
		return decimal.Zero
	}
	if price.IsZero() {
		r.log.Info().Str("symbol", canonical).Time("day", day).Msg("Historical price unresolved")
	}
	return price
}

// ResolveSeries returns the recent daily close series of the symbol keyed by day.
// The map is empty when the source fails or has no data.
func (r *Resolver) ResolveSeries(ctx context.Context, sym string, class domain.AssetClass) map[time.Time]decimal.Decimal {
	canonical := symbol.Normalize(sym, class)

	points, err := r.Source.Series(ctx, canonical)
	if err != nil {
		r.log.Warn().Err(err).Str("symbol", canonical).Msg("Price history unavailable")
		return map[time.Time]decimal.Decimal{}
	}

	series := make(map[time.Time]decimal.Decimal, len(points))
	for _, p := range points {
		if !p.Value.IsPositive() {
			continue
		}
		series[domain.StartOfDay(p.Date)] = p.Value
	}
	return series
}
