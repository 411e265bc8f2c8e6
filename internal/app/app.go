package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/simaogato/portfolio-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/portfolio-backend/internal/adapter/resolver"
	"github.com/simaogato/portfolio-backend/internal/adapter/yahoo"
	"github.com/simaogato/portfolio-backend/internal/config"
	"github.com/simaogato/portfolio-backend/internal/usecase/history"
	"github.com/simaogato/portfolio-backend/internal/usecase/ledger"
	"github.com/simaogato/portfolio-backend/internal/usecase/performance"
	"github.com/simaogato/portfolio-backend/internal/usecase/pricing"
	"github.com/simaogato/portfolio-backend/internal/usecase/quote"
	"github.com/simaogato/portfolio-backend/internal/usecase/watchlist"
)

// App holds the wired services shared by the server and the CLI
type App struct {
	DB          *sqlstore.DB
	Ledger      *ledger.LedgerService
	Performance *performance.PerformanceService
	History     *history.HistoryService
	Watchlist   *watchlist.WatchlistService
	Sectors     *watchlist.SectorService
}

// New connects to the database, applies the schema and wires every service
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	// 1. Setup Database
	db, err := sqlstore.NewDB(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("driver", db.Driver()).Msg("Database ready")

	// 2. Initialize Repositories
	lotRepo := sqlstore.NewLotRepository(db)
	watchlistRepo := sqlstore.NewWatchlistRepository(db)
	sectorRepo := sqlstore.NewSectorRepository(db)

	// 3. Initialize price sources
	yahooClient := yahoo.NewClient(yahoo.Config{
		APIKey:  cfg.RapidAPIKey,
		Host:    cfg.RapidAPIHost,
		Timeout: cfg.QuoteTimeout,
	}, log)
	// One upstream serves every class today; the router keeps them separable
	quotes := quote.NewRouter(yahooClient, yahooClient, yahooClient)

	prices := pricing.NewResolver(resolver.NewProcess(resolver.Config{
		Command: cfg.ResolverCommand,
		Args:    cfg.ResolverArgs,
		Timeout: cfg.ResolverTimeout,
	}, log), log)

	// 4. Initialize Services (Use Cases)
	return &App{
		DB:          db,
		Ledger:      ledger.NewLedgerService(lotRepo, prices, log),
		Performance: performance.NewPerformanceService(lotRepo, quotes, log),
		History:     history.NewHistoryService(lotRepo, prices, log),
		Watchlist:   watchlist.NewWatchlistService(watchlistRepo, quotes, log),
		Sectors:     watchlist.NewSectorService(sectorRepo, log),
	}, nil
}

// Close releases the database connection
func (a *App) Close() error {
	return a.DB.Close()
}
