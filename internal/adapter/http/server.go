package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Config holds server configuration
type Config struct {
	Port     int
	Log      zerolog.Logger
	APIToken string
	DevMode  bool

	Ledger      LedgerService
	Performance PerformanceService
	History     HistoryService
	Watchlist   WatchlistService
	Sectors     SectorService
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	port   int

	ledger      LedgerService
	performance PerformanceService
	history     HistoryService
	watchlist   WatchlistService
	sectors     SectorService
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		port:        cfg.Port,
		ledger:      cfg.Ledger,
		performance: cfg.Performance,
		history:     cfg.History,
		watchlist:   cfg.Watchlist,
		sectors:     cfg.Sectors,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg.APIToken)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // history fans out to the resolver once per symbol
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(80 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(apiToken string) {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(apiToken, s.log))

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/lots", s.handleListLots)
			r.Post("/lots", s.handleAddLot)
			r.Delete("/lots/{id}", s.handleRemoveLot)
			r.Post("/lots/{id}/remove", s.handleRemoveQuantity)
			r.Post("/backfill", s.handleBackfill)
			r.Get("/performance", s.handlePerformance)
			r.Get("/history", s.handleHistory)
			r.Get("/{id}", s.handlePerformanceByID)
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", s.handleListWatchlist)
			r.Post("/", s.handleAddToWatchlist)
			r.Get("/live", s.handleLiveWatchlist)
			r.Get("/quote/{symbol}", s.handleWatchlistQuote)
			r.Delete("/{symbol}", s.handleRemoveFromWatchlist)

			r.Route("/sectors", func(r chi.Router) {
				r.Get("/", s.handleListSectors)
				r.Post("/", s.handleAddSector)
				r.Get("/catalog", s.handleSectorCatalog)
				r.Delete("/{name}", s.handleRemoveSector)
			})
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
