package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/usecase/ledger"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "portfolio-backend",
	})
}

// handleAddLot records a buy, merging it into the lot bought the same day
func (s *Server) handleAddLot(w http.ResponseWriter, r *http.Request) {
	var req addLotRequest
	if !s.decode(w, r, &req) {
		return
	}

	quantity, err := parseQuantity(req.Quantity)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	class, err := domain.ParseAssetClass(req.AssetClass)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	buyTime, err := parseBuyTime(req.BuyTime)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	lot, err := s.ledger.AddOrMergeLot(r.Context(), ledger.AddLotInput{
		Symbol:     req.Symbol,
		AssetClass: class,
		Quantity:   quantity,
		BuyTime:    buyTime,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toLotResponse(lot))
}

func (s *Server) handleListLots(w http.ResponseWriter, r *http.Request) {
	lots, err := s.ledger.ListLots(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toLotResponses(lots))
}

func (s *Server) handleRemoveLot(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lotID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.RemoveLot(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveQuantity sells part of a lot; selling everything removes it
func (s *Server) handleRemoveQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lotID(w, r)
	if !ok {
		return
	}

	var req removeQuantityRequest
	if !s.decode(w, r, &req) {
		return
	}
	quantity, err := parseQuantity(req.Quantity)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	lot, err := s.ledger.RemoveQuantity(r.Context(), id, quantity)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if lot == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"id": id.String(), "removed": true})
		return
	}

	s.writeJSON(w, http.StatusOK, toLotResponse(lot))
}

func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	updated, err := s.ledger.BackfillMissingBuyPrices(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toLotResponses(updated))
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := s.performance.ComputePerformance(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPerformanceResponse(perf))
}

func (s *Server) handlePerformanceByID(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lotID(w, r)
	if !ok {
		return
	}
	perf, err := s.performance.ComputePerformanceByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPerformanceResponse(perf))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	points, err := s.history.BuildPortfolioHistory(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toHistoryResponse(points))
}

func (s *Server) handleListWatchlist(w http.ResponseWriter, r *http.Request) {
	assets, err := s.watchlist.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]watchlistAssetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, toWatchlistResponse(a))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req addWatchlistRequest
	if !s.decode(w, r, &req) {
		return
	}

	var class domain.AssetClass
	if req.AssetClass != "" {
		parsed, err := domain.ParseAssetClass(req.AssetClass)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		class = parsed
	}

	asset, err := s.watchlist.Add(r.Context(), req.Symbol, class)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toWatchlistResponse(asset))
}

func (s *Server) handleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	if err := s.watchlist.Remove(r.Context(), chi.URLParam(r, "symbol")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLiveWatchlist(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.watchlist.LiveQuotes(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]quoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuoteResponse(q))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleWatchlistQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.watchlist.QuoteForSymbol(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toQuoteResponse(q))
}

func (s *Server) handleSectorCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sectors.Catalog())
}

func (s *Server) handleListSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := s.sectors.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]sectorResponse, 0, len(sectors))
	for _, sector := range sectors {
		out = append(out, toSectorResponse(sector))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddSector(w http.ResponseWriter, r *http.Request) {
	var req addSectorRequest
	if !s.decode(w, r, &req) {
		return
	}
	sector, err := s.sectors.Add(r.Context(), req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSectorResponse(sector))
}

func (s *Server) handleRemoveSector(w http.ResponseWriter, r *http.Request) {
	if err := s.sectors.Remove(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body into v, answering 400 when it cannot
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// lotID parses the {id} URL parameter, answering 400 when it is not a UUID
func (s *Server) lotID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		s.writeServiceError(w, r, fmt.Errorf("%w: invalid lot id %q", domain.ErrInvalidInput, raw))
		return uuid.Nil, false
	}
	return id, true
}
