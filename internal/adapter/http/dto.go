package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

const dateLayout = "2006-01-02"

// Amounts travel as strings so no precision is lost in JSON

type addLotRequest struct {
	Symbol     string `json:"symbol"`
	AssetClass string `json:"asset_class"`
	Quantity   string `json:"quantity"`
	BuyTime    string `json:"buy_time"` // RFC 3339 timestamp or YYYY-MM-DD
}

type removeQuantityRequest struct {
	Quantity string `json:"quantity"`
}

type addWatchlistRequest struct {
	Symbol     string `json:"symbol"`
	AssetClass string `json:"asset_class,omitempty"`
}

type addSectorRequest struct {
	Name string `json:"name"`
}

type lotResponse struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	AssetClass string `json:"asset_class"`
	Quantity   string `json:"quantity"`
	BuyPrice   string `json:"buy_price"`
	BuyTime    string `json:"buy_time"`
}

type performanceRecordResponse struct {
	LotID        string `json:"lot_id"`
	Symbol       string `json:"symbol"`
	AssetClass   string `json:"asset_class"`
	Quantity     string `json:"quantity"`
	BuyPrice     string `json:"buy_price"`
	BuyTime      string `json:"buy_time"`
	CurrentPrice string `json:"current_price"`
	Invested     string `json:"invested"`
	CurrentValue string `json:"current_value"`
	PnL          string `json:"pnl"`
	PnLPercent   string `json:"pnl_percent"`
}

type portfolioPerformanceResponse struct {
	Records           []performanceRecordResponse `json:"records"`
	TotalInvested     string                      `json:"total_invested"`
	TotalCurrentValue string                      `json:"total_current_value"`
	TotalPnL          string                      `json:"total_pnl"`
	TotalPnLPercent   string                      `json:"total_pnl_percent"`
}

type historyPointResponse struct {
	Date          string `json:"date"`
	TotalValue    string `json:"total_value"`
	TotalInvested string `json:"total_invested"`
}

type quoteResponse struct {
	Symbol        string `json:"symbol"`
	Price         string `json:"price"`
	Change        string `json:"change"`
	ChangePercent string `json:"change_percent"`
	Timestamp     int64  `json:"timestamp"`
}

type watchlistAssetResponse struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	AssetClass string `json:"asset_class,omitempty"`
}

type sectorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func parseQuantity(s string) (decimal.Decimal, error) {
	q, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid quantity format %q", domain.ErrInvalidInput, s)
	}
	return q, nil
}

// parseBuyTime returns nil for an empty value
func parseBuyTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid buy_time format %q", domain.ErrInvalidInput, s)
}

func toLotResponse(lot *domain.Lot) lotResponse {
	return lotResponse{
		ID:         lot.ID.String(),
		Symbol:     lot.Symbol,
		AssetClass: string(lot.AssetClass),
		Quantity:   lot.Quantity.String(),
		BuyPrice:   lot.BuyPrice.String(),
		BuyTime:    lot.BuyTime.Format(time.RFC3339),
	}
}

func toLotResponses(lots []*domain.Lot) []lotResponse {
	out := make([]lotResponse, 0, len(lots))
	for _, lot := range lots {
		out = append(out, toLotResponse(lot))
	}
	return out
}

func toPerformanceResponse(perf *domain.PortfolioPerformance) portfolioPerformanceResponse {
	records := make([]performanceRecordResponse, 0, len(perf.Records))
	for _, r := range perf.Records {
		records = append(records, performanceRecordResponse{
			LotID:        r.LotID.String(),
			Symbol:       r.Symbol,
			AssetClass:   string(r.AssetClass),
			Quantity:     r.Quantity.String(),
			BuyPrice:     r.BuyPrice.String(),
			BuyTime:      r.BuyTime.Format(time.RFC3339),
			CurrentPrice: r.CurrentPrice.String(),
			Invested:     r.Invested.String(),
			CurrentValue: r.CurrentValue.String(),
			PnL:          r.PnL.String(),
			PnLPercent:   r.PnLPercent.StringFixed(domain.PercentPlaces),
		})
	}

	return portfolioPerformanceResponse{
		Records:           records,
		TotalInvested:     perf.TotalInvested.String(),
		TotalCurrentValue: perf.TotalCurrentValue.String(),
		TotalPnL:          perf.TotalPnL.String(),
		TotalPnLPercent:   perf.TotalPnLPercent.StringFixed(domain.PercentPlaces),
	}
}

func toHistoryResponse(points []domain.HistoryPoint) []historyPointResponse {
	out := make([]historyPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, historyPointResponse{
			Date:          p.Date.Format(dateLayout),
			TotalValue:    p.TotalValue.String(),
			TotalInvested: p.TotalInvested.String(),
		})
	}
	return out
}

func toQuoteResponse(q *domain.Quote) quoteResponse {
	resp := quoteResponse{
		Symbol:        q.Symbol,
		Price:         q.Price.String(),
		Change:        q.Change.String(),
		ChangePercent: q.ChangePercent.String(),
	}
	if !q.Timestamp.IsZero() {
		resp.Timestamp = q.Timestamp.Unix()
	}
	return resp
}

func toWatchlistResponse(asset *domain.WatchlistAsset) watchlistAssetResponse {
	return watchlistAssetResponse{
		ID:         asset.ID.String(),
		Symbol:     asset.Symbol,
		AssetClass: string(asset.AssetClass),
	}
}

func toSectorResponse(sector *domain.WatchlistSector) sectorResponse {
	return sectorResponse{ID: sector.ID.String(), Name: sector.Name}
}
