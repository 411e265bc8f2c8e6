package grpc

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/portfolio-backend/internal/domain"
)

const dateLayout = "2006-01-02"

// stringField returns the string value of key, or "" when it is absent or not a string
func stringField(in *structpb.Struct, key string) string {
	v, ok := in.GetFields()[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

func parseQuantity(s string) (decimal.Decimal, error) {
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid quantity format %q", domain.ErrInvalidInput, s)
	}
	return q, nil
}

// parseBuyTime accepts an RFC 3339 timestamp or a calendar date; empty means absent
func parseBuyTime(s string) (*time.Time, error) {
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

func lotValue(lot *domain.Lot) map[string]any {
	return map[string]any{
		"id":          lot.ID.String(),
		"symbol":      lot.Symbol,
		"asset_class": string(lot.AssetClass),
		"quantity":    lot.Quantity.String(),
		"buy_price":   lot.BuyPrice.String(),
		"buy_time":    lot.BuyTime.Format(time.RFC3339),
	}
}

func lotsStruct(lots []*domain.Lot) (*structpb.Struct, error) {
	values := make([]any, 0, len(lots))
	for _, lot := range lots {
		values = append(values, lotValue(lot))
	}
	return structpb.NewStruct(map[string]any{"lots": values})
}

func performanceStruct(perf *domain.PortfolioPerformance) (*structpb.Struct, error) {
	records := make([]any, 0, len(perf.Records))
	for _, r := range perf.Records {
		records = append(records, map[string]any{
			"lot_id":        r.LotID.String(),
			"symbol":        r.Symbol,
			"asset_class":   string(r.AssetClass),
			"quantity":      r.Quantity.String(),
			"buy_price":     r.BuyPrice.String(),
			"buy_time":      r.BuyTime.Format(time.RFC3339),
			"current_price": r.CurrentPrice.String(),
			"invested":      r.Invested.String(),
			"current_value": r.CurrentValue.String(),
			"pnl":           r.PnL.String(),
			"pnl_percent":   r.PnLPercent.StringFixed(domain.PercentPlaces),
		})
	}
	return structpb.NewStruct(map[string]any{
		"records":             records,
		"total_invested":      perf.TotalInvested.String(),
		"total_current_value": perf.TotalCurrentValue.String(),
		"total_pnl":           perf.TotalPnL.String(),
		"total_pnl_percent":   perf.TotalPnLPercent.StringFixed(domain.PercentPlaces),
	})
}

func historyStruct(points []domain.HistoryPoint) (*structpb.Struct, error) {
	values := make([]any, 0, len(points))
	for _, p := range points {
		values = append(values, map[string]any{
			"date":           p.Date.Format(dateLayout),
			"total_value":    p.TotalValue.String(),
			"total_invested": p.TotalInvested.String(),
		})
	}
	return structpb.NewStruct(map[string]any{"points": values})
}
