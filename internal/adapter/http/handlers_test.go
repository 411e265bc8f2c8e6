package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/usecase/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

// MockLedgerService is a mock implementation of LedgerService for testing
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) AddOrMergeLot(ctx context.Context, input ledger.AddLotInput) (*domain.Lot, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lot), args.Error(1)
}

func (m *MockLedgerService) RemoveQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) (*domain.Lot, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lot), args.Error(1)
}

func (m *MockLedgerService) RemoveLot(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLedgerService) BackfillMissingBuyPrices(ctx context.Context) ([]*domain.Lot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lot), args.Error(1)
}

func (m *MockLedgerService) ListLots(ctx context.Context) ([]*domain.Lot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lot), args.Error(1)
}

// MockPerformanceService is a mock implementation of PerformanceService for testing
type MockPerformanceService struct {
	mock.Mock
}

func (m *MockPerformanceService) ComputePerformance(ctx context.Context) (*domain.PortfolioPerformance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioPerformance), args.Error(1)
}

func (m *MockPerformanceService) ComputePerformanceByID(ctx context.Context, id uuid.UUID) (*domain.PortfolioPerformance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioPerformance), args.Error(1)
}

// MockHistoryService is a mock implementation of HistoryService for testing
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) BuildPortfolioHistory(ctx context.Context) ([]domain.HistoryPoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryPoint), args.Error(1)
}

// MockWatchlistService is a mock implementation of WatchlistService for testing
type MockWatchlistService struct {
	mock.Mock
}

func (m *MockWatchlistService) Add(ctx context.Context, symbol string, class domain.AssetClass) (*domain.WatchlistAsset, error) {
	args := m.Called(ctx, symbol, class)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WatchlistAsset), args.Error(1)
}

func (m *MockWatchlistService) Remove(ctx context.Context, symbol string) error {
	return m.Called(ctx, symbol).Error(0)
}

func (m *MockWatchlistService) List(ctx context.Context) ([]*domain.WatchlistAsset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WatchlistAsset), args.Error(1)
}

func (m *MockWatchlistService) LiveQuotes(ctx context.Context) ([]*domain.Quote, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quote), args.Error(1)
}

func (m *MockWatchlistService) QuoteForSymbol(ctx context.Context, symbol string) (*domain.Quote, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

// MockSectorService is a mock implementation of SectorService for testing
type MockSectorService struct {
	mock.Mock
}

func (m *MockSectorService) Catalog() []string {
	return m.Called().Get(0).([]string)
}

func (m *MockSectorService) Add(ctx context.Context, name string) (*domain.WatchlistSector, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WatchlistSector), args.Error(1)
}

func (m *MockSectorService) Remove(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockSectorService) List(ctx context.Context) ([]*domain.WatchlistSector, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WatchlistSector), args.Error(1)
}

type testServer struct {
	handler     http.Handler
	ledger      *MockLedgerService
	performance *MockPerformanceService
	history     *MockHistoryService
	watchlist   *MockWatchlistService
	sectors     *MockSectorService
}

func newTestServer() *testServer {
	ts := &testServer{
		ledger:      new(MockLedgerService),
		performance: new(MockPerformanceService),
		history:     new(MockHistoryService),
		watchlist:   new(MockWatchlistService),
		sectors:     new(MockSectorService),
	}
	srv := New(Config{
		Port:        0,
		Log:         zerolog.Nop(),
		APIToken:    testToken,
		DevMode:     true,
		Ledger:      ts.ledger,
		Performance: ts.performance,
		History:     ts.history,
		Watchlist:   ts.watchlist,
		Sectors:     ts.sectors,
	})
	ts.handler = srv.Handler()
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth_NoAuth(t *testing.T) {
	ts := newTestServer()
	rec := httptest.NewRecorder()

	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAPI_RequiresToken(t *testing.T) {
	ts := newTestServer()
	rec := httptest.NewRecorder()

	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolio/lots", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	ts.ledger.AssertNotCalled(t, "ListLots", mock.Anything)
}

func TestAddLot(t *testing.T) {
	ts := newTestServer()
	buyTime := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	lot := &domain.Lot{
		ID:         uuid.New(),
		Symbol:     "AAPL",
		AssetClass: domain.AssetClassEquity,
		Quantity:   decimal.NewFromInt(10),
		BuyPrice:   decimal.RequireFromString("172.62"),
		BuyTime:    buyTime,
	}
	ts.ledger.On("AddOrMergeLot", mock.Anything, mock.MatchedBy(func(in ledger.AddLotInput) bool {
		return in.Symbol == "AAPL" &&
			in.AssetClass == domain.AssetClassEquity &&
			in.Quantity.Equal(decimal.NewFromInt(10)) &&
			in.BuyTime != nil && in.BuyTime.Equal(buyTime)
	})).Return(lot, nil)

	rec := ts.do(http.MethodPost, "/api/portfolio/lots",
		`{"symbol":"AAPL","asset_class":"stock","quantity":"10","buy_time":"2024-03-15"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[lotResponse](t, rec)
	assert.Equal(t, lot.ID.String(), resp.ID)
	assert.Equal(t, "172.62", resp.BuyPrice)
	assert.Equal(t, "2024-03-15T00:00:00Z", resp.BuyTime)
}

func TestAddLot_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Malformed JSON", `{"symbol":`},
		{"Bad quantity", `{"symbol":"AAPL","asset_class":"EQUITY","quantity":"ten","buy_time":"2024-03-15"}`},
		{"Unknown class", `{"symbol":"AAPL","asset_class":"FOREX","quantity":"1","buy_time":"2024-03-15"}`},
		{"Bad buy time", `{"symbol":"AAPL","asset_class":"EQUITY","quantity":"1","buy_time":"15/03/2024"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()

			rec := ts.do(http.MethodPost, "/api/portfolio/lots", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			ts.ledger.AssertNotCalled(t, "AddOrMergeLot", mock.Anything, mock.Anything)
		})
	}
}

func TestAddLot_MissingBuyTimeIsRejectedByLedger(t *testing.T) {
	ts := newTestServer()
	ts.ledger.On("AddOrMergeLot", mock.Anything, mock.MatchedBy(func(in ledger.AddLotInput) bool {
		return in.BuyTime == nil
	})).Return(nil, fmt.Errorf("%w: buy time is required", domain.ErrInvalidInput))

	rec := ts.do(http.MethodPost, "/api/portfolio/lots", `{"symbol":"AAPL","asset_class":"EQUITY","quantity":"1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "buy time is required")
}

func TestRemoveQuantity(t *testing.T) {
	id := uuid.New()

	t.Run("Partial", func(t *testing.T) {
		ts := newTestServer()
		remaining := &domain.Lot{ID: id, Symbol: "X", AssetClass: domain.AssetClassEquity, Quantity: decimal.NewFromInt(3)}
		ts.ledger.On("RemoveQuantity", mock.Anything, id, decimal.NewFromInt(2)).Return(remaining, nil)

		rec := ts.do(http.MethodPost, "/api/portfolio/lots/"+id.String()+"/remove", `{"quantity":"2"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", decodeBody[lotResponse](t, rec).Quantity)
	})

	t.Run("Whole lot", func(t *testing.T) {
		ts := newTestServer()
		ts.ledger.On("RemoveQuantity", mock.Anything, id, decimal.NewFromInt(5)).Return(nil, nil)

		rec := ts.do(http.MethodPost, "/api/portfolio/lots/"+id.String()+"/remove", `{"quantity":"5"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeBody[map[string]any](t, rec)["removed"])
	})

	t.Run("Unknown lot", func(t *testing.T) {
		ts := newTestServer()
		ts.ledger.On("RemoveQuantity", mock.Anything, id, decimal.NewFromInt(1)).
			Return(nil, fmt.Errorf("lot %s: %w", id, domain.ErrNotFound))

		rec := ts.do(http.MethodPost, "/api/portfolio/lots/"+id.String()+"/remove", `{"quantity":"1"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Bad id", func(t *testing.T) {
		ts := newTestServer()

		rec := ts.do(http.MethodPost, "/api/portfolio/lots/42/remove", `{"quantity":"1"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRemoveLot(t *testing.T) {
	ts := newTestServer()
	id := uuid.New()
	ts.ledger.On("RemoveLot", mock.Anything, id).Return(nil)

	rec := ts.do(http.MethodDelete, "/api/portfolio/lots/"+id.String(), "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	ts.ledger.AssertExpectations(t)
}

func TestPerformance(t *testing.T) {
	ts := newTestServer()
	lot := &domain.Lot{
		ID:         uuid.New(),
		Symbol:     "AAPL",
		AssetClass: domain.AssetClassEquity,
		Quantity:   decimal.NewFromInt(10),
		BuyPrice:   decimal.NewFromInt(100),
	}
	record := domain.NewPerformanceRecord(lot, decimal.NewFromInt(150))
	ts.performance.On("ComputePerformance", mock.Anything).
		Return(domain.NewPortfolioPerformance([]domain.PerformanceRecord{record}), nil)

	rec := ts.do(http.MethodGet, "/api/portfolio/performance", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[portfolioPerformanceResponse](t, rec)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, lot.ID.String(), resp.Records[0].LotID)
	assert.Equal(t, "1000", resp.TotalInvested)
	assert.Equal(t, "1500", resp.TotalCurrentValue)
	assert.Equal(t, "500", resp.TotalPnL)
	assert.Equal(t, "50.0000", resp.TotalPnLPercent)
}

func TestPerformanceByID_NotFound(t *testing.T) {
	ts := newTestServer()
	id := uuid.New()
	ts.performance.On("ComputePerformanceByID", mock.Anything, id).
		Return(nil, fmt.Errorf("lot %s: %w", id, domain.ErrNotFound))

	rec := ts.do(http.MethodGet, "/api/portfolio/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistory(t *testing.T) {
	ts := newTestServer()
	ts.history.On("BuildPortfolioHistory", mock.Anything).Return([]domain.HistoryPoint{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), TotalValue: decimal.NewFromInt(2100), TotalInvested: decimal.NewFromInt(1670)},
	}, nil)

	rec := ts.do(http.MethodGet, "/api/portfolio/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	points := decodeBody[[]historyPointResponse](t, rec)
	require.Len(t, points, 1)
	assert.Equal(t, historyPointResponse{Date: "2024-01-02", TotalValue: "2100", TotalInvested: "1670"}, points[0])
}

func TestHistory_EmptyIsArray(t *testing.T) {
	ts := newTestServer()
	ts.history.On("BuildPortfolioHistory", mock.Anything).Return([]domain.HistoryPoint{}, nil)

	rec := ts.do(http.MethodGet, "/api/portfolio/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestBackfill_InternalErrorIsHidden(t *testing.T) {
	ts := newTestServer()
	ts.ledger.On("BackfillMissingBuyPrices", mock.Anything).Return(nil, fmt.Errorf("failed to list lots: %w", context.DeadlineExceeded))

	rec := ts.do(http.MethodPost, "/api/portfolio/backfill", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "deadline")
}

func TestWatchlist(t *testing.T) {
	ts := newTestServer()
	asset := &domain.WatchlistAsset{ID: uuid.New(), Symbol: "BTC", AssetClass: domain.AssetClassCrypto}
	ts.watchlist.On("Add", mock.Anything, "btc", domain.AssetClassCrypto).Return(asset, nil)
	ts.watchlist.On("List", mock.Anything).Return([]*domain.WatchlistAsset{asset}, nil)
	ts.watchlist.On("Remove", mock.Anything, "BTC").Return(nil)

	rec := ts.do(http.MethodPost, "/api/watchlist", `{"symbol":"btc","asset_class":"crypto"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "BTC", decodeBody[watchlistAssetResponse](t, rec).Symbol)

	rec = ts.do(http.MethodGet, "/api/watchlist", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]watchlistAssetResponse](t, rec), 1)

	rec = ts.do(http.MethodDelete, "/api/watchlist/BTC", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	ts.watchlist.AssertExpectations(t)
}

func TestWatchlistQuotes(t *testing.T) {
	ts := newTestServer()
	quote := &domain.Quote{
		Symbol:    "AAPL",
		Price:     decimal.RequireFromString("189.84"),
		Change:    decimal.RequireFromString("-1.23"),
		Timestamp: time.Unix(1715198400, 0),
	}
	ts.watchlist.On("LiveQuotes", mock.Anything).Return([]*domain.Quote{quote}, nil)
	ts.watchlist.On("QuoteForSymbol", mock.Anything, "AAPL").Return(quote, nil)
	ts.watchlist.On("QuoteForSymbol", mock.Anything, "GME").Return(nil, fmt.Errorf("watchlist entry GME: %w", domain.ErrNotFound))

	rec := ts.do(http.MethodGet, "/api/watchlist/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	live := decodeBody[[]quoteResponse](t, rec)
	require.Len(t, live, 1)
	assert.Equal(t, quoteResponse{Symbol: "AAPL", Price: "189.84", Change: "-1.23", ChangePercent: "0", Timestamp: 1715198400}, live[0])

	rec = ts.do(http.MethodGet, "/api/watchlist/quote/AAPL", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/watchlist/quote/GME", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSectors(t *testing.T) {
	ts := newTestServer()
	sector := &domain.WatchlistSector{ID: uuid.New(), Name: "Real Estate"}
	ts.sectors.On("Catalog").Return([]string{"Technology", "Real Estate"})
	ts.sectors.On("Add", mock.Anything, "real estate").Return(sector, nil)
	ts.sectors.On("List", mock.Anything).Return([]*domain.WatchlistSector{sector}, nil)
	ts.sectors.On("Remove", mock.Anything, "Real Estate").Return(nil)

	rec := ts.do(http.MethodGet, "/api/watchlist/sectors/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["Technology","Real Estate"]`, rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/watchlist/sectors", `{"name":"real estate"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Real Estate", decodeBody[sectorResponse](t, rec).Name)

	rec = ts.do(http.MethodGet, "/api/watchlist/sectors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]sectorResponse](t, rec), 1)

	rec = ts.do(http.MethodDelete, "/api/watchlist/sectors/Real%20Estate", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	ts.sectors.AssertExpectations(t)
}

func TestCORS_PreflightDoesNotAllowCredentials(t *testing.T) {
	ts := newTestServer()
	req := httptest.NewRequest(http.MethodOptions, "/api/portfolio/lots", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()

	ts.handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}
