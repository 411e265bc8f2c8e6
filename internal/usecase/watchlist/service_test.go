package watchlist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockWatchlistRepository is a mock implementation of WatchlistRepository for testing
type MockWatchlistRepository struct {
	mock.Mock
}

func (m *MockWatchlistRepository) FindAll(ctx context.Context) ([]*domain.WatchlistAsset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WatchlistAsset), args.Error(1)
}

func (m *MockWatchlistRepository) FindBySymbol(ctx context.Context, symbol string) (*domain.WatchlistAsset, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WatchlistAsset), args.Error(1)
}

func (m *MockWatchlistRepository) Save(ctx context.Context, asset *domain.WatchlistAsset) error {
	return m.Called(ctx, asset).Error(0)
}

func (m *MockWatchlistRepository) DeleteBySymbol(ctx context.Context, symbol string) error {
	return m.Called(ctx, symbol).Error(0)
}

// MockQuoteSource is a mock implementation of QuoteSource for testing
type MockQuoteSource struct {
	mock.Mock
}

func (m *MockQuoteSource) Quote(ctx context.Context, class domain.AssetClass, symbol string) (*domain.Quote, error) {
	args := m.Called(ctx, class, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func notFound(sym string) error {
	return fmt.Errorf("watchlist entry %s: %w", sym, domain.ErrNotFound)
}

func TestAdd_NewEntryIsUpperCased(t *testing.T) {
	ctx := context.Background()
	repo := new(MockWatchlistRepository)
	service := NewWatchlistService(repo, new(MockQuoteSource), zerolog.Nop())

	repo.On("FindBySymbol", ctx, "NVDA").Return(nil, notFound("NVDA"))
	repo.On("Save", ctx, mock.MatchedBy(func(a *domain.WatchlistAsset) bool {
		return a.Symbol == "NVDA" && a.AssetClass == domain.AssetClassEquity
	})).Return(nil)

	asset, err := service.Add(ctx, " nvda ", domain.AssetClassEquity)

	require.NoError(t, err)
	assert.Equal(t, "NVDA", asset.Symbol)
	repo.AssertExpectations(t)
}

func TestAdd_ExistingEntryGetsMissingClass(t *testing.T) {
	ctx := context.Background()
	repo := new(MockWatchlistRepository)
	service := NewWatchlistService(repo, new(MockQuoteSource), zerolog.Nop())

	existing := &domain.WatchlistAsset{Symbol: "ETH"}
	repo.On("FindBySymbol", ctx, "ETH").Return(existing, nil)
	repo.On("Save", ctx, existing).Return(nil)

	asset, err := service.Add(ctx, "eth", domain.AssetClassCrypto)

	require.NoError(t, err)
	assert.Equal(t, domain.AssetClassCrypto, asset.AssetClass)
	repo.AssertExpectations(t)
}

func TestAdd_ExistingEntryKeepsItsClass(t *testing.T) {
	ctx := context.Background()
	repo := new(MockWatchlistRepository)
	service := NewWatchlistService(repo, new(MockQuoteSource), zerolog.Nop())

	existing := &domain.WatchlistAsset{Symbol: "TLT", AssetClass: domain.AssetClassBond}
	repo.On("FindBySymbol", ctx, "TLT").Return(existing, nil)

	asset, err := service.Add(ctx, "TLT", domain.AssetClassEquity)

	require.NoError(t, err)
	assert.Equal(t, domain.AssetClassBond, asset.AssetClass)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAdd_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		class  domain.AssetClass
	}{
		{"Blank symbol", "  ", domain.AssetClassEquity},
		{"Unknown class", "EURUSD", domain.AssetClass("FOREX")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := new(MockWatchlistRepository)
			service := NewWatchlistService(repo, new(MockQuoteSource), zerolog.Nop())
			repo.On("FindBySymbol", ctx, mock.Anything).Return(nil, notFound(tt.symbol))

			_, err := service.Add(ctx, tt.symbol, tt.class)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestAdd_LookupFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockWatchlistRepository)
	service := NewWatchlistService(repo, new(MockQuoteSource), zerolog.Nop())

	repo.On("FindBySymbol", ctx, "AAPL").Return(nil, errors.New("database is locked"))

	_, err := service.Add(ctx, "AAPL", domain.AssetClassEquity)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLiveQuotes_SkipsFailingEntries(t *testing.T) {
	ctx := context.Background()
	repo := new(MockWatchlistRepository)
	quotes := new(MockQuoteSource)
	service := NewWatchlistService(repo, quotes, zerolog.Nop())

	repo.On("FindAll", ctx).Return([]*domain.WatchlistAsset{
		{Symbol: "AAPL", AssetClass: domain.AssetClassEquity},
		{Symbol: "BTC", AssetClass: domain.AssetClassCrypto},
		{Symbol: "^TNX", AssetClass: domain.AssetClassBond},
		{Symbol: "MSFT"},
	}, nil)
	quotes.On("Quote", ctx, domain.AssetClassEquity, "AAPL").Return(&domain.Quote{Symbol: "AAPL", Price: decimal.NewFromInt(190)}, nil)
	quotes.On("Quote", ctx, domain.AssetClassCrypto, "BTC-USD").Return(&domain.Quote{Symbol: "BTC-USD", Price: decimal.NewFromInt(65000)}, nil)
	quotes.On("Quote", ctx, domain.AssetClassBond, "^TNX").Return(nil, fmt.Errorf("%w: 429", domain.ErrProvider))
	quotes.On("Quote", ctx, domain.AssetClassEquity, "MSFT").Return(&domain.Quote{Price: decimal.NewFromInt(410)}, nil)

	live, err := service.LiveQuotes(ctx)

	require.NoError(t, err)
	require.Len(t, live, 3)
	assert.Equal(t, "AAPL", live[0].Symbol)
	assert.Equal(t, "BTC-USD", live[1].Symbol)
	assert.Equal(t, "MSFT", live[2].Symbol)
	quotes.AssertExpectations(t)
}

func TestQuoteForSymbol(t *testing.T) {
	ctx := context.Background()
	repo := new(MockWatchlistRepository)
	quotes := new(MockQuoteSource)
	service := NewWatchlistService(repo, quotes, zerolog.Nop())

	repo.On("FindBySymbol", ctx, "btc").Return(&domain.WatchlistAsset{Symbol: "BTC", AssetClass: domain.AssetClassCrypto}, nil)
	quotes.On("Quote", ctx, domain.AssetClassCrypto, "BTC-USD").Return(&domain.Quote{Symbol: "BTC-USD", Price: decimal.NewFromInt(65000)}, nil)

	q, err := service.QuoteForSymbol(ctx, "btc")

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(65000).Equal(q.Price))
}

func TestQuoteForSymbol_NotOnWatchlist(t *testing.T) {
	ctx := context.Background()
	repo := new(MockWatchlistRepository)
	quotes := new(MockQuoteSource)
	service := NewWatchlistService(repo, quotes, zerolog.Nop())

	repo.On("FindBySymbol", ctx, "GME").Return(nil, notFound("GME"))

	_, err := service.QuoteForSymbol(ctx, "GME")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	quotes.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	repo := new(MockWatchlistRepository)
	service := NewWatchlistService(repo, new(MockQuoteSource), zerolog.Nop())

	repo.On("DeleteBySymbol", ctx, "aapl").Return(nil)

	require.NoError(t, service.Remove(ctx, " aapl "))
	repo.AssertExpectations(t)
}
