package pricing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockHistoricalPriceSource is a mock implementation of HistoricalPriceSource for testing
type MockHistoricalPriceSource struct {
	mock.Mock
}

func (m *MockHistoricalPriceSource) PriceOn(ctx context.Context, symbol string, day time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol, day)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockHistoricalPriceSource) Series(ctx context.Context, symbol string) ([]domain.PricePoint, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PricePoint), args.Error(1)
}

func TestResolve_NormalizesSymbolAndDay(t *testing.T) {
	ctx := context.Background()
	source := new(MockHistoricalPriceSource)
	resolver := NewResolver(source, zerolog.Nop())

	day := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	source.On("PriceOn", ctx, "BTC-USD", day).Return(decimal.NewFromInt(42000), nil)

	price := resolver.Resolve(ctx, "btc", domain.AssetClassCrypto, time.Date(2024, 2, 5, 16, 45, 0, 0, time.UTC))

	assert.True(t, decimal.NewFromInt(42000).Equal(price))
	source.AssertExpectations(t)
}

func TestResolve_SourceFailureYieldsZero(t *testing.T) {
	ctx := context.Background()
	source := new(MockHistoricalPriceSource)
	resolver := NewResolver(source, zerolog.Nop())

	source.On("PriceOn", ctx, "AAPL", mock.Anything).
		Return(decimal.Zero, fmt.Errorf("%w: resolver failed: exit status 1", domain.ErrProvider))

	price := resolver.Resolve(ctx, "AAPL", domain.AssetClassEquity, time.Now())

	assert.True(t, price.IsZero())
}

func TestResolve_NegativePriceYieldsZero(t *testing.T) {
	ctx := context.Background()
	source := new(MockHistoricalPriceSource)
	resolver := NewResolver(source, zerolog.Nop())

	source.On("PriceOn", ctx, "^FVX", mock.Anything).Return(decimal.NewFromInt(-3), nil)

	price := resolver.Resolve(ctx, "^FVX", domain.AssetClassBond, time.Now())

	assert.True(t, price.IsZero())
}

func TestResolveSeries(t *testing.T) {
	ctx := context.Background()
	source := new(MockHistoricalPriceSource)
	resolver := NewResolver(source, zerolog.Nop())

	d1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	source.On("Series", ctx, "AAPL").Return([]domain.PricePoint{
		{Date: d1, Value: decimal.NewFromInt(185)},
		{Date: d2, Value: decimal.Zero},
	}, nil)

	series := resolver.ResolveSeries(ctx, "AAPL", domain.AssetClassEquity)

	assert.Len(t, series, 1)
	assert.True(t, decimal.NewFromInt(185).Equal(series[d1]))
	_, ok := series[d2]
	assert.False(t, ok)
}

func TestResolveSeries_FailureYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	source := new(MockHistoricalPriceSource)
	resolver := NewResolver(source, zerolog.Nop())

	source.On("Series", ctx, "AAPL").Return(nil, errors.New("boom"))

	series := resolver.ResolveSeries(ctx, "AAPL", domain.AssetClassEquity)

	assert.NotNil(t, series)
	assert.Empty(t, series)
}
