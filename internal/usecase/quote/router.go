package quote

import (
	"context"
	"fmt"

	"github.com/simaogato/portfolio-backend/internal/domain"
)

// Router implements domain.QuoteSource by dispatching to one provider per asset class
type Router struct {
	Equity domain.QuoteProvider
	Bond   domain.QuoteProvider
	Crypto domain.QuoteProvider
}

// NewRouter creates a new Router instance
func NewRouter(equity, bond, crypto domain.QuoteProvider) *Router {
	return &Router{
		Equity: equity,
		Bond:   bond,
		Crypto: crypto,
	}
}

// Quote fetches a live quote for an already-normalized symbol.
// Provider failures are wrapped with domain.ErrProvider.
func (r *Router) Quote(ctx context.Context, class domain.AssetClass, symbol string) (*domain.Quote, error) {
	provider, err := r.providerFor(class)
	if err != nil {
		return nil, err
	}

	q, err := provider.Quote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s quote for %s: %v", domain.ErrProvider, class, symbol, err)
	}
	return q, nil
}

func (r *Router) providerFor(class domain.AssetClass) (domain.QuoteProvider, error) {
	var provider domain.QuoteProvider
	switch class {
	case domain.AssetClassEquity:
		provider = r.Equity
	case domain.AssetClassBond:
		provider = r.Bond
	case domain.AssetClassCrypto:
		provider = r.Crypto
	default:
		return nil, fmt.Errorf("%w: unknown asset class %q", domain.ErrInvalidInput, string(class))
	}

	if provider == nil {
		return nil, fmt.Errorf("%w: no quote provider configured for %s", domain.ErrProvider, class)
	}
	return provider, nil
}
