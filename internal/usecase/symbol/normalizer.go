package symbol

import (
	"strings"

	"github.com/simaogato/portfolio-backend/internal/domain"
)

// QuoteCurrencySuffix is appended to bare crypto tickers to form a pair symbol
const QuoteCurrencySuffix = "-USD"

// knownCrypto lists tickers priced as crypto pairs even when stored under another class
var knownCrypto = map[string]struct{}{
	"BTC": {}, "ETH": {}, "SOL": {}, "ADA": {}, "XRP": {}, "DOGE": {},
	"BNB": {}, "AVAX": {}, "DOT": {}, "LTC": {}, "BCH": {}, "LINK": {},
	"MATIC": {}, "ATOM": {}, "XLM": {}, "TRX": {}, "ETC": {},
}

// IsKnownCrypto reports whether the ticker is on the well-known crypto list
func IsKnownCrypto(ticker string) bool {
	_, ok := knownCrypto[strings.ToUpper(strings.TrimSpace(ticker))]
	return ok
}

// Normalize maps a stored symbol to the canonical symbol expected by quote
// and historical price sources.
//
// Rules, in order:
//  1. Blank input is returned unchanged
//  2. Symbols containing '-' or '.', or starting with '^', are already qualified
//     and returned untouched
//  3. CRYPTO lots get the quote-currency suffix
//  4. Well-known crypto tickers get the suffix regardless of asset class
//  5. Anything else is returned trimmed
//
// Normalize is idempotent: Normalize(Normalize(s, c), c) == Normalize(s, c).
func Normalize(sym string, class domain.AssetClass) string {
	trimmed := strings.TrimSpace(sym)
	if trimmed == "" {
		return sym
	}

	if strings.ContainsAny(trimmed, "-.") || strings.HasPrefix(trimmed, "^") {
		return sym
	}

	if class == domain.AssetClassCrypto || IsKnownCrypto(trimmed) {
		return strings.ToUpper(trimmed) + QuoteCurrencySuffix
	}

	return trimmed
}
