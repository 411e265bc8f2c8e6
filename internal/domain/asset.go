package domain

import (
	"fmt"
	"strings"
)

// AssetClass represents the class of an asset held in the portfolio
type AssetClass string

const (
	AssetClassEquity AssetClass = "EQUITY"
	AssetClassBond   AssetClass = "BOND"
	AssetClassCrypto AssetClass = "CRYPTO"
)

// ParseAssetClass converts user input into an AssetClass.
// Matching is case-insensitive; "STOCK" is accepted as an alias of EQUITY.
func ParseAssetClass(s string) (AssetClass, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EQUITY", "STOCK":
		return AssetClassEquity, nil
	case "BOND":
		return AssetClassBond, nil
	case "CRYPTO":
		return AssetClassCrypto, nil
	default:
		return "", fmt.Errorf("%w: unknown asset class %q", ErrInvalidInput, s)
	}
}

// Validate ensures the asset class is one of the supported values
func (c AssetClass) Validate() error {
	switch c {
	case AssetClassEquity, AssetClassBond, AssetClassCrypto:
		return nil
	default:
		return fmt.Errorf("%w: unknown asset class %q", ErrInvalidInput, string(c))
	}
}
