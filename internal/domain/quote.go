package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a live market quote as returned by a quote provider
type Quote struct {
	Symbol        string
	Price         decimal.Decimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
	Timestamp     time.Time
}
