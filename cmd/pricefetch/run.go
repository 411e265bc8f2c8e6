package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/adapter/resolver"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type seriesPoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

func init() {
	// Series values are emitted as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// run executes one lookup and returns the process exit status
func run(ctx context.Context, args []string, src domain.HistoricalPriceSource, stdout, stderr io.Writer) int {
	if len(args) < 1 || len(args) > 2 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(stderr, "usage: pricefetch SYMBOL [YYYY-MM-DD]")
		return exitUsage
	}
	symbol := strings.TrimSpace(args[0])

	if len(args) == 2 {
		day, err := time.Parse(resolver.DateLayout, args[1])
		if err != nil {
			fmt.Fprintf(stderr, "invalid date %q: %v\n", args[1], err)
			return exitUsage
		}

		price, err := src.PriceOn(ctx, symbol, day)
		if err != nil {
			fmt.Fprintf(stderr, "price lookup failed: %v\n", err)
			return exitError
		}
		if !price.IsPositive() {
			fmt.Fprintln(stdout, "0")
			return exitOK
		}
		fmt.Fprintf(stdout, "%s%s\n", resolver.PriceTag, price.String())
		return exitOK
	}

	points, err := src.Series(ctx, symbol)
	if err != nil {
		fmt.Fprintf(stderr, "series lookup failed: %v\n", err)
		return exitError
	}

	out := make([]seriesPoint, 0, len(points))
	for _, p := range points {
		out = append(out, seriesPoint{Date: p.Date.Format(resolver.DateLayout), Value: p.Value})
	}
	if err := json.NewEncoder(stdout).Encode(out); err != nil {
		fmt.Fprintf(stderr, "failed to write series: %v\n", err)
		return exitError
	}
	return exitOK
}
