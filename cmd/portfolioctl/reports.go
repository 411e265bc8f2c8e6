package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

func reportCommands() []subcommands.Command {
	return []subcommands.Command{&performanceCmd{}, &historyCmd{}}
}

// performanceCmd prints the P&L of every lot and the portfolio totals
type performanceCmd struct {
	lot string
}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "show the P&L of the portfolio at live prices" }
func (*performanceCmd) Usage() string {
	return `portfolioctl performance [-lot <id>]

  Values every lot at its live price. Crypto lots are valued at their buy price.
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.lot, "lot", "", "restrict the report to one lot")
}

func (c *performanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var id uuid.UUID
	if c.lot != "" {
		parsed, err := uuid.Parse(c.lot)
		if err != nil {
			fmt.Fprintf(stderr, "Error parsing lot id: %v\n", err)
			return subcommands.ExitUsageError
		}
		id = parsed
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	var perf *domain.PortfolioPerformance
	if id == uuid.Nil {
		perf, err = a.Performance.ComputePerformance(ctx)
	} else {
		perf, err = a.Performance.ComputePerformanceByID(ctx, id)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error computing performance: %v\n", err)
		return subcommands.ExitFailure
	}

	tw := newTable()
	fmt.Fprintln(tw, "SYMBOL\tQUANTITY\tBUY PRICE\tPRICE\tINVESTED\tVALUE\tP&L\tP&L %")
	for _, r := range perf.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Symbol, r.Quantity, r.BuyPrice, r.CurrentPrice,
			r.Invested.StringFixed(2), r.CurrentValue.StringFixed(2), r.PnL.StringFixed(2), r.PnLPercent.StringFixed(domain.PercentPlaces))
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t\t%s\t%s\t%s\t%s\n",
		perf.TotalInvested.StringFixed(2), perf.TotalCurrentValue.StringFixed(2), perf.TotalPnL.StringFixed(2), perf.TotalPnLPercent.StringFixed(domain.PercentPlaces))
	tw.Flush()

	return subcommands.ExitSuccess
}

// historyCmd prints the reconstructed daily value of the portfolio
type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show the daily value of the portfolio" }
func (*historyCmd) Usage() string {
	return `portfolioctl history

  Rebuilds the portfolio value over the last month of closes.
`
}
func (*historyCmd) SetFlags(*flag.FlagSet) {}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	points, err := a.History.BuildPortfolioHistory(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error building history: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(points) == 0 {
		fmt.Fprintln(stdout, "No price history available")
		return subcommands.ExitSuccess
	}

	tw := newTable()
	fmt.Fprintln(tw, "DATE\tINVESTED\tVALUE")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Date.Format("2006-01-02"), p.TotalInvested.StringFixed(2), p.TotalValue.StringFixed(2))
	}
	tw.Flush()

	return subcommands.ExitSuccess
}
