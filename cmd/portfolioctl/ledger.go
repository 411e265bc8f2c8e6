package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/usecase/ledger"
)

func ledgerCommands() []subcommands.Command {
	return []subcommands.Command{&lotsCmd{}, &addCmd{}, &removeCmd{}, &backfillCmd{}}
}

// lotsCmd lists the lots of the ledger
type lotsCmd struct{}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list every lot in the portfolio" }
func (*lotsCmd) Usage() string {
	return `portfolioctl lots

  Lists the recorded lots with their buy price. A buy price of 0 is still unresolved.
`
}
func (*lotsCmd) SetFlags(*flag.FlagSet) {}

func (c *lotsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	lots, err := a.Ledger.ListLots(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error listing lots: %v\n", err)
		return subcommands.ExitFailure
	}

	printLots(lots)
	return subcommands.ExitSuccess
}

// addCmd records a buy
type addCmd struct {
	class    string
	quantity string
	date     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a buy, merging it with the same day's lot" }
func (*addCmd) Usage() string {
	return `portfolioctl add -q <quantity> [-c <class>] [-d <date>] <symbol>

  Records a buy of <symbol>. The buy price is the historical close of the day.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.class, "c", "EQUITY", "asset class: EQUITY, BOND or CRYPTO")
	f.StringVar(&c.quantity, "q", "", "quantity bought")
	f.StringVar(&c.date, "d", time.Now().UTC().Format("2006-01-02"), "buy date (YYYY-MM-DD)")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	quantity, err := decimal.NewFromString(c.quantity)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing quantity %q: %v\n", c.quantity, err)
		return subcommands.ExitUsageError
	}
	class, err := domain.ParseAssetClass(c.class)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	buyTime, err := time.Parse("2006-01-02", c.date)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	lot, err := a.Ledger.AddOrMergeLot(ctx, ledger.AddLotInput{
		Symbol:     f.Arg(0),
		AssetClass: class,
		Quantity:   quantity,
		BuyTime:    &buyTime,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error recording buy: %v\n", err)
		return subcommands.ExitFailure
	}

	printLots([]*domain.Lot{lot})
	return subcommands.ExitSuccess
}

// removeCmd sells part or all of a lot
type removeCmd struct {
	quantity string
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "sell part or all of a lot" }
func (*removeCmd) Usage() string {
	return `portfolioctl remove [-q <quantity>] <lot-id>

  Removes <quantity> from the lot, or the whole lot when -q is omitted.
`
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.quantity, "q", "", "quantity sold; the whole lot when empty")
}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	id, err := uuid.Parse(f.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing lot id: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.quantity == "" {
		if err := a.Ledger.RemoveLot(ctx, id); err != nil {
			fmt.Fprintf(stderr, "Error removing lot: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Removed lot %s\n", id)
		return subcommands.ExitSuccess
	}

	quantity, err := decimal.NewFromString(c.quantity)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing quantity %q: %v\n", c.quantity, err)
		return subcommands.ExitUsageError
	}
	lot, err := a.Ledger.RemoveQuantity(ctx, id, quantity)
	if err != nil {
		fmt.Fprintf(stderr, "Error removing quantity: %v\n", err)
		return subcommands.ExitFailure
	}
	if lot == nil {
		fmt.Fprintf(stdout, "Removed lot %s\n", id)
		return subcommands.ExitSuccess
	}

	printLots([]*domain.Lot{lot})
	return subcommands.ExitSuccess
}

// backfillCmd retries unresolved buy prices
type backfillCmd struct{}

func (*backfillCmd) Name() string     { return "backfill" }
func (*backfillCmd) Synopsis() string { return "retry the historical price of lots bought at 0" }
func (*backfillCmd) Usage() string {
	return `portfolioctl backfill

  Resolves the buy price of every lot whose price is still 0 and prints the updated lots.
`
}
func (*backfillCmd) SetFlags(*flag.FlagSet) {}

func (c *backfillCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	updated, err := a.Ledger.BackfillMissingBuyPrices(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error during backfill: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(stdout, "%d lot(s) updated\n", len(updated))
	if len(updated) > 0 {
		printLots(updated)
	}
	return subcommands.ExitSuccess
}

func printLots(lots []*domain.Lot) {
	tw := newTable()
	fmt.Fprintln(tw, "ID\tSYMBOL\tCLASS\tQUANTITY\tBUY PRICE\tBUY DATE")
	for _, lot := range lots {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			lot.ID, lot.Symbol, lot.AssetClass, lot.Quantity, lot.BuyPrice, lot.BuyTime.Format("2006-01-02"))
	}
	tw.Flush()
}
