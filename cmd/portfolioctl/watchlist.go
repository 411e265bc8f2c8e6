package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

// watchlistCmd manages the followed symbols
type watchlistCmd struct {
	add    string
	class  string
	remove string
	live   bool
}

func (*watchlistCmd) Name() string     { return "watchlist" }
func (*watchlistCmd) Synopsis() string { return "list, follow or unfollow symbols" }
func (*watchlistCmd) Usage() string {
	return `portfolioctl watchlist [-add <symbol> [-c <class>]] [-remove <symbol>] [-live]

  Without flags, lists the followed symbols. -live prints their live quotes.
`
}

func (c *watchlistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.add, "add", "", "symbol to follow")
	f.StringVar(&c.class, "c", "", "asset class of the followed symbol")
	f.StringVar(&c.remove, "remove", "", "symbol to unfollow")
	f.BoolVar(&c.live, "live", false, "print live quotes")
}

func (c *watchlistCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var class domain.AssetClass
	if c.class != "" {
		parsed, err := domain.ParseAssetClass(c.class)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		class = parsed
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.add != "" {
		if _, err := a.Watchlist.Add(ctx, c.add, class); err != nil {
			fmt.Fprintf(stderr, "Error adding %s: %v\n", c.add, err)
			return subcommands.ExitFailure
		}
	}
	if c.remove != "" {
		if err := a.Watchlist.Remove(ctx, c.remove); err != nil {
			fmt.Fprintf(stderr, "Error removing %s: %v\n", c.remove, err)
			return subcommands.ExitFailure
		}
	}

	if c.live {
		quotes, err := a.Watchlist.LiveQuotes(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Error fetching quotes: %v\n", err)
			return subcommands.ExitFailure
		}
		tw := newTable()
		fmt.Fprintln(tw, "SYMBOL\tPRICE\tCHANGE\tCHANGE %")
		for _, q := range quotes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", q.Symbol, q.Price, q.Change, q.ChangePercent.StringFixed(2))
		}
		tw.Flush()
		return subcommands.ExitSuccess
	}

	assets, err := a.Watchlist.List(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error listing watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	tw := newTable()
	fmt.Fprintln(tw, "SYMBOL\tCLASS")
	for _, asset := range assets {
		fmt.Fprintf(tw, "%s\t%s\n", asset.Symbol, asset.AssetClass)
	}
	tw.Flush()

	return subcommands.ExitSuccess
}
