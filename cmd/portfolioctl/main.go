// Command portfolioctl manages the portfolio from the command line, against
// the same database and price sources as the server.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func register(commander *subcommands.Commander) {
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range ledgerCommands() {
		commander.Register(c, "ledger")
	}
	for _, c := range reportCommands() {
		commander.Register(c, "reports")
	}
	commander.Register(&watchlistCmd{}, "watchlist")
}
