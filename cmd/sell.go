package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"stockfolio"
)

type sellCmd struct {
	tradeFlags
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sell transaction" }
func (*sellCmd) Usage() string {
	return `folio sell -s <symbol> -q <shares> -p <price> [-d <date>] [-c <currency>]

  Records the sale of shares in the user's ledger. Selling more shares than
  held is accepted and leaves a negative position.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tx, err := c.transaction(stockfolio.Sell)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	return recordTrade(tx)
}
