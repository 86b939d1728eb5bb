package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"stockfolio"
	"stockfolio/renderer"
)

type txCmd struct {
	symbol   string
	account  string
	currency string
	delete   string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list or delete transactions in the ledger" }
func (*txCmd) Usage() string {
	return `folio tx [-s <symbol>] [-a <account>] [-c <currency>] [-delete <id>]

  Lists transactions from the user's ledger in date order, or deletes the
  transaction with the given id.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Only transactions for this symbol.")
	f.StringVar(&c.account, "a", "", "Only transactions in this account.")
	f.StringVar(&c.currency, "c", "", "Only transactions in this currency.")
	f.StringVar(&c.delete, "delete", "", "Delete the transaction with this id.")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error opening store:", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	ledger, err := s.Load(*userID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading ledger:", err)
		return subcommands.ExitFailure
	}

	if c.delete != "" {
		if !ledger.Delete(c.delete) {
			fmt.Fprintf(os.Stderr, "Error: no transaction with id %q\n", c.delete)
			return subcommands.ExitFailure
		}
		if err := s.Save(*userID, ledger); err != nil {
			fmt.Fprintln(os.Stderr, "Error saving ledger:", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Deleted transaction %s\n", c.delete)
		return subcommands.ExitSuccess
	}

	var filters []func(stockfolio.Transaction) bool
	if c.symbol != "" {
		filters = append(filters, stockfolio.BySymbol(c.symbol))
	}
	if c.account != "" {
		filters = append(filters, stockfolio.ByAccount(c.account))
	}
	if c.currency != "" {
		filters = append(filters, stockfolio.ByCurrency(c.currency))
	}

	// flags combine as AND: -s AAPL -c USD means both must hold.
	match := func(tx stockfolio.Transaction) bool {
		for _, filter := range filters {
			if !filter(tx) {
				return false
			}
		}
		return true
	}
	shown := stockfolio.NewLedger()
	for _, tx := range ledger.Transactions() {
		if match(tx) {
			shown.Append(tx)
		}
	}

	printMarkdown(renderer.RenderTransactionLog(renderer.NewTransactionLog(shown)))
	return subcommands.ExitSuccess
}
