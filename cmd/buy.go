package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"stockfolio"
)

// tradeFlags are the flags shared by the buy and sell subcommands.
type tradeFlags struct {
	date     string
	symbol   string
	name     string
	shares   float64
	price    float64
	account  string
	exchange string
	currency string
}

func (t *tradeFlags) register(f *flag.FlagSet) {
	f.StringVar(&t.date, "d", stockfolio.Today().String(), "Date of the trade.")
	f.StringVar(&t.symbol, "s", "", "Ticker symbol of the instrument.")
	f.StringVar(&t.name, "n", "", "Display name of the instrument.")
	f.Float64Var(&t.shares, "q", 0, "Quantity of shares traded.")
	f.Float64Var(&t.price, "p", 0, "Price per share.")
	f.StringVar(&t.account, "a", "", "Account the trade belongs to.")
	f.StringVar(&t.exchange, "e", "", "Exchange the trade was made on.")
	f.StringVar(&t.currency, "c", stockfolio.USD, "Currency of the trade (USD or CAD).")
}

// transaction validates the flags and builds the transaction.
func (t *tradeFlags) transaction(typ stockfolio.TxType) (stockfolio.Transaction, error) {
	on, err := stockfolio.ParseDate(t.date)
	if err != nil {
		return stockfolio.Transaction{}, err
	}
	if t.shares <= 0 {
		return stockfolio.Transaction{}, fmt.Errorf("quantity must be positive, got %v", t.shares)
	}
	if t.price <= 0 {
		return stockfolio.Transaction{}, fmt.Errorf("price must be positive, got %v", t.price)
	}
	tx := stockfolio.NewTransaction(on, typ, t.symbol, t.name, t.shares, t.price)
	tx.Account = t.account
	tx.Exchange = t.exchange
	tx.Currency = stockfolio.NormalizeCurrency(t.currency)
	return tx.Normalize(), nil
}

// recordTrade appends the transaction to the user's ledger.
func recordTrade(tx stockfolio.Transaction) subcommands.ExitStatus {
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
	ledger.Append(tx)
	if err := s.Save(*userID, ledger); err != nil {
		fmt.Fprintln(os.Stderr, "Error saving ledger:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s %s x %s at %s (%s)\n", tx.Type, tx.Symbol, trimFloat(tx.Shares), trimFloat(tx.Price), tx.ID)
	return subcommands.ExitSuccess
}

func trimFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}

type buyCmd struct {
	tradeFlags
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a buy transaction" }
func (*buyCmd) Usage() string {
	return `folio buy -s <symbol> -q <shares> -p <price> [-d <date>] [-n <name>] [-c <currency>]

  Records the purchase of shares in the user's ledger.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tx, err := c.transaction(stockfolio.Buy)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	return recordTrade(tx)
}
