package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/google/subcommands"

	"stockfolio/quote"
)

// fetchCmd fetches live prices for the symbols in the ledger.
type fetchCmd struct {
	urlTemplate string
	jsonPath    string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch live prices for the ledger's symbols" }
func (*fetchCmd) Usage() string {
	return `folio fetch [-url <template> -path <jsonpath>] [symbol...]

  Fetches and prints live prices. Without arguments, every symbol in the
  user's ledger is fetched. By default the Yahoo Finance quote API is used;
  -url and -path switch to any JSON-over-HTTP endpoint, where <template>
  contains {symbol} and <jsonpath> selects the price in the response.

Usage Examples:
# Fetch every held symbol.
$ folio fetch

# Fetch from a custom endpoint.
$ folio fetch -url 'https://api.example.com/q/{symbol}' -path '$.last' AAPL
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.urlTemplate, "url", "", "URL template of a custom quote endpoint, with {symbol}.")
	f.StringVar(&c.jsonPath, "path", "", "jsonpath expression selecting the price in the response.")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := f.Args()
	if len(symbols) == 0 {
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
		symbols = slices.Collect(ledger.Symbols())
	}
	if len(symbols) == 0 {
		fmt.Println("No symbols to fetch.")
		return subcommands.ExitSuccess
	}

	var source quote.Source = quote.NewYahoo()
	if c.urlTemplate != "" {
		if c.jsonPath == "" {
			fmt.Fprintln(os.Stderr, "Error: -url requires -path")
			return subcommands.ExitUsageError
		}
		source = quote.NewJSONAPI(c.urlTemplate, c.jsonPath)
	}

	svc := quote.NewService(source, quote.Options{})
	prices, err := svc.Prices(ctx, symbols)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error fetching prices:", err)
		return subcommands.ExitFailure
	}

	fetched := make([]string, 0, len(prices))
	for symbol := range prices {
		fetched = append(fetched, symbol)
	}
	sort.Strings(fetched)
	for _, symbol := range fetched {
		fmt.Printf("%-8s %.4f\n", symbol, prices[symbol])
	}
	for _, symbol := range symbols {
		if _, ok := prices.Lookup(symbol); !ok {
			fmt.Fprintf(os.Stderr, "Warning: no price for %s\n", symbol)
		}
	}
	return subcommands.ExitSuccess
}
