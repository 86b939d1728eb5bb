package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/google/subcommands"

	"stockfolio"
	"stockfolio/quote"
	"stockfolio/renderer"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	offline bool
	asJSON  bool
	byName  bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio summary report" }
func (*summaryCmd) Usage() string {
	return `folio summary [-offline] [-json] [-by-name]

  Displays the portfolio report: per-currency totals, open and closed
  positions, and the allocation of open positions. Live prices are fetched
  unless -offline is given; positions without a price are valued at cost.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.offline, "offline", false, "Skip live price fetching, value everything at cost.")
	f.BoolVar(&c.asJSON, "json", false, "Emit the report as JSON instead of markdown.")
	f.BoolVar(&c.byName, "by-name", false, "Sort positions by company name instead of symbol.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	var prices stockfolio.PriceMap
	if !c.offline {
		svc := quote.NewService(quote.NewYahoo(), quote.Options{})
		prices, err = svc.Prices(ctx, slices.Collect(ledger.Symbols()))
		if err != nil {
			// prices are advisory, fall back to cost-basis valuation.
			fmt.Fprintln(os.Stderr, "Warning: could not fetch prices:", err)
			prices = nil
		}
	}

	summaries, stats := stockfolio.ComputeSummaries(ledger.Slice(), prices)
	if c.byName {
		stockfolio.SortSummaries(summaries, stockfolio.SortByName)
	}
	report := renderer.NewReport(stockfolio.Today(), summaries, stats)

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintln(os.Stderr, "Error encoding report:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.RenderReport(report))
	return subcommands.ExitSuccess
}
