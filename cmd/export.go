package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"stockfolio"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the ledger as a portable backup document" }
func (*exportCmd) Usage() string {
	return `folio export [-o <file>]

  Writes the user's raw transactions as a single JSON backup document, to
  stdout by default. Summaries are not exported, they are recomputed from
  transactions on import.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "File to write the backup to. Defaults to stdout.")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	out := os.Stdout
	if c.output != "" {
		out, err = os.Create(c.output)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error creating output file:", err)
			return subcommands.ExitFailure
		}
		defer out.Close()
	}

	if err := stockfolio.ExportTransactions(out, ledger.Slice()); err != nil {
		fmt.Fprintln(os.Stderr, "Error exporting:", err)
		return subcommands.ExitFailure
	}
	if c.output != "" {
		fmt.Fprintf(os.Stderr, "Exported %d transactions to %s\n", ledger.Len(), c.output)
	}
	return subcommands.ExitSuccess
}
