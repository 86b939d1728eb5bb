package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"stockfolio"
)

type importCmd struct {
	input   string
	replace bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from a backup document" }
func (*importCmd) Usage() string {
	return `folio import [-i <file>] [-replace]

  Reads a backup document written by 'folio export' and merges its
  transactions into the user's ledger: records with a known id replace the
  existing ones, new records are appended. With -replace the whole ledger is
  replaced instead of merged.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "File to read the backup from. Defaults to stdin.")
	f.BoolVar(&c.replace, "replace", false, "Replace the ledger instead of merging.")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in := os.Stdin
	var err error
	if c.input != "" {
		in, err = os.Open(c.input)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error opening input file:", err)
			return subcommands.ExitFailure
		}
		defer in.Close()
	}

	imported, err := stockfolio.ImportTransactions(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading backup:", err)
		return subcommands.ExitFailure
	}

	s, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error opening store:", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	merged := imported
	if !c.replace {
		ledger, err := s.Load(*userID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error loading ledger:", err)
			return subcommands.ExitFailure
		}
		merged = stockfolio.MergeTransactions(ledger.Slice(), imported)
	}

	if err := s.Save(*userID, stockfolio.NewLedger(merged...)); err != nil {
		fmt.Fprintln(os.Stderr, "Error saving ledger:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d transactions, ledger now holds %d\n", len(imported), len(merged))
	return subcommands.ExitSuccess
}
