package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"google.golang.org/genai"

	"stockfolio/agent"
)

// assistCmd extracts transactions from freeform text with the AI assistant.
type assistCmd struct {
	input  string
	dryRun bool
	model  string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "extract transactions from freeform text" }
func (*assistCmd) Usage() string {
	return `folio assist [-i <file>] [-dry-run] [text...]

  Extracts trades from freeform text (a broker email, a pasted statement, or
  a plain sentence) and records them in the user's ledger. The text is taken
  from the arguments, or from -i, or from stdin. Requires a configured
  Gemini API key.

Usage Examples:
$ folio assist "bought 10 AAPL at 150 on 2025-03-01"
$ folio assist -i confirmation_email.txt -dry-run
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "File to read the text from.")
	f.BoolVar(&c.dryRun, "dry-run", false, "Show the extracted transactions without recording them.")
	f.StringVar(&c.model, "model", agent.DefaultModel, "Gemini model to use for extraction.")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	text, err := c.readText(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading input:", err)
		return subcommands.ExitFailure
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "Error: no text to extract from")
		return subcommands.ExitUsageError
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	extractor := agent.NewExtractor(client)
	extractor.Model = c.model
	txs, err := extractor.Extract(ctx, text)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Extraction failed:", err)
		return subcommands.ExitFailure
	}
	if len(txs) == 0 {
		fmt.Println("No trades found in the text.")
		return subcommands.ExitSuccess
	}

	for _, tx := range txs {
		fmt.Printf("%s %s %s x %s at %s %s\n",
			tx.Date, tx.Type, tx.Symbol, trimFloat(tx.Shares), trimFloat(tx.Price), tx.Currency)
	}
	if c.dryRun {
		return subcommands.ExitSuccess
	}

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
	ledger.Append(txs...)
	if err := s.Save(*userID, ledger); err != nil {
		fmt.Fprintln(os.Stderr, "Error saving ledger:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %d transactions\n", len(txs))
	return subcommands.ExitSuccess
}

func (c *assistCmd) readText(f *flag.FlagSet) (string, error) {
	if f.NArg() > 0 {
		return strings.Join(f.Args(), " "), nil
	}
	if c.input != "" {
		data, err := os.ReadFile(c.input)
		return string(data), err
	}
	data, err := io.ReadAll(os.Stdin)
	return string(data), err
}
