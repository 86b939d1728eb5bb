// Package cmd implements the CLI application to manage a stock portfolio.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"stockfolio/store"
)

// Register the subcommands.
// A main package calls Register() to install the subcommands, then Execute()
// on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")

	c.Register(&summaryCmd{}, "reports")
	c.Register(&fetchCmd{}, "reports")

	c.Register(&exportCmd{}, "backup")
	c.Register(&importCmd{}, "backup")

	c.Register(&assistCmd{}, "assistant")
}

// As a CLI application the lifecycle is very short lived, so it is ok to use
// global variables for the app-wide flags.

var dataDir = flag.String("data", defaultDataDir(), "Directory holding the per-user ledger files")
var dbFile = flag.String("db", "", "SQLite database file. When set it replaces the file store.")
var userID = flag.String("user", "default", "User whose ledger the command works on")

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.stockfolio"
	}
	return ".stockfolio"
}

// openStore opens the store selected by the app flags. The caller closes it.
func openStore() (store.Store, error) {
	if *dbFile != "" {
		return store.NewSQLiteStore(*dbFile)
	}
	return store.NewFileStore(*dataDir)
}

// printMarkdown renders markdown for the terminal. When rendering fails the
// raw markdown is still printed, the report must never be lost to styling.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
