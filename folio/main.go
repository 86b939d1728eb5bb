// Command folio manages a personal stock portfolio from the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"stockfolio/cmd"
)

// completion describes the CLI for shell completion. Install with
// COMP_INSTALL=1 folio.
var completion = &complete.Command{
	Flags: map[string]complete.Predictor{
		"data": predict.Dirs("*"),
		"db":   predict.Files("*.db"),
		"user": predict.Something,
	},
	Sub: map[string]*complete.Command{
		"buy":     {},
		"sell":    {},
		"tx":      {},
		"summary": {},
		"fetch":   {},
		"export":  {Flags: map[string]complete.Predictor{"o": predict.Files("*.json")}},
		"import":  {Flags: map[string]complete.Predictor{"i": predict.Files("*.json")}},
		"assist":  {Flags: map[string]complete.Predictor{"i": predict.Files("*")}},
	},
}

func main() {
	name := path.Base(os.Args[0])
	completion.Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
