package main

import (
	"github.com/alecthomas/kong"
)

var (
	// Version is set via ldflags when building.
	Version = "dev"

	cli struct {
		Globals
		Version kong.VersionFlag `help:"Show version information."`
		Commands
	}
)

func main() {
	ctx := kong.Parse(&cli,
		kong.Vars{"version": Version},
		kong.Name("ledgerctl"),
		kong.Description("Maintenance commands for the money tracking ledger."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
