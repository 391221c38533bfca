package main

import (
	"runtime/debug"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ledgerimport/cli"
)

// Populated at build time via -ldflags.
var (
	version   = ""
	commitSHA = ""
)

func main() {
	cli.Version = version
	cli.CommitSHA = commitSHA

	var commands cli.Commands
	ctx := kong.Parse(&commands,
		kong.Name("ledgerimport"),
		kong.Description("Import bank and broker statements into a plain-text journal."),
		kong.UsageOnError(),
		kong.Vars{"version": buildVersion()},
	)

	err := ctx.Run(&commands.Globals)
	ctx.FatalIfErrorf(err)
}

func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}
