package cli

import "github.com/alecthomas/kong"

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool             `help:"Show timing telemetry for operations."`
	Verbose   bool             `help:"Enable debug logging." short:"v"`
	Version   kong.VersionFlag `help:"Print version information and quit."`
}

type Commands struct {
	Globals

	Import ImportCmd `cmd:"" help:"Parse statements, classify entries and write the journal tree."`
	Prices PricesCmd `cmd:"" help:"Fetch commodity prices and merge them into the price statement."`
}
