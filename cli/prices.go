package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/robinvdvleuten/ledgerimport/config"
	"github.com/robinvdvleuten/ledgerimport/journal"
	"github.com/robinvdvleuten/ledgerimport/logging"
	"github.com/robinvdvleuten/ledgerimport/prices"
)

// priceStatementName is the durable price statement kept at the base
// directory. It survives output rebuilds and is copied into the output
// tree on every run.
const priceStatementName = "prices.journal"

type PricesCmd struct {
	Base string `help:"Base directory containing the configuration." arg:"" optional:"" default:"." type:"existingdir"`

	Force       bool          `help:"Fetch even when the price statement is fresh."`
	MaxPriceAge time.Duration `help:"Refetch prices when the statement is older than this." default:"48h"`
}

func (cmd *PricesCmd) Run(kctx *kong.Context, globals *Globals) error {
	logger := logging.New().Level(zerolog.InfoLevel)
	if globals.Verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}
	runCtx := logging.WithContext(context.Background(), logger)

	cfg, err := config.Load(cmd.Base)
	if err != nil {
		return err
	}

	maxAge := cmd.MaxPriceAge
	if cmd.Force {
		// A zero age makes any existing statement stale.
		maxAge = 0
	}

	if _, err := refreshPrices(runCtx, kctx.Stdout, cfg, cfg.JournalFormat(), maxAge, false); err != nil {
		return err
	}

	path := filepath.Join(cfg.Base(), priceStatementName)

	printSuccess(kctx.Stdout, "Price statement up to date: "+pathStyle.Render(path))
	return nil
}

// refreshPrices returns the current price statement, fetching and merging
// fresh observations first when the statement is stale. With skip set, or
// without an API key or targets, the existing statement is reused as-is.
func refreshPrices(ctx context.Context, out io.Writer, cfg *config.Config, format journal.Format, maxAge time.Duration, skip bool) (string, error) {
	path := filepath.Join(cfg.Base(), priceStatementName)

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	targets := cfg.PriceTargets()
	if skip || cfg.Prices.AlphaVantageKey == "" || len(targets) == 0 {
		return string(existing), nil
	}
	if !prices.Stale(path, maxAge) {
		return string(existing), nil
	}

	printInfof(out, "Fetching prices for %d target(s)", len(targets))
	fetcher := prices.NewFetcher(cfg.Prices.AlphaVantageKey, format)
	fresh, err := fetcher.Fetch(ctx, targets)
	if err != nil {
		return "", err
	}

	merged, conflicts, err := prices.Merge(string(existing), fresh)
	if err != nil {
		return "", err
	}

	logger := logging.FromContext(ctx)
	for _, c := range conflicts {
		logger.Warn().
			Str("date", c.Key[0]).
			Str("pair", c.Key[1]+"/"+c.Key[2]).
			Str("old", c.Existing.Price).
			Str("new", c.Fresh.Price).
			Msg("price changed, keeping the fresh value")
	}

	blob := merged + "\n"
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		return "", err
	}
	return blob, nil
}
