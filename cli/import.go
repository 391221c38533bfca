package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/robinvdvleuten/ledgerimport/assign"
	"github.com/robinvdvleuten/ledgerimport/config"
	"github.com/robinvdvleuten/ledgerimport/importer"
	"github.com/robinvdvleuten/ledgerimport/interactive"
	"github.com/robinvdvleuten/ledgerimport/journal"
	"github.com/robinvdvleuten/ledgerimport/logging"
	"github.com/robinvdvleuten/ledgerimport/record"
	"github.com/robinvdvleuten/ledgerimport/rules"
	"github.com/robinvdvleuten/ledgerimport/telemetry"
)

type ImportCmd struct {
	Base string `help:"Base directory containing the configuration, inputs and outputs." arg:"" optional:"" default:"." type:"existingdir"`

	NonInteractive  bool          `help:"Skip the interactive disambiguation loop."`
	NoFallback      bool          `help:"Drop unclassified entries instead of booking them against the fallback account."`
	FallbackAccount string        `help:"Catch-all account for unclassified entries." default:"Unknown"`
	SkipPrices      bool          `help:"Reuse the existing price statement without fetching."`
	MaxPriceAge     time.Duration `help:"Refetch prices when the statement is older than this." default:"48h"`
	Watch           bool          `help:"Re-run the import whenever the input tree changes."`
	Workers         int           `help:"Concurrent statement parsers (0 selects the CPU count)."`
}

func (cmd *ImportCmd) Run(kctx *kong.Context, globals *Globals) error {
	logger := logging.New().Level(zerolog.InfoLevel)
	if globals.Verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}
	runCtx := logging.WithContext(context.Background(), logger)

	var collector telemetry.Collector
	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		defer func() {
			_, _ = fmt.Fprintln(kctx.Stderr)
			collector.Report(kctx.Stderr)
		}()
	}

	cfg, err := config.Load(cmd.Base)
	if err != nil {
		return err
	}

	// The disambiguation loop needs an operator at a terminal; watch mode
	// runs unattended by definition.
	withOperator := !cmd.NonInteractive && !cmd.Watch && isTerminal()

	if err := cmd.runOnce(runCtx, kctx.Stdout, cfg, withOperator); err != nil {
		return err
	}

	if cmd.Watch {
		return cmd.watch(runCtx, kctx.Stdout, cfg)
	}
	return nil
}

// runOnce executes one full import: refresh prices, parse statements,
// classify entries and write the output tree. Parsing and classification
// complete in memory before the output directory is touched, so a failed
// run never leaves a half-mixed output tree behind.
func (cmd *ImportCmd) runOnce(ctx context.Context, out io.Writer, cfg *config.Config, withOperator bool) error {
	timer := telemetry.FromContext(ctx).Start("import " + filepath.Base(cfg.Base()))
	defer timer.End()

	format := cfg.JournalFormat()

	pricesTimer := timer.Child("Refresh prices")
	priceBlob, err := refreshPrices(ctx, out, cfg, format, cmd.MaxPriceAge, cmd.SkipPrices)
	pricesTimer.End()
	if err != nil {
		return err
	}

	inputs, err := cfg.BuildInputs()
	if err != nil {
		return err
	}
	parseTimer := timer.Child("Parse statements")
	groups, err := importer.ParseAll(ctx, inputs, cmd.Workers)
	parseTimer.End()
	if err != nil {
		return err
	}

	store, err := rules.Open(cfg.RulesPath())
	if err != nil {
		return err
	}
	// Rules authored during the disambiguation loop must survive an
	// aborted or failed run.
	defer func() {
		if err := store.Save(); err != nil {
			logger := logging.FromContext(ctx)
			logger.Error().Err(err).Msg("persisting rule store")
		}
	}()

	extraAccounts, err := readExtraAccounts(cfg.AccountsPath())
	if err != nil {
		return err
	}

	opts := assign.Options{}
	if withOperator {
		opts.Interactive = func(ctx context.Context, unassigned []record.Entry, assigned map[string]assign.Assignment) error {
			session := interactive.NewSession(unassigned, assigned, store, extraAccounts)
			return interactive.Run(session, format, out)
		}
	}
	if !cmd.NoFallback {
		opts.Fallback = assign.Unclassified{
			Account: cmd.FallbackAccount,
			Logger:  logging.FromContext(ctx),
		}
	}

	classifyTimer := timer.Child("Classify entries")
	res, err := assign.Classify(ctx, groups, store.Converter(), opts)
	classifyTimer.End()
	if err != nil {
		return err
	}

	writeTimer := timer.Child("Write journals")
	err = writeOutput(cfg.OutputDir(), format, res, priceBlob)
	writeTimer.End()
	if err != nil {
		return err
	}

	printSuccess(out, fmt.Sprintf("Imported %d file(s) into %s", len(res.Files), pathStyle.Render(cfg.OutputDir())))
	return nil
}

// writeOutput clears and recreates the output directory, writes every
// journal file plus the price statement, and finishes with the root index.
func writeOutput(outputDir string, format journal.Format, res *assign.Result, priceBlob string) error {
	if err := os.RemoveAll(outputDir); err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	index := make([]journal.IndexEntry, 0, len(res.Files)+1)
	if priceBlob != "" {
		if err := os.WriteFile(filepath.Join(outputDir, "prices.journal"), []byte(priceBlob), 0o644); err != nil {
			return err
		}
		// The sentinel watermark sorts the price statement first.
		index = append(index, journal.IndexEntry{Path: "prices.journal", Watermark: record.SentinelDate})
	}

	for _, file := range res.Files {
		path := filepath.Join(outputDir, file)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		w := journal.NewWriter(f, format)
		for _, op := range res.Writes[file] {
			if err := op(w); err != nil {
				_ = f.Close()
				return err
			}
		}
		if err := f.Close(); err != nil {
			return err
		}
		index = append(index, journal.IndexEntry{Path: file, Watermark: res.Watermarks[file]})
	}

	root, err := os.Create(filepath.Join(outputDir, "root.journal"))
	if err != nil {
		return err
	}
	defer root.Close()
	return journal.WriteIndex(root, index)
}

// watch re-runs the import on input tree changes until interrupted. The
// disambiguation loop stays disabled while watching.
func (cmd *ImportCmd) watch(ctx context.Context, out io.Writer, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	inputDir := filepath.Join(cfg.Base(), "input")
	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	printInfof(out, "Watching %s for changes", pathStyle.Render(inputDir))

	// Editors often write files in multiple steps; coalesce event bursts
	// before re-running.
	const debounceDelay = 500 * time.Millisecond
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	rerun := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger := logging.FromContext(ctx)
			logger.Warn().Err(err).Msg("file watcher error")

		case <-rerun:
			if err := cmd.runOnce(ctx, out, cfg, false); err != nil {
				printError(out, err.Error())
			}
		}
	}
}
