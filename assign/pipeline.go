package assign

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/robinvdvleuten/ledgerimport/logging"
	"github.com/robinvdvleuten/ledgerimport/record"
	"github.com/robinvdvleuten/ledgerimport/rules"
)

// Handler is the interactive disambiguation hook. It receives the entries
// the primary converter left unclassified together with the assignments so
// far, and is expected to grow the rule set backing the primary converter
// through shared state. The engine re-runs afterwards.
type Handler func(ctx context.Context, unassigned []record.Entry, assigned map[string]Assignment) error

// Options configures the optional classification stages.
type Options struct {
	// Interactive, when set, runs between the primary pass and the
	// fallback pass while entries remain unassigned.
	Interactive Handler

	// Fallback, when set, is consulted per entry after the interactive
	// stage, only where the primary converter still yields nil.
	Fallback rules.Converter
}

// Classify runs the staged classification pipeline:
//
//  1. primary converter
//  2. interactive disambiguation (if configured and entries remain), then
//     a fresh primary pass
//  3. primary-or-fallback pass (if configured and entries remain)
//
// Each stage re-runs the engine from scratch; assigned entries can never be
// overridden by a later stage because the fallback is consulted per record
// only where the primary yields nil. Entries unassigned after the last
// configured stage are dropped from output.
func Classify(ctx context.Context, groups *Groups, primary rules.Converter, opts Options) (*Result, error) {
	res, err := Run(groups, primary)
	if err != nil {
		return nil, err
	}

	if len(res.Unassigned) > 0 && opts.Interactive != nil {
		if err := opts.Interactive(ctx, res.Unassigned, res.Assigned); err != nil {
			return nil, err
		}
		res, err = Run(groups, primary)
		if err != nil {
			return nil, err
		}
	}

	if len(res.Unassigned) > 0 && opts.Fallback != nil {
		res, err = Run(groups, rules.WithFallback(primary, opts.Fallback))
		if err != nil {
			return nil, err
		}
	}

	if len(res.Unassigned) > 0 {
		logger := logging.FromContext(ctx)
		for _, e := range res.Unassigned {
			logger.Warn().
				Str("source", e.Source).
				Str("date", e.Date.Format("2006-01-02")).
				Str("text", e.Text).
				Msg("entry left unclassified, dropped from output")
		}
	}

	return res, nil
}

// Unclassified books an entry against the given catch-all account and logs
// a warning, so a run never silently loses movements when used as the
// fallback converter.
type Unclassified struct {
	Account string
	Logger  zerolog.Logger
}

func (c Unclassified) Convert(e record.Entry) (*record.Booking, error) {
	c.Logger.Warn().
		Str("hash", record.ContentHash(e)).
		Str("source", e.Source).
		Str("date", e.Date.Format("2006-01-02")).
		Str("text", e.Text).
		Str("amount", e.Amount.String()).
		Str("currency", e.Currency).
		Msg("applying fallback rule to entry")

	return rules.ToAccount(c.Account).Convert(e)
}
