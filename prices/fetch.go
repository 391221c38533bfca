package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/ledgerimport/journal"
)

// DefaultQueryURL is the Alpha Vantage query endpoint.
const DefaultQueryURL = "https://www.alphavantage.co/query"

// DefaultRequestDelay is the minimum pause between consecutive requests,
// respecting the provider's free-tier rate limit.
const DefaultRequestDelay = 15 * time.Second

// TargetType selects the Alpha Vantage series a target is fetched from.
type TargetType string

const (
	// Equity fetches a daily close series for a stock or fund symbol.
	Equity TargetType = "EQUITY"
	// FX fetches a daily exchange-rate series for a currency pair.
	FX TargetType = "FX"
)

// Target is one commodity whose daily prices are fetched.
type Target struct {
	Type TargetType

	// Key is the commodity symbol written to the price statement for an
	// equity target; Symbol and Currency are the provider-side ticker and
	// quote currency.
	Key      string
	Symbol   string
	Currency string

	// FromSymbol and ToSymbol name an FX pair.
	FromSymbol string
	ToSymbol   string
}

// Fetcher downloads daily price series. Requests run sequentially with an
// enforced minimum delay in between; a stalled request blocks until its
// context is done.
type Fetcher struct {
	APIKey   string
	QueryURL string
	Delay    time.Duration
	Client   *http.Client
	Format   journal.Format
}

// NewFetcher creates a fetcher with the default endpoint and request delay.
func NewFetcher(apiKey string, format journal.Format) *Fetcher {
	return &Fetcher{
		APIKey:   apiKey,
		QueryURL: DefaultQueryURL,
		Delay:    DefaultRequestDelay,
		Client:   http.DefaultClient,
		Format:   format,
	}
}

// Fetch downloads the daily series for every target and renders them as
// price statement lines, one observation per line.
func (f *Fetcher) Fetch(ctx context.Context, targets []Target) (string, error) {
	var out strings.Builder

	for i, target := range targets {
		if i > 0 {
			if err := f.pause(ctx); err != nil {
				return "", err
			}
		}

		switch target.Type {
		case Equity:
			series, err := f.query(ctx, url.Values{
				"function":   {"TIME_SERIES_DAILY"},
				"symbol":     {target.Symbol},
				"outputsize": {"full"},
				"apikey":     {f.APIKey},
			}, "Time Series (Daily)")
			if err != nil {
				return "", fmt.Errorf("fetching %s: %w", target.Symbol, err)
			}
			if err := f.render(&out, series, target.Key, target.Currency); err != nil {
				return "", fmt.Errorf("fetching %s: %w", target.Symbol, err)
			}

		case FX:
			series, err := f.query(ctx, url.Values{
				"function":    {"FX_DAILY"},
				"from_symbol": {target.FromSymbol},
				"to_symbol":   {target.ToSymbol},
				"outputsize":  {"full"},
				"apikey":      {f.APIKey},
			}, "Time Series FX (Daily)")
			if err != nil {
				return "", fmt.Errorf("fetching %s/%s: %w", target.FromSymbol, target.ToSymbol, err)
			}
			if err := f.render(&out, series, target.FromSymbol, target.ToSymbol); err != nil {
				return "", fmt.Errorf("fetching %s/%s: %w", target.FromSymbol, target.ToSymbol, err)
			}

		default:
			return "", fmt.Errorf("unknown price target type %q", target.Type)
		}
	}

	return out.String(), nil
}

// query performs one request and extracts the named daily series, a mapping
// from date to per-day value objects.
func (f *Fetcher) query(ctx context.Context, params url.Values, seriesKey string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.QueryURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	raw, err := jsonpath.Get(fmt.Sprintf("$[%q]", seriesKey), body)
	if err != nil {
		return nil, fmt.Errorf("response has no %q series: %w", seriesKey, err)
	}
	series, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%q series has unexpected shape", seriesKey)
	}
	return series, nil
}

// render writes one "P <date> <sym1> <price> <sym2>" line per observation.
func (f *Fetcher) render(out *strings.Builder, series map[string]interface{}, symbol1, symbol2 string) error {
	for date, values := range series {
		closeRaw, err := jsonpath.Get(`$["4. close"]`, values)
		if err != nil {
			return fmt.Errorf("observation %s has no close value: %w", date, err)
		}
		closeStr, ok := closeRaw.(string)
		if !ok {
			return fmt.Errorf("observation %s has non-string close value", date)
		}

		price, err := decimal.NewFromString(strings.ReplaceAll(closeStr, ",", ""))
		if err != nil {
			return fmt.Errorf("observation %s: invalid close %q: %w", date, closeStr, err)
		}

		fmt.Fprintf(out, "P %s %s %s %s\n",
			date,
			journal.EscapeCommodity(symbol1),
			f.Format.Number(price, journal.PriceDecimals),
			journal.EscapeCommodity(symbol2),
		)
	}
	return nil
}

// pause waits the configured inter-request delay, or returns early when the
// context is cancelled.
func (f *Fetcher) pause(ctx context.Context) error {
	if f.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(f.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stale reports whether the price statement at path is missing or older
// than maxAge, in which case a fresh fetch is due.
func Stale(path string, maxAge time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > maxAge
}
