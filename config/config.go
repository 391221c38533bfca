// Package config loads the per-base-directory run configuration: input
// sources with their parser settings, price fetch targets, output format
// and rule store location.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robinvdvleuten/ledgerimport/importer"
	"github.com/robinvdvleuten/ledgerimport/journal"
	"github.com/robinvdvleuten/ledgerimport/prices"
)

// FileName is the configuration file expected at the base directory.
const FileName = "ledgerimport.json"

// Config is the parsed run configuration.
type Config struct {
	Inputs []InputConfig `json:"inputs"`
	Prices PricesConfig  `json:"prices"`
	Format FormatConfig  `json:"format"`

	// RulesFile is the rule store path, relative to the base directory.
	RulesFile string `json:"rules_file"`

	// AccountsFile optionally points at a journal whose account
	// declarations pre-seed the interactive suggestions.
	AccountsFile string `json:"accounts_file,omitempty"`

	base string
}

// InputConfig describes one statement source under <base>/input/<name>.
type InputConfig struct {
	Name   string      `json:"name"`
	Parser string      `json:"parser"`
	CSV    *CSVOptions `json:"csv,omitempty"`
}

// CSVOptions configures the generic CSV statement parser.
type CSVOptions struct {
	Account      string `json:"account"`
	Currency     string `json:"currency"`
	Separator    string `json:"separator,omitempty"`
	SkipRows     int    `json:"skip_rows"`
	DateColumn   int    `json:"date_column"`
	TextColumn   int    `json:"text_column"`
	AmountColumn int    `json:"amount_column"`
	DateLayout   string `json:"date_layout"`
	Numbers      string `json:"numbers,omitempty"`
}

// PricesConfig lists the commodities whose daily prices are fetched.
type PricesConfig struct {
	AlphaVantageKey string         `json:"alphavantage_key"`
	Equities        []EquityConfig `json:"equities,omitempty"`
	Forex           []ForexConfig  `json:"forex,omitempty"`
}

// EquityConfig is one equity price target.
type EquityConfig struct {
	Key      string `json:"key"`
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
}

// ForexConfig is one currency-pair price target.
type ForexConfig struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FormatConfig overrides the journal output format.
type FormatConfig struct {
	DecimalSeparator string `json:"decimal_separator,omitempty"`
	BaseCommodity    string `json:"base_commodity,omitempty"`
}

// Load reads and validates the configuration at the base directory.
func Load(base string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(base, FileName))
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	cfg := &Config{RulesFile: "rules.json", base: base}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	for _, input := range cfg.Inputs {
		if input.Name == "" {
			return nil, fmt.Errorf("input without a name")
		}
		switch input.Parser {
		case "csv":
			if input.CSV == nil {
				return nil, fmt.Errorf("input %s: csv parser needs csv options", input.Name)
			}
			if input.CSV.Account == "" || input.CSV.Currency == "" {
				return nil, fmt.Errorf("input %s: csv options need account and currency", input.Name)
			}
			if input.CSV.DateLayout == "" {
				return nil, fmt.Errorf("input %s: csv options need a date layout", input.Name)
			}
			if _, err := numberFormat(input.CSV.Numbers); err != nil {
				return nil, fmt.Errorf("input %s: %w", input.Name, err)
			}
		default:
			return nil, fmt.Errorf("input %s: unknown parser %q", input.Name, input.Parser)
		}
	}

	return cfg, nil
}

// Base returns the base directory the configuration was loaded from.
func (c *Config) Base() string {
	return c.base
}

// OutputDir returns the output directory of the run.
func (c *Config) OutputDir() string {
	return filepath.Join(c.base, "output")
}

// RulesPath returns the absolute rule store path.
func (c *Config) RulesPath() string {
	return filepath.Join(c.base, c.RulesFile)
}

// AccountsPath returns the absolute extra-accounts journal path, or empty
// when none is configured.
func (c *Config) AccountsPath() string {
	if c.AccountsFile == "" {
		return ""
	}
	return filepath.Join(c.base, c.AccountsFile)
}

// JournalFormat returns the output format with defaults applied.
func (c *Config) JournalFormat() journal.Format {
	format := journal.DefaultFormat
	if c.Format.DecimalSeparator != "" {
		format.DecimalSeparator = c.Format.DecimalSeparator
	}
	if c.Format.BaseCommodity != "" {
		format.BaseCommodity = c.Format.BaseCommodity
	}
	return format
}

// BuildInputs materializes the configured inputs as importer inputs
// rooted under <base>/input.
func (c *Config) BuildInputs() ([]importer.Input, error) {
	inputs := make([]importer.Input, 0, len(c.Inputs))
	for _, input := range c.Inputs {
		parser, err := buildParser(input)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, importer.Input{
			Name:   input.Name,
			Source: filepath.Join(c.base, "input", input.Name),
			Parser: parser,
		})
	}
	return inputs, nil
}

func buildParser(input InputConfig) (importer.Parser, error) {
	switch input.Parser {
	case "csv":
		numbers, err := numberFormat(input.CSV.Numbers)
		if err != nil {
			return nil, err
		}
		var separator rune
		if input.CSV.Separator != "" {
			separator = []rune(input.CSV.Separator)[0]
		}
		return &importer.CSVParser{
			Account:      input.CSV.Account,
			Currency:     input.CSV.Currency,
			Separator:    separator,
			SkipRows:     input.CSV.SkipRows,
			DateColumn:   input.CSV.DateColumn,
			TextColumn:   input.CSV.TextColumn,
			AmountColumn: input.CSV.AmountColumn,
			DateLayout:   input.CSV.DateLayout,
			Numbers:      numbers,
		}, nil
	default:
		return nil, fmt.Errorf("unknown parser %q", input.Parser)
	}
}

func numberFormat(name string) (importer.NumberFormat, error) {
	switch name {
	case "", "us":
		return importer.NumberUS, nil
	case "ch":
		return importer.NumberCH, nil
	case "de":
		return importer.NumberDE, nil
	default:
		return 0, fmt.Errorf("unknown number format %q", name)
	}
}

// PriceTargets returns the configured price fetch targets.
func (c *Config) PriceTargets() []prices.Target {
	targets := make([]prices.Target, 0, len(c.Prices.Equities)+len(c.Prices.Forex))
	for _, e := range c.Prices.Equities {
		targets = append(targets, prices.Target{
			Type:     prices.Equity,
			Key:      e.Key,
			Symbol:   e.Symbol,
			Currency: e.Currency,
		})
	}
	for _, f := range c.Prices.Forex {
		targets = append(targets, prices.Target{
			Type:       prices.FX,
			FromSymbol: f.From,
			ToSymbol:   f.To,
		})
	}
	return targets
}
