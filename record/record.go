// Package record defines the transaction data model shared by statement
// parsers, the assignment engine and the journal writer.
//
// A TransactionRecord is a closed sum over three variants:
//
//   - Entry: a single-sided movement awaiting classification
//   - Assert: a balance assertion, passed through unclassified
//   - Raw: a pre-built multi-line booking bypassing classification
//
// All variants carry the originating document path and a date. The set of
// variants is sealed; code dispatching on record kind can rely on exhaustive
// switches over the three concrete types.
package record

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SentinelDate is the minimum watermark date for an output file before any
// record has been routed to it. It predates any plausible statement date so
// that max-date folding needs no special empty case.
var SentinelDate = time.Date(1000, time.January, 1, 0, 0, 0, 0, time.UTC)

// TransactionRecord is one imported movement, assertion or pre-built booking.
// Implementations are immutable value types created once by a parser and
// consumed exactly once by the assignment engine.
type TransactionRecord interface {
	// Document returns the path of the statement document this record was
	// extracted from. Used for traceability and destination-path derivation.
	Document() string

	// When returns the record's transaction date.
	When() time.Time

	record()
}

// Entry is a single-sided movement observed on Account, awaiting
// classification. Classification determines the balancing side.
type Entry struct {
	Source   string
	Account  string
	Date     time.Time
	Text     string
	Amount   decimal.Decimal
	Currency string
}

var _ TransactionRecord = Entry{}

func (e Entry) Document() string { return e.Source }
func (e Entry) When() time.Time  { return e.Date }
func (e Entry) record()          {}

// Assert states that Account held exactly Amount in Currency on Date.
// It carries no classification and is written through unchanged.
type Assert struct {
	Source   string
	Account  string
	Date     time.Time
	Amount   decimal.Decimal
	Currency string
}

var _ TransactionRecord = Assert{}

func (a Assert) Document() string { return a.Source }
func (a Assert) When() time.Time  { return a.Date }
func (a Assert) record()          {}

// Raw is a fully specified multi-line booking produced by a parser that
// already knows the complete double-entry shape, e.g. a brokerage trade
// settlement. It bypasses classification entirely.
type Raw struct {
	Source string
	Date   time.Time
	Text   string
	Lines  []RawLine
}

var _ TransactionRecord = Raw{}

func (r Raw) Document() string { return r.Source }
func (r Raw) When() time.Time  { return r.Date }
func (r Raw) record()          {}

// RawLine is one leg of a Raw record. A nil Amount marks the leg whose
// amount the ledger tool infers as the balancing remainder.
type RawLine struct {
	Account   string
	Amount    *decimal.Decimal
	Commodity Commodity
}

// Commodity names the unit of an amount. It optionally carries a cost-basis
// clause rendered as "<amount> <symbol> @@ <value> <symbol>"; the clause
// commodity may itself be priced, so rendering is recursive.
type Commodity struct {
	Symbol   string
	Exchange *Exchange
}

// Exchange is the "@@ <value> <commodity>" cost-basis annotation of a
// priced commodity.
type Exchange struct {
	Value     decimal.Decimal
	Commodity Commodity
}

// Plain returns an unpriced commodity with the given symbol.
func Plain(symbol string) Commodity {
	return Commodity{Symbol: symbol}
}

// Booking is a fully classified double-entry record ready for output.
type Booking struct {
	Date        time.Time
	Description string
	Lines       []BookingLine
}

// BookingLine is one leg of a booking. A nil Amount means the amount is
// inferred by the ledger tool as the balancing remainder.
type BookingLine struct {
	Account   string
	Amount    *decimal.Decimal
	Commodity Commodity
}

// ValidateBooking checks the structural shape of a converter result. It does
// not verify balance; a converter returning a malformed booking is a
// programming error, and callers treat a validation failure as fatal.
func ValidateBooking(b *Booking) error {
	if b == nil {
		return fmt.Errorf("booking is nil")
	}
	if b.Date.IsZero() {
		return fmt.Errorf("booking has no date")
	}
	if len(b.Lines) == 0 {
		return fmt.Errorf("booking %q has no lines", b.Description)
	}
	for i, line := range b.Lines {
		if line.Account == "" {
			return fmt.Errorf("booking %q: line %d has no account", b.Description, i)
		}
		if line.Amount != nil && line.Commodity.Symbol == "" {
			return fmt.Errorf("booking %q: line %d has an amount but no commodity", b.Description, i)
		}
	}
	return nil
}

// Dec is a convenience helper returning a pointer to d, for building
// booking and raw lines literally.
func Dec(d decimal.Decimal) *decimal.Decimal {
	return &d
}
