package rules

import (
	"fmt"

	"github.com/robinvdvleuten/ledgerimport/record"
)

// Converter maps an entry to a booking, or to nil when the entry is not
// classified by this converter. A returned error signals a structural
// contract violation (a malformed booking) and is fatal for the run; it is
// never used for ordinary "no match" outcomes.
type Converter interface {
	Convert(e record.Entry) (*record.Booking, error)
}

// SeqConverter evaluates its children in order and returns the first
// non-nil booking. Every non-nil result is shape-validated before it is
// returned, so a misbehaving child cannot leak a malformed booking into
// the write path.
type SeqConverter struct {
	Converters []Converter
}

// Seq chains converters first-match-wins.
func Seq(converters ...Converter) SeqConverter {
	return SeqConverter{Converters: converters}
}

func (c SeqConverter) Convert(e record.Entry) (*record.Booking, error) {
	for _, child := range c.Converters {
		booking, err := child.Convert(e)
		if err != nil {
			return nil, err
		}
		if booking == nil {
			continue
		}
		if err := record.ValidateBooking(booking); err != nil {
			return nil, fmt.Errorf("converter produced malformed booking: %w", err)
		}
		return booking, nil
	}
	return nil, nil
}

// IfElseConverter gates two converters behind a matcher. Exactly one branch
// is evaluated per entry. Either branch may be nil, meaning "unclassified".
type IfElseConverter struct {
	Cond Matcher
	Then Converter
	Else Converter
}

// IfElse builds a matcher-gated conditional converter.
func IfElse(cond Matcher, then, els Converter) IfElseConverter {
	return IfElseConverter{Cond: cond, Then: then, Else: els}
}

func (c IfElseConverter) Convert(e record.Entry) (*record.Booking, error) {
	branch := c.Else
	if c.Cond.Matches(e) {
		branch = c.Then
	}
	if branch == nil {
		return nil, nil
	}
	return branch.Convert(e)
}

// ConstConverter classifies every entry with a copy of the same booking.
type ConstConverter struct {
	Booking record.Booking
}

// Const returns a converter yielding the given booking for every entry.
func Const(b record.Booking) ConstConverter {
	return ConstConverter{Booking: b}
}

func (c ConstConverter) Convert(e record.Entry) (*record.Booking, error) {
	booking := c.Booking
	booking.Lines = append([]record.BookingLine(nil), c.Booking.Lines...)
	return &booking, nil
}

// ToAccountConverter books the entry's observed movement against a single
// destination account whose amount is inferred as the balancing remainder.
type ToAccountConverter struct {
	Account string
}

// ToAccount books every entry against the given destination account.
func ToAccount(account string) ToAccountConverter {
	return ToAccountConverter{Account: account}
}

func (c ToAccountConverter) Convert(e record.Entry) (*record.Booking, error) {
	return &record.Booking{
		Date:        e.Date,
		Description: e.Text,
		Lines: []record.BookingLine{
			{Account: e.Account, Amount: record.Dec(e.Amount), Commodity: record.Plain(e.Currency)},
			{Account: c.Account},
		},
	}, nil
}

// FallbackConverter consults Fallback only for entries the Primary leaves
// unclassified, so earlier assignments are never overridden.
type FallbackConverter struct {
	Primary  Converter
	Fallback Converter
}

// WithFallback wraps a primary converter with a per-entry fallback.
func WithFallback(primary, fallback Converter) FallbackConverter {
	return FallbackConverter{Primary: primary, Fallback: fallback}
}

func (c FallbackConverter) Convert(e record.Entry) (*record.Booking, error) {
	booking, err := c.Primary.Convert(e)
	if err != nil || booking != nil {
		return booking, err
	}
	return c.Fallback.Convert(e)
}
