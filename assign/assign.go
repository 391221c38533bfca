// Package assign implements the booking-assignment engine: it partitions
// grouped transaction records into assigned bookings and unassigned entries,
// accumulates deferred per-file write lists, and tracks per-file watermark
// dates for the root index.
package assign

import (
	"fmt"
	"time"

	"github.com/robinvdvleuten/ledgerimport/journal"
	"github.com/robinvdvleuten/ledgerimport/record"
	"github.com/robinvdvleuten/ledgerimport/rules"
)

// Groups maps destination-file identifiers to their transaction records.
// Insertion order is preserved both across files and within a file, which
// makes engine output deterministic for a given input set.
type Groups struct {
	order  []string
	byFile map[string][]record.TransactionRecord
}

// NewGroups returns an empty record grouping.
func NewGroups() *Groups {
	return &Groups{byFile: make(map[string][]record.TransactionRecord)}
}

// Add appends records to a destination file, registering the file on first
// use.
func (g *Groups) Add(file string, recs ...record.TransactionRecord) {
	if _, ok := g.byFile[file]; !ok {
		g.order = append(g.order, file)
	}
	g.byFile[file] = append(g.byFile[file], recs...)
}

// Files returns the destination files in insertion order.
func (g *Groups) Files() []string {
	return g.order
}

// Records returns a file's records in insertion order.
func (g *Groups) Records(file string) []record.TransactionRecord {
	return g.byFile[file]
}

// WriteOp is a deferred write action, closed over its resolved booking or
// assertion. Deferring writes lets the classification stages re-run without
// touching any output file until the final stage has settled.
type WriteOp func(w *journal.Writer) error

// Assignment pairs an entry with the booking its converter produced.
type Assignment struct {
	Entry   record.Entry
	Booking *record.Booking
}

// Result is the outcome of one engine pass.
type Result struct {
	// Unassigned lists entries the converter returned nil for, in input
	// order. Assert and Raw records always produce output and never
	// appear here.
	Unassigned []record.Entry

	// Assigned maps each classified entry's content hash to its booking.
	Assigned map[string]Assignment

	// Writes holds each file's deferred write actions in input order.
	Writes map[string][]WriteOp

	// Watermarks holds each file's maximum routed transaction date,
	// starting from the sentinel minimum date. Used only for ordering the
	// root index, never for dropping or merging records.
	Watermarks map[string]time.Time

	// Files lists the destination files in routing order, for stable
	// index tie-breaking.
	Files []string
}

func newResult() *Result {
	return &Result{
		Assigned:   make(map[string]Assignment),
		Writes:     make(map[string][]WriteOp),
		Watermarks: make(map[string]time.Time),
	}
}

func (r *Result) touch(file string) {
	if _, ok := r.Watermarks[file]; !ok {
		r.Files = append(r.Files, file)
		r.Watermarks[file] = record.SentinelDate
	}
}

func (r *Result) appendWrite(file string, date time.Time, op WriteOp) {
	r.Writes[file] = append(r.Writes[file], op)
	if date.After(r.Watermarks[file]) {
		r.Watermarks[file] = date
	}
}

// Run executes one assignment pass over all groups with the given
// converter. A converter error is a structural contract violation and
// aborts the pass.
func Run(groups *Groups, conv rules.Converter) (*Result, error) {
	res := newResult()

	for _, file := range groups.Files() {
		res.touch(file)

		for _, rec := range groups.Records(file) {
			switch r := rec.(type) {
			case record.Entry:
				booking, err := conv.Convert(r)
				if err != nil {
					return nil, fmt.Errorf("classifying entry from %s: %w", r.Source, err)
				}
				if booking == nil {
					res.Unassigned = append(res.Unassigned, r)
					continue
				}
				if err := record.ValidateBooking(booking); err != nil {
					return nil, fmt.Errorf("classifying entry from %s: %w", r.Source, err)
				}
				res.Assigned[record.ContentHash(r)] = Assignment{Entry: r, Booking: booking}
				res.appendWrite(file, r.Date, func(w *journal.Writer) error {
					return w.Booking(booking)
				})

			case record.Assert:
				res.appendWrite(file, r.Date, func(w *journal.Writer) error {
					return w.Assert(r)
				})

			case record.Raw:
				booking := synthesize(r)
				res.appendWrite(file, r.Date, func(w *journal.Writer) error {
					return w.Booking(booking)
				})

			default:
				// The record variants are sealed; reaching this branch is a
				// programming error, never a data-quality issue.
				return nil, fmt.Errorf("unknown transaction record kind %T in %s", rec, file)
			}
		}
	}

	return res, nil
}

// synthesize builds a booking directly from a raw record's lines, with the
// record's own text as description.
func synthesize(r record.Raw) *record.Booking {
	lines := make([]record.BookingLine, 0, len(r.Lines))
	for _, line := range r.Lines {
		lines = append(lines, record.BookingLine{
			Account:   line.Account,
			Amount:    line.Amount,
			Commodity: line.Commodity,
		})
	}
	return &record.Booking{Date: r.Date, Description: r.Text, Lines: lines}
}
