package journal

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/robinvdvleuten/ledgerimport/record"
)

// Writer serializes bookings and assertions to one journal file.
type Writer struct {
	w      io.Writer
	format Format
}

// NewWriter wraps w with the given output format.
func NewWriter(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// Booking writes one booking:
//
//	2024-01-15 SEPA Lastschrift REWE Markt GmbH (rule #3)
//	  Assets:Bank:Checking  -23,45 EUR
//	  Expenses:Groceries
func (w *Writer) Booking(b *record.Booking) error {
	if _, err := fmt.Fprintf(w.w, "%s %s\n", formatDate(b.Date), Sanitize(b.Description)); err != nil {
		return err
	}
	for _, line := range b.Lines {
		if line.Amount == nil {
			if _, err := fmt.Fprintf(w.w, "%s%s\n", Indentation, line.Account); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w.w, "%s%s%s%s\n",
			Indentation, line.Account, AccountAmountSpacing,
			w.format.Exact(*line.Amount, line.Commodity),
		); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w.w)
	return err
}

// Assert writes one balance assertion:
//
//	2024-01-31 ASSERT
//	  Assets:Bank:Checking  ==1024,00 EUR
func (w *Writer) Assert(a record.Assert) error {
	if _, err := fmt.Fprintf(w.w, "%s ASSERT\n", formatDate(a.Date)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.w, "%s%s%s==%s\n",
		Indentation, a.Account, AccountAmountSpacing,
		w.format.Exact(a.Amount, record.Plain(a.Currency)),
	); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w.w)
	return err
}

func formatDate(d time.Time) string {
	return d.Format("2006-01-02")
}

// IndexEntry is one output file with its watermark date, in routing
// (insertion) order.
type IndexEntry struct {
	Path      string
	Watermark time.Time
}

// WriteIndex writes the root journal: one include line per output file,
// ascending by watermark date. Ties keep insertion order, so re-running the
// import over unchanged inputs produces an identical index.
func WriteIndex(w io.Writer, entries []IndexEntry) error {
	sorted := append([]IndexEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Watermark.Before(sorted[j].Watermark)
	})
	for _, entry := range sorted {
		if _, err := fmt.Fprintf(w, "include %s\n", entry.Path); err != nil {
			return err
		}
	}
	return nil
}
