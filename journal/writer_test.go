package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/ledgerimport/record"
)

func TestWriterBooking(t *testing.T) {
	var buf strings.Builder
	w := NewWriter(&buf, DefaultFormat)

	err := w.Booking(&record.Booking{
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "SEPA Lastschrift\nREWE Markt GmbH",
		Lines: []record.BookingLine{
			{Account: "Assets:Bank:Checking", Amount: record.Dec(decimal.RequireFromString("-23.45")), Commodity: record.Plain("EUR")},
			{Account: "Expenses:Groceries"},
		},
	})
	assert.NoError(t, err)

	want := "2024-01-15 SEPA Lastschrift | REWE Markt GmbH\n" +
		"  Assets:Bank:Checking  -23,45 EUR\n" +
		"  Expenses:Groceries\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriterAssert(t *testing.T) {
	var buf strings.Builder
	w := NewWriter(&buf, DefaultFormat)

	err := w.Assert(record.Assert{
		Account:  "Assets:Bank:Checking",
		Date:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Amount:   decimal.RequireFromString("1024"),
		Currency: "EUR",
	})
	assert.NoError(t, err)

	want := "2024-01-31 ASSERT\n" +
		"  Assets:Bank:Checking  ==1024,00 EUR\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteIndexOrdersByWatermark(t *testing.T) {
	var buf strings.Builder

	err := WriteIndex(&buf, []IndexEntry{
		{Path: "bank/2024-02.journal", Watermark: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)},
		{Path: "prices.journal", Watermark: record.SentinelDate},
		{Path: "bank/2024-01.journal", Watermark: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
	})
	assert.NoError(t, err)

	want := "include prices.journal\n" +
		"include bank/2024-01.journal\n" +
		"include bank/2024-02.journal\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteIndexStableOnTies(t *testing.T) {
	var buf strings.Builder
	date := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	err := WriteIndex(&buf, []IndexEntry{
		{Path: "a.journal", Watermark: date},
		{Path: "b.journal", Watermark: date},
	})
	assert.NoError(t, err)
	assert.Equal(t, "include a.journal\ninclude b.journal\n", buf.String())
}
