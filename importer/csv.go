package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/robinvdvleuten/ledgerimport/record"
)

// CSVParser reads bank statement exports with a fixed column layout into
// entry records. Column indexes are zero-based. A row missing one of the
// mapped columns is a data shape error and aborts the document; silently
// skipping rows could hide movements.
type CSVParser struct {
	// Account is the ledger account the statement describes.
	Account string

	// Currency is the statement's cash commodity.
	Currency string

	// Separator is the field delimiter, ',' when zero.
	Separator rune

	// SkipRows drops leading header rows.
	SkipRows int

	// DateColumn, TextColumn and AmountColumn map the statement layout.
	DateColumn   int
	TextColumn   int
	AmountColumn int

	// DateLayout is the Go reference layout of the date column.
	DateLayout string

	// Numbers selects the amount column's locale convention.
	Numbers NumberFormat
}

// Parse implements Parser.
func (p *CSVParser) Parse(ctx context.Context, document string) ([]record.TransactionRecord, error) {
	f, err := os.Open(document)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if p.Separator != 0 {
		reader.Comma = p.Separator
	}
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) < p.SkipRows {
		return nil, fmt.Errorf("statement has %d rows, expected at least %d header rows", len(rows), p.SkipRows)
	}

	widest := p.DateColumn
	for _, col := range []int{p.TextColumn, p.AmountColumn} {
		if col > widest {
			widest = col
		}
	}

	var records []record.TransactionRecord
	for i, row := range rows[p.SkipRows:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(row) <= widest {
			return nil, fmt.Errorf("row %d has %d fields, expected at least %d", i+p.SkipRows+1, len(row), widest+1)
		}

		date, err := time.ParseInLocation(p.DateLayout, row[p.DateColumn], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+p.SkipRows+1, err)
		}
		amount, err := ParseNumber(row[p.AmountColumn], p.Numbers)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+p.SkipRows+1, err)
		}

		records = append(records, record.Entry{
			Source:   document,
			Account:  p.Account,
			Date:     date,
			Text:     row[p.TextColumn],
			Amount:   amount,
			Currency: p.Currency,
		})
	}
	return records, nil
}
