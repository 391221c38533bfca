package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/ledgerimport/record"
)

func TestDestination(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"input/bank/2024-01.csv", filepath.Join("bank", "2024-01.journal")},
		{"input/broker/q1.pdf.txt", filepath.Join("broker", "q1.pdf.journal")},
		{"input/bank/statement", filepath.Join("bank", "statement.journal")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Destination(tt.source))
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseAllGroupsByDestinationPreservingDocumentOrder(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "bank", "2024-01.csv"),
		"Datum;Buchungstext;Betrag\n"+
			"02.01.2024;REWE Markt;-10,50\n"+
			"05.01.2024;Gehalt Januar;2.500,00\n")
	writeFile(t, filepath.Join(base, "bank", "2024-02.csv"),
		"Datum;Buchungstext;Betrag\n"+
			"03.02.2024;Shell 1234;-40,00\n")

	parser := &CSVParser{
		Account:      "Assets:Bank:Checking",
		Currency:     "EUR",
		Separator:    ';',
		SkipRows:     1,
		DateColumn:   0,
		TextColumn:   1,
		AmountColumn: 2,
		DateLayout:   "02.01.2006",
		Numbers:      NumberDE,
	}

	groups, err := ParseAll(context.Background(), []Input{
		{Name: "bank", Source: filepath.Join(base, "bank"), Parser: parser},
	}, 2)
	assert.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join("bank", "2024-01.journal"),
		filepath.Join("bank", "2024-02.journal"),
	}, groups.Files())

	january := groups.Records(filepath.Join("bank", "2024-01.journal"))
	assert.Equal(t, 2, len(january))
	first := january[0].(record.Entry)
	assert.Equal(t, "REWE Markt", first.Text)
	assert.Equal(t, "-10.5", first.Amount.String())
	second := january[1].(record.Entry)
	assert.Equal(t, "Gehalt Januar", second.Text)
	assert.Equal(t, "2500", second.Amount.String())
}

func TestParseAllFailsFastOnMalformedDocument(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "bank", "broken.csv"),
		"Datum;Buchungstext;Betrag\n"+
			"02.01.2024;missing amount\n")

	parser := &CSVParser{
		Account: "Assets:Bank:Checking", Currency: "EUR",
		Separator: ';', SkipRows: 1,
		DateColumn: 0, TextColumn: 1, AmountColumn: 2,
		DateLayout: "02.01.2006", Numbers: NumberDE,
	}

	_, err := ParseAll(context.Background(), []Input{
		{Name: "bank", Source: filepath.Join(base, "bank"), Parser: parser},
	}, 2)
	assert.Error(t, err)
}
