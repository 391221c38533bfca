package importer

import (
	"regexp"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestExtractField(t *testing.T) {
	text := "Saldo per 31.12.2024: 1'024.00 CHF"

	got, ok := ExtractField(text, regexp.MustCompile(`Saldo per (\d+\.\d+\.\d+)`))
	assert.True(t, ok)
	assert.Equal(t, "31.12.2024", got)

	got, ok = ExtractField(text, regexp.MustCompile(`CHF`))
	assert.True(t, ok)
	assert.Equal(t, "CHF", got)

	_, ok = ExtractField(text, regexp.MustCompile(`Kontostand`))
	assert.False(t, ok)
}

func TestParseDateDMY(t *testing.T) {
	got, err := ParseDateDMY("05", "03", "2024")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDateDMY("x", "03", "2024")
	assert.Error(t, err)
}

func TestParseDateDMYWithoutCentury(t *testing.T) {
	// Statement spanning a year boundary resolves each two-digit year to
	// the matching statement year.
	got, err := ParseDateDMYWithoutCentury(2023, 2024, "28", "12", "23")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 28, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDateDMYWithoutCentury(2023, 2024, "02", "01", "24")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDateDMYWithoutCentury(2023, 2024, "02", "01", "25")
	assert.Error(t, err)

	_, err = ParseDateDMYWithoutCentury(2020, 2024, "02", "01", "22")
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input  string
		format NumberFormat
		want   string
	}{
		{"1,234.56", NumberUS, "1234.56"},
		{"1'234.56", NumberCH, "1234.56"},
		{"1.234,56", NumberDE, "1234.56"},
		{"-42", NumberUS, "-42"},
	}
	for _, tt := range tests {
		got, err := ParseNumber(tt.input, tt.format)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got.String())
	}

	_, err := ParseNumber("abc", NumberUS)
	assert.Error(t, err)
}
