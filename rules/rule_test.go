package rules

import (
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/ledgerimport/record"
)

func TestRuleMatchingIsConjunctiveOverPresentFields(t *testing.T) {
	e := testEntry()

	tests := []struct {
		name string
		rule Rule
		want bool
	}{
		{
			name: "only destination set matches everything",
			rule: Rule{DestAccount: "Expenses:Groceries"},
			want: true,
		},
		{
			name: "regex and account both match",
			rule: Rule{Regex: "rewe", Account: "Assets:Bank:Checking", DestAccount: "Expenses:Groceries"},
			want: true,
		},
		{
			name: "regex matches but account differs",
			rule: Rule{Regex: "rewe", Account: "Assets:Bank:Savings", DestAccount: "Expenses:Groceries"},
			want: false,
		},
		{
			name: "account matches but regex misses",
			rule: Rule{Regex: "edeka", Account: "Assets:Bank:Checking", DestAccount: "Expenses:Groceries"},
			want: false,
		},
		{
			name: "hash pin",
			rule: Rule{Hash: record.ContentHash(e), DestAccount: "Expenses:Groceries"},
			want: true,
		},
		{
			name: "foreign hash pin",
			rule: Rule{Hash: "deadbeef", DestAccount: "Expenses:Groceries"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Matches(e))
		})
	}
}

func TestRuleValidate(t *testing.T) {
	assert.NoError(t, Rule{Regex: "rewe", DestAccount: "Expenses:Groceries"}.Validate())
	assert.Error(t, Rule{Regex: "(unclosed", DestAccount: "Expenses:Groceries"}.Validate())
	assert.Error(t, Rule{Regex: "rewe"}.Validate())
}

func TestRuleConvertRecordsRuleNumber(t *testing.T) {
	r := Rule{RuleNum: 7, Regex: "rewe", DestAccount: "Expenses:Groceries"}

	booking := r.Convert(testEntry())
	assert.Equal(t, "SEPA Lastschrift REWE Markt GmbH (rule #7)", booking.Description)
	assert.Equal(t, 2, len(booking.Lines))
	assert.Equal(t, "Assets:Bank:Checking", booking.Lines[0].Account)
	assert.Equal(t, "Expenses:Groceries", booking.Lines[1].Account)
	assert.Zero(t, booking.Lines[1].Amount)
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")

	s, err := Open(path)
	assert.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	r1, err := s.Append(Rule{Regex: "rewe", DestAccount: "Expenses:Groceries"})
	assert.NoError(t, err)
	assert.Equal(t, 1, r1.RuleNum)
	assert.NotEqual(t, "", r1.ID)

	r2, err := s.Append(Rule{Account: "Assets:Bank:Checking", DestAccount: "Expenses:Misc"})
	assert.NoError(t, err)
	assert.Equal(t, 2, r2.RuleNum)

	assert.NoError(t, s.Save())

	reloaded, err := Open(path)
	assert.NoError(t, err)
	assert.Equal(t, []Rule{r1, r2}, reloaded.Rules())
}

func TestStoreRejectsInvalidAppend(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "rules.json"))
	assert.NoError(t, err)

	_, err = s.Append(Rule{Regex: "(unclosed", DestAccount: "Expenses:Misc"})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestStoreConverterFirstMatchWins(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "rules.json"))
	assert.NoError(t, err)

	_, err = s.Append(Rule{Regex: "rewe", DestAccount: "Expenses:Groceries"})
	assert.NoError(t, err)
	_, err = s.Append(Rule{Regex: "markt", DestAccount: "Expenses:Shopping"})
	assert.NoError(t, err)

	booking, err := s.Converter().Convert(testEntry())
	assert.NoError(t, err)
	assert.Equal(t, "Expenses:Groceries", booking.Lines[1].Account)
}
