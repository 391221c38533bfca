package rules

import (
	"fmt"
	"regexp"

	"github.com/robinvdvleuten/ledgerimport/record"
)

// Rule is one persisted, interactively authored classification rule. Every
// present optional predicate must match; an absent predicate is vacuously
// true. Rules are evaluated in RuleNum order, first match wins.
type Rule struct {
	// RuleNum is the monotonic insertion-order number, assigned on append.
	RuleNum int `json:"rulenum"`

	// ID uniquely identifies the rule across edits of the store file.
	ID string `json:"id"`

	// Hash pins the rule to a single transaction by content hash.
	Hash string `json:"hash,omitempty"`

	// Regex matches the entry text, case-insensitively.
	Regex string `json:"regex,omitempty"`

	// Account restricts the rule to entries observed on this account.
	Account string `json:"account,omitempty"`

	// DestAccount is the destination the matched movement is booked against.
	DestAccount string `json:"dest_account"`
}

// Matches reports whether the rule applies to the entry. Matching is
// conjunctive over the present predicates.
func (r Rule) Matches(e record.Entry) bool {
	if r.Hash != "" && record.ContentHash(e) != r.Hash {
		return false
	}
	if r.Regex != "" {
		re, err := regexp.Compile("(?i)" + r.Regex)
		if err != nil || !re.MatchString(e.Text) {
			return false
		}
	}
	if r.Account != "" && e.Account != r.Account {
		return false
	}
	return true
}

// Validate reports whether the rule is well formed: a present regex must
// compile and a destination account must be set.
func (r Rule) Validate() error {
	if r.Regex != "" {
		if _, err := regexp.Compile("(?i)" + r.Regex); err != nil {
			return fmt.Errorf("invalid rule expression: %w", err)
		}
	}
	if r.DestAccount == "" {
		return fmt.Errorf("rule has no destination account")
	}
	return nil
}

// Matcher returns the rule's predicate as a composable Matcher. The rule
// must be valid.
func (r Rule) Matcher() Matcher {
	matchers := []Matcher{}
	if r.Hash != "" {
		matchers = append(matchers, Hash(r.Hash))
	}
	if r.Regex != "" {
		matchers = append(matchers, MustRegex(r.Regex))
	}
	if r.Account != "" {
		matchers = append(matchers, Account(r.Account))
	}
	return All(matchers...)
}

// Convert books the entry against the rule's destination account. The
// booking description records which rule classified the movement.
func (r Rule) Convert(e record.Entry) *record.Booking {
	return &record.Booking{
		Date:        e.Date,
		Description: fmt.Sprintf("%s (rule #%d)", e.Text, r.RuleNum),
		Lines: []record.BookingLine{
			{Account: e.Account, Amount: record.Dec(e.Amount), Commodity: record.Plain(e.Currency)},
			{Account: r.DestAccount},
		},
	}
}
