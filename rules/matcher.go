// Package rules implements the classification rule engine: composable
// matchers and converters over transaction entries, the interactive rule
// type, and the persisted rule store backing the disambiguation loop.
//
// Matchers and converters are small data-carrying types interpreted through
// their Matches/Convert methods rather than captured closures, which keeps
// rule definitions serializable and referentially transparent.
package rules

import (
	"regexp"
	"time"

	"github.com/robinvdvleuten/ledgerimport/record"
)

// Matcher is a pure predicate over an entry. Matchers are freely composable
// and safe to evaluate any number of times in any order.
type Matcher interface {
	Matches(e record.Entry) bool
}

// RegexMatcher matches entries whose text contains the pattern,
// case-insensitively.
type RegexMatcher struct {
	Pattern string

	re *regexp.Regexp
}

// Regex compiles a case-insensitive text matcher.
func Regex(pattern string) (*RegexMatcher, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{Pattern: pattern, re: re}, nil
}

// MustRegex is like Regex but panics on an invalid pattern. Use for
// statically known patterns in configuration code.
func MustRegex(pattern string) *RegexMatcher {
	m, err := Regex(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *RegexMatcher) Matches(e record.Entry) bool {
	return m.re.MatchString(e.Text)
}

// AccountMatcher matches entries observed on exactly the given account.
type AccountMatcher struct {
	Account string
}

// Account matches on the entry's source account.
func Account(account string) AccountMatcher {
	return AccountMatcher{Account: account}
}

func (m AccountMatcher) Matches(e record.Entry) bool {
	return e.Account == m.Account
}

// DateMatcher matches entries dated exactly the given day.
type DateMatcher struct {
	Date time.Time
}

// Date matches on the entry's transaction date.
func Date(date time.Time) DateMatcher {
	return DateMatcher{Date: date}
}

func (m DateMatcher) Matches(e record.Entry) bool {
	return e.Date.Equal(m.Date)
}

// HashMatcher pins a single transaction by its content hash, regardless of
// which account or file it was imported under.
type HashMatcher struct {
	Hash string
}

// Hash matches on the entry's content hash.
func Hash(hash string) HashMatcher {
	return HashMatcher{Hash: hash}
}

func (m HashMatcher) Matches(e record.Entry) bool {
	return record.ContentHash(e) == m.Hash
}

// AllMatcher is the conjunction of its children. Evaluation short-circuits
// left to right on the first falsifying child.
type AllMatcher struct {
	Matchers []Matcher
}

// All combines matchers conjunctively.
func All(matchers ...Matcher) AllMatcher {
	return AllMatcher{Matchers: matchers}
}

func (m AllMatcher) Matches(e record.Entry) bool {
	for _, child := range m.Matchers {
		if !child.Matches(e) {
			return false
		}
	}
	return true
}

// AnyMatcher is the disjunction of its children. Evaluation short-circuits
// left to right on the first satisfying child.
type AnyMatcher struct {
	Matchers []Matcher
}

// Any combines matchers disjunctively.
func Any(matchers ...Matcher) AnyMatcher {
	return AnyMatcher{Matchers: matchers}
}

func (m AnyMatcher) Matches(e record.Entry) bool {
	for _, child := range m.Matchers {
		if child.Matches(e) {
			return true
		}
	}
	return false
}

// NotMatcher negates its child.
type NotMatcher struct {
	Matcher Matcher
}

// Not negates a matcher.
func Not(m Matcher) NotMatcher {
	return NotMatcher{Matcher: m}
}

func (m NotMatcher) Matches(e record.Entry) bool {
	return !m.Matcher.Matches(e)
}
