// Package interactive implements the disambiguation loop that lets an
// operator classify unassigned entries by authoring durable rules. The loop
// logic lives in a pure Session state machine so it stays testable; the
// terminal rendering on top of it is a thin huh-based runner.
package interactive

import (
	"fmt"
	"sort"

	"github.com/robinvdvleuten/ledgerimport/assign"
	"github.com/robinvdvleuten/ledgerimport/record"
	"github.com/robinvdvleuten/ledgerimport/rules"
)

// Session holds the state of one disambiguation run: the pending queue in
// ascending date order, the known destination accounts, and previously seen
// description-to-account associations used for suggestion ranking.
type Session struct {
	store    *rules.Store
	pending  []record.Entry
	total    int
	accounts []string
	texts    map[string]string
	textKeys []string
}

// NewSession builds a session over the currently unassigned entries. Known
// accounts are seeded from every line of the already assigned bookings plus
// the externally declared extra accounts; description associations come
// from assigned bookings, earliest entry first.
func NewSession(unassigned []record.Entry, assigned map[string]assign.Assignment, store *rules.Store, extraAccounts []string) *Session {
	pending := append([]record.Entry(nil), unassigned...)
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Date.Before(pending[j].Date)
	})

	accounts := make(map[string]bool)
	for _, account := range extraAccounts {
		accounts[account] = true
	}

	assignments := make([]assign.Assignment, 0, len(assigned))
	for _, a := range assigned {
		assignments = append(assignments, a)
	}
	sort.SliceStable(assignments, func(i, j int) bool {
		if !assignments[i].Entry.Date.Equal(assignments[j].Entry.Date) {
			return assignments[i].Entry.Date.Before(assignments[j].Entry.Date)
		}
		return record.ContentHash(assignments[i].Entry) < record.ContentHash(assignments[j].Entry)
	})

	s := &Session{
		store:   store,
		pending: pending,
		total:   len(pending),
		texts:   make(map[string]string),
	}
	for _, a := range assignments {
		for _, line := range a.Booking.Lines {
			accounts[line.Account] = true
			if _, seen := s.texts[a.Entry.Text]; !seen && line.Account != a.Entry.Account {
				s.texts[a.Entry.Text] = line.Account
				s.textKeys = append(s.textKeys, a.Entry.Text)
			}
		}
	}

	for account := range accounts {
		s.accounts = append(s.accounts, account)
	}
	sort.Strings(s.accounts)

	return s
}

// Done reports whether the pending queue is empty.
func (s *Session) Done() bool {
	return len(s.pending) == 0
}

// Current returns the entry under classification.
func (s *Session) Current() (record.Entry, bool) {
	if len(s.pending) == 0 {
		return record.Entry{}, false
	}
	return s.pending[0], true
}

// Progress reports how far the loop has come. Total is fixed at session
// start; done counts entries either classified or skipped.
func (s *Session) Progress() (done, total, percent int) {
	done = s.total - len(s.pending)
	total = s.total
	if total > 0 {
		percent = done * 100 / total
	}
	return done, total, percent
}

// Accounts returns the known destination accounts, sorted.
func (s *Session) Accounts() []string {
	return s.accounts
}

// MatchingPending returns the pending entries the rule would classify, for
// previewing a draft rule's reach before confirming it.
func (s *Session) MatchingPending(r rules.Rule) []record.Entry {
	var matched []record.Entry
	for _, e := range s.pending {
		if r.Matches(e) {
			matched = append(matched, e)
		}
	}
	return matched
}

// Confirm finalizes the current entry: the draft rule, completed with the
// selected destination account, is validated, appended to the persisted
// rule list with the next monotonic rule number, and every pending entry it
// matches is removed from the queue in this one step.
func (s *Session) Confirm(destAccount string, draft rules.Rule) (rules.Rule, error) {
	current, ok := s.Current()
	if !ok {
		return rules.Rule{}, fmt.Errorf("nothing left to classify")
	}
	if destAccount == "" {
		return rules.Rule{}, fmt.Errorf("no destination account selected")
	}

	draft.DestAccount = destAccount
	if err := draft.Validate(); err != nil {
		return rules.Rule{}, err
	}
	if !draft.Matches(current) {
		return rules.Rule{}, fmt.Errorf("rule does not match the current entry")
	}

	appended, err := s.store.Append(draft)
	if err != nil {
		return rules.Rule{}, err
	}

	if !contains(s.accounts, destAccount) {
		s.accounts = append(s.accounts, destAccount)
		sort.Strings(s.accounts)
	}
	if _, seen := s.texts[current.Text]; !seen {
		s.textKeys = append(s.textKeys, current.Text)
	}
	s.texts[current.Text] = destAccount

	remaining := s.pending[:0]
	for _, e := range s.pending {
		if !appended.Matches(e) {
			remaining = append(remaining, e)
		}
	}
	s.pending = remaining

	return appended, nil
}

// Skip discards the current entry without classifying it. It stays
// unassigned for this run.
func (s *Session) Skip() {
	if len(s.pending) > 0 {
		s.pending = s.pending[1:]
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
