package rules

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/robinvdvleuten/ledgerimport/record"
)

// Store holds the durable, append-only list of interactively authored
// rules. The lifecycle is load-at-start, append-during-session,
// persist-at-end; rules are never edited or reordered within a session.
//
// The store is the single mutable shared resource of a run. Access is
// strictly phase-separated (parsing never touches it, disambiguation is
// single-threaded), so no locking is required.
type Store struct {
	path  string
	rules []Rule
}

// Open loads the rule store at path, creating an empty store file when
// none exists yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.Save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rule store: %w", err)
	}

	if err := json.Unmarshal(data, &s.rules); err != nil {
		return nil, fmt.Errorf("failed to parse rule store %s: %w", path, err)
	}
	for _, r := range s.rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule #%d in %s: %w", r.RuleNum, path, err)
		}
	}
	return s, nil
}

// Rules returns the rules in evaluation order.
func (s *Store) Rules() []Rule {
	return s.rules
}

// Len returns the number of stored rules.
func (s *Store) Len() int {
	return len(s.rules)
}

// Append validates the rule, assigns it the next monotonic rule number and
// a fresh ID, and appends it. The rule is durable after the next Save.
func (s *Store) Append(r Rule) (Rule, error) {
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	r.RuleNum = s.nextRuleNum()
	r.ID = uuid.NewString()
	s.rules = append(s.rules, r)
	return r, nil
}

func (s *Store) nextRuleNum() int {
	max := 0
	for _, r := range s.rules {
		if r.RuleNum > max {
			max = r.RuleNum
		}
	}
	return max + 1
}

// Save rewrites the store file with the full rule list.
func (s *Store) Save() error {
	rules := s.rules
	if rules == nil {
		rules = []Rule{}
	}
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, append(data, '\n'), 0o644)
}

// Converter returns a converter evaluating the store's rules in order,
// first match wins. The converter reads the live rule list, so rules
// appended during a disambiguation session take effect on the next
// assignment pass without rebuilding the converter chain.
func (s *Store) Converter() Converter {
	return storeConverter{store: s}
}

type storeConverter struct {
	store *Store
}

func (c storeConverter) Convert(e record.Entry) (*record.Booking, error) {
	for _, r := range c.store.rules {
		if r.Matches(e) {
			return r.Convert(e), nil
		}
	}
	return nil, nil
}
