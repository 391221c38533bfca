package interactive

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestions is the number of suggestions presented to the operator.
const maxSuggestions = 3

// Suggestion is one ranked destination-account candidate. Score is a 0-100
// similarity ratio; Verbatim marks an explicit "=" override that bypassed
// ranking.
type Suggestion struct {
	Account  string
	Score    int
	Verbatim bool
}

// Suggest ranks destination accounts for the current entry.
//
// With empty input, previously seen description-to-account associations are
// ranked by similarity to the current entry's description, deduplicated by
// account. With a typed prefix, the known account set is fuzzy-matched
// against it. Input starting with "=" names a verbatim destination account.
func (s *Session) Suggest(input string) []Suggestion {
	if strings.HasPrefix(input, "=") {
		return []Suggestion{{Account: strings.TrimPrefix(input, "="), Verbatim: true}}
	}

	if input == "" {
		return s.suggestFromHistory()
	}
	return s.suggestAccounts(input)
}

// suggestFromHistory ranks known descriptions against the current entry's
// text and returns their accounts, best first, one suggestion per account.
func (s *Session) suggestFromHistory() []Suggestion {
	current, ok := s.Current()
	if !ok {
		return nil
	}

	type scored struct {
		text  string
		score int
	}
	ranked := make([]scored, 0, len(s.textKeys))
	for _, text := range s.textKeys {
		ranked = append(ranked, scored{text: text, score: ratio(current.Text, text)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	var out []Suggestion
	for _, r := range ranked {
		if len(out) >= maxSuggestions {
			break
		}
		account := s.texts[r.text]
		duplicate := false
		for _, have := range out {
			if have.Account == account {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, Suggestion{Account: account, Score: r.score})
		}
	}
	return out
}

// suggestAccounts fuzzy-matches the typed prefix against the known account
// set.
func (s *Session) suggestAccounts(input string) []Suggestion {
	ranks := fuzzy.RankFindNormalizedFold(input, s.accounts)
	sort.Stable(ranks)

	out := make([]Suggestion, 0, maxSuggestions)
	for _, r := range ranks {
		if len(out) >= maxSuggestions {
			break
		}
		out = append(out, Suggestion{Account: r.Target, Score: ratio(input, r.Target)})
	}
	return out
}

// ratio is a 0-100 similarity score derived from the Levenshtein distance,
// case-folded. 100 means equal.
func ratio(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 100
	}
	distance := fuzzy.LevenshteinDistance(a, b)
	return 100 - (100*distance)/longest
}
