// Package prices records commodity daily prices: it merges previously
// recorded price statements with freshly fetched ones and implements the
// rate-limited Alpha Vantage fetcher producing them.
package prices

import (
	"fmt"
	"sort"
	"strings"
)

// Row is one price statement line: "P <date> <symbol1> <price> <symbol2>".
type Row struct {
	Marker  string
	Date    string
	Symbol1 string
	Price   string
	Symbol2 string
}

// Key identifies the daily observation a row belongs to. Two rows with the
// same key describe the same (date, symbol pair) and at most one survives a
// merge.
func (r Row) Key() [3]string {
	return [3]string{r.Date, r.Symbol1, r.Symbol2}
}

func (r Row) String() string {
	return strings.Join([]string{r.Marker, r.Date, r.Symbol1, r.Price, r.Symbol2}, " ")
}

// Conflict reports a key that was present in both inputs with differing
// rows. The fresh row wins; conflicts are expected intraday because a live
// provider revises the current day's close.
type Conflict struct {
	Key      [3]string
	Existing Row
	Fresh    Row
}

// Parse splits a price statement blob into rows. A line that does not have
// exactly five space-separated fields is a data shape error.
func Parse(blob string) ([]Row, error) {
	var rows []Row
	for i, line := range strings.Split(blob, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed price line %d: %q", i+1, line)
		}
		rows = append(rows, Row{
			Marker:  fields[0],
			Date:    fields[1],
			Symbol1: fields[2],
			Price:   fields[3],
			Symbol2: fields[4],
		})
	}
	return rows, nil
}

// Merge combines an existing price blob with a freshly fetched one,
// de-duplicating by (date, symbol pair). Fresh rows overwrite existing rows
// for the same key; keys only present in the existing blob are kept
// unchanged. The merged rows come back sorted by key, one per line.
func Merge(existing, fresh string) (string, []Conflict, error) {
	existingRows, err := Parse(existing)
	if err != nil {
		return "", nil, fmt.Errorf("existing prices: %w", err)
	}
	freshRows, err := Parse(fresh)
	if err != nil {
		return "", nil, fmt.Errorf("fetched prices: %w", err)
	}

	byKey := make(map[[3]string]Row)
	var conflicts []Conflict
	for _, row := range append(existingRows, freshRows...) {
		key := row.Key()
		if prev, ok := byKey[key]; ok && prev != row {
			conflicts = append(conflicts, Conflict{Key: key, Existing: prev, Fresh: row})
		}
		byKey[key] = row
	}

	keys := make([][3]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		for k := 0; k < 3; k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, byKey[key].String())
	}
	return strings.Join(lines, "\n"), conflicts, nil
}
