package cli

import (
	"bufio"
	"os"
	"regexp"
)

var accountLineRe = regexp.MustCompile(`^\s*account\s+([^;]+?)\s*(?:;.*)?$`)

// readExtraAccounts parses account declarations ("account Assets:Cash")
// from an optional journal, so the disambiguation loop can suggest
// accounts that never appeared in a booking yet. An empty path yields no
// accounts; a configured but unreadable path is an error.
func readExtraAccounts(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var accounts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := accountLineRe.FindStringSubmatch(scanner.Text()); m != nil {
			accounts = append(accounts, m[1])
		}
	}
	return accounts, scanner.Err()
}
