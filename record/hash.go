package record

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ContentHash returns a deterministic fingerprint of an entry's semantic
// fields: date, text, amount and currency. Account and source are excluded
// on purpose; they change when the same movement is imported under a
// different account or file, and a rule pinned by hash should still hit.
func ContentHash(e Entry) string {
	// RatString is the canonical lowest-terms form, so 7, 7.0 and 7.00
	// hash identically.
	payload := fmt.Sprintf("%s|%s|%s|%s",
		e.Date.Format("2006-01-02"),
		e.Text,
		e.Amount.Rat().RatString(),
		e.Currency,
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
