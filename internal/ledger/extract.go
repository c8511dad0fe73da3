package ledger

import (
	"regexp"
)

// txIDPattern matches an Ethereum transaction hash: 0x followed by
// exactly 64 hex digits, bounded by non-word characters.
var txIDPattern = regexp.MustCompile(`\b0x[a-fA-F0-9]{64}\b`)

// ExtractTxIDs scans text for transaction identifiers and returns them
// de-duplicated in first-occurrence order. De-duplication is exact
// string equality: the same hash in different hex case counts as two
// identifiers. Pure and deterministic; empty input yields nil.
func ExtractTxIDs(text string) []string {
	matches := txIDPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		ids = append(ids, m)
	}
	return ids
}
