package ledger

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// weiPerEther is 10^18, the base-to-display unit ratio.
var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ParseQuantity decodes a JSON-RPC hex quantity ("0x...") into a
// big.Int.
func ParseQuantity(hex string) (*big.Int, error) {
	s := strings.TrimPrefix(hex, "0x")
	if s == "" {
		return nil, fmt.Errorf("ledger: empty quantity %q", hex)
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("ledger: malformed quantity %q", hex)
	}
	return n, nil
}

// WeiToEther converts a wei amount to its exact decimal ether
// representation, with trailing zeros trimmed ("1500000000000000000"
// becomes "1.5", zero becomes "0").
func WeiToEther(wei *big.Int) string {
	r := new(big.Rat).SetFrac(wei, weiPerEther)
	s := r.FloatString(18)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// ParseTimestamp decodes a hex block timestamp (seconds since epoch)
// into a time.Time.
func ParseTimestamp(hex string) (time.Time, error) {
	n, err := ParseQuantity(hex)
	if err != nil {
		return time.Time{}, err
	}
	if !n.IsInt64() {
		return time.Time{}, fmt.Errorf("ledger: timestamp %q out of range", hex)
	}
	return time.Unix(n.Int64(), 0).UTC(), nil
}
