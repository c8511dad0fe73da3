package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	hashA = "0x" + "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hashB = "0x" + "1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"
)

func TestExtractTxIDs(t *testing.T) {
	ids := ExtractTxIDs("paid with " + hashA + " and " + hashB + " yesterday")
	assert.Equal(t, []string{hashA, hashB}, ids)
}

func TestExtractTxIDsEmptyInput(t *testing.T) {
	assert.Empty(t, ExtractTxIDs(""))
	assert.Empty(t, ExtractTxIDs("no hashes here"))
}

func TestExtractTxIDsDeduplicates(t *testing.T) {
	ids := ExtractTxIDs(hashB + " " + hashA + " " + hashB)
	assert.Equal(t, []string{hashB, hashA}, ids)
}

func TestExtractTxIDsCaseKeptDistinct(t *testing.T) {
	// Same hash in different hex case stays two identifiers; dedupe is
	// exact string equality.
	upper := "0x" + strings.ToUpper(strings.TrimPrefix(hashB, "0x"))
	ids := ExtractTxIDs(hashB + " " + upper)
	assert.Equal(t, []string{hashB, upper}, ids)
}

func TestExtractTxIDsGrammar(t *testing.T) {
	// 63 hex digits: too short
	assert.Empty(t, ExtractTxIDs("0x"+strings.Repeat("a", 63)))
	// 65 hex digits: no word boundary after the 64th
	assert.Empty(t, ExtractTxIDs("0x"+strings.Repeat("a", 65)))
	// non-hex characters break the token
	assert.Empty(t, ExtractTxIDs("0x"+strings.Repeat("g", 64)))
	// embedded in a longer word
	assert.Empty(t, ExtractTxIDs("tx"+hashA))

	// punctuation boundaries are fine
	ids := ExtractTxIDs("(" + hashA + ")," + hashB + ".")
	assert.Equal(t, []string{hashA, hashB}, ids)
}

func TestExtractTxIDsMixedCaseMatch(t *testing.T) {
	mixed := "0x" + "AbCdEf1234567890aBcDeF1234567890AbCdEf1234567890aBcDeF1234567890"
	ids := ExtractTxIDs("see " + mixed)
	assert.Equal(t, []string{mixed}, ids)
}
