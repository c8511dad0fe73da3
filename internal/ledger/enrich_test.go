package ledger

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"chain-chat-relay/backend/pkg/cache"
	"chain-chat-relay/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	txs     map[string]*RPCTransaction
	blocks  map[string]*RPCBlock
	txCalls atomic.Int32
}

func (f *fakeReader) TransactionByHash(ctx context.Context, hash string) (*RPCTransaction, error) {
	f.txCalls.Add(1)
	tx, ok := f.txs[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return tx, nil
}

func (f *fakeReader) BlockByNumber(ctx context.Context, number string) (*RPCBlock, error) {
	blk, ok := f.blocks[number]
	if !ok {
		return nil, ErrNotFound
	}
	return blk, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

func fakeTx(from, to, value, block string) *RPCTransaction {
	return &RPCTransaction{From: from, To: to, Value: value, BlockNumber: block}
}

func TestEnrichZeroIdentifiersMakesNoCalls(t *testing.T) {
	reader := &fakeReader{}
	e := NewEnricher(reader, nil, time.Second, testLogger())

	out := e.Enrich(context.Background(), nil)

	assert.Empty(t, out)
	assert.Equal(t, int32(0), reader.txCalls.Load())
}

func TestEnrichResolvesInInputOrder(t *testing.T) {
	reader := &fakeReader{
		txs: map[string]*RPCTransaction{
			"0xaa": fakeTx("0xf1", "0xt1", "0xde0b6b3a7640000", "0x10"),
			"0xbb": fakeTx("0xf2", "0xt2", "0x0", "0x11"),
		},
		blocks: map[string]*RPCBlock{
			"0x10": {Number: "0x10", Timestamp: "0x5f5e1000"},
			"0x11": {Number: "0x11", Timestamp: "0x5f5e1001"},
		},
	}
	e := NewEnricher(reader, nil, time.Second, testLogger())

	out := e.Enrich(context.Background(), []string{"0xaa", "0xbb"})

	require.Len(t, out, 2)
	assert.Equal(t, "0xaa", out[0].TxID)
	assert.Equal(t, "0xf1", out[0].From)
	assert.Equal(t, "0xt1", out[0].To)
	assert.Equal(t, "1", out[0].Value)
	assert.Equal(t, time.Unix(1600000000, 0).UTC(), out[0].Date)
	assert.Equal(t, "0xbb", out[1].TxID)
	assert.Equal(t, "0", out[1].Value)
}

func TestEnrichDropsFailedIdentifiers(t *testing.T) {
	reader := &fakeReader{
		txs: map[string]*RPCTransaction{
			"0xaa": fakeTx("0xf1", "0xt1", "0x1", "0x10"),
			"0xcc": fakeTx("0xf3", "0xt3", "0x3", "0x10"),
		},
		blocks: map[string]*RPCBlock{
			"0x10": {Number: "0x10", Timestamp: "0x5f5e1000"},
		},
	}
	e := NewEnricher(reader, nil, time.Second, testLogger())

	// 0xbb is unknown; survivors keep their relative order
	out := e.Enrich(context.Background(), []string{"0xaa", "0xbb", "0xcc"})

	require.Len(t, out, 2)
	assert.Equal(t, "0xaa", out[0].TxID)
	assert.Equal(t, "0xcc", out[1].TxID)
}

func TestEnrichDropsMalformedValue(t *testing.T) {
	reader := &fakeReader{
		txs: map[string]*RPCTransaction{
			"0xaa": fakeTx("0xf1", "0xt1", "not-hex", "0x10"),
		},
		blocks: map[string]*RPCBlock{
			"0x10": {Number: "0x10", Timestamp: "0x5f5e1000"},
		},
	}
	e := NewEnricher(reader, nil, time.Second, testLogger())

	out := e.Enrich(context.Background(), []string{"0xaa"})
	assert.Empty(t, out)
}

func TestEnrichDropsMissingBlock(t *testing.T) {
	reader := &fakeReader{
		txs: map[string]*RPCTransaction{
			"0xaa": fakeTx("0xf1", "0xt1", "0x1", "0x99"),
		},
	}
	e := NewEnricher(reader, nil, time.Second, testLogger())

	out := e.Enrich(context.Background(), []string{"0xaa"})
	assert.Empty(t, out)
}

func TestEnrichDropsPendingTransaction(t *testing.T) {
	reader := &fakeReader{
		txs: map[string]*RPCTransaction{
			"0xaa": fakeTx("0xf1", "0xt1", "0x1", ""),
		},
	}
	e := NewEnricher(reader, nil, time.Second, testLogger())

	out := e.Enrich(context.Background(), []string{"0xaa"})
	assert.Empty(t, out)
}

func TestEnrichServesRepeatsFromCache(t *testing.T) {
	reader := &fakeReader{
		txs: map[string]*RPCTransaction{
			"0xaa": fakeTx("0xf1", "0xt1", "0x1", "0x10"),
		},
		blocks: map[string]*RPCBlock{
			"0x10": {Number: "0x10", Timestamp: "0x5f5e1000"},
		},
	}
	resultCache := NewMemoryCache(cache.NewCache(cache.Options{DefaultExpiration: time.Minute}))
	e := NewEnricher(reader, resultCache, time.Second, testLogger())

	first := e.Enrich(context.Background(), []string{"0xaa"})
	second := e.Enrich(context.Background(), []string{"0xaa"})

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), reader.txCalls.Load(), "second call should hit the cache")
}
