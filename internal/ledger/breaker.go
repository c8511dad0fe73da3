package ledger

import (
	"context"
	"errors"

	"chain-chat-relay/backend/pkg/resilience"
)

// BreakerReader guards a TxReader with a circuit breaker so a failing
// ledger endpoint is short-circuited instead of hammered. A not-found
// answer is a healthy response and does not count against the circuit.
type BreakerReader struct {
	inner   TxReader
	breaker *resilience.CircuitBreaker
}

// NewBreakerReader wraps reader with the given breaker.
func NewBreakerReader(reader TxReader, breaker *resilience.CircuitBreaker) *BreakerReader {
	return &BreakerReader{inner: reader, breaker: breaker}
}

func (b *BreakerReader) TransactionByHash(ctx context.Context, hash string) (*RPCTransaction, error) {
	if !b.breaker.Allow() {
		return nil, resilience.ErrOpen
	}
	tx, err := b.inner.TransactionByHash(ctx, hash)
	b.breaker.Record(err != nil && !errors.Is(err, ErrNotFound))
	return tx, err
}

func (b *BreakerReader) BlockByNumber(ctx context.Context, number string) (*RPCBlock, error) {
	if !b.breaker.Allow() {
		return nil, resilience.ErrOpen
	}
	blk, err := b.inner.BlockByNumber(ctx, number)
	b.breaker.Record(err != nil && !errors.Is(err, ErrNotFound))
	return blk, err
}
