package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"chain-chat-relay/backend/pkg/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyReader struct {
	err error
}

func (f *flakyReader) TransactionByHash(ctx context.Context, hash string) (*RPCTransaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &RPCTransaction{Hash: hash, Value: "0x1", BlockNumber: "0x1"}, nil
}

func (f *flakyReader) BlockByNumber(ctx context.Context, number string) (*RPCBlock, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &RPCBlock{Number: number, Timestamp: "0x1"}, nil
}

func TestBreakerOpensOnTransportErrors(t *testing.T) {
	inner := &flakyReader{err: errors.New("connection refused")}
	cb := resilience.New(resilience.Config{
		Name:             "ledger-test",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		RetryTimeout:     time.Hour,
	}, testLogger())
	reader := NewBreakerReader(inner, cb)

	for i := 0; i < 3; i++ {
		_, err := reader.TransactionByHash(context.Background(), "0xaa")
		require.Error(t, err)
	}

	assert.Equal(t, resilience.StateOpen, cb.GetState())
	_, err := reader.TransactionByHash(context.Background(), "0xaa")
	assert.ErrorIs(t, err, resilience.ErrOpen)
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	inner := &flakyReader{err: ErrNotFound}
	cb := resilience.New(resilience.Config{
		Name:             "ledger-test",
		FailureThreshold: 2,
		SuccessThreshold: 1,
		RetryTimeout:     time.Hour,
	}, testLogger())
	reader := NewBreakerReader(inner, cb)

	// Not-found is a healthy answer; the circuit stays closed
	for i := 0; i < 10; i++ {
		_, err := reader.BlockByNumber(context.Background(), "0x1")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, resilience.StateClosed, cb.GetState())
}
