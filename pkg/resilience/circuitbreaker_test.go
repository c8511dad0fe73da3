package resilience

import (
	"errors"
	"io"
	"testing"
	"time"

	"chain-chat-relay/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(retry time.Duration) *CircuitBreaker {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	return New(Config{
		Name:             "test",
		FailureThreshold: 3,
		SuccessThreshold: 2,
		RetryTimeout:     retry,
	}, log)
}

func TestStaysClosedBelowThreshold(t *testing.T) {
	cb := newTestBreaker(time.Minute)

	cb.Record(true)
	cb.Record(true)

	assert.Equal(t, StateClosed, cb.GetState())
	assert.True(t, cb.Allow())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker(time.Minute)

	cb.Record(true)
	cb.Record(true)
	cb.Record(false)
	cb.Record(true)
	cb.Record(true)

	assert.Equal(t, StateClosed, cb.GetState())
}

func TestOpensAtThresholdAndShortCircuits(t *testing.T) {
	cb := newTestBreaker(time.Minute)

	for i := 0; i < 3; i++ {
		require.True(t, cb.Allow())
		cb.Record(true)
	}

	assert.Equal(t, StateOpen, cb.GetState())
	assert.False(t, cb.Allow())
}

func TestHalfOpenAfterRetryTimeout(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.Record(true)
	}
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(20 * time.Millisecond)

	assert.True(t, cb.Allow())
	assert.Equal(t, StateHalfOpen, cb.GetState())
}

func TestClosesAfterProbeSuccesses(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.Record(true)
	}
	time.Sleep(20 * time.Millisecond)
	require.True(t, cb.Allow())

	cb.Record(false)
	assert.Equal(t, StateHalfOpen, cb.GetState())

	cb.Record(false)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestProbeFailureReopens(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.Record(true)
	}
	time.Sleep(20 * time.Millisecond)
	require.True(t, cb.Allow())

	cb.Record(true)
	assert.Equal(t, StateOpen, cb.GetState())
	assert.False(t, cb.Allow())
}

func TestExecuteCountsErrorsAndShortCircuits(t *testing.T) {
	cb := newTestBreaker(time.Minute)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return boom })
		require.ErrorIs(t, err, boom)
	}

	err := cb.Execute(func() error {
		t.Fatal("must not run while open")
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
}

func TestConfigDefaults(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	cb := New(Config{Name: "defaults"}, log)

	assert.Equal(t, uint(5), cb.failureThreshold)
	assert.Equal(t, uint(2), cb.successThreshold)
	assert.Equal(t, 60*time.Second, cb.retryTimeout)
}
