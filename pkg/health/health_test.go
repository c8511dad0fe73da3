package health

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chain-chat-relay/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker() *Checker {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	return NewChecker(log, time.Minute)
}

func TestRunChecksRecordsStatus(t *testing.T) {
	c := newTestChecker()
	c.RegisterCheck("db", true, func() (Status, string, error) {
		return StatusUp, "connected", nil
	})

	c.RunChecks()

	status := c.GetStatus()
	require.Contains(t, status, "db")
	assert.Equal(t, StatusUp, status["db"].Status)
	assert.Equal(t, "connected", status["db"].Description)
	assert.False(t, status["db"].LastChecked.IsZero())
}

func TestCriticalFailureMarksSystemUnhealthy(t *testing.T) {
	c := newTestChecker()
	c.RegisterCheck("db", true, func() (Status, string, error) {
		return StatusDown, "gone", errors.New("refused")
	})

	c.RunChecks()

	assert.False(t, c.IsSystemHealthy())
}

func TestNonCriticalFailureKeepsSystemHealthy(t *testing.T) {
	c := newTestChecker()
	c.RegisterLedgerCheck(func() error { return errors.New("unreachable") })

	c.RunChecks()

	status := c.GetStatus()
	assert.Equal(t, StatusDegraded, status["ledger"].Status)
	assert.True(t, c.IsSystemHealthy())
}

func TestHTTPHandlerReportsComponents(t *testing.T) {
	c := newTestChecker()
	c.RegisterRedisCheck(func() error { return nil })
	c.RunChecks()

	w := httptest.NewRecorder()
	c.HTTPHandler()(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis"`)
	assert.Contains(t, w.Body.String(), `"self"`)
}

func TestHTTPHandlerServiceUnavailableWhenCriticalDown(t *testing.T) {
	c := newTestChecker()
	c.RegisterCheck("db", true, func() (Status, string, error) {
		return StatusDown, "gone", errors.New("refused")
	})
	c.RunChecks()

	w := httptest.NewRecorder()
	c.HTTPHandler()(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
