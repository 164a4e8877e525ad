package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveLimited(t *testing.T, handler echo.HandlerFunc, remoteAddr string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/events", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()

	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec.Code
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRateLimiterAllowsRequestsUnderLimit(t *testing.T) {
	handler := newRateLimiter(10, 3)(okHandler)

	for range 3 {
		assert.Equal(t, http.StatusOK, serveLimited(t, handler, "1.2.3.4:1234"))
	}
}

func TestRateLimiterBlocksExcessiveRequests(t *testing.T) {
	handler := newRateLimiter(0.01, 1)(okHandler)

	assert.Equal(t, http.StatusOK, serveLimited(t, handler, "1.2.3.4:1234"))
	assert.Equal(t, http.StatusTooManyRequests, serveLimited(t, handler, "1.2.3.4:1234"))
}

func TestRateLimiterDifferentIPsAreIndependent(t *testing.T) {
	handler := newRateLimiter(0.01, 1)(okHandler)

	assert.Equal(t, http.StatusOK, serveLimited(t, handler, "1.2.3.4:1234"))
	assert.Equal(t, http.StatusOK, serveLimited(t, handler, "5.6.7.8:1234"))
	assert.Equal(t, http.StatusTooManyRequests, serveLimited(t, handler, "1.2.3.4:9999"))
}
