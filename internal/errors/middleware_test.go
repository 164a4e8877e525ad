package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanBigOne/mre-who-am-i/internal/adapter/metrics"
	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
)

func runMiddleware(t *testing.T, handlerErr error) (*httptest.ResponseRecorder, *metrics.HTTPMetrics, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/events", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	m := metrics.NewHTTPMetrics(prometheus.NewRegistry())

	err := Middleware(m)(func(echo.Context) error { return handlerErr })(c)
	return rec, m, err
}

func TestMiddleware_StructuredError(t *testing.T) {
	rec, m, err := runMiddleware(t, ValidationError("invalid input").WithField("field", "type"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid input", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, "type", resp.Context["field"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("validation")))
}

func TestMiddleware_DomainError(t *testing.T) {
	rec, m, err := runMiddleware(t, domain.ErrResourceNotFound)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("external")))
}

func TestMiddleware_StandardError(t *testing.T) {
	rec, m, err := runMiddleware(t, errors.New("standard error"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("internal")))
}

func TestMiddleware_NoError(t *testing.T) {
	rec, m, err := runMiddleware(t, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, testutil.CollectAndCount(m.Errors))
}

func TestMiddleware_EchoErrorPassesThrough(t *testing.T) {
	httpErr := echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")

	_, m, err := runMiddleware(t, httpErr)

	assert.Same(t, httpErr, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("rate_limited")))
}

func TestMiddleware_NilMetrics(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := Middleware(nil)(func(echo.Context) error { return NotFoundError("gone") })(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWrapHTTPError(t *testing.T) {
	tests := []struct {
		code     int
		wantType ErrorType
	}{
		{http.StatusBadRequest, TypeValidation},
		{http.StatusNotFound, TypeNotFound},
		{http.StatusTooManyRequests, TypeRateLimited},
		{http.StatusBadGateway, TypeExternal},
		{http.StatusServiceUnavailable, TypeUnavailable},
		{http.StatusForbidden, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			got := WrapHTTPError(echo.NewHTTPError(tt.code))
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, http.StatusText(tt.code), got.Message)
		})
	}
}

func TestWrapHTTPError_InternalCause(t *testing.T) {
	cause := errors.New("upstream")
	httpErr := echo.NewHTTPError(http.StatusBadGateway, "proxy failed").SetInternal(cause)

	got := WrapHTTPError(httpErr)

	assert.Equal(t, "proxy failed", got.Message)
	assert.ErrorIs(t, got, cause)
}
