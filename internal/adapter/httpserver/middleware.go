package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/oceanBigOne/mre-who-am-i/internal/platform/correlation"
)

const correlationHeader = "X-Correlation-ID"

// correlationMiddleware gives every request a correlation id, echoed in the response.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.NewID()
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlationHeader, id)
		return next(c)
	}
}
