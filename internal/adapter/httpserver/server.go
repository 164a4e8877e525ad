// Package httpserver exposes session events, attachment inspection, the scene
// stream and operational endpoints over HTTP.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/oceanBigOne/mre-who-am-i/internal/adapter/metrics"
	"github.com/oceanBigOne/mre-who-am-i/internal/attachment"
	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
	"github.com/oceanBigOne/mre-who-am-i/internal/platform/config"
)

type eventDispatcher interface {
	Dispatch(ctx context.Context, ev domain.Event) error
}

type attachmentLister interface {
	Attachments(ctx context.Context) ([]attachment.Attachment, error)
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Host           eventDispatcher
	Attachments    attachmentLister
	SceneHandler   http.Handler
	MetricsHandler http.Handler
	Metrics        *metrics.HTTPMetrics
	HealthChecks   []HealthCheck
	Clock          clockwork.Clock
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	host           eventDispatcher
	attachments    attachmentLister
	sceneHandler   http.Handler
	metricsHandler http.Handler
	httpMetrics    *metrics.HTTPMetrics
	healthChecks   []HealthCheck
	clock          clockwork.Clock
	startTime      time.Time
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	srv := &Server{
		echo:           e,
		config:         cfg,
		host:           deps.Host,
		attachments:    deps.Attachments,
		sceneHandler:   deps.SceneHandler,
		metricsHandler: deps.MetricsHandler,
		httpMetrics:    deps.Metrics,
		healthChecks:   deps.HealthChecks,
		clock:          clock,
		startTime:      clock.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
