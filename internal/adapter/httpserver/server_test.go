package httpserver

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/oceanBigOne/mre-who-am-i/internal/adapter/metrics"
	"github.com/oceanBigOne/mre-who-am-i/internal/attachment"
	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
	"github.com/oceanBigOne/mre-who-am-i/internal/platform/config"
)

// --- Mock implementations ---

type mockHost struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (m *mockHost) Dispatch(_ context.Context, ev domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return m.err
}

type mockLister struct {
	list []attachment.Attachment
	err  error
}

func (m *mockLister) Attachments(context.Context) ([]attachment.Attachment, error) {
	return m.list, m.err
}

type serverOption func(*Deps)

func withHealthChecks(checks ...HealthCheck) serverOption {
	return func(d *Deps) { d.HealthChecks = checks }
}

func withLister(l attachmentLister) serverOption {
	return func(d *Deps) { d.Attachments = l }
}

func withSceneHandler(h http.Handler) serverOption {
	return func(d *Deps) { d.SceneHandler = h }
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:         "test",
		Port:           "0",
		EventRateLimit: 1000,
		EventRateBurst: 1000,
	}
}

func newTestServer(t *testing.T, host eventDispatcher, opts ...serverOption) (*Server, *metrics.HTTPMetrics, *clockwork.FakeClock) {
	t.Helper()

	reg := metrics.NewRegistry()
	m := metrics.NewHTTPMetrics(reg)
	clock := clockwork.NewFakeClock()

	deps := Deps{
		Host:           host,
		Attachments:    &mockLister{},
		MetricsHandler: metrics.Handler(reg),
		Metrics:        m,
		Clock:          clock,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return NewServer(testConfig(), deps), m, clock
}
