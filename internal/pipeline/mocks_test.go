package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
	"github.com/couchcryptid/volcano-alert-service/internal/observability"
	"github.com/couchcryptid/volcano-alert-service/internal/pipeline"
)

const (
	testVolcano    = "Sinabung"
	testTopic      = "sinabung"
	testListingURL = "https://magma.esdm.go.id/v1/gunung-api/tingkat-aktivitas"
	testReportURL  = "https://magma.esdm.go.id/v1/gunung-api/laporan/1234"
	levelNormal    = "Level I (Normal)"
	levelWaspada   = "Level II (Waspada)"
)

// --- mocks ---

type stubLocator struct {
	url   string
	err   error
	calls int
}

func (s *stubLocator) Locate(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.url, s.err
}

type stubParser struct {
	report domain.ReportSummary
	err    error
}

func (s *stubParser) Parse(_ context.Context, reportURL string) (domain.ReportSummary, error) {
	if s.err != nil {
		return domain.ReportSummary{}, s.err
	}
	r := s.report
	r.ReportURL = reportURL
	return r, nil
}

type memStore[T any] struct {
	mu      sync.Mutex
	value   T
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore[T]) Load(_ context.Context) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		var zero T
		return zero, m.loadErr
	}
	return m.value, nil
}

func (m *memStore[T]) Save(_ context.Context, v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.value = v
	m.saves++
	return nil
}

func (m *memStore[T]) snapshot() (T, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.saves
}

type mockSender struct {
	mu   sync.Mutex
	sent []domain.NotificationPayload
	err  error
}

func (m *mockSender) Send(_ context.Context, p domain.NotificationPayload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, p)
	return "msg-1", nil
}

func (m *mockSender) payloads() []domain.NotificationPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.NotificationPayload(nil), m.sent...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func newDispatcher(s pipeline.Sender, m *observability.Metrics) *pipeline.Dispatcher {
	return pipeline.NewDispatcher(s, discardLogger(), m)
}
