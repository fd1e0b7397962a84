package magma

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
)

const (
	testVolcano    = "Sinabung"
	testListingURL = "https://magma.esdm.go.id/v1/gunung-api/tingkat-aktivitas"
	testReportURL  = "https://magma.esdm.go.id/v1/gunung-api/laporan/1234"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubFetcher serves canned pages by URL.
type stubFetcher struct {
	pages map[string]string
	err   error
	calls []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	s.calls = append(s.calls, url)
	if s.err != nil {
		return nil, s.err
	}
	page, ok := s.pages[url]
	if !ok {
		return nil, &domain.FetchError{URL: url, StatusCode: 404}
	}
	return []byte(page), nil
}

func page(body string) string {
	return "<html><head><title>MAGMA Indonesia</title></head><body>" + body + "</body></html>"
}

func lines(n int, prefix string) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("<li>" + prefix + " " + strings.Repeat("x", i+1) + "</li>")
	}
	return b.String()
}
