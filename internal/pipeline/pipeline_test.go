package pipeline_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/couchcryptid/volcano-alert-service/internal/adapter/filestore"
	"github.com/couchcryptid/volcano-alert-service/internal/adapter/magma"
	"github.com/couchcryptid/volcano-alert-service/internal/domain"
	"github.com/couchcryptid/volcano-alert-service/internal/observability"
	"github.com/couchcryptid/volcano-alert-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkerFixture struct {
	locator *stubLocator
	parser  *stubParser
	store   *memStore[domain.MonitoringState]
	sender  *mockSender
	metrics *observability.Metrics
	checker *pipeline.Checker
}

func newCheckerFixture(listingURL string) *checkerFixture {
	f := &checkerFixture{
		locator: &stubLocator{url: testReportURL},
		parser: &stubParser{report: domain.ReportSummary{
			ReportID:        "1234",
			Level:           levelWaspada,
			Title:           "Laporan Aktivitas Gunung Sinabung periode 00:00-06:00",
			Recommendations: []string{"Masyarakat tidak boleh beraktivitas dalam radius 3 km"},
		}},
		store:   &memStore[domain.MonitoringState]{value: domain.MonitoringState{LastReportID: "1000", LastLevel: levelNormal}},
		sender:  &mockSender{},
		metrics: newTestMetrics(),
	}
	f.checker = pipeline.NewChecker(
		pipeline.CheckerConfig{ListingURL: listingURL, Volcano: testVolcano, Topic: testTopic},
		f.locator, f.parser, f.store,
		newDispatcher(f.sender, f.metrics),
		discardLogger(), f.metrics,
	)
	return f
}

func TestChecker_RunCycle_Changed(t *testing.T) {
	f := newCheckerFixture(testListingURL)

	res, err := f.checker.RunCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.Equal(t, "msg-1", res.MessageID)
	assert.NoError(t, res.NotifyErr)
	assert.Equal(t, []string{"Radius 3 km"}, res.Radii)

	sent := f.sender.payloads()
	require.Len(t, sent, 1)
	assert.Equal(t, testTopic, sent[0].Topic)
	assert.Equal(t, "Update Gunung Sinabung", sent[0].Title)
	assert.Contains(t, sent[0].Body, levelWaspada)
	assert.Equal(t, testReportURL, sent[0].Data["report_url"])

	state, saves := f.store.snapshot()
	assert.Equal(t, 1, saves)
	assert.Equal(t, domain.MonitoringState{LastReportID: "1234", LastLevel: levelWaspada}, state)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Cycles.WithLabelValues(observability.OutcomeChanged)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.LastLevel.WithLabelValues(levelWaspada)), 0)
}

func TestChecker_RunCycle_Unchanged(t *testing.T) {
	f := newCheckerFixture(testListingURL)
	f.store.value = domain.MonitoringState{LastReportID: "1234", LastLevel: levelWaspada}

	res, err := f.checker.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, observability.OutcomeUnchanged, res.Outcome)
	assert.Empty(t, f.sender.payloads())

	_, saves := f.store.snapshot()
	assert.Zero(t, saves)
}

func TestChecker_RunCycle_EmptyParseKeepsState(t *testing.T) {
	f := newCheckerFixture(testListingURL)
	f.store.value = domain.MonitoringState{LastReportID: "1234", LastLevel: levelWaspada}
	f.parser.report = domain.ReportSummary{Level: levelWaspada}

	res, err := f.checker.RunCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Equal(t, "1234", res.State.LastReportID)
}

func TestChecker_RunCycle_LevelOnlyChangeMergesField(t *testing.T) {
	f := newCheckerFixture(testListingURL)
	f.store.value = domain.MonitoringState{LastReportID: "1234", LastLevel: levelNormal}
	f.parser.report = domain.ReportSummary{Level: levelWaspada}

	res, err := f.checker.RunCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Changed())

	state, _ := f.store.snapshot()
	assert.Equal(t, domain.MonitoringState{LastReportID: "1234", LastLevel: levelWaspada}, state)
}

func TestChecker_RunCycle_DispatchFailureStillSaves(t *testing.T) {
	f := newCheckerFixture(testListingURL)
	f.sender.err = errors.New("fcm unavailable")

	res, err := f.checker.RunCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.Empty(t, res.MessageID)

	var derr *domain.DispatchError
	require.ErrorAs(t, res.NotifyErr, &derr)
	assert.Equal(t, testTopic, derr.Topic)

	state, saves := f.store.snapshot()
	assert.Equal(t, 1, saves)
	assert.Equal(t, "1234", state.LastReportID)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Notifications.WithLabelValues(observability.NotifyFailed)), 0)
}

func TestChecker_RunCycle_AbortsWithoutMutation(t *testing.T) {
	fetchErr := &domain.FetchError{URL: testListingURL, StatusCode: http.StatusServiceUnavailable}

	cases := map[string]func(f *checkerFixture){
		"locate fetch error": func(f *checkerFixture) { f.locator.err = fetchErr },
		"locate not found":   func(f *checkerFixture) { f.locator.err = domain.ErrNotFound },
		"parse fetch error":  func(f *checkerFixture) { f.parser.err = fetchErr },
		"state load error":   func(f *checkerFixture) { f.store.loadErr = errors.New("connection refused") },
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			f := newCheckerFixture(testListingURL)
			setup(f)

			res, err := f.checker.RunCycle(context.Background())
			require.Error(t, err)
			assert.Equal(t, observability.OutcomeFailed, res.Outcome)
			assert.Empty(t, f.sender.payloads())

			_, saves := f.store.snapshot()
			assert.Zero(t, saves)
			assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Cycles.WithLabelValues(observability.OutcomeFailed)), 0)
		})
	}
}

func TestChecker_RunCycle_SaveError(t *testing.T) {
	f := newCheckerFixture(testListingURL)
	f.store.saveErr = errors.New("disk full")

	_, err := f.checker.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save state")
}

func TestChecker_RunCycle_SkipsWithoutListingURL(t *testing.T) {
	f := newCheckerFixture("")

	res, err := f.checker.RunCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped())
	assert.Zero(t, f.locator.calls)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Cycles.WithLabelValues(observability.OutcomeSkipped)), 0)
}

func TestChecker_LastState(t *testing.T) {
	f := newCheckerFixture(testListingURL)
	assert.Equal(t, domain.MonitoringState{LastReportID: "1000", LastLevel: levelNormal}, f.checker.LastState(context.Background()))

	f.store.loadErr = errors.New("connection refused")
	assert.Equal(t, domain.MonitoringState{}, f.checker.LastState(context.Background()))
}

// TestChecker_EndToEnd runs a cycle against real HTTP pages with the MAGMA
// adapters and the file store.
func TestChecker_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/gunung-api/tingkat-aktivitas", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><table>
			<tr><td>Merapi</td><td><a href="/v1/gunung-api/laporan/999">Lihat</a></td></tr>
			<tr><td>Sinabung</td><td><a href="/v1/gunung-api/laporan/1234">Lihat</a></td></tr>
		</table></body></html>`))
	})
	mux.HandleFunc("GET /v1/gunung-api/laporan/1234", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<h1>Laporan Aktivitas Gunung Sinabung periode 00:00-06:00</h1>
			<p>Level II (Waspada)</p>
			<h3>Rekomendasi</h3>
			<p>Masyarakat tidak boleh beraktivitas dalam radius 3 km</p>
			<footer>Copyright 2024</footer>
		</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	logger := discardLogger()
	metrics := newTestMetrics()

	store := filestore.New(t.TempDir(), "state", func() domain.MonitoringState { return domain.MonitoringState{} }, logger)
	require.NoError(t, store.Save(ctx, domain.MonitoringState{LastReportID: "1000", LastLevel: levelNormal}))

	fetcher := magma.NewHTTPFetcher(5*time.Second, "test-agent", logger)
	sender := &mockSender{}
	listingURL, err := url.JoinPath(srv.URL, "/v1/gunung-api/tingkat-aktivitas")
	require.NoError(t, err)

	checker := pipeline.NewChecker(
		pipeline.CheckerConfig{ListingURL: listingURL, Volcano: testVolcano, Topic: testTopic},
		magma.NewLocator(fetcher, testVolcano, logger),
		magma.NewParser(fetcher, testVolcano, logger),
		store,
		newDispatcher(sender, metrics),
		logger, metrics,
	)

	res, err := checker.RunCycle(ctx)
	require.NoError(t, err)
	require.True(t, res.Changed())

	wantReport := domain.ReportSummary{
		ReportURL:       srv.URL + "/v1/gunung-api/laporan/1234",
		ReportID:        "1234",
		Level:           levelWaspada,
		Title:           "Laporan Aktivitas Gunung Sinabung periode 00:00-06:00",
		Recommendations: []string{"Masyarakat tidak boleh beraktivitas dalam radius 3 km"},
	}
	if diff := cmp.Diff(wantReport, res.Report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Radius 3 km"}, res.Radii)

	sent := sender.payloads()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, levelWaspada)

	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.MonitoringState{LastReportID: "1234", LastLevel: levelWaspada}, persisted)

	// A second cycle over the same pages is a no-op.
	res, err = checker.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, observability.OutcomeUnchanged, res.Outcome)
	assert.Len(t, sender.payloads(), 1)
}
