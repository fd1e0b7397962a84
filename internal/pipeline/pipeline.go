// Package pipeline runs the locate, parse, compare and notify cycle of the
// update checker, and the services built on the same collaborators.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
	"github.com/couchcryptid/volcano-alert-service/internal/observability"
)

// ReportLocator resolves the latest report URL from a listing page.
type ReportLocator interface {
	Locate(ctx context.Context, listingURL string) (string, error)
}

// ReportParser extracts a ReportSummary from a report page.
type ReportParser interface {
	Parse(ctx context.Context, reportURL string) (domain.ReportSummary, error)
}

// Store persists a single record. Load returns a default value when the
// record is absent or corrupt.
type Store[T any] interface {
	Load(ctx context.Context) (T, error)
	Save(ctx context.Context, v T) error
}

// Sender hands a notification to a push-messaging provider.
type Sender interface {
	Send(ctx context.Context, p domain.NotificationPayload) (string, error)
}

// CycleResult describes what one cycle observed and did.
type CycleResult struct {
	Outcome   string
	Report    domain.ReportSummary
	Radii     []string
	State     domain.MonitoringState
	MessageID string
	NotifyErr error
}

// Changed reports whether the cycle detected and persisted a change.
func (r CycleResult) Changed() bool { return r.Outcome == observability.OutcomeChanged }

// Skipped reports whether the cycle was disabled by configuration.
func (r CycleResult) Skipped() bool { return r.Outcome == observability.OutcomeSkipped }

// CheckerConfig holds the inputs a cycle reads from configuration.
type CheckerConfig struct {
	ListingURL string
	Volcano    string
	Topic      string
}

// Checker runs a single update-check cycle.
type Checker struct {
	locator    ReportLocator
	parser     ReportParser
	store      Store[domain.MonitoringState]
	dispatcher *Dispatcher
	cfg        CheckerConfig
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewChecker creates a Checker with the given collaborators.
func NewChecker(
	cfg CheckerConfig,
	locator ReportLocator,
	parser ReportParser,
	store Store[domain.MonitoringState],
	dispatcher *Dispatcher,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Checker {
	return &Checker{
		locator:    locator,
		parser:     parser,
		store:      store,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger.With("component", "checker"),
		metrics:    metrics,
	}
}

// RunCycle locates and parses the latest report, compares it with the stored
// state and, on change, notifies then persists the merged state. Locator,
// parser and store failures abort the cycle without mutating state. A failed
// notification is logged and recorded in the result; the state is still saved.
func (c *Checker) RunCycle(ctx context.Context) (CycleResult, error) {
	if c.cfg.ListingURL == "" {
		c.logger.Warn("listing URL is empty, skipping cycle")
		c.metrics.Cycles.WithLabelValues(observability.OutcomeSkipped).Inc()
		return CycleResult{Outcome: observability.OutcomeSkipped}, nil
	}

	start := time.Now()
	res, err := c.runCycle(ctx)
	c.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.Cycles.WithLabelValues(observability.OutcomeFailed).Inc()
		c.logger.Error("cycle failed", "error", err, "duration", time.Since(start))
		return CycleResult{Outcome: observability.OutcomeFailed}, err
	}
	c.metrics.Cycles.WithLabelValues(res.Outcome).Inc()
	return res, nil
}

func (c *Checker) runCycle(ctx context.Context) (CycleResult, error) {
	report, err := c.fetchReport(ctx)
	if err != nil {
		return CycleResult{}, err
	}
	radii := domain.ExtractRadii(report.Recommendations)

	state, err := c.store.Load(ctx)
	if err != nil {
		return CycleResult{}, fmt.Errorf("load state: %w", err)
	}

	res := CycleResult{Report: report, Radii: radii, State: state}
	if !state.Changed(report) {
		c.logger.Info("no change",
			"last_report_id", state.LastReportID,
			"last_level", state.LastLevel,
		)
		res.Outcome = observability.OutcomeUnchanged
		return res, nil
	}

	payload := domain.NewReportNotification(c.cfg.Topic, c.cfg.Volcano, report)
	res.MessageID, res.NotifyErr = c.dispatcher.Notify(ctx, payload)

	next := state.Merge(report)
	if err := c.store.Save(ctx, next); err != nil {
		return CycleResult{}, fmt.Errorf("save state: %w", err)
	}
	c.metrics.SetLastLevel(next.LastLevel)
	c.logger.Info("change detected",
		"report_id", next.LastReportID,
		"level", next.LastLevel,
		"report_url", report.ReportURL,
		"message_id", res.MessageID,
	)

	res.State = next
	res.Outcome = observability.OutcomeChanged
	return res, nil
}

// fetchReport runs the locator and parser stages.
func (c *Checker) fetchReport(ctx context.Context) (domain.ReportSummary, error) {
	start := time.Now()
	reportURL, err := c.locator.Locate(ctx, c.cfg.ListingURL)
	c.metrics.FetchDuration.WithLabelValues(observability.StageLocate).Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.ReportSummary{}, fmt.Errorf("locate report: %w", err)
	}
	c.logger.Debug("report located", "report_url", reportURL)

	start = time.Now()
	report, err := c.parser.Parse(ctx, reportURL)
	c.metrics.FetchDuration.WithLabelValues(observability.StageParse).Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.ReportSummary{}, fmt.Errorf("parse report: %w", err)
	}
	return report, nil
}

// LastState returns the last persisted state. A store failure is logged and
// yields the zero state, so status readers never see a cycle's error.
func (c *Checker) LastState(ctx context.Context) domain.MonitoringState {
	st, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("load state for status failed", "error", err)
		return domain.MonitoringState{}
	}
	return st
}
