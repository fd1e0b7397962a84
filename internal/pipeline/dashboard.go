package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
)

const (
	sourceMAGMA = "MAGMA/PVMBG"
	sourceBMKG  = "BMKG"
)

// VolcanoView is the live volcano section of the dashboard.
type VolcanoView struct {
	Name            string   `json:"name"`
	Source          string   `json:"source"`
	Level           string   `json:"level,omitempty"`
	ReportID        string   `json:"report_id,omitempty"`
	ReportURL       string   `json:"report_url,omitempty"`
	Title           string   `json:"title,omitempty"`
	Recommendations []string `json:"rekomendasi,omitempty"`
	Radii           []string `json:"radius_info,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// QuakeView is the earthquake section of the dashboard.
type QuakeView struct {
	Source string `json:"source"`
	domain.Quake
	Error string `json:"error,omitempty"`
}

// DashboardView combines the live report and the latest earthquake.
type DashboardView struct {
	Volcano     VolcanoView `json:"volcano"`
	Earthquake  QuakeView   `json:"earthquake"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Dashboard builds the read-only live view. It never touches stored state.
type Dashboard struct {
	locator    ReportLocator
	parser     ReportParser
	quakes     domain.QuakeSource
	listingURL string
	volcano    string
	logger     *slog.Logger
}

// NewDashboard creates a Dashboard.
func NewDashboard(listingURL, volcano string, locator ReportLocator, parser ReportParser, quakes domain.QuakeSource, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		locator:    locator,
		parser:     parser,
		quakes:     quakes,
		listingURL: listingURL,
		volcano:    volcano,
		logger:     logger.With("component", "dashboard"),
	}
}

// Build fetches both sources concurrently. A failing source is reported in
// its section's Error field and does not affect the other.
func (d *Dashboard) Build(ctx context.Context) DashboardView {
	var view DashboardView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.Volcano = d.volcanoView(gctx)
		return nil
	})
	g.Go(func() error {
		view.Earthquake = d.quakeView(gctx)
		return nil
	})
	_ = g.Wait()
	view.GeneratedAt = domain.Now()
	return view
}

func (d *Dashboard) volcanoView(ctx context.Context) VolcanoView {
	v := VolcanoView{Name: d.volcano, Source: sourceMAGMA}
	if d.listingURL == "" {
		v.Error = "MAGMA_TINGKAT_URL is not set"
		return v
	}

	reportURL, err := d.locator.Locate(ctx, d.listingURL)
	if err != nil {
		d.logger.Warn("dashboard locate failed", "error", err)
		v.Error = describeSourceError(err)
		return v
	}
	report, err := d.parser.Parse(ctx, reportURL)
	if err != nil {
		d.logger.Warn("dashboard parse failed", "report_url", reportURL, "error", err)
		v.Error = describeSourceError(err)
		return v
	}

	v.Level = report.Level
	v.ReportID = report.ReportID
	v.ReportURL = report.ReportURL
	v.Title = report.Title
	v.Recommendations = report.Recommendations
	v.Radii = domain.ExtractRadii(report.Recommendations)
	return v
}

func (d *Dashboard) quakeView(ctx context.Context) QuakeView {
	q := QuakeView{Source: sourceBMKG}
	if d.quakes == nil {
		q.Error = "earthquake source not configured"
		return q
	}
	quake, err := d.quakes.Latest(ctx)
	if err != nil {
		d.logger.Warn("dashboard quake fetch failed", "error", err)
		q.Error = describeSourceError(err)
		return q
	}
	q.Quake = quake
	return q
}

func describeSourceError(err error) string {
	var fe *domain.FetchError
	switch {
	case errors.As(err, &fe):
		return "source unavailable: " + fe.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "report not found: " + err.Error()
	default:
		return err.Error()
	}
}
