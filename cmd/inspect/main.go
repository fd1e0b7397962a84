// Command inspect runs the report locator, parser and radius extractor once
// and prints what the update checker would see. It never reads or writes
// state and never sends notifications.
//
// Usage:
//
//	go run ./cmd/inspect -listing https://magma.esdm.go.id/v1/gunung-api/tingkat-aktivitas
//	go run ./cmd/inspect -report https://magma.esdm.go.id/v1/gunung-api/laporan/1234
//	go run ./cmd/inspect -file laporan.html -report https://magma.esdm.go.id/v1/gunung-api/laporan/1234
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/volcano-alert-service/internal/adapter/magma"
	"github.com/couchcryptid/volcano-alert-service/internal/domain"
)

type options struct {
	listingURL string
	reportURL  string
	file       string
	name       string
	timeout    time.Duration
	userAgent  string
	verbose    bool
}

type output struct {
	domain.ReportSummary
	Radii []string `json:"radius_info"`
}

func main() {
	var opts options
	flag.StringVar(&opts.listingURL, "listing", "", "listing page URL to locate the latest report from")
	flag.StringVar(&opts.reportURL, "report", "", "report page URL to parse directly")
	flag.StringVar(&opts.file, "file", "", "local HTML file to parse instead of fetching -report")
	flag.StringVar(&opts.name, "name", "Sinabung", "monitored volcano name")
	flag.DurationVar(&opts.timeout, "timeout", 20*time.Second, "per-fetch timeout")
	flag.StringVar(&opts.userAgent, "ua", "sinabung-alert-mvp/1.0", "User-Agent header")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging to stderr")
	flag.Parse()

	if opts.listingURL == "" && opts.reportURL == "" && opts.file == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "inspect:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, w io.Writer) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	report, err := inspect(ctx, opts, magma.NewHTTPFetcher(opts.timeout, opts.userAgent, logger), logger)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(output{ReportSummary: report, Radii: domain.ExtractRadii(report.Recommendations)})
}

func inspect(ctx context.Context, opts options, fetcher magma.Fetcher, logger *slog.Logger) (domain.ReportSummary, error) {
	if opts.file != "" {
		page, err := os.ReadFile(opts.file)
		if err != nil {
			return domain.ReportSummary{}, fmt.Errorf("read %s: %w", opts.file, err)
		}
		reportURL := opts.reportURL
		if reportURL == "" {
			reportURL = opts.file
		}
		return magma.ParseReport(reportURL, page, opts.name)
	}

	reportURL := opts.reportURL
	if reportURL == "" {
		var err error
		reportURL, err = magma.NewLocator(fetcher, opts.name, logger).Locate(ctx, opts.listingURL)
		if err != nil {
			return domain.ReportSummary{}, fmt.Errorf("locate report: %w", err)
		}
		logger.Info("report located", "report_url", reportURL)
	}
	return magma.NewParser(fetcher, opts.name, logger).Parse(ctx, reportURL)
}
