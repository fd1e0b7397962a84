package magma

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
)

const (
	recommendationHeading = "Rekomendasi"
	footerMarker          = "Copyright"
	titleMarker           = "periode"

	// maxRecommendations bounds how many lines are taken after the heading.
	maxRecommendations = 10
)

var (
	// levelRe matches an activity level such as "Level II (Waspada)".
	levelRe = regexp.MustCompile(`Level\s+[IV]+\s*\([^)]+\)`)

	// reportIDRe captures the numeric id in ".../laporan/1234".
	reportIDRe = regexp.MustCompile(`/laporan/(\d+)`)
)

// Parser extracts a ReportSummary from a MAGMA detail report page.
type Parser struct {
	fetcher Fetcher
	volcano string
	logger  *slog.Logger
}

// NewParser creates a Parser for the named volcano.
func NewParser(fetcher Fetcher, volcano string, logger *slog.Logger) *Parser {
	return &Parser{fetcher: fetcher, volcano: volcano, logger: logger}
}

// Parse fetches reportURL and extracts its summary. Only an empty URL or a
// failed fetch is an error; fields the page does not match are left empty.
func (p *Parser) Parse(ctx context.Context, reportURL string) (domain.ReportSummary, error) {
	if reportURL == "" {
		return domain.ReportSummary{}, fmt.Errorf("report url is empty: %w", domain.ErrInvalidInput)
	}

	body, err := p.fetcher.Fetch(ctx, reportURL)
	if err != nil {
		return domain.ReportSummary{}, err
	}

	summary, err := ParseReport(reportURL, body, p.volcano)
	if err != nil {
		p.logger.Warn("report page not parseable as html", "report_url", reportURL, "error", err)
	}
	return summary, nil
}

// ParseReport extracts a summary from an already fetched report page. On a
// document parse error the summary still carries the URL-derived fields.
func ParseReport(reportURL string, page []byte, volcano string) (domain.ReportSummary, error) {
	summary := domain.ReportSummary{
		ReportURL:       reportURL,
		ReportID:        extractReportID(reportURL),
		Recommendations: []string{},
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return summary, fmt.Errorf("parse report html: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return summary, nil
	}

	text := flattenText(doc.Nodes[0])
	summary.Level = levelRe.FindString(text)
	summary.Title = extractTitle(text, volcano)
	summary.Recommendations = extractRecommendations(text)
	return summary, nil
}

func extractReportID(reportURL string) string {
	if m := reportIDRe.FindStringSubmatch(reportURL); m != nil {
		return m[1]
	}
	return ""
}

// extractTitle returns the first line naming the volcano and a reporting period.
func extractTitle(text, volcano string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, volcano) && strings.Contains(line, titleMarker) {
			return line
		}
	}
	return ""
}

// extractRecommendations collects the non-empty lines after the first
// "Rekomendasi" heading, stopping at the page footer or after
// maxRecommendations lines. Text sharing the heading's line counts as the
// first candidate once a trailing colon is removed.
func extractRecommendations(text string) []string {
	out := []string{}

	idx := strings.Index(text, recommendationHeading)
	if idx < 0 {
		return out
	}

	lines := strings.Split(text[idx+len(recommendationHeading):], "\n")
	lines[0] = strings.TrimLeft(lines[0], ": \t")

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, footerMarker) {
			break
		}
		out = append(out, line)
		if len(out) >= maxRecommendations {
			break
		}
	}
	return out
}
