package magma

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
)

// reportPathRe matches links to MAGMA detail reports.
var reportPathRe = regexp.MustCompile(`/v1/gunung-api/laporan/`)

// containerSelector lists the block elements searched for a report link.
const containerSelector = "li, tr, div, p"

// Locator finds the latest detail report for one volcano on the activity
// level listing page.
type Locator struct {
	fetcher Fetcher
	volcano string
	nameRe  *regexp.Regexp
	logger  *slog.Logger
}

// NewLocator creates a Locator matching volcano case-insensitively as a whole word.
func NewLocator(fetcher Fetcher, volcano string, logger *slog.Logger) *Locator {
	return &Locator{
		fetcher: fetcher,
		volcano: volcano,
		nameRe:  regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(volcano) + `\b`),
		logger:  logger,
	}
}

// Locate fetches listingURL and returns the absolute URL of the first report
// link found near a mention of the volcano.
func (l *Locator) Locate(ctx context.Context, listingURL string) (string, error) {
	if listingURL == "" {
		return "", fmt.Errorf("listing url is empty: %w", domain.ErrInvalidInput)
	}
	base, err := url.Parse(listingURL)
	if err != nil {
		return "", fmt.Errorf("parse listing url %q: %w", listingURL, domain.ErrInvalidInput)
	}

	body, err := l.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse listing html: %w", err)
	}

	l.logger.Debug("searching listing page", "url", listingURL, "volcano", l.volcano)

	href, ok := l.findReportLink(doc)
	if !ok {
		return "", fmt.Errorf("no report link for %s on %s: %w", l.volcano, listingURL, domain.ErrNotFound)
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse report href %q: %w", href, domain.ErrNotFound)
	}
	return base.ResolveReference(ref).String(), nil
}

// findReportLink walks text nodes in document order. For each mention of the
// volcano it climbs from the text's parent to the nearest enclosing container
// and returns the first report link inside it.
func (l *Locator) findReportLink(doc *goquery.Document) (string, bool) {
	var (
		href  string
		found bool
	)
	for _, root := range doc.Nodes {
		walkText(root, func(n *html.Node) {
			if found || n.Parent == nil || !l.nameRe.MatchString(n.Data) {
				return
			}
			parent := doc.FindNodes(n.Parent)
			container := parent.Parent().Closest(containerSelector)
			if container.Length() == 0 {
				container = parent
			}
			if h, ok := firstReportLink(container); ok {
				href, found = h, true
			}
		})
	}
	return href, found
}

func firstReportLink(container *goquery.Selection) (string, bool) {
	var href string
	container.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		h, _ := a.Attr("href")
		if h != "" && reportPathRe.MatchString(h) {
			href = h
			return false
		}
		return true
	})
	return href, href != ""
}
