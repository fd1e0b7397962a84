// Package bmkg reads the latest earthquake from the BMKG open data feed.
package bmkg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
)

// DefaultURL is the BMKG "autogempa" feed holding the latest felt earthquake.
const DefaultURL = "https://data.bmkg.go.id/DataMKG/TEWS/autogempa.json"

// Client implements domain.QuakeSource over the BMKG JSON feed.
type Client struct {
	httpClient *http.Client
	url        string
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a BMKG client.
func NewClient(url string, timeout time.Duration, userAgent string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Latest returns the most recent earthquake. A feed without an earthquake
// entry yields a zero Quake.
func (c *Client) Latest(ctx context.Context) (domain.Quake, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.Quake{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Quake{}, &domain.FetchError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return domain.Quake{}, &domain.FetchError{URL: c.url, StatusCode: resp.StatusCode}
	}

	var feed response
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return domain.Quake{}, fmt.Errorf("decode response: %w", err)
	}

	g := feed.Infogempa.Gempa
	c.logger.Debug("bmkg quake fetched", "date_time", g.DateTime, "magnitude", g.Magnitude)
	return domain.Quake{
		DateTime:  g.DateTime,
		Magnitude: g.Magnitude,
		Depth:     g.Kedalaman,
		Region:    g.Wilayah,
		Potential: g.Potensi,
		Felt:      g.Dirasakan,
		Shakemap:  g.Shakemap,
	}, nil
}

// BMKG feed types.

type response struct {
	Infogempa struct {
		Gempa gempa `json:"gempa"`
	} `json:"Infogempa"`
}

type gempa struct {
	DateTime  string `json:"DateTime"`
	Magnitude string `json:"Magnitude"`
	Kedalaman string `json:"Kedalaman"`
	Wilayah   string `json:"Wilayah"`
	Potensi   string `json:"Potensi"`
	Dirasakan string `json:"Dirasakan"`
	Shakemap  string `json:"Shakemap"`
}
