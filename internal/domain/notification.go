package domain

import "strings"

const (
	// MaxBodyLength is the longest notification body, in characters, pushed to devices.
	MaxBodyLength = 180

	ellipsis = "..."
)

// NotificationPayload is a push message addressed to a topic.
type NotificationPayload struct {
	Topic string            `json:"topic"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound,omitempty"`
}

// NewReportNotification builds the push message announcing a changed report
// for the named volcano.
func NewReportNotification(topic, volcano string, r ReportSummary) NotificationPayload {
	return NotificationPayload{
		Topic: topic,
		Title: "Update Gunung " + volcano,
		Body:  FormatBody(volcano, r.Level, r.Title),
		Data: map[string]string{
			"report_url": r.ReportURL,
			"level":      r.Level,
			"report_id":  r.ReportID,
		},
	}
}

// FormatBody joins the non-empty level and title with " | ", falling back to a
// generic update sentence, and truncates to MaxBodyLength characters.
func FormatBody(volcano, level, title string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{level, title} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	body := strings.TrimSpace(strings.Join(parts, " | "))
	if body == "" {
		body = "Ada pembaruan informasi " + volcano + "."
	}
	return Truncate(body, MaxBodyLength)
}

// Truncate shortens s to at most limit characters, replacing the tail with an
// ellipsis when it is cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}
