package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

const testVolcano = "Sinabung"

func TestFormatBody(t *testing.T) {
	t.Run("level and title", func(t *testing.T) {
		got := FormatBody(testVolcano, testLevelII, "Gunung Sinabung periode 00:00-06:00")
		assert.Equal(t, "Level II (Waspada) | Gunung Sinabung periode 00:00-06:00", got)
	})

	t.Run("level only", func(t *testing.T) {
		assert.Equal(t, testLevelII, FormatBody(testVolcano, testLevelII, ""))
	})

	t.Run("title only", func(t *testing.T) {
		assert.Equal(t, "Sinabung periode pagi", FormatBody(testVolcano, "", "Sinabung periode pagi"))
	})

	t.Run("fallback", func(t *testing.T) {
		assert.Equal(t, "Ada pembaruan informasi Sinabung.", FormatBody(testVolcano, "", ""))
	})

	t.Run("truncates long body to the limit", func(t *testing.T) {
		title := strings.Repeat("a", 200-len(testLevelII)-len(" | "))
		got := FormatBody(testVolcano, testLevelII, title)

		assert.Equal(t, MaxBodyLength, utf8.RuneCountInString(got))
		assert.True(t, strings.HasSuffix(got, "..."))
		assert.True(t, strings.HasPrefix(got, testLevelII+" | "))
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, strings.Repeat("x", 10), Truncate(strings.Repeat("x", 10), 10))
	assert.Equal(t, "abcd...", Truncate("abcdefghij", 7))
	assert.Equal(t, "ab", Truncate("abcdef", 2))

	// Counts characters, not bytes.
	got := Truncate(strings.Repeat("é", 200), MaxBodyLength)
	assert.Equal(t, MaxBodyLength, utf8.RuneCountInString(got))
}

func TestNewReportNotification(t *testing.T) {
	r := ReportSummary{
		ReportURL: "https://magma.esdm.go.id/v1/gunung-api/laporan/1234",
		ReportID:  testReportB,
		Level:     testLevelII,
	}
	n := NewReportNotification("sinabung", testVolcano, r)

	assert.Equal(t, "sinabung", n.Topic)
	assert.Equal(t, "Update Gunung Sinabung", n.Title)
	assert.Equal(t, testLevelII, n.Body)
	assert.Equal(t, map[string]string{
		"report_url": r.ReportURL,
		"level":      testLevelII,
		"report_id":  testReportB,
	}, n.Data)
}
