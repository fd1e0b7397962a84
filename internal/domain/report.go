package domain

// ReportSummary holds the fields extracted from one MAGMA detail report.
// Every field except ReportURL may be empty when the page did not match the
// extraction heuristics.
type ReportSummary struct {
	ReportURL       string   `json:"report_url"`
	ReportID        string   `json:"report_id,omitempty"`
	Level           string   `json:"level,omitempty"`
	Title           string   `json:"title,omitempty"`
	Recommendations []string `json:"rekomendasi"`
}
