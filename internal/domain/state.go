package domain

// MonitoringState is the last report id and level acted upon for one volcano.
// Empty strings mean "never observed".
type MonitoringState struct {
	LastReportID string `json:"last_report_id,omitempty"`
	LastLevel    string `json:"last_level,omitempty"`
}

// Changed reports whether the summary carries a non-empty report id or level
// that differs from the stored value.
func (s MonitoringState) Changed(r ReportSummary) bool {
	if r.ReportID != "" && r.ReportID != s.LastReportID {
		return true
	}
	return r.Level != "" && r.Level != s.LastLevel
}

// Merge folds the summary into the state. Each field is overwritten only when
// the newly parsed value is non-empty.
func (s MonitoringState) Merge(r ReportSummary) MonitoringState {
	if r.ReportID != "" {
		s.LastReportID = r.ReportID
	}
	if r.Level != "" {
		s.LastLevel = r.Level
	}
	return s
}
