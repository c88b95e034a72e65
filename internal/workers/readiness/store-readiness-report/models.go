package storereadinessreport

import "readiness-workers/internal/assessment"

type Input struct {
	Report *assessment.Result `json:"readinessReport"`
}

type Output struct {
	ReportID string `json:"reportId"`
	StoredAt string `json:"storedAt"` // ISO 8601
	// Duplicate is set when the same survey answers were stored before.
	Duplicate bool `json:"duplicate"`
}

// Audit log vocabulary
const (
	EventReportStored  = "readiness_report_stored"
	ResourceTypeReport = "readiness_report"
)
