package indexreadinessreport

import (
	"time"

	"readiness-workers/internal/assessment"
	"readiness-workers/internal/readiness"
)

type Input struct {
	ReportID string             `json:"reportId"`
	Report   *assessment.Result `json:"readinessReport"`
}

type Output struct {
	Indexed    bool   `json:"indexed"`
	Index      string `json:"index"`
	DocumentID string `json:"documentId"`
	Result     string `json:"result"` // "created" or "updated"
}

// Document is the indexed form of a report.
type Document struct {
	ReportID         string           `json:"reportId"`
	SurveyID         string           `json:"surveyId,omitempty"`
	ScheduleVersion  string           `json:"scheduleVersion"`
	Complete         bool             `json:"complete"`
	AssessedAt       time.Time        `json:"assessedAt"`
	Scores           readiness.Scores `json:"scores"`
	FailedCategories []string         `json:"failedCategories"`
}

type indexResponse struct {
	ID     string `json:"_id"`
	Result string `json:"result"`
}
