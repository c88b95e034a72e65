package notifyreadinessreport

import "readiness-workers/internal/assessment"

type Input struct {
	ReportID string             `json:"reportId"`
	Report   *assessment.Result `json:"readinessReport"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent" or "disabled"
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

// Event is the message published to the report topic.
type Event struct {
	EventType        string             `json:"eventType"`
	ReportID         string             `json:"reportId"`
	SurveyID         string             `json:"surveyId,omitempty"`
	Complete         bool               `json:"complete"`
	Scores           map[string]float64 `json:"scores"`
	FailedCategories []string           `json:"failedCategories"`
	AssessedAt       string             `json:"assessedAt"`
}

const EventReportAssessed = "readiness.report.assessed"

// Statuses
const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelTopic = "topic"
)
