package assessreadiness

import "readiness-workers/internal/assessment"

type Input struct {
	SurveyID   string            `json:"surveyId"`
	RawAnswers []string          `json:"rawAnswers,omitempty"`
	Answers    map[string]string `json:"answers,omitempty"`
	Strict     bool              `json:"strict,omitempty"`
}

type Output struct {
	Report           *assessment.Result `json:"readinessReport"`
	Complete         bool               `json:"readinessComplete"`
	FailedCategories []string           `json:"failedCategories"`
}
