package assessment

import (
	"fmt"
	"time"

	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/readiness"
)

// Request is one survey response to assess. Exactly one of RawAnswers and
// Answers must be set.
type Request struct {
	SurveyID   string            `json:"surveyId,omitempty"`
	RawAnswers []string          `json:"rawAnswers,omitempty"`
	Answers    map[string]string `json:"answers,omitempty"`

	// Strict fails the request when any category cannot be scored, on top
	// of the service-wide setting.
	Strict bool `json:"strict,omitempty"`
}

// Result is an assessed survey response.
type Result struct {
	SurveyID        string                                    `json:"surveyId,omitempty"`
	ScheduleVersion string                                    `json:"scheduleVersion"`
	InputHash       string                                    `json:"inputHash"`
	Scores          readiness.Scores                          `json:"scores"`
	Failures        map[readiness.Category]*readiness.Failure `json:"failures,omitempty"`
	Complete        bool                                      `json:"complete"`
	AssessedAt      time.Time                                 `json:"assessedAt"`
	Cached          bool                                      `json:"cached"`
}

// FailedCategories lists the categories without a score, in canonical
// order.
func (r *Result) FailedCategories() []string {
	var out []string
	for _, c := range readiness.Categories() {
		if _, ok := r.Failures[c]; ok {
			out = append(out, string(c))
		}
	}
	return out
}

// FailureErrors converts each category failure into a standard error, in
// canonical order.
func (r *Result) FailureErrors() []*apperrors.StandardError {
	var out []*apperrors.StandardError
	for _, c := range readiness.Categories() {
		f, ok := r.Failures[c]
		if !ok {
			continue
		}
		switch f.Kind {
		case readiness.KindMissingField:
			out = append(out, apperrors.NewMissingFieldError(string(c), f.Field))
		case readiness.KindParseError:
			out = append(out, apperrors.NewParseError(string(c), f.Field, f.Value))
		default:
			out = append(out, apperrors.NewInternalError(fmt.Errorf("%s: %s", c, f.Message)))
		}
	}
	return out
}
