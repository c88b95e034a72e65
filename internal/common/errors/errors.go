// Package errors provides the standardized error model shared by the
// readiness workers and its mapping onto BPMN errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	// Scoring
	ErrCodeMissingField          ErrorCode = "MISSING_FIELD"
	ErrCodeParseError            ErrorCode = "PARSE_ERROR"
	ErrCodeCategoryScoringFailed ErrorCode = "CATEGORY_SCORING_FAILED"
	ErrCodeInvalidAnswers        ErrorCode = "INVALID_ANSWERS"
	ErrCodePolicyInvalid         ErrorCode = "POLICY_INVALID"

	// Infrastructure
	ErrCodeReportStoreFailed        ErrorCode = "REPORT_STORE_FAILED"
	ErrCodeReportIndexFailed        ErrorCode = "REPORT_INDEX_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"

	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError is a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// BPMNError is an error thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the process variables set alongside a failed or
// thrown job.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func NewMissingFieldError(category, field string) *StandardError {
	return newError(ErrCodeMissingField, "Required survey field is absent",
		fmt.Sprintf("category: %s, field: %s", category, field), false).
		WithMetadata("category", category).
		WithMetadata("field", field)
}

func NewParseError(category, field, value string) *StandardError {
	return newError(ErrCodeParseError, "Survey answer is not numeric",
		fmt.Sprintf("category: %s, field: %s, value: %q", category, field, value), false).
		WithMetadata("category", category).
		WithMetadata("field", field)
}

// NewCategoryScoringFailedError reports that one or more categories could
// not be scored while strict mode was on.
func NewCategoryScoringFailedError(categories []string, err error) *StandardError {
	e := newError(ErrCodeCategoryScoringFailed, "One or more readiness categories could not be scored",
		err.Error(), false)
	return e.WithMetadata("categories", categories)
}

func NewInvalidAnswersError(details string) *StandardError {
	return newError(ErrCodeInvalidAnswers, "Survey answers failed validation", details, false)
}

func NewPolicyInvalidError(err error) *StandardError {
	return newError(ErrCodePolicyInvalid, "Scoring policy is invalid", err.Error(), false)
}

func NewReportStoreFailedError(err error) *StandardError {
	return newError(ErrCodeReportStoreFailed, "Failed to persist readiness report", err.Error(), true)
}

func NewReportIndexFailedError(index string, err error) *StandardError {
	return newError(ErrCodeReportIndexFailed, "Failed to index readiness report",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	e := newError(ErrCodeNotificationSendFailed, "Failed to send readiness notification",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
	return e.WithMetadata("channel", channel)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Assessment cache unavailable", err.Error(), true)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternalError, "Unexpected error", err.Error(), false)
}

// GetRetryCount returns the retry budget for code. Business errors get none.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeReportStoreFailed,
		ErrCodeReportIndexFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeDatabaseConnectionFailed:
		return 3
	case ErrCodeCacheUnavailable:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError into its BPMN form. BPMN
// codes equal the internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// AsStandardError finds a StandardError in err's chain, or wraps err as an
// internal error.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// IsRetryableErrorCode reports whether code carries a retry budget.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for dashboards.
func GetErrorCategory(code ErrorCode) string {
	c := string(code)
	switch {
	case code == ErrCodeMissingField, code == ErrCodeParseError, strings.Contains(c, "SCORING"):
		return "SCORING"
	case strings.Contains(c, "INVALID"):
		return "VALIDATION"
	case strings.Contains(c, "STORE"), strings.Contains(c, "DATABASE"):
		return "DATABASE"
	case strings.Contains(c, "INDEX"):
		return "SEARCH"
	case strings.Contains(c, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(c, "CACHE"):
		return "CACHE"
	default:
		return "OTHER"
	}
}
