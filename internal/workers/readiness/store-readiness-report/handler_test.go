package storereadinessreport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/config"
	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/readiness"
)

var assessedAt = time.Date(2015, 6, 1, 10, 0, 0, 0, time.UTC)

func createTestReport() *assessment.Result {
	return &assessment.Result{
		SurveyID:        "survey-001",
		ScheduleVersion: "2015.1",
		InputHash:       "hash-001",
		Scores: readiness.Scores{
			readiness.Leadership: 0.5,
			readiness.Legal:      1,
		},
		Failures: map[readiness.Category]*readiness.Failure{
			readiness.Fundings: {Kind: readiness.KindParseError, Field: readiness.FieldFundsPercentage, Message: "bad"},
		},
		AssessedAt: assessedAt,
	}
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(LoadConfig(config.WorkerConfig{}), db, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return assessedAt.Add(time.Minute) }
	return h, mock
}

func TestHandler_Execute_Success(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`INSERT INTO readiness_reports .+ ON CONFLICT \(survey_id, input_hash\) DO NOTHING\s+RETURNING id`).
		WithArgs(
			sqlmock.AnyArg(), // report ID
			"survey-001",
			"2015.1",
			"hash-001",
			sqlmock.AnyArg(), // scores JSON
			sqlmock.AnyArg(), // failures JSON
			false,
			assessedAt,
			"2015-06-01T10:01:00Z",
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inserted-id"))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(EventReportStored, ResourceTypeReport, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	out, err := h.Execute(context.Background(), &Input{Report: createTestReport()})
	require.NoError(t, err)

	_, err = uuid.Parse(out.ReportID)
	assert.NoError(t, err)
	assert.Equal(t, "2015-06-01T10:01:00Z", out.StoredAt)
	assert.False(t, out.Duplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_AuditFailureIsNotFatal(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`INSERT INTO readiness_reports`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inserted-id"))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnError(errors.New("relation audit_log does not exist"))

	out, err := h.Execute(context.Background(), &Input{Report: createTestReport()})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ReportID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_Duplicate(t *testing.T) {
	h, mock := newTestHandler(t)

	// The conflicting insert returns no row and writes no audit entry.
	mock.ExpectQuery(`INSERT INTO readiness_reports .+ ON CONFLICT \(survey_id, input_hash\) DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT id FROM readiness_reports`).
		WithArgs("survey-001", "hash-001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))

	out, err := h.Execute(context.Background(), &Input{Report: createTestReport()})
	require.NoError(t, err)
	assert.Equal(t, "existing-id", out.ReportID)
	assert.Equal(t, "2015-06-01T10:01:00Z", out.StoredAt)
	assert.True(t, out.Duplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_RedeliveredJobStoresOnce(t *testing.T) {
	h, mock := newTestHandler(t)
	report := createTestReport()

	mock.ExpectQuery(`INSERT INTO readiness_reports`).
		WithArgs(sqlmock.AnyArg(), "survey-001", "2015.1", "hash-001",
			sqlmock.AnyArg(), sqlmock.AnyArg(), false, assessedAt, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("first-id"))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`INSERT INTO readiness_reports`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT id FROM readiness_reports`).
		WithArgs("survey-001", "hash-001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("first-id"))

	first, err := h.Execute(context.Background(), &Input{Report: report})
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := h.Execute(context.Background(), &Input{Report: report})
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, "first-id", second.ReportID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		setup     func(mock sqlmock.Sqlmock)
		wantCode  apperrors.ErrorCode
		retryable bool
	}{
		{
			name:     "missing report",
			input:    &Input{},
			setup:    func(sqlmock.Sqlmock) {},
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:  "insert fails",
			input: &Input{Report: createTestReport()},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO readiness_reports`).
					WillReturnError(errors.New("disk full"))
			},
			wantCode:  apperrors.ErrCodeReportStoreFailed,
			retryable: true,
		},
		{
			name:  "stored report lookup fails after conflict",
			input: &Input{Report: createTestReport()},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO readiness_reports`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectQuery(`SELECT id FROM readiness_reports`).
					WillReturnError(errors.New("connection reset"))
			},
			wantCode:  apperrors.ErrCodeReportStoreFailed,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newTestHandler(t)
			tt.setup(mock)

			out, err := h.Execute(context.Background(), tt.input)
			assert.Nil(t, out)

			se := apperrors.AsStandardError(err)
			assert.Equal(t, tt.wantCode, se.Code)
			assert.Equal(t, tt.retryable, se.Retryable)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
