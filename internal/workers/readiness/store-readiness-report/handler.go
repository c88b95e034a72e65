package storereadinessreport

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"readiness-workers/internal/common/camunda"
	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/observability"
)

const (
	TaskType = "store-readiness-report"
)

type Handler struct {
	config *Config
	db     *sql.DB
	errors *apperrors.ErrorHandler
	obs    *observability.Observability
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		errors: apperrors.NewErrorHandler(log),
		obs:    obs,
		logger: log,
		now:    time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		err = apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
		h.obs.ObserveJob(ctx, TaskType, string(apperrors.ErrCodeInvalidInput), started)
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.obs.ObserveJob(ctx, TaskType, string(apperrors.AsStandardError(err).Code), started)
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	if err := camunda.Complete(ctx, client, job, output, h.logger); err != nil {
		h.obs.ObserveJob(ctx, TaskType, string(apperrors.AsStandardError(err).Code), started)
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}
	h.obs.ObserveJob(ctx, TaskType, "", started)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	report := input.Report
	if report == nil || report.InputHash == "" {
		return nil, apperrors.NewInvalidInputError("readinessReport is required")
	}

	storedAt := h.now().UTC().Format(time.RFC3339)

	scores, err := json.Marshal(report.Scores)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("marshal scores: %w", err))
	}
	failures := []byte("{}")
	if len(report.Failures) > 0 {
		if failures, err = json.Marshal(report.Failures); err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("marshal failures: %w", err))
		}
	}

	// The unique index on (survey_id, input_hash) stores the same answers
	// for the same survey once, also across redelivered or concurrent jobs.
	reportID := uuid.New().String()
	var inserted string
	err = h.db.QueryRowContext(ctx, `
		INSERT INTO readiness_reports (
			id, survey_id, schedule_version, input_hash,
			scores, failures, complete, assessed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (survey_id, input_hash) DO NOTHING
		RETURNING id`,
		reportID,
		report.SurveyID,
		report.ScheduleVersion,
		report.InputHash,
		scores,
		failures,
		report.Complete,
		report.AssessedAt,
		storedAt,
	).Scan(&inserted)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return h.existing(ctx, report.SurveyID, report.InputHash, storedAt)
	case err != nil:
		return nil, apperrors.NewReportStoreFailedError(fmt.Errorf("insert report: %w", err))
	}

	// Audit rows are best effort.
	details, _ := json.Marshal(map[string]interface{}{
		"surveyId":         report.SurveyID,
		"complete":         report.Complete,
		"failedCategories": report.FailedCategories(),
	})
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		EventReportStored,
		ResourceTypeReport,
		reportID,
		details,
		storedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":    err,
			"reportId": reportID,
		})
	}

	h.logger.Info("readiness report stored", map[string]interface{}{
		"reportId": reportID,
		"surveyId": report.SurveyID,
		"complete": report.Complete,
	})

	return &Output{ReportID: reportID, StoredAt: storedAt}, nil
}

func (h *Handler) existing(ctx context.Context, surveyID, inputHash, storedAt string) (*Output, error) {
	var id string
	err := h.db.QueryRowContext(ctx, `
		SELECT id FROM readiness_reports
		WHERE survey_id = $1 AND input_hash = $2`,
		surveyID, inputHash).Scan(&id)
	if err != nil {
		return nil, apperrors.NewReportStoreFailedError(fmt.Errorf("load stored report: %w", err))
	}
	h.logger.Info("readiness report already stored", map[string]interface{}{
		"reportId": id,
		"surveyId": surveyID,
	})
	return &Output{ReportID: id, StoredAt: storedAt, Duplicate: true}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
