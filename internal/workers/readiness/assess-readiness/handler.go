package assessreadiness

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/camunda"
	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/observability"
)

const (
	TaskType = "assess-readiness"
)

// Assessor scores one survey response.
type Assessor interface {
	Assess(ctx context.Context, req assessment.Request) (*assessment.Result, error)
}

type Handler struct {
	config   *Config
	assessor Assessor
	errors   *apperrors.ErrorHandler
	obs      *observability.Observability
	logger   logger.Logger
}

func NewHandler(config *Config, assessor Assessor, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		assessor: assessor,
		errors:   apperrors.NewErrorHandler(log),
		obs:      obs,
		logger:   log,
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
		h.fail(ctx, client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)), started)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err, started)
		return
	}

	if err := camunda.Complete(ctx, client, job, output, h.logger); err != nil {
		h.fail(ctx, client, job, err, started)
		return
	}
	h.obs.ObserveJob(ctx, TaskType, "", started)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.assessor.Assess(ctx, assessment.Request{
		SurveyID:   input.SurveyID,
		RawAnswers: input.RawAnswers,
		Answers:    input.Answers,
		Strict:     input.Strict,
	})
	if err != nil {
		return nil, err
	}

	failed := result.FailedCategories()
	if failed == nil {
		failed = []string{}
	}
	return &Output{
		Report:           result,
		Complete:         result.Complete,
		FailedCategories: failed,
	}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, started time.Time) {
	stdErr := apperrors.AsStandardError(err)
	h.obs.ObserveJob(ctx, TaskType, string(stdErr.Code), started)
	h.errors.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
