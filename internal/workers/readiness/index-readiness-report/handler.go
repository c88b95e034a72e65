package indexreadinessreport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"readiness-workers/internal/common/camunda"
	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/observability"
)

const (
	TaskType = "index-readiness-report"
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	errors *apperrors.ErrorHandler
	obs    *observability.Observability
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		client: client,
		errors: apperrors.NewErrorHandler(log),
		obs:    obs,
		logger: log,
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
	if input.ReportID == "" || input.Report == nil {
		return nil, apperrors.NewInvalidInputError("reportId and readinessReport are required")
	}

	failed := input.Report.FailedCategories()
	if failed == nil {
		failed = []string{}
	}
	body, err := json.Marshal(Document{
		ReportID:         input.ReportID,
		SurveyID:         input.Report.SurveyID,
		ScheduleVersion:  input.Report.ScheduleVersion,
		Complete:         input.Report.Complete,
		AssessedAt:       input.Report.AssessedAt,
		Scores:           input.Report.Scores,
		FailedCategories: failed,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("marshal document: %w", err))
	}

	opts := []func(*esapi.IndexRequest){
		h.client.Index.WithContext(ctx),
		h.client.Index.WithDocumentID(input.ReportID),
	}
	if h.config.Refresh {
		opts = append(opts, h.client.Index.WithRefresh("wait_for"))
	}

	res, err := h.client.Index(h.config.Index, bytes.NewReader(body), opts...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewReportIndexFailedError(h.config.Index, fmt.Errorf("index timeout: %w", err))
		}
		return nil, apperrors.NewReportIndexFailedError(h.config.Index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		e := apperrors.NewReportIndexFailedError(h.config.Index, fmt.Errorf("index response: %s", res.Status()))
		// Mapping and request errors do not go away on retry.
		if res.StatusCode < http.StatusInternalServerError && res.StatusCode != http.StatusTooManyRequests {
			e.Retryable = false
		}
		return nil, e
	}

	var ir indexResponse
	if err := json.NewDecoder(res.Body).Decode(&ir); err != nil {
		return nil, apperrors.NewReportIndexFailedError(h.config.Index, fmt.Errorf("decode response: %w", err))
	}

	h.logger.Info("readiness report indexed", map[string]interface{}{
		"reportId": input.ReportID,
		"index":    h.config.Index,
		"result":   ir.Result,
	})

	return &Output{
		Indexed:    true,
		Index:      h.config.Index,
		DocumentID: ir.ID,
		Result:     ir.Result,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
