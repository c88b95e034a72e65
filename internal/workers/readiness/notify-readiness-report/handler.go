package notifyreadinessreport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	awsclients "readiness-workers/internal/common/aws"
	"readiness-workers/internal/common/camunda"
	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/observability"
)

const (
	TaskType = "notify-readiness-report"
)

type Handler struct {
	config    *Config
	sesClient awsclients.SESService
	snsClient awsclients.SNSService
	errors    *apperrors.ErrorHandler
	obs       *observability.Observability
	logger    logger.Logger
}

func NewHandler(config *Config, sesClient awsclients.SESService, snsClient awsclients.SNSService, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		sesClient: sesClient,
		snsClient: snsClient,
		errors:    apperrors.NewErrorHandler(log),
		obs:       obs,
		logger:    log,
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

	out := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		Channels:       []string{},
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	if h.config.EmailEnabled && len(h.config.Recipients) > 0 {
		body, err := renderSummary(input)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if err := h.sendEmail(ctx, subject(input), body); err != nil {
			return nil, apperrors.NewNotificationSendFailedError(ChannelEmail, err)
		}
		out.Channels = append(out.Channels, ChannelEmail)
	}

	if h.config.TopicEnabled && h.config.TopicARN != "" {
		if err := h.publish(ctx, input); err != nil {
			return nil, apperrors.NewNotificationSendFailedError(ChannelTopic, err)
		}
		out.Channels = append(out.Channels, ChannelTopic)
	}

	if len(out.Channels) > 0 {
		out.Status = StatusSent
	}

	h.logger.Info("readiness report notification finished", map[string]interface{}{
		"reportId":       input.ReportID,
		"notificationId": out.NotificationID,
		"status":         out.Status,
		"channels":       out.Channels,
	})
	return out, nil
}

func (h *Handler) sendEmail(ctx context.Context, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: h.config.Recipients,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) publish(ctx context.Context, input *Input) error {
	r := input.Report
	scores := make(map[string]float64, len(r.Scores))
	for c, v := range r.Scores {
		scores[string(c)] = v
	}
	failed := r.FailedCategories()
	if failed == nil {
		failed = []string{}
	}

	msg, err := json.Marshal(Event{
		EventType:        EventReportAssessed,
		ReportID:         input.ReportID,
		SurveyID:         r.SurveyID,
		Complete:         r.Complete,
		Scores:           scores,
		FailedCategories: failed,
		AssessedAt:       r.AssessedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Message:  aws.String(string(msg)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(EventReportAssessed)},
			"complete":  {DataType: aws.String("String"), StringValue: aws.String(fmt.Sprint(r.Complete))},
		},
	})
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
