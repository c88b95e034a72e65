package readiness_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/config"
	"readiness-workers/internal/common/database"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/readiness"
	"readiness-workers/internal/readiness/readinesstest"
	assessreadiness "readiness-workers/internal/workers/readiness/assess-readiness"
	indexreadinessreport "readiness-workers/internal/workers/readiness/index-readiness-report"
	notifyreadinessreport "readiness-workers/internal/workers/readiness/notify-readiness-report"
	storereadinessreport "readiness-workers/internal/workers/readiness/store-readiness-report"
)

type sesFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)

func (f sesFunc) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return f(ctx, params, optFns...)
}

type snsFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)

func (f snsFunc) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return f(ctx, params, optFns...)
}

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r), nil
}

// carry moves process variables from one task to the next the way the
// engine does: through their JSON form.
func carry(t *testing.T, vars map[string]interface{}, out interface{}, in interface{}) {
	t.Helper()
	data, err := json.Marshal(out)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &vars))

	data, err = json.Marshal(vars)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, in))
}

func TestReadinessProcess(t *testing.T) {
	ctx := context.Background()
	log := logger.NewTestLogger(t)
	vars := map[string]interface{}{}

	// assess
	svc, err := assessment.Build("", "", nil, nil, log, assessment.Options{})
	require.NoError(t, err)
	assess := assessreadiness.NewHandler(assessreadiness.LoadConfig(config.WorkerConfig{}), svc, nil, log)

	raw := readinesstest.RawAnswers(readiness.DefaultSchedule, readinesstest.CompleteAnswers(nil))
	assessed, err := assess.Execute(ctx, &assessreadiness.Input{SurveyID: "cdmx-2015", RawAnswers: raw})
	require.NoError(t, err)
	require.True(t, assessed.Complete)

	// store
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(`INSERT INTO readiness_reports`).
		WithArgs(sqlmock.AnyArg(), "cdmx-2015", sqlmock.AnyArg(), assessed.Report.InputHash,
			sqlmock.AnyArg(), sqlmock.AnyArg(), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("stored-id"))
	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnResult(sqlmock.NewResult(1, 1))

	store := storereadinessreport.NewHandler(storereadinessreport.LoadConfig(config.WorkerConfig{}), db, nil, log)
	var storeIn storereadinessreport.Input
	carry(t, vars, assessed, &storeIn)
	stored, err := store.Execute(ctx, &storeIn)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	// index
	var indexed indexreadinessreport.Document
	es, err := database.NewElasticsearchWithTransport(config.ElasticsearchConfig{
		Addresses: []string{"http://es.test:9200"},
	}, roundTripFunc(func(r *http.Request) *http.Response {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &indexed)
		h := http.Header{}
		h.Set("X-Elastic-Product", "Elasticsearch")
		h.Set("Content-Type", "application/json")
		return &http.Response{
			StatusCode: http.StatusCreated,
			Header:     h,
			Body:       io.NopCloser(strings.NewReader(`{"_id":"` + stored.ReportID + `","result":"created"}`)),
		}
	}))
	require.NoError(t, err)

	index := indexreadinessreport.NewHandler(
		indexreadinessreport.LoadConfig(config.WorkerConfig{}, config.ElasticsearchConfig{}), es.Client, nil, log)
	var indexIn indexreadinessreport.Input
	carry(t, vars, stored, &indexIn)
	indexOut, err := index.Execute(ctx, &indexIn)
	require.NoError(t, err)
	assert.Equal(t, stored.ReportID, indexOut.DocumentID)
	assert.Equal(t, "cdmx-2015", indexed.SurveyID)
	assert.Empty(t, indexed.FailedCategories)

	// notify
	var event notifyreadinessreport.Event
	var ncfg config.NotificationConfig
	ncfg.Email.Enabled = true
	ncfg.Email.FromEmail = "readiness@ciudad.gob.mx"
	ncfg.Email.Recipients = []string{"datos@ciudad.gob.mx"}
	ncfg.Topic.Enabled = true
	ncfg.Topic.TopicARN = "arn:aws:sns:us-east-1:123456789012:readiness-reports"
	notifyCfg, rejected := notifyreadinessreport.LoadConfig(config.WorkerConfig{}, ncfg)
	require.Empty(t, rejected)
	notify := notifyreadinessreport.NewHandler(notifyCfg,
		sesFunc(func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
		}),
		snsFunc(func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			require.NoError(t, json.Unmarshal([]byte(aws.ToString(params.Message)), &event))
			return &sns.PublishOutput{MessageId: aws.String("evt-1")}, nil
		}),
		nil, log)
	var notifyIn notifyreadinessreport.Input
	carry(t, vars, indexOut, &notifyIn)
	notified, err := notify.Execute(ctx, &notifyIn)
	require.NoError(t, err)

	assert.Equal(t, notifyreadinessreport.StatusSent, notified.Status)
	assert.Equal(t, stored.ReportID, event.ReportID)
	for c, want := range readinesstest.ExpectedScores {
		assert.InDelta(t, want, event.Scores[string(c)], 1e-9, "category %s", c)
	}
}
