package assessment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/readiness"
	"readiness-workers/internal/readiness/readinesstest"
)

var fixedNow = time.Date(2015, 6, 1, 12, 0, 0, 0, time.FixedZone("CST", -6*3600))

// fakeCache is a Cache whose behaviour is set per test.
type fakeCache struct {
	GetFunc func(ctx context.Context, key string) (*Result, error)
	SetFunc func(ctx context.Context, key string, r *Result, ttl time.Duration) error
}

func (f *fakeCache) Get(ctx context.Context, key string) (*Result, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, key)
	}
	return nil, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, r *Result, ttl time.Duration) error {
	if f.SetFunc != nil {
		return f.SetFunc(ctx, key, r, ttl)
	}
	return nil
}

func newTestService(t *testing.T, cache Cache, opts Options) *Service {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	svc, err := Build("", "", cache, nil, logger.NewTestLogger(t), opts)
	require.NoError(t, err)
	return svc
}

func assertScores(t *testing.T, want, got readiness.Scores) {
	t.Helper()
	require.Len(t, got, len(want))
	for c, v := range want {
		assert.InDelta(t, v, got[c], 1e-9, "category %s", c)
	}
}

func TestService_AssessKeyedAnswers(t *testing.T) {
	svc := newTestService(t, nil, Options{})

	res, err := svc.Assess(context.Background(), Request{
		SurveyID: "survey-1",
		Answers:  readinesstest.CompleteAnswers(nil),
	})
	require.NoError(t, err)

	assert.Equal(t, "survey-1", res.SurveyID)
	assert.Equal(t, readiness.DefaultSchedule.Version, res.ScheduleVersion)
	assert.True(t, res.Complete)
	assert.Empty(t, res.Failures)
	assert.Empty(t, res.FailedCategories())
	assert.False(t, res.Cached)
	assert.Equal(t, fixedNow.UTC(), res.AssessedAt)
	assert.Len(t, res.InputHash, 64)
	assertScores(t, readinesstest.ExpectedScores, res.Scores)
}

func TestService_RawAndKeyedInputsAgree(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	answers := readinesstest.CompleteAnswers(nil)
	ctx := context.Background()

	keyed, err := svc.Assess(ctx, Request{Answers: answers})
	require.NoError(t, err)
	raw, err := svc.Assess(ctx, Request{RawAnswers: readinesstest.RawAnswers(svc.Schedule(), answers)})
	require.NoError(t, err)

	assert.Equal(t, keyed.InputHash, raw.InputHash)
	assert.Equal(t, keyed.Scores, raw.Scores)
}

func TestService_DifferentAnswersHashDifferently(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	ctx := context.Background()

	a, err := svc.Assess(ctx, Request{Answers: readinesstest.CompleteAnswers(nil)})
	require.NoError(t, err)
	b, err := svc.Assess(ctx, Request{Answers: readinesstest.CompleteAnswers(map[string]string{
		readiness.FieldSocEvents: "Si",
	})})
	require.NoError(t, err)

	assert.NotEqual(t, a.InputHash, b.InputHash)
	assert.InDelta(t, 2.0/3, b.Scores[readiness.Society], 1e-9)
}

func TestService_PartialResult(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	answers := readinesstest.CompleteAnswers(map[string]string{
		readiness.FieldFundsPercentage: "n/a",
	})
	answers = readinesstest.Without(answers, readiness.FieldImpSelfAssessment)

	res, err := svc.Assess(context.Background(), Request{Answers: answers})
	require.NoError(t, err, "failures are reported in the result by default")

	assert.False(t, res.Complete)
	assert.Equal(t, []string{"fundings", "impact"}, res.FailedCategories())
	assert.Equal(t, readiness.KindParseError, res.Failures[readiness.Fundings].Kind)
	assert.Equal(t, readiness.KindMissingField, res.Failures[readiness.Impact].Kind)
	assert.Equal(t, readiness.FieldImpSelfAssessment, res.Failures[readiness.Impact].Field)
	assert.Len(t, res.Scores, 5)
	assert.InDelta(t, 1.0, res.Scores[readiness.Legal], 1e-9)
}

func TestService_StrictMode(t *testing.T) {
	broken := readinesstest.CompleteAnswers(map[string]string{
		readiness.FieldFundsPercentage: "n/a",
	})

	tests := []struct {
		name          string
		serviceStrict bool
		requestStrict bool
		answers       map[string]string
		wantErr       bool
	}{
		{"lenient service and request", false, false, broken, false},
		{"strict service", true, false, broken, true},
		{"strict request", false, true, broken, true},
		{"strict but complete", true, true, readinesstest.CompleteAnswers(nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, nil, Options{Strict: tt.serviceStrict})

			res, err := svc.Assess(context.Background(), Request{
				Answers: tt.answers,
				Strict:  tt.requestStrict,
			})
			require.NotNil(t, res, "the result is returned even when strict mode fails")

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var se *apperrors.StandardError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, apperrors.ErrCodeCategoryScoringFailed, se.Code)
			assert.Equal(t, []string{"fundings"}, se.Metadata["categories"])
			assert.Contains(t, se.Details, "fundings")

			failures, ok := se.Metadata["failures"].([]*apperrors.StandardError)
			require.True(t, ok)
			require.Len(t, failures, 1)
			assert.Equal(t, apperrors.ErrCodeParseError, failures[0].Code)
			assert.Equal(t, readiness.FieldFundsPercentage, failures[0].Metadata["field"])
			assert.Contains(t, failures[0].Details, `"n/a"`)
		})
	}
}

func TestService_InvalidAnswers(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"no answers", Request{SurveyID: "s"}},
		{"both forms", Request{
			RawAnswers: []string{"2015"},
			Answers:    map[string]string{readiness.FieldTimestamp: "2015"},
		}},
		{"unknown field", Request{Answers: map[string]string{"budget": "10"}}},
		{"answer too long", Request{Answers: map[string]string{
			readiness.FieldLeadOfficial: strings.Repeat("a", 5000),
		}}},
	}

	svc := newTestService(t, nil, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Assess(context.Background(), tt.req)
			assert.Nil(t, res)

			var se *apperrors.StandardError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, apperrors.ErrCodeInvalidAnswers, se.Code)
			assert.False(t, se.Retryable)
		})
	}
}

func TestService_InvalidAnswersCarryValidationErrors(t *testing.T) {
	svc := newTestService(t, nil, Options{})

	_, err := svc.Assess(context.Background(), Request{Answers: map[string]string{"budget": "10"}})
	se := apperrors.AsStandardError(err)
	assert.Contains(t, se.Details, "budget")
	assert.NotNil(t, se.Metadata["validationErrors"])
}

func TestService_CachesResults(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc := newTestService(t, NewRedisCache(client), Options{CacheTTL: time.Hour})
	ctx := context.Background()
	answers := readinesstest.CompleteAnswers(nil)

	first, err := svc.Assess(ctx, Request{SurveyID: "first", Answers: answers})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Len(t, mr.Keys(), 1)
	assert.Equal(t, time.Hour, mr.TTL(cacheKeyPrefix+first.InputHash))

	second, err := svc.Assess(ctx, Request{
		SurveyID:   "second",
		RawAnswers: readinesstest.RawAnswers(svc.Schedule(), answers),
	})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "second", second.SurveyID)
	assert.Equal(t, first.InputHash, second.InputHash)
	assertScores(t, first.Scores, second.Scores)
}

func TestService_CachedPartialResultStillFailsStrict(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc := newTestService(t, NewRedisCache(client), Options{})
	answers := readinesstest.Without(readinesstest.CompleteAnswers(nil), readiness.FieldImpSelfAssessment)
	ctx := context.Background()

	_, err := svc.Assess(ctx, Request{Answers: answers})
	require.NoError(t, err)

	res, err := svc.Assess(ctx, Request{Answers: answers, Strict: true})
	require.NotNil(t, res)
	assert.True(t, res.Cached)
	assert.Equal(t, apperrors.ErrCodeCategoryScoringFailed, apperrors.AsStandardError(err).Code)
}

func TestService_CacheFailuresAreNotFatal(t *testing.T) {
	var stored *Result
	cache := &fakeCache{
		GetFunc: func(ctx context.Context, key string) (*Result, error) {
			return nil, errors.New("redis: connection refused")
		},
		SetFunc: func(ctx context.Context, key string, r *Result, ttl time.Duration) error {
			stored = r
			return errors.New("redis: connection refused")
		},
	}
	svc := newTestService(t, cache, Options{CacheTTL: time.Minute})

	res, err := svc.Assess(context.Background(), Request{
		SurveyID: "survey-9",
		Answers:  readinesstest.CompleteAnswers(nil),
	})
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, "survey-9", res.SurveyID)

	require.NotNil(t, stored)
	assert.Empty(t, stored.SurveyID, "cached copies are not tied to a survey")
}

const customCeilings = `ceilings:
  leadership: 30
  fundings: 1
  capabilities: 12
  openness: 8
  legal: 4
  society: 3
  impact: 4
`

func TestBuild(t *testing.T) {
	log := logger.NewNoOpLogger()

	t.Run("unknown schedule", func(t *testing.T) {
		_, err := Build("", "1999.1", nil, nil, log, Options{})
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.AsStandardError(err).Code)
	})

	t.Run("missing policy file", func(t *testing.T) {
		_, err := Build(filepath.Join(t.TempDir(), "nope.yaml"), "", nil, nil, log, Options{})
		assert.Equal(t, apperrors.ErrCodePolicyInvalid, apperrors.AsStandardError(err).Code)
	})

	t.Run("invalid policy file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("ceilings:\n  leadership: 0\n"), 0o600))

		_, err := Build(path, "", nil, nil, log, Options{})
		assert.Equal(t, apperrors.ErrCodePolicyInvalid, apperrors.AsStandardError(err).Code)
	})

	t.Run("policy change alters the input hash", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte(customCeilings), 0o600))

		custom, err := Build(path, "", nil, nil, log, Options{})
		require.NoError(t, err)
		ref, err := Build("", "", nil, nil, log, Options{})
		require.NoError(t, err)

		req := Request{Answers: readinesstest.CompleteAnswers(nil)}
		a, err := custom.Assess(context.Background(), req)
		require.NoError(t, err)
		b, err := ref.Assess(context.Background(), req)
		require.NoError(t, err)

		assert.NotEqual(t, a.InputHash, b.InputHash)
		assert.InDelta(t, 0.25, a.Scores[readiness.Impact], 1e-9)
		pol := custom.Policy()
		assert.Equal(t, 4.0, pol.Ceiling(readiness.Impact))
	})
}
