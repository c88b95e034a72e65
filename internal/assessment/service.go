// Package assessment runs readiness assessments for the job workers, the
// HTTP API and the CLI. It adds input validation, result caching,
// metrics and tracing around the scoring engine.
package assessment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/metrics"
	"readiness-workers/internal/common/observability"
	"readiness-workers/internal/common/validation"
	"readiness-workers/internal/readiness"
)

const (
	OutcomeComplete = "complete"
	OutcomePartial  = "partial"
	OutcomeRejected = "rejected"
	OutcomeCached   = "cached"
)

type Options struct {
	Strict   bool
	CacheTTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	engine      *readiness.Engine
	schedule    readiness.Schedule
	cache       Cache
	obs         *observability.Observability
	logger      logger.Logger
	opts        Options
	fingerprint string
	answers     validation.JSONSchema
	raw         validation.JSONSchema
}

// NewService wires an engine to its collaborators. cache and obs may be
// nil.
func NewService(engine *readiness.Engine, schedule readiness.Schedule, cache Cache, obs *observability.Observability, log logger.Logger, opts Options) *Service {
	if obs == nil {
		obs = &observability.Observability{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		engine:      engine,
		schedule:    schedule,
		cache:       cache,
		obs:         obs,
		logger:      log,
		opts:        opts,
		fingerprint: policyFingerprint(engine.Policy()),
		answers:     validation.AnswerSchema(schedule.Fields),
		raw:         validation.RawAnswersSchema(),
	}
}

// Build loads the policy and schedule named by the scoring settings and
// returns a ready service.
func Build(policyFile, scheduleVersion string, cache Cache, obs *observability.Observability, log logger.Logger, opts Options) (*Service, error) {
	policy, err := readiness.LoadPolicy(policyFile)
	if err != nil {
		return nil, apperrors.NewPolicyInvalidError(err)
	}
	engine, err := readiness.NewEngine(policy)
	if err != nil {
		return nil, apperrors.NewPolicyInvalidError(err)
	}
	schedule, ok := readiness.LookupSchedule(scheduleVersion)
	if !ok {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("unknown schedule version %q", scheduleVersion))
	}
	return NewService(engine, schedule, cache, obs, log, opts), nil
}

func (s *Service) Schedule() readiness.Schedule {
	return s.schedule
}

func (s *Service) Policy() readiness.Policy {
	return s.engine.Policy()
}

// Assess validates req, scores it and caches the result. Category failures
// are reported in the result; in strict mode they also produce a
// CATEGORY_SCORING_FAILED error alongside the result.
func (s *Service) Assess(ctx context.Context, req Request) (result *Result, err error) {
	ctx, span := s.obs.StartSpan(ctx, "readiness.assess",
		attribute.String("surveyId", req.SurveyID),
		attribute.String("scheduleVersion", s.schedule.Version),
	)
	defer func() { observability.EndSpan(span, err) }()

	record, err := s.record(req)
	if err != nil {
		s.count(ctx, OutcomeRejected)
		return nil, err
	}

	key := s.inputHash(record)
	log := s.logger.WithFields(map[string]interface{}{
		"surveyId":  req.SurveyID,
		"inputHash": key,
	})

	if cached := s.lookup(ctx, key, log); cached != nil {
		cached.SurveyID = req.SurveyID
		cached.Cached = true
		s.count(ctx, OutcomeCached)
		log.Debug("assessment served from cache", nil)
		return cached, s.strictErr(req, cached)
	}

	_, scoreSpan := s.obs.StartSpan(ctx, "readiness.score")
	report := s.engine.Assess(record)
	scoreSpan.End()

	result = &Result{
		SurveyID:        req.SurveyID,
		ScheduleVersion: s.schedule.Version,
		InputHash:       key,
		Scores:          report.Scores,
		Failures:        report.Failures,
		Complete:        report.Complete(),
		AssessedAt:      s.opts.Now().UTC(),
	}
	s.observe(ctx, result)

	if s.cache != nil {
		stored := *result
		stored.SurveyID = ""
		if cerr := s.cache.Set(ctx, key, &stored, s.opts.CacheTTL); cerr != nil {
			log.Warn("assessment cache write failed", map[string]interface{}{
				"error": apperrors.NewCacheUnavailableError(cerr).Error(),
			})
		}
	}

	log.Info("assessment finished", map[string]interface{}{
		"complete":         result.Complete,
		"failedCategories": result.FailedCategories(),
	})
	return result, s.strictErr(req, result)
}

func (s *Service) record(req Request) (readiness.Record, error) {
	switch {
	case req.RawAnswers == nil && req.Answers == nil:
		return readiness.Record{}, apperrors.NewInvalidAnswersError("no answers supplied")
	case req.RawAnswers != nil && req.Answers != nil:
		return readiness.Record{}, apperrors.NewInvalidAnswersError("supply either rawAnswers or answers, not both")
	}

	if req.Answers != nil {
		doc := make(map[string]interface{}, len(req.Answers))
		for k, v := range req.Answers {
			doc[k] = v
		}
		if err := s.validate(doc, s.answers); err != nil {
			return readiness.Record{}, err
		}
		return readiness.FromAnswers(req.Answers), nil
	}

	doc := make([]interface{}, len(req.RawAnswers))
	for i, v := range req.RawAnswers {
		doc[i] = v
	}
	if err := s.validate(doc, s.raw); err != nil {
		return readiness.Record{}, err
	}
	return readiness.Extract(req.RawAnswers, s.schedule), nil
}

func (s *Service) validate(doc interface{}, schema validation.JSONSchema) error {
	res, err := validation.Validate(doc, schema)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !res.Valid {
		e := apperrors.NewInvalidAnswersError(strings.Join(res.GetErrorMessages(), "; "))
		return e.WithMetadata("validationErrors", res.Errors)
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, key string, log logger.Logger) *Result {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("assessment cache read failed", map[string]interface{}{
			"error": apperrors.NewCacheUnavailableError(err).Error(),
		})
		return nil
	}
	return cached
}

func (s *Service) strictErr(req Request, r *Result) error {
	if r.Complete || !(s.opts.Strict || req.Strict) {
		return nil
	}
	return apperrors.NewCategoryScoringFailedError(r.FailedCategories(), s.reportErr(r)).
		WithMetadata("failures", r.FailureErrors())
}

func (s *Service) reportErr(r *Result) error {
	rep := readiness.Report{Scores: r.Scores, Failures: r.Failures}
	return rep.Err()
}

func (s *Service) observe(ctx context.Context, r *Result) {
	for c, v := range r.Scores {
		metrics.CategoryScore.WithLabelValues(string(c)).Observe(v)
	}
	for c, f := range r.Failures {
		metrics.CategoryFailures.WithLabelValues(string(c), f.Kind).Inc()
	}
	if r.Complete {
		s.count(ctx, OutcomeComplete)
	} else {
		s.count(ctx, OutcomePartial)
	}
}

func (s *Service) count(ctx context.Context, outcome string) {
	metrics.AssessmentsTotal.WithLabelValues(outcome).Inc()
	s.obs.RecordAssessment(ctx, outcome)
}

// inputHash identifies a record under the current schedule and policy.
// Positional and keyed inputs with the same answers hash alike.
func (s *Service) inputHash(r readiness.Record) string {
	answers, _ := json.Marshal(r.Answers())
	h := sha256.New()
	h.Write([]byte(s.fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(s.schedule.Version))
	h.Write([]byte{0})
	h.Write(answers)
	return hex.EncodeToString(h.Sum(nil))
}

func policyFingerprint(p readiness.Policy) string {
	data, _ := json.Marshal(p)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
