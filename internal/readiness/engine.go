package readiness

import (
	"errors"
	"fmt"
	"sync"
)

// Scorer computes one category score from a record.
type Scorer func(r Record, p *Policy) (float64, error)

// Scores maps each category to its normalized score.
type Scores map[Category]float64

// Failure describes why a category could not be scored.
type Failure struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Report is the outcome of one assessment. Every category appears in
// exactly one of Scores or Failures.
type Report struct {
	Scores   Scores                `json:"scores"`
	Failures map[Category]*Failure `json:"failures,omitempty"`
}

// Complete reports whether all seven categories were scored.
func (r *Report) Complete() bool {
	return len(r.Failures) == 0
}

// Err joins the category failures into one error, or returns nil.
func (r *Report) Err() error {
	if r.Complete() {
		return nil
	}
	var errs []error
	for _, c := range Categories() {
		if f, ok := r.Failures[c]; ok {
			errs = append(errs, fmt.Errorf("%s: %s", c, f.Message))
		}
	}
	return errors.Join(errs...)
}

// Engine evaluates the seven category scorers under one policy.
type Engine struct {
	policy  Policy
	scorers map[Category]Scorer
}

// NewEngine validates p and returns an engine bound to it.
func NewEngine(p Policy) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring policy: %w", err)
	}
	return &Engine{
		policy: p,
		scorers: map[Category]Scorer{
			Leadership:   scoreLeadership,
			Fundings:     scoreFundings,
			Capabilities: scoreCapabilities,
			Openness:     scoreOpenness,
			Legal:        scoreLegal,
			Society:      scoreSociety,
			Impact:       scoreImpact,
		},
	}, nil
}

// Policy returns a copy of the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Score runs the scorer of a single category.
func (e *Engine) Score(c Category, r Record) (float64, error) {
	s, ok := e.scorers[c]
	if !ok {
		return 0, fmt.Errorf("unknown category %q", c)
	}
	return s(r, &e.policy)
}

// Assess scores every category concurrently. A failing category is recorded
// in the report and does not stop the others.
func (e *Engine) Assess(r Record) *Report {
	categories := Categories()
	scores := make([]float64, len(categories))
	errs := make([]error, len(categories))

	var wg sync.WaitGroup
	for i, c := range categories {
		wg.Add(1)
		go func(i int, c Category) {
			defer wg.Done()
			scores[i], errs[i] = e.Score(c, r)
		}(i, c)
	}
	wg.Wait()

	report := &Report{Scores: make(Scores, len(categories))}
	for i, c := range categories {
		if errs[i] != nil {
			if report.Failures == nil {
				report.Failures = make(map[Category]*Failure)
			}
			report.Failures[c] = newFailure(errs[i])
			continue
		}
		report.Scores[c] = scores[i]
	}
	return report
}

// AssessAnswers extracts raw positional answers with s and assesses them.
func (e *Engine) AssessAnswers(raw []string, s Schedule) *Report {
	return e.Assess(Extract(raw, s))
}

func newFailure(err error) *Failure {
	var fe fieldError
	if errors.As(err, &fe) {
		f := &Failure{Kind: fe.Kind(), Field: fe.FieldName(), Message: err.Error()}
		var pe *ParseError
		if errors.As(err, &pe) {
			f.Value = pe.Value
		}
		return f
	}
	return &Failure{Kind: "INTERNAL_ERROR", Message: err.Error()}
}
