package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"readiness-workers/internal/assessment"
	apperrors "readiness-workers/internal/common/errors"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code     string                 `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type assessmentResponse struct {
	*assessment.Result
	Error *errorBody `json:"error,omitempty"`
}

type checkStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) createAssessment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req assessment.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.NewInvalidInputError(fmt.Sprintf("decode request: %v", err)))
		return
	}

	result, err := s.assessor.Assess(r.Context(), req)
	if err == nil {
		writeJSON(w, http.StatusOK, assessmentResponse{Result: result})
		return
	}

	se := apperrors.AsStandardError(err)
	switch se.Code {
	case apperrors.ErrCodeCategoryScoringFailed:
		// Strict mode: the partial result still goes back to the caller.
		writeJSON(w, http.StatusUnprocessableEntity, assessmentResponse{Result: result, Error: toErrorBody(se)})
	case apperrors.ErrCodeInvalidAnswers, apperrors.ErrCodeInvalidInput:
		writeError(w, http.StatusBadRequest, se)
	default:
		s.logger.Error("assessment failed", map[string]interface{}{
			"error":     err,
			"requestId": requestID(r),
		})
		writeError(w, http.StatusInternalServerError, se)
	}
}

func (s *Server) schedule(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.assessor.Schedule())
}

func (s *Server) policy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.assessor.Policy())
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.opts.Version,
	})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.opts.Checks))
	for name := range s.opts.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make([]checkStatus, 0, len(names))
	for _, name := range names {
		cs := checkStatus{Name: name, Status: "ok"}
		if err := s.opts.Checks[name](ctx); err != nil {
			cs.Status = "unavailable"
			cs.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
		checks = append(checks, cs)
	}

	overall := "ready"
	if status != http.StatusOK {
		overall = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": overall,
		"checks": checks,
	})
}

func toErrorBody(se *apperrors.StandardError) *errorBody {
	return &errorBody{
		Code:     string(se.Code),
		Message:  se.Message,
		Details:  se.Details,
		Metadata: se.Metadata,
	}
}

// writeJSON encodes v before touching the response so an unencodable
// value becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body := toErrorBody(apperrors.NewInternalError(fmt.Errorf("encode response: %w", err)))
		data, _ = json.Marshal(map[string]*errorBody{"error": body})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]*errorBody{"error": toErrorBody(apperrors.AsStandardError(err))})
}
