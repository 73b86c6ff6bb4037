package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/infinity-soul/risk-cli/internal/model"
	"github.com/infinity-soul/risk-cli/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodePayload(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, model.Invalid("body", "malformed JSON payload")
	}
	return payload, nil
}

type batchRequest struct {
	Payloads      []map[string]any `json:"payloads"`
	FlagThreshold float64          `json:"flag_threshold,omitempty"`
}

func decodeBatch(r *http.Request) (*batchRequest, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var req batchRequest
	if err := dec.Decode(&req); err != nil {
		return nil, model.Invalid("body", "malformed JSON payload")
	}
	if len(req.Payloads) == 0 {
		return nil, model.Invalid("payloads", "must not be empty")
	}
	return &req, nil
}

// handleAnalyze analyzes a single client payload. When a store is
// configured the result is persisted and its assessment id returned.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r)
	if err != nil {
		writeError(w, err)
		return
	}

	analysis, err := s.engine.Analyze(payload)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{
		"profile": analysis.Profile,
		"vector":  analysis.Vector,
		"premium": analysis.Premium,
	}

	if s.store != nil {
		a := model.Assessment{
			ID:        uuid.New().String(),
			Vertical:  s.engine.Vertical(),
			Profile:   analysis.Profile,
			Vector:    analysis.Vector,
			Premium:   analysis.Premium,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.SaveAssessment(r.Context(), a); err != nil {
			writeError(w, err)
			return
		}
		resp["assessment_id"] = a.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBatch(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.engine.AnalyzeBatch(req.Payloads)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCampusCohort(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBatch(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.engine.AnalyzeCampusCohort(req.Payloads, req.FlagThreshold)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBatch(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.engine.AnalyzeInsurancePortfolio(req.Payloads)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domain string `json:"domain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.Invalid("body", "malformed JSON payload"))
		return
	}
	if req.Domain == "" {
		writeError(w, model.Invalid("domain", "is required"))
		return
	}

	report, err := s.auditor.Run(r.Context(), req.Domain)
	if err != nil {
		writeError(w, model.Invalid("domain", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.AssessmentFilter{Vertical: q.Get("vertical")}

	if v := q.Get("min_risk"); v != "" {
		minRisk, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, model.Invalid("min_risk", "must be a number"))
			return
		}
		filter.MinRisk = minRisk
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, model.Invalid("limit", "must be an integer"))
			return
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, model.Invalid("offset", "must be an integer"))
			return
		}
		filter.Offset = offset
	}

	list, err := s.store.ListAssessments(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []model.Assessment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": list})
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.store.GetAssessment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
