package server

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/YuminosukeSato/pmpo/core/parallel"
	"github.com/YuminosukeSato/pmpo/pkg/log"
)

const (
	maxBodyBytes   = 10 << 20
	scoreThreshold = 512
)

// ScoreRequest is the body of POST /score. A null value counts as missing.
type ScoreRequest struct {
	Entities []map[string]*float64 `json:"entities"`
}

// ScoreResponse is returned by POST /score, one score per entity in order.
type ScoreResponse struct {
	Model  string    `json:"model"`
	Scores []float64 `json:"scores"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string   `json:"status"`
	Model       string   `json:"model"`
	Descriptors []string `json:"descriptors"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Model:       s.model.Name(),
		Descriptors: s.model.Descriptors(),
	})
}

func (s *Server) document(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.model.Document())
}

func (s *Server) score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Entities) == 0 {
		writeError(w, r, http.StatusBadRequest, "entities must not be empty")
		return
	}

	scores := make([]float64, len(req.Entities))
	parallel.ParallelizeWithThreshold(len(req.Entities), scoreThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			values := make(map[string]float64, len(req.Entities[i]))
			for k, v := range req.Entities[i] {
				if v == nil {
					values[k] = math.NaN()
					continue
				}
				values[k] = *v
			}
			scores[i] = s.model.Score(values)
		}
	})
	s.metrics.ScoredEntities.Add(float64(len(scores)))
	s.logger.Debug("Entities scored", log.RequestIDKey, requestID(r.Context()), log.ScoredKey, len(scores))

	writeJSON(w, http.StatusOK, ScoreResponse{Model: s.model.Name(), Scores: scores})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg, RequestID: requestID(r.Context())})
}
