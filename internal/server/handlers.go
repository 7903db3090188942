package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mistql-lang/mistql-go/internal/logging"
)

type queryRequest struct {
	Query string      `json:"query"`
	Data  interface{} `json:"data"`
}

type queryResponse struct {
	Result interface{} `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// handleQuery evaluates one query against one data document, recording the
// attempt in the cache and audit log regardless of outcome.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	ctx := r.Context()
	clientID := ClientID(ctx)
	started := time.Now()

	if s.cache != nil {
		s.cache.RecordHit(ctx, req.Query)
	}

	result, err := s.instance.Query(req.Query, req.Data)
	elapsed := time.Since(started)

	if s.audit != nil {
		rec := AuditRecord{
			ID:          uuid.NewString(),
			ClientID:    clientID,
			Query:       req.Query,
			Succeeded:   err == nil,
			Duration:    elapsed,
			EvaluatedAt: started,
		}
		if err != nil {
			rec.Error = err.Error()
		}
		if auditErr := s.audit.Record(ctx, rec); auditErr != nil {
			logging.Get().Warnw("failed to record query audit entry", "error", auditErr)
		}
	}

	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Result: result})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
