package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pardaaf/backoffice/pkg/token"
)

type addPrintJobRequest struct {
	FileName string `json:"fileName"`
	Payload  []byte `json:"payload"` // base64 on the wire
}

func (s *Service) handleAddPrintJob(w http.ResponseWriter, r *http.Request) {
	var req addPrintJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid json body", ErrBadRequest))
		return
	}

	principal, _ := token.PrincipalFromContext(r.Context())
	id, err := s.queue.Enqueue(r.Context(), principal.Tenant, req.FileName, req.Payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *Service) handleGetPrintJobs(w http.ResponseWriter, r *http.Request) {
	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			s.writeError(w, r, fmt.Errorf("%w: since must be a non-negative integer", ErrBadRequest))
			return
		}
		since = parsed
	}

	principal, _ := token.PrincipalFromContext(r.Context())
	jobs, err := s.queue.Poll(r.Context(), principal.Tenant, since)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

type markPrintedRequest struct {
	JobID int64 `json:"jobId"`
}

func (s *Service) handleMarkPrinted(w http.ResponseWriter, r *http.Request) {
	var req markPrintedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID <= 0 {
		s.writeError(w, r, fmt.Errorf("%w: jobId is required", ErrBadRequest))
		return
	}

	principal, _ := token.PrincipalFromContext(r.Context())
	if err := s.queue.Ack(r.Context(), principal.Tenant, req.JobID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"result": true})
}
