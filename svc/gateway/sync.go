package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

type checkSyncRequest struct {
	LastSync time.Time `json:"lastSync"`
}

// handleCheckSync returns every row changed since the client's last sync
// point. The desktop client calls this on reconnect.
func (s *Service) handleCheckSync(w http.ResponseWriter, r *http.Request) {
	var req checkSyncRequest
	// A missing or empty body means "give me everything".
	_ = json.NewDecoder(r.Body).Decode(&req)

	rows, err := s.queryMaps(r.Context(), `SELECT * FROM check_sync($1)`, req.LastSync)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Service) handleGetLists(w http.ResponseWriter, r *http.Request) {
	rows, err := s.queryMaps(r.Context(), `SELECT * FROM get_lists()`)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Service) handleGetInventoryLists(w http.ResponseWriter, r *http.Request) {
	rows, err := s.queryMaps(r.Context(), `SELECT * FROM get_inventory_lists()`)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}
