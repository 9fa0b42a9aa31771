package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Bill workflow statuses.
const (
	billCut        = "cut"
	billPending    = "pending"
	billWithTailor = "with_tailor"
	billReady      = "ready"
	billDelivered  = "delivered"
)

var validBillStatuses = map[string]bool{
	billCut:        true,
	billPending:    true,
	billWithTailor: true,
	billReady:      true,
	billDelivered:  true,
}

type updateBillStatusRequest struct {
	BillCode string `json:"billCode"`
	Status   string `json:"status"`
}

// handleUpdateBillStatus moves a bill through the workflow. A transition
// into ready fires the notify-me push for every chat registered on the
// bill; push failure never fails the status update itself.
func (s *Service) handleUpdateBillStatus(w http.ResponseWriter, r *http.Request) {
	var req updateBillStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BillCode == "" {
		s.writeError(w, r, fmt.Errorf("%w: billCode and status are required", ErrBadRequest))
		return
	}
	if !validBillStatuses[req.Status] {
		s.writeError(w, r, fmt.Errorf("%w: unknown bill status %q", ErrBadRequest, req.Status))
		return
	}

	var previous string
	err := s.queryRow(r.Context(),
		`SELECT update_bill_status($1, $2)`,
		[]any{req.BillCode, req.Status}, &previous)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.notifier != nil && req.Status == billReady && wasAwaitingReady(previous) {
		if err := s.notifier.NotifyBillReady(r.Context(), req.BillCode); err != nil {
			s.logger.ErrorContext(r.Context(), "bill ready push failed",
				slog.String("bill_code", req.BillCode),
				slog.String("error", err.Error()))
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"result": true, "previous": previous})
}

func wasAwaitingReady(status string) bool {
	return status == billCut || status == billPending || status == billWithTailor
}

type updateBillTailorRequest struct {
	BillCode string `json:"billCode"`
	Tailor   string `json:"tailor"`
}

func (s *Service) handleUpdateBillTailor(w http.ResponseWriter, r *http.Request) {
	var req updateBillTailorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BillCode == "" {
		s.writeError(w, r, fmt.Errorf("%w: billCode is required", ErrBadRequest))
		return
	}

	if err := s.exec(r.Context(), `SELECT update_bill_tailor($1, $2)`, req.BillCode, req.Tailor); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"result": true})
}

type addPaymentBillRequest struct {
	BillCode string  `json:"billCode"`
	Amount   float64 `json:"amount"`
	Note     string  `json:"note"`
}

func (s *Service) handleAddPaymentBill(w http.ResponseWriter, r *http.Request) {
	var req addPaymentBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BillCode == "" || req.Amount <= 0 {
		s.writeError(w, r, fmt.Errorf("%w: billCode and a positive amount are required", ErrBadRequest))
		return
	}

	if err := s.exec(r.Context(),
		`SELECT add_payment_bill($1, $2, $3)`, req.BillCode, req.Amount, req.Note); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"result": true})
}

type addPaymentRequest struct {
	EntityCode string  `json:"entityCode"`
	Amount     float64 `json:"amount"`
	Note       string  `json:"note"`
}

func (s *Service) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var req addPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EntityCode == "" || req.Amount == 0 {
		s.writeError(w, r, fmt.Errorf("%w: entityCode and a non-zero amount are required", ErrBadRequest))
		return
	}

	if err := s.exec(r.Context(),
		`SELECT add_payment($1, $2, $3)`, req.EntityCode, req.Amount, req.Note); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"result": true})
}

func (s *Service) handlePaymentHistory(w http.ResponseWriter, r *http.Request) {
	entityCode := r.URL.Query().Get("entity")
	if entityCode == "" {
		s.writeError(w, r, fmt.Errorf("%w: entity is required", ErrBadRequest))
		return
	}

	rows, err := s.queryMaps(r.Context(), `SELECT * FROM payment_history_get($1)`, entityCode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}
