package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/mailer"
	"github.com/pardaaf/backoffice/pkg/tenantctx"
)

// The public website routes bind a fixed sales tenant; the codename is
// resolved through the catalog, so the pool-key invariant holds even for
// unauthenticated traffic.

// handleSubmitRequest records a website contact-form submission and
// redirects the visitor to the thanks page.
func (s *Service) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, phone, message := q.Get("name"), q.Get("phone"), q.Get("message")
	if name == "" || phone == "" {
		s.writeError(w, r, fmt.Errorf("%w: name and phone are required", ErrBadRequest))
		return
	}

	gallery, err := s.resolveTenant(r.Context(), s.cfg.SalesTenant)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := tenantctx.WithDatabase(r.Context(), gallery.DBName)

	if err := s.exec(ctx, `SELECT add_website_request($1, $2, $3)`, name, phone, message); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, s.cfg.WebsiteThanks, http.StatusSeeOther)
}

type onlineOrderRequest struct {
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	Address string          `json:"address"`
	Items   json.RawMessage `json:"items"`
}

func (s *Service) handleAddOnlineOrder(w http.ResponseWriter, r *http.Request) {
	var req onlineOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Phone == "" {
		s.writeError(w, r, fmt.Errorf("%w: name and phone are required", ErrBadRequest))
		return
	}

	gallery, err := s.resolveTenant(r.Context(), s.cfg.SalesTenant)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := tenantctx.WithDatabase(r.Context(), gallery.DBName)

	if err := s.exec(ctx,
		`SELECT add_online_order($1, $2, $3, $4)`,
		req.Name, req.Phone, req.Address, string(req.Items)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"result": true})
}

func (s *Service) handleLatestRates(w http.ResponseWriter, r *http.Request) {
	rates, err := s.catalog.LatestRates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rates)
}

// Newsletter state lives in the main database; subscriptions are not
// tenant-scoped.
func (s *Service) handleSubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if _, err := mail.ParseAddress(email); err != nil {
		s.writeHTML(w, http.StatusBadRequest, "Please provide a valid email address.")
		return
	}

	ctx := tenantctx.WithDatabase(r.Context(), dbpool.MainDatabase)
	confirmToken := uuid.NewString()

	err := s.exec(ctx,
		`INSERT INTO newsletter_subscribers (email, confirm_token, confirmed, created_at)
		 VALUES ($1, $2, false, now())
		 ON CONFLICT (email) DO UPDATE SET confirm_token = EXCLUDED.confirm_token`,
		email, confirmToken)
	if err != nil {
		s.writeHTML(w, http.StatusServiceUnavailable, "Subscription is temporarily unavailable. Please try again later.")
		return
	}

	if s.mail != nil {
		link := fmt.Sprintf("%s/confirm-email-newsletter?token=%s", s.cfg.PublicBaseURL, confirmToken)
		params := mailer.SendEmailParams{
			SendTo:   email,
			Subject:  "Confirm your pardaaf newsletter subscription",
			BodyHTML: fmt.Sprintf(`<p>Click <a href="%s">here</a> to confirm your subscription.</p>`, link),
		}
		if err := s.mail.SendEmail(ctx, params); err != nil {
			s.logger.ErrorContext(ctx, "newsletter confirm email failed",
				slog.String("error", err.Error()))
		}
	}

	s.writeHTML(w, http.StatusOK, "Almost done. Check your inbox for a confirmation link.")
}

func (s *Service) handleConfirmNewsletter(w http.ResponseWriter, r *http.Request) {
	confirmToken := r.URL.Query().Get("token")
	if confirmToken == "" {
		s.writeHTML(w, http.StatusBadRequest, "Missing confirmation token.")
		return
	}

	ctx := tenantctx.WithDatabase(r.Context(), dbpool.MainDatabase)
	var email string
	err := s.queryRow(ctx,
		`UPDATE newsletter_subscribers SET confirmed = true, confirm_token = NULL
		  WHERE confirm_token = $1 RETURNING email`,
		[]any{confirmToken}, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		s.writeHTML(w, http.StatusNotFound, "This confirmation link is invalid or already used.")
		return
	}
	if err != nil {
		s.writeHTML(w, http.StatusServiceUnavailable, "Confirmation is temporarily unavailable. Please try again later.")
		return
	}
	s.writeHTML(w, http.StatusOK, "Subscription confirmed. Welcome aboard!")
}

func (s *Service) handleUnsubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		s.writeHTML(w, http.StatusBadRequest, "Missing email address.")
		return
	}

	ctx := tenantctx.WithDatabase(r.Context(), dbpool.MainDatabase)
	if err := s.exec(ctx, `DELETE FROM newsletter_subscribers WHERE email = $1`, email); err != nil {
		s.writeHTML(w, http.StatusServiceUnavailable, "Unsubscribe is temporarily unavailable. Please try again later.")
		return
	}
	s.writeHTML(w, http.StatusOK, "You have been unsubscribed.")
}

func (s *Service) writeHTML(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "<!DOCTYPE html><html><body><p>%s</p></body></html>", message)
}
