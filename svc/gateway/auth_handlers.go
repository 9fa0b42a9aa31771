package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pardaaf/backoffice/pkg/catalog"
	"github.com/pardaaf/backoffice/pkg/tenantctx"
	"github.com/pardaaf/backoffice/pkg/token"
)

type loginRequest struct {
	Tenant   string `json:"tenant"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin is the one route that reads a tenant name from the request.
// The codename is resolved through the catalog before any credentials are
// checked, so user input never becomes a pool key.
func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid json body", ErrBadRequest))
		return
	}
	if req.Tenant == "" || req.Username == "" || req.Password == "" {
		s.writeError(w, r, fmt.Errorf("%w: tenant, username and password are required", ErrBadRequest))
		return
	}

	gallery, err := s.catalog.Resolve(r.Context(), req.Tenant)
	if errors.Is(err, catalog.ErrGalleryNotFound) {
		s.writeError(w, r, ErrUnauthenticated)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := tenantctx.WithDatabase(r.Context(), gallery.DBName)

	var (
		userID       int64
		passwordHash string
		level        int
	)
	err = s.queryRow(ctx,
		`SELECT id, password_hash, level FROM users WHERE username = $1 AND active`,
		[]any{req.Username}, &userID, &passwordHash, &level)
	if errors.Is(err, pgx.ErrNoRows) {
		s.writeError(w, r, ErrUnauthenticated)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
		s.writeError(w, r, ErrUnauthenticated)
		return
	}

	pair, err := s.tokens.Issue(token.Principal{
		UserID:   strconv.FormatInt(userID, 10),
		Username: req.Username,
		Level:    level,
		Tenant:   gallery.Codename,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// handleRefreshToken mints a fresh pair from a valid refresh credential.
// The user's current level is reloaded from the tenant database, so a
// demotion or promotion takes effect on the next refresh.
func (s *Service) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		s.writeError(w, r, fmt.Errorf("%w: refreshToken is required", ErrBadRequest))
		return
	}

	principal, err := s.tokens.Verify(req.RefreshToken, 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	gallery, err := s.resolveTenant(r.Context(), principal.Tenant)
	if errors.Is(err, catalog.ErrGalleryNotFound) || errors.Is(err, catalog.ErrInvalidCodename) {
		s.writeError(w, r, ErrUnauthenticated)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := tenantctx.WithDatabase(r.Context(), gallery.DBName)

	var (
		username string
		level    int
	)
	err = s.queryRow(ctx,
		`SELECT username, level FROM users WHERE id = $1 AND active`,
		[]any{principal.UserID}, &username, &level)
	if errors.Is(err, pgx.ErrNoRows) {
		s.writeError(w, r, ErrUnauthenticated)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	pair, err := s.tokens.Issue(token.Principal{
		UserID:   principal.UserID,
		Username: username,
		Level:    level,
		Tenant:   gallery.Codename,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pair)
}

func (s *Service) handleIsTokenValid(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]bool{"result": true})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (s *Service) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := token.PrincipalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, ErrUnauthenticated)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
		s.writeError(w, r, fmt.Errorf("%w: oldPassword and newPassword are required", ErrBadRequest))
		return
	}

	var passwordHash string
	err := s.queryRow(r.Context(),
		`SELECT password_hash FROM users WHERE id = $1`,
		[]any{principal.UserID}, &passwordHash)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.OldPassword)) != nil {
		s.writeError(w, r, fmt.Errorf("%w: old password does not match", ErrBadRequest))
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.exec(r.Context(),
		`UPDATE users SET password_hash = $1 WHERE id = $2`,
		string(newHash), principal.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"result": true})
}
