package gateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pardaaf/backoffice/pkg/catalog"
	"github.com/pardaaf/backoffice/pkg/tenantctx"
	"github.com/pardaaf/backoffice/pkg/token"
)

// requireLevel verifies the bearer credential against the route's level,
// resolves the principal's tenant through the catalog and binds the tenant
// database to the request context. The binding dies with the request
// context, so it can never leak into another request.
func (s *Service) requireLevel(level int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				s.writeError(w, r, ErrUnauthenticated)
				return
			}

			principal, err := s.tokens.Verify(raw, level)
			if err != nil {
				s.writeError(w, r, err)
				return
			}

			// The tenant always comes from the verified credential, never
			// from the request body or URL. Only a tenant the catalog does
			// not know invalidates the credential; a catalog outage must
			// surface as unavailability, not as a bad token.
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
			ctx = token.WithPrincipal(ctx, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
