package auth

import (
	"net/http"
	"strings"

	"github.com/practicheck/practicheck/internal/platform/httpx"
	"github.com/practicheck/practicheck/internal/shared"
)

// Middleware resolves a bearer token into a request-scoped identity.
// Handlers behind it can rely on shared.IdentityFromContext returning a live
// account.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, r, shared.ErrUnauthorized)
			return
		}
		identity, err := s.Resolve(r.Context(), token)
		if err != nil {
			httpx.RespondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
