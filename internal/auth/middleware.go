package auth

import (
	"net/http"
	"strings"

	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/fdg312/cut-sprint/internal/userctx"
)

// Middleware кладёт user_id из Bearer-токена в контекст запроса.
type Middleware struct {
	config  *config.Config
	service *Service
}

func NewMiddleware(cfg *config.Config, service *Service) *Middleware {
	return &Middleware{config: cfg, service: service}
}

// Wrap выбирает RequireAuth или OptionalAuth по AUTH_REQUIRED.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m.config.AuthRequired {
		return m.RequireAuth(next)
	}
	return m.OptionalAuth(next)
}

// RequireAuth rejects every non-public request without a valid token.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return m.guard(next, true)
}

// OptionalAuth validates the Bearer token only when it is provided.
// Without a token the request acts as userctx.DefaultUserID.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return m.guard(next, false)
}

func (m *Middleware) guard(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := strings.TrimSpace(r.Header.Get("Authorization"))
		userID := userctx.DefaultUserID
		switch {
		case header != "":
			id, err := m.userFromHeader(header)
			if err != nil {
				writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}
			userID = id
		case required:
			writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(userctx.WithUserID(r.Context(), userID)))
	})
}

func (m *Middleware) userFromHeader(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	return m.service.VerifyJWT(strings.TrimSpace(token))
}

func isPublicPath(path string) bool {
	return path == "/healthz" || strings.HasPrefix(path, "/v1/auth/")
}
