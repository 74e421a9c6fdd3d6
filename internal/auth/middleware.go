package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/innometrics/innometrics-backend/internal/api/respond"
	"github.com/innometrics/innometrics-backend/internal/model"
)

// tokenPrefix is the fixed header convention clients use:
// Authorization: Token <credential>.
const tokenPrefix = "Token "

// Middleware resolves the Authorization header on every protected request
// and injects the user into the request context. Handlers pass the
// resolved identity down explicitly; nothing below this layer reads
// ambient state.
type Middleware struct {
	resolver *Resolver
}

func NewMiddleware(resolver *Resolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// Wrap wraps an http.Handler with bearer-token authentication.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), tokenPrefix)
		u, err := m.resolver.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, model.ErrUnauthenticated) {
				respond.WriteError(w, http.StatusUnauthorized, "Failed to authenticate")
				return
			}
			respond.WriteInternalError(w, "Something bad happened")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}
