package identity

import (
	"log/slog"
	"net/http"

	"github.com/rolldeck/rolldeck/internal/platform/httpx"
)

// Middleware adapts the Verifier to the HTTP boundary. The credential is
// read from a cookie only, never from a header or query parameter.
type Middleware struct {
	Verifier   *Verifier
	CookieName string
	Logger     *slog.Logger
}

// Authenticate resolves the access token cookie to one of three outcomes:
// no cookie lets the request continue anonymously, a bad token aborts with
// 401 before any handler runs, and a valid token attaches the principal to
// the request context.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw string
		if cookie, err := r.Cookie(m.CookieName); err == nil {
			raw = cookie.Value
		}

		result := m.Verifier.Verify(raw)
		switch result.State {
		case StateAuthenticated:
			ctx := ContextWithPrincipal(r.Context(), result.Principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		case StateRejected:
			if m.Logger != nil {
				m.Logger.Warn("access token rejected",
					slog.String("reason", result.Reason),
					slog.String("path", r.URL.Path))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", result.Reason)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// RequireUser rejects requests that did not authenticate. Mount it on
// routes that must not be reachable anonymously.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
