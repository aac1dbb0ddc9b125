package httpapi

import (
	"context"
	"net/http"

	"github.com/bushiwarriror44/redirect/internal/auth"
)

const sessionCookie = "admin_session"

type ctxKey int

const sessionCtxKey ctxKey = 0

// session carries the verified identity plus the raw token the CSRF check
// needs. Request scoped, nothing global.
type session struct {
	identity auth.Identity
	token    string
}

// withIdentity turns a valid session cookie into a request-scoped session
// value. It never rejects; the guards below decide what anonymity means.
func (rt *Router) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err == nil {
			if id, verr := rt.sessions.Verify(cookie.Value); verr == nil {
				ctx := context.WithValue(r.Context(), sessionCtxKey, session{identity: id, token: cookie.Value})
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(r *http.Request) (session, bool) {
	s, ok := r.Context().Value(sessionCtxKey).(session)
	return s, ok
}

// requireAdminAPI guards JSON endpoints: anonymous callers get 401.
func (rt *Router) requireAdminAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessionFrom(r); !ok {
			rt.fail(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdminPage guards HTML pages: anonymous callers land on the login
// page instead of a bare status code.
func (rt *Router) requireAdminPage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessionFrom(r); !ok {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireCSRF checks X-CSRF-Token against the session on every mutating
// admin call.
func (rt *Router) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFrom(r)
		if !ok || !rt.sessions.VerifyCSRF(s.token, r.Header.Get("X-CSRF-Token")) {
			rt.seclog.Warn().Str("ip", r.RemoteAddr).Str("path", r.URL.Path).Msg("csrf token mismatch")
			rt.fail(w, http.StatusForbidden, "Invalid or missing CSRF token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
