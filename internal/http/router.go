package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/bushiwarriror44/redirect/internal/auth"
	"github.com/bushiwarriror44/redirect/internal/config"
	"github.com/bushiwarriror44/redirect/internal/core"
	"github.com/bushiwarriror44/redirect/internal/metrics"
	"github.com/bushiwarriror44/redirect/internal/store"
)

type Router struct {
	cfg          config.Config
	svc          *core.Service
	store        store.Store
	sessions     *auth.Sessions
	passwordHash string
	seclog       zerolog.Logger
}

func NewRouter(cfg config.Config, svc *core.Service, st store.Store, sessions *auth.Sessions, passwordHash string) http.Handler {
	r := chi.NewRouter()
	// Logging middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", dur).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	// Browsers refuse credentialed responses from a wildcard origin, so
	// credentials are only offered once explicit origins are configured.
	allowCredentials := true
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowCredentials = false
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: allowCredentials,
	}))

	api := &Router{
		cfg:          cfg,
		svc:          svc,
		store:        st,
		sessions:     sessions,
		passwordHash: passwordHash,
		seclog:       log.With().Str("component", "security").Logger(),
	}

	r.Use(api.withIdentity)

	// Registered before the /admin/api subrouter so it inherits the
	// JSON-shaped 404.
	r.NotFound(api.handleNotFound)

	r.MethodFunc(http.MethodGet, "/healthz", api.handleHealth)
	r.MethodFunc(http.MethodGet, "/readyz", api.handleReady)

	// Metrics
	r.MethodFunc(http.MethodGet, "/metrics", metrics.Handler)

	// Public endpoints
	r.MethodFunc(http.MethodGet, "/r/{slug}", api.handleResolve)
	r.MethodFunc(http.MethodGet, "/api/csrf-token", api.handleCSRFToken)
	r.MethodFunc(http.MethodGet, "/api/page-content/{page}", api.handlePageContent)
	r.MethodFunc(http.MethodGet, "/api/page-content/{page}/{section}", api.handleSectionContent)
	r.MethodFunc(http.MethodGet, "/api/page-html/{page}", api.handlePageHTML)

	// Admin pages
	r.MethodFunc(http.MethodGet, "/admin", api.handleAdminRoot)
	r.MethodFunc(http.MethodGet, "/admin/", api.handleAdminRoot)
	r.MethodFunc(http.MethodGet, "/admin/login", api.handleLoginPage)
	r.MethodFunc(http.MethodPost, "/admin/login", api.handleLogin)
	r.MethodFunc(http.MethodGet, "/admin/logout", api.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(api.requireAdminPage)
		r.MethodFunc(http.MethodGet, "/admin/panel", api.handleAdminPanel)
	})

	// Admin API
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(api.requireAdminAPI)
		r.MethodFunc(http.MethodGet, "/redirects", api.handleList)
		r.Group(func(r chi.Router) {
			r.Use(api.requireCSRF)
			r.MethodFunc(http.MethodPost, "/redirects", api.handleCreate)
			r.MethodFunc(http.MethodPut, "/redirects/{id}", api.handleUpdate)
			r.MethodFunc(http.MethodDelete, "/redirects/{id}", api.handleDelete)
			r.MethodFunc(http.MethodPut, "/page-content/{page}/{section}", api.handleUpsertSection)
		})
	})

	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (rt *Router) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (rt *Router) handleAdminRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/panel", http.StatusSeeOther)
}

func (rt *Router) handleNotFound(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/admin/api/"):
		writeJSON(w, map[string]string{
			"error":   "Not Found",
			"message": "The requested resource was not found",
			"path":    r.URL.Path,
		}, http.StatusNotFound)
	case strings.HasPrefix(r.URL.Path, "/admin"):
		http.Redirect(w, r, "/admin/panel", http.StatusSeeOther)
	default:
		writeJSON(w, map[string]string{"error": "Not Found"}, http.StatusNotFound)
	}
}
