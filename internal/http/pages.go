package httpapi

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/bushiwarriror44/redirect/internal/auth"
	"github.com/bushiwarriror44/redirect/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func (rt *Router) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionFrom(r); ok {
		http.Redirect(w, r, "/admin/panel", http.StatusSeeOther)
		return
	}
	rt.renderLogin(w, "")
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionFrom(r); ok {
		http.Redirect(w, r, "/admin/panel", http.StatusSeeOther)
		return
	}

	password := r.PostFormValue("password")
	if err := auth.VerifyPassword(password, rt.passwordHash); err != nil {
		metrics.LoginFailures.Inc()
		rt.seclog.Warn().Str("ip", r.RemoteAddr).Msg("failed admin login attempt")
		rt.renderLogin(w, "Invalid password")
		return
	}

	token, err := rt.sessions.Issue()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(rt.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   rt.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	rt.seclog.Info().Str("ip", r.RemoteAddr).Msg("successful admin login")
	http.Redirect(w, r, "/admin/panel", http.StatusSeeOther)
}

func (rt *Router) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   rt.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (rt *Router) handleAdminPanel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	if err := templates.ExecuteTemplate(w, "admin_panel.html", nil); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (rt *Router) renderLogin(w http.ResponseWriter, errMsg string) {
	if err := templates.ExecuteTemplate(w, "admin_login.html", struct{ Error string }{Error: errMsg}); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
