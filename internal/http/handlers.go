package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bushiwarriror44/redirect/internal/core"
	"github.com/bushiwarriror44/redirect/internal/metrics"
	"github.com/bushiwarriror44/redirect/internal/store"
)

type redirectJSON struct {
	ID          int64   `json:"id"`
	Slug        string  `json:"slug"`
	TargetURL   string  `json:"target_url"`
	ClickCount  int64   `json:"click_count"`
	CreatedAt   *string `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
	RedirectURL string  `json:"redirect_url"`
}

type linkRequest struct {
	TargetURL string `json:"target_url"`
	Slug      string `json:"slug"`
}

func (rt *Router) handleList(w http.ResponseWriter, r *http.Request) {
	links, err := rt.svc.List(r.Context())
	if err != nil {
		rt.fail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	out := make([]redirectJSON, 0, len(links))
	for _, l := range links {
		out = append(out, rt.serialize(r, l))
	}
	writeJSON(w, map[string]any{"success": true, "redirects": out}, http.StatusOK)
}

func (rt *Router) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	link, err := rt.svc.Create(r.Context(), req.Slug, req.TargetURL)
	if err != nil {
		rt.failRegistry(w, r, err)
		return
	}

	metrics.LinksCreated.Inc()
	rt.seclog.Info().Str("slug", link.Slug).Str("ip", r.RemoteAddr).Msg("redirect created")
	writeJSON(w, map[string]any{"success": true, "redirect": rt.serialize(r, link)}, http.StatusCreated)
}

func (rt *Router) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		rt.fail(w, http.StatusNotFound, "Redirect not found")
		return
	}
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if core.NormalizeSlug(req.Slug) == "" {
		rt.fail(w, http.StatusBadRequest, "Slug cannot be empty")
		return
	}

	link, err := rt.svc.Update(r.Context(), id, req.Slug, req.TargetURL)
	if err != nil {
		rt.failRegistry(w, r, err)
		return
	}

	metrics.LinksUpdated.Inc()
	rt.seclog.Info().Int64("id", id).Str("slug", link.Slug).Str("ip", r.RemoteAddr).Msg("redirect updated")
	writeJSON(w, map[string]any{"success": true, "redirect": rt.serialize(r, link)}, http.StatusOK)
}

func (rt *Router) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		rt.fail(w, http.StatusNotFound, "Redirect not found")
		return
	}
	if err := rt.svc.Delete(r.Context(), id); err != nil {
		rt.failRegistry(w, r, err)
		return
	}

	metrics.LinksDeleted.Inc()
	rt.seclog.Info().Int64("id", id).Str("ip", r.RemoteAddr).Msg("redirect deleted")
	writeJSON(w, map[string]any{"success": true, "message": "Redirect deleted"}, http.StatusOK)
}

func (rt *Router) handleResolve(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	target, err := rt.svc.Resolve(r.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		metrics.RedirectMisses.Inc()
		http.Error(w, "Redirect not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	metrics.Redirects.Inc()
	http.Redirect(w, r, target, http.StatusFound)
}

// failRegistry maps registry errors to the documented status codes.
func (rt *Router) failRegistry(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidTargetURL):
		rt.fail(w, http.StatusBadRequest, "Provide a valid URL with http:// or https://")
	case errors.Is(err, core.ErrInvalidSlug):
		rt.fail(w, http.StatusBadRequest, "Slug may contain only A-Z, a-z, 0-9, - and _")
	case errors.Is(err, store.ErrSlugTaken):
		rt.fail(w, http.StatusConflict, "This slug already exists")
	case errors.Is(err, store.ErrNotFound):
		rt.fail(w, http.StatusNotFound, "Redirect not found")
	case errors.Is(err, core.ErrSlugSpaceExhausted):
		metrics.SlugExhaustion.Inc()
		rt.seclog.Error().Str("ip", r.RemoteAddr).Msg("slug generation exhausted retry bound")
		rt.fail(w, http.StatusInternalServerError, "Internal server error")
	default:
		rt.fail(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (rt *Router) serialize(r *http.Request, l store.RedirectLink) redirectJSON {
	return redirectJSON{
		ID:          l.ID,
		Slug:        l.Slug,
		TargetURL:   l.TargetURL,
		ClickCount:  l.ClickCount,
		CreatedAt:   isoTime(l.CreatedAt),
		UpdatedAt:   isoTime(l.UpdatedAt),
		RedirectURL: rt.baseURL(r) + "/r/" + l.Slug,
	}
}

func (rt *Router) baseURL(r *http.Request) string {
	if rt.cfg.BaseURL != "" {
		return strings.TrimRight(rt.cfg.BaseURL, "/")
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func isoTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func (rt *Router) fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, map[string]any{"success": false, "message": msg}, status)
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
