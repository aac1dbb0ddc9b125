package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bushiwarriror44/redirect/internal/store"
)

const maxContentBody = 1 << 20 // 1MB

func (rt *Router) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(r)
	if !ok {
		rt.fail(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, map[string]string{"csrf_token": rt.sessions.CSRFToken(s.token)}, http.StatusOK)
}

func (rt *Router) handlePageContent(w http.ResponseWriter, r *http.Request) {
	sections, err := rt.store.PageSections(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		rt.fail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	out := make(map[string]json.RawMessage, len(sections))
	for _, s := range sections {
		if json.Valid([]byte(s.Content)) {
			out[s.SectionName] = json.RawMessage(s.Content)
		} else {
			out[s.SectionName] = json.RawMessage("{}")
		}
	}
	writeJSON(w, out, http.StatusOK)
}

func (rt *Router) handleSectionContent(w http.ResponseWriter, r *http.Request) {
	section, err := rt.store.GetPageSection(r.Context(), chi.URLParam(r, "page"), chi.URLParam(r, "section"))
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, map[string]string{"error": "Content not found"}, http.StatusNotFound)
		return
	}
	if err != nil {
		rt.fail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !json.Valid([]byte(section.Content)) {
		writeJSON(w, map[string]string{"error": "Invalid JSON"}, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(section.Content))
}

// handlePageHTML returns a page's raw html override, or null when the page
// has none. The "html" section must hold a JSON string to count.
func (rt *Router) handlePageHTML(w http.ResponseWriter, r *http.Request) {
	section, err := rt.store.GetPageSection(r.Context(), chi.URLParam(r, "page"), "html")
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		rt.fail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	var html *string
	if err == nil {
		var s string
		if json.Unmarshal([]byte(section.Content), &s) == nil {
			html = &s
		}
	}
	writeJSON(w, map[string]any{"html": html}, http.StatusOK)
}

func (rt *Router) handleUpsertSection(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxContentBody))
	if err != nil {
		rt.fail(w, http.StatusBadRequest, "Unable to read body")
		return
	}
	if !json.Valid(body) {
		rt.fail(w, http.StatusBadRequest, "Body must be valid JSON")
		return
	}
	page, section := chi.URLParam(r, "page"), chi.URLParam(r, "section")
	if err := rt.store.UpsertPageSection(r.Context(), page, section, string(body)); err != nil {
		rt.fail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	rt.seclog.Info().Str("page", page).Str("section", section).Str("ip", r.RemoteAddr).Msg("page content updated")
	writeJSON(w, map[string]any{"success": true}, http.StatusOK)
}
