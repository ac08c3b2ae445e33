package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/weekender-app/weekender/internal/apperr"
)

// handlePhoto resolves a provider photo token server-side and redirects the
// client to the actual image. This is the only path by which a token turns
// into something fetchable.
func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		s.writeError(w, apperr.NotFound("photo token not found"))
		return
	}
	url, err := s.resolver.Resolve(r.Context(), token)
	if err != nil {
		s.writeError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
