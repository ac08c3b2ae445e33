package httpapi

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/weekender-app/weekender/internal/apperr"
	"github.com/weekender-app/weekender/internal/plan"
)

var notesMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListPlans(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, plans)
}

type planPayload struct {
	Places []plan.Entry `json:"places"`
	Date   string       `json:"date"`
	Notes  string       `json:"notes"`
	Status string       `json:"status"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planPayload
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	p := plan.WeekendPlan{
		Entries:  req.Places,
		PlanDate: strings.TrimSpace(req.Date),
		Notes:    req.Notes,
		Status:   plan.StatusDraft,
	}
	if req.Status != "" {
		status, ok := plan.ParseStatus(req.Status)
		if !ok {
			s.writeError(w, apperr.ValidationField("status", "must be draft, confirmed, or completed"))
			return
		}
		p.Status = status
	}
	if p.PlanDate != "" {
		if _, err := time.Parse("2006-01-02", p.PlanDate); err != nil {
			s.writeError(w, apperr.ValidationField("date", "must be YYYY-MM-DD"))
			return
		}
	}
	if p.Entries == nil {
		p.Entries = []plan.Entry{}
	}

	created, err := s.store.CreatePlan(r.Context(), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 201, created)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, p)
}

type planPatch struct {
	Places *[]plan.Entry `json:"places"`
	Date   *string       `json:"date"`
	Notes  *string       `json:"notes"`
	Status *string       `json:"status"`
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var patch planPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if patch.Places != nil {
		p.Entries = *patch.Places
	}
	if patch.Date != nil {
		d := strings.TrimSpace(*patch.Date)
		if d != "" {
			if _, err := time.Parse("2006-01-02", d); err != nil {
				s.writeError(w, apperr.ValidationField("date", "must be YYYY-MM-DD"))
				return
			}
		}
		p.PlanDate = d
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	if patch.Status != nil {
		status, ok := plan.ParseStatus(*patch.Status)
		if !ok {
			s.writeError(w, apperr.ValidationField("status", "must be draft, confirmed, or completed"))
			return
		}
		p.Status = status
	}

	if err := s.store.SavePlan(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, p)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeletePlan(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- composer operations ---

func (s *Server) handlePlanAddPlace(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		PlaceID int64  `json:"placeId"`
		Note    string `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.PlaceID <= 0 {
		s.writeError(w, apperr.ValidationField("placeId", "placeId is required"))
		return
	}

	p, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	plan.AddPlace(&p, req.PlaceID, req.Note)
	if err := s.store.SavePlan(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, p)
}

func (s *Server) handlePlanRemovePlace(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	placeID, err := idParam(r, "placeID")
	if err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !plan.RemovePlace(&p, placeID) {
		s.writeError(w, apperr.NotFound("place not in plan"))
		return
	}
	if err := s.store.SavePlan(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, p)
}

func (s *Server) handlePlanReorder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Order []int64 `json:"order"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := plan.Reorder(&p, req.Order); err != nil {
		// The stored order is untouched: the failed reorder never reached
		// the store.
		s.writeError(w, err)
		return
	}
	if err := s.store.SavePlan(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, p)
}

// --- sharing ---

func (s *Server) handleSharePlan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	code, generated, err := plan.EnsureShareCode(&p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if generated {
		if err := s.store.SavePlan(r.Context(), p); err != nil {
			s.writeError(w, err)
			return
		}
	}

	writeJSON(w, 200, map[string]any{
		"shareCode": code,
		"shareUrl":  strings.TrimSuffix(s.cfg.BaseURL, "/") + "/shared/" + code,
	})
}

func (s *Server) handleResolveShared(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "shareCode"))
	p, err := s.store.GetPlanByShareCode(r.Context(), code)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ids := make([]int64, 0, len(p.Entries))
	seen := map[int64]struct{}{}
	for _, e := range p.Entries {
		if _, ok := seen[e.PlaceID]; ok {
			continue
		}
		seen[e.PlaceID] = struct{}{}
		ids = append(ids, e.PlaceID)
	}
	// Dangling references resolve to nothing and are simply omitted.
	places, err := s.store.GetPlacesByIDs(r.Context(), ids)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, 200, map[string]any{
		"plan":      p,
		"places":    toPlaceViews(places),
		"notesHtml": renderNotes(p.Notes),
	})
}

// renderNotes converts plan notes markdown to HTML for the shared view.
func renderNotes(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := notesMarkdown.Convert([]byte(notes), &buf); err != nil {
		return ""
	}
	return buf.String()
}
