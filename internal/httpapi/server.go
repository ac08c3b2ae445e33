package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/weekender-app/weekender/internal/apperr"
	"github.com/weekender-app/weekender/internal/extract"
	"github.com/weekender-app/weekender/internal/ingest"
	"github.com/weekender-app/weekender/internal/logger"
	"github.com/weekender-app/weekender/internal/photoproxy"
	"github.com/weekender-app/weekender/internal/store"
)

// photoProxyPath is the route prefix clients use to fetch provider-token
// images. Raw provider tokens never leave the server as display URLs.
const photoProxyPath = "/api/photo"

type Config struct {
	BaseURL  string // public base URL for share links
	SeedFile string // YAML file consumed by POST /api/places/import
}

type Server struct {
	store     *store.Store
	importer  *ingest.Importer
	extractor extract.Extractor
	resolver  *photoproxy.Resolver
	cfg       Config
	log       logger.Logger
}

func NewServer(st *store.Store, importer *ingest.Importer, extractor extract.Extractor, resolver *photoproxy.Resolver, cfg Config, log logger.Logger) http.Handler {
	s := &Server{
		store:     st,
		importer:  importer,
		extractor: extractor,
		resolver:  resolver,
		cfg:       cfg,
		log:       log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))
	r.Use(accessLog(log))

	r.Route("/api", func(r chi.Router) {
		r.Route("/places", func(r chi.Router) {
			r.Get("/", s.handleListPlaces)
			r.Post("/", s.handleCreatePlace)
			r.Post("/import", s.handleImportPlaces)
			r.Post("/extract", s.handleExtract)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPlace)
				r.Put("/", s.handleUpdatePlace)
				r.Delete("/", s.handleDeletePlace)
				r.Get("/nearby", s.handleNearbyPlaces)
			})
		})
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", s.handleListPlans)
			r.Post("/", s.handleCreatePlan)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPlan)
				r.Put("/", s.handleUpdatePlan)
				r.Delete("/", s.handleDeletePlan)
				r.Post("/share", s.handleSharePlan)
				r.Post("/places", s.handlePlanAddPlace)
				r.Delete("/places/{placeID}", s.handlePlanRemovePlace)
				r.Put("/order", s.handlePlanReorder)
			})
		})
		r.Get("/shared/{shareCode}", s.handleResolveShared)
		r.Get("/photo/{token}", s.handlePhoto)
	})
	r.Get("/healthz", s.handleHealth)

	return r
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the app error taxonomy onto the JSON error envelope. An
// unclassified error never reaches the client raw.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body := map[string]any{
			"code":    ae.Code,
			"message": ae.Message,
		}
		if ae.Field != "" {
			body["field"] = ae.Field
		}
		writeJSON(w, ae.Status, map[string]any{"error": body})
		return
	}
	s.log.Error("internal error", logger.Error(err))
	writeJSON(w, 500, map[string]any{"error": map[string]any{
		"code":    apperr.CodeInternal,
		"message": "internal error",
	}})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Validation("request body required")
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return apperr.Validation("read body: " + err.Error())
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	if err := json.Unmarshal(blob, dst); err != nil {
		return apperr.Validation("invalid json: " + err.Error())
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id: " + raw)
	}
	return id, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, 200, map[string]any{"ok": true})
}

// accessLog emits one structured line per request.
func accessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("http_request",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", ww.Status()),
				logger.Int("bytes", ww.BytesWritten()),
				logger.Duration("duration", time.Since(start)),
				logger.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
