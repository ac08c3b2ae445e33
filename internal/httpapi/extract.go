package httpapi

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/weekender-app/weekender/internal/apperr"
	"github.com/weekender-app/weekender/internal/extract"
	"github.com/weekender-app/weekender/internal/ingest"
	"github.com/weekender-app/weekender/internal/logger"
)

const maxFetchedImageBytes = 10 << 20

type extractRequest struct {
	ImageData string `json:"imageData"`
	ImageURL  string `json:"imageUrl"`
	Caption   string `json:"caption"`
	FileType  string `json:"fileType"` // "image" | "pdf"
	Source    struct {
		Kind   string `json:"kind"`   // "document" | "social"
		Handle string `json:"handle"` // for social posts
	} `json:"source"`
}

// handleExtract runs the full pipeline: black-box extractor, normalizer,
// dedup gate, store. Extraction failures come back as {success:false} with
// a message — never an uncaught fault, and never disguised as zero
// candidates.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		writeJSON(w, 200, map[string]any{
			"success": false,
			"message": "extraction is not configured",
		})
		return
	}

	var req extractRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	in := extract.Input{
		ImageData: strings.TrimSpace(req.ImageData),
		Caption:   req.Caption,
	}
	switch strings.ToLower(strings.TrimSpace(req.FileType)) {
	case "pdf":
		in.FileType = extract.FileTypePDF
	default:
		in.FileType = extract.FileTypeImage
	}
	if in.ImageData == "" && strings.TrimSpace(req.ImageURL) != "" {
		data, mediaType, err := fetchImage(r.Context(), req.ImageURL)
		if err != nil {
			writeJSON(w, 200, map[string]any{"success": false, "message": err.Error()})
			return
		}
		in.ImageData = data
		in.MediaType = mediaType
	}
	if in.ImageData == "" && strings.TrimSpace(in.Caption) == "" {
		s.writeError(w, apperr.Validation("imageData, imageUrl, or caption is required"))
		return
	}

	src := extract.Source{Kind: req.Source.Kind, Handle: req.Source.Handle}
	if src.Kind == "" {
		src.Kind = "document"
	}

	cands, err := s.extractor.Extract(r.Context(), in)
	if err != nil {
		s.log.Warn("extraction failed", logger.Error(err))
		writeJSON(w, 200, map[string]any{
			"success": false,
			"message": extractionMessage(err),
		})
		return
	}

	drafts := extract.Normalize(cands, src, s.log)
	created, err := s.importer.ImportBatch(r.Context(), drafts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, 200, map[string]any{
		"success": true,
		"places":  toPlaceViews(created),
		"count":   len(created),
	})
}

func extractionMessage(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "extraction failed"
}

// fetchImage downloads an image URL and returns its base64 bytes plus the
// reported content type.
func fetchImage(ctx context.Context, rawURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", apperr.Validation("invalid imageUrl: " + err.Error())
	}
	client := &http.Client{Timeout: 20 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", apperr.ExtractionFailed("fetch image: " + err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", apperr.ExtractionFailed("fetch image: unexpected status " + resp.Status)
	}
	blob, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchedImageBytes+1))
	if err != nil {
		return "", "", apperr.ExtractionFailed("read image: " + err.Error())
	}
	if len(blob) > maxFetchedImageBytes {
		return "", "", apperr.Validation("image too large")
	}
	mediaType := resp.Header.Get("Content-Type")
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	return base64.StdEncoding.EncodeToString(blob), strings.TrimSpace(mediaType), nil
}

// handleImportPlaces performs the bulk seed import: every entry in the seed
// file runs through the same dedup gate as extraction, sequentially, so
// re-running the import never duplicates rows.
func (s *Server) handleImportPlaces(w http.ResponseWriter, r *http.Request) {
	drafts, err := ingest.LoadSeedFile(s.cfg.SeedFile)
	if err != nil {
		s.writeError(w, apperr.Validation(err.Error()))
		return
	}
	created, err := s.importer.ImportBatch(r.Context(), drafts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"success": true,
		"count":   len(created),
	})
}
