package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/weekender-app/weekender/internal/extract"
	"github.com/weekender-app/weekender/internal/ingest"
	"github.com/weekender-app/weekender/internal/logger"
	"github.com/weekender-app/weekender/internal/photoproxy"
	"github.com/weekender-app/weekender/internal/store"
)

// fakeExtractor implements extract.Extractor without a live model.
type fakeExtractor struct {
	candidates []extract.Candidate
	err        error
}

func (f *fakeExtractor) Extract(_ context.Context, _ extract.Input) ([]extract.Candidate, error) {
	return f.candidates, f.err
}

type testEnv struct {
	handler  http.Handler
	store    *store.Store
	provider *httptest.Server
}

func newTestEnv(t *testing.T, extractor extract.Extractor) *testEnv {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("ref")
		if ref == "missing" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "https://img.example/"+ref+".jpg", http.StatusFound)
	}))
	t.Cleanup(provider.Close)

	log := logger.Nop()
	resolver := photoproxy.NewResolver(provider.URL+"/photo?ref=%s", "", photoproxy.NewMemoryCache(), time.Hour, log)

	seedPath := filepath.Join(t.TempDir(), "seed.yaml")
	seed := "places:\n  - name: Seeded Park\n    category: Nature\n  - name: seeded park\n"
	if err := os.WriteFile(seedPath, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	handler := NewServer(st, ingest.NewImporter(st, log), extractor, resolver, Config{
		BaseURL:  "https://weekender.example",
		SeedFile: seedPath,
	}, log)

	return &testEnv{handler: handler, store: st, provider: provider}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(blob)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code  string `json:"code"`
			Field string `json:"field"`
		} `json:"error"`
	}
	decodeBody(t, rec, &body)
	return body.Error.Code
}

func createTestPlace(t *testing.T, e *testEnv, payload map[string]any) map[string]any {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/places", payload)
	if rec.Code != 201 {
		t.Fatalf("create place: status %d body %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	decodeBody(t, rec, &created)
	return created
}

func placeID(t *testing.T, created map[string]any) int64 {
	t.Helper()
	f, ok := created["id"].(float64)
	if !ok || f == 0 {
		t.Fatalf("no id assigned: %v", created)
	}
	return int64(f)
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != 200 {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestPlaceCRUDOverHTTP(t *testing.T) {
	e := newTestEnv(t, nil)

	created := createTestPlace(t, e, map[string]any{
		"name":          "Great Falls Park",
		"category":      "nature",
		"indoorOutdoor": "outdoor",
		"rating":        4.8,
	})
	id := placeID(t, created)

	rec := e.do(t, http.MethodGet, fmt.Sprintf("/api/places/%d", id), nil)
	if rec.Code != 200 {
		t.Fatalf("get: status %d", rec.Code)
	}

	rec = e.do(t, http.MethodPut, fmt.Sprintf("/api/places/%d", id), map[string]any{"favorite": true})
	if rec.Code != 200 {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body.String())
	}
	var updated map[string]any
	decodeBody(t, rec, &updated)
	if updated["favorite"] != true || updated["name"] != "Great Falls Park" {
		t.Fatalf("patch must only touch present fields: %v", updated)
	}

	rec = e.do(t, http.MethodDelete, fmt.Sprintf("/api/places/%d", id), nil)
	if rec.Code != 204 {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = e.do(t, http.MethodGet, fmt.Sprintf("/api/places/%d", id), nil)
	if rec.Code != 404 || errorCode(t, rec) != "not_found" {
		t.Fatalf("get after delete: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestCreatePlaceValidationEnvelope(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/api/places", map[string]any{"name": "  "})
	if rec.Code != 400 {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code  string `json:"code"`
			Field string `json:"field"`
		} `json:"error"`
	}
	decodeBody(t, rec, &body)
	if body.Error.Code != "validation" || body.Error.Field != "name" {
		t.Fatalf("envelope: %+v", body)
	}
}

func TestListPlacesAppliesFilters(t *testing.T) {
	e := newTestEnv(t, nil)
	createTestPlace(t, e, map[string]any{"name": "Indoor Museum", "category": "educational", "indoorOutdoor": "indoor", "kidFriendly": true})
	createTestPlace(t, e, map[string]any{"name": "Big Trail", "category": "nature", "indoorOutdoor": "outdoor"})

	rec := e.do(t, http.MethodGet, "/api/places?kidFriendly=true&category=educational", nil)
	if rec.Code != 200 {
		t.Fatalf("status %d", rec.Code)
	}
	var got []map[string]any
	decodeBody(t, rec, &got)
	if len(got) != 1 || got[0]["name"] != "Indoor Museum" {
		t.Fatalf("filtered list: %v", got)
	}

	// Sentinel values behave as no filter at all.
	rec = e.do(t, http.MethodGet, "/api/places?category=all&maxDistance=100&minRating=0", nil)
	decodeBody(t, rec, &got)
	if len(got) != 2 {
		t.Fatalf("sentinels must not filter, got %d", len(got))
	}
}

func TestProviderTokensNeverLeaveAsDisplayURLs(t *testing.T) {
	e := newTestEnv(t, nil)
	created := createTestPlace(t, e, map[string]any{"name": "Token Place", "image": "gp:secrettoken"})
	if created["image"] != "/api/photo/secrettoken" {
		t.Fatalf("image must be a proxy path, got %v", created["image"])
	}

	rec := e.do(t, http.MethodGet, "/api/places", nil)
	if strings.Contains(rec.Body.String(), "gp:") {
		t.Fatalf("raw provider token leaked: %s", rec.Body.String())
	}
}

func TestNearbyPlacesEndpoint(t *testing.T) {
	e := newTestEnv(t, nil)
	ref := createTestPlace(t, e, map[string]any{"name": "Ref", "driveTime": 20})
	createTestPlace(t, e, map[string]any{"name": "Close", "driveTime": 25})
	createTestPlace(t, e, map[string]any{"name": "Far", "driveTime": 120})

	rec := e.do(t, http.MethodGet, fmt.Sprintf("/api/places/%d/nearby", placeID(t, ref)), nil)
	if rec.Code != 200 {
		t.Fatalf("status %d", rec.Code)
	}
	var got []map[string]any
	decodeBody(t, rec, &got)
	if len(got) != 1 || got[0]["name"] != "Close" {
		t.Fatalf("nearby: %v", got)
	}
}

func TestPlanLifecycle(t *testing.T) {
	e := newTestEnv(t, nil)
	aID := placeID(t, createTestPlace(t, e, map[string]any{"name": "A"}))
	bID := placeID(t, createTestPlace(t, e, map[string]any{"name": "B"}))

	rec := e.do(t, http.MethodPost, "/api/plans", map[string]any{"date": "2026-09-05", "notes": "# Trip"})
	if rec.Code != 201 {
		t.Fatalf("create plan: status %d body %s", rec.Code, rec.Body.String())
	}
	var p struct {
		ID     int64 `json:"id"`
		Places []struct {
			PlaceID int64 `json:"placeId"`
		} `json:"places"`
	}
	decodeBody(t, rec, &p)

	for _, id := range []int64{aID, bID, aID} {
		rec = e.do(t, http.MethodPost, fmt.Sprintf("/api/plans/%d/places", p.ID), map[string]any{"placeId": id})
		if rec.Code != 200 {
			t.Fatalf("add place %d: status %d body %s", id, rec.Code, rec.Body.String())
		}
	}
	decodeBody(t, rec, &p)
	if len(p.Places) != 3 {
		t.Fatalf("duplicates must be allowed, got %d entries", len(p.Places))
	}

	// Removing drops the first occurrence only.
	rec = e.do(t, http.MethodDelete, fmt.Sprintf("/api/plans/%d/places/%d", p.ID, aID), nil)
	if rec.Code != 200 {
		t.Fatalf("remove: status %d", rec.Code)
	}
	decodeBody(t, rec, &p)
	if len(p.Places) != 2 || p.Places[0].PlaceID != bID || p.Places[1].PlaceID != aID {
		t.Fatalf("after remove: %+v", p.Places)
	}

	rec = e.do(t, http.MethodDelete, fmt.Sprintf("/api/plans/%d/places/%d", p.ID, 9999), nil)
	if rec.Code != 404 {
		t.Fatalf("removing an absent place: status %d", rec.Code)
	}

	rec = e.do(t, http.MethodPut, fmt.Sprintf("/api/plans/%d/order", p.ID), map[string]any{"order": []int64{aID, bID}})
	if rec.Code != 200 {
		t.Fatalf("reorder: status %d body %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &p)
	if p.Places[0].PlaceID != aID || p.Places[1].PlaceID != bID {
		t.Fatalf("after reorder: %+v", p.Places)
	}
}

func TestPlanReorderRejectsNonPermutation(t *testing.T) {
	e := newTestEnv(t, nil)
	aID := placeID(t, createTestPlace(t, e, map[string]any{"name": "A"}))

	rec := e.do(t, http.MethodPost, "/api/plans", map[string]any{"places": []map[string]any{{"placeId": aID}}})
	var p struct {
		ID     int64 `json:"id"`
		Places []struct {
			PlaceID int64 `json:"placeId"`
		} `json:"places"`
	}
	decodeBody(t, rec, &p)

	rec = e.do(t, http.MethodPut, fmt.Sprintf("/api/plans/%d/order", p.ID), map[string]any{"order": []int64{aID, aID}})
	if rec.Code != 400 || errorCode(t, rec) != "invalid_order" {
		t.Fatalf("expected invalid_order, status %d body %s", rec.Code, rec.Body.String())
	}

	// The stored order must be untouched.
	rec = e.do(t, http.MethodGet, fmt.Sprintf("/api/plans/%d", p.ID), nil)
	decodeBody(t, rec, &p)
	if len(p.Places) != 1 || p.Places[0].PlaceID != aID {
		t.Fatalf("failed reorder mutated the plan: %+v", p.Places)
	}
}

func TestSharePlanIsIdempotent(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/api/plans", nil)
	var p struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rec, &p)

	var share struct {
		ShareCode string `json:"shareCode"`
		ShareURL  string `json:"shareUrl"`
	}
	rec = e.do(t, http.MethodPost, fmt.Sprintf("/api/plans/%d/share", p.ID), nil)
	if rec.Code != 200 {
		t.Fatalf("share: status %d", rec.Code)
	}
	decodeBody(t, rec, &share)
	first := share.ShareCode
	if first == "" {
		t.Fatalf("no share code issued")
	}
	if share.ShareURL != "https://weekender.example/shared/"+first {
		t.Fatalf("share url: %q", share.ShareURL)
	}

	rec = e.do(t, http.MethodPost, fmt.Sprintf("/api/plans/%d/share", p.ID), nil)
	decodeBody(t, rec, &share)
	if share.ShareCode != first {
		t.Fatalf("share code rotated: %q vs %q", first, share.ShareCode)
	}
}

func TestSharedViewRendersNotesAndOmitsDeleted(t *testing.T) {
	e := newTestEnv(t, nil)
	aID := placeID(t, createTestPlace(t, e, map[string]any{"name": "Kept"}))
	bID := placeID(t, createTestPlace(t, e, map[string]any{"name": "Gone"}))

	rec := e.do(t, http.MethodPost, "/api/plans", map[string]any{
		"places": []map[string]any{{"placeId": aID}, {"placeId": bID}},
		"notes":  "# Saturday\n\n- pack snacks",
	})
	var p struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rec, &p)

	var share struct {
		ShareCode string `json:"shareCode"`
	}
	rec = e.do(t, http.MethodPost, fmt.Sprintf("/api/plans/%d/share", p.ID), nil)
	decodeBody(t, rec, &share)

	if rec := e.do(t, http.MethodDelete, fmt.Sprintf("/api/places/%d", bID), nil); rec.Code != 204 {
		t.Fatalf("delete place: status %d", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/api/shared/"+share.ShareCode, nil)
	if rec.Code != 200 {
		t.Fatalf("shared: status %d body %s", rec.Code, rec.Body.String())
	}
	var view struct {
		Places    []map[string]any `json:"places"`
		NotesHTML string           `json:"notesHtml"`
	}
	decodeBody(t, rec, &view)
	if len(view.Places) != 1 || view.Places[0]["name"] != "Kept" {
		t.Fatalf("dangling references must be omitted: %v", view.Places)
	}
	if !strings.Contains(view.NotesHTML, "<h1") || !strings.Contains(view.NotesHTML, "<li>") {
		t.Fatalf("notes not rendered: %q", view.NotesHTML)
	}

	rec = e.do(t, http.MethodGet, "/api/shared/unknowncode", nil)
	if rec.Code != 404 {
		t.Fatalf("unknown code: status %d", rec.Code)
	}
}

func TestExtractEndpointSuccess(t *testing.T) {
	e := newTestEnv(t, &fakeExtractor{candidates: []extract.Candidate{
		{Found: true, Name: "Great Falls Park", City: "McLean", State: "VA", Category: "Nature"},
		{Found: true, Name: "Dogfish Head Brewery", Category: "Dining"},
		{Found: false},
	}})

	rec := e.do(t, http.MethodPost, "/api/places/extract", map[string]any{
		"caption": "weekend spots",
		"source":  map[string]any{"kind": "social", "handle": "weekendtrips"},
	})
	if rec.Code != 200 {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Success bool             `json:"success"`
		Count   int              `json:"count"`
		Places  []map[string]any `json:"places"`
	}
	decodeBody(t, rec, &body)
	if !body.Success || body.Count != 1 {
		t.Fatalf("expected 1 created place, got %+v", body)
	}
	if body.Places[0]["source"] != "Instagram post by @weekendtrips" {
		t.Fatalf("attribution: %v", body.Places[0]["source"])
	}
	if body.Places[0]["address"] != "McLean, VA" {
		t.Fatalf("address: %v", body.Places[0]["address"])
	}
}

func TestExtractEndpointFailureIsSoft(t *testing.T) {
	e := newTestEnv(t, &fakeExtractor{err: fmt.Errorf("model exploded")})
	rec := e.do(t, http.MethodPost, "/api/places/extract", map[string]any{"caption": "x"})
	if rec.Code != 200 {
		t.Fatalf("extraction failures surface as 200 {success:false}, got %d", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeBody(t, rec, &body)
	if body.Success || body.Message == "" {
		t.Fatalf("body: %+v", body)
	}
}

func TestExtractEndpointUnconfigured(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/api/places/extract", map[string]any{"caption": "x"})
	if rec.Code != 200 {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Success bool `json:"success"`
	}
	decodeBody(t, rec, &body)
	if body.Success {
		t.Fatalf("unconfigured extractor must not report success")
	}
}

func TestExtractEndpointRequiresInput(t *testing.T) {
	e := newTestEnv(t, &fakeExtractor{})
	rec := e.do(t, http.MethodPost, "/api/places/extract", map[string]any{})
	if rec.Code != 400 || errorCode(t, rec) != "validation" {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestExtractIsIdempotentAcrossRuns(t *testing.T) {
	e := newTestEnv(t, &fakeExtractor{candidates: []extract.Candidate{
		{Found: true, Name: "Repeat Park"},
	}})
	for i := 0; i < 2; i++ {
		rec := e.do(t, http.MethodPost, "/api/places/extract", map[string]any{"caption": "x"})
		if rec.Code != 200 {
			t.Fatalf("run %d: status %d", i, rec.Code)
		}
	}

	places, err := e.store.ListPlaces(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("re-extracting the same place must not duplicate it, got %d rows", len(places))
	}
}

func TestSeedImportEndpoint(t *testing.T) {
	e := newTestEnv(t, nil)

	rec := e.do(t, http.MethodPost, "/api/places/import", nil)
	if rec.Code != 200 {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	decodeBody(t, rec, &body)
	if !body.Success || body.Count != 1 {
		t.Fatalf("seed file holds one unique name, got %+v", body)
	}

	// Re-running is a no-op thanks to the gate.
	rec = e.do(t, http.MethodPost, "/api/places/import", nil)
	decodeBody(t, rec, &body)
	if body.Count != 0 {
		t.Fatalf("second import must create nothing, got %d", body.Count)
	}
}

func TestPhotoEndpointRedirects(t *testing.T) {
	e := newTestEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/api/photo/tok123", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://img.example/tok123.jpg" {
		t.Fatalf("location: %q", loc)
	}

	rec = e.do(t, http.MethodGet, "/api/photo/missing", nil)
	if rec.Code != 404 {
		t.Fatalf("unknown token: status %d", rec.Code)
	}
}

func TestInvalidIDParam(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/api/places/abc", nil)
	if rec.Code != 400 || errorCode(t, rec) != "validation" {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
}
