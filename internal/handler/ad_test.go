package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/adwall/adwall/internal/handler/dto"
	"github.com/adwall/adwall/internal/metrics"
	"github.com/adwall/adwall/internal/service"
	"github.com/adwall/adwall/internal/testutil"
)

// newTestRouter wires the full API surface against temp-dir stores.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	svc := service.NewAdService(
		testutil.NewInventory(t),
		testutil.NewAssetStore(t),
		testutil.Schema(),
		service.Options{
			BaseURL: "http://test.local",
			Metrics: metrics.NewInMemory(),
		},
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ads := NewAdHandler(svc, logger)
	uploads := NewUploadHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/api/ads", func(r chi.Router) {
		r.Get("/", ads.List)
		r.Post("/", ads.Create)
		r.Put("/{id}", ads.Update)
		r.Delete("/{id}", ads.Delete)
		r.Patch("/{id}/click", ads.Click)
		r.Post("/{id}/copy", ads.Copy)
		r.Post("/{id}/videos", ads.AttachVideos)
		r.Delete("/{id}/videos/{index}", ads.DetachVideo)
	})
	r.Post("/api/upload/video", uploads.UploadVideos)
	r.Get("/uploads/{ref}", uploads.ServeVideo)

	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func decodeAd(t *testing.T, rec *httptest.ResponseRecorder) dto.AdResponse {
	t.Helper()

	var env struct {
		Success bool           `json:"success"`
		Data    dto.AdResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode ad envelope: %v", err)
	}
	if !env.Success {
		t.Fatalf("expected success envelope, got %s", rec.Body.String())
	}
	return env.Data
}

func createAd(t *testing.T, r http.Handler, title string, pricing float64) dto.AdResponse {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/api/ads", dto.CreateAdRequest{
		Title:   title,
		Author:  "acme",
		URL:     "https://example.com/offer",
		Pricing: &pricing,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeAd(t, rec)
}

func TestAdHandler_CreateAndList(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	created := createAd(t, r, "Spring sale", 5)
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if created.Clicked != 0 {
		t.Errorf("expected zero clicks, got %d", created.Clicked)
	}
	if created.Videos == nil {
		t.Error("expected videos to marshal as an empty array, got null")
	}

	rec := doJSON(t, r, http.MethodGet, "/api/ads", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}

	var env struct {
		Success bool             `json:"success"`
		Data    []dto.AdResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0].ID != created.ID {
		t.Fatalf("unexpected list payload: %+v", env.Data)
	}
}

func TestAdHandler_ListOrdersByScore(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	cheap := createAd(t, r, "cheap", 5)
	rich := createAd(t, r, "rich", 10)

	// 10 clicks at pricing 5 outscore a bid of 10: 5 + 5*10*0.42 = 26.
	for i := 0; i < 10; i++ {
		rec := doJSON(t, r, http.MethodPatch, "/api/ads/"+cheap.ID+"/click", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("click: expected 200, got %d", rec.Code)
		}
	}

	rec := doJSON(t, r, http.MethodGet, "/api/ads", nil)
	var env struct {
		Data []dto.AdResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(env.Data) != 2 {
		t.Fatalf("expected 2 ads, got %d", len(env.Data))
	}
	if env.Data[0].ID != cheap.ID || env.Data[1].ID != rich.ID {
		t.Errorf("expected clicked ad first, got %s then %s", env.Data[0].Title, env.Data[1].Title)
	}
}

func TestAdHandler_CreateValidation(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/ads", dto.CreateAdRequest{
		Title:  "",
		Author: "acme",
		URL:    "http://insecure.example.com",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("expected failure envelope")
	}
	if _, ok := env.Errors["title"]; !ok {
		t.Errorf("expected title error, got %v", env.Errors)
	}
	if _, ok := env.Errors["url"]; !ok {
		t.Errorf("expected url error, got %v", env.Errors)
	}
}

func TestAdHandler_CreateInvalidJSON(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ads", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAdHandler_Update(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	created := createAd(t, r, "before", 5)

	title := "after"
	rec := doJSON(t, r, http.MethodPut, "/api/ads/"+created.ID, dto.UpdateAdRequest{Title: &title})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated := decodeAd(t, rec)
	if updated.Title != "after" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}
	if updated.Author != created.Author {
		t.Errorf("author changed unexpectedly: %q", updated.Author)
	}
}

func TestAdHandler_UpdateNotFound(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	title := "x"
	rec := doJSON(t, r, http.MethodPut, "/api/ads/missing", dto.UpdateAdRequest{Title: &title})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestAdHandler_Delete(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	created := createAd(t, r, "doomed", 5)

	rec := doJSON(t, r, http.MethodDelete, "/api/ads/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodDelete, "/api/ads/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestAdHandler_Click(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	created := createAd(t, r, "clicky", 5)

	rec := doJSON(t, r, http.MethodPatch, "/api/ads/"+created.ID+"/click", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeAd(t, rec).Clicked; got != 1 {
		t.Errorf("expected 1 click, got %d", got)
	}

	rec = doJSON(t, r, http.MethodPatch, "/api/ads/missing/click", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestAdHandler_Copy(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	source := createAd(t, r, "original", 5)

	req := httptest.NewRequest(http.MethodPost, "/api/ads/"+source.ID+"/copy", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	copied := decodeAd(t, rec)
	if copied.ID == source.ID {
		t.Error("copy kept the source id")
	}
	if copied.Title != "Copy-original" {
		t.Errorf("expected prefixed title, got %q", copied.Title)
	}
}

func TestAdHandler_CopyWithOverrides(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	source := createAd(t, r, "original", 5)

	title := "fresh title"
	rec := doJSON(t, r, http.MethodPost, "/api/ads/"+source.ID+"/copy", dto.UpdateAdRequest{Title: &title})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	copied := decodeAd(t, rec)
	if copied.Title != "fresh title" {
		t.Errorf("expected override title, got %q", copied.Title)
	}
}

func multipartVideos(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := mw.CreateFormFile("videos", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.WriteString(part, "video bytes for "+name); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAdHandler_AttachVideos(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	created := createAd(t, r, "with videos", 5)

	body, contentType := multipartVideos(t, "a.mp4", "b.webm")
	req := httptest.NewRequest(http.MethodPost, "/api/ads/"+created.ID+"/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated := decodeAd(t, rec)
	if len(updated.Videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(updated.Videos))
	}
	for _, u := range updated.Videos {
		if !strings.HasPrefix(u, "http://test.local/uploads/") {
			t.Errorf("unexpected video url %q", u)
		}
	}
}

func TestAdHandler_AttachVideosOverCap(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	created := createAd(t, r, "capped", 5)

	body, contentType := multipartVideos(t, "a.mp4", "b.mp4")
	req := httptest.NewRequest(http.MethodPost, "/api/ads/"+created.ID+"/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first attach: expected 200, got %d", rec.Code)
	}

	body, contentType = multipartVideos(t, "c.mp4", "d.mp4")
	req = httptest.NewRequest(http.MethodPost, "/api/ads/"+created.ID+"/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAdHandler_AttachVideosBadExtension(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	created := createAd(t, r, "strict", 5)

	body, contentType := multipartVideos(t, "malware.exe")
	req := httptest.NewRequest(http.MethodPost, "/api/ads/"+created.ID+"/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAdHandler_DetachVideo(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	created := createAd(t, r, "trimmed", 5)

	body, contentType := multipartVideos(t, "a.mp4", "b.mp4")
	req := httptest.NewRequest(http.MethodPost, "/api/ads/"+created.ID+"/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("attach: expected 200, got %d", rec.Code)
	}

	rec2 := doJSON(t, r, http.MethodDelete, "/api/ads/"+created.ID+"/videos/0", nil)
	if rec2.Code != http.StatusOK {
		t.Fatalf("detach: expected 200, got %d: %s", rec2.Code, rec2.Body.String())
	}
	if got := len(decodeAd(t, rec2).Videos); got != 1 {
		t.Errorf("expected 1 remaining video, got %d", got)
	}

	rec3 := doJSON(t, r, http.MethodDelete, "/api/ads/"+created.ID+"/videos/5", nil)
	if rec3.Code != http.StatusNotFound {
		t.Errorf("detach out of range: expected 404, got %d", rec3.Code)
	}

	rec4 := doJSON(t, r, http.MethodDelete, "/api/ads/"+created.ID+"/videos/notanumber", nil)
	if rec4.Code != http.StatusBadRequest {
		t.Errorf("detach bad index: expected 400, got %d", rec4.Code)
	}
}
