package handler

import (
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adwall/adwall/internal/handler/dto"
	"github.com/adwall/adwall/internal/service"
)

// UploadHandler handles the standalone upload endpoint and serves
// stored video files.
type UploadHandler struct {
	svc    *service.AdService
	logger *slog.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(svc *service.AdService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		svc:    svc,
		logger: logger,
	}
}

// UploadVideos handles POST /api/upload/video. It stores up to three
// files from the multipart "videos" field and returns their URLs without
// attaching them to any ad.
func (h *UploadHandler) UploadVideos(w http.ResponseWriter, r *http.Request) {
	uploads, cleanup, err := parseVideoUploads(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer cleanup()

	urls, err := h.svc.StoreVideos(r.Context(), uploads)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("videos_uploaded", "count", len(urls))

	writeData(w, http.StatusOK, dto.UploadResponse{URLs: urls})
}

// ServeVideo handles GET /uploads/{ref}, streaming the stored bytes
// with range support.
func (h *UploadHandler) ServeVideo(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	content, err := h.svc.OpenVideo(ref)
	if err != nil {
		writeError(w, http.StatusNotFound, "video not found")
		return
	}
	defer content.Close()

	// ServeContent derives the Content-Type from the reference's
	// extension and handles Range requests for video scrubbing.
	http.ServeContent(w, r, path.Base(ref), time.Time{}, content)
}
