package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adwall/adwall/internal/handler/dto"
	"github.com/adwall/adwall/internal/service"
)

// multipartMemoryLimit is how much of a multipart body is held in memory
// before spilling to temp files.
const multipartMemoryLimit = 32 << 20

// AdHandler handles HTTP requests for ad catalog operations.
type AdHandler struct {
	svc    *service.AdService
	logger *slog.Logger
}

// NewAdHandler creates a new AdHandler.
func NewAdHandler(svc *service.AdService, logger *slog.Logger) *AdHandler {
	return &AdHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/ads. Ads come back ordered by display score.
func (h *AdHandler) List(w http.ResponseWriter, r *http.Request) {
	ads := h.svc.List(r.Context())
	writeData(w, http.StatusOK, dto.ToAdListResponse(ads))
}

// Create handles POST /api/ads.
func (h *AdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ad, err := h.svc.Create(r.Context(), service.CreateAdInput{
		Title:   req.Title,
		Author:  req.Author,
		Content: req.Content,
		URL:     req.URL,
		Pricing: req.Pricing,
		Videos:  req.Videos,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("ad_created",
		"ad_id", ad.ID,
		"title", ad.Title,
		"videos", len(ad.Videos),
	)

	writeData(w, http.StatusCreated, dto.ToAdResponse(ad))
}

// Update handles PUT /api/ads/{id}.
func (h *AdHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ad, err := h.svc.Edit(r.Context(), id, editInput(req))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("ad_updated", "ad_id", ad.ID)

	writeData(w, http.StatusOK, dto.ToAdResponse(ad))
}

// Delete handles DELETE /api/ads/{id}.
func (h *AdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("ad_deleted", "ad_id", id)

	writeMessage(w, http.StatusOK, "ad deleted")
}

// Click handles PATCH /api/ads/{id}/click.
func (h *AdHandler) Click(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ad, err := h.svc.RecordClick(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, dto.ToAdResponse(ad))
}

// Copy handles POST /api/ads/{id}/copy. The body is an optional set of
// field overrides applied to the derived ad.
func (h *AdHandler) Copy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ad, err := h.svc.Copy(r.Context(), id, editInput(req))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("ad_copied",
		"source_id", id,
		"ad_id", ad.ID,
	)

	writeData(w, http.StatusCreated, dto.ToAdResponse(ad))
}

// AttachVideos handles POST /api/ads/{id}/videos. The multipart "videos"
// field carries up to three files.
func (h *AdHandler) AttachVideos(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	uploads, cleanup, err := parseVideoUploads(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer cleanup()

	ad, err := h.svc.AttachVideos(r.Context(), id, uploads)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("videos_attached",
		"ad_id", ad.ID,
		"count", len(uploads),
	)

	writeData(w, http.StatusOK, dto.ToAdResponse(ad))
}

// DetachVideo handles DELETE /api/ads/{id}/videos/{index}.
func (h *AdHandler) DetachVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid video index")
		return
	}

	ad, err := h.svc.DetachVideo(r.Context(), id, index)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("video_detached",
		"ad_id", ad.ID,
		"index", index,
	)

	writeData(w, http.StatusOK, dto.ToAdResponse(ad))
}

// editInput converts the wire patch into the service patch.
func editInput(req dto.UpdateAdRequest) service.EditAdInput {
	return service.EditAdInput{
		Title:   req.Title,
		Author:  req.Author,
		Content: req.Content,
		URL:     req.URL,
		Pricing: req.Pricing,
		Videos:  req.Videos,
	}
}

// parseVideoUploads extracts the "videos" multipart field into service
// uploads. The returned cleanup closes every opened file.
func parseVideoUploads(r *http.Request) ([]service.Upload, func(), error) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return nil, func() {}, err
	}

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["videos"]
	}

	uploads := make([]service.Upload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		uploads = append(uploads, service.Upload{
			Name:    hdr.Filename,
			Size:    hdr.Size,
			Content: f,
		})
	}

	return uploads, cleanup, nil
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeValidationError(w, http.StatusUnprocessableEntity, "validation failed", verr.Fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrAdNotFound):
		writeError(w, http.StatusNotFound, "ad not found")
	case errors.Is(err, service.ErrVideoNotFound):
		writeError(w, http.StatusNotFound, "video not found")
	case errors.Is(err, service.ErrVideoIndexOutOfRange):
		writeError(w, http.StatusNotFound, "video index out of range")
	case errors.Is(err, service.ErrVideoCapExceeded):
		writeError(w, http.StatusConflict, "video limit exceeded")
	case errors.Is(err, service.ErrVideoType):
		writeError(w, http.StatusBadRequest, "unsupported video format")
	case errors.Is(err, service.ErrNoVideos):
		writeError(w, http.StatusBadRequest, "no video files supplied")
	case errors.Is(err, service.ErrVideoTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "video file too large")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
