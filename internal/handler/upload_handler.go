package handler

import (
	"mime"
	"net/http"

	"storefront/internal/media"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// UploadHandler handles admin image uploads.
type UploadHandler struct {
	uploader media.Uploader
	logger   zerolog.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploader media.Uploader, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		logger:   logger.With().Str("handler", "upload").Logger(),
	}
}

// Upload handles POST /api/uploads with a multipart "image" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(media.MaxImageSize); err != nil {
		writeError(w, r, model.ErrValidationFailed.WithMessage("Expected a multipart form of at most 5 MB"), h.logger)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, model.ErrValidationFailed.WithDetails("image is required"), h.logger)
		return
	}
	defer file.Close()

	contentType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if err != nil {
		contentType = ""
	}

	image, err := h.uploader.Upload(r.Context(), header.Filename, contentType, file)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, image)
}

// Delete handles DELETE /api/uploads/{id}.
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uploader.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
