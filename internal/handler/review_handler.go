package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// ReviewHandler handles product review requests.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("handler", "review").Logger(),
	}
}

// List handles GET /api/products/{id}/reviews.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	reviews, err := h.service.List(r.Context(), productID)
	if err != nil {
		writeNotFoundAware(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// Add handles POST /api/products/{id}/review.
func (h *ReviewHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	productID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	review, err := h.service.Add(r.Context(), caller, productID, &req)
	if err != nil {
		writeNotFoundAware(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// Update handles PUT /api/products/{id}/reviews/{reviewId}.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	reviewID, err := pathUUID(r, "reviewId")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	review, err := h.service.Update(r.Context(), productID, reviewID, &req)
	if err != nil {
		writeNotFoundAware(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// Delete handles DELETE /api/products/{id}/reviews/{reviewId}.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	reviewID, err := pathUUID(r, "reviewId")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), productID, reviewID); err != nil {
		writeNotFoundAware(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
