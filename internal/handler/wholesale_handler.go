package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// WholesaleHandler handles B2B account requests.
type WholesaleHandler struct {
	service service.WholesaleService
	logger  zerolog.Logger
}

// NewWholesaleHandler creates a new wholesale handler.
func NewWholesaleHandler(service service.WholesaleService, logger zerolog.Logger) *WholesaleHandler {
	return &WholesaleHandler{
		service: service,
		logger:  logger.With().Str("handler", "wholesale").Logger(),
	}
}

// Register handles POST /api/wholesale/register.
func (h *WholesaleHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var profile model.BusinessProfile
	if err := decodeJSON(w, r, &profile); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	account, err := h.service.Register(r.Context(), caller.UserID, &profile)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// Profile handles GET /api/wholesale/profile.
func (h *WholesaleHandler) Profile(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	account, err := h.service.GetProfile(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Pricing handles GET /api/wholesale/pricing.
func (h *WholesaleHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	pricing, err := h.service.GetPricing(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, pricing)
}

// Products handles GET /api/wholesale/products.
func (h *WholesaleHandler) Products(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	page, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	list, err := h.service.PriceList(r.Context(), caller.UserID, page, limit)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// List handles GET /api/admin/wholesale?approved=.
func (h *WholesaleHandler) List(w http.ResponseWriter, r *http.Request) {
	approved, err := queryBool(r, "approved")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	accounts, err := h.service.List(r.Context(), approved)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// Approve handles PUT /api/wholesale/{id}/approve. The body is optional.
func (h *WholesaleHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.ApproveWholesaleRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, h.logger)
			return
		}
	}

	account, err := h.service.Approve(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
