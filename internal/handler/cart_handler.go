package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CartHandler handles account and guest cart requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.Get(r.Context(), caller.UserID)
	h.respond(w, r, cart, err)
}

// Add handles POST /api/cart/add.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), caller.UserID, &req)
	h.respond(w, r, cart, err)
}

// Update handles PUT /api/cart/update.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.UpdateCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.SetQuantity(r.Context(), caller.UserID, &req)
	h.respond(w, r, cart, err)
}

// Remove handles DELETE /api/cart/remove/{productId}?variantSize=.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	productID, err := pathUUID(r, "productId")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), caller.UserID, productID, r.URL.Query().Get("variantSize"))
	h.respond(w, r, cart, err)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.Clear(r.Context(), caller.UserID); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GuestGet handles GET /api/guest-cart/{guestId}.
func (h *CartHandler) GuestGet(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetGuest(r.Context(), chi.URLParam(r, "guestId"))
	h.respond(w, r, cart, err)
}

// GuestAdd handles POST /api/guest-cart/{guestId}/add.
func (h *CartHandler) GuestAdd(w http.ResponseWriter, r *http.Request) {
	var req model.AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.AddGuestItem(r.Context(), chi.URLParam(r, "guestId"), &req)
	h.respond(w, r, cart, err)
}

// GuestUpdate handles PUT /api/guest-cart/{guestId}/update.
func (h *CartHandler) GuestUpdate(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.SetGuestQuantity(r.Context(), chi.URLParam(r, "guestId"), &req)
	h.respond(w, r, cart, err)
}

// GuestRemove handles DELETE /api/guest-cart/{guestId}/remove/{productId}.
func (h *CartHandler) GuestRemove(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productId")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.RemoveGuestItem(r.Context(), chi.URLParam(r, "guestId"), productID, r.URL.Query().Get("variantSize"))
	h.respond(w, r, cart, err)
}

// GuestClear handles DELETE /api/guest-cart/{guestId}.
func (h *CartHandler) GuestClear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearGuest(r.Context(), chi.URLParam(r, "guestId")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, cart *model.Cart, err error) {
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}
