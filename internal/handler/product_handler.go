package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := productQuery(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	page, err := h.service.List(r.Context(), query)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func productQuery(r *http.Request) (model.ProductQuery, error) {
	q := r.URL.Query()
	query := model.ProductQuery{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
		Sort:     q.Get("sort"),
	}

	var err error
	if query.Page, query.Limit, err = pageParams(r); err != nil {
		return query, err
	}
	if query.MinPrice, err = queryInt64(r, "minPrice"); err != nil {
		return query, err
	}
	if query.MaxPrice, err = queryInt64(r, "maxPrice"); err != nil {
		return query, err
	}
	if query.Featured, err = queryBool(r, "featured"); err != nil {
		return query, err
	}
	if query.IsGiftBox, err = queryBool(r, "isGiftBox"); err != nil {
		return query, err
	}

	switch query.Sort {
	case "", model.SortNewest, model.SortPriceAsc, model.SortPriceDesc, model.SortRating, model.SortName:
	default:
		return query, model.ErrValidationFailed.WithDetails(fmt.Sprintf("unknown sort %q", query.Sort))
	}

	return query, nil
}

func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, model.ErrValidationFailed.WithDetails(fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return &v, nil
}

// Get handles GET /api/products/{idOrSlug}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeNotFoundAware(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeNotFoundAware(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}. ?hard=true removes the row.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	hard, err := queryBool(r, "hard")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id, hard != nil && *hard); err != nil {
		writeNotFoundAware(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeNotFoundAware reports a missing addressed product as 404 rather than
// the 400 used when a product is referenced from a cart or order.
func writeNotFoundAware(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) && de.Code == model.ErrCodeProductNotFound {
		writeDomainError(w, r, http.StatusNotFound, de, logger)
		return
	}
	writeError(w, r, err, logger)
}
