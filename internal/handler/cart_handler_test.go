package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartHandler_Add(t *testing.T) {
	logger := zerolog.Nop()
	customer := model.Principal{UserID: uuid.New(), Role: model.RoleCustomer}
	productID := uuid.New()

	tests := []struct {
		name           string
		requestBody    interface{}
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			requestBody:    model.AddToCartRequest{ProductID: productID, Quantity: 2, VariantSize: "250g"},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Product gone",
			requestBody:    model.AddToCartRequest{ProductID: productID, Quantity: 1},
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Unknown variant",
			requestBody:    model.AddToCartRequest{ProductID: productID, Quantity: 1, VariantSize: "9kg"},
			mockError:      model.ErrVariantNotFound,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Missing product id",
			requestBody:    map[string]int{"quantity": 1},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCartService)
			handler := NewCartHandler(mockService, logger)

			if tt.expectService {
				var ret *model.Cart
				if tt.mockError == nil {
					ret = &model.Cart{ID: uuid.New(), UserID: &customer.UserID, Items: []model.CartItem{
						{ProductID: productID, Name: "Saffron", Price: 300, Quantity: 2, VariantSize: "250g"},
					}}
				}
				mockService.On("AddItem", mock.Anything, customer.UserID, mock.AnythingOfType("*model.AddToCartRequest")).
					Return(ret, tt.mockError)
			}

			req := asCaller(httptest.NewRequest(http.MethodPost, "/api/cart/add", jsonBody(t, tt.requestBody)), customer)
			w := serve(http.MethodPost, "/api/cart/add", handler.Add, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestCartHandler_Update(t *testing.T) {
	logger := zerolog.Nop()
	customer := model.Principal{UserID: uuid.New(), Role: model.RoleCustomer}
	productID := uuid.New()

	t.Run("Absent line", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(mockService, logger)
		mockService.On("SetQuantity", mock.Anything, customer.UserID, mock.Anything).Return(nil, model.ErrItemNotFound)

		req := asCaller(httptest.NewRequest(http.MethodPut, "/api/cart/update",
			jsonBody(t, model.UpdateCartRequest{ProductID: productID, Quantity: 3})), customer)
		w := serve(http.MethodPut, "/api/cart/update", handler.Update, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, model.ErrCodeItemNotFound, decodeError(t, w).Code)
	})

	t.Run("Zero removes", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(mockService, logger)
		mockService.On("SetQuantity", mock.Anything, customer.UserID, mock.MatchedBy(func(r *model.UpdateCartRequest) bool {
			return r.Quantity == 0
		})).Return(&model.Cart{Items: []model.CartItem{}}, nil)

		req := asCaller(httptest.NewRequest(http.MethodPut, "/api/cart/update",
			jsonBody(t, model.UpdateCartRequest{ProductID: productID, Quantity: 0})), customer)
		w := serve(http.MethodPut, "/api/cart/update", handler.Update, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var cart model.Cart
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
		assert.Empty(t, cart.Items)
	})
}

func TestCartHandler_RemoveAndClear(t *testing.T) {
	logger := zerolog.Nop()
	customer := model.Principal{UserID: uuid.New(), Role: model.RoleCustomer}
	productID := uuid.New()

	mockService := new(MockCartService)
	handler := NewCartHandler(mockService, logger)
	mockService.On("RemoveItem", mock.Anything, customer.UserID, productID, "250g").Return(&model.Cart{Items: []model.CartItem{}}, nil)
	mockService.On("Clear", mock.Anything, customer.UserID).Return(nil)

	req := asCaller(httptest.NewRequest(http.MethodDelete, "/api/cart/remove/"+productID.String()+"?variantSize=250g", nil), customer)
	w := serve(http.MethodDelete, "/api/cart/remove/{productId}", handler.Remove, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = asCaller(httptest.NewRequest(http.MethodDelete, "/api/cart", nil), customer)
	w = serve(http.MethodDelete, "/api/cart", handler.Clear, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = asCaller(httptest.NewRequest(http.MethodDelete, "/api/cart/remove/nope", nil), customer)
	w = serve(http.MethodDelete, "/api/cart/remove/{productId}", handler.Remove, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertExpectations(t)
}

func TestCartHandler_Unauthenticated(t *testing.T) {
	mockService := new(MockCartService)
	handler := NewCartHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	w := serve(http.MethodGet, "/api/cart", handler.Get, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCartHandler_Guest(t *testing.T) {
	logger := zerolog.Nop()
	productID := uuid.New()

	mockService := new(MockCartService)
	handler := NewCartHandler(mockService, logger)

	guestCart := &model.Cart{GuestID: "guest-abc", Items: []model.CartItem{{ProductID: productID, Quantity: 1, Price: 100}}}
	mockService.On("GetGuest", mock.Anything, "guest-abc").Return(guestCart, nil)
	mockService.On("AddGuestItem", mock.Anything, "guest-abc", mock.AnythingOfType("*model.AddToCartRequest")).Return(guestCart, nil)
	mockService.On("RemoveGuestItem", mock.Anything, "guest-abc", productID, "").Return(&model.Cart{GuestID: "guest-abc", Items: []model.CartItem{}}, nil)
	mockService.On("ClearGuest", mock.Anything, "guest-abc").Return(nil)
	mockService.On("GetGuest", mock.Anything, "bad.id").Return(nil, model.ErrValidationFailed.WithMessage("Invalid guest cart id"))

	w := serve(http.MethodGet, "/api/guest-cart/{guestId}", handler.GuestGet,
		httptest.NewRequest(http.MethodGet, "/api/guest-cart/guest-abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodPost, "/api/guest-cart/{guestId}/add", handler.GuestAdd,
		httptest.NewRequest(http.MethodPost, "/api/guest-cart/guest-abc/add", jsonBody(t, model.AddToCartRequest{ProductID: productID, Quantity: 1})))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodDelete, "/api/guest-cart/{guestId}/remove/{productId}", handler.GuestRemove,
		httptest.NewRequest(http.MethodDelete, "/api/guest-cart/guest-abc/remove/"+productID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodDelete, "/api/guest-cart/{guestId}", handler.GuestClear,
		httptest.NewRequest(http.MethodDelete, "/api/guest-cart/guest-abc", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(http.MethodGet, "/api/guest-cart/{guestId}", handler.GuestGet,
		httptest.NewRequest(http.MethodGet, "/api/guest-cart/bad.id", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertExpectations(t)
}
