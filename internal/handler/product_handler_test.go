package handler

import (
	"encoding/json"
	"errors"
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

func TestProductHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	minPrice, maxPrice := int64(100), int64(500)
	featured := true

	tests := []struct {
		name           string
		url            string
		expectedQuery  *model.ProductQuery
		mockError      error
		expectedStatus int
	}{
		{
			name: "All filters parsed",
			url:  "/api/products?category=dry-fruits&search=%20almond%20&minPrice=100&maxPrice=500&featured=true&sort=price_asc&page=2&limit=24",
			expectedQuery: &model.ProductQuery{
				Category: "dry-fruits",
				Search:   "almond",
				MinPrice: &minPrice,
				MaxPrice: &maxPrice,
				Featured: &featured,
				Sort:     model.SortPriceAsc,
				Page:     2,
				Limit:    24,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "No filters",
			url:            "/api/products",
			expectedQuery:  &model.ProductQuery{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Negative price rejected",
			url:            "/api/products?minPrice=-1",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Non-numeric limit rejected",
			url:            "/api/products?limit=ten",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown sort rejected",
			url:            "/api/products?sort=popularity",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Service internal error",
			url:            "/api/products",
			expectedQuery:  &model.ProductQuery{},
			mockError:      errors.New("database connection failed"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectedQuery != nil {
				if tt.mockError != nil {
					mockService.On("List", mock.Anything, *tt.expectedQuery).Return(nil, tt.mockError)
				} else {
					mockService.On("List", mock.Anything, *tt.expectedQuery).
						Return(&model.ProductPage{Products: []model.Product{}, Page: 1, Limit: 12}, nil)
				}
			}

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := serve(http.MethodGet, "/api/products", handler.List, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
			if tt.expectedQuery == nil {
				mockService.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestProductHandler_Get(t *testing.T) {
	logger := zerolog.Nop()
	product := &model.Product{ID: uuid.New(), Name: "Almonds", Slug: "almonds", Price: 100, IsActive: true}

	tests := []struct {
		name           string
		param          string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{name: "By slug", param: "almonds", mockReturn: product, expectedStatus: http.StatusOK},
		{name: "By id", param: product.ID.String(), mockReturn: product, expectedStatus: http.StatusOK},
		{
			name:           "Missing product is 404 here",
			param:          "ghost",
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeProductNotFound,
		},
		{
			name:           "Service internal error",
			param:          "almonds",
			mockError:      errors.New("database connection failed"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			mockService.On("Get", mock.Anything, tt.param).Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, "/api/products/"+tt.param, nil)
			w := serve(http.MethodGet, "/api/products/{idOrSlug}", handler.Get, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
			} else {
				var got model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, product.ID, got.ID)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	valid := model.ProductRequest{
		Name:   "Kashmiri Saffron",
		Price:  150,
		Images: []string{"https://cdn.example.com/saffron.jpg"},
		Stock:  10,
		Variants: []model.Variant{
			{Size: "1g", Price: 150},
			{Size: "5g", Price: 700},
		},
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Success", requestBody: valid, expectedStatus: http.StatusCreated, expectService: true},
		{
			name:           "No images",
			requestBody:    model.ProductRequest{Name: "Saffron", Price: 150},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Negative price",
			requestBody: model.ProductRequest{
				Name: "Saffron", Price: -1, Images: []string{"https://cdn.example.com/a.jpg"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{name: "Invalid JSON", requestBody: "invalid json", expectedStatus: http.StatusBadRequest},
		{
			name:           "Unknown category",
			requestBody:    valid,
			mockError:      model.ErrCategoryNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				var ret *model.Product
				if tt.mockError == nil {
					ret = &model.Product{ID: uuid.New(), Name: valid.Name, Slug: "kashmiri-saffron"}
				}
				mockService.On("Create", mock.Anything, mock.AnythingOfType("*model.ProductRequest")).Return(ret, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/products", jsonBody(t, tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := serve(http.MethodPost, "/api/products", handler.Create, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestProductHandler_Delete(t *testing.T) {
	logger := zerolog.Nop()
	id := uuid.New()

	tests := []struct {
		name           string
		url            string
		hard           bool
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Soft delete", url: "/api/products/" + id.String(), expectedStatus: http.StatusNoContent, expectService: true},
		{name: "Hard delete", url: "/api/products/" + id.String() + "?hard=true", hard: true, expectedStatus: http.StatusNoContent, expectService: true},
		{name: "Missing product", url: "/api/products/" + id.String(), mockError: model.ErrProductNotFound, expectedStatus: http.StatusNotFound, expectService: true},
		{name: "Invalid UUID format", url: "/api/products/not-a-uuid", expectedStatus: http.StatusBadRequest},
		{name: "Invalid hard flag", url: "/api/products/" + id.String() + "?hard=maybe", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Delete", mock.Anything, id, tt.hard).Return(tt.mockError)
			}

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			w := serve(http.MethodDelete, "/api/products/{id}", handler.Delete, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Update(t *testing.T) {
	logger := zerolog.Nop()
	id := uuid.New()
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger)

	body := model.ProductRequest{Name: "Almonds", Price: 120, Images: []string{"https://cdn.example.com/a.jpg"}}
	mockService.On("Update", mock.Anything, id, mock.MatchedBy(func(r *model.ProductRequest) bool {
		return r.Price == 120
	})).Return(&model.Product{ID: id, Name: "Almonds", Price: 120}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/products/"+id.String(), jsonBody(t, body))
	w := serve(http.MethodPut, "/api/products/{id}", handler.Update, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
