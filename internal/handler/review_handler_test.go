package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReviewHandler_Add(t *testing.T) {
	logger := zerolog.Nop()
	caller := model.Principal{UserID: uuid.New(), Role: model.RoleCustomer}
	productID := uuid.New()

	tests := []struct {
		name           string
		requestBody    interface{}
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Success", requestBody: model.ReviewRequest{Rating: 5, Comment: "Fresh and crunchy"}, expectedStatus: http.StatusCreated, expectService: true},
		{name: "Second review", requestBody: model.ReviewRequest{Rating: 4, Comment: "Again"}, mockError: model.ErrAlreadyReviewed, expectedStatus: http.StatusConflict, expectService: true},
		{name: "Missing product", requestBody: model.ReviewRequest{Rating: 4, Comment: "Hmm"}, mockError: model.ErrProductNotFound, expectedStatus: http.StatusNotFound, expectService: true},
		{name: "Admin may not review", requestBody: model.ReviewRequest{Rating: 4, Comment: "Hmm"}, mockError: model.ErrForbidden, expectedStatus: http.StatusForbidden, expectService: true},
		{name: "Rating out of range", requestBody: model.ReviewRequest{Rating: 6, Comment: "Too good"}, expectedStatus: http.StatusBadRequest},
		{name: "Missing comment", requestBody: model.ReviewRequest{Rating: 3}, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockReviewService)
			handler := NewReviewHandler(mockService, logger)

			if tt.expectService {
				var ret *model.Review
				if tt.mockError == nil {
					ret = &model.Review{ID: uuid.New(), ProductID: productID, UserID: caller.UserID, Rating: 5}
				}
				mockService.On("Add", mock.Anything, caller, productID, mock.AnythingOfType("*model.ReviewRequest")).Return(ret, tt.mockError)
			}

			req := asCaller(httptest.NewRequest(http.MethodPost, "/api/products/"+productID.String()+"/review", jsonBody(t, tt.requestBody)), caller)
			w := serve(http.MethodPost, "/api/products/{id}/review", handler.Add, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestReviewHandler_AdminOps(t *testing.T) {
	logger := zerolog.Nop()
	productID, reviewID := uuid.New(), uuid.New()

	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService, logger)
	mockService.On("List", mock.Anything, productID).Return([]model.Review{{ID: reviewID, Rating: 4}}, nil)
	mockService.On("Update", mock.Anything, productID, reviewID, mock.AnythingOfType("*model.ReviewRequest")).
		Return(&model.Review{ID: reviewID, Rating: 2}, nil)
	mockService.On("Delete", mock.Anything, productID, reviewID).Return(nil)

	base := "/api/products/" + productID.String()

	w := serve(http.MethodGet, "/api/products/{id}/reviews", handler.List,
		httptest.NewRequest(http.MethodGet, base+"/reviews", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodPut, "/api/products/{id}/reviews/{reviewId}", handler.Update,
		httptest.NewRequest(http.MethodPut, base+"/reviews/"+reviewID.String(), jsonBody(t, model.ReviewRequest{Rating: 2, Comment: "Stale"})))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodDelete, "/api/products/{id}/reviews/{reviewId}", handler.Delete,
		httptest.NewRequest(http.MethodDelete, base+"/reviews/"+reviewID.String(), nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(http.MethodDelete, "/api/products/{id}/reviews/{reviewId}", handler.Delete,
		httptest.NewRequest(http.MethodDelete, base+"/reviews/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertExpectations(t)
}
