package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, query model.ProductQuery) (*model.ProductPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, idOrSlug string) (*model.Product, error) {
	args := m.Called(ctx, idOrSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, req *model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID, hard bool) error {
	args := m.Called(ctx, id, hard)
	return args.Error(0)
}

// MockCategoryService is a mock implementation of CategoryService.
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryService) Get(ctx context.Context, idOrSlug string) (*model.Category, error) {
	args := m.Called(ctx, idOrSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id uuid.UUID, req *model.CategoryRequest) (*model.Category, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*model.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	return m.cart(m.Called(ctx, userID))
}

func (m *MockCartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.Cart, error) {
	return m.cart(m.Called(ctx, userID, req))
}

func (m *MockCartService) SetQuantity(ctx context.Context, userID uuid.UUID, req *model.UpdateCartRequest) (*model.Cart, error) {
	return m.cart(m.Called(ctx, userID, req))
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID, variantSize string) (*model.Cart, error) {
	return m.cart(m.Called(ctx, userID, productID, variantSize))
}

func (m *MockCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCartService) GetGuest(ctx context.Context, guestID string) (*model.Cart, error) {
	return m.cart(m.Called(ctx, guestID))
}

func (m *MockCartService) AddGuestItem(ctx context.Context, guestID string, req *model.AddToCartRequest) (*model.Cart, error) {
	return m.cart(m.Called(ctx, guestID, req))
}

func (m *MockCartService) SetGuestQuantity(ctx context.Context, guestID string, req *model.UpdateCartRequest) (*model.Cart, error) {
	return m.cart(m.Called(ctx, guestID, req))
}

func (m *MockCartService) RemoveGuestItem(ctx context.Context, guestID string, productID uuid.UUID, variantSize string) (*model.Cart, error) {
	return m.cart(m.Called(ctx, guestID, productID, variantSize))
}

func (m *MockCartService) ClearGuest(ctx context.Context, guestID string) error {
	return m.Called(ctx, guestID).Error(0)
}

func (m *MockCartService) MergeGuestCart(ctx context.Context, userID uuid.UUID, guestID string) (*model.Cart, error) {
	return m.cart(m.Called(ctx, userID, guestID))
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Create(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, userID, req))
}

func (m *MockOrderService) TransitionStatus(ctx context.Context, id uuid.UUID, req *model.UpdateStatusRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, id, req))
}

func (m *MockOrderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Order, error) {
	return m.order(m.Called(ctx, id, status))
}

func (m *MockOrderService) Track(ctx context.Context, orderNumber string) (*model.OrderTracking, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderTracking), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, caller, id))
}

func (m *MockOrderService) ListMine(ctx context.Context, userID uuid.UUID, page, limit int) (*model.OrderPage, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context, status *model.OrderStatus, page, limit int) (*model.OrderPage, error) {
	args := m.Called(ctx, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

// MockReviewService is a mock implementation of ReviewService.
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Add(ctx context.Context, caller model.Principal, productID uuid.UUID, req *model.ReviewRequest) (*model.Review, error) {
	args := m.Called(ctx, caller, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, productID, reviewID uuid.UUID, req *model.ReviewRequest) (*model.Review, error) {
	args := m.Called(ctx, productID, reviewID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, productID, reviewID uuid.UUID) error {
	return m.Called(ctx, productID, reviewID).Error(0)
}

func (m *MockReviewService) List(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Review), args.Error(1)
}

// MockWholesaleService is a mock implementation of WholesaleService.
type MockWholesaleService struct {
	mock.Mock
}

func (m *MockWholesaleService) account(args mock.Arguments) (*model.WholesaleAccount, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WholesaleAccount), args.Error(1)
}

func (m *MockWholesaleService) Register(ctx context.Context, userID uuid.UUID, profile *model.BusinessProfile) (*model.WholesaleAccount, error) {
	return m.account(m.Called(ctx, userID, profile))
}

func (m *MockWholesaleService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.WholesaleAccount, error) {
	return m.account(m.Called(ctx, userID))
}

func (m *MockWholesaleService) GetPricing(ctx context.Context, userID uuid.UUID) (*model.WholesalePricing, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WholesalePricing), args.Error(1)
}

func (m *MockWholesaleService) Approve(ctx context.Context, id uuid.UUID, req *model.ApproveWholesaleRequest) (*model.WholesaleAccount, error) {
	return m.account(m.Called(ctx, id, req))
}

func (m *MockWholesaleService) List(ctx context.Context, approved *bool) ([]model.WholesaleAccount, error) {
	args := m.Called(ctx, approved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WholesaleAccount), args.Error(1)
}

func (m *MockWholesaleService) PriceList(ctx context.Context, userID uuid.UUID, page, limit int) (*model.WholesalePriceList, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WholesalePriceList), args.Error(1)
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

// MockUploader is a mock implementation of media.Uploader.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*model.Image, error) {
	args := m.Called(ctx, filename, contentType, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Image), args.Error(1)
}

func (m *MockUploader) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// jsonBody marshals v, or passes a string through unchanged.
func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	if v == nil {
		return http.NoBody
	}
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// serve routes req through a chi router with a single route so URL
// parameters resolve as they do in production.
func serve(method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func asCaller(req *http.Request, p model.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), p))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
