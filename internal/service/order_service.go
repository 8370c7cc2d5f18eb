package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	notifier    OrderNotifier
	pricing     config.PricingConfig
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	notifier OrderNotifier,
	pricingCfg config.PricingConfig,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		notifier:    notifier,
		pricing:     pricingCfg,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create places an order. Prices are checked against the locked catalogue
// rows and stock is taken in the same transaction that writes the order.
func (s *orderService) Create(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (_ *model.Order, err error) {
	if err = validateOrderRequest(req); err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(req.Items))
	productIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
	}

	// Start transaction
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Prices are checked against rows locked by this transaction, so an
	// admin edit either lands before the check or waits for the commit.
	var products []model.Product
	products, err = s.productRepo.GetByIDsForUpdate(ctx, tx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Int("product_count", len(productIDs)).Msg("failed to load products")
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	catalog := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	var resolved []pricing.ResolvedItem
	resolved, err = pricing.ValidatePrices(req.Items, catalog)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("order rejected by price validation")
		return nil, err
	}

	now := s.now()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		OrderNumber:     newOrderNumber(now),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   model.PaymentPending,
		Status:          model.StatusPending,
		IsGiftBox:       req.IsGiftBox,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	order.Items = make([]model.OrderItem, len(resolved))
	quantities := make(map[uuid.UUID]int, len(productIDs))
	for i, r := range resolved {
		item := model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: r.Product.ID,
			Name:      r.Product.Name,
			Image:     r.Product.PrimaryImage(),
			Price:     r.Request.Price,
			Quantity:  r.Request.Quantity,
		}
		if r.Variant != nil {
			item.VariantSize = r.Variant.Size
			item.VariantSKU = r.Variant.SKU
		}
		order.Items[i] = item
		quantities[item.ProductID] += item.Quantity
	}

	totals := pricing.ComputeTotals(order.Items, s.pricing.ShippingFee, s.pricing.TaxPercentage)
	order.ItemsPrice = totals.ItemsPrice
	order.ShippingPrice = totals.ShippingPrice
	order.TaxPrice = totals.TaxPrice
	order.TotalPrice = totals.TotalPrice

	placed := model.StatusEntry{Status: model.StatusPending, Note: "Order placed", Timestamp: now}
	order.StatusHistory = []model.StatusEntry{placed}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(order.Items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = s.orderRepo.AppendStatus(ctx, tx, order.ID, placed); err != nil {
		return nil, fmt.Errorf("failed to record order status: %w", err)
	}

	for _, id := range productIDs {
		var ok bool
		ok, err = s.productRepo.DecrementStock(ctx, tx, id, quantities[id])
		if err != nil {
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		if !ok {
			err = model.ErrOutOfStock.WithMessage(
				fmt.Sprintf("Insufficient stock for %s", catalog[id].Name))
			s.logger.Warn().
				Str("product_id", id.String()).
				Int("quantity", quantities[id]).
				Msg("insufficient stock")
			return nil, err
		}
	}

	// Commit transaction
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(order.Items)).
		Int64("total_price", order.TotalPrice).
		Msg("order created successfully")

	if cerr := s.cartRepo.Clear(ctx, userID); cerr != nil {
		s.logger.Warn().Err(cerr).Str("user_id", userID.String()).Msg("failed to clear cart after order")
	}
	if nerr := s.notifier.OrderPlaced(ctx, order); nerr != nil {
		s.logger.Warn().Err(nerr).Str("order_number", order.OrderNumber).Msg("failed to enqueue order confirmation")
	}

	return order, nil
}

// TransitionStatus applies one state machine step. Delivery marks the order
// paid; cancellation returns the reserved stock.
func (s *orderService) TransitionStatus(ctx context.Context, id uuid.UUID, req *model.UpdateStatusRequest) (_ *model.Order, err error) {
	if !req.Status.Valid() {
		return nil, model.ErrValidationFailed.WithMessage(fmt.Sprintf("Unknown order status %q", req.Status))
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if !order.Status.CanTransitionTo(req.Status) {
		err = model.ErrInvalidStatusTransition.WithMessage(
			fmt.Sprintf("Cannot change order status from %s to %s", order.Status, req.Status))
		return nil, err
	}

	now := s.now()
	entry := model.StatusEntry{Status: req.Status, Note: req.Note, Timestamp: now}

	order.Status = req.Status
	order.UpdatedAt = now
	switch req.Status {
	case model.StatusDelivered:
		order.DeliveredAt = &now
		order.PaymentStatus = model.PaymentPaid
	case model.StatusCancelled:
		for _, item := range order.Items {
			if err = s.productRepo.IncrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return nil, fmt.Errorf("failed to restore stock: %w", err)
			}
		}
	}

	if err = s.orderRepo.AppendStatus(ctx, tx, order.ID, entry); err != nil {
		return nil, fmt.Errorf("failed to record order status: %w", err)
	}
	if err = s.orderRepo.UpdateStatus(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.StatusHistory = append(order.StatusHistory, entry)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("status", string(order.Status)).
		Msg("order status updated")

	if nerr := s.notifier.StatusChanged(ctx, order, entry); nerr != nil {
		s.logger.Warn().Err(nerr).Str("order_number", order.OrderNumber).Msg("failed to enqueue status notification")
	}

	return order, nil
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrValidationFailed.WithMessage(fmt.Sprintf("Unknown payment status %q", status))
	}

	found, err := s.orderRepo.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", id.String()).Str("payment_status", string(status)).Msg("payment status updated")
	return s.load(ctx, id)
}

func (s *orderService) Track(ctx context.Context, orderNumber string) (*model.OrderTracking, error) {
	order, err := s.orderRepo.GetByNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order.Tracking(), nil
}

func (s *orderService) Get(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && order.UserID != caller.UserID {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("user_id", caller.UserID.String()).
			Msg("order access denied")
		return nil, model.ErrForbidden
	}
	return order, nil
}

func (s *orderService) ListMine(ctx context.Context, userID uuid.UUID, page, limit int) (*model.OrderPage, error) {
	return s.list(ctx, model.OrderFilter{UserID: &userID}, page, limit)
}

func (s *orderService) ListAll(ctx context.Context, status *model.OrderStatus, page, limit int) (*model.OrderPage, error) {
	if status != nil && !status.Valid() {
		return nil, model.ErrValidationFailed.WithMessage(fmt.Sprintf("Unknown order status %q", *status))
	}
	return s.list(ctx, model.OrderFilter{Status: status}, page, limit)
}

func (s *orderService) list(ctx context.Context, filter model.OrderFilter, page, limit int) (*model.OrderPage, error) {
	page, limit, offset := normalisePage(page, limit)
	filter.Limit = limit
	filter.Offset = offset

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &model.OrderPage{
		Orders:     orders,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *orderService) load(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// validateOrderRequest checks what struct tags cannot express.
func validateOrderRequest(req *model.CreateOrderRequest) error {
	if req == nil || len(req.Items) == 0 {
		return model.ErrValidationFailed.WithMessage("Order must contain at least one item")
	}
	if !req.PaymentMethod.Valid() {
		return model.ErrValidationFailed.WithMessage(fmt.Sprintf("Unsupported payment method %q", req.PaymentMethod))
	}
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return model.ErrValidationFailed.WithMessage(fmt.Sprintf("Item %d: quantity must be at least 1", i))
		}
	}
	return nil
}

// newOrderNumber returns ORD-<base36 milliseconds>-<8 random base36 chars>.
func newOrderNumber(now time.Time) string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = base36[int(b)%len(base36)]
	}
	return strings.ToUpper("ORD-" + strconv.FormatInt(now.UnixMilli(), 36) + "-" + string(buf))
}
