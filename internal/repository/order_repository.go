package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, user_id, order_number, shipping_address, payment_method, payment_status, status,
	items_price, shipping_price, tax_price, total_price, is_gift_box, notes, delivered_at, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &o.ShippingAddress, &o.PaymentMethod, &o.PaymentStatus, &o.Status,
		&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice, &o.IsGiftBox, &o.Notes,
		&o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, order_number, shipping_address, payment_method, payment_status,
			status, items_price, shipping_price, tax_price, total_price, is_gift_box, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.OrderNumber, order.ShippingAddress, order.PaymentMethod,
		order.PaymentStatus, order.Status, order.ItemsPrice, order.ShippingPrice, order.TaxPrice,
		order.TotalPrice, order.IsGiftBox, order.Notes, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "orders_order_number_key") {
			return model.ErrAlreadyExists.WithMessage("Order number collision")
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, position, product_id, name, image, price, quantity, variant_size, variant_sku)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(query, item.ID, item.OrderID, i, item.ProductID, item.Name, item.Image,
			item.Price, item.Quantity, item.VariantSize, item.VariantSKU)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// AppendStatus adds a status history entry within the provided transaction.
func (r *orderRepository) AppendStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, entry model.StatusEntry) error {
	_, err := tx.Exec(ctx,
		"INSERT INTO order_status_history (order_id, status, note, created_at) VALUES ($1, $2, $3, $4)",
		orderID, entry.Status, entry.Note, entry.Timestamp,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to append status history")
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID along with its items and history.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.getOne(ctx, r.pool, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
}

// GetByNumber retrieves an order by its order number along with its items and history.
func (r *orderRepository) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return r.getOne(ctx, r.pool, "SELECT "+orderColumns+" FROM orders WHERE order_number = $1",
		strings.ToUpper(orderNumber))
}

// GetForUpdate locks the order row for the rest of tx.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	return r.getOne(ctx, tx, "SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", id)
}

func (r *orderRepository) getOne(ctx context.Context, q querier, query string, arg any) (*model.Order, error) {
	order, err := scanOrder(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order", fmt.Sprint(arg)).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order", fmt.Sprint(arg)).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	orders := []model.Order{*order}
	if err := r.attachDetails(ctx, q, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

// List returns one page of orders, newest first, and the total match count.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error) {
	var conds []string
	var args []any
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders "+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM orders %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d",
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}
	rows.Close()

	if err := r.attachDetails(ctx, r.pool, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// attachDetails loads items and status history for orders in two queries.
func (r *orderRepository) attachDetails(ctx context.Context, q querier, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []model.OrderItem{}
		orders[i].StatusHistory = []model.StatusEntry{}
	}

	itemRows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, name, image, price, quantity, variant_size, variant_sku
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`,
		ids,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order items")
		return fmt.Errorf("failed to query order items: %w", err)
	}
	for itemRows.Next() {
		var item model.OrderItem
		err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Image,
			&item.Price, &item.Quantity, &item.VariantSize, &item.VariantSKU)
		if err != nil {
			itemRows.Close()
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		o := &orders[index[item.OrderID]]
		o.Items = append(o.Items, item)
	}
	itemRows.Close()
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	historyRows, err := q.Query(ctx, `
		SELECT order_id, status, note, created_at
		FROM order_status_history
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`,
		ids,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query status history")
		return fmt.Errorf("failed to query status history: %w", err)
	}
	defer historyRows.Close()

	for historyRows.Next() {
		var orderID uuid.UUID
		var entry model.StatusEntry
		if err := historyRows.Scan(&orderID, &entry.Status, &entry.Note, &entry.Timestamp); err != nil {
			return fmt.Errorf("failed to scan status history: %w", err)
		}
		o := &orders[index[orderID]]
		o.StatusHistory = append(o.StatusHistory, entry)
	}

	if err := historyRows.Err(); err != nil {
		return fmt.Errorf("error iterating status history: %w", err)
	}

	return nil
}

// UpdateStatus persists status, payment status and delivery time.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	_, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_status = $3, delivered_at = $4, updated_at = $5
		WHERE id = $1`,
		order.ID, order.Status, order.PaymentStatus, order.DeliveredAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// UpdatePaymentStatus sets the payment status only.
func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE orders SET payment_status = $2, updated_at = NOW() WHERE id = $1", id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update payment status")
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
