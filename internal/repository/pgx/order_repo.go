package pgxrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ghorihut-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrOrderNotFound = errors.New("order not found")

type orderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `id, user_id, status, subtotal, discount_amount, coupon_code,
	shipping_fee, free_shipping, shipping_zone_key, total_amount, shipping_address,
	payment_method, payment_status, payment_details, created_at, updated_at`

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	q := db(ctx, r.pool)

	_, err := q.Exec(ctx,
		`INSERT INTO orders (id, user_id, status, subtotal, discount_amount, coupon_code,
		   shipping_fee, free_shipping, shipping_zone_key, total_amount, shipping_address,
		   payment_method, payment_status, payment_details)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		order.ID, order.UserID, order.Status, order.Subtotal, order.DiscountAmount,
		order.CouponCode, order.ShippingFee, order.FreeShipping, order.ShippingZoneKey,
		order.TotalAmount, order.ShippingAddress, order.PaymentMethod,
		order.PaymentStatus, order.PaymentDetails,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err := q.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity, price)
			 VALUES ($1,$2,$3,$4,$5)`,
			item.ID, order.ID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := db(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, err
	}

	items, err := r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.getItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *orderRepository) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if filter.PaymentStatus != "" {
		where = append(where, "payment_status = "+arg(filter.PaymentStatus))
	}
	if filter.Search != "" {
		where = append(where, "(id::text ILIKE "+arg("%"+filter.Search+"%")+" OR user_id::text = "+arg(filter.Search)+")")
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE `+whereClause+
			` ORDER BY created_at DESC LIMIT `+arg(int32(limit))+` OFFSET `+arg(int32(offset)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	tag, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) CreateOrderHistory(ctx context.Context, h *domain.OrderHistory) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`INSERT INTO order_history (id, order_id, previous_status, new_status, reason, created_by)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		h.ID, h.OrderID, h.PreviousStatus, h.NewStatus, h.Reason, h.CreatedBy)
	return err
}

func (r *orderRepository) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT id, order_id, previous_status, new_status, reason, created_by, created_at
		 FROM order_history WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.OrderHistory
	for rows.Next() {
		var h domain.OrderHistory
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&h.ID, &h.OrderID, &h.PreviousStatus, &h.NewStatus,
			&h.Reason, &h.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		h.CreatedAt = createdAt.Time
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *orderRepository) getItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
		        p.name, p.slug, p.brand
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.Price,
			&item.Product.Name, &item.Product.Slug, &item.Product.Brand); err != nil {
			return nil, err
		}
		item.Product.ID = item.ProductID
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o                    domain.Order
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.Subtotal, &o.DiscountAmount,
		&o.CouponCode, &o.ShippingFee, &o.FreeShipping, &o.ShippingZoneKey,
		&o.TotalAmount, &o.ShippingAddress, &o.PaymentMethod, &o.PaymentStatus,
		&o.PaymentDetails, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time
	return &o, nil
}
