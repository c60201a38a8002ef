// internal/infra/database/postgres_order_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"foodtruck_order_notifier/internal/domain/order"

	"github.com/lib/pq" // For pq.Array and driver registration
)

// Custom errors specific to the order repository
var ErrOrderNotFound = fmt.Errorf("order not found")

// PostgresOrderRepository implements order.Gateway over the 'orders' and
// 'order_items' tables.
type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

const orderColumns = `id, merchant_id, status, pickup_time, created_at, customer_name, customer_email, customer_phone, total_amount`

func (r *PostgresOrderRepository) FetchOrders(ctx context.Context, f order.Filter) ([]*order.Order, error) {
	query := `SELECT ` + orderColumns + `
              FROM orders
              WHERE merchant_id = $1 AND pickup_time >= $2 AND pickup_time < $3 AND status = ANY($4)
              ORDER BY pickup_time ASC`

	statuses := make([]string, 0, len(f.Statuses))
	for _, s := range f.Statuses {
		statuses = append(statuses, string(s))
	}

	rows, err := r.db.QueryContext(ctx, query, f.MerchantID, f.From, f.To, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("error fetching orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresOrderRepository) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	o, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("error getting order by ID: %w", err)
	}
	if err := r.attachItems(ctx, []*order.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresOrderRepository) UpdateOrder(ctx context.Context, id string, p order.Patch) (*order.Order, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	next := 1

	if p.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", next))
		args = append(args, string(*p.Status))
		next++
	}
	if p.PickupTime != nil {
		sets = append(sets, fmt.Sprintf("pickup_time = $%d", next))
		args = append(args, *p.PickupTime)
		next++
	}
	if p.CancelReason != nil {
		sets = append(sets, fmt.Sprintf("cancel_reason = $%d", next))
		args = append(args, *p.CancelReason)
		next++
	}

	query := fmt.Sprintf(`UPDATE orders SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), next, orderColumns)
	args = append(args, id)

	row := r.db.QueryRowContext(ctx, query, args...)
	o, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("error updating order %s: %w", id, err)
	}
	if err := r.attachItems(ctx, []*order.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// attachItems loads line items for the given orders in one round trip.
func (r *PostgresOrderRepository) attachItems(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*order.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	query := `SELECT order_id, name, quantity, unit_price FROM order_items WHERE order_id = ANY($1) ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error fetching order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item order.Item
		if err := rows.Scan(&orderID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("error scanning order item row: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order item rows: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	o := &order.Order{}
	var email, phone sql.NullString
	err := row.Scan(&o.ID, &o.MerchantID, &o.Status, &o.PickupTime, &o.CreatedAt,
		&o.CustomerName, &email, &phone, &o.Total)
	if err != nil {
		return nil, err
	}
	o.CustomerEmail = email.String
	o.CustomerPhone = phone.String
	return o, nil
}
