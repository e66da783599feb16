package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/marketplace-backend/internal/domain/order"
)

// PostgresOrderStore implements order.Store on PostgreSQL. Line items and the
// delivery confirmation are stored as JSONB; updates carry an optimistic
// version check so two concurrent status changes cannot both win.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

func (s *PostgresOrderStore) Insert(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	deliveryJSON, err := json.Marshal(o.Delivery)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, items, total, commission, status, payment_method, payment_status, shipping_address, delivery, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID, o.UserID, itemsJSON, o.Total, o.Commission, string(o.Status),
		o.PaymentMethod, o.PaymentStatus, o.Address, deliveryJSON, o.Version,
		o.CreatedAt, o.UpdatedAt,
	)
	return err
}

func (s *PostgresOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, items, total, commission, status, payment_method, payment_status, shipping_address, delivery, version, created_at, updated_at
		 FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, order.ErrNotFound
	}
	return o, err
}

// Update persists the order only if the stored version still matches the one
// the caller read. The row's version is bumped in the same statement; a
// zero-row result means either a lost race or a missing order, distinguished
// by a follow-up lookup.
func (s *PostgresOrderStore) Update(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	deliveryJSON, err := json.Marshal(o.Delivery)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE orders
		 SET items = $3, total = $4, commission = $5, status = $6,
		     payment_method = $7, payment_status = $8, shipping_address = $9,
		     delivery = $10, version = version + 1, updated_at = $11
		 WHERE id = $1 AND version = $2`,
		o.ID, o.Version, itemsJSON, o.Total, o.Commission, string(o.Status),
		o.PaymentMethod, o.PaymentStatus, o.Address, deliveryJSON, o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, getErr := s.Get(ctx, o.ID); getErr != nil {
			return getErr
		}
		return order.ErrConflict
	}
	o.Version++
	return nil
}

func (s *PostgresOrderStore) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	return s.list(ctx,
		`SELECT id, user_id, items, total, commission, status, payment_method, payment_status, shipping_address, delivery, version, created_at, updated_at
		 FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListBySupplier matches orders whose JSONB items array contains at least one
// element with the given supplier id, using the GIN-indexed containment
// operator.
func (s *PostgresOrderStore) ListBySupplier(ctx context.Context, supplierID string) ([]*order.Order, error) {
	match, err := json.Marshal([]map[string]string{{"supplier_id": supplierID}})
	if err != nil {
		return nil, err
	}
	return s.list(ctx,
		`SELECT id, user_id, items, total, commission, status, payment_method, payment_status, shipping_address, delivery, version, created_at, updated_at
		 FROM orders WHERE items @> $1 ORDER BY created_at DESC`, match)
}

func (s *PostgresOrderStore) ListAll(ctx context.Context) ([]*order.Order, error) {
	return s.list(ctx,
		`SELECT id, user_id, items, total, commission, status, payment_method, payment_status, shipping_address, delivery, version, created_at, updated_at
		 FROM orders ORDER BY created_at DESC`)
}

func (s *PostgresOrderStore) list(ctx context.Context, query string, args ...any) ([]*order.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var itemsJSON, deliveryJSON []byte
	var status string
	err := row.Scan(&o.ID, &o.UserID, &itemsJSON, &o.Total, &o.Commission,
		&status, &o.PaymentMethod, &o.PaymentStatus, &o.Address,
		&deliveryJSON, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	if len(deliveryJSON) > 0 {
		if err := json.Unmarshal(deliveryJSON, &o.Delivery); err != nil {
			return nil, fmt.Errorf("decode delivery confirmation: %w", err)
		}
	}
	return &o, nil
}
