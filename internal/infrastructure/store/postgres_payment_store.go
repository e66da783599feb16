package store

import (
	"context"
	"database/sql"

	"github.com/example/marketplace-backend/internal/domain/payment"
)

// PostgresPaymentStore implements payment.Store on PostgreSQL.
type PostgresPaymentStore struct {
	db *sql.DB
}

func NewPostgresPaymentStore(db *sql.DB) *PostgresPaymentStore {
	return &PostgresPaymentStore{db: db}
}

func (s *PostgresPaymentStore) Insert(ctx context.Context, p *payment.Payment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, order_id, user_id, supplier_id, method, status, amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.OrderID, p.UserID, nullable(p.SupplierID), p.Method, p.Status, p.Amount, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *PostgresPaymentStore) GetByOrder(ctx context.Context, orderID string) (*payment.Payment, error) {
	var (
		p          payment.Payment
		supplierID sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, order_id, user_id, supplier_id, method, status, amount, created_at, updated_at
		 FROM payments WHERE order_id = $1
		 ORDER BY created_at DESC LIMIT 1`, orderID,
	).Scan(&p.ID, &p.OrderID, &p.UserID, &supplierID, &p.Method, &p.Status, &p.Amount, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.SupplierID = supplierID.String
	return &p, nil
}

func (s *PostgresPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payments SET status = $2, amount = $3, supplier_id = $4, updated_at = $5 WHERE id = $1`,
		p.ID, p.Status, p.Amount, nullable(p.SupplierID), p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return payment.ErrNotFound
	}
	return nil
}

func (s *PostgresPaymentStore) ListByUser(ctx context.Context, userID string) ([]*payment.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, order_id, user_id, supplier_id, method, status, amount, created_at, updated_at
		 FROM payments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		var (
			p          payment.Payment
			supplierID sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.OrderID, &p.UserID, &supplierID, &p.Method, &p.Status, &p.Amount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.SupplierID = supplierID.String
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

// nullable maps an empty string to SQL NULL for optional UUID columns.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
