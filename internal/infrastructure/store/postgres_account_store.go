package store

import (
	"context"
	"database/sql"

	"github.com/example/marketplace-backend/internal/domain/account"
)

// PostgresUserStore implements account.UserStore on PostgreSQL.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Insert(ctx context.Context, u *account.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.CreatedAt,
	)
	return err
}

func (s *PostgresUserStore) Get(ctx context.Context, id string) (*account.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, name, created_at FROM users WHERE id = $1`, id)
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, name, created_at FROM users WHERE lower(email) = lower($1)`, email)
}

func (s *PostgresUserStore) getUser(ctx context.Context, query, arg string) (*account.User, error) {
	var u account.User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// PostgresSupplierStore implements account.SupplierStore on PostgreSQL.
type PostgresSupplierStore struct {
	db *sql.DB
}

func NewPostgresSupplierStore(db *sql.DB) *PostgresSupplierStore {
	return &PostgresSupplierStore{db: db}
}

func (s *PostgresSupplierStore) Insert(ctx context.Context, sup *account.Supplier) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO suppliers (id, email, password_hash, name, commission_rate, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sup.ID, sup.Email, sup.PasswordHash, sup.Name, sup.CommissionRate, sup.CreatedAt,
	)
	return err
}

func (s *PostgresSupplierStore) Get(ctx context.Context, id string) (*account.Supplier, error) {
	return s.getSupplier(ctx, `SELECT id, email, password_hash, name, commission_rate, created_at FROM suppliers WHERE id = $1`, id)
}

func (s *PostgresSupplierStore) GetByEmail(ctx context.Context, email string) (*account.Supplier, error) {
	return s.getSupplier(ctx, `SELECT id, email, password_hash, name, commission_rate, created_at FROM suppliers WHERE lower(email) = lower($1)`, email)
}

func (s *PostgresSupplierStore) getSupplier(ctx context.Context, query, arg string) (*account.Supplier, error) {
	var sup account.Supplier
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&sup.ID, &sup.Email, &sup.PasswordHash, &sup.Name, &sup.CommissionRate, &sup.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sup, nil
}
