package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/example/marketplace-backend/internal/domain/cart"
)

// PostgresCartStore implements cart.Store on PostgreSQL, one row per user.
type PostgresCartStore struct {
	db *sql.DB
}

func NewPostgresCartStore(db *sql.DB) *PostgresCartStore {
	return &PostgresCartStore{db: db}
}

func (s *PostgresCartStore) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	var c cart.Cart
	var itemsJSON []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, items, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&c.UserID, &itemsJSON, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return &cart.Cart{UserID: userID, Items: []cart.Item{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []cart.Item{}
	}
	return &c, nil
}

func (s *PostgresCartStore) Save(ctx context.Context, c *cart.Cart) error {
	itemsJSON, err := json.Marshal(c.Items)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO carts (user_id, items, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET
			items = EXCLUDED.items,
			updated_at = EXCLUDED.updated_at`,
		c.UserID, itemsJSON, time.Now(),
	)
	return err
}

func (s *PostgresCartStore) Clear(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO carts (user_id, items, updated_at)
		 VALUES ($1, '[]', $2)
		 ON CONFLICT (user_id) DO UPDATE SET
			items = '[]',
			updated_at = EXCLUDED.updated_at`,
		userID, time.Now(),
	)
	return err
}
