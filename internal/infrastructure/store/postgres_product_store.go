package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/example/marketplace-backend/internal/domain/product"
)

// PostgresProductStore implements product.Store on PostgreSQL.
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) Insert(ctx context.Context, p *product.Product) error {
	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO products (id, supplier_id, name, description, price, stock, images, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.SupplierID, p.Name, p.Description, p.Price, p.Stock, imagesJSON, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *PostgresProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, supplier_id, name, description, price, stock, images, active, created_at, updated_at
		 FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, product.ErrNotFound
	}
	return p, err
}

func (s *PostgresProductStore) Update(ctx context.Context, p *product.Product) error {
	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4, stock = $5, images = $6, active = $7, updated_at = $8
		 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, imagesJSON, p.Active, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (s *PostgresProductStore) ListBySupplier(ctx context.Context, supplierID string) ([]*product.Product, error) {
	return s.list(ctx,
		`SELECT id, supplier_id, name, description, price, stock, images, active, created_at, updated_at
		 FROM products WHERE supplier_id = $1 ORDER BY created_at DESC`, supplierID)
}

func (s *PostgresProductStore) ListActive(ctx context.Context) ([]*product.Product, error) {
	return s.list(ctx,
		`SELECT id, supplier_id, name, description, price, stock, images, active, created_at, updated_at
		 FROM products WHERE active = true ORDER BY created_at DESC`)
}

// ReserveStock decrements stock with the availability check folded into the
// statement itself. The database applies the check and the decrement as one
// atomic operation, so oversells cannot happen under concurrent orders.
func (s *PostgresProductStore) ReserveStock(ctx context.Context, productID string, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW()
		 WHERE id = $1 AND stock >= $2`,
		productID, quantity,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, getErr := s.Get(ctx, productID); getErr != nil {
			return getErr
		}
		return product.ErrInsufficientStock
	}
	return nil
}

func (s *PostgresProductStore) RestoreStock(ctx context.Context, productID string, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (s *PostgresProductStore) list(ctx context.Context, query string, args ...any) ([]*product.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var p product.Product
	var imagesJSON []byte
	err := row.Scan(&p.ID, &p.SupplierID, &p.Name, &p.Description, &p.Price,
		&p.Stock, &imagesJSON, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
