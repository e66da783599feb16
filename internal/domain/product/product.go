package product

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidPrice      = errors.New("price must be positive")
	ErrInvalidStock      = errors.New("stock must not be negative")
	ErrNotOwnedByActor   = errors.New("product belongs to another supplier")
)

type Product struct {
	ID          string    `json:"id"`
	SupplierID  string    `json:"supplier_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	Stock       int       `json:"stock"`
	Images      []string  `json:"images"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Thumbnail returns the first image, if any, for line-item snapshots.
func (p *Product) Thumbnail() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// Store is the persistence contract for products. ReserveStock and
// RestoreStock are the Inventory Ledger primitives: ReserveStock must apply
// the check-and-decrement as a single atomic conditional update, never a
// read-then-write.
type Store interface {
	Insert(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	ListBySupplier(ctx context.Context, supplierID string) ([]*Product, error)
	ListActive(ctx context.Context) ([]*Product, error)

	ReserveStock(ctx context.Context, productID string, quantity int) error
	RestoreStock(ctx context.Context, productID string, quantity int) error
}

// Service covers the catalog operations the order subsystem depends on:
// suppliers maintaining products whose stock the ledger consumes.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, supplierID, name, description string, price, stock int, images []string) (*Product, error) {
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	now := time.Now()
	p := &Product{
		ID:          uuid.New().String(),
		SupplierID:  supplierID,
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		Images:      images,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, supplierID, productID, name, description string, price, stock int, images []string) (*Product, error) {
	p, err := s.store.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.SupplierID != supplierID {
		return nil, ErrNotOwnedByActor
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	p.Name = name
	p.Description = description
	p.Price = price
	p.Stock = stock
	if images != nil {
		p.Images = images
	}
	p.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListActive(ctx context.Context) ([]*Product, error) {
	return s.store.ListActive(ctx)
}

func (s *Service) ListBySupplier(ctx context.Context, supplierID string) ([]*Product, error) {
	return s.store.ListBySupplier(ctx, supplierID)
}
