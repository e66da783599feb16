package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/marketplace-backend/internal/domain/account"
	"github.com/example/marketplace-backend/internal/domain/cart"
	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/domain/payment"
	"github.com/example/marketplace-backend/internal/domain/product"
)

// In-memory store implementations. Used by tests and as a dependency-free
// local backend; they honor the same atomicity contracts as the SQL stores
// by doing each check-and-set under a single mutex hold.

// MemoryProductStore implements product.Store.
type MemoryProductStore struct {
	mu       sync.RWMutex
	products map[string]product.Product
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{products: make(map[string]product.Product)}
}

func (s *MemoryProductStore) Insert(ctx context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (s *MemoryProductStore) Update(ctx context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return product.ErrNotFound
	}
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryProductStore) ListBySupplier(ctx context.Context, supplierID string) ([]*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*product.Product
	for _, p := range s.products {
		if p.SupplierID == supplierID {
			copied := p
			out = append(out, &copied)
		}
	}
	sortProductsNewestFirst(out)
	return out, nil
}

func (s *MemoryProductStore) ListActive(ctx context.Context) ([]*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*product.Product
	for _, p := range s.products {
		if p.Active {
			copied := p
			out = append(out, &copied)
		}
	}
	sortProductsNewestFirst(out)
	return out, nil
}

// ReserveStock applies the conditional decrement under one lock hold: two
// concurrent reservations can never both succeed past the available stock.
func (s *MemoryProductStore) ReserveStock(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return product.ErrNotFound
	}
	if p.Stock < quantity {
		return product.ErrInsufficientStock
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now()
	s.products[productID] = p
	return nil
}

func (s *MemoryProductStore) RestoreStock(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return product.ErrNotFound
	}
	p.Stock += quantity
	p.UpdatedAt = time.Now()
	s.products[productID] = p
	return nil
}

func sortProductsNewestFirst(ps []*product.Product) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].CreatedAt.After(ps[j].CreatedAt) })
}

// MemoryOrderStore implements order.Store with an optimistic version check.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]order.Order)}
}

func (s *MemoryOrderStore) Insert(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *o
	return nil
}

func (s *MemoryOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (s *MemoryOrderStore) Update(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.orders[o.ID]
	if !ok {
		return order.ErrNotFound
	}
	if current.Version != o.Version {
		return order.ErrConflict
	}
	o.Version++
	s.orders[o.ID] = *o
	return nil
}

func (s *MemoryOrderStore) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*order.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			copied := o
			out = append(out, &copied)
		}
	}
	sortOrdersNewestFirst(out)
	return out, nil
}

func (s *MemoryOrderStore) ListBySupplier(ctx context.Context, supplierID string) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*order.Order
	for _, o := range s.orders {
		if o.ContainsSupplier(supplierID) {
			copied := o
			out = append(out, &copied)
		}
	}
	sortOrdersNewestFirst(out)
	return out, nil
}

func (s *MemoryOrderStore) ListAll(ctx context.Context) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		copied := o
		out = append(out, &copied)
	}
	sortOrdersNewestFirst(out)
	return out, nil
}

func sortOrdersNewestFirst(os []*order.Order) {
	sort.Slice(os, func(i, j int) bool { return os[i].CreatedAt.After(os[j].CreatedAt) })
}

// MemoryCartStore implements cart.Store.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]cart.Cart
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]cart.Cart)}
}

func (s *MemoryCartStore) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[userID]
	if !ok {
		return &cart.Cart{UserID: userID, Items: []cart.Item{}}, nil
	}
	copied := c
	copied.Items = append([]cart.Item(nil), c.Items...)
	return &copied, nil
}

func (s *MemoryCartStore) Save(ctx context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *c
	copied.Items = append([]cart.Item(nil), c.Items...)
	s.carts[c.UserID] = copied
	return nil
}

func (s *MemoryCartStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = cart.Cart{UserID: userID, Items: []cart.Item{}, UpdatedAt: time.Now()}
	return nil
}

// MemoryPaymentStore implements payment.Store.
type MemoryPaymentStore struct {
	mu       sync.RWMutex
	payments map[string]payment.Payment // keyed by payment id
}

func NewMemoryPaymentStore() *MemoryPaymentStore {
	return &MemoryPaymentStore{payments: make(map[string]payment.Payment)}
}

func (s *MemoryPaymentStore) Insert(ctx context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = *p
	return nil
}

func (s *MemoryPaymentStore) GetByOrder(ctx context.Context, orderID string) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.payments {
		if p.OrderID == orderID {
			copied := p
			return &copied, nil
		}
	}
	return nil, payment.ErrNotFound
}

func (s *MemoryPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.ID]; !ok {
		return payment.ErrNotFound
	}
	s.payments[p.ID] = *p
	return nil
}

func (s *MemoryPaymentStore) ListByUser(ctx context.Context, userID string) ([]*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*payment.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			copied := p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MemoryUserStore implements account.UserStore.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]account.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]account.User)}
}

func (s *MemoryUserStore) Insert(ctx context.Context, u *account.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryUserStore) Get(ctx context.Context, id string) (*account.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			copied := u
			return &copied, nil
		}
	}
	return nil, account.ErrNotFound
}

// MemorySupplierStore implements account.SupplierStore.
type MemorySupplierStore struct {
	mu        sync.RWMutex
	suppliers map[string]account.Supplier
}

func NewMemorySupplierStore() *MemorySupplierStore {
	return &MemorySupplierStore{suppliers: make(map[string]account.Supplier)}
}

func (s *MemorySupplierStore) Insert(ctx context.Context, sup *account.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers[sup.ID] = *sup
	return nil
}

func (s *MemorySupplierStore) Get(ctx context.Context, id string) (*account.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sup, ok := s.suppliers[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	return &sup, nil
}

func (s *MemorySupplierStore) GetByEmail(ctx context.Context, email string) (*account.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sup := range s.suppliers {
		if strings.EqualFold(sup.Email, email) {
			copied := sup
			return &copied, nil
		}
	}
	return nil, account.ErrNotFound
}
