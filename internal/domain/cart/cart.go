package cart

import (
	"context"
	"errors"
	"time"

	"github.com/example/marketplace-backend/internal/domain/product"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("product_id is required")
	ErrItemNotInCart   = errors.New("item not in cart")
)

type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is one user's current selection, used as an alternate order-creation
// input. Order creation re-validates price and stock against live products;
// the cart only carries product ids and quantities.
type Cart struct {
	UserID    string    `json:"user_id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists one cart per user. Get on a missing cart returns an empty
// cart, not an error.
type Store interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Clear(ctx context.Context, userID string) error
}

type Service struct {
	store    Store
	products product.Store
}

func NewService(store Store, products product.Store) *Service {
	return &Service{store: store, products: products}
}

func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	return s.store.Get(ctx, userID)
}

func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*Cart, error) {
	if productID == "" {
		return nil, ErrInvalidProduct
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}

	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		c.Items = append(c.Items, Item{ProductID: productID, Quantity: quantity})
	}
	c.UpdatedAt = time.Now()

	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetQuantity replaces an item's quantity; zero removes the item.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*Cart, error) {
	if productID == "" {
		return nil, ErrInvalidProduct
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrItemNotInCart
	}

	if quantity == 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		c.Items[idx].Quantity = quantity
	}
	c.UpdatedAt = time.Now()

	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*Cart, error) {
	return s.SetQuantity(ctx, userID, productID, 0)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}
