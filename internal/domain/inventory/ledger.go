package inventory

import (
	"context"
	"errors"
	"log"

	"github.com/example/marketplace-backend/internal/domain/product"
)

var (
	// ErrInsufficientStock is the store-level sentinel; aliased here so
	// ledger callers need not import the product package to match it.
	ErrInsufficientStock = product.ErrInsufficientStock

	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Ledger owns per-product stock. Reserve decrements atomically; a reservation
// only exists as part of a committed order, so a failed creation must restore
// every decrement applied earlier in the same request.
type Ledger struct {
	products product.Store
}

func NewLedger(products product.Store) *Ledger {
	return &Ledger{products: products}
}

// Reserve validates the product and decrements its stock by quantity in a
// single conditional update. It returns the product so callers can take the
// price/name/image snapshot from the same record they reserved against.
func (l *Ledger) Reserve(ctx context.Context, productID string, quantity int) (*product.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := l.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := l.products.ReserveStock(ctx, productID, quantity); err != nil {
		return nil, err
	}
	return p, nil
}

// Restore is the compensating half of Reserve, used when a later line item
// fails mid-request or an order is cancelled.
func (l *Ledger) Restore(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return l.products.RestoreStock(ctx, productID, quantity)
}

// RestoreAll restores a batch of reservations, logging rather than aborting on
// individual failures so every compensation is attempted.
func (l *Ledger) RestoreAll(ctx context.Context, reserved map[string]int) {
	for productID, quantity := range reserved {
		if err := l.Restore(ctx, productID, quantity); err != nil {
			log.Printf("[Inventory] Failed to restore %d units of product %s: %v", quantity, productID, err)
		}
	}
}
