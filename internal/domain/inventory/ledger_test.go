package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/marketplace-backend/internal/domain/inventory"
	"github.com/example/marketplace-backend/internal/domain/product"
	"github.com/example/marketplace-backend/internal/infrastructure/store"
)

func newTestLedger(t *testing.T) (*inventory.Ledger, *store.MemoryProductStore) {
	t.Helper()
	products := store.NewMemoryProductStore()
	require.NoError(t, products.Insert(context.Background(), &product.Product{
		ID: "p1", SupplierID: "sup-1", Name: "Mug", Price: 50, Stock: 5, Active: true,
	}))
	return inventory.NewLedger(products), products
}

func currentStock(t *testing.T, products *store.MemoryProductStore, id string) int {
	t.Helper()
	p, err := products.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

// ============================================
// Reserve Tests
// ============================================

func TestLedger_Reserve_Success(t *testing.T) {
	ledger, products := newTestLedger(t)

	p, err := ledger.Reserve(context.Background(), "p1", 3)

	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
	assert.Equal(t, 50, p.Price)
	assert.Equal(t, 2, currentStock(t, products, "p1"))
}

func TestLedger_Reserve_ExactStock(t *testing.T) {
	ledger, products := newTestLedger(t)

	_, err := ledger.Reserve(context.Background(), "p1", 5)

	require.NoError(t, err)
	assert.Equal(t, 0, currentStock(t, products, "p1"))
}

func TestLedger_Reserve_InsufficientStock(t *testing.T) {
	ledger, products := newTestLedger(t)

	_, err := ledger.Reserve(context.Background(), "p1", 6)

	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, 5, currentStock(t, products, "p1"))
}

func TestLedger_Reserve_UnknownProduct(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Reserve(context.Background(), "ghost", 1)

	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestLedger_Reserve_InvalidQuantity(t *testing.T) {
	ledger, products := newTestLedger(t)

	_, err := ledger.Reserve(context.Background(), "p1", 0)
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)

	_, err = ledger.Reserve(context.Background(), "p1", -2)
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)

	assert.Equal(t, 5, currentStock(t, products, "p1"))
}

// ============================================
// Restore Tests
// ============================================

func TestLedger_Restore(t *testing.T) {
	ledger, products := newTestLedger(t)

	_, err := ledger.Reserve(context.Background(), "p1", 4)
	require.NoError(t, err)

	require.NoError(t, ledger.Restore(context.Background(), "p1", 4))
	assert.Equal(t, 5, currentStock(t, products, "p1"))
}

func TestLedger_Restore_InvalidQuantity(t *testing.T) {
	ledger, _ := newTestLedger(t)

	assert.ErrorIs(t, ledger.Restore(context.Background(), "p1", 0), inventory.ErrInvalidQuantity)
}

func TestLedger_RestoreAll(t *testing.T) {
	ledger, products := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, products.Insert(ctx, &product.Product{
		ID: "p2", SupplierID: "sup-1", Name: "Plate", Price: 30, Stock: 10, Active: true,
	}))

	_, err := ledger.Reserve(ctx, "p1", 2)
	require.NoError(t, err)
	_, err = ledger.Reserve(ctx, "p2", 7)
	require.NoError(t, err)

	// Includes an unknown product; the known ones must still be restored.
	ledger.RestoreAll(ctx, map[string]int{"p1": 2, "p2": 7, "ghost": 1})

	assert.Equal(t, 5, currentStock(t, products, "p1"))
	assert.Equal(t, 10, currentStock(t, products, "p2"))
}
