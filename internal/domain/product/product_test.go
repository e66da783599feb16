package product_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/marketplace-backend/internal/domain/product"
	"github.com/example/marketplace-backend/internal/infrastructure/store"
)

func newTestProductService() *product.Service {
	return product.NewService(store.NewMemoryProductStore())
}

// ============================================
// Create Tests
// ============================================

func TestProductService_Create(t *testing.T) {
	svc := newTestProductService()

	p, err := svc.Create(context.Background(), "sup-1", "Mug", "A mug", 50, 10, []string{"mug.jpg"})

	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "sup-1", p.SupplierID)
	assert.True(t, p.Active)
	assert.Equal(t, "mug.jpg", p.Thumbnail())
}

func TestProductService_Create_Validation(t *testing.T) {
	svc := newTestProductService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "sup-1", "Mug", "", 0, 10, nil)
	assert.ErrorIs(t, err, product.ErrInvalidPrice)

	_, err = svc.Create(ctx, "sup-1", "Mug", "", -1, 10, nil)
	assert.ErrorIs(t, err, product.ErrInvalidPrice)

	_, err = svc.Create(ctx, "sup-1", "Mug", "", 50, -1, nil)
	assert.ErrorIs(t, err, product.ErrInvalidStock)
}

// ============================================
// Update Tests
// ============================================

func TestProductService_Update(t *testing.T) {
	svc := newTestProductService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "sup-1", "Mug", "A mug", 50, 10, []string{"mug.jpg"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "sup-1", created.ID, "Big Mug", "A bigger mug", 75, 8, nil)
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", updated.Name)
	assert.Equal(t, 75, updated.Price)
	assert.Equal(t, 8, updated.Stock)
	assert.Equal(t, []string{"mug.jpg"}, updated.Images, "nil images must keep the existing ones")
}

func TestProductService_Update_WrongSupplier(t *testing.T) {
	svc := newTestProductService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "sup-1", "Mug", "", 50, 10, nil)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "sup-2", created.ID, "Stolen Mug", "", 50, 10, nil)
	assert.ErrorIs(t, err, product.ErrNotOwnedByActor)
}

func TestProductService_Update_NotFound(t *testing.T) {
	svc := newTestProductService()

	_, err := svc.Update(context.Background(), "sup-1", "ghost", "Mug", "", 50, 10, nil)

	assert.ErrorIs(t, err, product.ErrNotFound)
}

// ============================================
// Listing Tests
// ============================================

func TestProductService_Listings(t *testing.T) {
	svc := newTestProductService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "sup-1", "Mug", "", 50, 10, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "sup-2", "Plate", "", 30, 5, nil)
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	mine, err := svc.ListBySupplier(ctx, "sup-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Mug", mine[0].Name)
}
