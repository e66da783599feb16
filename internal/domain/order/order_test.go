package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================
// Status Transition Tests
// ============================================

func TestValidateTransition_ForwardSteps(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusProcessing},
		{StatusProcessing, StatusShipped},
		{StatusShipped, StatusDelivered},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.NoError(t, ValidateTransition(tt.from, tt.to))
		})
	}
}

func TestValidateTransition_Backward(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{StatusProcessing, StatusPending},
		{StatusShipped, StatusProcessing},
		{StatusDelivered, StatusShipped},
		{StatusDelivered, StatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.ErrorIs(t, ValidateTransition(tt.from, tt.to), ErrInvalidTransition)
		})
	}
}

func TestValidateTransition_Skip(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusProcessing, StatusDelivered},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.ErrorIs(t, ValidateTransition(tt.from, tt.to), ErrInvalidTransition)
		})
	}
}

func TestValidateTransition_SameStatus(t *testing.T) {
	assert.ErrorIs(t, ValidateTransition(StatusPending, StatusPending), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition(StatusDelivered, StatusDelivered), ErrInvalidTransition)
}

func TestValidateTransition_CancelledIsNotInFlow(t *testing.T) {
	// Cancellation is a side exit with its own rules, never a flow step.
	assert.ErrorIs(t, ValidateTransition(StatusPending, StatusCancelled), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition(StatusCancelled, StatusProcessing), ErrInvalidTransition)
}

func TestValidateTransition_UnknownStatus(t *testing.T) {
	assert.ErrorIs(t, ValidateTransition(StatusPending, Status("SOMEWHERE")), ErrInvalidTransition)
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, ValidStatus(s), "expected %s to be valid", s)
	}
	assert.False(t, ValidStatus(Status("PAID")))
	assert.False(t, ValidStatus(Status("")))
}

// ============================================
// Order Helper Tests
// ============================================

func testOrder() *Order {
	return &Order{
		ID:     "ord-1",
		UserID: "user-1",
		Items: []Item{
			{ProductID: "p1", Name: "Mug", Price: 50, Quantity: 2, SupplierID: "sup-a"},
			{ProductID: "p2", Name: "Plate", Price: 30, Quantity: 1, SupplierID: "sup-b"},
			{ProductID: "p3", Name: "Bowl", Price: 20, Quantity: 1, SupplierID: "sup-a"},
		},
	}
}

func TestOrder_ContainsSupplier(t *testing.T) {
	o := testOrder()
	assert.True(t, o.ContainsSupplier("sup-a"))
	assert.True(t, o.ContainsSupplier("sup-b"))
	assert.False(t, o.ContainsSupplier("sup-c"))
}

func TestOrder_ItemsForSupplier(t *testing.T) {
	o := testOrder()

	items := o.ItemsForSupplier("sup-a")
	assert.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, "p3", items[1].ProductID)

	assert.Empty(t, o.ItemsForSupplier("sup-c"))
}

func TestOrder_SupplierSubtotal(t *testing.T) {
	o := testOrder()
	assert.Equal(t, 120, o.SupplierSubtotal("sup-a")) // 50*2 + 20*1
	assert.Equal(t, 30, o.SupplierSubtotal("sup-b"))
	assert.Equal(t, 0, o.SupplierSubtotal("sup-c"))
}
