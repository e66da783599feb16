package order

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

const (
	MethodCOD    = "COD"
	MethodOnline = "ONLINE"
	MethodUPI    = "UPI"
)

const (
	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentRefunded = "REFUNDED"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order must have at least one item")
	ErrInvalidInput      = errors.New("invalid order data")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("order does not belong to this actor")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrNotDelivered      = errors.New("order must be DELIVERED before confirming receipt")
	ErrConflict          = errors.New("order was modified concurrently")
)

// statusFlow is the forward-only fulfillment path. Cancellation is a side
// exit from the initial state, not part of the flow.
var statusFlow = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

func flowIndex(s Status) int {
	for i, st := range statusFlow {
		if st == s {
			return i
		}
	}
	return -1
}

// ValidStatus reports whether s is one of the canonical status values.
func ValidStatus(s Status) bool {
	return flowIndex(s) >= 0 || s == StatusCancelled
}

// ValidateTransition enforces single-step forward movement along the
// fulfillment path. Skipping a step or moving backwards is rejected.
func ValidateTransition(current, next Status) error {
	currentIdx := flowIndex(current)
	nextIdx := flowIndex(next)

	if nextIdx == -1 {
		return fmt.Errorf("%w: %s is not in the fulfillment flow", ErrInvalidTransition, next)
	}
	if currentIdx == -1 {
		return fmt.Errorf("%w: cannot transition out of %s", ErrInvalidTransition, current)
	}
	if nextIdx <= currentIdx {
		return fmt.Errorf("%w: cannot go backwards from %s to %s", ErrInvalidTransition, current, next)
	}
	if nextIdx > currentIdx+1 {
		return fmt.Errorf("%w: cannot skip from %s to %s", ErrInvalidTransition, current, next)
	}
	return nil
}

// Item is a line item with a price/name/image snapshot taken at order time.
// The snapshot shields historical orders from later product edits.
type Item struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	Quantity   int    `json:"quantity"`
	SupplierID string `json:"supplier_id"`
	Image      string `json:"image,omitempty"`
}

// DeliveryConfirmation is the dual-sided acknowledgment sub-record. Supplier
// and user each own their half; writes must preserve the other half.
type DeliveryConfirmation struct {
	SupplierConfirmed bool       `json:"supplier_confirmed"`
	UserConfirmed     bool       `json:"user_confirmed"`
	CashCollected     int        `json:"cash_collected"`
	DeliveredAt       *time.Time `json:"delivered_at"`
	UserConfirmedAt   *time.Time `json:"user_confirmed_at"`
}

type Order struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	Items         []Item               `json:"items"`
	Total         int                  `json:"total"`
	Commission    int                  `json:"commission"`
	Status        Status               `json:"status"`
	PaymentMethod string               `json:"payment_method"`
	PaymentStatus string               `json:"payment_status"`
	Address       string               `json:"address"`
	Delivery      DeliveryConfirmation `json:"delivery_confirmation"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Version       int                  `json:"version"`
}

// ContainsSupplier reports whether at least one line item belongs to the
// given supplier. This is the ownership check for supplier-driven transitions.
func (o *Order) ContainsSupplier(supplierID string) bool {
	for _, item := range o.Items {
		if item.SupplierID == supplierID {
			return true
		}
	}
	return false
}

// ItemsForSupplier returns only the line items owned by the given supplier.
func (o *Order) ItemsForSupplier(supplierID string) []Item {
	var items []Item
	for _, item := range o.Items {
		if item.SupplierID == supplierID {
			items = append(items, item)
		}
	}
	return items
}

// SupplierSubtotal sums price*quantity over the supplier's own line items.
func (o *Order) SupplierSubtotal(supplierID string) int {
	var subtotal int
	for _, item := range o.Items {
		if item.SupplierID == supplierID {
			subtotal += item.Price * item.Quantity
		}
	}
	return subtotal
}
