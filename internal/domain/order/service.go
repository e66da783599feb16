package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/marketplace-backend/internal/domain/account"
	"github.com/example/marketplace-backend/internal/domain/cart"
	"github.com/example/marketplace-backend/internal/domain/commission"
	"github.com/example/marketplace-backend/internal/domain/inventory"
	"github.com/example/marketplace-backend/internal/domain/payment"
	"github.com/example/marketplace-backend/internal/domain/product"
	"github.com/example/marketplace-backend/internal/events"
	"github.com/google/uuid"
)

// Store is the persistence contract for orders. Update must apply an
// optimistic version check (match on the order's current Version, increment
// on success) and return ErrConflict on a lost race.
type Store interface {
	Insert(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
}

// ItemRequest is a submitted line item before validation and snapshotting.
type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Service enforces the order state machine and ownership checks. All
// mutations go through here; the HTTP layer only maps errors to statuses.
type Service struct {
	orders    Store
	ledger    *inventory.Ledger
	carts     cart.Store
	suppliers account.SupplierStore
	payments  payment.Store
	calc      commission.Calculator
	publisher events.Publisher
}

func NewService(
	orders Store,
	ledger *inventory.Ledger,
	carts cart.Store,
	suppliers account.SupplierStore,
	payments payment.Store,
	calc commission.Calculator,
	publisher events.Publisher,
) *Service {
	return &Service{
		orders:    orders,
		ledger:    ledger,
		carts:     carts,
		suppliers: suppliers,
		payments:  payments,
		calc:      calc,
		publisher: publisher,
	}
}

func validMethod(method string) bool {
	switch method {
	case MethodCOD, MethodOnline, MethodUPI:
		return true
	}
	return false
}

// Create places an order from submitted line items. Stock is reserved per
// item with an atomic conditional decrement; any failure restores every
// decrement already applied in this request before the error is returned, so
// no partial order state survives. The user's cart is cleared on success.
func (s *Service) Create(ctx context.Context, userID string, items []ItemRequest, address, method string) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	}
	if method == "" {
		method = MethodCOD
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, method)
	}

	reserved := make(map[string]int)
	var (
		orderItems []Item
		total      int
	)
	subtotals := make(map[string]int)

	for _, req := range items {
		p, err := s.ledger.Reserve(ctx, req.ProductID, req.Quantity)
		if err != nil {
			s.ledger.RestoreAll(ctx, reserved)
			switch {
			case errors.Is(err, product.ErrNotFound):
				return nil, fmt.Errorf("%w: %s", ErrInvalidProduct, req.ProductID)
			case errors.Is(err, inventory.ErrInsufficientStock):
				return nil, fmt.Errorf("%w: product %s", ErrInsufficientStock, req.ProductID)
			case errors.Is(err, inventory.ErrInvalidQuantity):
				return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
			default:
				return nil, err
			}
		}
		reserved[req.ProductID] += req.Quantity

		lineTotal := p.Price * req.Quantity
		total += lineTotal
		subtotals[p.SupplierID] += lineTotal

		orderItems = append(orderItems, Item{
			ProductID:  p.ID,
			Name:       p.Name,
			Price:      p.Price,
			Quantity:   req.Quantity,
			SupplierID: p.SupplierID,
			Image:      p.Thumbnail(),
		})
	}

	rates := make(map[string]int, len(subtotals))
	for supplierID := range subtotals {
		if sup, err := s.suppliers.Get(ctx, supplierID); err == nil {
			rates[supplierID] = sup.CommissionRate
		}
	}
	commissionAmount, _ := s.calc.SplitOrder(subtotals, rates)

	now := time.Now()
	o := &Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		Items:         orderItems,
		Total:         total,
		Commission:    commissionAmount,
		Status:        StatusPending,
		PaymentMethod: method,
		PaymentStatus: PaymentPending,
		Address:       address,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}

	if err := s.orders.Insert(ctx, o); err != nil {
		s.ledger.RestoreAll(ctx, reserved)
		return nil, err
	}

	// Online methods get a settlement record up front; COD settles at
	// delivery without one.
	if method != MethodCOD {
		p := payment.New(o.ID, userID, method, payment.StatusInitiated, total)
		if err := s.payments.Insert(ctx, p); err != nil {
			log.Printf("[Order] Failed to create payment record for order %s: %v", o.ID, err)
		}
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		log.Printf("[Order] Failed to clear cart for user %s: %v", userID, err)
	}

	s.publish(ctx, o.ID, events.TypeOrderPlaced, events.OrderPlaced{
		OrderID:    o.ID,
		UserID:     userID,
		Items:      eventItems(orderItems),
		Total:      total,
		Commission: commissionAmount,
		PlacedAt:   now,
	})

	return o, nil
}

// CreateFromCart places an order from the user's current cart snapshot.
func (s *Service) CreateFromCart(ctx context.Context, userID, address, method string) (*Order, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]ItemRequest, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return s.Create(ctx, userID, items, address, method)
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	return s.orders.Get(ctx, orderID)
}

// ListForUser returns the user's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListForSupplier returns orders containing at least one of the supplier's
// line items, newest first. The records are full orders; callers serving
// supplier responses project the items down to the supplier's own.
func (s *Service) ListForSupplier(ctx context.Context, supplierID string) ([]*Order, error) {
	return s.orders.ListBySupplier(ctx, supplierID)
}

func (s *Service) ListAll(ctx context.Context) ([]*Order, error) {
	return s.orders.ListAll(ctx)
}

// SupplierUpdateStatus advances an order one step along the fulfillment flow
// on behalf of a supplier owning at least one of its line items. Violations
// are rejected before any write.
func (s *Service) SupplierUpdateStatus(ctx context.Context, orderID, supplierID string, next Status) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.ContainsSupplier(supplierID) {
		return nil, fmt.Errorf("%w: order does not contain your products", ErrUnauthorized)
	}
	if err := ValidateTransition(o.Status, next); err != nil {
		return nil, err
	}

	from := o.Status
	now := time.Now()
	o.Status = next
	if next == StatusDelivered {
		if o.PaymentMethod == MethodCOD {
			o.PaymentStatus = PaymentPaid
		}
		if o.Delivery.DeliveredAt == nil {
			o.Delivery.DeliveredAt = &now
		}
	}
	o.UpdatedAt = now

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publish(ctx, o.ID, events.TypeOrderStatusChanged, events.OrderStatusChanged{
		OrderID:   o.ID,
		UserID:    o.UserID,
		From:      string(from),
		To:        string(next),
		ActorRole: account.RoleSupplier,
		ChangedAt: now,
	})
	return o, nil
}

// SupplierDeliver is the explicit delivery shortcut: it bypasses the
// step-by-step flow, marks the order delivered and paid, and records the
// supplier half of the delivery confirmation while preserving the user half.
func (s *Service) SupplierDeliver(ctx context.Context, orderID, supplierID string, cashCollected int, supplierConfirmed bool) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.ContainsSupplier(supplierID) {
		return nil, fmt.Errorf("%w: order does not contain your products", ErrUnauthorized)
	}

	now := time.Now()
	o.Status = StatusDelivered
	o.PaymentStatus = PaymentPaid
	// A supplier calling this endpoint is confirming delivery even when the
	// flag is absent from the request body.
	o.Delivery = DeliveryConfirmation{
		SupplierConfirmed: true,
		UserConfirmed:     o.Delivery.UserConfirmed,
		CashCollected:     cashCollected,
		DeliveredAt:       &now,
		UserConfirmedAt:   o.Delivery.UserConfirmedAt,
	}
	o.UpdatedAt = now

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}

	s.settleDeliveredPayment(ctx, o, supplierID, cashCollected)

	s.publish(ctx, o.ID, events.TypeOrderDelivered, events.OrderDelivered{
		OrderID:       o.ID,
		SupplierID:    supplierID,
		CashCollected: cashCollected,
		DeliveredAt:   now,
	})
	return o, nil
}

// settleDeliveredPayment lazily writes the settlement record for a delivered
// order: COD orders get their first record here, online orders already have
// one that is marked completed. The delivering supplier is recorded on the
// settlement.
func (s *Service) settleDeliveredPayment(ctx context.Context, o *Order, supplierID string, cashCollected int) {
	p, err := s.payments.GetByOrder(ctx, o.ID)
	if errors.Is(err, payment.ErrNotFound) {
		p = payment.New(o.ID, o.UserID, o.PaymentMethod, payment.StatusCompleted, o.Total)
		p.SupplierID = supplierID
		if err := s.payments.Insert(ctx, p); err != nil {
			log.Printf("[Order] Failed to create payment record for order %s: %v", o.ID, err)
		}
		return
	}
	if err != nil {
		log.Printf("[Order] Failed to look up payment for order %s: %v", o.ID, err)
		return
	}
	p.Status = payment.StatusCompleted
	p.SupplierID = supplierID
	p.UpdatedAt = time.Now()
	if err := s.payments.Update(ctx, p); err != nil {
		log.Printf("[Order] Failed to settle payment for order %s: %v", o.ID, err)
	}
}

// UserConfirmReceipt records the customer half of the delivery confirmation.
// It never changes the order status; the order must already be DELIVERED.
func (s *Service) UserConfirmReceipt(ctx context.Context, orderID, userID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("%w: this is not your order", ErrUnauthorized)
	}
	if o.Status != StatusDelivered {
		return nil, ErrNotDelivered
	}

	now := time.Now()
	o.Delivery.UserConfirmed = true
	o.Delivery.UserConfirmedAt = &now
	o.UpdatedAt = now

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel is the customer's side exit, allowed only before fulfillment has
// begun. Reserved stock is restored for every line item.
func (s *Service) Cancel(ctx context.Context, orderID, userID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("%w: this is not your order", ErrUnauthorized)
	}
	if o.Status != StatusPending {
		return nil, fmt.Errorf("%w: cannot cancel order in status %s", ErrInvalidTransition, o.Status)
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.UpdatedAt = now
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		if err := s.ledger.Restore(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("[Order] Failed to restore stock for product %s on cancel of order %s: %v", item.ProductID, o.ID, err)
		}
	}

	s.publish(ctx, o.ID, events.TypeOrderCancelled, events.OrderCancelled{
		OrderID:     o.ID,
		UserID:      userID,
		CancelledAt: now,
	})
	return o, nil
}

// AdminUpdateStatus is the privileged escape hatch: it sets the status
// directly without transition validation. Only membership in the canonical
// status set is checked so the stored enum stays well-formed.
func (s *Service) AdminUpdateStatus(ctx context.Context, orderID string, next Status) (*Order, error) {
	if !ValidStatus(next) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, next)
	}

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := o.Status
	now := time.Now()
	o.Status = next
	o.UpdatedAt = now
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publish(ctx, o.ID, events.TypeOrderStatusChanged, events.OrderStatusChanged{
		OrderID:   o.ID,
		UserID:    o.UserID,
		From:      string(from),
		To:        string(next),
		ActorRole: account.RoleAdmin,
		ChangedAt: now,
	})
	return o, nil
}

// ConfirmOnlinePayment settles the payment record for an online order on
// behalf of the paying customer. COD payments are settled at delivery and
// never pass through here, so a missing record is a NotFound for the caller.
// An empty userID marks a privileged caller and skips the ownership check.
func (s *Service) ConfirmOnlinePayment(ctx context.Context, orderID, userID, status string) (*payment.Payment, error) {
	if status != payment.StatusCompleted && status != payment.StatusFailed {
		return nil, fmt.Errorf("%w: %q", payment.ErrInvalidStatus, status)
	}

	p, err := s.payments.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != "" && p.UserID != userID {
		return nil, fmt.Errorf("%w: this is not your payment", ErrUnauthorized)
	}

	p.Status = status
	p.UpdatedAt = time.Now()
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}

	if status == payment.StatusCompleted {
		o, err := s.orders.Get(ctx, orderID)
		if err == nil {
			o.PaymentStatus = PaymentPaid
			o.UpdatedAt = time.Now()
			if err := s.orders.Update(ctx, o); err != nil {
				log.Printf("[Order] Failed to mark order %s paid: %v", orderID, err)
			}
		}
	}

	s.publish(ctx, orderID, events.TypePaymentConfirmed, events.PaymentConfirmed{
		OrderID:     orderID,
		PaymentID:   p.ID,
		Status:      status,
		Amount:      p.Amount,
		ConfirmedAt: time.Now(),
	})
	return p, nil
}

func (s *Service) ListPaymentsForUser(ctx context.Context, userID string) ([]*payment.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}

func (s *Service) publish(ctx context.Context, orderID, eventType string, payload any) {
	if s.publisher == nil {
		return
	}
	env, err := events.NewEnvelope(orderID, eventType, payload)
	if err != nil {
		log.Printf("[Order] Failed to build %s event for order %s: %v", eventType, orderID, err)
		return
	}
	if err := s.publisher.Publish(ctx, orderID, env); err != nil {
		log.Printf("[Order] Failed to publish %s event for order %s: %v", eventType, orderID, err)
	}
}

func eventItems(items []Item) []events.OrderItem {
	out := make([]events.OrderItem, len(items))
	for i, item := range items {
		out[i] = events.OrderItem{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
			SupplierID: item.SupplierID,
		}
	}
	return out
}
