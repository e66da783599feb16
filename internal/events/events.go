package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TypeOrderPlaced        = "OrderPlaced"
	TypeOrderStatusChanged = "OrderStatusChanged"
	TypeOrderDelivered     = "OrderDelivered"
	TypeOrderCancelled     = "OrderCancelled"
	TypePaymentConfirmed   = "PaymentConfirmed"
)

// Publisher is the seam between the lifecycle services and the event stream.
// The Kafka producer implements it; tests substitute a capture.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Envelope wraps a domain event payload for the order stream. The key used
// when publishing is the order id, so all events for one order stay ordered
// within a partition.
type Envelope struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewEnvelope(orderID, eventType string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		EventType: eventType,
		Data:      data,
		Timestamp: time.Now(),
	}, nil
}

// OrderItem mirrors an order line-item snapshot on the wire.
type OrderItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	Quantity   int    `json:"quantity"`
	SupplierID string `json:"supplier_id"`
}

type OrderPlaced struct {
	OrderID    string      `json:"order_id"`
	UserID     string      `json:"user_id"`
	Items      []OrderItem `json:"items"`
	Total      int         `json:"total"`
	Commission int         `json:"commission"`
	PlacedAt   time.Time   `json:"placed_at"`
}

type OrderStatusChanged struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorRole string    `json:"actor_role"`
	ChangedAt time.Time `json:"changed_at"`
}

type OrderDelivered struct {
	OrderID       string    `json:"order_id"`
	SupplierID    string    `json:"supplier_id"`
	CashCollected int       `json:"cash_collected"`
	DeliveredAt   time.Time `json:"delivered_at"`
}

type OrderCancelled struct {
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type PaymentConfirmed struct {
	OrderID     string    `json:"order_id"`
	PaymentID   string    `json:"payment_id"`
	Status      string    `json:"status"`
	Amount      int       `json:"amount"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
