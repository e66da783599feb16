package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	StatusInitiated = "INITIATED"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
	StatusRefunded  = "REFUNDED"
)

var (
	ErrNotFound      = errors.New("payment not found")
	ErrInvalidStatus = errors.New("invalid payment status")
)

// Payment is the settlement record derived from an order. COD orders get one
// lazily when the supplier confirms delivery; online orders get an INITIATED
// record at creation which the confirmation path settles.
type Payment struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	SupplierID    string    `json:"supplier_id,omitempty"`
	Amount        int       `json:"amount"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Store interface {
	Insert(ctx context.Context, p *Payment) error
	GetByOrder(ctx context.Context, orderID string) (*Payment, error)
	Update(ctx context.Context, p *Payment) error
	ListByUser(ctx context.Context, userID string) ([]*Payment, error)
}

// New builds a payment record for an order.
func New(orderID, userID, method, status string, amount int) *Payment {
	now := time.Now()
	return &Payment{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
