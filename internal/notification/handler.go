package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/marketplace-backend/internal/domain/account"
	"github.com/example/marketplace-backend/internal/email"
	"github.com/example/marketplace-backend/internal/events"
)

// Handler consumes order lifecycle events and emails the customer. Failures
// are logged and swallowed so a bad address or SMTP outage never blocks the
// stream.
type Handler struct {
	emailService *email.Service
	users        account.UserStore
}

// NewHandler creates a new notification handler
func NewHandler(emailSvc *email.Service, users account.UserStore) *Handler {
	return &Handler{
		emailService: emailSvc,
		users:        users,
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch env.EventType {
	case events.TypeOrderPlaced:
		return h.handleOrderPlaced(ctx, env)
	case events.TypeOrderStatusChanged:
		return h.handleStatusChanged(ctx, env)
	case events.TypeOrderCancelled:
		return h.handleCancelled(ctx, env)
	}
	return nil
}

func (h *Handler) handleOrderPlaced(ctx context.Context, env events.Envelope) error {
	var e events.OrderPlaced
	if err := json.Unmarshal(env.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderPlaced event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing OrderPlaced event for order %s, user %s", e.OrderID, e.UserID)

	u, err := h.users.Get(ctx, e.UserID)
	if err != nil {
		log.Printf("[Notifier] User not found: %s", e.UserID)
		return nil
	}

	emailItems := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		emailItems[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	if err := h.emailService.SendOrderConfirmation(u.Email, e.OrderID, e.Total, emailItems); err != nil {
		log.Printf("[Notifier] Failed to send confirmation to %s: %v", u.Email, err)
		return nil
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", u.Email, e.OrderID)
	return nil
}

func (h *Handler) handleStatusChanged(ctx context.Context, env events.Envelope) error {
	var e events.OrderStatusChanged
	if err := json.Unmarshal(env.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderStatusChanged event: %v", err)
		return err
	}

	u, err := h.users.Get(ctx, e.UserID)
	if err != nil {
		log.Printf("[Notifier] User not found: %s", e.UserID)
		return nil
	}

	if err := h.emailService.SendStatusUpdate(u.Email, e.OrderID, e.To); err != nil {
		log.Printf("[Notifier] Failed to send status update to %s: %v", u.Email, err)
	}
	return nil
}

func (h *Handler) handleCancelled(ctx context.Context, env events.Envelope) error {
	var e events.OrderCancelled
	if err := json.Unmarshal(env.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderCancelled event: %v", err)
		return err
	}

	u, err := h.users.Get(ctx, e.UserID)
	if err != nil {
		log.Printf("[Notifier] User not found: %s", e.UserID)
		return nil
	}

	if err := h.emailService.SendCancellation(u.Email, e.OrderID); err != nil {
		log.Printf("[Notifier] Failed to send cancellation to %s: %v", u.Email, err)
	}
	return nil
}
