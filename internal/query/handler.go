package query

import (
	"context"
	"time"

	"github.com/example/marketplace-backend/internal/domain/order"
)

// Handler serves the read side: role-scoped order views and the dashboard
// aggregations. All numbers come from persisted order records, so commission
// figures reflect the rates in force when each order was placed.
type Handler struct {
	orders order.Store
}

func NewHandler(orders order.Store) *Handler {
	return &Handler{orders: orders}
}

// SupplierOrderView is an order as a supplier sees it: only their own line
// items, with a subtotal over those items. Another supplier's items on the
// same order are never exposed.
type SupplierOrderView struct {
	ID            string                     `json:"id"`
	UserID        string                     `json:"user_id"`
	Items         []order.Item               `json:"items"`
	Subtotal      int                        `json:"subtotal"`
	Status        order.Status               `json:"status"`
	PaymentMethod string                     `json:"payment_method"`
	PaymentStatus string                     `json:"payment_status"`
	Address       string                     `json:"address"`
	Delivery      order.DeliveryConfirmation `json:"delivery_confirmation"`
	CreatedAt     time.Time                  `json:"created_at"`
}

func (h *Handler) ListSupplierOrders(ctx context.Context, supplierID string) ([]SupplierOrderView, error) {
	orders, err := h.orders.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	views := make([]SupplierOrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, SupplierOrderView{
			ID:            o.ID,
			UserID:        o.UserID,
			Items:         o.ItemsForSupplier(supplierID),
			Subtotal:      o.SupplierSubtotal(supplierID),
			Status:        o.Status,
			PaymentMethod: o.PaymentMethod,
			PaymentStatus: o.PaymentStatus,
			Address:       o.Address,
			Delivery:      o.Delivery,
			CreatedAt:     o.CreatedAt,
		})
	}
	return views, nil
}

// DashboardMetrics is the admin overview. Revenue and commission exclude
// cancelled orders; the status counts include everything.
type DashboardMetrics struct {
	TotalOrders     int            `json:"total_orders"`
	TotalRevenue    int            `json:"total_revenue"`
	TotalCommission int            `json:"total_commission"`
	StatusCounts    map[string]int `json:"status_counts"`
}

func (h *Handler) Dashboard(ctx context.Context) (*DashboardMetrics, error) {
	orders, err := h.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	metrics := &DashboardMetrics{StatusCounts: make(map[string]int)}
	for _, o := range orders {
		metrics.TotalOrders++
		metrics.StatusCounts[string(o.Status)]++
		if o.Status == order.StatusCancelled {
			continue
		}
		metrics.TotalRevenue += o.Total
		metrics.TotalCommission += o.Commission
	}
	return metrics, nil
}

// SupplierMetrics summarizes a supplier's share of the order book. Earning is
// derived pro rata from each order's stored commission rather than recomputed
// from the supplier's current rate.
type SupplierMetrics struct {
	TotalOrders     int `json:"total_orders"`
	DeliveredOrders int `json:"delivered_orders"`
	Subtotal        int `json:"subtotal"`
	Earning         int `json:"earning"`
}

func (h *Handler) SupplierDashboard(ctx context.Context, supplierID string) (*SupplierMetrics, error) {
	orders, err := h.orders.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	metrics := &SupplierMetrics{}
	for _, o := range orders {
		metrics.TotalOrders++
		if o.Status == order.StatusDelivered {
			metrics.DeliveredOrders++
		}
		if o.Status == order.StatusCancelled {
			continue
		}
		subtotal := o.SupplierSubtotal(supplierID)
		metrics.Subtotal += subtotal
		metrics.Earning += supplierEarning(subtotal, o.Commission, o.Total)
	}
	return metrics, nil
}

// supplierEarning apportions the order's stored commission to the supplier's
// subtotal and returns what remains of it.
func supplierEarning(subtotal, commission, total int) int {
	if total == 0 {
		return 0
	}
	share := commission * subtotal / total
	return subtotal - share
}
