package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/marketplace-backend/internal/api/middleware"
	"github.com/example/marketplace-backend/internal/domain/account"
	"github.com/example/marketplace-backend/internal/domain/cart"
	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/domain/payment"
	"github.com/example/marketplace-backend/internal/domain/product"
	"github.com/example/marketplace-backend/internal/query"
)

type Handlers struct {
	orders   *order.Service
	products *product.Service
	carts    *cart.Service
	queries  *query.Handler
}

func NewHandlers(orders *order.Service, products *product.Service, carts *cart.Service, queries *query.Handler) *Handlers {
	return &Handlers{
		orders:   orders,
		products: products,
		carts:    carts,
		queries:  queries,
	}
}

// Catalog Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListActive(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images"`
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	supplierID := middleware.GetUserID(r.Context())

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.products.Create(r.Context(), supplierID, req.Name, req.Description, req.Price, req.Stock, req.Images)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	supplierID := middleware.GetUserID(r.Context())
	id := extractPathParam(r.URL.Path, "/supplier/products/")

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.products.Update(r.Context(), supplierID, id, req.Name, req.Description, req.Price, req.Stock, req.Images)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) GetSupplierProducts(w http.ResponseWriter, r *http.Request) {
	supplierID := middleware.GetUserID(r.Context())
	products, err := h.products.ListBySupplier(r.Context(), supplierID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	c, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.carts.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.carts.SetQuantity(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	c, err := h.carts.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.carts.Clear(r.Context(), userID); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Order Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		Items    []order.ItemRequest `json:"items"`
		Address  string              `json:"address"`
		Method   string              `json:"payment_method"`
		FromCart bool                `json:"from_cart"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var (
		o   *order.Order
		err error
	)
	if req.FromCart || len(req.Items) == 0 {
		o, err = h.orders.CreateFromCart(r.Context(), userID, req.Address, req.Method)
	} else {
		o, err = h.orders.Create(r.Context(), userID, req.Items, req.Address, req.Method)
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orders, err := h.orders.ListForUser(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	if claims == nil || (o.UserID != claims.UserID && claims.Role != account.RoleAdmin) {
		respondJSONError(w, "Forbidden", http.StatusForbidden)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/cancel")

	o, err := h.orders.Cancel(r.Context(), id, userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) ConfirmReceipt(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/confirm-receipt")

	o, err := h.orders.UserConfirmReceipt(r.Context(), id, userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Supplier Order Handlers

func (h *Handlers) GetSupplierOrders(w http.ResponseWriter, r *http.Request) {
	supplierID := middleware.GetUserID(r.Context())
	views, err := h.queries.ListSupplierOrders(r.Context(), supplierID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handlers) SupplierUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	supplierID := middleware.GetUserID(r.Context())
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/supplier/orders/"), "/status")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.SupplierUpdateStatus(r.Context(), id, supplierID, order.Status(req.Status))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) SupplierDeliverOrder(w http.ResponseWriter, r *http.Request) {
	supplierID := middleware.GetUserID(r.Context())
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/supplier/orders/"), "/deliver")

	var req struct {
		CashCollected     int  `json:"cash_collected"`
		SupplierConfirmed bool `json:"supplier_confirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.SupplierDeliver(r.Context(), id, supplierID, req.CashCollected, req.SupplierConfirmed)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) GetSupplierDashboard(w http.ResponseWriter, r *http.Request) {
	supplierID := middleware.GetUserID(r.Context())
	metrics, err := h.queries.SupplierDashboard(r.Context(), supplierID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

// Payment Handlers

func (h *Handlers) GetPayments(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	payments, err := h.orders.ListPaymentsForUser(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

func (h *Handlers) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSuffix(extractPathParam(r.URL.Path, "/payments/"), "/confirm")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Admins may settle on any customer's behalf; customers only their own.
	userID := middleware.GetUserID(r.Context())
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok && claims.Role == account.RoleAdmin {
		userID = ""
	}

	p, err := h.orders.ConfirmOnlinePayment(r.Context(), orderID, userID, req.Status)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Admin Handlers

func (h *Handlers) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/admin/orders/"), "/status")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.AdminUpdateStatus(r.Context(), id, order.Status(req.Status))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.queries.Dashboard(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// respondDomainError maps domain sentinels to HTTP statuses. Anything
// unrecognized is a 500 with a generic message.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, account.ErrNotFound):
		respondJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, order.ErrUnauthorized):
		respondJSONError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, order.ErrConflict):
		respondJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidInput),
		errors.Is(err, order.ErrInvalidProduct),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrNotDelivered),
		errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidStock),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, cart.ErrItemNotInCart),
		errors.Is(err, payment.ErrInvalidStatus):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, product.ErrNotOwnedByActor):
		respondJSONError(w, err.Error(), http.StatusForbidden)
	default:
		respondJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
