package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/marketplace-backend/internal/api"
	"github.com/example/marketplace-backend/internal/auth"
	"github.com/example/marketplace-backend/internal/domain/account"
	"github.com/example/marketplace-backend/internal/domain/cart"
	"github.com/example/marketplace-backend/internal/domain/commission"
	"github.com/example/marketplace-backend/internal/domain/inventory"
	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/domain/payment"
	"github.com/example/marketplace-backend/internal/domain/product"
	"github.com/example/marketplace-backend/internal/infrastructure/store"
	"github.com/example/marketplace-backend/internal/query"
)

type testApp struct {
	router     http.Handler
	jwtService *auth.JWTService
	orders     *order.Service
	payments   *store.MemoryPaymentStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()

	products := store.NewMemoryProductStore()
	orders := store.NewMemoryOrderStore()
	carts := store.NewMemoryCartStore()
	suppliers := store.NewMemorySupplierStore()
	payments := store.NewMemoryPaymentStore()
	users := store.NewMemoryUserStore()

	require.NoError(t, suppliers.Insert(ctx, &account.Supplier{
		ID: "sup-1", Email: "shop@example.com", Name: "The Shop", CommissionRate: 10,
	}))
	require.NoError(t, products.Insert(ctx, &product.Product{
		ID: "p1", SupplierID: "sup-1", Name: "Mug", Price: 50, Stock: 10, Active: true,
	}))

	orderSvc := order.NewService(
		orders,
		inventory.NewLedger(products),
		carts,
		suppliers,
		payments,
		commission.NewCalculator(commission.DefaultRatePercent),
		nil,
	)
	jwtService := auth.NewJWTService("test-secret-key-of-sufficient-length", time.Hour)
	queryHandler := query.NewHandler(orders)
	handlers := api.NewHandlers(orderSvc, product.NewService(products), cart.NewService(carts, products), queryHandler)
	authHandlers := api.NewAuthHandlers(account.NewService(users, suppliers), jwtService, "", "")

	return &testApp{
		router:     api.NewRouter(handlers, authHandlers, jwtService),
		jwtService: jwtService,
		orders:     orderSvc,
		payments:   payments,
	}
}

func (app *testApp) request(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) token(t *testing.T, userID, email, role string) string {
	t.Helper()
	token, _, err := app.jwtService.GenerateToken(userID, email, role)
	require.NoError(t, err)
	return token
}

// ============================================
// Payment Confirmation Route Tests
// ============================================

func placeOnlineOrder(t *testing.T, app *testApp, userID string) *order.Order {
	t.Helper()
	o, err := app.orders.Create(context.Background(), userID,
		[]order.ItemRequest{{ProductID: "p1", Quantity: 1}}, "12 Harbor Lane", order.MethodOnline)
	require.NoError(t, err)
	return o
}

func TestConfirmPaymentRoute_Owner(t *testing.T) {
	app := newTestApp(t)
	o := placeOnlineOrder(t, app, "user-1")

	rec := app.request(t, http.MethodPost, "/payments/"+o.ID+"/confirm",
		`{"status":"COMPLETED"}`, app.token(t, "user-1", "jo@example.com", account.RoleCustomer))

	assert.Equal(t, http.StatusOK, rec.Code)

	p, err := app.payments.GetByOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, p.Status)
}

func TestConfirmPaymentRoute_SupplierForbidden(t *testing.T) {
	app := newTestApp(t)
	o := placeOnlineOrder(t, app, "user-1")

	rec := app.request(t, http.MethodPost, "/payments/"+o.ID+"/confirm",
		`{"status":"COMPLETED"}`, app.token(t, "sup-1", "shop@example.com", account.RoleSupplier))

	assert.Equal(t, http.StatusForbidden, rec.Code)

	p, err := app.payments.GetByOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusInitiated, p.Status, "a forbidden request must not settle the payment")
}

func TestConfirmPaymentRoute_OtherCustomerForbidden(t *testing.T) {
	app := newTestApp(t)
	o := placeOnlineOrder(t, app, "user-1")

	rec := app.request(t, http.MethodPost, "/payments/"+o.ID+"/confirm",
		`{"status":"COMPLETED"}`, app.token(t, "user-2", "other@example.com", account.RoleCustomer))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestConfirmPaymentRoute_Admin(t *testing.T) {
	app := newTestApp(t)
	o := placeOnlineOrder(t, app, "user-1")

	rec := app.request(t, http.MethodPost, "/payments/"+o.ID+"/confirm",
		`{"status":"COMPLETED"}`, app.token(t, "admin", "admin@example.com", account.RoleAdmin))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConfirmPaymentRoute_NoToken(t *testing.T) {
	app := newTestApp(t)
	o := placeOnlineOrder(t, app, "user-1")

	rec := app.request(t, http.MethodPost, "/payments/"+o.ID+"/confirm", `{"status":"COMPLETED"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
