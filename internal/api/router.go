package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/example/marketplace-backend/internal/api/middleware"
	"github.com/example/marketplace-backend/internal/auth"
	"github.com/example/marketplace-backend/internal/domain/account"
)

func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, jwtService *auth.JWTService) http.Handler {
	mux := http.NewServeMux()

	authed := middleware.AuthMiddleware(jwtService)
	customerOnly := middleware.RequireRole(account.RoleCustomer, account.RoleAdmin)
	supplierOnly := middleware.RequireRole(account.RoleSupplier)
	adminOnly := middleware.RequireRole(account.RoleAdmin)

	// Auth
	mux.HandleFunc("/auth/register", postOnly(authHandlers.Register))
	mux.HandleFunc("/auth/login", postOnly(authHandlers.Login))
	mux.HandleFunc("/auth/supplier/register", postOnly(authHandlers.RegisterSupplier))
	mux.HandleFunc("/auth/supplier/login", postOnly(authHandlers.LoginSupplier))
	mux.HandleFunc("/auth/admin/login", postOnly(authHandlers.LoginAdmin))
	mux.HandleFunc("/auth/logout", postOnly(authHandlers.Logout))
	mux.Handle("/auth/me", authed(http.HandlerFunc(authHandlers.Me)))

	// Catalog (public reads)
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetProducts(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetProduct(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Cart
	mux.Handle("/cart", authed(customerOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetCart(w, r)
		case http.MethodDelete:
			handlers.ClearCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))
	mux.Handle("/cart/items", authed(customerOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.AddToCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))
	mux.Handle("/cart/items/", authed(customerOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			handlers.UpdateCartItem(w, r)
		case http.MethodDelete:
			handlers.RemoveFromCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))

	// Orders (customer)
	mux.Handle("/orders", authed(customerOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetOrders(w, r)
		case http.MethodPost:
			handlers.PlaceOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))
	mux.Handle("/orders/", authed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/cancel") && r.Method == http.MethodPost:
			handlers.CancelOrder(w, r)
		case strings.HasSuffix(path, "/confirm-receipt") && r.Method == http.MethodPost:
			handlers.ConfirmReceipt(w, r)
		case r.Method == http.MethodGet:
			handlers.GetOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Payments
	mux.Handle("/payments", authed(customerOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetPayments(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))
	mux.Handle("/payments/", authed(customerOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/confirm") && r.Method == http.MethodPost:
			handlers.ConfirmPayment(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))

	// Supplier surface
	mux.Handle("/supplier/products", authed(supplierOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetSupplierProducts(w, r)
		case http.MethodPost:
			handlers.CreateProduct(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))
	mux.Handle("/supplier/products/", authed(supplierOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			handlers.UpdateProduct(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))
	mux.Handle("/supplier/orders", authed(supplierOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetSupplierOrders(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))
	mux.Handle("/supplier/orders/", authed(supplierOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/status") && r.Method == http.MethodPut:
			handlers.SupplierUpdateOrderStatus(w, r)
		case strings.HasSuffix(path, "/deliver") && r.Method == http.MethodPost:
			handlers.SupplierDeliverOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))
	mux.Handle("/supplier/dashboard", authed(supplierOnly(http.HandlerFunc(handlers.GetSupplierDashboard))))

	// Admin surface
	mux.Handle("/admin/orders", authed(adminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetAllOrders(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))
	mux.Handle("/admin/orders/", authed(adminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/status") && r.Method == http.MethodPut:
			handlers.AdminUpdateOrderStatus(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))
	mux.Handle("/admin/dashboard", authed(adminOnly(http.HandlerFunc(handlers.GetDashboard))))

	return withLogging(mux)
}

func postOnly(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
