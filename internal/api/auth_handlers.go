package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/example/marketplace-backend/internal/api/middleware"
	"github.com/example/marketplace-backend/internal/auth"
	"github.com/example/marketplace-backend/internal/domain/account"
)

// AuthHandlers handles registration and login for customers and suppliers.
// Tokens ride in an HttpOnly cookie for browsers and the response body for
// API clients.
type AuthHandlers struct {
	accounts      *account.Service
	jwtService    *auth.JWTService
	adminEmail    string
	adminPassword string
}

func NewAuthHandlers(accounts *account.Service, jwtService *auth.JWTService, adminEmail, adminPassword string) *AuthHandlers {
	return &AuthHandlers{
		accounts:      accounts,
		jwtService:    jwtService,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	CommissionRate int    `json:"commission_rate"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   AccountResponse `json:"account"`
}

// AccountResponse represents account data in responses
type AccountResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	CommissionRate int       `json:"commission_rate,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Register handles customer registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.accounts.RegisterUser(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondAuthError(w, err)
		return
	}

	h.respondWithToken(w, http.StatusCreated, AccountResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      account.RoleCustomer,
		CreatedAt: u.CreatedAt,
	})
}

// Login handles customer login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.accounts.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(w, err)
		return
	}

	h.respondWithToken(w, http.StatusOK, AccountResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      account.RoleCustomer,
		CreatedAt: u.CreatedAt,
	})
}

// RegisterSupplier handles supplier registration
func (h *AuthHandlers) RegisterSupplier(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sup, err := h.accounts.RegisterSupplier(r.Context(), req.Email, req.Password, req.Name, req.CommissionRate)
	if err != nil {
		respondAuthError(w, err)
		return
	}

	h.respondWithToken(w, http.StatusCreated, AccountResponse{
		ID:             sup.ID,
		Email:          sup.Email,
		Name:           sup.Name,
		Role:           account.RoleSupplier,
		CommissionRate: sup.CommissionRate,
		CreatedAt:      sup.CreatedAt,
	})
}

// LoginSupplier handles supplier login
func (h *AuthHandlers) LoginSupplier(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sup, err := h.accounts.AuthenticateSupplier(r.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(w, err)
		return
	}

	h.respondWithToken(w, http.StatusOK, AccountResponse{
		ID:             sup.ID,
		Email:          sup.Email,
		Name:           sup.Name,
		Role:           account.RoleSupplier,
		CommissionRate: sup.CommissionRate,
		CreatedAt:      sup.CreatedAt,
	})
}

// LoginAdmin authenticates against the single admin credential pair from
// deployment config. There is no admin record in the store.
func (h *AuthHandlers) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if h.adminEmail == "" || h.adminPassword == "" {
		respondJSONError(w, "Admin login is not configured", http.StatusUnauthorized)
		return
	}

	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(h.adminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) == 1
	if !emailOK || !passOK {
		respondJSONError(w, account.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}

	h.respondWithToken(w, http.StatusOK, AccountResponse{
		ID:    "admin",
		Email: h.adminEmail,
		Name:  "Administrator",
		Role:  account.RoleAdmin,
	})
}

// Logout clears the auth cookie
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the authenticated actor's claims
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    claims.Role,
	})
}

func (h *AuthHandlers) respondWithToken(w http.ResponseWriter, status int, acct AccountResponse) {
	token, expiresAt, err := h.jwtService.GenerateToken(acct.ID, acct.Email, acct.Role)
	if err != nil {
		respondJSONError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, status, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   acct,
	})
}

func respondAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrEmailTaken):
		respondJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, account.ErrInvalidCredentials):
		respondJSONError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, account.ErrInvalidRate):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		respondJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
