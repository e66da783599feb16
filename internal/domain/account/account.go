package account

import (
	"context"
	"errors"
	"time"

	"github.com/example/marketplace-backend/internal/auth"
	"github.com/google/uuid"
)

const (
	RoleCustomer = "customer"
	RoleSupplier = "supplier"
	RoleAdmin    = "admin"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("account not found")
	ErrInvalidRate        = errors.New("commission rate must be between 0 and 100")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Supplier is a merchant account. CommissionRate of zero means the platform
// default applies.
type Supplier struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Name           string    `json:"name"`
	CommissionRate int       `json:"commission_rate"`
	CreatedAt      time.Time `json:"created_at"`
}

type UserStore interface {
	Insert(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type SupplierStore interface {
	Insert(ctx context.Context, s *Supplier) error
	Get(ctx context.Context, id string) (*Supplier, error)
	GetByEmail(ctx context.Context, email string) (*Supplier, error)
}

type Service struct {
	users     UserStore
	suppliers SupplierStore
}

func NewService(users UserStore, suppliers SupplierStore) *Service {
	return &Service{users: users, suppliers: suppliers}
}

func (s *Service) RegisterUser(ctx context.Context, email, password, name string) (*User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) RegisterSupplier(ctx context.Context, email, password, name string, commissionRate int) (*Supplier, error) {
	if commissionRate < 0 || commissionRate > 100 {
		return nil, ErrInvalidRate
	}
	if _, err := s.suppliers.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	sup := &Supplier{
		ID:             uuid.New().String(),
		Email:          email,
		PasswordHash:   hash,
		Name:           name,
		CommissionRate: commissionRate,
		CreatedAt:      time.Now(),
	}
	if err := s.suppliers.Insert(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *Service) AuthenticateSupplier(ctx context.Context, email, password string) (*Supplier, error) {
	sup, err := s.suppliers.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, sup.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return sup, nil
}

func (s *Service) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	return s.suppliers.Get(ctx, id)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.users.Get(ctx, id)
}
