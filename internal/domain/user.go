package domain

import (
	"context"
	"time"
)

type ContextKey string

const UserContextKey ContextKey = "user"

type User struct {
	ID           string    `json:"id"` // UUID
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // "customer" or "admin"
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Address is a saved delivery address. Which location fields are mandatory
// at checkout is driven by AddressRequirements in the shipping settings.
type Address struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Label  string `json:"label"` // "Home", "Office"

	Phone     string `json:"phone"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	City        string `json:"city"` // zone resolution input
	Division    string `json:"division"`
	District    string `json:"district"`
	Thana       string `json:"thana"`
	Area        string `json:"area"`
	AddressLine string `json:"addressLine"`
	Zip         string `json:"zip"`
	Country     string `json:"country"` // ISO code; "BD" for domestic

	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

type RefreshToken struct {
	Token     string    `json:"token"` // UUID
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	Revoked   bool      `json:"revoked"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetAll(ctx context.Context, limit, offset int) ([]*User, int64, error)
	UpdateProfile(ctx context.Context, id, firstName, lastName, phone string) (*User, error)

	// Addresses
	AddAddress(ctx context.Context, addr *Address) error
	GetAddresses(ctx context.Context, userID string) ([]Address, error)
	DeleteAddress(ctx context.Context, id, userID string) error

	// Refresh Tokens
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}
