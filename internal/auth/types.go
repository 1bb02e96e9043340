package auth

import (
	"github.com/google/uuid"
)

// Account is the authenticated player identity exposed by auth flows.
type Account struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Provider    string
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// RegisterRequest for email/password registration.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest for email/password authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Account providers.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)
