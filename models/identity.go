package models

import "time"

// UserIdentity is the end user resolved from a previous email or wallet login.
type UserIdentity struct {
	UserID    string `json:"user_id"`
	UserToken string `json:"user_token,omitempty"`
	Email     string `json:"email,omitempty"`
}

// ProviderCredential is the bearer token of the demo's own provider identity.
// ExpiresAt is zero when the token carries no readable expiry.
type ProviderCredential struct {
	AccessToken string    `json:"access_token"`
	ObtainedAt  time.Time `json:"obtained_at"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

func (c *ProviderCredential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type Wallet struct {
	Address    string `json:"wallet_address"`
	PrivateKey string `json:"private_key"`
}

type ProviderLoginRequest struct {
	ProviderID string `json:"provider_id"`
	ApiKey     string `json:"api_key"`
}

type ProviderLoginResponse struct {
	AccessToken string `json:"access_token"`
}

type EmailCodeRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type EmailVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type EmailVerifyResponse struct {
	Success   bool   `json:"success"`
	UserID    string `json:"user_id"`
	UserToken string `json:"user_token,omitempty"`
	Message   string `json:"message,omitempty"`
}

type CreateWalletResponse struct {
	Success       bool   `json:"success"`
	WalletAddress string `json:"wallet_address"`
	PrivateKey    string `json:"private_key"`
	Message       string `json:"message,omitempty"`
}

type WalletUserRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type WalletUserResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id"`
	Message string `json:"message,omitempty"`
}

type EmailLoginRequest struct {
	Email string `json:"email" binding:"required,email"`
}
