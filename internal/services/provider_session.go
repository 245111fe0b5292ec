package services

import (
	"context"

	"github.com/ahmetkoprulu/rtrp/arcade/internal/api"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

type ProviderStatus struct {
	Authenticated bool `json:"authenticated"`
}

// ProviderSession exposes the provider credential to the host UI.
type ProviderSession struct {
	auth *api.AuthService
}

func NewProviderSession(auth *api.AuthService) *ProviderSession {
	return &ProviderSession{auth: auth}
}

func (s *ProviderSession) Login(ctx context.Context) (*models.ProviderCredential, error) {
	credential, err := s.auth.Login(ctx)
	if err != nil {
		return nil, classify(err, "Provider login failed")
	}
	return credential, nil
}

func (s *ProviderSession) Status() ProviderStatus {
	return ProviderStatus{Authenticated: s.auth.IsAuthenticated()}
}
