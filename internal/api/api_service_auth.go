package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/common/utils"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/store"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
)

var ErrLoginFailed = errors.New("provider login failed")

// AuthService holds the provider credential. The token lives in the session
// store slot of the active game variant.
type AuthService struct {
	parent      *ApiService
	client      *ApiClient
	sessions    store.SessionStore
	providerKey store.Key
	credentials models.ProviderLoginRequest
	now         func() time.Time

	mu sync.Mutex
}

func NewAuthService(parent *ApiService, sessions store.SessionStore, endpoint string) *AuthService {
	return &AuthService{
		parent:      parent,
		client:      parent.getClient("auth-service", endpoint),
		sessions:    sessions,
		providerKey: parent.config.ProviderKey,
		credentials: models.ProviderLoginRequest{
			ProviderID: parent.config.ProviderID,
			ApiKey:     parent.config.ProviderApiKey,
		},
		now: time.Now,
	}
}

// Login always performs a fresh POST /auth/login and replaces the cached token.
func (s *AuthService) Login(ctx context.Context) (*models.ProviderCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var response models.ProviderLoginResponse
	if err := s.client.Post(ctx, "/login", s.credentials, &response); err != nil {
		utils.Logger.Warn("Provider login failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrLoginFailed, Message(err))
	}
	if response.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token in response", ErrLoginFailed)
	}

	if err := s.sessions.Set(s.providerKey, response.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to cache provider token: %w", err)
	}

	credential := &models.ProviderCredential{
		AccessToken: response.AccessToken,
		ObtainedAt:  s.now(),
		ExpiresAt:   tokenExpiry(response.AccessToken),
	}
	utils.Logger.Info("Provider login succeeded", zap.String("provider_id", s.credentials.ProviderID))

	return credential, nil
}

// Token returns the cached provider token, or "" when none is cached or the
// cached JWT has expired.
func (s *AuthService) Token() string {
	token, ok := s.sessions.Get(s.providerKey)
	if !ok {
		return ""
	}

	credential := models.ProviderCredential{AccessToken: token, ExpiresAt: tokenExpiry(token)}
	if credential.Expired(s.now()) {
		return ""
	}

	return token
}

func (s *AuthService) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *AuthService) EnsureToken(ctx context.Context) (string, error) {
	if token := s.Token(); token != "" {
		return token, nil
	}

	credential, err := s.Login(ctx)
	if err != nil {
		return "", err
	}

	return credential.AccessToken, nil
}

// WithSession runs call with a provider token. A 401 or 403 answer triggers one
// re-login and one retry; a second auth failure is returned as is.
func (s *AuthService) WithSession(ctx context.Context, call func(token string) error) error {
	token, err := s.EnsureToken(ctx)
	if err != nil {
		return err
	}

	err = call(token)
	if !IsAuthFailure(err) {
		return err
	}

	utils.Logger.Info("Provider token rejected, logging in again", zap.Error(err))
	credential, err := s.Login(ctx)
	if err != nil {
		return err
	}

	return call(credential.AccessToken)
}

// tokenExpiry reads the exp claim of a JWT without verifying it. Opaque tokens
// yield the zero time.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0)
	default:
		return time.Time{}
	}
}
