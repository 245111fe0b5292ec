package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetkoprulu/rtrp/arcade/common/utils"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/api"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/store"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"go.uber.org/zap"
)

// IdentityService resolves and persists the end user.
type IdentityService struct {
	sessions store.SessionStore
	profile  *api.ProfileService
	wallet   *api.WalletService
}

func NewIdentityService(sessions store.SessionStore, apiService *api.ApiService) *IdentityService {
	return &IdentityService{
		sessions: sessions,
		profile:  apiService.ProfileService,
		wallet:   apiService.WalletService,
	}
}

func (s *IdentityService) Identity() (*models.UserIdentity, error) {
	identity, err := store.LoadIdentity(s.sessions)
	if errors.Is(err, store.ErrNoIdentity) {
		return nil, newValidationError("Please log in first")
	}
	return identity, err
}

// UserToken is the persisted end-user token, "" when absent.
func (s *IdentityService) UserToken() string {
	token, _ := s.sessions.Get(store.KeyUserToken)
	return token
}

func (s *IdentityService) RequestCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return newValidationError("Please enter your email")
	}

	if err := s.profile.RequestEmailCode(ctx, email); err != nil {
		return classify(err, "Failed to send code")
	}

	utils.Logger.Info("Verification code requested", zap.String("email", email))
	return nil
}

func (s *IdentityService) VerifyCode(ctx context.Context, email, code string) (*models.UserIdentity, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, newValidationError("Please enter your email and code")
	}

	identity, err := s.profile.VerifyEmail(ctx, email, code)
	if err != nil {
		return nil, classify(err, "Verification failed")
	}

	if err := store.SaveIdentity(s.sessions, *identity); err != nil {
		return nil, err
	}

	utils.Logger.Info("User logged in", zap.String("user_id", identity.UserID))
	return identity, nil
}

func (s *IdentityService) Logout() error {
	return store.ClearIdentity(s.sessions)
}

func (s *IdentityService) CreateWallet(ctx context.Context) (*models.Wallet, error) {
	wallet, err := s.wallet.CreateWallet(ctx)
	if err != nil {
		return nil, classify(err, "Wallet creation failed")
	}
	return wallet, nil
}

// ResolveWallet looks up the user behind a wallet address and persists it as
// the current identity.
func (s *IdentityService) ResolveWallet(ctx context.Context, address string) (*models.UserIdentity, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, newValidationError("Please enter a wallet address")
	}

	userID, err := s.wallet.GetUserID(ctx, address)
	if err != nil {
		return nil, classify(err, "Unable to fetch user id")
	}

	identity := models.UserIdentity{UserID: userID}
	if err := store.SaveIdentity(s.sessions, identity); err != nil {
		return nil, err
	}

	return &identity, nil
}
