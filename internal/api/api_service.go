package api

import (
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/internal/store"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

// ApiService talks to the provider backend on behalf of the host. All
// provider-authenticated sub-services share one AuthService.
type ApiService struct {
	config        ApiServiceConfig
	clientFactory *Factory

	AuthService     *AuthService
	ProviderService *ProviderService
	EventService    *EventService
	ExpenseService  *ExpenseService
	ProfileService  *ProfileService
	WalletService   *WalletService
}

func NewApiService(cfg *models.Config, sessions store.SessionStore) *ApiService {
	apiConfig := ApiServiceConfig{
		BaseURL:        cfg.ApiUrl,
		Timeout:        cfg.RequestTimeout,
		ProviderID:     cfg.ProviderID,
		ProviderApiKey: cfg.ProviderApiKey,
		GameName:       cfg.GameName,
		ProviderKey:    store.ProviderTokenKey(cfg.Variant),
	}

	service := &ApiService{
		config:        apiConfig,
		clientFactory: NewFactory(),
	}
	service.AuthService = NewAuthService(service, sessions, "/auth")
	service.ProviderService = NewProviderService(service, "/provider")
	service.EventService = NewEventService(service, "/register-event")
	service.ExpenseService = NewExpenseService(service, "/expense")
	service.ProfileService = NewProfileService(service, "/profile")
	service.WalletService = NewWalletService(service, "")

	return service
}

func (s *ApiService) getClient(serviceName string, relativePath string) *ApiClient {
	clientConfig := DefaultConfig()
	clientConfig.BaseURL = s.config.BaseURL + relativePath
	if s.config.Timeout > 0 {
		clientConfig.Timeout = s.config.Timeout
	}

	return s.clientFactory.GetOrCreate(serviceName, clientConfig)
}

func (s *ApiService) Close() {
	s.clientFactory.Close()
}

type ApiServiceConfig struct {
	BaseURL        string
	Timeout        time.Duration
	ProviderID     string
	ProviderApiKey string
	GameName       string
	ProviderKey    store.Key
}
