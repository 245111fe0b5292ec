package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/common/cache"
	"github.com/ahmetkoprulu/rtrp/arcade/common/data"
	"github.com/ahmetkoprulu/rtrp/arcade/common/mq"
	"github.com/ahmetkoprulu/rtrp/arcade/common/utils"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/api"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/bridge"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/config"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/expense"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/game"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/server"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/services"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/services/settlement"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/store"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"go.uber.org/zap"
)

func main() {
	config := config.LoadEnvironment()

	if config.ElasticUrl != "" {
		if err := utils.InitElasticLogger(config.ElasticUrl, config.ServiceName); err != nil {
			log.Fatalf("Failed to initialize elastic logger: %v\n", err)
		}
	} else {
		utils.InitLogger(config.ServiceName)
	}
	defer utils.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions, closeSessions := initSessions(config)
	defer closeSessions()

	journal, closeJournal := initJournal(ctx, config)
	defer closeJournal()

	publisher, closePublisher := initPublisher(config)
	defer closePublisher()

	apiService := api.NewApiService(config, sessions)
	defer apiService.Close()

	identity := services.NewIdentityService(sessions, apiService)
	reporter := services.NewSettlementReporter(apiService.EventService, journal, publisher, config)

	hub := bridge.NewHub(identity.UserToken)
	go hub.Run(ctx)

	svc := server.Services{
		Identity: identity,
		Provider: services.NewProviderSession(apiService.AuthService),
		Reporter: reporter,
		Hub:      hub,
	}

	fees := initExpenseProvider(config, apiService, identity, hub)
	switch config.Variant {
	case models.GameVariantSnake:
		svc.Entry = services.NewEntryService(identity, apiService.ProviderService, fees, reporter, config, services.SnakeFeeDescription)
		svc.Snake = services.NewSnakeService(svc.Entry, reporter, game.NewSnake(game.TickerScheduler{}, game.NewRand()), config.RequestTimeout)
	default:
		svc.Entry = services.NewEntryService(identity, apiService.ProviderService, fees, reporter, config, services.TapFeeDescription)
		svc.Tap = services.NewTapService(svc.Entry, reporter, game.NewTapSession(game.NewRand()))
	}

	srv := server.NewServer(config, svc)
	go func() {
		if err := srv.Start(":" + config.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	utils.Logger.Info("Server started successfully",
		zap.String("port", config.ServerPort),
		zap.String("variant", string(config.Variant)),
		zap.String("expense_mode", string(config.ExpenseMode)),
	)

	<-ctx.Done()
	utils.Logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	utils.Logger.Info("Server exited gracefully")
}

// initSessions keeps credentials in redis when CACHE_URL is set so they
// survive restarts, otherwise in process memory.
func initSessions(config *models.Config) (store.SessionStore, func()) {
	if config.CacheURL == "" {
		return store.NewMemorySessionStore(config.Variant), func() {}
	}

	redis, err := cache.NewRedisCache[string](config.CacheURL, config.ServiceName)
	if err != nil {
		utils.Logger.Fatal("Failed to connect to redis", zap.Error(err))
	}

	return store.NewCacheSessionStore(redis, config.Variant), func() { redis.Close() }
}

func initJournal(ctx context.Context, config *models.Config) (settlement.Journal, func()) {
	if config.DatabaseURL == "" {
		return settlement.NewMemoryJournal(), func() {}
	}

	db, err := data.LoadPostgres(ctx, config.DatabaseURL, config.DatabaseName, config.MigrationsPath)
	if err != nil {
		utils.Logger.Fatal("Failed to load Postgres", zap.Error(err))
	}

	return settlement.NewPgJournal(db), db.Close
}

// initPublisher returns a nil Publisher when no broker is configured.
func initPublisher(config *models.Config) (settlement.Publisher, func()) {
	if config.MqURL == "" {
		return nil, func() {}
	}

	provider, err := mq.NewRabbitmqMqProvider(mq.RabbitMqConfig{URL: config.MqURL, Reliable: true})
	if err != nil {
		utils.Logger.Fatal("Failed to initialize MQ", zap.Error(err))
	}

	publisher, err := settlement.NewMqPublisher(provider)
	if err != nil {
		provider.Disconnect()
		utils.Logger.Fatal("Failed to declare settlement exchange", zap.Error(err))
	}

	return publisher, provider.Disconnect
}

func initExpenseProvider(config *models.Config, apiService *api.ApiService, identity *services.IdentityService, hub *bridge.Hub) expense.ExpenseProvider {
	if config.ExpenseMode == models.ExpenseModeDirect {
		return expense.NewDirectProvider(hub)
	}

	tokens := func() (string, string) {
		return apiService.AuthService.Token(), identity.UserToken()
	}

	return expense.NewOverlayProvider(apiService.ExpenseService, hub, tokens, expense.OverlayConfig{
		ApiBase:         config.ApiUrl,
		FrontendBaseUrl: config.FrontendBaseUrl,
		ExpiresIn:       config.IntentExpiresIn,
	})
}
