package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/joho/godotenv"
)

const (
	DefaultApiUrl          = "https://vxo167lu1j.execute-api.us-east-1.amazonaws.com"
	DefaultFrontendBaseUrl = "https://empowor.s3-website-us-east-1.amazonaws.com"
	DefaultProviderID      = "snake_game_provider"
	DefaultProviderApiKey  = "snake_game_secret_key_2024"
	DefaultGameName        = "Snake_Game"
	DefaultTokenAddress    = "0x67B4511a0E3eFFaFa2593cC96A5089D26e25DFD6"
	DefaultEntryFee        = 5
	DefaultIntentExpiresIn = 600
	DefaultRequestTimeout  = 15 * time.Second
	DefaultServerPort      = "8080"
)

// LoadEnvironment reads .env (when present) and the process environment. Missing
// values fall back to the demo defaults of the selected variant.
func LoadEnvironment() *models.Config {
	_ = godotenv.Load()

	variant := models.GameVariant(strings.ToLower(os.Getenv("GAME_VARIANT")))
	if variant != models.GameVariantSnake {
		variant = models.GameVariantTapBox
	}

	config := &models.Config{
		ApiUrl:          strings.TrimRight(getEnv("API_URL", DefaultApiUrl), "/"),
		FrontendBaseUrl: strings.TrimRight(getEnv("FE_BASE_URL", DefaultFrontendBaseUrl), "/"),
		ProviderID:      getEnv("PROVIDER_ID", DefaultProviderID),
		ProviderApiKey:  getEnv("PROVIDER_API_KEY", DefaultProviderApiKey),
		Variant:         variant,
		ExpenseMode:     expenseMode(variant, os.Getenv("EXPENSE_MODE")),
		GameName:        getEnv("GAME_NAME", DefaultGameName),
		EventName:       getEnv("EVENT_NAME", defaultEventName(variant)),
		IntentEventName: getEnv("INTENT_EVENT_NAME", DefaultGameName),
		TokenAddress:    getEnv("TOKEN_ADDRESS", DefaultTokenAddress),
		EntryFee:        getEnvInt("ENTRY_FEE", DefaultEntryFee),
		IntentExpiresIn: getEnvInt("INTENT_EXPIRES_IN", DefaultIntentExpiresIn),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", DefaultRequestTimeout),
		CacheURL:        os.Getenv("CACHE_URL"),
		MqURL:           os.Getenv("MQ_URL"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DatabaseName:    os.Getenv("DATABASE_NAME"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "migrations"),
		ElasticUrl:      os.Getenv("ELASTIC_URL"),
		ServiceName:     getEnv("SERVICE_NAME", "arcade-"+string(variant)),
		ServerPort:      getEnv("PORT", DefaultServerPort),
	}

	return config
}

func defaultEventName(variant models.GameVariant) string {
	if variant == models.GameVariantSnake {
		return "Snake_Game"
	}
	return "Xplosion_Casino"
}

func expenseMode(variant models.GameVariant, raw string) models.ExpenseMode {
	switch models.ExpenseMode(strings.ToLower(raw)) {
	case models.ExpenseModeOverlay:
		return models.ExpenseModeOverlay
	case models.ExpenseModeDirect:
		return models.ExpenseModeDirect
	}

	if variant == models.GameVariantSnake {
		return models.ExpenseModeDirect
	}
	return models.ExpenseModeOverlay
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// getEnvDuration accepts Go durations ("15s") and plain seconds ("15").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
