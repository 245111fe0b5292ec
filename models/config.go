package models

import "time"

type GameVariant string

const (
	GameVariantTapBox GameVariant = "tapbox"
	GameVariantSnake  GameVariant = "snake"
)

type ExpenseMode string

const (
	ExpenseModeOverlay ExpenseMode = "overlay"
	ExpenseModeDirect  ExpenseMode = "direct"
)

type Config struct {
	ApiUrl          string
	FrontendBaseUrl string
	ProviderID      string
	ProviderApiKey  string
	Variant         GameVariant
	ExpenseMode     ExpenseMode
	GameName        string
	EventName       string
	IntentEventName string
	TokenAddress    string
	EntryFee        int
	IntentExpiresIn int
	RequestTimeout  time.Duration
	CacheURL        string
	MqURL           string
	DatabaseURL     string
	DatabaseName    string
	MigrationsPath  string
	ElasticUrl      string
	ServiceName     string
	ServerPort      string
}
