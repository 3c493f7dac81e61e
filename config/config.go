package config

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Application struct {
	Name        string
	Environment string
	Debug       bool
	Port        int
	Timeout     time.Duration
	BaseURL     string
}

type CORS struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	MaxAge           int
	AllowCredentials bool
}

type Postgres struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	Name                   string
	SSLMode                string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Kafka struct {
	BootstrapServers string
	SecurityProtocol string
	SASLMechanisms   string
	SASLUsername     string
	SASLPassword     string
}

type JWT struct {
	PrivateKey []byte
	PublicKey  []byte
}

type GCP struct {
	ProjectID      string
	TasksLocation  string
	ServiceAccount []byte
}

type Midtrans struct {
	BaseURL      string
	BasicAuthKey string
}

type Brevo struct {
	BaseURL   string
	APIKey    string
	FromName  string
	FromEmail string
}

// PricingTier is one row of the volume-discount table, parsed once from the
// PRICING_TIERS JSON environment variable.
type PricingTier struct {
	Threshold          int64   `json:"threshold"`
	DiscountPercentage float64 `json:"discount_percentage"`
	TierName           string  `json:"tier_name"`
}

type Order struct {
	AbandonAfter       time.Duration
	DownloadWindow     time.Duration
	BasePhotoPrice     int64
	GatewayFlatFee     int64
	DownloadSignSecret string
}

type Settlement struct {
	Timezone string
}

type Config struct {
	Application Application
	CORS        CORS
	Postgres    Postgres
	Redis       Redis
	Kafka       Kafka
	JWT         JWT
	GCP         GCP
	Midtrans    Midtrans
	Brevo       Brevo
	Order       Order
	Settlement  Settlement
	PricingTier []PricingTier
}

var (
	c    *Config
	once sync.Once
)

func Get() *Config {
	once.Do(func() {
		godotenv.Load()

		c = &Config{
			Application: Application{
				Name:        getEnv("APP_NAME", "sf-order"),
				Environment: getEnv("APP_ENVIRONMENT", "development"),
				Debug:       getEnvBool("APP_DEBUG", false),
				Port:        getEnvInt("APP_PORT", 8080),
				Timeout:     getEnvDuration("APP_TIMEOUT", 30*time.Second),
				BaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
			},
			CORS: CORS{
				AllowedOrigins:   getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
				AllowedMethods:   getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
				AllowedHeaders:   getEnvSlice("CORS_ALLOWED_HEADERS", []string{"*"}),
				ExposedHeaders:   getEnvSlice("CORS_EXPOSED_HEADERS", []string{"X-Trace-Id"}),
				MaxAge:           getEnvInt("CORS_MAX_AGE", 300),
				AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			},
			Postgres: Postgres{
				Host:                   getEnv("POSTGRES_HOST", "localhost"),
				Port:                   getEnvInt("POSTGRES_PORT", 5432),
				User:                   getEnv("POSTGRES_USER", "postgres"),
				Password:               getEnv("POSTGRES_PASSWORD", ""),
				Name:                   getEnv("POSTGRES_NAME", "sf_order"),
				SSLMode:                getEnv("POSTGRES_SSL_MODE", "disable"),
				MaxOpenConns:           getEnvInt("POSTGRES_MAX_OPEN_CONNS", 25),
				MaxIdleConns:           getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
				ConnMaxLifetimeMinutes: getEnvInt("POSTGRES_CONN_MAX_LIFETIME_MINUTES", 30),
			},
			Redis: Redis{
				Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvInt("REDIS_DB", 0),
			},
			Kafka: Kafka{
				BootstrapServers: getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092"),
				SecurityProtocol: getEnv("KAFKA_SECURITY_PROTOCOL", "PLAINTEXT"),
				SASLMechanisms:   getEnv("KAFKA_SASL_MECHANISMS", ""),
				SASLUsername:     getEnv("KAFKA_SASL_USERNAME", ""),
				SASLPassword:     getEnv("KAFKA_SASL_PASSWORD", ""),
			},
			JWT: JWT{
				PrivateKey: getEnvBase64("JWT_PRIVATE_KEY", nil),
				PublicKey:  getEnvBase64("JWT_PUBLIC_KEY", nil),
			},
			GCP: GCP{
				ProjectID:      getEnv("GCP_PROJECT_ID", ""),
				TasksLocation:  getEnv("GCP_TASKS_LOCATION", "asia-southeast2"),
				ServiceAccount: getEnvBase64("GCP_SERVICE_ACCOUNT", nil),
			},
			Midtrans: Midtrans{
				BaseURL:      getEnv("MIDTRANS_BASE_URL", "https://api.sandbox.midtrans.com"),
				BasicAuthKey: getEnv("MIDTRANS_BASIC_AUTH_KEY", ""),
			},
			Brevo: Brevo{
				BaseURL:   getEnv("BREVO_BASE_URL", "https://api.brevo.com"),
				APIKey:    getEnv("BREVO_API_KEY", ""),
				FromName:  getEnv("BREVO_FROM_NAME", "Snapfield"),
				FromEmail: getEnv("BREVO_FROM_EMAIL", "noreply@snapfield.io"),
			},
			Order: Order{
				AbandonAfter:       getEnvDuration("ORDER_ABANDON_AFTER", 48*time.Hour),
				DownloadWindow:     getEnvDuration("ORDER_DOWNLOAD_WINDOW", 72*time.Hour),
				BasePhotoPrice:     getEnvInt64("ORDER_BASE_PHOTO_PRICE", 2000),
				GatewayFlatFee:     getEnvInt64("ORDER_GATEWAY_FLAT_FEE", 4000),
				DownloadSignSecret: getEnv("ORDER_DOWNLOAD_SIGN_SECRET", ""),
			},
			Settlement: Settlement{
				Timezone: getEnv("SETTLEMENT_TIMEZONE", "Asia/Jakarta"),
			},
			PricingTier: getEnvPricingTiers("PRICING_TIERS"),
		}
	})

	return c
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvInt64(key string, fallback int64) int64 {
	value, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvSlice(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvBase64(key string, fallback []byte) []byte {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return fallback
	}
	return decoded
}

func getEnvPricingTiers(key string) []PricingTier {
	raw := os.Getenv(key)
	if raw == "" {
		return []PricingTier{
			{Threshold: 1, DiscountPercentage: 0, TierName: "base"},
			{Threshold: 5, DiscountPercentage: 10, TierName: "bronze"},
			{Threshold: 10, DiscountPercentage: 20, TierName: "silver"},
			{Threshold: 20, DiscountPercentage: 30, TierName: "gold"},
		}
	}

	var tiers []PricingTier
	if err := json.Unmarshal([]byte(raw), &tiers); err != nil {
		panic("invalid PRICING_TIERS: " + err.Error())
	}
	return tiers
}
