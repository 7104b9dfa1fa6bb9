package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Cloudinary CloudinaryConfig
	Paystack   PaystackConfig
	Boards     BoardsConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// PaystackConfig for charge initialization and verification via the Paystack API.
type PaystackConfig struct {
	BaseURL     string
	SecretKey   string
	CallbackURL string // redirect target after checkout, e.g. https://yourdomain.com/payment/complete
	Timeout     time.Duration
}

// BoardRule holds the referral counts a user must accumulate to complete a tier.
type BoardRule struct {
	DirectRequired   int
	IndirectRequired int
}

// RewardOption maps a claim option to the wallet it credits and the amount in kobo.
type RewardOption struct {
	WalletKind string
	AmountKobo int64
}

// BoardsConfig carries default thresholds and reward tables per tier.
// Thresholds can be overridden at runtime through system settings; reward
// amounts are product-configured data, not code.
type BoardsConfig struct {
	Rules   map[string]BoardRule
	Rewards map[string]map[string]RewardOption // board -> option -> reward
}

func Load() *Config {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8090"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			AllowedOrigins: strings.Split(
				getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "boardmart:boardmart@tcp(localhost:3306)/boardmart?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "boardmart",
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		},
		Paystack: PaystackConfig{
			BaseURL:     getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			SecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
			CallbackURL: getEnv("PAYSTACK_CALLBACK_URL", ""),
			Timeout:     30 * time.Second,
		},
		Boards: BoardsConfig{
			Rules: map[string]BoardRule{
				"bronze": {DirectRequired: getEnvInt("BOARD_BRONZE_DIRECT", 5), IndirectRequired: getEnvInt("BOARD_BRONZE_INDIRECT", 0)},
				"silver": {DirectRequired: getEnvInt("BOARD_SILVER_DIRECT", 5), IndirectRequired: getEnvInt("BOARD_SILVER_INDIRECT", 25)},
				"gold":   {DirectRequired: getEnvInt("BOARD_GOLD_DIRECT", 5), IndirectRequired: getEnvInt("BOARD_GOLD_INDIRECT", 25)},
			},
			Rewards: map[string]map[string]RewardOption{
				"bronze": {
					"food":   {WalletKind: "food", AmountKobo: 1_800_000},  // NGN 18,000
					"gadget": {WalletKind: "gadget", AmountKobo: 2_000_000}, // NGN 20,000
					"cash":   {WalletKind: "cash", AmountKobo: 1_500_000},  // NGN 15,000
				},
				"silver": {
					"food":   {WalletKind: "food", AmountKobo: 6_000_000},
					"gadget": {WalletKind: "gadget", AmountKobo: 8_000_000},
					"cash":   {WalletKind: "cash", AmountKobo: 5_000_000},
				},
				"gold": {
					"food":   {WalletKind: "food", AmountKobo: 20_000_000},
					"gadget": {WalletKind: "gadget", AmountKobo: 25_000_000},
					"cash":   {WalletKind: "cash", AmountKobo: 18_000_000},
				},
			},
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
