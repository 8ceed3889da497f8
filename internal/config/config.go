package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"coinvault/internal/models"

	"github.com/shopspring/decimal"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	oracleTimeout, err := getEnvDuration("ORACLE_REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	quoteTTL, err := getEnvDuration("ORACLE_QUOTE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	minimumBuy, err := getEnvDecimal("LEDGER_MINIMUM_BUY_USD", "50")
	if err != nil {
		return nil, err
	}

	minimumSend, err := getEnvDecimal("LEDGER_MINIMUM_SEND_USD", "50")
	if err != nil {
		return nil, err
	}

	startingBalance, err := getEnvDecimal("LEDGER_STARTING_BALANCE_USD", "5000")
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "coinvault.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
			SeedDemoUsers:   getEnvBool("SEED_DEMO_USERS", false),
		},
		Oracle: models.OracleConfig{
			BaseURL:        getEnvString("ORACLE_BASE_URL", "https://api.coingecko.com/api/v3"),
			RequestTimeout: oracleTimeout,
			QuoteTTL:       quoteTTL,
		},
		Ledger: models.LedgerConfig{
			CoinsFile:       getEnvString("COINS_FILE", "coins.yaml"),
			MinimumBuyUSD:   minimumBuy,
			MinimumSendUSD:  minimumSend,
			StartingBalance: startingBalance,
			CommitRetries:   getEnvInt("LEDGER_COMMIT_RETRIES", 3),
		},
		Identity: models.IdentityConfig{
			JWTSecret: getEnvString("JWT_SECRET", ""),
		},
		Events: models.EventsConfig{
			Enabled: getEnvBool("EVENTS_ENABLED", false),
			Brokers: getEnvList("EVENTS_BROKERS", "localhost:9092"),
			Topic:   getEnvString("EVENTS_TOPIC", "wallet-notifications"),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal for %s: %q (%w)", key, value, err)
	}
	return amount, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
