package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Oracle   OracleConfig
	Ledger   LedgerConfig
	Identity IdentityConfig
	Events   EventsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	SeedDemoUsers   bool
}

// OracleConfig holds price oracle client settings
type OracleConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	QuoteTTL       time.Duration
}

// LedgerConfig holds ledger engine business parameters
type LedgerConfig struct {
	CoinsFile       string
	MinimumBuyUSD   decimal.Decimal
	MinimumSendUSD  decimal.Decimal
	StartingBalance decimal.Decimal
	CommitRetries   int
}

// IdentityConfig holds credential verification settings
type IdentityConfig struct {
	JWTSecret string
}

// EventsConfig holds the optional notification event stream settings
type EventsConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}
