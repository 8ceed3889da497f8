package store

import (
	"context"
	"errors"

	"coinvault/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrWalletNotFound         = errors.New("wallet not found")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInsufficientHolding    = errors.New("insufficient holding")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrDuplicateUser          = errors.New("username or email already taken")
)

// CreateUserParams contains the parameters for registering a user. The wallet
// (starting balance, unique account number) and one deposit address per
// supported coin are created in the same commit as the user row.
type CreateUserParams struct {
	Username        string
	FirstName       string
	LastName        string
	Email           string
	PinHash         string
	StartingBalance decimal.Decimal
	Coins           []string
}

// TradeParams captures a single-wallet balance/holding exchange (buy or
// sell). USDDelta and QtyDelta carry opposite signs: a buy debits USD and
// credits the coin, a sell does the reverse.
type TradeParams struct {
	UserId   string
	Coin     string
	USDDelta decimal.Decimal
	QtyDelta decimal.Decimal
}

// SwapParams captures a crypto-to-crypto conversion. The fiat balance is
// never touched.
type SwapParams struct {
	UserId   string
	FromCoin string
	ToCoin   string
	QtyOut   decimal.Decimal
	QtyIn    decimal.Decimal
}

// CryptoTransferParams captures a two-wallet asset movement.
type CryptoTransferParams struct {
	SenderId   string
	ReceiverId string
	Coin       string
	Qty        decimal.Decimal
}

// FundsTransferParams captures a two-wallet fiat movement.
type FundsTransferParams struct {
	SenderId   string
	ReceiverId string
	Amount     decimal.Decimal
}

// LedgerStore defines the contract that every backend must satisfy. All
// Commit* methods are atomic: they re-validate balances and holdings against
// authoritative rows inside the commit and either apply every write of the
// operation or none of them. A lost optimistic-locking race surfaces as
// ErrConcurrentModification and is safe to retry.
type LedgerStore interface {
	// --- Users ---
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// --- Wallets ---
	GetWallet(ctx context.Context, userId string) (*models.Wallet, error)
	GetWalletByAccountNumber(ctx context.Context, accountNumber string) (*models.Wallet, error)
	FindWalletByAddress(ctx context.Context, coin, address string) (*models.Wallet, error)
	GetHoldings(ctx context.Context, userId string) ([]models.Holding, error)
	GetHolding(ctx context.Context, userId, coin string) (decimal.Decimal, error)
	GetAddresses(ctx context.Context, userId string) ([]models.DepositAddress, error)

	// --- Ledger mutations ---
	CommitTrade(ctx context.Context, params TradeParams) (*models.Wallet, error)
	CommitSwap(ctx context.Context, params SwapParams) error
	CommitCryptoTransfer(ctx context.Context, params CryptoTransferParams) error
	CommitFundsTransfer(ctx context.Context, params FundsTransferParams) error

	// --- History & notifications ---
	AppendHistory(ctx context.Context, userId, status, message string) (*models.HistoryEntry, error)
	ListHistory(ctx context.Context, userId string) ([]models.HistoryEntry, error)
	MarkHistoryRead(ctx context.Context, userId string) error
	AppendNotification(ctx context.Context, userId, message string) (*models.Notification, error)
	ListNotifications(ctx context.Context, userId string) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userId string) error

	// --- Lifecycle ---
	Close()
}
