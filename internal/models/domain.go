package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// History entry statuses. An entry is written for every ledger operation
// attempt, success or failure.
const (
	HistorySuccessful = "successful"
	HistoryFailed     = "failed"
	HistoryReceived   = "received"
)

// Notification statuses.
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// User represents an account owner.
type User struct {
	Id        string    `db:"id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	PinHash   string    `db:"pin_hash"`
	Verified  bool      `db:"verified"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Name returns the user's display name.
func (u *User) Name() string {
	return u.FirstName + " " + u.LastName
}

// Wallet is the per-user fiat balance record (hot data). Version backs
// optimistic locking on every balance mutation.
type Wallet struct {
	UserId        string          `db:"user_id"`
	AccountNumber string          `db:"account_number"`
	Balance       decimal.Decimal `db:"balance"`
	Version       int64           `db:"version"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Holding is the quantity of one coin owned by a wallet. Rows only exist
// for strictly positive amounts; a holding that reaches zero is deleted.
type Holding struct {
	UserId    string          `db:"user_id"`
	Coin      string          `db:"coin"`
	Amount    decimal.Decimal `db:"amount"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// DepositAddress is a synthetic per-coin deposit address, generated once at
// wallet creation and immutable afterwards.
type DepositAddress struct {
	UserId    string    `db:"user_id"`
	Coin      string    `db:"coin"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

// HistoryEntry is an immutable audit record of one ledger operation attempt.
// Only the Read flag ever changes after insertion.
type HistoryEntry struct {
	Id        string    `db:"id"`
	UserId    string    `db:"user_id"`
	Status    string    `db:"status"`
	Message   string    `db:"message"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

// Notification is a derived side effect of counterparty events. It only
// transitions unread to read, never mutates otherwise.
type Notification struct {
	Id        string    `db:"id"`
	UserId    string    `db:"user_id"`
	Status    string    `db:"status"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

// WalletView is the caller-facing snapshot returned by ledger operations.
type WalletView struct {
	AccountNumber string
	Balance       decimal.Decimal
	Holdings      []Holding
}
