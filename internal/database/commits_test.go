package database

import (
	"context"
	"errors"
	"testing"

	"coinvault/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func TestCommitTrade_Buy(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "alicej", "alice@example.com")

	wallet, err := service.CommitTrade(ctx, store.TradeParams{
		UserId:   userId,
		Coin:     "bitcoin",
		USDDelta: decimal.NewFromInt(-1000),
		QtyDelta: decimal.RequireFromString("0.02"),
	})
	if err != nil {
		t.Fatalf("CommitTrade failed: %v", err)
	}

	if !wallet.Balance.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("Expected balance 4000, got %s", wallet.Balance.String())
	}
	if wallet.Version != 2 {
		t.Errorf("Expected version 2 after one commit, got %d", wallet.Version)
	}

	holding, err := service.GetHolding(ctx, userId, "bitcoin")
	if err != nil {
		t.Fatalf("GetHolding failed: %v", err)
	}
	if !holding.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("Expected holding 0.02, got %s", holding.String())
	}
}

func TestCommitTrade_SellEntireHoldingRemovesRow(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "alicej", "alice@example.com")

	qty := decimal.RequireFromString("0.5")
	if _, err := service.CommitTrade(ctx, store.TradeParams{
		UserId: userId, Coin: "bitcoin", USDDelta: decimal.NewFromInt(-1000), QtyDelta: qty,
	}); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}

	wallet, err := service.CommitTrade(ctx, store.TradeParams{
		UserId: userId, Coin: "bitcoin", USDDelta: decimal.NewFromInt(1000), QtyDelta: qty.Neg(),
	})
	if err != nil {
		t.Fatalf("Sell failed: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected balance restored to 5000, got %s", wallet.Balance.String())
	}

	holdings, err := service.GetHoldings(ctx, userId)
	if err != nil {
		t.Fatalf("GetHoldings failed: %v", err)
	}
	if len(holdings) != 0 {
		t.Errorf("Expected zero-amount holding row to be deleted, found %d rows", len(holdings))
	}
}

func TestCommitTrade_InsufficientBalance(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "alicej", "alice@example.com")

	_, err := service.CommitTrade(ctx, store.TradeParams{
		UserId:   userId,
		Coin:     "bitcoin",
		USDDelta: decimal.NewFromInt(-6000),
		QtyDelta: decimal.RequireFromString("0.1"),
	})
	if !errors.Is(err, store.ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}

	// The rejected trade must leave no trace.
	wallet, err := service.GetWallet(ctx, userId)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected balance unchanged at 5000, got %s", wallet.Balance.String())
	}
	holdings, err := service.GetHoldings(ctx, userId)
	if err != nil {
		t.Fatalf("GetHoldings failed: %v", err)
	}
	if len(holdings) != 0 {
		t.Errorf("Expected no holdings after rejected trade, found %d", len(holdings))
	}
}

func TestCommitTrade_InsufficientHolding(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "alicej", "alice@example.com")

	_, err := service.CommitTrade(ctx, store.TradeParams{
		UserId:   userId,
		Coin:     "bitcoin",
		USDDelta: decimal.NewFromInt(100),
		QtyDelta: decimal.RequireFromString("-0.01"),
	})
	if !errors.Is(err, store.ErrInsufficientHolding) {
		t.Fatalf("Expected ErrInsufficientHolding, got %v", err)
	}

	wallet, err := service.GetWallet(ctx, userId)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected balance unchanged at 5000, got %s", wallet.Balance.String())
	}
}

func TestCommitSwap(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "alicej", "alice@example.com")

	if _, err := service.CommitTrade(ctx, store.TradeParams{
		UserId: userId, Coin: "bitcoin", USDDelta: decimal.NewFromInt(-1000), QtyDelta: decimal.RequireFromString("0.02"),
	}); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}

	err := service.CommitSwap(ctx, store.SwapParams{
		UserId:   userId,
		FromCoin: "bitcoin",
		ToCoin:   "ethereum",
		QtyOut:   decimal.RequireFromString("0.01"),
		QtyIn:    decimal.RequireFromString("0.2"),
	})
	if err != nil {
		t.Fatalf("CommitSwap failed: %v", err)
	}

	// Swaps never touch the fiat balance but do bump the wallet version.
	wallet, err := service.GetWallet(ctx, userId)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("Expected balance 4000, got %s", wallet.Balance.String())
	}
	if wallet.Version != 3 {
		t.Errorf("Expected version 3 after buy and swap, got %d", wallet.Version)
	}

	btc, err := service.GetHolding(ctx, userId, "bitcoin")
	if err != nil {
		t.Fatalf("GetHolding failed: %v", err)
	}
	if !btc.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("Expected bitcoin holding 0.01, got %s", btc.String())
	}
	eth, err := service.GetHolding(ctx, userId, "ethereum")
	if err != nil {
		t.Fatalf("GetHolding failed: %v", err)
	}
	if !eth.Equal(decimal.RequireFromString("0.2")) {
		t.Errorf("Expected ethereum holding 0.2, got %s", eth.String())
	}
}

func TestCommitSwap_InsufficientHolding(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "alicej", "alice@example.com")

	err := service.CommitSwap(ctx, store.SwapParams{
		UserId:   userId,
		FromCoin: "bitcoin",
		ToCoin:   "ethereum",
		QtyOut:   decimal.RequireFromString("0.01"),
		QtyIn:    decimal.RequireFromString("0.2"),
	})
	if !errors.Is(err, store.ErrInsufficientHolding) {
		t.Fatalf("Expected ErrInsufficientHolding, got %v", err)
	}

	// Nothing may be credited when the debit fails.
	eth, err := service.GetHolding(ctx, userId, "ethereum")
	if err != nil {
		t.Fatalf("GetHolding failed: %v", err)
	}
	if !eth.IsZero() {
		t.Errorf("Expected no ethereum credited, got %s", eth.String())
	}
}

func TestCommitCryptoTransfer(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	senderId := createTestUser(t, service, "alicej", "alice@example.com")
	receiverId := createTestUser(t, service, "bobsmith", "bob@example.com")

	if _, err := service.CommitTrade(ctx, store.TradeParams{
		UserId: senderId, Coin: "bitcoin", USDDelta: decimal.NewFromInt(-1000), QtyDelta: decimal.RequireFromString("0.02"),
	}); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}

	err := service.CommitCryptoTransfer(ctx, store.CryptoTransferParams{
		SenderId:   senderId,
		ReceiverId: receiverId,
		Coin:       "bitcoin",
		Qty:        decimal.RequireFromString("0.015"),
	})
	if err != nil {
		t.Fatalf("CommitCryptoTransfer failed: %v", err)
	}

	senderHolding, err := service.GetHolding(ctx, senderId, "bitcoin")
	if err != nil {
		t.Fatalf("GetHolding failed: %v", err)
	}
	if !senderHolding.Equal(decimal.RequireFromString("0.005")) {
		t.Errorf("Expected sender holding 0.005, got %s", senderHolding.String())
	}

	receiverHolding, err := service.GetHolding(ctx, receiverId, "bitcoin")
	if err != nil {
		t.Fatalf("GetHolding failed: %v", err)
	}
	if !receiverHolding.Equal(decimal.RequireFromString("0.015")) {
		t.Errorf("Expected receiver holding 0.015, got %s", receiverHolding.String())
	}
}

func TestCommitCryptoTransfer_InsufficientHolding(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	senderId := createTestUser(t, service, "alicej", "alice@example.com")
	receiverId := createTestUser(t, service, "bobsmith", "bob@example.com")

	err := service.CommitCryptoTransfer(ctx, store.CryptoTransferParams{
		SenderId:   senderId,
		ReceiverId: receiverId,
		Coin:       "bitcoin",
		Qty:        decimal.RequireFromString("0.01"),
	})
	if !errors.Is(err, store.ErrInsufficientHolding) {
		t.Fatalf("Expected ErrInsufficientHolding, got %v", err)
	}

	receiverHolding, err := service.GetHolding(ctx, receiverId, "bitcoin")
	if err != nil {
		t.Fatalf("GetHolding failed: %v", err)
	}
	if !receiverHolding.IsZero() {
		t.Errorf("Expected receiver untouched, got %s", receiverHolding.String())
	}
}

func TestCommitFundsTransfer(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	senderId := createTestUser(t, service, "alicej", "alice@example.com")
	receiverId := createTestUser(t, service, "bobsmith", "bob@example.com")

	err := service.CommitFundsTransfer(ctx, store.FundsTransferParams{
		SenderId:   senderId,
		ReceiverId: receiverId,
		Amount:     decimal.NewFromInt(1500),
	})
	if err != nil {
		t.Fatalf("CommitFundsTransfer failed: %v", err)
	}

	senderWallet, err := service.GetWallet(ctx, senderId)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !senderWallet.Balance.Equal(decimal.NewFromInt(3500)) {
		t.Errorf("Expected sender balance 3500, got %s", senderWallet.Balance.String())
	}

	receiverWallet, err := service.GetWallet(ctx, receiverId)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !receiverWallet.Balance.Equal(decimal.NewFromInt(6500)) {
		t.Errorf("Expected receiver balance 6500, got %s", receiverWallet.Balance.String())
	}
}

func TestCommitFundsTransfer_InsufficientBalance(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	senderId := createTestUser(t, service, "alicej", "alice@example.com")
	receiverId := createTestUser(t, service, "bobsmith", "bob@example.com")

	err := service.CommitFundsTransfer(ctx, store.FundsTransferParams{
		SenderId:   senderId,
		ReceiverId: receiverId,
		Amount:     decimal.NewFromInt(9000),
	})
	if !errors.Is(err, store.ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}

	// Both wallets stay at their starting balance.
	for _, userId := range []string{senderId, receiverId} {
		wallet, err := service.GetWallet(ctx, userId)
		if err != nil {
			t.Fatalf("GetWallet failed: %v", err)
		}
		if !wallet.Balance.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("Expected balance 5000 for %s, got %s", userId, wallet.Balance.String())
		}
	}
}

func TestCommitFundsTransfer_WalletNotFound(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	senderId := createTestUser(t, service, "alicej", "alice@example.com")

	err := service.CommitFundsTransfer(ctx, store.FundsTransferParams{
		SenderId:   senderId,
		ReceiverId: "missing-user",
		Amount:     decimal.NewFromInt(100),
	})
	if !errors.Is(err, store.ErrWalletNotFound) {
		t.Fatalf("Expected ErrWalletNotFound, got %v", err)
	}
}
