package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coinvault/internal/models"
	"coinvault/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// zeroDelta version-bumps a wallet without changing its balance.
var zeroDelta = decimal.Zero

// CommitTrade atomically applies a buy or sell: one balance delta and one
// holding delta on the same wallet. Sufficiency is re-checked against
// authoritative rows inside the transaction, so a concurrent spend can never
// overdraw the wallet.
func (s *Service) CommitTrade(ctx context.Context, params store.TradeParams) (*models.Wallet, error) {
	zap.L().Info("Committing trade",
		zap.String("user_id", params.UserId),
		zap.String("coin", params.Coin),
		zap.String("usd_delta", params.USDDelta.String()),
		zap.String("qty_delta", params.QtyDelta.String()))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	wallet, err := getWalletTx(ctx, tx, params.UserId)
	if err != nil {
		return nil, err
	}
	if err := applyBalanceDelta(ctx, tx, wallet, params.USDDelta); err != nil {
		return nil, err
	}
	if err := applyHoldingDelta(ctx, tx, params.UserId, params.Coin, params.QtyDelta); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit trade: %w", err)
	}

	zap.L().Info("Trade committed",
		zap.String("user_id", params.UserId),
		zap.String("coin", params.Coin),
		zap.String("new_balance", wallet.balance.String()))

	return &models.Wallet{
		UserId:        wallet.userId,
		AccountNumber: wallet.account,
		Balance:       wallet.balance,
		Version:       wallet.version,
		UpdatedAt:     time.Now(),
	}, nil
}

// CommitSwap atomically converts one holding into another. The fiat balance
// is never touched.
func (s *Service) CommitSwap(ctx context.Context, params store.SwapParams) error {
	zap.L().Info("Committing swap",
		zap.String("user_id", params.UserId),
		zap.String("from_coin", params.FromCoin),
		zap.String("to_coin", params.ToCoin),
		zap.String("qty_out", params.QtyOut.String()),
		zap.String("qty_in", params.QtyIn.String()))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The wallet row is version-bumped even though the balance is unchanged,
	// so swaps serialize with concurrent trades on the same wallet.
	wallet, err := getWalletTx(ctx, tx, params.UserId)
	if err != nil {
		return err
	}
	if err := applyBalanceDelta(ctx, tx, wallet, zeroDelta); err != nil {
		return err
	}
	if err := applyHoldingDelta(ctx, tx, params.UserId, params.FromCoin, params.QtyOut.Neg()); err != nil {
		return err
	}
	if err := applyHoldingDelta(ctx, tx, params.UserId, params.ToCoin, params.QtyIn); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit swap: %w", err)
	}
	return nil
}

// CommitCryptoTransfer atomically moves a holding quantity between two
// wallets. Both writes happen in one transaction: either both succeed or
// neither does.
func (s *Service) CommitCryptoTransfer(ctx context.Context, params store.CryptoTransferParams) error {
	zap.L().Info("Committing crypto transfer",
		zap.String("sender_id", params.SenderId),
		zap.String("receiver_id", params.ReceiverId),
		zap.String("coin", params.Coin),
		zap.String("qty", params.Qty.String()))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sender, receiver, err := getWalletPairTx(ctx, tx, params.SenderId, params.ReceiverId)
	if err != nil {
		return err
	}

	// Version-bump both wallets in account-number order so racing transfers
	// on the same pair conflict deterministically instead of deadlocking.
	for _, wallet := range orderWallets(sender, receiver) {
		if err := applyBalanceDelta(ctx, tx, wallet, zeroDelta); err != nil {
			return err
		}
	}
	if err := applyHoldingDelta(ctx, tx, params.SenderId, params.Coin, params.Qty.Neg()); err != nil {
		return err
	}
	if err := applyHoldingDelta(ctx, tx, params.ReceiverId, params.Coin, params.Qty); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit crypto transfer: %w", err)
	}
	return nil
}

// CommitFundsTransfer atomically moves a fiat amount between two wallets.
func (s *Service) CommitFundsTransfer(ctx context.Context, params store.FundsTransferParams) error {
	zap.L().Info("Committing funds transfer",
		zap.String("sender_id", params.SenderId),
		zap.String("receiver_id", params.ReceiverId),
		zap.String("amount", params.Amount.String()))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sender, receiver, err := getWalletPairTx(ctx, tx, params.SenderId, params.ReceiverId)
	if err != nil {
		return err
	}

	for _, wallet := range orderWallets(sender, receiver) {
		delta := params.Amount
		if wallet == sender {
			delta = delta.Neg()
		}
		if err := applyBalanceDelta(ctx, tx, wallet, delta); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit funds transfer: %w", err)
	}

	zap.L().Info("Funds transfer committed",
		zap.String("sender_id", params.SenderId),
		zap.String("receiver_id", params.ReceiverId),
		zap.String("sender_balance", sender.balance.String()),
		zap.String("receiver_balance", receiver.balance.String()))
	return nil
}

func getWalletPairTx(ctx context.Context, tx *sql.Tx, senderId, receiverId string) (*txWallet, *txWallet, error) {
	sender, err := getWalletTx(ctx, tx, senderId)
	if err != nil {
		return nil, nil, fmt.Errorf("sender: %w", err)
	}
	receiver, err := getWalletTx(ctx, tx, receiverId)
	if err != nil {
		return nil, nil, fmt.Errorf("receiver: %w", err)
	}
	return sender, receiver, nil
}

func orderWallets(a, b *txWallet) []*txWallet {
	if a.account <= b.account {
		return []*txWallet{a, b}
	}
	return []*txWallet{b, a}
}
