package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"coinvault/internal/models"
	"coinvault/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) GetWallet(ctx context.Context, userId string) (*models.Wallet, error) {
	return scanWallet(s.db.QueryRowContext(ctx, queryGetWallet, userId))
}

func (s *Service) GetWalletByAccountNumber(ctx context.Context, accountNumber string) (*models.Wallet, error) {
	return scanWallet(s.db.QueryRowContext(ctx, queryGetWalletByAccountNumber, accountNumber))
}

// FindWalletByAddress resolves the wallet owning a deposit address for the
// given coin. Address matching is exact; coin matching is case-insensitive.
func (s *Service) FindWalletByAddress(ctx context.Context, coin, address string) (*models.Wallet, error) {
	return scanWallet(s.db.QueryRowContext(ctx, queryFindWalletByAddress, strings.ToLower(coin), address))
}

func (s *Service) GetHoldings(ctx context.Context, userId string) ([]models.Holding, error) {
	rows, err := s.db.QueryContext(ctx, queryGetHoldings, userId)
	if err != nil {
		zap.L().Error("Failed to query holdings", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query holdings: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var holdings []models.Holding
	for rows.Next() {
		var holding models.Holding
		var amountStr string
		if err := rows.Scan(&holding.UserId, &holding.Coin, &amountStr, &holding.UpdatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan holding row: %w", err)
		}
		holding.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse holding amount %q: %w", amountStr, err)
		}
		holdings = append(holdings, holding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding rows: %w", err)
	}

	return holdings, nil
}

// GetHolding returns the held amount for one coin, zero if no row exists.
func (s *Service) GetHolding(ctx context.Context, userId, coin string) (decimal.Decimal, error) {
	var amountStr string
	err := s.db.QueryRowContext(ctx, queryGetHolding, userId, strings.ToLower(coin)).Scan(&amountStr)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to query holding: %w", err)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse holding amount %q: %w", amountStr, err)
	}
	return amount, nil
}

func (s *Service) GetAddresses(ctx context.Context, userId string) ([]models.DepositAddress, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAddresses, userId)
	if err != nil {
		zap.L().Error("Failed to query addresses", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query addresses: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var addresses []models.DepositAddress
	for rows.Next() {
		var addr models.DepositAddress
		if err := rows.Scan(&addr.UserId, &addr.Coin, &addr.Address, &addr.CreatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan address row: %w", err)
		}
		addresses = append(addresses, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating address rows: %w", err)
	}

	return addresses, nil
}

func scanWallet(row *sql.Row) (*models.Wallet, error) {
	var wallet models.Wallet
	var balanceStr string
	err := row.Scan(&wallet.UserId, &wallet.AccountNumber, &balanceStr, &wallet.Version, &wallet.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWalletNotFound
		}
		return nil, fmt.Errorf("unable to query wallet: %w", err)
	}
	wallet.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", balanceStr, err)
	}
	return &wallet, nil
}

// --- In-transaction helpers shared by the Commit* methods ---

type txWallet struct {
	userId  string
	account string
	balance decimal.Decimal
	version int64
}

func getWalletTx(ctx context.Context, tx *sql.Tx, userId string) (*txWallet, error) {
	var wallet txWallet
	var balanceStr string
	var updatedAt sql.NullString
	err := tx.QueryRowContext(ctx, queryGetWallet, userId).Scan(
		&wallet.userId, &wallet.account, &balanceStr, &wallet.version, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWalletNotFound
		}
		return nil, fmt.Errorf("unable to query wallet: %w", err)
	}
	wallet.balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", balanceStr, err)
	}
	return &wallet, nil
}

// applyBalanceDelta updates a wallet balance with an optimistic version
// check. Rejects any delta that would take the balance negative.
func applyBalanceDelta(ctx context.Context, tx *sql.Tx, wallet *txWallet, delta decimal.Decimal) error {
	newBalance := wallet.balance.Add(delta)
	if newBalance.IsNegative() {
		return store.ErrInsufficientBalance
	}

	result, err := tx.ExecContext(ctx, queryUpdateWalletBalance, newBalance.String(), wallet.userId, wallet.version)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	wallet.balance = newBalance
	wallet.version++
	return nil
}

// applyHoldingDelta upserts a holding row. A holding that would go negative
// is rejected; a holding that reaches exactly zero is deleted, never kept.
func applyHoldingDelta(ctx context.Context, tx *sql.Tx, userId, coin string, delta decimal.Decimal) error {
	coin = strings.ToLower(coin)

	var currentStr string
	current := decimal.Zero
	exists := true
	err := tx.QueryRowContext(ctx, queryGetHolding, userId, coin).Scan(&currentStr)
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return fmt.Errorf("unable to query holding: %w", err)
	} else {
		current, err = decimal.NewFromString(currentStr)
		if err != nil {
			return fmt.Errorf("failed to parse holding amount %q: %w", currentStr, err)
		}
	}

	newAmount := current.Add(delta)
	switch {
	case newAmount.IsNegative():
		return store.ErrInsufficientHolding
	case newAmount.IsZero():
		if exists {
			if _, err := tx.ExecContext(ctx, queryDeleteHolding, userId, coin); err != nil {
				return fmt.Errorf("failed to delete holding: %w", err)
			}
		}
	case exists:
		if _, err := tx.ExecContext(ctx, queryUpdateHolding, newAmount.String(), userId, coin); err != nil {
			return fmt.Errorf("failed to update holding: %w", err)
		}
	default:
		if _, err := tx.ExecContext(ctx, queryInsertHolding, userId, coin, newAmount.String()); err != nil {
			return fmt.Errorf("failed to insert holding: %w", err)
		}
	}
	return nil
}
