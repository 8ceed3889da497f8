// Package ledger implements the wallet mutation core: buy, sell, swap,
// crypto transfer, and fund transfer as validated atomic state transitions,
// with an append-only history entry for every attempt.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coinvault/internal/config"
	"coinvault/internal/events"
	"coinvault/internal/models"
	"coinvault/internal/oracle"
	"coinvault/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Engine struct {
	store  store.LedgerStore
	oracle oracle.PriceSource
	coins  *config.CoinSet
	cfg    models.LedgerConfig
	events events.Publisher
}

// NewEngine wires the ledger core. The event publisher is optional; pass nil
// to disable notification mirroring.
func NewEngine(ledgerStore store.LedgerStore, priceSource oracle.PriceSource, coins *config.CoinSet, cfg models.LedgerConfig, publisher events.Publisher) *Engine {
	if cfg.CommitRetries <= 0 {
		cfg.CommitRetries = 3
	}
	return &Engine{
		store:  ledgerStore,
		oracle: priceSource,
		coins:  coins,
		cfg:    cfg,
		events: publisher,
	}
}

// BuyCrypto converts a USD amount into a holding of the given coin at the
// oracle's current unit price.
func (e *Engine) BuyCrypto(ctx context.Context, userId, coin string, usdAmount decimal.Decimal) (*models.WalletView, error) {
	coin = strings.ToLower(coin)

	if !usdAmount.IsPositive() {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("Unable to purchase %s, please input a valid amount", coin),
			&ValidationError{Reason: "amount must be positive"})
	}
	if usdAmount.LessThan(e.cfg.MinimumBuyUSD) {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("An unexpected error occurred while trying to purchase %s", coin),
			&ValidationError{Reason: fmt.Sprintf("amount must be at least %s USD", e.cfg.MinimumBuyUSD)})
	}
	if !e.coins.Contains(coin) {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("%s is not available for purchase", coin),
			&ValidationError{Reason: "coin not supported: " + coin})
	}

	price, err := e.oracle.GetPrice(ctx, coin)
	if err != nil {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("Unable to fetch the current price of %s", coin),
			&UpstreamError{Err: err})
	}

	qty := usdAmount.Div(price)
	if !qty.IsPositive() {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("Unable to purchase %s, please input a valid amount", coin),
			&ValidationError{Reason: "computed quantity is not positive"})
	}

	var wallet *models.Wallet
	err = e.retryCommit(ctx, func() error {
		var commitErr error
		wallet, commitErr = e.store.CommitTrade(ctx, store.TradeParams{
			UserId:   userId,
			Coin:     coin,
			USDDelta: usdAmount.Neg(),
			QtyDelta: qty,
		})
		return commitErr
	})
	if err != nil {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("An unexpected error occurred while trying to purchase %s", coin),
			e.mapStoreError(err, coin))
	}

	e.record(ctx, userId, models.HistorySuccessful,
		fmt.Sprintf("Your Purchase of %s was successful and %s USD has been deducted from your account", coin, usdAmount))
	return e.walletView(ctx, wallet)
}

// SellCrypto converts a holding quantity back into USD at the oracle's
// current unit price. Selling an entire holding removes its entry.
func (e *Engine) SellCrypto(ctx context.Context, userId, coin string, qty decimal.Decimal) (*models.WalletView, error) {
	coin = strings.ToLower(coin)

	if !qty.IsPositive() {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("Unable to sell %s %s, please input a valid amount", qty, coin),
			&ValidationError{Reason: "amount must be positive"})
	}
	if !e.coins.Contains(coin) {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("%s is not available for sale", coin),
			&ValidationError{Reason: "coin not supported: " + coin})
	}

	price, err := e.oracle.GetPrice(ctx, coin)
	if err != nil {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("Unable to fetch the current price of %s", coin),
			&UpstreamError{Err: err})
	}

	usdCredit := qty.Mul(price)

	var wallet *models.Wallet
	err = e.retryCommit(ctx, func() error {
		var commitErr error
		wallet, commitErr = e.store.CommitTrade(ctx, store.TradeParams{
			UserId:   userId,
			Coin:     coin,
			USDDelta: usdCredit,
			QtyDelta: qty.Neg(),
		})
		return commitErr
	})
	if err != nil {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("Unable to sell %s %s. Ensure that you have enough %s in your account to cover the sale", qty, coin, coin),
			e.mapStoreError(err, coin))
	}

	e.record(ctx, userId, models.HistorySuccessful,
		fmt.Sprintf("You successfully sold %s and %s %s has been deducted from your wallet", coin, qty, coin))
	return e.walletView(ctx, wallet)
}

// SwapCrypto converts a quantity of one coin directly into another, priced
// through USD as an intermediate unit. The fiat balance is never touched.
func (e *Engine) SwapCrypto(ctx context.Context, userId, fromCoin, toCoin string, qty decimal.Decimal) (*models.WalletView, error) {
	fromCoin = strings.ToLower(fromCoin)
	toCoin = strings.ToLower(toCoin)

	if !qty.IsPositive() {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("Unable to swap %s %s to %s, please input a valid amount", qty, fromCoin, toCoin),
			&ValidationError{Reason: "amount must be positive"})
	}
	if !e.coins.Contains(fromCoin) || !e.coins.Contains(toCoin) {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("Unable to swap %s to %s, one or both coins are not supported", fromCoin, toCoin),
			&ValidationError{Reason: "coin not supported"})
	}
	if fromCoin == toCoin {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("Unable to swap %s to itself", fromCoin),
			&ValidationError{Reason: "cannot swap a coin to itself"})
	}

	fromPrice, err := e.oracle.GetPrice(ctx, fromCoin)
	if err != nil {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("Unable to fetch the current price of %s", fromCoin),
			&UpstreamError{Err: err})
	}
	toPrice, err := e.oracle.GetPrice(ctx, toCoin)
	if err != nil {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("Unable to fetch the current price of %s", toCoin),
			&UpstreamError{Err: err})
	}

	usdValue := qty.Mul(fromPrice)
	qtyIn := usdValue.Div(toPrice)

	err = e.retryCommit(ctx, func() error {
		return e.store.CommitSwap(ctx, store.SwapParams{
			UserId:   userId,
			FromCoin: fromCoin,
			ToCoin:   toCoin,
			QtyOut:   qty,
			QtyIn:    qtyIn,
		})
	})
	if err != nil {
		return nil, e.reject(ctx, userId,
			fmt.Sprintf("Unable to swap %s %s to %s. Ensure that you have enough %s to be able to swap to %s", qty, fromCoin, toCoin, fromCoin, toCoin),
			e.mapStoreError(err, fromCoin))
	}

	e.record(ctx, userId, models.HistorySuccessful,
		fmt.Sprintf("You successfully swapped %s %s to %s", qty, fromCoin, toCoin))
	return e.walletViewFor(ctx, userId)
}

// TransferCrypto moves a holding quantity to the wallet owning the receiver
// deposit address. No price lookup: a direct asset movement, not a valuation.
func (e *Engine) TransferCrypto(ctx context.Context, senderId, coin string, qty decimal.Decimal, receiverAddress string) (*models.WalletView, error) {
	coin = strings.ToLower(coin)

	if !qty.IsPositive() {
		return nil, e.reject(ctx, senderId,
			fmt.Sprintf("Unable to transfer %s %s, please input a valid amount", qty, coin),
			&ValidationError{Reason: "amount must be positive"})
	}
	if !e.coins.Contains(coin) {
		return nil, e.reject(ctx, senderId,
			fmt.Sprintf("%s is not available for transfers", coin),
			&ValidationError{Reason: "coin not supported: " + coin})
	}

	sender, err := e.store.GetUserById(ctx, senderId)
	if err != nil {
		return nil, e.reject(ctx, senderId,
			fmt.Sprintf("An unexpected error occurred while trying to transfer %s to %s", coin, receiverAddress),
			e.mapStoreError(err, coin))
	}

	receiverWallet, err := e.store.FindWalletByAddress(ctx, coin, receiverAddress)
	if err != nil {
		if errors.Is(err, store.ErrWalletNotFound) {
			return nil, e.reject(ctx, senderId,
				fmt.Sprintf("An unexpected error occurred while trying to transfer %s to %s", coin, receiverAddress),
				&NotFoundError{Entity: "receiver wallet"})
		}
		return nil, e.reject(ctx, senderId,
			fmt.Sprintf("An unexpected error occurred while trying to transfer %s to %s", coin, receiverAddress),
			&StorageError{Err: err})
	}
	if receiverWallet.UserId == senderId {
		return nil, e.reject(ctx, senderId,
			fmt.Sprintf("Unable to transfer %s to your own address", coin),
			&UnauthorizedError{Reason: "cannot send coins to your own address"})
	}

	err = e.retryCommit(ctx, func() error {
		return e.store.CommitCryptoTransfer(ctx, store.CryptoTransferParams{
			SenderId:   senderId,
			ReceiverId: receiverWallet.UserId,
			Coin:       coin,
			Qty:        qty,
		})
	})
	if err != nil {
		return nil, e.reject(ctx, senderId,
			fmt.Sprintf("An unexpected error occurred while trying to transfer %s to %s", coin, receiverAddress),
			e.mapStoreError(err, coin))
	}

	e.record(ctx, senderId, models.HistorySuccessful,
		fmt.Sprintf("You transferred %s %s to %s. %s %s has been deducted from your wallet", qty, coin, receiverAddress, qty, coin))
	e.record(ctx, receiverWallet.UserId, models.HistoryReceived,
		fmt.Sprintf("You received %s %s from %s and %s %s has been added to your wallet", qty, coin, sender.Name(), qty, coin))
	e.notify(ctx, receiverWallet.UserId, "crypto-received",
		fmt.Sprintf("You received %s %s from %s", qty, coin, sender.Name()))

	return e.walletViewFor(ctx, senderId)
}

// TransferFunds moves a USD amount to the wallet with the given account
// number after verifying the sender's transaction pin.
func (e *Engine) TransferFunds(ctx context.Context, senderId, receiverAccountNumber string, usdAmount decimal.Decimal, pin string) (*models.WalletView, error) {
	if !usdAmount.IsPositive() {
		return nil, e.reject(ctx, senderId,
			fmt.Sprintf("Unable to transfer funds to account %s, please input a valid amount", receiverAccountNumber),
			&ValidationError{Reason: "amount must be positive"})
	}
	if usdAmount.LessThan(e.cfg.MinimumSendUSD) {
		return nil, e.reject(ctx, senderId,
			fmt.Sprintf("Unable to transfer funds to account %s", receiverAccountNumber),
			&ValidationError{Reason: fmt.Sprintf("amount must be at least %s USD", e.cfg.MinimumSendUSD)})
	}

	sender, err := e.store.GetUserById(ctx, senderId)
	if err != nil {
		return nil, e.reject(ctx, senderId,
			fmt.Sprintf("Unable to transfer funds to account %s", receiverAccountNumber),
			e.mapStoreError(err, "USD"))
	}
	if err := verifyPin(sender.PinHash, pin); err != nil {
		return nil, e.reject(ctx, senderId,
			"Unable to transfer funds: incorrect transaction pin",
			&UnauthorizedError{Reason: "incorrect transaction pin"})
	}

	senderWallet, err := e.store.GetWallet(ctx, senderId)
	if err != nil {
		return nil, e.reject(ctx, senderId,
			fmt.Sprintf("Unable to transfer funds to account %s", receiverAccountNumber),
			e.mapStoreError(err, "USD"))
	}
	if senderWallet.AccountNumber == receiverAccountNumber {
		return nil, e.reject(ctx, senderId,
			"Unable to transfer funds to your own account",
			&UnauthorizedError{Reason: "cannot transfer funds to your own account"})
	}

	receiverWallet, err := e.store.GetWalletByAccountNumber(ctx, receiverAccountNumber)
	if err != nil {
		if errors.Is(err, store.ErrWalletNotFound) {
			return nil, e.reject(ctx, senderId,
				fmt.Sprintf("Unable to transfer funds to account %s, account not found", receiverAccountNumber),
				&NotFoundError{Entity: "receiver wallet"})
		}
		return nil, e.reject(ctx, senderId,
			fmt.Sprintf("Unable to transfer funds to account %s", receiverAccountNumber),
			&StorageError{Err: err})
	}

	err = e.retryCommit(ctx, func() error {
		return e.store.CommitFundsTransfer(ctx, store.FundsTransferParams{
			SenderId:   senderId,
			ReceiverId: receiverWallet.UserId,
			Amount:     usdAmount,
		})
	})
	if err != nil {
		return nil, e.reject(ctx, senderId,
			fmt.Sprintf("Unable to transfer %s USD to account %s", usdAmount, receiverAccountNumber),
			e.mapStoreError(err, "USD"))
	}

	e.record(ctx, senderId, models.HistorySuccessful,
		fmt.Sprintf("You transferred %s USD to account %s", usdAmount, receiverAccountNumber))
	e.record(ctx, receiverWallet.UserId, models.HistoryReceived,
		fmt.Sprintf("You received %s USD from %s", usdAmount, sender.Name()))
	e.notify(ctx, receiverWallet.UserId, "funds-received",
		fmt.Sprintf("You received %s USD from %s", usdAmount, sender.Name()))

	return e.walletViewFor(ctx, senderId)
}

// GetWallet returns the caller-facing wallet snapshot.
func (e *Engine) GetWallet(ctx context.Context, userId string) (*models.WalletView, error) {
	return e.walletViewFor(ctx, userId)
}

func (e *Engine) GetHoldings(ctx context.Context, userId string) ([]models.Holding, error) {
	holdings, err := e.store.GetHoldings(ctx, userId)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return holdings, nil
}

func (e *Engine) GetHistory(ctx context.Context, userId string) ([]models.HistoryEntry, error) {
	entries, err := e.store.ListHistory(ctx, userId)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return entries, nil
}

func (e *Engine) MarkHistoryRead(ctx context.Context, userId string) error {
	if err := e.store.MarkHistoryRead(ctx, userId); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

func (e *Engine) GetNotifications(ctx context.Context, userId string) ([]models.Notification, error) {
	notifications, err := e.store.ListNotifications(ctx, userId)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return notifications, nil
}

func (e *Engine) MarkNotificationsRead(ctx context.Context, userId string) error {
	if err := e.store.MarkNotificationsRead(ctx, userId); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

// retryCommit re-runs a commit closure after optimistic-locking conflicts,
// up to the configured attempt budget. Any other error returns immediately.
func (e *Engine) retryCommit(ctx context.Context, commit func() error) error {
	var err error
	for attempt := 0; attempt <= e.cfg.CommitRetries; attempt++ {
		err = commit()
		if !errors.Is(err, store.ErrConcurrentModification) {
			return err
		}
		zap.L().Warn("Commit lost an optimistic-locking race, retrying",
			zap.Int("attempt", attempt+1))
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

// reject appends a failed history entry and returns the typed failure.
// Every rejected mutation attempt is logged, uniformly across operations.
func (e *Engine) reject(ctx context.Context, userId, message string, cause error) error {
	e.record(ctx, userId, models.HistoryFailed, message)
	return cause
}

// record appends a history entry. Audit append failures are logged but never
// mask the operation's own outcome.
func (e *Engine) record(ctx context.Context, userId, status, message string) {
	if _, err := e.store.AppendHistory(ctx, userId, status, message); err != nil {
		zap.L().Error("Failed to append history entry",
			zap.String("user_id", userId),
			zap.String("status", status),
			zap.Error(err))
	}
}

// notify stores a notification and mirrors it to the event stream when one
// is configured. Best-effort on both counts.
func (e *Engine) notify(ctx context.Context, userId, kind, message string) {
	if _, err := e.store.AppendNotification(ctx, userId, message); err != nil {
		zap.L().Error("Failed to append notification",
			zap.String("user_id", userId),
			zap.Error(err))
	}
	if e.events != nil {
		if err := e.events.Publish(ctx, events.NotificationEvent{
			UserId:  userId,
			Kind:    kind,
			Message: message,
		}); err != nil {
			zap.L().Warn("Failed to publish notification event",
				zap.String("user_id", userId),
				zap.Error(err))
		}
	}
}

func (e *Engine) mapStoreError(err error, coin string) error {
	switch {
	case errors.Is(err, store.ErrInsufficientBalance):
		return &InsufficientFundsError{Asset: "USD"}
	case errors.Is(err, store.ErrInsufficientHolding):
		return &InsufficientFundsError{Asset: coin}
	case errors.Is(err, store.ErrWalletNotFound):
		return &NotFoundError{Entity: "wallet"}
	case errors.Is(err, store.ErrUserNotFound):
		return &NotFoundError{Entity: "user"}
	default:
		return &StorageError{Err: err}
	}
}

func (e *Engine) walletView(ctx context.Context, wallet *models.Wallet) (*models.WalletView, error) {
	holdings, err := e.store.GetHoldings(ctx, wallet.UserId)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return &models.WalletView{
		AccountNumber: wallet.AccountNumber,
		Balance:       wallet.Balance,
		Holdings:      holdings,
	}, nil
}

func (e *Engine) walletViewFor(ctx context.Context, userId string) (*models.WalletView, error) {
	wallet, err := e.store.GetWallet(ctx, userId)
	if err != nil {
		return nil, e.mapStoreError(err, "")
	}
	return e.walletView(ctx, wallet)
}
