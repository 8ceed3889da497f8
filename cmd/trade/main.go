package main

import (
	"context"
	"flag"
	"fmt"

	"coinvault/internal/common"
	"coinvault/internal/config"
	"coinvault/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type tradeRequest struct {
	email  string
	token  string
	action string
	coin   string
	toCoin string
	amount decimal.Decimal
}

func parseAndValidateFlags() (*tradeRequest, error) {
	emailFlag := flag.String("email", "", "User email")
	tokenFlag := flag.String("token", "", "Bearer token (alternative to --email)")
	actionFlag := flag.String("action", "", "Trade action: buy, sell or swap (required)")
	coinFlag := flag.String("coin", "", "Coin id, e.g. bitcoin (required)")
	toCoinFlag := flag.String("to-coin", "", "Target coin id for swaps")
	amountFlag := flag.String("amount", "", "USD amount for buys, coin quantity for sells and swaps (required)")
	flag.Parse()

	if *actionFlag == "" || *coinFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("required flags: --action, --coin, --amount")
	}
	if *actionFlag != "buy" && *actionFlag != "sell" && *actionFlag != "swap" {
		return nil, fmt.Errorf("invalid action %q, expected buy, sell or swap", *actionFlag)
	}
	if *actionFlag == "swap" && *toCoinFlag == "" {
		return nil, fmt.Errorf("--to-coin is required for swaps")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	return &tradeRequest{
		email:  *emailFlag,
		token:  *tokenFlag,
		action: *actionFlag,
		coin:   *coinFlag,
		toCoin: *toCoinFlag,
		amount: amount,
	}, nil
}

func printWalletView(view *models.WalletView) {
	common.PrintHeader("WALLET", common.DefaultWidth)
	fmt.Printf("Account Number: %s\n", view.AccountNumber)
	fmt.Printf("Balance:        %s USD\n", view.Balance.String())
	if len(view.Holdings) > 0 {
		fmt.Println("\nHoldings:")
		for i, holding := range view.Holdings {
			fmt.Printf("%s %-15s: %s\n",
				common.BoxPrefix(i == len(view.Holdings)-1),
				holding.Coin,
				holding.Amount.String())
		}
	}
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	user, err := common.ResolveUser(ctx, services.DbService, cfg, req.email, req.token)
	if err != nil {
		zap.L().Fatal("Failed to resolve user", zap.Error(err))
	}

	zap.L().Info("Starting trade",
		zap.String("user_id", user.Id),
		zap.String("action", req.action),
		zap.String("coin", req.coin),
		zap.String("amount", req.amount.String()))

	var view *models.WalletView
	switch req.action {
	case "buy":
		view, err = services.Engine.BuyCrypto(ctx, user.Id, req.coin, req.amount)
	case "sell":
		view, err = services.Engine.SellCrypto(ctx, user.Id, req.coin, req.amount)
	case "swap":
		view, err = services.Engine.SwapCrypto(ctx, user.Id, req.coin, req.toCoin, req.amount)
	}
	if err != nil {
		common.PrintHeader("TRADE FAILED", common.DefaultWidth)
		fmt.Printf("User:   %s (%s)\n", user.Name(), user.Email)
		fmt.Printf("Action: %s %s\n", req.action, req.coin)
		fmt.Printf("Error:  %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("Trade failed",
			zap.String("user_id", user.Id),
			zap.String("action", req.action),
			zap.Error(err))
	}

	printWalletView(view)

	zap.L().Info("Trade completed",
		zap.String("user_id", user.Id),
		zap.String("action", req.action),
		zap.String("coin", req.coin),
		zap.String("amount", req.amount.String()))
}
