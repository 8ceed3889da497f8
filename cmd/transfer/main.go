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

type transferRequest struct {
	email       string
	token       string
	kind        string
	coin        string
	amount      decimal.Decimal
	destination string
	pin         string
}

func parseAndValidateFlags() (*transferRequest, error) {
	emailFlag := flag.String("email", "", "Sender email")
	tokenFlag := flag.String("token", "", "Bearer token (alternative to --email)")
	kindFlag := flag.String("kind", "", "Transfer kind: crypto or funds (required)")
	coinFlag := flag.String("coin", "", "Coin id for crypto transfers, e.g. bitcoin")
	amountFlag := flag.String("amount", "", "Coin quantity for crypto, USD amount for funds (required)")
	destinationFlag := flag.String("destination", "", "Receiver deposit address (crypto) or account number (funds) (required)")
	pinFlag := flag.String("pin", "", "Transaction pin, required for funds transfers")
	flag.Parse()

	if *kindFlag == "" || *amountFlag == "" || *destinationFlag == "" {
		return nil, fmt.Errorf("required flags: --kind, --amount, --destination")
	}
	if *kindFlag != "crypto" && *kindFlag != "funds" {
		return nil, fmt.Errorf("invalid kind %q, expected crypto or funds", *kindFlag)
	}
	if *kindFlag == "crypto" && *coinFlag == "" {
		return nil, fmt.Errorf("--coin is required for crypto transfers")
	}
	if *kindFlag == "funds" && *pinFlag == "" {
		return nil, fmt.Errorf("--pin is required for funds transfers")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	return &transferRequest{
		email:       *emailFlag,
		token:       *tokenFlag,
		kind:        *kindFlag,
		coin:        *coinFlag,
		amount:      amount,
		destination: *destinationFlag,
		pin:         *pinFlag,
	}, nil
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

	zap.L().Info("Starting transfer",
		zap.String("user_id", user.Id),
		zap.String("kind", req.kind),
		zap.String("amount", req.amount.String()),
		zap.String("destination", req.destination))

	var view *models.WalletView
	switch req.kind {
	case "crypto":
		view, err = services.Engine.TransferCrypto(ctx, user.Id, req.coin, req.amount, req.destination)
	case "funds":
		view, err = services.Engine.TransferFunds(ctx, user.Id, req.destination, req.amount, req.pin)
	}
	if err != nil {
		common.PrintHeader("TRANSFER FAILED", common.DefaultWidth)
		fmt.Printf("Sender:      %s (%s)\n", user.Name(), user.Email)
		fmt.Printf("Kind:        %s\n", req.kind)
		fmt.Printf("Amount:      %s\n", req.amount.String())
		fmt.Printf("Destination: %s\n", req.destination)
		fmt.Printf("Error:       %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("Transfer failed",
			zap.String("user_id", user.Id),
			zap.String("kind", req.kind),
			zap.Error(err))
	}

	common.PrintHeader("TRANSFER SUCCESSFUL", common.DefaultWidth)
	fmt.Printf("Sender:            %s (%s)\n", user.Name(), user.Email)
	fmt.Printf("Amount:            %s\n", req.amount.String())
	fmt.Printf("Destination:       %s\n", req.destination)
	fmt.Printf("Remaining Balance: %s USD\n", view.Balance.String())
	common.PrintSeparator("=", common.DefaultWidth)

	zap.L().Info("Transfer completed",
		zap.String("user_id", user.Id),
		zap.String("kind", req.kind),
		zap.String("amount", req.amount.String()))
}
